package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/razorlong2/epimind-app/pkg/common/config"
)

// Languages the collaborator should load. Scanned reports are Romanian with
// the occasional English section header.
var documentLanguages = []string{"ron", "eng"}

// Client talks to the external image-processing collaborator. EpiMind never
// decodes images itself; it sends the payload out and consumes UTF-8 text.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	base := &http.Client{
		Timeout:   cfg.OCRTimeout,
		Transport: transport(),
	}

	client := base
	if cfg.OCRTokenURL != "" && cfg.OCRClientID != "" {
		creds := clientcredentials.Config{
			ClientID:     cfg.OCRClientID,
			ClientSecret: cfg.OCRClientSecret,
			TokenURL:     cfg.OCRTokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = creds.Client(ctx)
		client.Timeout = cfg.OCRTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.OCRServiceURL, "/"),
		http:    client,
	}
}

func transport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

type recognizeRequest struct {
	Image     string   `json:"image"`
	Filename  string   `json:"filename,omitempty"`
	Languages []string `json:"languages"`
}

type recognizeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Recognize sends one document image out for text recognition and returns the
// trimmed text. Transport failures and 5xx responses are retried; client
// errors are not worth repeating.
func (c *Client) Recognize(ctx context.Context, image []byte, filename string) (string, error) {
	if c.baseURL == "" {
		return "", errors.New("ocr service not configured")
	}

	payload, err := json.Marshal(recognizeRequest{
		Image:     base64.StdEncoding.EncodeToString(image),
		Filename:  filename,
		Languages: documentLanguages,
	})
	if err != nil {
		return "", err
	}

	var out recognizeResponse
	var fatal error
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/recognize", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if IsRetriable(err) {
				return err
			}
			fatal = err
			return nil
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("ocr service status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			fatal = fmt.Errorf("ocr service status %d", resp.StatusCode)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fatal = fmt.Errorf("decode ocr response: %w", err)
			return nil
		}
		return nil
	}

	if err := Retry(ctx, 3, 200*time.Millisecond, attempt); err != nil {
		return "", err
	}
	if fatal != nil {
		return "", fatal
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	return strings.TrimSpace(out.Text), nil
}

// Retry executes fn with simple exponential backoff retry semantics.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts <= 1 {
		return fn()
	}

	var err error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}

		// Do not sleep after last attempt
		if i == attempts-1 {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		// exponential backoff with cap
		delay *= 2
		if delay > 2*time.Second {
			delay = 2 * time.Second
		}
	}

	return err
}

// IsRetriable determines if the error is worth retrying.
func IsRetriable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout() || netErr.Temporary()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
