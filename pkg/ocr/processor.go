package ocr

import (
	"context"
	"strings"

	"github.com/razorlong2/epimind-app/pkg/catalog"
	"github.com/razorlong2/epimind-app/pkg/common/models"
	"github.com/razorlong2/epimind-app/pkg/extraction"
)

// TextSource produces UTF-8 text from a document image. Client satisfies it.
type TextSource interface {
	Recognize(ctx context.Context, image []byte, filename string) (string, error)
}

// Processor turns one uploaded document into extraction results. It owns no
// image handling; recognition belongs to the external collaborator.
type Processor struct {
	source    TextSource
	extractor *extraction.Extractor
	catalog   catalog.Catalog
}

func NewProcessor(source TextSource, extractor *extraction.Extractor, cat catalog.Catalog) *Processor {
	return &Processor{
		source:    source,
		extractor: extractor,
		catalog:   cat,
	}
}

// ProcessDocument runs recognition and extraction for one image. Every
// failure comes back as a structured result the caller can render.
func (p *Processor) ProcessDocument(ctx context.Context, image []byte, filename string) models.DocumentResult {
	if len(image) == 0 {
		return models.DocumentResult{Success: false, Error: "empty document"}
	}

	text, err := p.source.Recognize(ctx, image, filename)
	if err != nil {
		return models.DocumentResult{Success: false, Error: err.Error()}
	}
	if strings.TrimSpace(text) == "" {
		return models.DocumentResult{Success: false, Error: "no text extracted"}
	}

	values := p.extractor.Extract(text)

	return models.DocumentResult{
		Success:         true,
		Text:            text,
		Quality:         p.extractor.EstimateQuality(text),
		Values:          values,
		Interpretations: p.catalog.InterpretAll(values.Values),
	}
}
