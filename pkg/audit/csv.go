package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

// header is written once, when the file is first created.
var header = []string{"timestamp", "patient", "ward", "hours", "score", "level", "organism", "resistances"}

// CSVLog is the append-only audit trail. Appends are serialised; a write
// failure is the caller's to log, never to escalate.
type CSVLog struct {
	mu   sync.Mutex
	path string
}

func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

func (l *CSVLog) Append(entry models.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write audit header: %w", err)
		}
	}
	if err := w.Write(row(entry)); err != nil {
		return fmt.Errorf("write audit row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ReadRecent returns up to limit entries, newest first. A missing file is an
// empty trail, not an error; rows that no longer parse are skipped.
func (l *CSVLog) ReadRecent(limit int) ([]models.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read audit file: %w", err)
	}

	var entries []models.AuditEntry
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == "timestamp" {
			continue
		}
		if entry, ok := parseRow(rec); ok {
			entries = append(entries, entry)
		}
	}

	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	out := make([]models.AuditEntry, 0, limit)
	for i := len(entries) - 1; i >= len(entries)-limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func row(entry models.AuditEntry) []string {
	return []string{
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.Patient,
		entry.Ward,
		strconv.Itoa(entry.Hours),
		strconv.Itoa(entry.Score),
		entry.Level,
		entry.Organism,
		entry.Resistances,
	}
}

func parseRow(rec []string) (models.AuditEntry, bool) {
	if len(rec) != len(header) {
		return models.AuditEntry{}, false
	}
	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return models.AuditEntry{}, false
	}
	hours, err := strconv.Atoi(rec[3])
	if err != nil {
		return models.AuditEntry{}, false
	}
	score, err := strconv.Atoi(rec[4])
	if err != nil {
		return models.AuditEntry{}, false
	}
	return models.AuditEntry{
		Timestamp:   ts,
		Patient:     rec[1],
		Ward:        rec[2],
		Hours:       hours,
		Score:       score,
		Level:       rec[5],
		Organism:    rec[6],
		Resistances: rec[7],
	}, true
}
