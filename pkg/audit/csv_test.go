package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

func sampleEntry(patient string, score int) models.AuditEntry {
	return models.AuditEntry{
		Timestamp:   time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		Patient:     patient,
		Ward:        "ATI",
		Hours:       96,
		Score:       score,
		Level:       models.LevelHigh,
		Organism:    "Klebsiella pneumoniae",
		Resistances: "ESBL, CRE",
	}
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	log := NewCSVLog(path)

	if err := log.Append(sampleEntry("P-001", 70)); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := log.Append(sampleEntry("P-002", 40)); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	content := string(raw)

	if got := strings.Count(content, "timestamp,patient,ward"); got != 1 {
		t.Fatalf("expected exactly one header, found %d in:\n%s", got, content)
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "2025-03-14T10:30:00Z,P-001,ATI,96,70,") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
}

func TestAppendAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")

	if err := NewCSVLog(path).Append(sampleEntry("P-001", 70)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// A new writer on an existing file must not repeat the header.
	if err := NewCSVLog(path).Append(sampleEntry("P-002", 40)); err != nil {
		t.Fatalf("append after reopen failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if got := strings.Count(string(raw), "timestamp"); got != 1 {
		t.Fatalf("expected one header after reopen, found %d", got)
	}
}

func TestReadRecentNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	log := NewCSVLog(path)

	for i, patient := range []string{"P-001", "P-002", "P-003"} {
		if err := log.Append(sampleEntry(patient, 10*i)); err != nil {
			t.Fatalf("append %s failed: %v", patient, err)
		}
	}

	entries, err := log.ReadRecent(2)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Patient != "P-003" || entries[1].Patient != "P-002" {
		t.Fatalf("expected newest first, got %s then %s", entries[0].Patient, entries[1].Patient)
	}
	if entries[0].Score != 20 {
		t.Fatalf("expected score 20, got %d", entries[0].Score)
	}
}

func TestReadRecentRoundTripsCommaInResistances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	log := NewCSVLog(path)

	if err := log.Append(sampleEntry("P-001", 70)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	entries, err := log.ReadRecent(0)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Resistances != "ESBL, CRE" {
		t.Fatalf("resistances mangled: %q", entries[0].Resistances)
	}
	if !entries[0].Timestamp.Equal(time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("timestamp mangled: %v", entries[0].Timestamp)
	}
}

func TestReadRecentMissingFile(t *testing.T) {
	log := NewCSVLog(filepath.Join(t.TempDir(), "never-created.csv"))

	entries, err := log.ReadRecent(10)
	if err != nil {
		t.Fatalf("missing file should not error, got: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestReadRecentSkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	log := NewCSVLog(path)

	if err := log.Append(sampleEntry("P-001", 70)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for corruption failed: %v", err)
	}
	if _, err := f.WriteString("not-a-timestamp,P-BAD,ATI,x,y,HIGH,,\n"); err != nil {
		t.Fatalf("corrupt write failed: %v", err)
	}
	f.Close()

	entries, err := log.ReadRecent(10)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Patient != "P-001" {
		t.Fatalf("expected only the valid row, got %+v", entries)
	}
}
