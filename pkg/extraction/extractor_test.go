package extraction

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(DefaultPatterns())
	if err != nil {
		t.Fatalf("failed to create extractor: %v", err)
	}
	return e
}

func TestExtractLabValues(t *testing.T) {
	e := newTestExtractor(t)

	set := e.Extract("Analize la internare: WBC: 13.5, CRP: 120, PCT: 2.5, formula leucocite in lucru")

	if got := set.Values["wbc"]; got != 13.5 {
		t.Fatalf("wbc = %v, want 13.5", got)
	}
	if got := set.Values["crp"]; got != 120 {
		t.Fatalf("crp = %v, want 120", got)
	}
	if got := set.Values["procalcitonina"]; got != 2.5 {
		t.Fatalf("procalcitonina = %v, want 2.5", got)
	}

	// Three numeric tokens alone are worth at least 6 quality points.
	if got := e.EstimateQuality("WBC: 13.5, CRP: 120, PCT: 2.5, leucocite"); got < 6 {
		t.Fatalf("quality = %d, want at least the numeric-token contribution", got)
	}
}

func TestExtractOrganismAndResistanceIndependent(t *testing.T) {
	e := newTestExtractor(t)

	set := e.Extract("Izolat E. coli in urocultura, tulpina MRSA confirmata")
	if set.Organism != "Escherichia coli" {
		t.Fatalf("organism = %q, want Escherichia coli", set.Organism)
	}
	if len(set.Resistances) != 1 || set.Resistances[0] != "MRSA" {
		t.Fatalf("resistances = %v, want [MRSA]", set.Resistances)
	}
}

func TestExtractBloodPressure(t *testing.T) {
	e := newTestExtractor(t)

	set := e.Extract("Pacient stabil, TA: 130/85, afebril")
	if got := set.Values["tas"]; got != 130 {
		t.Fatalf("tas = %v, want 130", got)
	}
	if got := set.Values["tad"]; got != 85 {
		t.Fatalf("tad = %v, want 85", got)
	}

	// Both halves must parse or neither is stored.
	set = e.Extract("TA: 99999999999999999999/80")
	if _, ok := set.Values["tas"]; ok {
		t.Fatalf("tas stored from unparseable systolic")
	}
	if _, ok := set.Values["tad"]; ok {
		t.Fatalf("tad stored without valid systolic")
	}
}

func TestExtractOrganismDeclarationOrder(t *testing.T) {
	e := newTestExtractor(t)

	set := e.Extract("Hemocultura: Klebsiella pneumoniae si Escherichia coli identificate")
	if !set.OrganismFound {
		t.Fatalf("expected organism detection")
	}
	if set.Organism != "Escherichia coli" {
		t.Fatalf("organism = %q, want first declared match Escherichia coli", set.Organism)
	}
}

func TestExtractResistancesCollected(t *testing.T) {
	e := newTestExtractor(t)

	set := e.Extract("Antibiograma: ESBL+ confirmat, tulpina MRSA, carbapenem-resistant")
	want := []string{"ESBL", "MRSA", "CRE"}
	if len(set.Resistances) != len(want) {
		t.Fatalf("resistances = %v, want %v", set.Resistances, want)
	}
	for i, tag := range want {
		if set.Resistances[i] != tag {
			t.Fatalf("resistances[%d] = %q, want %q", i, set.Resistances[i], tag)
		}
	}
}

func TestExtractReturnsFreshSet(t *testing.T) {
	e := newTestExtractor(t)

	first := e.Extract("WBC: 13.5")
	second := e.Extract("temperatura: 38.2")

	if _, ok := second.Values["wbc"]; ok {
		t.Fatalf("second run leaked values from the first")
	}
	if _, ok := first.Values["temperatura"]; ok {
		t.Fatalf("first set mutated by the second run")
	}
	if got := second.Values["temperatura"]; got != 38.2 {
		t.Fatalf("temperatura = %v, want 38.2", got)
	}
}

func TestEstimateQuality(t *testing.T) {
	e := newTestExtractor(t)

	if got := e.EstimateQuality(""); got != 0 {
		t.Fatalf("quality of empty text = %d, want 0", got)
	}

	// Length under 50, no vocabulary, no numbers, all stray characters.
	if got := e.EstimateQuality(strings.Repeat("!", 40)); got != 20 {
		t.Fatalf("quality of garbage = %d, want 20", got)
	}

	// Over-long text earns no length points.
	if got := e.EstimateQuality(strings.Repeat("a", 5001)); got != 25 {
		t.Fatalf("quality of oversized text = %d, want 25", got)
	}

	report := "Pacient internat in laborator. Rezultat analiza: valoare normal. " +
		"Leucocite: 12.5, CRP: 80, PCT: 1.2, TA: 120/80, temperatura: 37.8, " +
		"puls: 92, creatinina: 1.1, hemoglobina: 10.2"
	// 25 length + 25 vocabulary + 18 for nine numeric tokens + 25 clean.
	if got := e.EstimateQuality(report); got != 93 {
		t.Fatalf("quality of report = %d, want 93", got)
	}

	full := report + ", trombocite: 250, bilirubina: 1.0, glasgow: 15, diureza: 0.9"
	if got := e.EstimateQuality(full); got != 100 {
		t.Fatalf("quality of dense report = %d, want 100", got)
	}
}

func TestLoadPatternsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	doc := `fields:
  - field: wbc
    patterns:
      - 'wbc[:\s]*(\d+(?:\.\d+)?)'
blood_pressure: '(?:ta|bp)[:\s]*(\d+)/(\d+)'
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write patterns file: %v", err)
	}

	cfg, err := LoadPatterns(path)
	if err != nil {
		t.Fatalf("failed to load patterns: %v", err)
	}
	if len(cfg.Fields) != 1 || cfg.Fields[0].Field != "wbc" {
		t.Fatalf("unexpected fields: %+v", cfg.Fields)
	}

	e, err := NewExtractor(cfg)
	if err != nil {
		t.Fatalf("failed to compile loaded patterns: %v", err)
	}
	set := e.Extract("wbc: 9.1")
	if got := set.Values["wbc"]; got != 9.1 {
		t.Fatalf("wbc = %v, want 9.1", got)
	}
}

func TestNewExtractorRejectsBadPattern(t *testing.T) {
	cfg := PatternConfig{Fields: []FieldPattern{{Field: "wbc", Patterns: []string{"("}}}}
	if _, err := NewExtractor(cfg); err == nil {
		t.Fatalf("expected compile error for unbalanced pattern")
	}
}
