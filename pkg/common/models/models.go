package models

import (
	"time"

	"github.com/google/uuid"
)

// Device exposure kinds recognised by the risk engine. Anything else is
// scored with the unknown-device weight.
const (
	DeviceCentralLine     = "central_line"
	DeviceVentilation     = "ventilation"
	DeviceUrinaryCatheter = "urinary_catheter"
	DeviceTracheostomy    = "tracheostomy"
	DeviceDrain           = "drain"
	DeviceFeedingTube     = "feeding_tube"
)

// Risk levels, ordered from benign to critical. NOT IAAM is the temporal
// short-circuit for patients hospitalized under 48 hours.
const (
	LevelNotIAAM  = "NOT IAAM (temporal)"
	LevelLow      = "LOW"
	LevelModerate = "MODERATE"
	LevelHigh     = "HIGH"
	LevelVeryHigh = "VERY HIGH"
	LevelCritical = "CRITICAL"
)

// Event types published on the evaluation topic.
const (
	EventEvaluationCompleted = "evaluation.completed"
)

// DeviceExposure records one invasive device and how long it has been in place.
type DeviceExposure struct {
	Present bool `json:"present"`
	Days    int  `json:"days" validate:"min=0"`
}

// ClinicalRecord is the structured input to the risk engine. Absent fields
// keep their clinically normal defaults (record.NewClinicalRecord seeds
// them), so a sparse JSON payload decoded over a fresh record stays
// well-formed.
type ClinicalRecord struct {
	Patient string `json:"patient" validate:"required"`
	Ward    string `json:"ward"`
	Hours   int    `json:"hours" validate:"min=0"`

	Devices map[string]DeviceExposure `json:"devices,omitempty" validate:"dive"`

	// Organ dysfunction inputs
	PaO2FiO2     float64 `json:"pao2_fio2"`
	Platelets    float64 `json:"platelets"`
	Bilirubin    float64 `json:"bilirubin"`
	Glasgow      int     `json:"glasgow"`
	Creatinine   float64 `json:"creatinine"`
	UrineOutput  float64 `json:"urine_output"`
	Hypotension  bool    `json:"hypotension"`
	Vasopressors bool    `json:"vasopressors"`

	// Vitals
	SystolicBP      int     `json:"systolic_bp"`
	DiastolicBP     int     `json:"diastolic_bp"`
	RespiratoryRate int     `json:"respiratory_rate"`
	Temperature     float64 `json:"temperature"`
	HeartRate       int     `json:"heart_rate"`

	// Microbiology
	CulturePositive bool     `json:"culture_positive"`
	Organism        string   `json:"organism,omitempty"`
	Resistances     []string `json:"resistances,omitempty"`

	// Sparse laboratory panel keyed wbc, crp, pct/procalcitonina,
	// hemoglobina. Values arrive untyped from JSON; the lab scorer coerces
	// and reports anything non-numeric.
	Labs map[string]interface{} `json:"labs,omitempty"`
}

// ExtractedValueSet is the complete output of one free-text extraction run.
// Every run produces a fresh set; merging into a record is the caller's job.
type ExtractedValueSet struct {
	Values        map[string]float64 `json:"values"`
	OrganismFound bool               `json:"organism_found"`
	Organism      string             `json:"organism,omitempty"`
	Resistances   []string           `json:"resistances,omitempty"`
}

// Assessment is the risk engine verdict. Built once per evaluation and never
// mutated afterwards.
type Assessment struct {
	Score           int      `json:"score"`
	Level           string   `json:"level"`
	Rationale       []string `json:"rationale"`
	Recommendations []string `json:"recommendations"`
}

// SOFAResult carries the aggregate organ-dysfunction score with its
// per-component breakdown.
type SOFAResult struct {
	Total      int            `json:"total"`
	Components map[string]int `json:"components"`
}

// EvaluationRecord is the audited, cached and published unit: one scored
// evaluation with identity and timestamp stamped at the service boundary,
// never inside the deterministic engine.
type EvaluationRecord struct {
	ID          uuid.UUID  `json:"id"`
	Patient     string     `json:"patient"`
	Ward        string     `json:"ward"`
	Hours       int        `json:"hours"`
	Organism    string     `json:"organism,omitempty"`
	Resistances []string   `json:"resistances,omitempty"`
	Assessment  Assessment `json:"assessment"`
	EvaluatedAt time.Time  `json:"evaluated_at"`
}

// Free-text extraction API
type ExtractionRequest struct {
	Text string `json:"text" validate:"required"`
}

type ExtractionResponse struct {
	Values          ExtractedValueSet `json:"values"`
	Quality         int               `json:"quality"`
	Interpretations map[string]string `json:"interpretations,omitempty"`
}

// DocumentResult is the outcome of processing one uploaded document image.
// Failures are structured results, never bare transport errors.
type DocumentResult struct {
	Success         bool              `json:"success"`
	Error           string            `json:"error,omitempty"`
	Text            string            `json:"text,omitempty"`
	Quality         int               `json:"quality"`
	Values          ExtractedValueSet `json:"values"`
	Interpretations map[string]string `json:"interpretations,omitempty"`
}

// AuditEntry mirrors one row of the append-only audit trail.
type AuditEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Patient     string    `json:"patient"`
	Ward        string    `json:"ward"`
	Hours       int       `json:"hours"`
	Score       int       `json:"score"`
	Level       string    `json:"level"`
	Organism    string    `json:"organism"`
	Resistances string    `json:"resistances"`
}

// Event is the Kafka envelope shared by all EpiMind topics.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
