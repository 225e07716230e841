package surveillance

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

func evaluationEvent(score float64, level string) models.Event {
	return models.Event{
		ID:     "evt-1",
		Type:   models.EventEvaluationCompleted,
		Source: "assessment-service",
		Data: map[string]interface{}{
			"patient":      "P-001",
			"ward":         "ATI",
			"score":        score,
			"level":        level,
			"organism":     "Klebsiella pneumoniae",
			"evaluated_at": "2025-03-14T10:30:00Z",
		},
		Timestamp: time.Date(2025, 3, 14, 10, 30, 5, 0, time.UTC),
	}
}

func TestSampleFromEvent(t *testing.T) {
	sample, err := SampleFromEvent(evaluationEvent(95, models.LevelVeryHigh))
	if err != nil {
		t.Fatalf("SampleFromEvent failed: %v", err)
	}
	if sample.Patient != "P-001" || sample.Ward != "ATI" {
		t.Fatalf("identity fields wrong: %+v", sample)
	}
	if sample.Score != 95 {
		t.Fatalf("expected score 95, got %d", sample.Score)
	}
	if sample.Level != models.LevelVeryHigh {
		t.Fatalf("unexpected level %q", sample.Level)
	}
	if !sample.EvaluatedAt.Equal(time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("evaluated_at not honoured: %v", sample.EvaluatedAt)
	}
}

func TestSampleFromEventFallsBackToEventTimestamp(t *testing.T) {
	event := evaluationEvent(42, models.LevelModerate)
	delete(event.Data, "evaluated_at")

	sample, err := SampleFromEvent(event)
	if err != nil {
		t.Fatalf("SampleFromEvent failed: %v", err)
	}
	if !sample.EvaluatedAt.Equal(event.Timestamp) {
		t.Fatalf("expected fallback to event timestamp, got %v", sample.EvaluatedAt)
	}
}

func TestSampleFromEventRejectsOtherTypes(t *testing.T) {
	event := evaluationEvent(10, models.LevelLow)
	event.Type = "record.ingested"

	if _, err := SampleFromEvent(event); err == nil {
		t.Fatal("expected error for foreign event type")
	}
}

func TestSampleFromEventRejectsMissingFields(t *testing.T) {
	for _, field := range []string{"patient", "level", "score"} {
		event := evaluationEvent(10, models.LevelLow)
		delete(event.Data, field)
		if _, err := SampleFromEvent(event); err == nil {
			t.Fatalf("expected error when %s is missing", field)
		}
	}
}

func TestFoldAccumulates(t *testing.T) {
	rollup := WardRollup{ID: "ATI|2025-03-14", Ward: "ATI", Day: "2025-03-14", Levels: datatypes.JSONMap{}}

	fold(&rollup, Sample{Score: 95, Level: models.LevelVeryHigh})
	fold(&rollup, Sample{Score: 30, Level: models.LevelLow})
	fold(&rollup, Sample{Score: 130, Level: models.LevelCritical})

	if rollup.Evaluations != 3 {
		t.Fatalf("expected 3 evaluations, got %d", rollup.Evaluations)
	}
	if rollup.HighRisk != 2 {
		t.Fatalf("expected 2 high-risk evaluations, got %d", rollup.HighRisk)
	}
	if rollup.ScoreSum != 255 {
		t.Fatalf("expected score sum 255, got %d", rollup.ScoreSum)
	}
	if rollup.MeanScore != 85 {
		t.Fatalf("expected mean 85, got %v", rollup.MeanScore)
	}
	if got := levelCount(rollup.Levels, models.LevelVeryHigh); got != 1 {
		t.Fatalf("VERY HIGH count = %d", got)
	}
}

func TestFoldReadsCountsAfterJSONRoundTrip(t *testing.T) {
	// Numbers come back from the JSON column as float64.
	rollup := WardRollup{Levels: datatypes.JSONMap{models.LevelHigh: float64(3)}}

	fold(&rollup, Sample{Score: 60, Level: models.LevelHigh})

	if got := levelCount(rollup.Levels, models.LevelHigh); got != 4 {
		t.Fatalf("expected HIGH count 4 after round trip, got %d", got)
	}
}
