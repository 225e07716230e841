package surveillance

import (
	"context"
	"fmt"
	"time"

	"github.com/razorlong2/epimind-app/pkg/common/logger"
	"github.com/razorlong2/epimind-app/pkg/common/models"
)

// Sample is the slice of an evaluation event the rollups care about.
type Sample struct {
	Patient     string
	Ward        string
	Score       int
	Level       string
	Organism    string
	EvaluatedAt time.Time
}

// SampleFromEvent pulls a Sample out of an evaluation.completed event. Events
// arrive as generic JSON, so numbers come back as float64.
func SampleFromEvent(event models.Event) (Sample, error) {
	if event.Type != models.EventEvaluationCompleted {
		return Sample{}, fmt.Errorf("unexpected event type %q", event.Type)
	}

	sample := Sample{
		Patient:     stringField(event.Data, "patient"),
		Ward:        stringField(event.Data, "ward"),
		Level:       stringField(event.Data, "level"),
		Organism:    stringField(event.Data, "organism"),
		EvaluatedAt: event.Timestamp,
	}
	if sample.Patient == "" {
		return Sample{}, fmt.Errorf("event %s carries no patient", event.ID)
	}
	if sample.Level == "" {
		return Sample{}, fmt.Errorf("event %s carries no level", event.ID)
	}

	score, ok := numberField(event.Data, "score")
	if !ok {
		return Sample{}, fmt.Errorf("event %s carries no score", event.ID)
	}
	sample.Score = score

	if raw := stringField(event.Data, "evaluated_at"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			sample.EvaluatedAt = ts
		}
	}

	return sample, nil
}

func stringField(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func numberField(data map[string]interface{}, key string) (int, bool) {
	switch v := data[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Worker folds consumed evaluation events into the rollup store.
type Worker struct {
	store *Store
}

func NewWorker(store *Store) *Worker {
	return &Worker{store: store}
}

// Handle processes one event. Malformed events are logged and dropped so the
// consumer group does not redeliver them forever; storage errors propagate
// and leave the offset uncommitted.
func (w *Worker) Handle(ctx context.Context, event models.Event) error {
	sample, err := SampleFromEvent(event)
	if err != nil {
		logger.Log.WithError(err).WithField("event_id", event.ID).Warn("Skipping malformed evaluation event")
		return nil
	}

	if sample.Level == models.LevelCritical || sample.Level == models.LevelVeryHigh {
		logger.Log.WithFields(map[string]interface{}{
			"patient": sample.Patient,
			"ward":    sample.Ward,
			"score":   sample.Score,
			"level":   sample.Level,
		}).Warn("High risk evaluation observed")
	}

	return w.store.Apply(ctx, sample)
}
