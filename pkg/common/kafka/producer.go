package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/razorlong2/epimind-app/pkg/common/config"
	"github.com/razorlong2/epimind-app/pkg/common/logger"
	"github.com/razorlong2/epimind-app/pkg/common/models"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(topic string) *Producer {
	cfg := config.Load()
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{writer: writer}
}

// PublishEvaluation announces one completed risk evaluation. Messages are
// keyed by patient so every consumer sees a patient's evaluations in order.
func (p *Producer) PublishEvaluation(ctx context.Context, source string, record models.EvaluationRecord) error {
	event := models.Event{
		ID:     uuid.New().String(),
		Type:   models.EventEvaluationCompleted,
		Source: source,
		Data: map[string]interface{}{
			"id":           record.ID.String(),
			"patient":      record.Patient,
			"ward":         record.Ward,
			"hours":        record.Hours,
			"score":        record.Assessment.Score,
			"level":        record.Assessment.Level,
			"organism":     record.Organism,
			"resistances":  record.Resistances,
			"evaluated_at": record.EvaluatedAt.Format(time.RFC3339),
		},
		Timestamp: time.Now(),
	}

	return p.publish(ctx, record.Patient, event)
}

// PublishEvent sends an arbitrary event keyed by its own ID.
func (p *Producer) PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now(),
	}

	return p.publish(ctx, event.ID, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.Event) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Error("Failed to publish event")
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"topic":      p.writer.Topic,
	}).Info("Event published successfully")

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
