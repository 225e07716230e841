package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

// ErrNoResult marks a patient with no cached assessment.
var ErrNoResult = errors.New("no stored assessment")

// ResultStore keeps the most recent evaluation per patient in Redis so ward
// staff can pull it up without re-entering the record.
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func resultKey(patient string) string {
	return "epimind:last:" + patient
}

func (s *ResultStore) Save(ctx context.Context, record models.EvaluationRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}
	return s.client.Set(ctx, resultKey(record.Patient), payload, s.ttl).Err()
}

func (s *ResultStore) Last(ctx context.Context, patient string) (models.EvaluationRecord, error) {
	payload, err := s.client.Get(ctx, resultKey(patient)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.EvaluationRecord{}, ErrNoResult
	}
	if err != nil {
		return models.EvaluationRecord{}, err
	}

	var record models.EvaluationRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return models.EvaluationRecord{}, fmt.Errorf("unmarshal evaluation: %w", err)
	}
	return record, nil
}
