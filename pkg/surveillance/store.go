package surveillance

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

// WardRollup is one ward-day aggregate of completed evaluations.
type WardRollup struct {
	ID          string            `gorm:"primaryKey;column:id"`
	Ward        string            `gorm:"column:ward;index"`
	Day         string            `gorm:"column:day;index"`
	Evaluations int               `gorm:"column:evaluations"`
	HighRisk    int               `gorm:"column:high_risk"`
	ScoreSum    int               `gorm:"column:score_sum"`
	MeanScore   float64           `gorm:"column:mean_score"`
	Levels      datatypes.JSONMap `gorm:"column:levels"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`
}

func (WardRollup) TableName() string {
	return "ward_rollups"
}

func rollupID(ward, day string) string {
	return ward + "|" + day
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&WardRollup{})
}

// Apply folds one evaluation sample into its ward-day rollup. The surveillance
// consumer is the only writer, so read-modify-write is safe here.
func (s *Store) Apply(ctx context.Context, sample Sample) error {
	day := sample.EvaluatedAt.UTC().Format("2006-01-02")
	id := rollupID(sample.Ward, day)

	var rollup WardRollup
	err := s.db.WithContext(ctx).First(&rollup, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rollup = WardRollup{ID: id, Ward: sample.Ward, Day: day, Levels: datatypes.JSONMap{}}
	case err != nil:
		return err
	}

	fold(&rollup, sample)
	rollup.UpdatedAt = time.Now().UTC()

	return s.db.WithContext(ctx).Save(&rollup).Error
}

func (s *Store) Recent(ctx context.Context, limit int) ([]WardRollup, error) {
	if limit <= 0 {
		limit = 50
	}
	var rollups []WardRollup
	err := s.db.WithContext(ctx).
		Order("day DESC").
		Order("ward ASC").
		Limit(limit).
		Find(&rollups).Error
	if err != nil {
		return nil, err
	}
	return rollups, nil
}

func fold(rollup *WardRollup, sample Sample) {
	rollup.Evaluations++
	rollup.ScoreSum += sample.Score
	rollup.MeanScore = float64(rollup.ScoreSum) / float64(rollup.Evaluations)
	if sample.Level == models.LevelVeryHigh || sample.Level == models.LevelCritical {
		rollup.HighRisk++
	}
	if rollup.Levels == nil {
		rollup.Levels = datatypes.JSONMap{}
	}
	rollup.Levels[sample.Level] = levelCount(rollup.Levels, sample.Level) + 1
}

// levelCount reads a counter back out of the JSON payload column, which
// yields float64 after a database round trip.
func levelCount(levels datatypes.JSONMap, level string) int {
	switch v := levels[level].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
