package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

// Row is the database shape of one audit entry.
type Row struct {
	ID          uint      `gorm:"primaryKey;autoIncrement;column:id"`
	Timestamp   time.Time `gorm:"column:timestamp;index"`
	Patient     string    `gorm:"column:patient;index"`
	Ward        string    `gorm:"column:ward"`
	Hours       int       `gorm:"column:hours"`
	Score       int       `gorm:"column:score"`
	Level       string    `gorm:"column:level"`
	Organism    string    `gorm:"column:organism"`
	Resistances string    `gorm:"column:resistances"`
}

func (Row) TableName() string {
	return "audit_entries"
}

// Repository mirrors the CSV trail into Postgres when AUDIT_TO_DB is set.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Row{})
}

func (r *Repository) Append(ctx context.Context, entry models.AuditEntry) error {
	row := Row{
		Timestamp:   entry.Timestamp.UTC(),
		Patient:     entry.Patient,
		Ward:        entry.Ward,
		Hours:       entry.Hours,
		Score:       entry.Score,
		Level:       entry.Level,
		Organism:    entry.Organism,
		Resistances: entry.Resistances,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []Row
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]models.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.AuditEntry{
			Timestamp:   row.Timestamp,
			Patient:     row.Patient,
			Ward:        row.Ward,
			Hours:       row.Hours,
			Score:       row.Score,
			Level:       row.Level,
			Organism:    row.Organism,
			Resistances: row.Resistances,
		})
	}
	return entries, nil
}
