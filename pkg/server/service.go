package server

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/razorlong2/epimind-app/pkg/audit"
	"github.com/razorlong2/epimind-app/pkg/catalog"
	"github.com/razorlong2/epimind-app/pkg/common/kafka"
	"github.com/razorlong2/epimind-app/pkg/common/logger"
	"github.com/razorlong2/epimind-app/pkg/common/models"
	"github.com/razorlong2/epimind-app/pkg/extraction"
	"github.com/razorlong2/epimind-app/pkg/observability/metrics"
	"github.com/razorlong2/epimind-app/pkg/ocr"
	"github.com/razorlong2/epimind-app/pkg/record"
	"github.com/razorlong2/epimind-app/pkg/risk"
)

const eventSource = "assessment-service"

// Service wires the deterministic engines to their boundary collaborators.
// Audit, cache and event failures are logged and counted, never escalated:
// the clinician still gets the assessment.
type Service struct {
	validator *record.Validator
	engine    *risk.Engine
	extractor *extraction.Extractor
	catalog   catalog.Catalog
	processor *ocr.Processor
	trail     *audit.CSVLog

	auditRepo *audit.Repository
	results   *ResultStore
	producer  *kafka.Producer
}

func NewService(validator *record.Validator, engine *risk.Engine, extractor *extraction.Extractor, cat catalog.Catalog, processor *ocr.Processor, trail *audit.CSVLog) *Service {
	return &Service{
		validator: validator,
		engine:    engine,
		extractor: extractor,
		catalog:   cat,
		processor: processor,
		trail:     trail,
	}
}

func (s *Service) WithAuditRepository(repo *audit.Repository) *Service {
	s.auditRepo = repo
	return s
}

func (s *Service) WithResultStore(results *ResultStore) *Service {
	s.results = results
	return s
}

func (s *Service) WithProducer(producer *kafka.Producer) *Service {
	s.producer = producer
	return s
}

// Evaluate validates and scores one clinical record, then fans the result out
// to the audit trail, the last-assessment cache and the evaluation topic.
func (s *Service) Evaluate(ctx context.Context, rec models.ClinicalRecord) (models.EvaluationRecord, error) {
	if err := s.validator.Validate(rec); err != nil {
		return models.EvaluationRecord{}, err
	}

	assessment := s.engine.Evaluate(rec)
	evaluation := models.EvaluationRecord{
		ID:          uuid.New(),
		Patient:     rec.Patient,
		Ward:        rec.Ward,
		Hours:       rec.Hours,
		Organism:    rec.Organism,
		Resistances: rec.Resistances,
		Assessment:  assessment,
		EvaluatedAt: time.Now().UTC(),
	}

	s.fanOut(ctx, evaluation)
	metrics.ObserveEvaluation(assessment.Level)

	return evaluation, nil
}

func (s *Service) fanOut(ctx context.Context, evaluation models.EvaluationRecord) {
	entry := models.AuditEntry{
		Timestamp:   evaluation.EvaluatedAt,
		Patient:     evaluation.Patient,
		Ward:        evaluation.Ward,
		Hours:       evaluation.Hours,
		Score:       evaluation.Assessment.Score,
		Level:       evaluation.Assessment.Level,
		Organism:    evaluation.Organism,
		Resistances: strings.Join(evaluation.Resistances, ","),
	}

	if err := s.trail.Append(entry); err != nil {
		logger.Log.WithError(err).Error("Failed to append audit trail")
		metrics.ObserveAuditWriteFailure()
	}

	if s.auditRepo != nil {
		if err := s.auditRepo.Append(ctx, entry); err != nil {
			logger.Log.WithError(err).Error("Failed to mirror audit entry to database")
			metrics.ObserveAuditWriteFailure()
		}
	}

	if s.results != nil {
		if err := s.results.Save(ctx, evaluation); err != nil {
			logger.Log.WithError(err).Error("Failed to cache last assessment")
		}
	}

	if s.producer != nil {
		if err := s.producer.PublishEvaluation(ctx, eventSource, evaluation); err != nil {
			metrics.ObserveEventPublishFailure()
		} else {
			metrics.ObserveEventPublished()
		}
	}
}

// Extract runs the value extractor over free text and annotates the findings
// with catalog interpretations.
func (s *Service) Extract(req models.ExtractionRequest) (models.ExtractionResponse, error) {
	if err := s.validator.ValidateExtraction(req); err != nil {
		return models.ExtractionResponse{}, err
	}

	set := s.extractor.Extract(req.Text)
	metrics.ObserveExtraction()

	return models.ExtractionResponse{
		Values:          set,
		Quality:         s.extractor.EstimateQuality(req.Text),
		Interpretations: s.catalog.InterpretAll(set.Values),
	}, nil
}

// ProcessDocument hands an uploaded image to the OCR collaborator and runs
// extraction over whatever text comes back.
func (s *Service) ProcessDocument(ctx context.Context, image []byte, filename string) models.DocumentResult {
	result := s.processor.ProcessDocument(ctx, image, filename)
	metrics.ObserveDocument(result.Success)
	if !result.Success {
		logger.Log.WithField("reason", result.Error).Warn("Document processing failed")
	}
	return result
}

// AuditTrail returns the most recent audit entries, newest first.
func (s *Service) AuditTrail(limit int) ([]models.AuditEntry, error) {
	return s.trail.ReadRecent(limit)
}

// LastAssessment returns the cached evaluation for one patient.
func (s *Service) LastAssessment(ctx context.Context, patient string) (models.EvaluationRecord, error) {
	if s.results == nil {
		return models.EvaluationRecord{}, ErrNoResult
	}
	return s.results.Last(ctx, patient)
}
