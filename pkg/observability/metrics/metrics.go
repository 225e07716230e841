package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

var (
	evaluationsTotal     atomic.Int64
	extractionsTotal     atomic.Int64
	documentsProcessed   atomic.Int64
	documentsFailed      atomic.Int64
	auditWriteFailures   atomic.Int64
	eventsPublished      atomic.Int64
	eventPublishFailures atomic.Int64

	evaluationsByLevel = map[string]*atomic.Int64{
		models.LevelNotIAAM:  {},
		models.LevelLow:      {},
		models.LevelModerate: {},
		models.LevelHigh:     {},
		models.LevelVeryHigh: {},
		models.LevelCritical: {},
	}
)

func Init() {}

func ObserveEvaluation(level string) {
	evaluationsTotal.Add(1)
	if counter, ok := evaluationsByLevel[level]; ok {
		counter.Add(1)
	}
}

func ObserveExtraction() {
	extractionsTotal.Add(1)
}

func ObserveDocument(success bool) {
	documentsProcessed.Add(1)
	if !success {
		documentsFailed.Add(1)
	}
}

func ObserveAuditWriteFailure() {
	auditWriteFailures.Add(1)
}

func ObserveEventPublished() {
	eventsPublished.Add(1)
}

func ObserveEventPublishFailure() {
	eventPublishFailures.Add(1)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP epimind_evaluations_total Number of risk evaluations completed since start.\n")
	fmt.Fprintf(w, "# TYPE epimind_evaluations_total counter\n")
	fmt.Fprintf(w, "epimind_evaluations_total %d\n", evaluationsTotal.Load())

	fmt.Fprintf(w, "# HELP epimind_evaluations_by_level_total Number of risk evaluations completed per risk level.\n")
	fmt.Fprintf(w, "# TYPE epimind_evaluations_by_level_total counter\n")
	levels := make([]string, 0, len(evaluationsByLevel))
	for level := range evaluationsByLevel {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		fmt.Fprintf(w, "epimind_evaluations_by_level_total{level=%q} %d\n", level, evaluationsByLevel[level].Load())
	}

	fmt.Fprintf(w, "# HELP epimind_extractions_total Number of free-text extraction requests served.\n")
	fmt.Fprintf(w, "# TYPE epimind_extractions_total counter\n")
	fmt.Fprintf(w, "epimind_extractions_total %d\n", extractionsTotal.Load())

	fmt.Fprintf(w, "# HELP epimind_documents_processed_total Number of document images processed.\n")
	fmt.Fprintf(w, "# TYPE epimind_documents_processed_total counter\n")
	fmt.Fprintf(w, "epimind_documents_processed_total %d\n", documentsProcessed.Load())

	fmt.Fprintf(w, "# HELP epimind_documents_failed_total Number of document images that yielded no usable text.\n")
	fmt.Fprintf(w, "# TYPE epimind_documents_failed_total counter\n")
	fmt.Fprintf(w, "epimind_documents_failed_total %d\n", documentsFailed.Load())

	fmt.Fprintf(w, "# HELP epimind_audit_write_failures_total Number of audit trail writes that failed.\n")
	fmt.Fprintf(w, "# TYPE epimind_audit_write_failures_total counter\n")
	fmt.Fprintf(w, "epimind_audit_write_failures_total %d\n", auditWriteFailures.Load())

	fmt.Fprintf(w, "# HELP epimind_events_published_total Number of evaluation events published to Kafka.\n")
	fmt.Fprintf(w, "# TYPE epimind_events_published_total counter\n")
	fmt.Fprintf(w, "epimind_events_published_total %d\n", eventsPublished.Load())

	fmt.Fprintf(w, "# HELP epimind_event_publish_failures_total Number of evaluation events that could not be published.\n")
	fmt.Fprintf(w, "# TYPE epimind_event_publish_failures_total counter\n")
	fmt.Fprintf(w, "epimind_event_publish_failures_total %d\n", eventPublishFailures.Load())
}
