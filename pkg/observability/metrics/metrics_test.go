package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

func TestWritePrometheus(t *testing.T) {
	ObserveEvaluation(models.LevelVeryHigh)
	ObserveEvaluation(models.LevelVeryHigh)
	ObserveEvaluation("SOMETHING ELSE")
	ObserveExtraction()
	ObserveDocument(true)
	ObserveDocument(false)
	ObserveAuditWriteFailure()
	ObserveEventPublished()
	ObserveEventPublishFailure()

	rec := httptest.NewRecorder()
	WritePrometheus(rec)

	body := rec.Body.String()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}

	for _, want := range []string{
		"epimind_evaluations_total 3",
		`epimind_evaluations_by_level_total{level="VERY HIGH"} 2`,
		"epimind_extractions_total 1",
		"epimind_documents_processed_total 2",
		"epimind_documents_failed_total 1",
		"epimind_audit_write_failures_total 1",
		"epimind_events_published_total 1",
		"epimind_event_publish_failures_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}
