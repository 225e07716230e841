package severity

import "github.com/razorlong2/epimind-app/pkg/common/models"

// QSOFA counts the quick bedside criteria: systolic BP under 100,
// respiratory rate of 22 or more, Glasgow under 15.
func QSOFA(rec models.ClinicalRecord) int {
	score := 0
	if rec.SystolicBP < 100 {
		score++
	}
	if rec.RespiratoryRate >= 22 {
		score++
	}
	if rec.Glasgow < 15 {
		score++
	}
	return score
}
