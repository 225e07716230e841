package risk

import (
	"fmt"
	"sort"

	"github.com/razorlong2/epimind-app/pkg/common/models"
	"github.com/razorlong2/epimind-app/pkg/severity"
)

// Engine turns a clinical record into an IAAM risk assessment. Stateless,
// deterministic and safe for concurrent use: no clock, no randomness, no I/O.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate applies the temporal gate, then accumulates temporal, device,
// microbiology, organ-dysfunction and laboratory weights into a score with
// an ordered rationale and level-specific recommendations.
func (e *Engine) Evaluate(rec models.ClinicalRecord) models.Assessment {
	if rec.Hours < temporalGateHours {
		return models.Assessment{
			Score: 0,
			Level: models.LevelNotIAAM,
			Rationale: []string{
				fmt.Sprintf("Hospitalization %dh <48h: temporal criterion not met", rec.Hours),
			},
			Recommendations: []string{"Clinical monitoring"},
		}
	}

	score := 0
	var rationale []string

	switch {
	case rec.Hours < 72:
		score += 5
		rationale = append(rationale, fmt.Sprintf("Hospitalization time: %dh (+5)", rec.Hours))
	case rec.Hours < 168:
		score += 10
		rationale = append(rationale, fmt.Sprintf("Hospitalization time: %dh (+10)", rec.Hours))
	default:
		score += 15
		rationale = append(rationale, fmt.Sprintf("Hospitalization time: %dh (+15)", rec.Hours))
	}

	for _, kind := range orderedDeviceKinds(rec.Devices) {
		exposure := rec.Devices[kind]
		if !exposure.Present {
			continue
		}
		add := deviceWeight(kind) + durationBonus(exposure.Days)
		score += add
		rationale = append(rationale, fmt.Sprintf("%s (%d days): +%d", deviceLabel(kind), exposure.Days, add))
	}

	if rec.CulturePositive {
		score += culturePositiveWeight
		rationale = append(rationale, fmt.Sprintf("Positive culture: %s (+%d)", rec.Organism, culturePositiveWeight))
		// Repeated tags count every time they appear.
		for _, tag := range rec.Resistances {
			pts := resistanceWeight(tag)
			score += pts
			rationale = append(rationale, fmt.Sprintf("Resistance %s: +%d", tag, pts))
		}
	}

	sofa := severity.SOFA(rec)
	if sofa.Total > 0 {
		score += sofa.Total * sofaMultiplier
		rationale = append(rationale, fmt.Sprintf("SOFA: %d (+%d)", sofa.Total, sofa.Total*sofaMultiplier))
	}

	if qsofa := severity.QSOFA(rec); qsofa >= 2 {
		score += qsofaWeight
		rationale = append(rationale, fmt.Sprintf("qSOFA: %d (+%d)", qsofa, qsofaWeight))
	}

	labScore, labLines := severity.ScoreLabs(rec.Labs)
	if labScore > 0 {
		score += labScore
		rationale = append(rationale, fmt.Sprintf("Laboratory markers: +%d", labScore))
		rationale = append(rationale, labLines...)
	}

	level := levelFor(score)
	recs := make([]string, len(recommendations[level]))
	copy(recs, recommendations[level])

	return models.Assessment{
		Score:           score,
		Level:           level,
		Rationale:       rationale,
		Recommendations: recs,
	}
}

// orderedDeviceKinds walks the known kinds in their canonical order, then
// any custom kinds alphabetically.
func orderedDeviceKinds(devices map[string]models.DeviceExposure) []string {
	if len(devices) == 0 {
		return nil
	}

	kinds := make([]string, 0, len(devices))
	seen := make(map[string]bool, len(devices))
	for _, kind := range deviceOrder {
		if _, ok := devices[kind]; ok {
			kinds = append(kinds, kind)
			seen[kind] = true
		}
	}

	var extra []string
	for kind := range devices {
		if !seen[kind] {
			extra = append(extra, kind)
		}
	}
	sort.Strings(extra)

	return append(kinds, extra...)
}
