package severity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ScoreLabs grades the key infection markers from a sparse lab panel and
// returns the lab score plus one descriptive line per present marker,
// normal ones included. Values that cannot be coerced to a number add an
// invalid-value line and no points. An empty panel scores zero.
func ScoreLabs(labs map[string]interface{}) (int, []string) {
	if len(labs) == 0 {
		return 0, []string{"No laboratory results available"}
	}

	score := 0
	var lines []string

	if raw, ok := labs["wbc"]; ok {
		if wbc, err := toFloat(raw); err != nil {
			lines = append(lines, fmt.Sprintf("WBC: invalid value: %v", raw))
		} else {
			switch {
			case wbc >= 12:
				score += 10
				lines = append(lines, fmt.Sprintf("Leukocytosis: WBC %g (>12) +10", wbc))
			case wbc < 4:
				score += 10
				lines = append(lines, fmt.Sprintf("Leukopenia: WBC %g (<4) +10", wbc))
			default:
				lines = append(lines, fmt.Sprintf("WBC: %g (normal) +0", wbc))
			}
		}
	}

	if raw, ok := labs["crp"]; ok {
		if crp, err := toFloat(raw); err != nil {
			lines = append(lines, fmt.Sprintf("CRP: invalid value: %v", raw))
		} else {
			switch {
			case crp >= 100:
				score += 15
				lines = append(lines, fmt.Sprintf("CRP %g mg/L: high inflammation (+15)", crp))
			case crp >= 50:
				score += 8
				lines = append(lines, fmt.Sprintf("CRP %g mg/L: moderate (+8)", crp))
			default:
				lines = append(lines, fmt.Sprintf("CRP %g mg/L: low (+0)", crp))
			}
		}
	}

	// Extraction writes "procalcitonina", structured payloads use "pct".
	raw, ok := labs["procalcitonina"]
	if !ok {
		raw, ok = labs["pct"]
	}
	if ok {
		if pct, err := toFloat(raw); err != nil {
			lines = append(lines, fmt.Sprintf("PCT: invalid value: %v", raw))
		} else {
			switch {
			case pct >= 2.0:
				score += 20
				lines = append(lines, fmt.Sprintf("Procalcitonin %g ng/mL: severe infection likely (+20)", pct))
			case pct >= 0.5:
				score += 10
				lines = append(lines, fmt.Sprintf("Procalcitonin %g ng/mL: suggestive (+10)", pct))
			default:
				lines = append(lines, fmt.Sprintf("Procalcitonin %g ng/mL: low (+0)", pct))
			}
		}
	}

	if score < 0 {
		score = 0
	}
	return score, lines
}

func toFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case json.Number:
		return val.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(val), 64)
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}
