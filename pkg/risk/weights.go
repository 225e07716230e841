package risk

import "github.com/razorlong2/epimind-app/pkg/common/models"

// Patients hospitalized under 48 hours cannot have a healthcare-associated
// infection; the engine short-circuits below this gate.
const temporalGateHours = 48

// Aggregate score thresholds, checked in descending order.
const (
	thresholdCritical = 120
	thresholdVeryHigh = 90
	thresholdHigh     = 60
	thresholdModerate = 35
)

const (
	culturePositiveWeight   = 15
	defaultDeviceWeight     = 5
	defaultResistanceWeight = 10
	sofaMultiplier          = 3
	qsofaWeight             = 15
)

var deviceWeights = map[string]int{
	models.DeviceCentralLine:     20,
	models.DeviceVentilation:     25,
	models.DeviceUrinaryCatheter: 15,
	models.DeviceTracheostomy:    20,
	models.DeviceDrain:           10,
	models.DeviceFeedingTube:     12,
}

// deviceOrder pins the rationale ordering; ranging over the device map
// would shuffle it between runs.
var deviceOrder = []string{
	models.DeviceCentralLine,
	models.DeviceVentilation,
	models.DeviceUrinaryCatheter,
	models.DeviceTracheostomy,
	models.DeviceDrain,
	models.DeviceFeedingTube,
}

var deviceLabels = map[string]string{
	models.DeviceCentralLine:     "Central line",
	models.DeviceVentilation:     "Mechanical ventilation",
	models.DeviceUrinaryCatheter: "Urinary catheter",
	models.DeviceTracheostomy:    "Tracheostomy",
	models.DeviceDrain:           "Drain",
	models.DeviceFeedingTube:     "Feeding tube",
}

var resistanceWeights = map[string]int{
	"ESBL": 15,
	"CRE":  25,
	"KPC":  30,
	"NDM":  35,
	"MRSA": 20,
	"VRE":  25,
	"XDR":  30,
	"PDR":  40,
}

var recommendations = map[string][]string{
	models.LevelCritical: {
		"Immediate isolation and infection control committee notification",
		"Urgent infectious disease consult",
		"Collect samples and start broad empirical antibiotic therapy per local protocols",
		"Intensive monitoring and consider supportive therapy (vasopressors, ventilation)",
	},
	models.LevelVeryHigh: {
		"Infectious disease consult within 2h",
		"Collect cultures and antibiogram",
		"Preventive isolation",
	},
	models.LevelHigh: {
		"Active IAAM surveillance",
		"Collect targeted cultures",
		"Monitor parameters every 8h",
	},
	models.LevelModerate: {
		"Extended monitoring",
		"Complete documentation in the observation chart",
	},
	models.LevelLow: {
		"Standard monitoring",
		"Standard precautions",
	},
}

func deviceWeight(kind string) int {
	if w, ok := deviceWeights[kind]; ok {
		return w
	}
	return defaultDeviceWeight
}

func deviceLabel(kind string) string {
	if label, ok := deviceLabels[kind]; ok {
		return label
	}
	return kind
}

func resistanceWeight(tag string) int {
	if w, ok := resistanceWeights[tag]; ok {
		return w
	}
	return defaultResistanceWeight
}

func durationBonus(days int) int {
	switch {
	case days > 7:
		return 10
	case days > 3:
		return 5
	default:
		return 0
	}
}

func levelFor(score int) string {
	switch {
	case score >= thresholdCritical:
		return models.LevelCritical
	case score >= thresholdVeryHigh:
		return models.LevelVeryHigh
	case score >= thresholdHigh:
		return models.LevelHigh
	case score >= thresholdModerate:
		return models.LevelModerate
	default:
		return models.LevelLow
	}
}
