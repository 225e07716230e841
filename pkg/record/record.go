package record

import "github.com/razorlong2/epimind-app/pkg/common/models"

// NewClinicalRecord returns a record seeded with clinically normal values.
// Decoding a sparse JSON payload over it leaves untouched fields at their
// defaults, which is what the scorers expect.
func NewClinicalRecord() models.ClinicalRecord {
	return models.ClinicalRecord{
		PaO2FiO2:        400,
		Platelets:       200,
		Bilirubin:       1.0,
		Glasgow:         15,
		Creatinine:      1.0,
		UrineOutput:     1.0,
		SystolicBP:      120,
		DiastolicBP:     80,
		RespiratoryRate: 18,
		Temperature:     36.6,
		HeartRate:       80,
		Devices:         map[string]models.DeviceExposure{},
		Labs:            map[string]interface{}{},
	}
}

// Merge applies one complete extraction run onto a record and returns the
// updated copy. The input record is never mutated. Laboratory values land in
// the panel (procalcitonin under its structured key "pct"), vitals and
// creatinine on the record itself; a detected organism marks the culture
// positive and a non-empty resistance list replaces the previous one.
func Merge(rec models.ClinicalRecord, set models.ExtractedValueSet) models.ClinicalRecord {
	out := rec
	out.Devices = cloneDevices(rec.Devices)
	out.Labs = cloneLabs(rec.Labs)
	out.Resistances = append([]string(nil), rec.Resistances...)

	for key, value := range set.Values {
		switch key {
		case "wbc", "crp", "hemoglobina":
			out.Labs[key] = value
		case "procalcitonina":
			out.Labs["pct"] = value
		case "temperatura":
			out.Temperature = value
		case "fc":
			out.HeartRate = int(value)
		case "tas":
			out.SystolicBP = int(value)
		case "tad":
			out.DiastolicBP = int(value)
		case "creatinina":
			out.Creatinine = value
		}
	}

	if set.OrganismFound {
		out.CulturePositive = true
		out.Organism = set.Organism
	}
	if len(set.Resistances) > 0 {
		out.Resistances = append([]string(nil), set.Resistances...)
	}

	return out
}

func cloneDevices(devices map[string]models.DeviceExposure) map[string]models.DeviceExposure {
	out := make(map[string]models.DeviceExposure, len(devices))
	for kind, exposure := range devices {
		out[kind] = exposure
	}
	return out
}

func cloneLabs(labs map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(labs))
	for key, value := range labs {
		out[key] = value
	}
	return out
}
