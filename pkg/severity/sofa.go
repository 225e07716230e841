package severity

import "github.com/razorlong2/epimind-app/pkg/common/models"

// SOFA component names as they appear in the breakdown.
const (
	ComponentRespiratory    = "respiratory"
	ComponentCoagulation    = "coagulation"
	ComponentHepatic        = "hepatic"
	ComponentCardiovascular = "cardiovascular"
	ComponentCNS            = "cns"
	ComponentRenal          = "renal"
)

// SOFA computes the six-component organ dysfunction score, 0-4 per
// component, 0-24 total. Inputs missing from the record rely on the
// clinically normal defaults seeded by record.NewClinicalRecord.
func SOFA(rec models.ClinicalRecord) models.SOFAResult {
	components := map[string]int{
		ComponentRespiratory:    0,
		ComponentCoagulation:    0,
		ComponentHepatic:        0,
		ComponentCardiovascular: 0,
		ComponentCNS:            0,
		ComponentRenal:          0,
	}

	switch {
	case rec.PaO2FiO2 < 100:
		components[ComponentRespiratory] = 4
	case rec.PaO2FiO2 < 200:
		components[ComponentRespiratory] = 3
	case rec.PaO2FiO2 < 300:
		components[ComponentRespiratory] = 2
	case rec.PaO2FiO2 < 400:
		components[ComponentRespiratory] = 1
	}

	switch {
	case rec.Platelets < 20:
		components[ComponentCoagulation] = 4
	case rec.Platelets < 50:
		components[ComponentCoagulation] = 3
	case rec.Platelets < 100:
		components[ComponentCoagulation] = 2
	case rec.Platelets < 150:
		components[ComponentCoagulation] = 1
	}

	switch {
	case rec.Bilirubin >= 12.0:
		components[ComponentHepatic] = 4
	case rec.Bilirubin >= 6.0:
		components[ComponentHepatic] = 3
	case rec.Bilirubin >= 2.0:
		components[ComponentHepatic] = 2
	case rec.Bilirubin >= 1.2:
		components[ComponentHepatic] = 1
	}

	if rec.Hypotension {
		components[ComponentCardiovascular] = max(components[ComponentCardiovascular], 2)
	}
	if rec.Vasopressors {
		components[ComponentCardiovascular] = max(components[ComponentCardiovascular], 3)
	}

	switch {
	case rec.Glasgow < 6:
		components[ComponentCNS] = 4
	case rec.Glasgow < 10:
		components[ComponentCNS] = 3
	case rec.Glasgow < 13:
		components[ComponentCNS] = 2
	case rec.Glasgow < 15:
		components[ComponentCNS] = 1
	}

	// Renal scores on creatinine or urine output, whichever grades worse.
	renal := 0
	switch {
	case rec.Creatinine >= 5.0:
		renal = 4
	case rec.Creatinine >= 3.5:
		renal = 3
	case rec.Creatinine >= 2.0:
		renal = 2
	case rec.Creatinine >= 1.2:
		renal = 1
	}
	switch {
	case rec.UrineOutput < 0.1:
		renal = max(renal, 4)
	case rec.UrineOutput < 0.3:
		renal = max(renal, 3)
	case rec.UrineOutput < 0.5:
		renal = max(renal, 1)
	}
	components[ComponentRenal] = renal

	total := 0
	for _, v := range components {
		total += v
	}

	return models.SOFAResult{Total: total, Components: components}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
