package record

import (
	"reflect"
	"testing"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

func sampleRecord() models.ClinicalRecord {
	rec := NewClinicalRecord()
	rec.Patient = "Pacient_007"
	rec.Ward = "Chirurgie"
	rec.Hours = 96
	rec.Devices[models.DeviceDrain] = models.DeviceExposure{Present: true, Days: 2}
	rec.Labs["crp"] = 20.0
	rec.Resistances = []string{"ESBL"}
	return rec
}

func TestNewClinicalRecordDefaults(t *testing.T) {
	rec := NewClinicalRecord()
	if rec.PaO2FiO2 != 400 || rec.Platelets != 200 || rec.Bilirubin != 1.0 {
		t.Fatalf("organ defaults wrong: %+v", rec)
	}
	if rec.Glasgow != 15 || rec.Creatinine != 1.0 || rec.UrineOutput != 1.0 {
		t.Fatalf("organ defaults wrong: %+v", rec)
	}
	if rec.SystolicBP != 120 || rec.RespiratoryRate != 18 {
		t.Fatalf("vital defaults wrong: %+v", rec)
	}
	if rec.Devices == nil || rec.Labs == nil {
		t.Fatalf("maps not seeded")
	}
}

func TestMergeMapsValues(t *testing.T) {
	set := models.ExtractedValueSet{
		Values: map[string]float64{
			"wbc":            13.5,
			"crp":            140,
			"procalcitonina": 2.5,
			"hemoglobina":    9.8,
			"temperatura":    38.2,
			"fc":             95,
			"tas":            100,
			"tad":            60,
			"creatinina":     2.1,
		},
		OrganismFound: true,
		Organism:      "Escherichia coli",
		Resistances:   []string{"ESBL", "CRE"},
	}

	out := Merge(sampleRecord(), set)

	if out.Labs["wbc"] != 13.5 || out.Labs["crp"] != 140.0 || out.Labs["hemoglobina"] != 9.8 {
		t.Fatalf("lab panel = %v", out.Labs)
	}
	if out.Labs["pct"] != 2.5 {
		t.Fatalf("procalcitonin not stored under pct: %v", out.Labs)
	}
	if _, ok := out.Labs["procalcitonina"]; ok {
		t.Fatalf("extraction key leaked into panel: %v", out.Labs)
	}
	if out.Temperature != 38.2 || out.HeartRate != 95 {
		t.Fatalf("vitals = %v / %v", out.Temperature, out.HeartRate)
	}
	if out.SystolicBP != 100 || out.DiastolicBP != 60 {
		t.Fatalf("blood pressure = %d/%d", out.SystolicBP, out.DiastolicBP)
	}
	if out.Creatinine != 2.1 {
		t.Fatalf("creatinine = %v", out.Creatinine)
	}
	if !out.CulturePositive || out.Organism != "Escherichia coli" {
		t.Fatalf("microbiology = %v %q", out.CulturePositive, out.Organism)
	}
	if !reflect.DeepEqual(out.Resistances, []string{"ESBL", "CRE"}) {
		t.Fatalf("resistances = %v, want replaced list", out.Resistances)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	rec := sampleRecord()
	set := models.ExtractedValueSet{
		Values:        map[string]float64{"wbc": 13.5, "tas": 100, "creatinina": 3.0},
		OrganismFound: true,
		Organism:      "Klebsiella pneumoniae",
		Resistances:   []string{"CRE"},
	}

	_ = Merge(rec, set)

	if !reflect.DeepEqual(rec, sampleRecord()) {
		t.Fatalf("input record mutated: %+v", rec)
	}
}

func TestMergeEmptySetKeepsRecord(t *testing.T) {
	rec := sampleRecord()
	out := Merge(rec, models.ExtractedValueSet{Values: map[string]float64{}})

	if !reflect.DeepEqual(out, rec) {
		t.Fatalf("empty merge changed the record:\n%+v\n%+v", out, rec)
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(sampleRecord()); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	rec := sampleRecord()
	rec.Patient = ""
	if err := v.Validate(rec); !IsValidationError(err) {
		t.Fatalf("missing patient not flagged: %v", err)
	}

	rec = sampleRecord()
	rec.Hours = -1
	if err := v.Validate(rec); !IsValidationError(err) {
		t.Fatalf("negative hours not flagged: %v", err)
	}

	rec = sampleRecord()
	rec.Devices["ecmo"] = models.DeviceExposure{Present: true, Days: -2}
	if err := v.Validate(rec); !IsValidationError(err) {
		t.Fatalf("negative device days not flagged: %v", err)
	}

	rec = sampleRecord()
	rec.Hours = 24 * 800
	if err := v.Validate(rec); !IsValidationError(err) {
		t.Fatalf("implausible stay not flagged: %v", err)
	}
}

func TestValidateUnknownDeviceKindAllowed(t *testing.T) {
	v := NewValidator()
	rec := sampleRecord()
	rec.Devices["ecmo"] = models.DeviceExposure{Present: true, Days: 3}
	if err := v.Validate(rec); err != nil {
		t.Fatalf("unknown device kind rejected: %v", err)
	}
}
