package catalog

import (
	"fmt"
	"io/ioutil"
	"math"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Organism pairs a pathogen with the resistance tags worth screening for.
type Organism struct {
	Name        string   `yaml:"name" json:"name"`
	Resistances []string `yaml:"resistances" json:"resistances"`
}

// InfectionType maps a nosocomial infection to its ICD-10 code.
type InfectionType struct {
	Name  string `yaml:"name" json:"name"`
	ICD10 string `yaml:"icd10" json:"icd10"`
}

// ComorbidityCondition is either flat-weighted (Points) or graded by
// severity (Grades). Graded entries ignore Points.
type ComorbidityCondition struct {
	Name   string         `yaml:"name" json:"name"`
	Points int            `yaml:"points,omitempty" json:"points,omitempty"`
	Grades map[string]int `yaml:"grades,omitempty" json:"grades,omitempty"`
}

type ComorbidityCategory struct {
	Name       string                 `yaml:"name" json:"name"`
	Conditions []ComorbidityCondition `yaml:"conditions" json:"conditions"`
}

// ValueRange labels the half-open interval [Min, Max). Open-ended ranges
// use .inf in YAML.
type ValueRange struct {
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
	Label string  `yaml:"label" json:"label"`
}

type Interpretation struct {
	Parameter string       `yaml:"parameter" json:"parameter"`
	Unit      string       `yaml:"unit" json:"unit"`
	Ranges    []ValueRange `yaml:"ranges" json:"ranges"`
}

// Catalog bundles the reference data served to collaborating systems and
// used to annotate extraction results.
type Catalog struct {
	Organisms       []Organism            `yaml:"organisms" json:"organisms"`
	InfectionTypes  []InfectionType       `yaml:"infection_types" json:"infection_types"`
	Comorbidities   []ComorbidityCategory `yaml:"comorbidities" json:"comorbidities"`
	Interpretations []Interpretation      `yaml:"interpretations" json:"interpretations"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Organisms) == 0 {
		return Catalog{}, fmt.Errorf("reference catalog empty")
	}
	return cat, nil
}

// ResistanceProfile returns the expected resistance tags for an organism.
func (c Catalog) ResistanceProfile(name string) ([]string, bool) {
	for _, organism := range c.Organisms {
		if strings.EqualFold(organism.Name, name) {
			return organism.Resistances, true
		}
	}
	return nil, false
}

// ICD10 resolves an infection type to its code.
func (c Catalog) ICD10(infection string) (string, bool) {
	for _, entry := range c.InfectionTypes {
		if strings.EqualFold(entry.Name, infection) {
			return entry.ICD10, true
		}
	}
	return "", false
}

// PointsFor resolves a comorbidity weight, honouring the severity grade for
// graded conditions.
func (c ComorbidityCondition) PointsFor(grade string) (int, bool) {
	if len(c.Grades) == 0 {
		return c.Points, true
	}
	points, ok := c.Grades[grade]
	return points, ok
}

// InterpretAll labels every value in an extraction result.
func (c Catalog) InterpretAll(values map[string]float64) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for parameter, value := range values {
		out[parameter] = c.Interpret(parameter, value)
	}
	return out
}

// Interpret labels a measured value, falling back to a referral note for
// parameters or values outside the catalog.
func (c Catalog) Interpret(parameter string, value float64) string {
	for _, interp := range c.Interpretations {
		if !strings.EqualFold(interp.Parameter, parameter) {
			continue
		}
		for _, r := range interp.Ranges {
			if r.Min <= value && value < r.Max {
				return r.Label
			}
		}
	}
	return "Check with the physician"
}

func DefaultCatalog() Catalog {
	inf := math.Inf(1)
	return Catalog{
		Organisms: []Organism{
			{Name: "Escherichia coli", Resistances: []string{"ESBL", "CRE", "AmpC", "NDM-1", "CTX-M"}},
			{Name: "Klebsiella pneumoniae", Resistances: []string{"ESBL", "CRE", "KPC", "NDM", "OXA-48"}},
			{Name: "Pseudomonas aeruginosa", Resistances: []string{"MDR", "XDR", "PDR"}},
			{Name: "Acinetobacter baumannii", Resistances: []string{"OXA-23", "OXA-24", "MDR"}},
			{Name: "Staphylococcus aureus", Resistances: []string{"MRSA", "VISA"}},
			{Name: "Enterococcus faecalis", Resistances: []string{"VRE"}},
			{Name: "Candida auris", Resistances: []string{"Fluconazole-R", "Echinocandin-R"}},
		},
		InfectionTypes: []InfectionType{
			{Name: "Bacteremia/septicemia", ICD10: "A41.9"},
			{Name: "Nosocomial pneumonia", ICD10: "J15.9"},
			{Name: "Nosocomial urinary tract infection", ICD10: "N39.0"},
			{Name: "Central line infection", ICD10: "T80.2"},
			{Name: "Surgical site infection", ICD10: "T81.4"},
			{Name: "Clostridioides difficile", ICD10: "A04.7"},
		},
		Comorbidities: []ComorbidityCategory{
			{Name: "Cardiovascular", Conditions: []ComorbidityCondition{
				{Name: "Hypertension", Grades: map[string]int{"Controlled": 3, "Uncontrolled": 6, "Hypertensive crisis": 12}},
				{Name: "Heart failure", Grades: map[string]int{"NYHA I": 3, "NYHA II": 5, "NYHA III": 10, "NYHA IV": 15}},
				{Name: "Ischemic heart disease", Grades: map[string]int{"Stable": 5, "Unstable": 10}},
				{Name: "Prior myocardial infarction", Points: 8},
				{Name: "Coronary interventions", Grades: map[string]int{"PCI": 5, "CABG": 7}},
				{Name: "Arrhythmias", Grades: map[string]int{"Paroxysmal AF": 5, "Permanent AF": 7, "VT/SVT": 10}},
				{Name: "Significant valvular disease", Points: 8},
				{Name: "Peripheral arterial disease", Points: 7},
				{Name: "Venous thromboembolism (history)", Points: 6},
			}},
			{Name: "Respiratory", Conditions: []ComorbidityCondition{
				{Name: "COPD", Grades: map[string]int{"GOLD I": 3, "GOLD II": 5, "GOLD III": 10, "GOLD IV": 15}},
				{Name: "Asthma", Grades: map[string]int{"Controlled": 3, "Partially controlled": 5, "Uncontrolled": 8}},
				{Name: "Pulmonary fibrosis", Points: 12},
				{Name: "Interstitial lung disease", Points: 10},
				{Name: "Pulmonary hypertension", Points: 12},
				{Name: "Sleep apnea syndrome", Points: 5},
				{Name: "Bronchiectasis", Points: 7},
				{Name: "Pulmonary tuberculosis", Grades: map[string]int{"History": 3, "Active": 10}},
			}},
			{Name: "Metabolic", Conditions: []ComorbidityCondition{
				{Name: "Diabetes mellitus", Grades: map[string]int{"Type 1": 10, "Type 2 controlled": 5, "Type 2 uncontrolled": 12, "Micro/macrovascular complications": 15}},
				{Name: "Obesity", Grades: map[string]int{"BMI 25-30": 2, "BMI 30-35": 3, "BMI 35-40": 5, "BMI >40": 8}},
				{Name: "Metabolic syndrome", Points: 6},
				{Name: "Dyslipidemia", Points: 3},
				{Name: "Steatosis/NAFLD", Points: 4},
				{Name: "Gout/hyperuricemia", Points: 4},
			}},
		},
		Interpretations: []Interpretation{
			{Parameter: "wbc", Unit: "×10³/μL", Ranges: []ValueRange{
				{Min: 0, Max: 4, Label: "Leukopenia"},
				{Min: 4, Max: 12, Label: "Normal"},
				{Min: 12, Max: inf, Label: "Leukocytosis"},
			}},
			{Parameter: "crp", Unit: "mg/L", Ranges: []ValueRange{
				{Min: 0, Max: 3, Label: "Normal"},
				{Min: 3, Max: 10, Label: "Slightly elevated"},
				{Min: 10, Max: 100, Label: "Moderately elevated"},
				{Min: 100, Max: inf, Label: "Very elevated"},
			}},
			{Parameter: "procalcitonina", Unit: "ng/mL", Ranges: []ValueRange{
				{Min: 0, Max: 0.1, Label: "Normal"},
				{Min: 0.1, Max: 0.5, Label: "Possible infection"},
				{Min: 0.5, Max: 2, Label: "Probable infection"},
				{Min: 2, Max: inf, Label: "Severe infection"},
			}},
			{Parameter: "temperatura", Unit: "°C", Ranges: []ValueRange{
				{Min: 0, Max: 36, Label: "Hypothermia"},
				{Min: 36, Max: 37.5, Label: "Normal"},
				{Min: 37.5, Max: 38.5, Label: "Low-grade fever"},
				{Min: 38.5, Max: inf, Label: "Fever"},
			}},
			{Parameter: "fc", Unit: "bpm", Ranges: []ValueRange{
				{Min: 0, Max: 60, Label: "Bradycardia"},
				{Min: 60, Max: 100, Label: "Normal"},
				{Min: 100, Max: inf, Label: "Tachycardia"},
			}},
		},
	}
}
