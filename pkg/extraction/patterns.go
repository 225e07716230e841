package extraction

import (
	"errors"
	"io/ioutil"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FieldPattern holds the ordered regex variants for one numeric field. The
// first pattern whose capture group parses as a number wins.
type FieldPattern struct {
	Field    string   `yaml:"field" json:"field"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// NamedPattern maps a regex to the canonical value it stands for, either an
// organism name or a resistance tag.
type NamedPattern struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Value   string `yaml:"value" json:"value"`
}

type PatternConfig struct {
	Fields            []FieldPattern `yaml:"fields" json:"fields"`
	BloodPressure     string         `yaml:"blood_pressure" json:"blood_pressure"`
	Organisms         []NamedPattern `yaml:"organisms" json:"organisms"`
	Resistances       []NamedPattern `yaml:"resistances" json:"resistances"`
	QualityVocabulary []string       `yaml:"quality_vocabulary" json:"quality_vocabulary"`
}

func LoadPatterns(path string) (PatternConfig, error) {
	if path == "" {
		return DefaultPatterns(), nil
	}
	content, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultPatterns(), err
	}

	var cfg PatternConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return PatternConfig{}, err
	}

	if len(cfg.Fields) == 0 {
		return PatternConfig{}, errors.New("no extraction patterns configured")
	}

	return cfg, nil
}

// DefaultPatterns carries the built-in bilingual (Romanian/English) pattern
// set. All patterns run against lowercased text.
func DefaultPatterns() PatternConfig {
	return PatternConfig{
		Fields: []FieldPattern{
			{Field: "wbc", Patterns: []string{
				`(?:leucocite|wbc|gb)[:\s]*(\d+(?:\.\d+)?)`,
				`(\d+(?:\.\d+)?)\s*(?:x\s*)?10\^?3\s*/?μl.*leucocite`,
			}},
			{Field: "crp", Patterns: []string{
				`crp[:\s]*(\d+(?:\.\d+)?)`,
				`proteina\s+c\s+reactiva[:\s]*(\d+(?:\.\d+)?)`,
			}},
			{Field: "procalcitonina", Patterns: []string{
				`procalcitonina[:\s]*(\d+(?:\.\d+)?)`,
				`pct[:\s]*(\d+(?:\.\d+)?)`,
			}},
			{Field: "temperatura", Patterns: []string{
				`(?:temperatura|temp)[:\s]*(\d+(?:\.\d+)?)\s*°?c?`,
				`(\d+(?:\.\d+)?)\s*°c`,
			}},
			{Field: "fc", Patterns: []string{
				`(?:puls|fc|hr)[:\s]*(\d+)`,
				`frecventa\s+cardiaca[:\s]*(\d+)`,
			}},
			{Field: "hemoglobina", Patterns: []string{
				`(?:hemoglobina|hgb?)[:\s]*(\d+(?:\.\d+)?)`,
			}},
			{Field: "creatinina", Patterns: []string{
				`creatinina[:\s]*(\d+(?:\.\d+)?)`,
			}},
		},
		BloodPressure: `(?:ta|tensiune|bp)[:\s]*(\d+)/(\d+)`,
		Organisms: []NamedPattern{
			{Pattern: `escherichia\s+coli|e\.?\s*coli`, Value: "Escherichia coli"},
			{Pattern: `klebsiella\s+pneumoniae`, Value: "Klebsiella pneumoniae"},
			{Pattern: `pseudomonas\s+aeruginosa`, Value: "Pseudomonas aeruginosa"},
			{Pattern: `staphylococcus\s+aureus`, Value: "Staphylococcus aureus"},
			{Pattern: `acinetobacter\s+baumannii`, Value: "Acinetobacter baumannii"},
		},
		Resistances: []NamedPattern{
			{Pattern: `esbl\+?|extended.spectrum`, Value: "ESBL"},
			{Pattern: `mrsa|methicillin.resistant`, Value: "MRSA"},
			{Pattern: `vre|vancomycin.resistant`, Value: "VRE"},
			{Pattern: `cre|carbapenem.resistant`, Value: "CRE"},
		},
		QualityVocabulary: []string{
			"pacient", "analiza", "rezultat", "valoare", "normal", "crescut", "laborator",
		},
	}
}
