package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

type compiledField struct {
	field    string
	patterns []*regexp.Regexp
}

type compiledNamed struct {
	value string
	re    *regexp.Regexp
}

// Extractor pulls structured values out of free medical text. Safe for
// concurrent use once built.
type Extractor struct {
	fields        []compiledField
	bloodPressure *regexp.Regexp
	organisms     []compiledNamed
	resistances   []compiledNamed
	vocabulary    []string
}

var (
	numberToken = regexp.MustCompile(`\d+(?:\.\d+)?`)
	strayChars  = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:()/%\-°]`)
)

func NewExtractor(cfg PatternConfig) (*Extractor, error) {
	e := &Extractor{vocabulary: cfg.QualityVocabulary}

	for _, field := range cfg.Fields {
		cf := compiledField{field: field.Field}
		for _, pattern := range field.Patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, err
			}
			cf.patterns = append(cf.patterns, re)
		}
		e.fields = append(e.fields, cf)
	}

	if cfg.BloodPressure != "" {
		re, err := regexp.Compile(cfg.BloodPressure)
		if err != nil {
			return nil, err
		}
		e.bloodPressure = re
	}

	for _, organism := range cfg.Organisms {
		re, err := regexp.Compile(organism.Pattern)
		if err != nil {
			return nil, err
		}
		e.organisms = append(e.organisms, compiledNamed{value: organism.Value, re: re})
	}

	for _, resistance := range cfg.Resistances {
		re, err := regexp.Compile(resistance.Pattern)
		if err != nil {
			return nil, err
		}
		e.resistances = append(e.resistances, compiledNamed{value: resistance.Value, re: re})
	}

	return e, nil
}

// Extract runs every pattern group over the text and returns a complete
// fresh value set. Values that fail to parse are skipped silently; a later
// pattern for the same field may still match.
func (e *Extractor) Extract(text string) models.ExtractedValueSet {
	lower := strings.ToLower(text)
	set := models.ExtractedValueSet{Values: make(map[string]float64)}

	for _, field := range e.fields {
		for _, re := range field.patterns {
			match := re.FindStringSubmatch(lower)
			if match == nil {
				continue
			}
			value, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				continue
			}
			set.Values[field.field] = value
			break
		}
	}

	// Blood pressure only counts when both halves parse.
	if e.bloodPressure != nil {
		if match := e.bloodPressure.FindStringSubmatch(lower); match != nil {
			systolic, errSys := strconv.Atoi(match[1])
			diastolic, errDia := strconv.Atoi(match[2])
			if errSys == nil && errDia == nil {
				set.Values["tas"] = float64(systolic)
				set.Values["tad"] = float64(diastolic)
			}
		}
	}

	for _, organism := range e.organisms {
		if organism.re.MatchString(lower) {
			set.OrganismFound = true
			set.Organism = organism.value
			break
		}
	}

	for _, resistance := range e.resistances {
		if resistance.re.MatchString(lower) {
			set.Resistances = append(set.Resistances, resistance.value)
		}
	}

	return set
}

// EstimateQuality grades how usable a piece of recognised text looks,
// 0 to 100: plausible length, domain vocabulary, numeric density and the
// share of stray characters.
func (e *Extractor) EstimateQuality(text string) int {
	if text == "" {
		return 0
	}

	score := 0
	length := utf8.RuneCountInString(text)

	switch {
	case length >= 50 && length <= 5000:
		score += 25
	case length < 50:
		score += 10
	}

	lower := strings.ToLower(text)
	found := 0
	for _, word := range e.vocabulary {
		if strings.Contains(lower, word) {
			found++
		}
	}
	score += min(found*5, 25)

	if numbers := numberToken.FindAllString(text, -1); len(numbers) > 0 {
		score += min(len(numbers)*2, 25)
	}

	stray := len(strayChars.FindAllString(text, -1))
	if float64(stray) < float64(length)*0.05 {
		score += 25
	} else {
		score += 10
	}

	return min(score, 100)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
