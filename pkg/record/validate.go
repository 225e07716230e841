package record

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/razorlong2/epimind-app/pkg/common/models"
)

var errHoursRange = errors.New("hours out of range")

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Validator checks structural constraints on incoming records. Unknown
// device kinds pass: the engine scores them with the fallback weight.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(rec models.ClinicalRecord) error {
	if v == nil {
		return ValidationError{reason: errors.New("validator not initialised")}
	}

	if err := v.validate.Struct(rec); err != nil {
		return ValidationError{reason: err}
	}

	// Two years of hospitalization is already generous for one admission.
	if rec.Hours > 24*730 {
		return ValidationError{reason: fmt.Errorf("hours %d exceeds plausible stay: %w", rec.Hours, errHoursRange)}
	}

	return nil
}

// ValidateExtraction guards the free-text endpoint.
func (v *Validator) ValidateExtraction(req models.ExtractionRequest) error {
	if v == nil {
		return ValidationError{reason: errors.New("validator not initialised")}
	}
	if err := v.validate.Struct(req); err != nil {
		return ValidationError{reason: err}
	}
	return nil
}
