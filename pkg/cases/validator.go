package cases

import (
	"errors"
	"fmt"
	"strings"

	"github.com/salulink/authi/pkg/common/models"
)

var (
	errEmptyNotes        = errors.New("patient notes required")
	errQuantityRange     = errors.New("treatment quantity out of range")
	errMissingMotivation = errors.New("motivation required for plan-excluded medicine")
)

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

// ValidateInput enforces the save-time invariants: notes present, every
// treatment quantity within [0, coverage limit], and a written motivation
// on any medicine excluded from its chosen plan.
func ValidateInput(input models.CaseInput) error {
	if strings.TrimSpace(input.PatientNotes) == "" {
		return ValidationError{reason: errEmptyNotes}
	}

	for _, treatment := range input.Treatments {
		if treatment.Quantity < 0 || treatment.Quantity > treatment.CoverageLimit {
			return ValidationError{reason: fmt.Errorf(
				"procedure %s quantity %d exceeds coverage limit %d: %w",
				treatment.ProcedureCode, treatment.Quantity, treatment.CoverageLimit, errQuantityRange,
			)}
		}
	}

	for _, medicine := range input.Medicines {
		if medicine.PlanType == nil || len(medicine.PlanExclusions) == 0 {
			continue
		}
		for _, excluded := range medicine.PlanExclusions {
			if excluded == string(medicine.PlanType.Category) && strings.TrimSpace(medicine.Motivation) == "" {
				return ValidationError{reason: fmt.Errorf(
					"medicine %s excluded from plan %s: %w",
					medicine.MedicineName, medicine.PlanType.Name, errMissingMotivation,
				)}
			}
		}
	}

	return nil
}
