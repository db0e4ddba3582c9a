package cases

import (
	"testing"

	"github.com/salulink/authi/pkg/common/models"
)

func validInput() models.CaseInput {
	return models.CaseInput{
		PatientNotes:       "Patient has hypertension",
		DetectedConditions: []string{"Hypertension"},
		AnalysisConfidence: 0.82,
		ICDCodes:           []models.ICDCode{{Code: "I10", Condition: "Hypertension"}},
		Treatments: []models.TreatmentSelection{
			{
				Treatment: models.Treatment{
					Condition: "Hypertension", ProcedureName: "ECG", ProcedureCode: "1232",
					CoverageLimit: 2, BasketType: models.BasketDiagnostic,
				},
				Quantity: 2,
			},
		},
		Medicines: []models.MedicineSelection{
			{
				Medicine: models.Medicine{
					Condition: "Hypertension", MedicineName: "Pharmapress 10mg",
				},
				PlanType: &models.PlanType{ID: "core", Name: "Core Plans", Category: models.PlanCore},
			},
		},
	}
}

func TestValidateInputAccepts(t *testing.T) {
	if err := ValidateInput(validInput()); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestValidateInputRejectsEmptyNotes(t *testing.T) {
	input := validInput()
	input.PatientNotes = "   "

	err := ValidateInput(input)
	if err == nil || !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateInputRejectsQuantityOverLimit(t *testing.T) {
	input := validInput()
	input.Treatments[0].Quantity = 3

	err := ValidateInput(input)
	if err == nil || !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateInputRejectsNegativeQuantity(t *testing.T) {
	input := validInput()
	input.Treatments[0].Quantity = -1

	if err := ValidateInput(input); err == nil {
		t.Fatal("expected validation error for negative quantity")
	}
}

func TestValidateInputRequiresMotivationForExcludedPlan(t *testing.T) {
	input := validInput()
	input.Medicines[0].PlanExclusions = []string{"core"}
	input.Medicines[0].Motivation = ""

	err := ValidateInput(input)
	if err == nil || !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	input.Medicines[0].Motivation = "specialist motivation attached"
	if err := ValidateInput(input); err != nil {
		t.Fatalf("expected motivation to satisfy the invariant, got %v", err)
	}
}

func TestValidateInputIgnoresExclusionForOtherPlan(t *testing.T) {
	input := validInput()
	// KeyCare is not an enumerated category, so a core plan needs no
	// motivation even though the exclusion list is non-empty.
	input.Medicines[0].PlanExclusions = []string{"KeyCare"}
	input.Medicines[0].Motivation = ""

	if err := ValidateInput(input); err != nil {
		t.Fatalf("expected input to be valid, got %v", err)
	}
}
