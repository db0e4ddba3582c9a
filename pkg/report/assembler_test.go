package report

import (
	"strings"
	"testing"
	"time"

	"github.com/salulink/authi/pkg/common/models"
)

func sampleClaim() models.ClaimDocument {
	return models.ClaimDocument{
		OriginalNote:        "Patient has type 2 diabetes and hypertension",
		ConfirmedConditions: []string{"Diabetes Mellitus Type 2", "Hypertension"},
		SelectedICDCodes: []models.ICDCode{
			{Code: "E11.9", Description: "Type 2 diabetes mellitus without complications", Condition: "Diabetes Mellitus Type 2"},
		},
		DiagnosticTreatments: []models.TreatmentSelection{
			{
				Treatment: models.Treatment{
					Condition: "Hypertension", ProcedureName: "ECG", ProcedureCode: "1232",
					CoverageLimit: 2, BasketType: models.BasketDiagnostic,
				},
				Quantity: 1,
				Evidence: []models.Evidence{
					{Type: models.EvidenceNote, Content: "Resting ECG performed"},
					{Type: models.EvidenceFile, Content: "https://files/ecg.pdf", FileName: "ecg.pdf"},
				},
			},
		},
		ManagementTreatments: []models.TreatmentSelection{
			{
				Treatment: models.Treatment{
					Condition: "Hypertension", ProcedureName: "Specialist consultation", ProcedureCode: "0190",
					CoverageLimit: 12, BasketType: models.BasketOngoingManagement,
				},
				Quantity: 4,
			},
		},
		MedicineSelections: []models.MedicineSelection{
			{
				Medicine: models.Medicine{
					Condition: "Hypertension", MedicineClass: "Beta Blockers", ActiveIngredient: "Atenolol",
					MedicineName: "Tenormin 50mg", CDACore: 99, CDAExecutive: 120,
					PlanExclusions: []string{"KeyCare"},
				},
				PlanType:   &models.PlanType{ID: "core", Name: "Core Plans", Category: models.PlanCore},
				Motivation: "Clinically required despite exclusion",
			},
		},
		GeneratedAt: time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC),
	}
}

func TestRenderIncludesAllSections(t *testing.T) {
	document, err := Render(sampleClaim())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	text := string(document)
	for _, want := range []string{
		"PMB COMPLIANCE CLAIM",
		"Patient has type 2 diabetes and hypertension",
		"Diabetes Mellitus Type 2",
		"E11.9",
		"ECG [1232] quantity 1 of 2 covered",
		"Resting ECG performed",
		"ecg.pdf",
		"Specialist consultation [0190] quantity 4 of 12 covered",
		"Tenormin 50mg (Beta Blockers, Atenolol)",
		"CDA core: R 99.00 | CDA executive: R 120.00",
		"plan: Core Plans",
		"motivation: Clinically required despite exclusion",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendered document missing %q:\n%s", want, text)
		}
	}
}

func TestRenderEmptyClaim(t *testing.T) {
	document, err := Render(models.ClaimDocument{OriginalNote: "note only"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if count := strings.Count(string(document), "(none)"); count != 5 {
		t.Fatalf("expected 5 empty-section markers, got %d:\n%s", count, document)
	}
}

func TestRenderOmitsMissingMotivationAndPlan(t *testing.T) {
	claim := sampleClaim()
	claim.MedicineSelections[0].PlanType = nil
	claim.MedicineSelections[0].Motivation = ""

	document, err := Render(claim)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(string(document), "plan:") || strings.Contains(string(document), "motivation:") {
		t.Fatalf("expected optional lines omitted:\n%s", document)
	}
}

func TestClaimFromCaseSplitsBaskets(t *testing.T) {
	detail := models.CaseDetail{
		Case: models.CaseSummary{
			PatientNotes:       "notes",
			DetectedConditions: []string{"Hypertension"},
		},
		ICDCodes: []models.ICDCode{{Code: "I10"}},
		Treatments: []models.SavedTreatment{
			{ProcedureName: "ECG", ProcedureCode: "1232", BasketType: models.BasketDiagnostic, Quantity: 1, CoverageLimit: 2},
			{ProcedureName: "Consult", ProcedureCode: "0190", BasketType: models.BasketOngoingManagement, Quantity: 3, CoverageLimit: 12},
		},
		Medicines: []models.SavedMedicine{
			{MedicineName: "Tenormin 50mg", PlanType: "Core Plans", Motivation: "needed"},
		},
	}

	claim := ClaimFromCase(detail)
	if len(claim.DiagnosticTreatments) != 1 || claim.DiagnosticTreatments[0].ProcedureCode != "1232" {
		t.Fatalf("unexpected diagnostic treatments: %+v", claim.DiagnosticTreatments)
	}
	if len(claim.ManagementTreatments) != 1 || claim.ManagementTreatments[0].Quantity != 3 {
		t.Fatalf("unexpected management treatments: %+v", claim.ManagementTreatments)
	}
	if claim.MedicineSelections[0].PlanType == nil || claim.MedicineSelections[0].PlanType.Name != "Core Plans" {
		t.Fatalf("expected plan carried over, got %+v", claim.MedicineSelections[0].PlanType)
	}
}
