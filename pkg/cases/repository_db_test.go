package cases

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/salulink/authi/pkg/common/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "cases.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	repo := NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return repo
}

func fullCaseInput() models.CaseInput {
	return models.CaseInput{
		PatientNotes:       "Patient has hypertension, follow-up in 3 months",
		DetectedConditions: []string{"Hypertension"},
		AnalysisConfidence: 0.84,
		ICDCodes: []models.ICDCode{
			{Code: "I10", Description: "Essential (primary) hypertension", Condition: "Hypertension"},
			{Code: "I50.0", Description: "Congestive heart failure", Condition: "Cardiac Failure"},
		},
		Treatments: []models.TreatmentSelection{
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
			{
				Treatment: models.Treatment{
					Condition: "Hypertension", ProcedureName: "Follow-up ECG", ProcedureCode: "1232",
					CoverageLimit: 12, BasketType: models.BasketOngoingManagement,
				},
				Quantity: 4,
			},
		},
		Medicines: []models.MedicineSelection{
			{
				Medicine: models.Medicine{
					Condition: "Hypertension", MedicineClass: "Beta Blockers", ActiveIngredient: "Atenolol",
					MedicineName: "Tenormin 50mg", CDACore: 99, CDAExecutive: 120,
				},
				PlanType:   &models.PlanType{ID: "core", Name: "Core Plans", Category: models.PlanCore},
				Motivation: "needed",
			},
		},
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	input := fullCaseInput()

	caseID, err := repo.Save(context.Background(), input)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	detail, err := repo.Get(context.Background(), caseID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if detail.Case.ID != caseID || detail.Case.PatientNotes != input.PatientNotes {
		t.Fatalf("unexpected case header: %+v", detail.Case)
	}
	if len(detail.Case.DetectedConditions) != 1 || detail.Case.DetectedConditions[0] != "Hypertension" {
		t.Fatalf("unexpected detected conditions: %v", detail.Case.DetectedConditions)
	}
	codes := map[string]string{}
	for _, icd := range detail.ICDCodes {
		codes[icd.Code] = icd.Condition
	}
	if len(codes) != 2 || codes["I10"] != "Hypertension" || codes["I50.0"] != "Cardiac Failure" {
		t.Fatalf("unexpected ICD codes: %+v", detail.ICDCodes)
	}
	if len(detail.Treatments) != 2 {
		t.Fatalf("expected 2 treatments, got %d", len(detail.Treatments))
	}
	if len(detail.Medicines) != 1 {
		t.Fatalf("expected 1 medicine, got %d", len(detail.Medicines))
	}

	medicine := detail.Medicines[0]
	if medicine.MedicineName != "Tenormin 50mg" || medicine.PlanType != "Core Plans" || medicine.Motivation != "needed" {
		t.Fatalf("unexpected medicine: %+v", medicine)
	}
	if medicine.CDACore != 99 || medicine.CDAExecutive != 120 {
		t.Fatalf("unexpected amounts: %+v", medicine)
	}
}

func TestSaveLinksEvidenceToOwningBasketRow(t *testing.T) {
	repo := newTestRepository(t)

	// Both treatments share procedure code 1232; evidence must land on the
	// diagnostic row only.
	caseID, err := repo.Save(context.Background(), fullCaseInput())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	detail, err := repo.Get(context.Background(), caseID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	for _, treatment := range detail.Treatments {
		switch treatment.BasketType {
		case models.BasketDiagnostic:
			if len(treatment.Evidence) != 2 {
				t.Fatalf("expected 2 evidence items on diagnostic row, got %+v", treatment.Evidence)
			}
			for _, evidence := range treatment.Evidence {
				switch evidence.Type {
				case models.EvidenceNote:
					if evidence.Content != "Resting ECG performed" || evidence.FileName != "Note" {
						t.Fatalf("unexpected note evidence: %+v", evidence)
					}
				case models.EvidenceFile:
					if evidence.Content != "https://files/ecg.pdf" || evidence.FileName != "ecg.pdf" {
						t.Fatalf("unexpected file evidence: %+v", evidence)
					}
				default:
					t.Fatalf("unexpected evidence type %q", evidence.Type)
				}
			}
		case models.BasketOngoingManagement:
			if len(treatment.Evidence) != 0 {
				t.Fatalf("expected no evidence on ongoing row, got %+v", treatment.Evidence)
			}
		default:
			t.Fatalf("unexpected basket type %q", treatment.BasketType)
		}
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	repo := newTestRepository(t)

	first := fullCaseInput()
	first.PatientNotes = "first case"
	firstID, err := repo.Save(context.Background(), first)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	second := fullCaseInput()
	second.PatientNotes = "second case"
	secondID, err := repo.Save(context.Background(), second)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	summaries, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(summaries))
	}
	if summaries[0].ID != secondID || summaries[1].ID != firstID {
		t.Fatalf("expected newest first, got %s then %s", summaries[0].ID, summaries[1].ID)
	}
}

func TestDeleteRemovesCase(t *testing.T) {
	repo := newTestRepository(t)

	caseID, err := repo.Save(context.Background(), fullCaseInput())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := repo.Delete(context.Background(), caseID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	summaries, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected no cases after delete, got %d", len(summaries))
	}

	if _, err := repo.Get(context.Background(), caseID); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestDeleteUnknownCase(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.Delete(context.Background(), "not-a-uuid"); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound for bad id, got %v", err)
	}
	if err := repo.Delete(context.Background(), "6a5d6d3e-9b2f-4f4e-9a8e-0f8e2f9d6c1a"); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound for absent id, got %v", err)
	}
}
