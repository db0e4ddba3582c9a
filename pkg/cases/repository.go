package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salulink/authi/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrCaseNotFound = errors.New("case not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type caseModel struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	PatientNotes       string         `gorm:"column:patient_notes"`
	DetectedConditions datatypes.JSON `gorm:"column:detected_conditions"`
	AnalysisConfidence float64        `gorm:"column:analysis_confidence"`
	CreatedAt          time.Time      `gorm:"column:created_at;index"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
}

func (caseModel) TableName() string { return "cases" }

type caseICDCodeModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	CaseID      uuid.UUID `gorm:"type:uuid;column:case_id;index"`
	ICDCode     string    `gorm:"column:icd_code"`
	Description string    `gorm:"column:description"`
	Condition   string    `gorm:"column:condition"`
}

func (caseICDCodeModel) TableName() string { return "case_icd_codes" }

type caseTreatmentModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	CaseID        uuid.UUID `gorm:"type:uuid;column:case_id;index"`
	Condition     string    `gorm:"column:condition"`
	ProcedureName string    `gorm:"column:procedure_name"`
	ProcedureCode string    `gorm:"column:procedure_code"`
	BasketType    string    `gorm:"column:basket_type"`
	Quantity      int       `gorm:"column:quantity"`
	CoverageLimit int       `gorm:"column:coverage_limit"`
}

func (caseTreatmentModel) TableName() string { return "case_treatments" }

type caseEvidenceModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	CaseID       uuid.UUID `gorm:"type:uuid;column:case_id;index"`
	TreatmentID  uuid.UUID `gorm:"type:uuid;column:treatment_id;index"`
	EvidenceType string    `gorm:"column:evidence_type"`
	FileName     string    `gorm:"column:file_name"`
	Notes        string    `gorm:"column:notes"`
	FileURL      string    `gorm:"column:file_url"`
}

func (caseEvidenceModel) TableName() string { return "case_evidence" }

type caseMedicineModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	CaseID            uuid.UUID `gorm:"type:uuid;column:case_id;index"`
	Condition         string    `gorm:"column:condition"`
	MedicineClass     string    `gorm:"column:medicine_class"`
	MedicineName      string    `gorm:"column:medicine_name"`
	ActiveIngredient  string    `gorm:"column:active_ingredient"`
	CDACore           float64   `gorm:"column:cda_core"`
	CDAExecutive      float64   `gorm:"column:cda_executive"`
	PlanType          string    `gorm:"column:plan_type"`
	PrescriptionNotes string    `gorm:"column:prescription_notes"`
	Motivation        string    `gorm:"column:motivation"`
}

func (caseMedicineModel) TableName() string { return "case_medicines" }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&caseModel{},
		&caseICDCodeModel{},
		&caseTreatmentModel{},
		&caseEvidenceModel{},
		&caseMedicineModel{},
	)
}

// Save writes the case header and its ICD, treatment, evidence and medicine
// rows in a single transaction. Row identifiers are generated up front, so
// evidence links to its exact owning treatment row even when two treatments
// share a procedure code across baskets. The failing sub-step is named in
// the returned error.
func (r *Repository) Save(ctx context.Context, input models.CaseInput) (string, error) {
	now := time.Now().UTC()
	caseID := uuid.New()

	conditions, err := json.Marshal(input.DetectedConditions)
	if err != nil {
		return "", fmt.Errorf("failed to save case: %w", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := caseModel{
			ID:                 caseID,
			PatientNotes:       input.PatientNotes,
			DetectedConditions: datatypes.JSON(conditions),
			AnalysisConfidence: input.AnalysisConfidence,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to save case: %w", err)
		}

		if len(input.ICDCodes) > 0 {
			icdRows := make([]caseICDCodeModel, 0, len(input.ICDCodes))
			for _, icd := range input.ICDCodes {
				icdRows = append(icdRows, caseICDCodeModel{
					ID:          uuid.New(),
					CaseID:      caseID,
					ICDCode:     icd.Code,
					Description: icd.Description,
					Condition:   icd.Condition,
				})
			}
			if err := tx.Create(&icdRows).Error; err != nil {
				return fmt.Errorf("failed to save ICD codes: %w", err)
			}
		}

		for _, treatment := range input.Treatments {
			treatmentRow := caseTreatmentModel{
				ID:            uuid.New(),
				CaseID:        caseID,
				Condition:     treatment.Condition,
				ProcedureName: treatment.ProcedureName,
				ProcedureCode: treatment.ProcedureCode,
				BasketType:    string(treatment.BasketType),
				Quantity:      treatment.Quantity,
				CoverageLimit: treatment.CoverageLimit,
			}
			if err := tx.Create(&treatmentRow).Error; err != nil {
				return fmt.Errorf("failed to save treatments: %w", err)
			}

			for _, evidence := range treatment.Evidence {
				evidenceRow := caseEvidenceModel{
					ID:           uuid.New(),
					CaseID:       caseID,
					TreatmentID:  treatmentRow.ID,
					EvidenceType: string(evidence.Type),
					FileName:     evidence.FileName,
				}
				if evidenceRow.FileName == "" {
					evidenceRow.FileName = "Note"
				}
				if evidence.Type == models.EvidenceNote {
					evidenceRow.Notes = evidence.Content
				} else {
					evidenceRow.FileURL = evidence.Content
				}
				if err := tx.Create(&evidenceRow).Error; err != nil {
					return fmt.Errorf("failed to save evidence: %w", err)
				}
			}
		}

		if len(input.Medicines) > 0 {
			medicineRows := make([]caseMedicineModel, 0, len(input.Medicines))
			for _, medicine := range input.Medicines {
				planName := ""
				if medicine.PlanType != nil {
					planName = medicine.PlanType.Name
				}
				medicineRows = append(medicineRows, caseMedicineModel{
					ID:               uuid.New(),
					CaseID:           caseID,
					Condition:        medicine.Condition,
					MedicineClass:    medicine.MedicineClass,
					MedicineName:     medicine.MedicineName,
					ActiveIngredient: medicine.ActiveIngredient,
					CDACore:          medicine.CDACore,
					CDAExecutive:     medicine.CDAExecutive,
					PlanType:         planName,
					Motivation:       medicine.Motivation,
				})
			}
			if err := tx.Create(&medicineRows).Error; err != nil {
				return fmt.Errorf("failed to save medicines: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return caseID.String(), nil
}

func (r *Repository) List(ctx context.Context) ([]models.CaseSummary, error) {
	var rows []caseModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cases: %w", err)
	}

	summaries := make([]models.CaseSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, mapCaseModel(row))
	}
	return summaries, nil
}

func (r *Repository) Get(ctx context.Context, caseID string) (models.CaseDetail, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return models.CaseDetail{}, ErrCaseNotFound
	}

	var header caseModel
	err = r.db.WithContext(ctx).Where("id = ?", id).First(&header).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CaseDetail{}, ErrCaseNotFound
	}
	if err != nil {
		return models.CaseDetail{}, fmt.Errorf("failed to fetch case: %w", err)
	}

	var icdRows []caseICDCodeModel
	if err := r.db.WithContext(ctx).Where("case_id = ?", id).Find(&icdRows).Error; err != nil {
		return models.CaseDetail{}, fmt.Errorf("failed to fetch ICD codes: %w", err)
	}

	var treatmentRows []caseTreatmentModel
	if err := r.db.WithContext(ctx).Where("case_id = ?", id).Find(&treatmentRows).Error; err != nil {
		return models.CaseDetail{}, fmt.Errorf("failed to fetch treatments: %w", err)
	}

	var evidenceRows []caseEvidenceModel
	if err := r.db.WithContext(ctx).Where("case_id = ?", id).Find(&evidenceRows).Error; err != nil {
		return models.CaseDetail{}, fmt.Errorf("failed to fetch evidence: %w", err)
	}
	evidenceByTreatment := make(map[uuid.UUID][]models.Evidence)
	for _, row := range evidenceRows {
		evidenceByTreatment[row.TreatmentID] = append(evidenceByTreatment[row.TreatmentID], mapEvidenceModel(row))
	}

	var medicineRows []caseMedicineModel
	if err := r.db.WithContext(ctx).Where("case_id = ?", id).Find(&medicineRows).Error; err != nil {
		return models.CaseDetail{}, fmt.Errorf("failed to fetch medicines: %w", err)
	}

	detail := models.CaseDetail{
		Case:       mapCaseModel(header),
		ICDCodes:   make([]models.ICDCode, 0, len(icdRows)),
		Treatments: make([]models.SavedTreatment, 0, len(treatmentRows)),
		Medicines:  make([]models.SavedMedicine, 0, len(medicineRows)),
	}
	for _, row := range icdRows {
		detail.ICDCodes = append(detail.ICDCodes, models.ICDCode{
			Code:        row.ICDCode,
			Description: row.Description,
			Condition:   row.Condition,
		})
	}
	for _, row := range treatmentRows {
		treatment := mapTreatmentModel(row)
		treatment.Evidence = evidenceByTreatment[row.ID]
		if treatment.Evidence == nil {
			treatment.Evidence = []models.Evidence{}
		}
		detail.Treatments = append(detail.Treatments, treatment)
	}
	for _, row := range medicineRows {
		detail.Medicines = append(detail.Medicines, mapMedicineModel(row))
	}

	return detail, nil
}

func (r *Repository) Delete(ctx context.Context, caseID string) error {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return ErrCaseNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&caseModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete case: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCaseNotFound
		}

		for _, child := range []interface{}{
			&caseEvidenceModel{},
			&caseTreatmentModel{},
			&caseICDCodeModel{},
			&caseMedicineModel{},
		} {
			if err := tx.Where("case_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete case records: %w", err)
			}
		}
		return nil
	})
}

func mapCaseModel(row caseModel) models.CaseSummary {
	var conditions []string
	if len(row.DetectedConditions) > 0 {
		_ = json.Unmarshal(row.DetectedConditions, &conditions)
	}
	if conditions == nil {
		conditions = []string{}
	}
	return models.CaseSummary{
		ID:                 row.ID.String(),
		PatientNotes:       row.PatientNotes,
		DetectedConditions: conditions,
		AnalysisConfidence: row.AnalysisConfidence,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func mapTreatmentModel(row caseTreatmentModel) models.SavedTreatment {
	return models.SavedTreatment{
		ID:            row.ID.String(),
		CaseID:        row.CaseID.String(),
		Condition:     row.Condition,
		ProcedureName: row.ProcedureName,
		ProcedureCode: row.ProcedureCode,
		BasketType:    models.BasketType(row.BasketType),
		Quantity:      row.Quantity,
		CoverageLimit: row.CoverageLimit,
	}
}

func mapEvidenceModel(row caseEvidenceModel) models.Evidence {
	content := row.Notes
	if content == "" {
		content = row.FileURL
	}
	return models.Evidence{
		Type:     models.EvidenceType(row.EvidenceType),
		Content:  content,
		FileName: row.FileName,
	}
}

func mapMedicineModel(row caseMedicineModel) models.SavedMedicine {
	return models.SavedMedicine{
		ID:                row.ID.String(),
		CaseID:            row.CaseID.String(),
		Condition:         row.Condition,
		MedicineClass:     row.MedicineClass,
		MedicineName:      row.MedicineName,
		ActiveIngredient:  row.ActiveIngredient,
		CDACore:           row.CDACore,
		CDAExecutive:      row.CDAExecutive,
		PlanType:          row.PlanType,
		PrescriptionNotes: row.PrescriptionNotes,
		Motivation:        row.Motivation,
	}
}
