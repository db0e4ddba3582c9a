package models

import (
	"time"
)

// Reference data models. Loaded once from the scheme's delimited exports
// and immutable for the process lifetime.

type ConditionCategory string

const (
	CategoryCardiovascular ConditionCategory = "cardiovascular"
	CategoryEndocrine      ConditionCategory = "endocrine"
)

type Condition struct {
	Name        string            `json:"name"`
	ICDCode     string            `json:"icd_code"`
	Description string            `json:"description"`
	Category    ConditionCategory `json:"category"`
}

type BasketType string

const (
	BasketDiagnostic        BasketType = "diagnostic"
	BasketOngoingManagement BasketType = "ongoing_management"
)

type Treatment struct {
	Condition     string     `json:"condition"`
	ProcedureName string     `json:"procedure_name"`
	ProcedureCode string     `json:"procedure_code"`
	CoverageLimit int        `json:"coverage_limit"`
	BasketType    BasketType `json:"basket_type"`
}

type Medicine struct {
	Condition        string   `json:"condition"`
	MedicineClass    string   `json:"medicine_class"`
	ActiveIngredient string   `json:"active_ingredient"`
	MedicineName     string   `json:"medicine_name"`
	Strength         string   `json:"strength"`
	CDACore          float64  `json:"cda_core"`
	CDAExecutive     float64  `json:"cda_executive"`
	PlanExclusions   []string `json:"plan_exclusions,omitempty"`
}

type ICDCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
}

type PlanCategory string

const (
	PlanCore          PlanCategory = "core"
	PlanPriority      PlanCategory = "priority"
	PlanSaver         PlanCategory = "saver"
	PlanExecutive     PlanCategory = "executive"
	PlanComprehensive PlanCategory = "comprehensive"
)

type PlanType struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Category PlanCategory `json:"category"`
}

// Clinical note analysis

type AnalysisResult struct {
	DetectedConditions   []string `json:"detected_conditions"`
	Confidence           float64  `json:"confidence"`
	ProcessingTimeMillis int64    `json:"processing_time_ms"`
}

// Compliance

type ComplianceStatus string

const (
	StatusCompliant      ComplianceStatus = "compliant"
	StatusNonCompliant   ComplianceStatus = "non_compliant"
	StatusRequiresReview ComplianceStatus = "requires_review"
)

type ComplianceResult struct {
	ICDCodes   []ICDCode        `json:"icd_codes"`
	Treatments []Treatment      `json:"treatments"`
	Medicines  []Medicine       `json:"medicines"`
	Status     ComplianceStatus `json:"compliance_status"`
}

type TreatmentBasket struct {
	Diagnostic        []Treatment `json:"diagnostic"`
	OngoingManagement []Treatment `json:"ongoing_management"`
}

// Case persistence

type EvidenceType string

const (
	EvidenceNote EvidenceType = "note"
	EvidenceFile EvidenceType = "file"
)

type Evidence struct {
	Type     EvidenceType `json:"type"`
	Content  string       `json:"content"`
	FileName string       `json:"file_name,omitempty"`
}

type TreatmentSelection struct {
	Treatment
	Quantity int        `json:"quantity"`
	Evidence []Evidence `json:"evidence,omitempty"`
}

type MedicineSelection struct {
	Medicine
	PlanType   *PlanType `json:"plan_type,omitempty"`
	Motivation string    `json:"motivation,omitempty"`
}

type CaseInput struct {
	PatientNotes       string               `json:"patient_notes"`
	DetectedConditions []string             `json:"detected_conditions"`
	AnalysisConfidence float64              `json:"analysis_confidence"`
	ICDCodes           []ICDCode            `json:"icd_codes"`
	Treatments         []TreatmentSelection `json:"treatments"`
	Medicines          []MedicineSelection  `json:"medicines"`
}

type CaseSummary struct {
	ID                 string    `json:"id"`
	PatientNotes       string    `json:"patient_notes"`
	DetectedConditions []string  `json:"detected_conditions"`
	AnalysisConfidence float64   `json:"analysis_confidence"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type SavedTreatment struct {
	ID            string     `json:"id"`
	CaseID        string     `json:"case_id"`
	Condition     string     `json:"condition"`
	ProcedureName string     `json:"procedure_name"`
	ProcedureCode string     `json:"procedure_code"`
	BasketType    BasketType `json:"basket_type"`
	Quantity      int        `json:"quantity"`
	CoverageLimit int        `json:"coverage_limit"`
	Evidence      []Evidence `json:"evidence"`
}

type SavedMedicine struct {
	ID                string  `json:"id"`
	CaseID            string  `json:"case_id"`
	Condition         string  `json:"condition"`
	MedicineClass     string  `json:"medicine_class"`
	MedicineName      string  `json:"medicine_name"`
	ActiveIngredient  string  `json:"active_ingredient"`
	CDACore           float64 `json:"cda_core"`
	CDAExecutive      float64 `json:"cda_executive"`
	PlanType          string  `json:"plan_type"`
	PrescriptionNotes string  `json:"prescription_notes"`
	Motivation        string  `json:"motivation"`
}

type CaseDetail struct {
	Case       CaseSummary      `json:"case"`
	ICDCodes   []ICDCode        `json:"icd_codes"`
	Treatments []SavedTreatment `json:"treatments"`
	Medicines  []SavedMedicine  `json:"medicines"`
}

// Claim export

type ClaimDocument struct {
	OriginalNote         string               `json:"original_note"`
	ConfirmedConditions  []string             `json:"confirmed_conditions"`
	SelectedICDCodes     []ICDCode            `json:"selected_icd_codes"`
	DiagnosticTreatments []TreatmentSelection `json:"diagnostic_treatments"`
	ManagementTreatments []TreatmentSelection `json:"management_treatments"`
	MedicineSelections   []MedicineSelection  `json:"medicine_selections"`
	GeneratedAt          time.Time            `json:"generated_at"`
}

// Event bus models

type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // case_saved, case_deleted
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Workflow steps exposed to UI clients. The service never changes these on
// behalf of a client; they describe the documented capture sequence.

type WorkflowStep string

const (
	StepInput        WorkflowStep = "input"
	StepAnalysis     WorkflowStep = "analysis"
	StepICDSelection WorkflowStep = "icd-selection"
	StepTreatment    WorkflowStep = "treatment"
	StepMedicine     WorkflowStep = "medicine"
	StepExport       WorkflowStep = "export"
)

type WorkflowMode string

const (
	ModeNewCase   WorkflowMode = "new-case"
	ModeViewCases WorkflowMode = "view-cases"
)

// CaptureSteps returns the capture sequence in order.
func CaptureSteps() []WorkflowStep {
	return []WorkflowStep{StepInput, StepAnalysis, StepICDSelection, StepTreatment, StepMedicine, StepExport}
}

// NextStep returns the step following the given one; ok is false for the
// final step and for unknown input.
func NextStep(step WorkflowStep) (WorkflowStep, bool) {
	steps := CaptureSteps()
	for i, current := range steps {
		if current == step && i+1 < len(steps) {
			return steps[i+1], true
		}
	}
	return "", false
}
