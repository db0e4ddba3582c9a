package report

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/salulink/authi/pkg/common/models"
)

const claimTemplate = `PMB COMPLIANCE CLAIM
Generated: {{ .GeneratedAt.Format "2006-01-02 15:04:05 MST" }}

PATIENT NOTES
{{ .OriginalNote }}

CONFIRMED CONDITIONS
{{- range .ConfirmedConditions }}
  - {{ . }}
{{- else }}
  (none)
{{- end }}

ICD-10 CODES
{{- range .SelectedICDCodes }}
  - {{ .Code }}: {{ .Description }} ({{ .Condition }})
{{- else }}
  (none)
{{- end }}

DIAGNOSTIC BASKET
{{- range .DiagnosticTreatments }}
  - {{ .ProcedureName }} [{{ .ProcedureCode }}] quantity {{ .Quantity }} of {{ .CoverageLimit }} covered
{{- range .Evidence }}
      evidence ({{ .Type }}): {{ evidenceLabel . }}
{{- end }}
{{- else }}
  (none)
{{- end }}

ONGOING MANAGEMENT BASKET
{{- range .ManagementTreatments }}
  - {{ .ProcedureName }} [{{ .ProcedureCode }}] quantity {{ .Quantity }} of {{ .CoverageLimit }} covered
{{- range .Evidence }}
      evidence ({{ .Type }}): {{ evidenceLabel . }}
{{- end }}
{{- else }}
  (none)
{{- end }}

MEDICINE SELECTIONS
{{- range .MedicineSelections }}
  - {{ .MedicineName }} ({{ .MedicineClass }}, {{ .ActiveIngredient }})
      CDA core: {{ currency .CDACore }} | CDA executive: {{ currency .CDAExecutive }}
{{- if .PlanType }}
      plan: {{ .PlanType.Name }}
{{- end }}
{{- if .Motivation }}
      motivation: {{ .Motivation }}
{{- end }}
{{- else }}
  (none)
{{- end }}
`

var claimTmpl = template.Must(template.New("claim").Funcs(template.FuncMap{
	"currency":      formatCurrency,
	"evidenceLabel": evidenceLabel,
}).Parse(claimTemplate))

// Render turns a fully assembled claim into a shareable plain-text
// document. Pure function: no storage or network access.
func Render(claim models.ClaimDocument) ([]byte, error) {
	if claim.GeneratedAt.IsZero() {
		claim.GeneratedAt = time.Now().UTC()
	}

	var buf bytes.Buffer
	if err := claimTmpl.Execute(&buf, claim); err != nil {
		return nil, fmt.Errorf("failed to render claim: %w", err)
	}
	return buf.Bytes(), nil
}

// ClaimFromCase rebuilds the export-step claim from a persisted case,
// splitting treatments back into their baskets.
func ClaimFromCase(detail models.CaseDetail) models.ClaimDocument {
	claim := models.ClaimDocument{
		OriginalNote:         detail.Case.PatientNotes,
		ConfirmedConditions:  detail.Case.DetectedConditions,
		SelectedICDCodes:     detail.ICDCodes,
		DiagnosticTreatments: []models.TreatmentSelection{},
		ManagementTreatments: []models.TreatmentSelection{},
		MedicineSelections:   []models.MedicineSelection{},
	}

	for _, saved := range detail.Treatments {
		selection := models.TreatmentSelection{
			Treatment: models.Treatment{
				Condition:     saved.Condition,
				ProcedureName: saved.ProcedureName,
				ProcedureCode: saved.ProcedureCode,
				CoverageLimit: saved.CoverageLimit,
				BasketType:    saved.BasketType,
			},
			Quantity: saved.Quantity,
			Evidence: saved.Evidence,
		}
		if saved.BasketType == models.BasketOngoingManagement {
			claim.ManagementTreatments = append(claim.ManagementTreatments, selection)
		} else {
			claim.DiagnosticTreatments = append(claim.DiagnosticTreatments, selection)
		}
	}

	for _, saved := range detail.Medicines {
		selection := models.MedicineSelection{
			Medicine: models.Medicine{
				Condition:        saved.Condition,
				MedicineClass:    saved.MedicineClass,
				ActiveIngredient: saved.ActiveIngredient,
				MedicineName:     saved.MedicineName,
				CDACore:          saved.CDACore,
				CDAExecutive:     saved.CDAExecutive,
			},
			Motivation: saved.Motivation,
		}
		if saved.PlanType != "" {
			selection.PlanType = &models.PlanType{Name: saved.PlanType}
		}
		claim.MedicineSelections = append(claim.MedicineSelections, selection)
	}

	return claim
}

func formatCurrency(amount float64) string {
	return fmt.Sprintf("R %.2f", amount)
}

func evidenceLabel(evidence models.Evidence) string {
	if evidence.Type == models.EvidenceNote {
		return evidence.Content
	}
	if evidence.FileName != "" {
		return evidence.FileName
	}
	return evidence.Content
}
