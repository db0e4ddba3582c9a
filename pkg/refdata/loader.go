package refdata

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/salulink/authi/pkg/common/logger"
	"github.com/salulink/authi/pkg/common/models"
)

// File names match the scheme's PMB benefit exports verbatim.
const (
	cardiovascularConditionsFile = "Cardiovascular CONDITIONS.csv"
	endocrineConditionsFile      = "Endocrine CONDITIONS.csv"
	cardiovascularTreatmentFile  = "Cardiovascular TREATMENT.csv"
	endocrineTreatmentFile       = "Endocrine TREATMENT.csv"
	cardiovascularMedicineFile   = "Cardiovascular MEDICINE.csv"
	endocrineMedicineFile        = "Endocrine MEDICINE.csv"

	keyCareExclusionPhrase = "Not available on KeyCare plans"
)

// Catalog holds the reference tables. Immutable once built; safe for
// concurrent readers.
type Catalog struct {
	Conditions []models.Condition
	Treatments []models.Treatment
	Medicines  []models.Medicine
	ICDCodes   []models.ICDCode
}

// Loader reads the delimited benefit exports from a directory and memoizes
// the result. A source that fails to read or parse contributes an empty
// table instead of failing the whole load.
type Loader struct {
	dir string

	mu      sync.RWMutex
	catalog *Catalog
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Catalog returns the memoized reference tables, loading them on first use.
func (l *Loader) Catalog() *Catalog {
	l.mu.RLock()
	cat := l.catalog
	l.mu.RUnlock()
	if cat != nil {
		return cat
	}
	return l.Reload()
}

// Reload re-reads every source file and replaces the memoized catalog.
func (l *Loader) Reload() *Catalog {
	cat := &Catalog{}

	cat.Conditions = append(
		parseConditions(l.readSource(cardiovascularConditionsFile), models.CategoryCardiovascular),
		parseConditions(l.readSource(endocrineConditionsFile), models.CategoryEndocrine)...,
	)
	cat.Treatments = append(
		parseTreatments(l.readSource(cardiovascularTreatmentFile)),
		parseTreatments(l.readSource(endocrineTreatmentFile))...,
	)
	cat.Medicines = append(
		parseMedicines(l.readSource(cardiovascularMedicineFile)),
		parseMedicines(l.readSource(endocrineMedicineFile))...,
	)

	cat.ICDCodes = make([]models.ICDCode, 0, len(cat.Conditions))
	for _, condition := range cat.Conditions {
		cat.ICDCodes = append(cat.ICDCodes, models.ICDCode{
			Code:        condition.ICDCode,
			Description: condition.Description,
			Condition:   condition.Name,
		})
	}

	logger.Log.WithFields(map[string]interface{}{
		"conditions": len(cat.Conditions),
		"treatments": len(cat.Treatments),
		"medicines":  len(cat.Medicines),
	}).Info("Reference data loaded")

	l.mu.Lock()
	l.catalog = cat
	l.mu.Unlock()
	return cat
}

func (l *Loader) readSource(name string) string {
	content, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		logger.Log.WithError(err).WithField("source", name).Warn("Failed to read reference data source")
		return ""
	}
	return string(content)
}

// dataRows splits raw file content into lines, drops the given number of
// header rows and skips blank lines.
func dataRows(text string, skipHeaders int) []string {
	lines := strings.Split(text, "\n")
	if len(lines) <= skipHeaders {
		return nil
	}

	var rows []string
	for _, line := range lines[skipHeaders:] {
		if strings.TrimSpace(line) != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

// parseConditions expects name,icd_code,description rows with a single
// header row. Rows missing any of the three fields are skipped.
func parseConditions(text string, category models.ConditionCategory) []models.Condition {
	var conditions []models.Condition
	for _, row := range dataRows(text, 1) {
		parts := strings.Split(row, ",")
		if len(parts) < 3 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		icdCode := strings.TrimSpace(parts[1])
		description := strings.TrimSpace(parts[2])
		if name == "" || icdCode == "" || description == "" {
			continue
		}
		conditions = append(conditions, models.Condition{
			Name:        name,
			ICDCode:     icdCode,
			Description: description,
			Category:    category,
		})
	}
	return conditions
}

// parseTreatments expects a two-row header. Each data row carries a
// diagnostic procedure (fields 1-3) and an ongoing-management procedure
// (fields 4-6) side by side; either half is emitted only when both its name
// and code are present.
func parseTreatments(text string) []models.Treatment {
	var treatments []models.Treatment
	for _, row := range dataRows(text, 2) {
		parts := strings.Split(row, ",")
		if len(parts) < 7 {
			continue
		}
		condition := strings.TrimSpace(parts[0])
		procedureName := strings.TrimSpace(parts[1])
		procedureCode := strings.TrimSpace(parts[2])
		coverageLimit := parseLimit(parts[3])
		ongoingName := strings.TrimSpace(parts[4])
		ongoingCode := strings.TrimSpace(parts[5])
		ongoingLimit := parseLimit(parts[6])

		if condition != "" && procedureName != "" && procedureCode != "" {
			treatments = append(treatments, models.Treatment{
				Condition:     condition,
				ProcedureName: procedureName,
				ProcedureCode: procedureCode,
				CoverageLimit: coverageLimit,
				BasketType:    models.BasketDiagnostic,
			})
		}
		if condition != "" && ongoingName != "" && ongoingCode != "" {
			treatments = append(treatments, models.Treatment{
				Condition:     condition,
				ProcedureName: ongoingName,
				ProcedureCode: ongoingCode,
				CoverageLimit: ongoingLimit,
				BasketType:    models.BasketOngoingManagement,
			})
		}
	}
	return treatments
}

// parseMedicines expects condition,cda_core,cda_executive,class,ingredient,
// name rows with a single header row. A medicine whose name carries the
// KeyCare exclusion phrase is flagged as excluded from KeyCare plans; the
// source data encodes no other exclusion.
func parseMedicines(text string) []models.Medicine {
	var medicines []models.Medicine
	for _, row := range dataRows(text, 1) {
		parts := strings.Split(row, ",")
		if len(parts) < 6 {
			continue
		}
		condition := strings.TrimSpace(parts[0])
		cdaCore := parseCurrency(parts[1])
		cdaExecutive := parseCurrency(parts[2])
		medicineClass := strings.TrimSpace(parts[3])
		activeIngredient := strings.TrimSpace(parts[4])
		medicineName := strings.TrimSpace(parts[5])

		if condition == "" || medicineClass == "" || activeIngredient == "" || medicineName == "" {
			continue
		}

		medicine := models.Medicine{
			Condition:        condition,
			MedicineClass:    medicineClass,
			ActiveIngredient: activeIngredient,
			MedicineName:     medicineName,
			CDACore:          cdaCore,
			CDAExecutive:     cdaExecutive,
		}
		if strings.Contains(medicineName, keyCareExclusionPhrase) {
			medicine.PlanExclusions = []string{"KeyCare"}
		}
		medicines = append(medicines, medicine)
	}
	return medicines
}

func parseLimit(field string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// parseCurrency strips the rand marker and thousands separators before
// parsing, defaulting to zero on failure.
func parseCurrency(field string) float64 {
	cleaned := strings.TrimSpace(field)
	cleaned = strings.TrimPrefix(cleaned, "R ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}
