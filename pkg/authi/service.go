package authi

import (
	"strings"

	"github.com/salulink/authi/pkg/common/models"
	"github.com/salulink/authi/pkg/refdata"
)

// Service answers reference lookups and PMB compliance checks against the
// loaded benefit tables.
//
// All three lookups use the same tolerance policy: a reference entry
// matches a queried condition when either string contains the other,
// case-insensitively. The policy deliberately accepts partial and
// abbreviated condition names coming out of note analysis; a very short
// query can therefore over-match. Tightening it changes which treatments
// and medicines a condition resolves to and must be a versioned rule
// change, not a refactor.
type Service struct {
	loader *refdata.Loader
}

func NewService(loader *refdata.Loader) *Service {
	return &Service{loader: loader}
}

func conditionMatches(entryCondition, query string) bool {
	entryLower := strings.ToLower(entryCondition)
	queryLower := strings.ToLower(query)
	return strings.Contains(entryLower, queryLower) || strings.Contains(queryLower, entryLower)
}

func (s *Service) ICDCodesForCondition(condition string) []models.ICDCode {
	matched := []models.ICDCode{}
	for _, icd := range s.loader.Catalog().ICDCodes {
		if conditionMatches(icd.Condition, condition) {
			matched = append(matched, icd)
		}
	}
	return matched
}

func (s *Service) TreatmentsForCondition(condition string) []models.Treatment {
	matched := []models.Treatment{}
	for _, treatment := range s.loader.Catalog().Treatments {
		if conditionMatches(treatment.Condition, condition) {
			matched = append(matched, treatment)
		}
	}
	return matched
}

// MedicinesForCondition returns the medicines matching the condition,
// dropping entries excluded from the given plan when one is supplied.
func (s *Service) MedicinesForCondition(condition string, plan *models.PlanType) []models.Medicine {
	matched := []models.Medicine{}
	for _, medicine := range s.loader.Catalog().Medicines {
		if !conditionMatches(medicine.Condition, condition) {
			continue
		}
		if plan != nil && s.IsExcluded(medicine, *plan) {
			continue
		}
		matched = append(matched, medicine)
	}
	return matched
}

// TreatmentBasket splits the condition's treatments into the diagnostic and
// ongoing-management baskets, each carrying its own annual limit counters.
func (s *Service) TreatmentBasket(condition string) models.TreatmentBasket {
	basket := models.TreatmentBasket{
		Diagnostic:        []models.Treatment{},
		OngoingManagement: []models.Treatment{},
	}
	for _, treatment := range s.TreatmentsForCondition(condition) {
		switch treatment.BasketType {
		case models.BasketDiagnostic:
			basket.Diagnostic = append(basket.Diagnostic, treatment)
		case models.BasketOngoingManagement:
			basket.OngoingManagement = append(basket.OngoingManagement, treatment)
		}
	}
	return basket
}

// MedicineClasses returns the distinct medicine classes available for the
// condition, in reference-table order.
func (s *Service) MedicineClasses(condition string) []string {
	seen := make(map[string]struct{})
	classes := []string{}
	for _, medicine := range s.MedicinesForCondition(condition, nil) {
		if _, ok := seen[medicine.MedicineClass]; ok {
			continue
		}
		seen[medicine.MedicineClass] = struct{}{}
		classes = append(classes, medicine.MedicineClass)
	}
	return classes
}

// PlanTypes is the fixed scheme plan enumeration; plans are not reference
// data and never come from a file.
func (s *Service) PlanTypes() []models.PlanType {
	return []models.PlanType{
		{ID: "core", Name: "Core Plans", Category: models.PlanCore},
		{ID: "priority", Name: "Priority Plans", Category: models.PlanPriority},
		{ID: "saver", Name: "Saver Plans", Category: models.PlanSaver},
		{ID: "executive", Name: "Executive Plans", Category: models.PlanExecutive},
		{ID: "comprehensive", Name: "Comprehensive Plans", Category: models.PlanComprehensive},
	}
}

// CalculateCDA picks the chronic disease amount for the plan tier: the
// executive amount for executive and comprehensive plans, the core amount
// for every other tier including a missing plan.
func (s *Service) CalculateCDA(medicine models.Medicine, plan *models.PlanType) float64 {
	if plan == nil {
		return medicine.CDACore
	}
	switch plan.Category {
	case models.PlanExecutive, models.PlanComprehensive:
		return medicine.CDAExecutive
	default:
		return medicine.CDACore
	}
}

// IsExcluded reports whether the medicine's exclusion list names the plan's
// category. Exclusion tags are free-form strings: the only tag in the
// current data, KeyCare, is not one of the five enumerated categories, so
// no enumerated plan ever trips this check today. That mismatch is carried
// from the benefit data on purpose; resolving it means changing the data,
// not this rule.
func (s *Service) IsExcluded(medicine models.Medicine, plan models.PlanType) bool {
	for _, excluded := range medicine.PlanExclusions {
		if excluded == string(plan.Category) {
			return true
		}
	}
	return false
}

// ValidateCompliance recomputes the available sets for the condition and
// verifies every selected item against them: ICD codes by code, treatments
// by procedure code plus basket type, medicines by name. Any miss makes the
// case non-compliant. A compliant case carrying any medicine with a
// non-empty exclusion list is downgraded to requires-review regardless of
// the member's active plan; review exists to attach a motivation, and the
// reviewer decides whether the exclusion applies.
func (s *Service) ValidateCompliance(
	condition string,
	selectedICDCodes []models.ICDCode,
	selectedTreatments []models.Treatment,
	selectedMedicines []models.Medicine,
) models.ComplianceResult {
	availableICDCodes := s.ICDCodesForCondition(condition)
	availableTreatments := s.TreatmentsForCondition(condition)
	availableMedicines := s.MedicinesForCondition(condition, nil)

	icdCompliant := true
	for _, selected := range selectedICDCodes {
		found := false
		for _, available := range availableICDCodes {
			if available.Code == selected.Code {
				found = true
				break
			}
		}
		if !found {
			icdCompliant = false
			break
		}
	}

	treatmentCompliant := true
	for _, selected := range selectedTreatments {
		found := false
		for _, available := range availableTreatments {
			if available.ProcedureCode == selected.ProcedureCode && available.BasketType == selected.BasketType {
				found = true
				break
			}
		}
		if !found {
			treatmentCompliant = false
			break
		}
	}

	medicineCompliant := true
	for _, selected := range selectedMedicines {
		found := false
		for _, available := range availableMedicines {
			if available.MedicineName == selected.MedicineName {
				found = true
				break
			}
		}
		if !found {
			medicineCompliant = false
			break
		}
	}

	status := models.StatusCompliant
	if !icdCompliant || !treatmentCompliant || !medicineCompliant {
		status = models.StatusNonCompliant
	} else {
		for _, medicine := range selectedMedicines {
			if len(medicine.PlanExclusions) > 0 {
				status = models.StatusRequiresReview
				break
			}
		}
	}

	return models.ComplianceResult{
		ICDCodes:   availableICDCodes,
		Treatments: availableTreatments,
		Medicines:  availableMedicines,
		Status:     status,
	}
}
