package authi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/salulink/authi/pkg/analysis"
	"github.com/salulink/authi/pkg/common/logger"
	"github.com/salulink/authi/pkg/common/models"
)

type HTTPHandler struct {
	service  *Service
	analyzer *analysis.Analyzer
	maxBody  int64
}

func NewHTTPHandler(service *Service, analyzer *analysis.Analyzer, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, analyzer: analyzer, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/analysis", h.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/analysis/validate", h.handleValidate).Methods(http.MethodPost)
	router.HandleFunc("/conditions/{condition}/icd-codes", h.handleICDCodes).Methods(http.MethodGet)
	router.HandleFunc("/conditions/{condition}/treatments", h.handleTreatments).Methods(http.MethodGet)
	router.HandleFunc("/conditions/{condition}/basket", h.handleBasket).Methods(http.MethodGet)
	router.HandleFunc("/conditions/{condition}/medicines", h.handleMedicines).Methods(http.MethodGet)
	router.HandleFunc("/conditions/{condition}/medicine-classes", h.handleMedicineClasses).Methods(http.MethodGet)
	router.HandleFunc("/plans", h.handlePlans).Methods(http.MethodGet)
	router.HandleFunc("/compliance", h.handleCompliance).Methods(http.MethodPost)
	router.HandleFunc("/workflow/steps", h.handleWorkflowSteps).Methods(http.MethodGet)
}

type analyzeRequest struct {
	Notes string `json:"notes"`
}

func (h *HTTPHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid analysis payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Notes) == "" {
		http.Error(w, "notes are required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.analyzer.Analyze(req.Notes))
}

type validateRequest struct {
	Condition string `json:"condition"`
	Notes     string `json:"notes"`
}

func (h *HTTPHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"valid": h.analyzer.Validate(req.Condition, req.Notes),
	})
}

func (h *HTTPHandler) handleICDCodes(w http.ResponseWriter, r *http.Request) {
	condition := mux.Vars(r)["condition"]
	writeJSON(w, http.StatusOK, h.service.ICDCodesForCondition(condition))
}

func (h *HTTPHandler) handleTreatments(w http.ResponseWriter, r *http.Request) {
	condition := mux.Vars(r)["condition"]
	writeJSON(w, http.StatusOK, h.service.TreatmentsForCondition(condition))
}

func (h *HTTPHandler) handleBasket(w http.ResponseWriter, r *http.Request) {
	condition := mux.Vars(r)["condition"]
	writeJSON(w, http.StatusOK, h.service.TreatmentBasket(condition))
}

func (h *HTTPHandler) handleMedicines(w http.ResponseWriter, r *http.Request) {
	condition := mux.Vars(r)["condition"]

	var plan *models.PlanType
	if planID := r.URL.Query().Get("plan"); planID != "" {
		for _, candidate := range h.service.PlanTypes() {
			if candidate.ID == planID {
				plan = &candidate
				break
			}
		}
		if plan == nil {
			http.Error(w, "unknown plan", http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, http.StatusOK, h.service.MedicinesForCondition(condition, plan))
}

func (h *HTTPHandler) handleMedicineClasses(w http.ResponseWriter, r *http.Request) {
	condition := mux.Vars(r)["condition"]
	writeJSON(w, http.StatusOK, h.service.MedicineClasses(condition))
}

func (h *HTTPHandler) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.PlanTypes())
}

type complianceRequest struct {
	Condition  string             `json:"condition"`
	ICDCodes   []models.ICDCode   `json:"icd_codes"`
	Treatments []models.Treatment `json:"treatments"`
	Medicines  []models.Medicine  `json:"medicines"`
}

func (h *HTTPHandler) handleCompliance(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req complianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid compliance payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Condition) == "" {
		http.Error(w, "condition is required", http.StatusBadRequest)
		return
	}

	result := h.service.ValidateCompliance(req.Condition, req.ICDCodes, req.Treatments, req.Medicines)
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleWorkflowSteps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"steps": models.CaptureSteps(),
		"modes": []models.WorkflowMode{models.ModeNewCase, models.ModeViewCases},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
