package cases

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/salulink/authi/pkg/common/logger"
	"github.com/salulink/authi/pkg/common/models"
	"github.com/salulink/authi/pkg/report"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/cases", h.handleSave).Methods(http.MethodPost)
	router.HandleFunc("/cases", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/cases/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/cases/{id}", h.handleDelete).Methods(http.MethodDelete)
	router.HandleFunc("/cases/{id}/report", h.handleReport).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var input models.CaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logger.Log.WithError(err).Warn("invalid case payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	caseID, err := h.service.Save(r.Context(), input)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to save case")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": caseID})
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to list cases")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			http.Error(w, "case not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch case")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			http.Error(w, "case not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to delete case")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleReport renders the persisted case as a downloadable claim document.
func (h *HTTPHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["id"]

	detail, err := h.service.Get(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			http.Error(w, "case not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch case for report")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	document, err := report.Render(report.ClaimFromCase(detail))
	if err != nil {
		logger.Log.WithError(err).Error("failed to render claim document")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="pmb-claim-`+caseID+`.txt"`)
	w.Write(document)
}
