package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"mstress/internal/model"
	"mstress/internal/scoring"
	"mstress/internal/service"
	"mstress/internal/transport/rest/middleware"
)

// AssessmentHandler handles assessment submission and retrieval endpoints
type AssessmentHandler struct {
	assessmentSvc *service.AssessmentService
	exportSvc     *service.ExportService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentSvc *service.AssessmentService, exportSvc *service.ExportService) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentSvc: assessmentSvc,
		exportSvc:     exportSvc,
	}
}

// Submit handles POST /v1/assessments
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := middleware.GetUserID(r.Context())
	assessment, err := h.assessmentSvc.Submit(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, scoring.ErrNoModalityData):
			writeError(w, http.StatusBadRequest, "at least one modality input is required")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrUserInactive):
			writeError(w, http.StatusForbidden, "user is inactive")
		default:
			writeError(w, http.StatusInternalServerError, "failed to process assessment")
		}
		return
	}

	writeJSON(w, http.StatusCreated, assessment)
}

// Get handles GET /v1/assessments/{id}
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor := middleware.GetActor(r.Context())

	assessment, err := h.assessmentSvc.GetAssessment(r.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			writeError(w, http.StatusNotFound, "assessment not found")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "access denied")
		default:
			writeError(w, http.StatusInternalServerError, "failed to fetch assessment")
		}
		return
	}

	writeJSON(w, http.StatusOK, assessment)
}

// History handles GET /v1/users/{userId}/assessments
func (h *AssessmentHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	actor := middleware.GetActor(r.Context())
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	assessments, err := h.exportSvc.History(r.Context(), actor, userID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			writeError(w, http.StatusForbidden, "access denied")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": assessments,
		"limit":       limit,
		"offset":      offset,
	})
}

// Export handles GET /v1/users/{userId}/assessments/export
func (h *AssessmentHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	actor := middleware.GetActor(r.Context())
	format := r.URL.Query().Get("format")

	data, contentType, err := h.exportSvc.Export(r.Context(), actor, userID, format)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			writeError(w, http.StatusForbidden, "access denied")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ext := "json"
	if contentType == "text/csv" {
		ext = "csv"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=assessments-%s.%s", userID, ext))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Summary handles GET /v1/users/{userId}/assessments/summary
func (h *AssessmentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	actor := middleware.GetActor(r.Context())

	summary, err := h.exportSvc.Summary(r.Context(), actor, userID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			writeError(w, http.StatusForbidden, "access denied")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
