package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"mstress/internal/model"
	"mstress/internal/service"
	"mstress/internal/transport/rest/middleware"
)

const defaultTriageLimit = 50

// ReviewHandler handles the review triage queue endpoints
type ReviewHandler struct {
	reviewSvc *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewSvc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// ListPending handles GET /v1/reviews/pending
func (h *ReviewHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultTriageLimit)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 {
		limit = defaultTriageLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := h.reviewSvc.ListPending(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pending reviews")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}

// Upsert handles PUT /v1/reviews/{assessmentId}
func (h *ReviewHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	assessmentID := mux.Vars(r)["assessmentId"]
	actor := middleware.GetActor(r.Context())

	var patch model.ReviewPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewSvc.UpsertReview(r.Context(), actor, assessmentID, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			writeError(w, http.StatusNotFound, "assessment not found")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "reviewer capability required")
		case errors.Is(err, service.ErrReviewClosed):
			writeError(w, http.StatusConflict, "review is closed")
		default:
			writeError(w, http.StatusInternalServerError, "failed to save review")
		}
		return
	}

	writeJSON(w, http.StatusOK, review)
}

// Get handles GET /v1/reviews/{assessmentId}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	assessmentID := mux.Vars(r)["assessmentId"]

	review, err := h.reviewSvc.GetReview(r.Context(), assessmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch review")
		return
	}
	if review == nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}

	writeJSON(w, http.StatusOK, review)
}
