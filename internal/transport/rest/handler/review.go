package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"bolsas/internal/service"
	"bolsas/internal/transport/rest/middleware"
)

// ReviewHandler handles the staff review queue
type ReviewHandler struct {
	reviewSvc *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewSvc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// Pending handles GET /api/review/pending
func (h *ReviewHandler) Pending(w http.ResponseWriter, r *http.Request) {
	list, err := h.reviewSvc.Pending(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/review/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.reviewSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Evaluate handles POST /api/review/{id}/evaluate
func (h *ReviewHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req service.EvaluateInput
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.reviewSvc.Evaluate(r.Context(), middleware.GetActor(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
