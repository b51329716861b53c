package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"bolsas/internal/model"
	"bolsas/internal/service"
)

// AnnouncementHandler handles announcement (edital) endpoints
type AnnouncementHandler struct {
	announcementSvc *service.AnnouncementService
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(announcementSvc *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementSvc: announcementSvc}
}

// ValidateFormulaRequest is the body of a formula check while authoring
type ValidateFormulaRequest struct {
	Formula     string   `json:"formula"`
	Identifiers []string `json:"identifiers"`
}

// List handles GET /api/announcements
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.announcementSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/announcements/{id}
func (h *AnnouncementHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.announcementSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Create handles POST /api/announcements
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var a model.Announcement
	if !decodeJSON(w, r, &a) {
		return
	}

	created, err := h.announcementSvc.Create(r.Context(), &a)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/announcements/{id}
func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	var a model.Announcement
	if !decodeJSON(w, r, &a) {
		return
	}

	updated, err := h.announcementSvc.Update(r.Context(), mux.Vars(r)["id"], &a)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/announcements/{id}
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.announcementSvc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Closed handles GET /api/announcements/closed
func (h *AnnouncementHandler) Closed(w http.ResponseWriter, r *http.Request) {
	list, err := h.announcementSvc.ListClosed(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ValidateFormula handles POST /api/announcements/validate-formula
func (h *AnnouncementHandler) ValidateFormula(w http.ResponseWriter, r *http.Request) {
	var req ValidateFormulaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.announcementSvc.ValidateFormula(req.Formula, req.Identifiers); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// MaximumScore handles GET /api/announcements/{id}/maximum-score
func (h *AnnouncementHandler) MaximumScore(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	score, err := h.announcementSvc.MaximumScore(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"announcementId": id,
		"maximumScore":   score,
	})
}

// Finalize handles POST /api/announcements/{id}/finalize
func (h *AnnouncementHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	result, err := h.announcementSvc.Finalize(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Ranking handles GET /api/announcements/{id}/ranking?limit=n
func (h *AnnouncementHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = n
	}

	entries, err := h.announcementSvc.Ranking(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
