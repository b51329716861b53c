package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"bolsas/internal/model"
	"bolsas/internal/service"
	"bolsas/internal/transport/rest/middleware"
)

// ApplicationHandler handles the student side of applications
type ApplicationHandler struct {
	applicationSvc *service.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationSvc *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationSvc: applicationSvc}
}

// Available handles GET /api/applications/available
func (h *ApplicationHandler) Available(w http.ResponseWriter, r *http.Request) {
	list, err := h.applicationSvc.Available(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Submit handles POST /api/applications
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitApplicationInput
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.applicationSvc.Submit(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// ImportDocuments handles POST /api/applications/import-documents
func (h *ApplicationHandler) ImportDocuments(w http.ResponseWriter, r *http.Request) {
	var req service.ImportDocumentsInput
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.applicationSvc.ImportDocuments(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Mine handles GET /api/applications/mine?status=
func (h *ApplicationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	status := model.ApplicationStatus(r.URL.Query().Get("status"))
	list, err := h.applicationSvc.Mine(r.Context(), middleware.GetActor(r.Context()), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Cancel handles DELETE /api/applications/{id}
func (h *ApplicationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.applicationSvc.Cancel(r.Context(), middleware.GetActor(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
