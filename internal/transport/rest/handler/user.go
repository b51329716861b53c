package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"bolsas/internal/model"
	"bolsas/internal/service"
	"bolsas/internal/transport/rest/middleware"
)

// UserHandler handles user endpoints
type UserHandler struct {
	userSvc *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Register handles POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterUserInput
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.userSvc.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.userSvc.Get(r.Context(), middleware.GetActor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Update handles PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateContactInput
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.userSvc.UpdateContact(r.Context(), middleware.GetActor(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ChangePassword handles PUT /api/users/{id}/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userSvc.ChangePassword(r.Context(), middleware.GetActor(r.Context()), mux.Vars(r)["id"], req); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
