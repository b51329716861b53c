package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"bolsas/internal/model"
	"bolsas/internal/service"
	"bolsas/internal/transport/rest/middleware"
)

const multipartMemory = 8 << 20

// DocumentHandler handles document upload and review endpoints
type DocumentHandler struct {
	documentSvc *service.DocumentService
	maxUpload   int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentSvc *service.DocumentService, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc, maxUpload: maxUpload}
}

// SetStatusRequest is a reviewer's decision on a document
type SetStatusRequest struct {
	Status model.DocumentStatus `json:"status"`
}

// Upload handles POST /api/documents (multipart: file, type)
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// leave room for the other multipart fields
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	doc, err := h.documentSvc.Upload(r.Context(), middleware.GetActor(r.Context()), service.UploadInput{
		Type:        r.FormValue("type"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /api/documents?userId=
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documentSvc.ListForUser(r.Context(), middleware.GetActor(r.Context()), r.URL.Query().Get("userId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Submitted handles GET /api/documents/submitted
func (h *DocumentHandler) Submitted(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documentSvc.Submitted(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Content handles GET /api/documents/{id}/content
func (h *DocumentHandler) Content(w http.ResponseWriter, r *http.Request) {
	rc, info, err := h.documentSvc.Open(r.Context(), middleware.GetActor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": info.Name}))
	if info.Length > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Length, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("document stream interrupted", "file_id", info.ID, "error", err)
	}
}

// SetStatus handles POST /api/documents/{id}/status
func (h *DocumentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := h.documentSvc.Review(r.Context(), middleware.GetActor(r.Context()), mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
