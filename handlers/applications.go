package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"studybuddy/backend/security"
	"studybuddy/backend/services"
	"studybuddy/backend/storage"
)

// ApplicationsHandler lets admins read and decide mentor applications.
type ApplicationsHandler struct {
	cipher  *security.Cipher
	cache   *services.ProfileCache
	storage storage.StorageClient
}

func NewApplicationsHandler(cipher *security.Cipher, cache *services.ProfileCache, store storage.StorageClient) *ApplicationsHandler {
	return &ApplicationsHandler{cipher: cipher, cache: cache, storage: store}
}

// GetApplication handles GET /api/applications/{id}
func (h *ApplicationsHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := services.GetMentorApplication(r.Context(), h.cipher, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, "to load application", err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type reviewApplicationRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// ReviewApplication handles POST /api/applications/{id}/review
func (h *ApplicationsHandler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	var req reviewApplicationRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	ctx := r.Context()
	id := mux.Vars(r)["id"]
	if err := services.ReviewMentorApplication(ctx, id, req.Status); err != nil {
		writeServiceError(w, "to review application", err)
		return
	}

	app, err := services.GetMentorApplication(ctx, h.cipher, id)
	if err != nil {
		writeServiceError(w, "to load application", err)
		return
	}
	if h.cache != nil && app.UserID != "" {
		h.cache.Invalidate(app.UserID)
	}
	writeJSON(w, http.StatusOK, app)
}

// GetDocument handles GET /api/applications/{id}/documents/{field} and
// streams the stored upload.
func (h *ApplicationsHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	app, err := services.GetMentorApplication(r.Context(), h.cipher, vars["id"])
	if err != nil {
		writeServiceError(w, "to load application", err)
		return
	}
	objectName, ok := app.Documents[vars["field"]]
	if !ok || objectName == "" {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	rc, err := h.storage.ReadFile(r.Context(), objectName)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error reading document %s: %v", objectName, err)
		http.Error(w, "Failed to read document", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(objectName)+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("Error streaming document %s: %v", objectName, err)
	}
}
