package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"

	"studybuddy/backend/middleware"
	"studybuddy/backend/onboarding"
	"studybuddy/backend/security"
	"studybuddy/backend/services"
	"studybuddy/backend/storage"
)

const (
	maxDocumentSize = 10 << 20
	maxVideoSize    = 200 << 20
)

var documentTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}

type applicationSession struct {
	// serializes submit so an application is stored once
	submitMu sync.Mutex
	wizard   *onboarding.Wizard
}

// OnboardingHandler runs mentor application wizards. Uploaded documents go
// to object storage as they are attached; abandoned wizards have their
// uploads removed when the session expires.
type OnboardingHandler struct {
	sessions *SessionRegistry[*applicationSession]
	storage  storage.StorageClient
	cipher   *security.Cipher
	now      func() time.Time
}

func NewOnboardingHandler(store storage.StorageClient, cipher *security.Cipher, ttl time.Duration) *OnboardingHandler {
	h := &OnboardingHandler{
		storage: store,
		cipher:  cipher,
		now:     time.Now,
	}
	h.sessions = NewSessionRegistry(ttl, h.discard)
	return h
}

// Sweeper exposes the session registry to the scheduler.
func (h *OnboardingHandler) Sweeper() services.Sweeper {
	return h.sessions
}

// discard removes the uploads of a wizard that was never submitted.
func (h *OnboardingHandler) discard(id string, s *applicationSession) {
	if s.wizard.State() == onboarding.StateSuccess {
		return
	}
	_, files := s.wizard.Values()
	if len(files) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for field, list := range files {
		for _, f := range list {
			if err := h.storage.DeleteFile(ctx, f.ObjectName); err != nil {
				log.Printf("Warning: failed to delete %s upload of expired application %s: %v", field, id, err)
			}
		}
	}
	log.Printf("Discarded uploads of expired application %s", id)
}

type wizardResponse struct {
	SessionID string                  `json:"sessionId"`
	View      onboarding.View         `json:"view"`
	Advanced  *bool                   `json:"advanced,omitempty"`
	Failures  []onboarding.FieldError `json:"failures,omitempty"`
}

func (h *OnboardingHandler) respond(w http.ResponseWriter, status int, id string, s *applicationSession) {
	writeJSON(w, status, wizardResponse{SessionID: id, View: s.wizard.Snapshot()})
}

func (h *OnboardingHandler) session(w http.ResponseWriter, r *http.Request) (string, *applicationSession, bool) {
	id := mux.Vars(r)["id"]
	s, ok := h.sessions.Get(id, middleware.GetUserIDFromContext(r))
	if !ok {
		http.Error(w, "Application not found", http.StatusNotFound)
		return "", nil, false
	}
	return id, s, true
}

// writeWizardError answers state errors of the wizard with 409.
func writeWizardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, onboarding.ErrNotStarted), errors.Is(err, onboarding.ErrAlreadyStarted),
		errors.Is(err, onboarding.ErrNotAtReview), errors.Is(err, onboarding.ErrSubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("Error updating application: %v", err)
		http.Error(w, "Failed to update application", http.StatusInternalServerError)
	}
}

// CreateApplication handles POST /api/onboarding. The wizard starts on the
// welcome screen.
func (h *OnboardingHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	s := &applicationSession{wizard: onboarding.New(onboarding.DefaultSteps(), h.now)}
	id := h.sessions.Create(middleware.GetUserIDFromContext(r), s)
	h.respond(w, http.StatusCreated, id, s)
}

// GetApplication handles GET /api/onboarding/{id}
func (h *OnboardingHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	if id, s, ok := h.session(w, r); ok {
		h.respond(w, http.StatusOK, id, s)
	}
}

// StartApplication handles POST /api/onboarding/{id}/start
func (h *OnboardingHandler) StartApplication(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.wizard.Start(); err != nil {
		writeWizardError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id, s)
}

// UpdateFields handles PUT /api/onboarding/{id}/fields. Each value is a
// string, a list of strings for checkbox groups, or a boolean for a single
// checkbox.
func (h *OnboardingHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	documents := onboarding.DocumentFields()
	for field, raw := range body {
		if slices.Contains(documents, field) {
			http.Error(w, fmt.Sprintf("Field %s must be uploaded as a file", field), http.StatusBadRequest)
			return
		}
		if err := setField(s.wizard, field, raw); err != nil {
			if errors.Is(err, onboarding.ErrSubmitted) {
				writeWizardError(w, err)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	h.respond(w, http.StatusOK, id, s)
}

func setField(wz *onboarding.Wizard, field string, raw json.RawMessage) error {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return wz.SetField(field, text)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return wz.SetValues(field, list)
	}
	var checked bool
	if err := json.Unmarshal(raw, &checked); err == nil {
		if checked {
			return wz.SetField(field, "true")
		}
		return wz.SetField(field, "")
	}
	return fmt.Errorf("field %s: unsupported value %s", field, string(raw))
}

// acceptedType reports whether a detected content type may be stored in the
// document field.
func acceptedType(field string, mime *mimetype.MIME) bool {
	if field == "demoVideo" {
		return strings.HasPrefix(mime.String(), "video/")
	}
	for _, t := range documentTypes {
		if mime.Is(t) {
			return true
		}
	}
	return false
}

func uploadLimit(field string) int64 {
	if field == "demoVideo" {
		return maxVideoSize
	}
	return maxDocumentSize
}

// UploadDocument handles POST /api/onboarding/{id}/files/{field} with a
// multipart "file" part. The content type is sniffed from the bytes, not
// taken from the client.
func (h *OnboardingHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	field := mux.Vars(r)["field"]
	if !slices.Contains(onboarding.DocumentFields(), field) {
		http.Error(w, "Unknown document field: "+field, http.StatusBadRequest)
		return
	}
	if s.wizard.State() == onboarding.StateSuccess {
		writeWizardError(w, onboarding.ErrSubmitted)
		return
	}

	limit := uploadLimit(field)
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	if header.Size > limit {
		http.Error(w, fmt.Sprintf("File too large: limit is %d MB", limit>>20), http.StatusRequestEntityTooLarge)
		return
	}

	mime, err := detect(file)
	if err != nil {
		http.Error(w, "Could not read upload", http.StatusBadRequest)
		return
	}
	if !acceptedType(field, mime) {
		http.Error(w, fmt.Sprintf("Unsupported file type %s for %s", mime.String(), field), http.StatusUnsupportedMediaType)
		return
	}

	ctx := r.Context()
	result, err := h.storage.UploadFile(ctx, file, storage.GenerateObjectName(id, field, header.Filename), mime.String())
	if err != nil {
		log.Printf("Error storing %s for application %s: %v", field, id, err)
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}

	_, files := s.wizard.Values()
	previous := files[field]
	if err := s.wizard.AttachFile(field, onboarding.File{
		Name:        header.Filename,
		Size:        result.Size,
		ContentType: result.ContentType,
		ObjectName:  result.ObjectName,
	}); err != nil {
		h.removeObject(ctx, result.ObjectName)
		writeWizardError(w, err)
		return
	}
	for _, old := range previous {
		if old.ObjectName != result.ObjectName {
			h.removeObject(ctx, old.ObjectName)
		}
	}

	h.respond(w, http.StatusOK, id, s)
}

// detect sniffs the content type and rewinds the upload.
func detect(file multipart.File) (*mimetype.MIME, error) {
	mime, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return mime, nil
}

func (h *OnboardingHandler) removeObject(ctx context.Context, objectName string) {
	if objectName == "" {
		return
	}
	if err := h.storage.DeleteFile(ctx, objectName); err != nil {
		log.Printf("Warning: failed to delete replaced upload %s: %v", objectName, err)
	}
}

// RemoveDocument handles DELETE /api/onboarding/{id}/files/{field}
func (h *OnboardingHandler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	field := mux.Vars(r)["field"]

	_, files := s.wizard.Values()
	if err := s.wizard.DetachFile(field); err != nil {
		writeWizardError(w, err)
		return
	}
	for _, f := range files[field] {
		h.removeObject(r.Context(), f.ObjectName)
	}
	h.respond(w, http.StatusOK, id, s)
}

// NextStep handles POST /api/onboarding/{id}/next. A step that fails its
// checks answers 422 with the inline messages.
func (h *OnboardingHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	advanced, failures, err := s.wizard.Next()
	if err != nil {
		writeWizardError(w, err)
		return
	}

	status := http.StatusOK
	if len(failures) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, wizardResponse{SessionID: id, View: s.wizard.Snapshot(), Advanced: &advanced, Failures: failures})
}

// PreviousStep handles POST /api/onboarding/{id}/back
func (h *OnboardingHandler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	moved, err := s.wizard.Back()
	if err != nil {
		writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizardResponse{SessionID: id, View: s.wizard.Snapshot(), Advanced: &moved})
}

type submitResponse struct {
	wizardResponse
	ApplicationID string `json:"applicationId"`
}

// SubmitApplication handles POST /api/onboarding/{id}/submit. Every step is
// checked again first; a step that no longer validates answers 422 and the
// wizard returns to it. The application is stored before the wizard is marked submitted, so a storage
// failure leaves the wizard on the review step.
func (h *OnboardingHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	if err := s.wizard.CanSubmit(); err != nil {
		var incomplete *onboarding.IncompleteError
		if errors.As(err, &incomplete) {
			writeJSON(w, http.StatusUnprocessableEntity, wizardResponse{
				SessionID: id,
				View:      s.wizard.Snapshot(),
				Failures:  incomplete.Failures,
			})
			return
		}
		writeWizardError(w, err)
		return
	}

	values, files := s.wizard.Values()
	app := services.NewMentorApplication(middleware.GetUserIDFromContext(r), values, files)
	if err := services.SaveMentorApplication(r.Context(), h.cipher, app); err != nil {
		log.Printf("Error saving application %s: %v", id, err)
		http.Error(w, "Failed to submit application", http.StatusInternalServerError)
		return
	}
	if err := s.wizard.Submit(); err != nil {
		writeWizardError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{
		wizardResponse: wizardResponse{SessionID: id, View: s.wizard.Snapshot()},
		ApplicationID:  app.ID,
	})
}
