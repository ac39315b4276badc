package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"studybuddy/backend/catalog"
	"studybuddy/backend/middleware"
	"studybuddy/backend/models"
	"studybuddy/backend/services"
)

// FavoritesProvider returns the favorites store of an owner.
type FavoritesProvider interface {
	For(owner string) catalog.FavoritesStore
}

type browseSession struct {
	engine   *catalog.Engine
	criteria models.CatalogCriteria
}

// BrowseHandler serves catalog browse sessions. Each session owns one
// engine loaded once from the course source.
type BrowseHandler struct {
	sessions  *SessionRegistry[*browseSession]
	source    catalog.Source
	favorites FavoritesProvider
	opts      catalog.Options
}

func NewBrowseHandler(source catalog.Source, favorites FavoritesProvider, opts catalog.Options, ttl time.Duration) *BrowseHandler {
	return &BrowseHandler{
		sessions: NewSessionRegistry(ttl, func(id string, s *browseSession) {
			s.engine.Close()
		}),
		source:    source,
		favorites: favorites,
		opts:      opts,
	}
}

// Sweeper exposes the session registry to the scheduler.
func (h *BrowseHandler) Sweeper() services.Sweeper {
	return h.sessions
}

type createBrowseRequest struct {
	Criteria models.CatalogCriteria `json:"criteria"`
}

type browseResponse struct {
	SessionID string       `json:"sessionId"`
	GuestID   string       `json:"guestId,omitempty"`
	View      catalog.View `json:"view"`
}

const (
	GuestCookieName = "guest_id"
	GuestIDHeader   = "X-Guest-ID"
	guestCookieAge  = 365 * 24 * 60 * 60
)

// guestID returns the id an anonymous client keeps its favorites under. A
// client without a valid id from the header or cookie is issued a new one.
func guestID(w http.ResponseWriter, r *http.Request) string {
	candidate := r.Header.Get(GuestIDHeader)
	if candidate == "" {
		if c, err := r.Cookie(GuestCookieName); err == nil {
			candidate = c.Value
		}
	}
	if id, err := uuid.Parse(candidate); err == nil {
		return id.String()
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     GuestCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   guestCookieAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// CreateBrowseSession handles POST /api/browse. A failed catalog fetch still
// creates the session, in the error state, so the client can retry.
// Anonymous favorites are kept per guest id.
func (h *BrowseHandler) CreateBrowseSession(w http.ResponseWriter, r *http.Request) {
	var req createBrowseRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	owner := middleware.GetUserIDFromContext(r)
	favOwner, guest := owner, ""
	if owner == "" {
		guest = guestID(w, r)
		favOwner = "guest:" + guest
	}

	favs := catalog.LoadFavorites(r.Context(), h.favorites.For(favOwner))
	session := &browseSession{
		engine:   catalog.NewEngine(h.opts, favs),
		criteria: req.Criteria,
	}
	if err := session.engine.Load(r.Context(), h.source, req.Criteria); err != nil {
		log.Printf("Warning: catalog load failed for new browse session: %v", err)
	}

	id := h.sessions.Create(owner, session)
	writeJSON(w, http.StatusCreated, browseResponse{SessionID: id, GuestID: guest, View: session.engine.Snapshot()})
}

func (h *BrowseHandler) session(w http.ResponseWriter, r *http.Request) (string, *browseSession, bool) {
	id := mux.Vars(r)["id"]
	s, ok := h.sessions.Get(id, middleware.GetUserIDFromContext(r))
	if !ok {
		http.Error(w, "Browse session not found", http.StatusNotFound)
		return "", nil, false
	}
	return id, s, true
}

func (h *BrowseHandler) respond(w http.ResponseWriter, id string, s *browseSession) {
	writeJSON(w, http.StatusOK, browseResponse{SessionID: id, View: s.engine.Snapshot()})
}

// GetBrowseSession handles GET /api/browse/{id}
func (h *BrowseHandler) GetBrowseSession(w http.ResponseWriter, r *http.Request) {
	if id, s, ok := h.session(w, r); ok {
		h.respond(w, id, s)
	}
}

// ReloadBrowseSession handles POST /api/browse/{id}/reload
func (h *BrowseHandler) ReloadBrowseSession(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.engine.Load(r.Context(), h.source, s.criteria); err != nil {
		log.Printf("Warning: catalog reload failed for browse session %s: %v", id, err)
	}
	h.respond(w, id, s)
}

// SetFilters handles PUT /api/browse/{id}/filters. Fields left out of the body
// keep their current value.
func (h *BrowseHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}

	next := s.engine.Filters()
	if !decodeBody(w, r, &next, false) {
		return
	}
	if err := s.engine.SetFilters(next); err != nil {
		if errors.Is(err, catalog.ErrInvalidPriceRange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.respond(w, id, s)
}

// ClearFilters handles POST /api/browse/{id}/filters/clear
func (h *BrowseHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.engine.Reset()
	h.respond(w, id, s)
}

type selectAllRequest struct {
	Selected bool `json:"selected"`
}

// SelectAllLanguages handles POST /api/browse/{id}/filters/languages/all
func (h *BrowseHandler) SelectAllLanguages(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectAllRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	s.engine.SelectAllLanguages(req.Selected)
	h.respond(w, id, s)
}

// ToggleSubject handles POST /api/browse/{id}/filters/subjects/{subject}
func (h *BrowseHandler) ToggleSubject(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.engine.ToggleSubject(mux.Vars(r)["subject"])
	h.respond(w, id, s)
}

type sortRequest struct {
	Sort string `json:"sort"`
}

// SetSort handles PUT /api/browse/{id}/sort
func (h *BrowseHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req sortRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if err := s.engine.Sort(catalog.SortKey(req.Sort)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respond(w, id, s)
}

type searchRequest struct {
	Query     string `json:"query" validate:"max=200"`
	Immediate bool   `json:"immediate"`
}

// Search handles POST /api/browse/{id}/search. Queries are debounced unless
// immediate is set; a debounced query answers 202 with the current view.
func (h *BrowseHandler) Search(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	if req.Immediate {
		s.engine.Search(req.Query)
		h.respond(w, id, s)
		return
	}
	s.engine.SearchDebounced(req.Query)
	writeJSON(w, http.StatusAccepted, browseResponse{SessionID: id, View: s.engine.Snapshot()})
}

// LoadMore handles POST /api/browse/{id}/more
func (h *BrowseHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.engine.LoadMore()
	h.respond(w, id, s)
}

type favoriteResponse struct {
	CourseID  string   `json:"courseId"`
	Favorite  bool     `json:"favorite"`
	Favorites []string `json:"favorites"`
}

// ToggleFavorite handles POST /api/browse/{id}/favorites/{courseId}
func (h *BrowseHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.session(w, r)
	if !ok {
		return
	}
	courseID := mux.Vars(r)["courseId"]
	if _, found := s.engine.Course(courseID); !found {
		http.Error(w, "Course not found in this listing", http.StatusNotFound)
		return
	}

	// persisting must outlive a cancelled request
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()
	favorite := s.engine.ToggleFavorite(ctx, courseID)

	writeJSON(w, http.StatusOK, favoriteResponse{CourseID: courseID, Favorite: favorite, Favorites: s.engine.Favorites()})
}

// CloseBrowseSession handles DELETE /api/browse/{id}
func (h *BrowseHandler) CloseBrowseSession(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.session(w, r)
	if !ok {
		return
	}
	h.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}
