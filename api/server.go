package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"studybuddy/backend/catalog"
	"studybuddy/backend/config"
	"studybuddy/backend/handlers"
	"studybuddy/backend/middleware"
	"studybuddy/backend/security"
	"studybuddy/backend/services"
	"studybuddy/backend/storage"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Config    *config.Config
	Auth      *services.AuthService
	Profiles  *services.ProfileCache
	Catalog   catalog.Source
	Favorites handlers.FavoritesProvider
	Storage   storage.StorageClient
	Cipher    *security.Cipher
}

// Server represents the API server
type Server struct {
	router       *mux.Router
	cors         func(http.Handler) http.Handler
	browse       *handlers.BrowseHandler
	onboarding   *handlers.OnboardingHandler
	auth         *handlers.AuthHandler
	profile      *handlers.ProfileHandler
	applications *handlers.ApplicationsHandler
}

// NewServer creates a new API server
func NewServer(deps Deps) *Server {
	cfg := deps.Config
	s := &Server{
		router: mux.NewRouter(),
		cors:   middleware.EnableCORS(cfg.Server.AllowedOrigins, !cfg.IsProduction()),
		browse: handlers.NewBrowseHandler(deps.Catalog, deps.Favorites, catalog.Options{
			PageSize:       cfg.Catalog.PageSize,
			SearchDebounce: cfg.Catalog.SearchDebounce,
		}, cfg.Catalog.SessionTTL),
		onboarding:   handlers.NewOnboardingHandler(deps.Storage, deps.Cipher, cfg.Catalog.SessionTTL),
		auth:         handlers.NewAuthHandler(deps.Auth, deps.Profiles),
		profile:      handlers.NewProfileHandler(deps.Profiles),
		applications: handlers.NewApplicationsHandler(deps.Cipher, deps.Profiles, deps.Storage),
	}
	s.RegisterRoutes()
	return s
}

func authed(h http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(h)
}

func optional(h http.HandlerFunc) http.Handler {
	return middleware.OptionalAuth(h)
}

func mentorOnly(h http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(middleware.RequireMentor()(h))
}

func adminOnly(h http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(middleware.RequireAdmin()(h))
}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes() {
	r := s.router

	// Public routes (no auth required)
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	r.HandleFunc("/api/auth/signup", s.auth.SignUp).Methods("POST")
	r.HandleFunc("/api/auth/signin", s.auth.SignIn).Methods("POST")

	r.Handle("/api/auth/signout", authed(s.auth.SignOut)).Methods("POST")
	r.Handle("/api/auth/me", authed(s.auth.Me)).Methods("GET")

	// Profile and wallet
	r.Handle("/api/profile", authed(s.profile.GetProfile)).Methods("GET")
	r.Handle("/api/profile", authed(s.profile.UpdateProfile)).Methods("PUT")
	r.Handle("/api/profile/coins", authed(s.profile.GetWallet)).Methods("GET")
	r.Handle("/api/profile/coins", authed(s.profile.PurchaseCoins)).Methods("POST")

	// Catalog browsing sessions
	r.Handle("/api/browse", optional(s.browse.CreateBrowseSession)).Methods("POST")
	r.Handle("/api/browse/{id}", optional(s.browse.GetBrowseSession)).Methods("GET")
	r.Handle("/api/browse/{id}", optional(s.browse.CloseBrowseSession)).Methods("DELETE")
	r.Handle("/api/browse/{id}/reload", optional(s.browse.ReloadBrowseSession)).Methods("POST")
	r.Handle("/api/browse/{id}/filters", optional(s.browse.SetFilters)).Methods("PUT")
	r.Handle("/api/browse/{id}/filters/clear", optional(s.browse.ClearFilters)).Methods("POST")
	r.Handle("/api/browse/{id}/filters/languages/all", optional(s.browse.SelectAllLanguages)).Methods("POST")
	r.Handle("/api/browse/{id}/filters/subjects/{subject}", optional(s.browse.ToggleSubject)).Methods("POST")
	r.Handle("/api/browse/{id}/sort", optional(s.browse.SetSort)).Methods("PUT")
	r.Handle("/api/browse/{id}/search", optional(s.browse.Search)).Methods("POST")
	r.Handle("/api/browse/{id}/more", optional(s.browse.LoadMore)).Methods("POST")
	r.Handle("/api/browse/{id}/favorites/{courseId}", optional(s.browse.ToggleFavorite)).Methods("POST")

	// Courses
	r.Handle("/api/courses", optional(handlers.GetCourses)).Methods("GET")
	r.Handle("/api/courses", mentorOnly(handlers.CreateCourse)).Methods("POST")
	r.Handle("/api/courses/{id}", optional(handlers.GetCourse)).Methods("GET")
	r.Handle("/api/courses/{id}", authed(handlers.UpdateCourse)).Methods("PUT")
	r.Handle("/api/courses/{id}/enroll", authed(handlers.EnrollInCourse)).Methods("POST")
	r.Handle("/api/courses/{id}/messages", authed(handlers.GetCourseMessages)).Methods("GET")
	r.Handle("/api/courses/{id}/messages", authed(handlers.SendCourseMessage)).Methods("POST")
	r.Handle("/api/courses/{id}/messages/read", authed(handlers.MarkMessagesRead)).Methods("POST")
	r.Handle("/api/courses/{id}/sessions", authed(handlers.GetCourseSessions)).Methods("GET")
	r.Handle("/api/courses/{id}/sessions", authed(handlers.CreateCourseSession)).Methods("POST")
	r.Handle("/api/courses/{id}/reviews", authed(handlers.AddReview)).Methods("POST")
	r.Handle("/api/enrollments", authed(handlers.GetEnrollments)).Methods("GET")

	// Mentor area
	r.Handle("/api/mentor/courses", mentorOnly(handlers.GetMyCourses)).Methods("GET")
	r.Handle("/api/dashboard", mentorOnly(handlers.GetMentorDashboard)).Methods("GET")

	// Mentor application wizard
	r.Handle("/api/onboarding", authed(s.onboarding.CreateApplication)).Methods("POST")
	r.Handle("/api/onboarding/{id}", authed(s.onboarding.GetApplication)).Methods("GET")
	r.Handle("/api/onboarding/{id}/start", authed(s.onboarding.StartApplication)).Methods("POST")
	r.Handle("/api/onboarding/{id}/fields", authed(s.onboarding.UpdateFields)).Methods("PUT")
	r.Handle("/api/onboarding/{id}/files/{field}", authed(s.onboarding.UploadDocument)).Methods("POST")
	r.Handle("/api/onboarding/{id}/files/{field}", authed(s.onboarding.RemoveDocument)).Methods("DELETE")
	r.Handle("/api/onboarding/{id}/next", authed(s.onboarding.NextStep)).Methods("POST")
	r.Handle("/api/onboarding/{id}/back", authed(s.onboarding.PreviousStep)).Methods("POST")
	r.Handle("/api/onboarding/{id}/submit", authed(s.onboarding.SubmitApplication)).Methods("POST")

	// Application review
	r.Handle("/api/applications/{id}", adminOnly(s.applications.GetApplication)).Methods("GET")
	r.Handle("/api/applications/{id}/review", adminOnly(s.applications.ReviewApplication)).Methods("POST")
	r.Handle("/api/applications/{id}/documents/{field}", adminOnly(s.applications.GetDocument)).Methods("GET")
}

// Sweepers returns the session registries the scheduler keeps trimmed.
func (s *Server) Sweepers() []services.Sweeper {
	return []services.Sweeper{s.browse.Sweeper(), s.onboarding.Sweeper()}
}

// Handler returns the HTTP handler for the API server
func (s *Server) Handler() http.Handler {
	return s.cors(s.router)
}
