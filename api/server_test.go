package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studybuddy/backend/config"
	"studybuddy/backend/database"
	"studybuddy/backend/middleware"
	"studybuddy/backend/security"
	"studybuddy/backend/services"
	"studybuddy/backend/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	for _, key := range []string{"RESET_DB", "ENVIRONMENT", "PR_DEPLOYMENT"} {
		t.Setenv(key, "")
	}
	t.Setenv("APP_ENV", "test")
	t.Setenv("SEED_DEMO_DATA", "true")
	if err := database.InitDB(":memory:"); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() {
		database.DB.Close()
		database.DB = nil
	})

	// development mode: the X-Dev-User header picks the caller
	middleware.InitializeAuth(nil)

	store, err := storage.NewLocalStorageClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorageClient failed: %v", err)
	}
	cipher, _ := security.NewCipher("server-test-key")
	broker := services.NewAuthStateBroker()
	profiles := services.NewProfileCache(broker)
	t.Cleanup(profiles.Close)

	cfg := &config.Config{
		Server:  config.ServerConfig{Environment: "test", AllowedOrigins: []string{"http://localhost:5173"}},
		Catalog: config.CatalogConfig{PageSize: 8, SearchDebounce: 10 * time.Millisecond, SessionTTL: time.Minute},
	}
	return NewServer(Deps{
		Config:    cfg,
		Auth:      services.NewAuthService(services.NewLocalIdentity("server-test-secret", time.Hour), broker),
		Profiles:  profiles,
		Catalog:   services.Catalog{},
		Favorites: services.FavoritesFactory{},
		Storage:   store,
		Cipher:    cipher,
	})
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	testCases := []struct {
		name   string
		method string
		path   string
		user   string
		status int
	}{
		{"Health", "GET", "/health", "", http.StatusOK},
		{"Public catalog", "GET", "/api/courses", "", http.StatusOK},
		{"Anonymous browse session", "POST", "/api/browse", "", http.StatusCreated},
		{"Student dashboard forbidden", "GET", "/api/dashboard", "student-alex", http.StatusForbidden},
		{"Mentor dashboard", "GET", "/api/dashboard", "mentor-priya", http.StatusOK},
		{"Mentor course list", "GET", "/api/mentor/courses", "mentor-diego", http.StatusOK},
		{"Default dev user profile", "GET", "/api/profile", "", http.StatusOK},
		{"Admin only review", "GET", "/api/applications/missing", "mentor-priya", http.StatusForbidden},
		{"Admin application lookup", "GET", "/api/applications/missing", "admin", http.StatusNotFound},
		{"Start wizard", "POST", "/api/onboarding", "student-alex", http.StatusCreated},
		{"Wrong method", "DELETE", "/api/courses", "", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.user != "" {
				req.Header.Set(middleware.DevUserHeader, tc.user)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.status {
				t.Errorf("Expected status %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/courses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected preflight 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected allowed origin echoed, got %q", got)
	}
}

func TestSweepers(t *testing.T) {
	s := newTestServer(t)
	if n := len(s.Sweepers()); n != 2 {
		t.Errorf("Expected 2 sweepers, got %d", n)
	}
}
