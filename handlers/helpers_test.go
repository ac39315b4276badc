package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"studybuddy/backend/database"
	"studybuddy/backend/middleware"
)

// Seeded demo accounts
const (
	TestStudentID = "student-alex"
	TestMentorID  = "mentor-priya"
	TestAdminID   = "admin"
)

// setupTestDB points database.DB at a fresh in-memory database holding the
// demo catalog.
func setupTestDB(t *testing.T) {
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
}

// MockAuthContext adds a mock user ID to the request context for testing
func MockAuthContext(req *http.Request, userID string) *http.Request {
	if userID == "" {
		return req
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

// NewAuthenticatedRequest creates a JSON request acting as userID. An empty
// userID makes an anonymous request.
func NewAuthenticatedRequest(method, url string, body any, userID string) *http.Request {
	var req *http.Request
	if body != nil {
		buf, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewBuffer(buf))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	return MockAuthContext(req, userID)
}

// serve routes req through a router holding a single pattern, so path
// variables are populated.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc(pattern, h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}
