package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"studybuddy/backend/database"
)

func setupTestDB(t *testing.T) {
	t.Helper()
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

func TestRequireRole(t *testing.T) {
	setupTestDB(t)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name           string
		userID         string
		handler        http.Handler
		expectedStatus int
	}{
		{"Mentor passes mentor check", "mentor-priya", RequireMentor()(ok), http.StatusOK},
		{"Admin passes mentor check", "admin", RequireMentor()(ok), http.StatusOK},
		{"Student fails mentor check", "student-alex", RequireMentor()(ok), http.StatusForbidden},
		{"Mentor fails admin check", "mentor-priya", RequireAdmin()(ok), http.StatusForbidden},
		{"Unknown user", "ghost", RequireMentor()(ok), http.StatusForbidden},
		{"No user", "", RequireMentor()(ok), http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/dashboard", nil)
			if tc.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), UserIDKey, tc.userID))
			}
			rr := httptest.NewRecorder()
			tc.handler.ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
		})
	}
}
