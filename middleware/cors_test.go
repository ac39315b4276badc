package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsAllowedOrigin(t *testing.T) {
	allowedOrigins := []string{
		"https://example.com",
		"http://localhost:5173",
	}

	testCases := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"Allowed origin", "https://example.com", true},
		{"Another allowed origin", "http://localhost:5173", true},
		{"Disallowed origin", "https://evil.com", false},
		{"Empty origin", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := isAllowedOrigin(tc.origin, allowedOrigins)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v for origin %s", tc.expected, result, tc.origin)
			}
		})
	}
}

func TestEnableCORS(t *testing.T) {
	allowed := []string{"https://studybuddy.example", "http://localhost:5173"}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	testCases := []struct {
		name           string
		development    bool
		method         string
		origin         string
		expectedOrigin string
		expectedStatus int
	}{
		{"Allowed origin", false, "GET", "http://localhost:5173", "http://localhost:5173", http.StatusTeapot},
		{"Unknown origin in production", false, "GET", "https://evil.com", "https://studybuddy.example", http.StatusTeapot},
		{"Unknown origin in development", true, "GET", "https://evil.com", "https://evil.com", http.StatusTeapot},
		{"Preflight", false, "OPTIONS", "https://studybuddy.example", "https://studybuddy.example", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/courses", nil)
			req.Header.Set("Origin", tc.origin)
			rr := httptest.NewRecorder()

			EnableCORS(allowed, tc.development)(next).ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.expectedOrigin {
				t.Errorf("Expected origin %s, got %s", tc.expectedOrigin, got)
			}
			if rr.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			if rr.Header().Get("Access-Control-Allow-Methods") == "" {
				t.Errorf("Expected Access-Control-Allow-Methods to be set")
			}
		})
	}
}
