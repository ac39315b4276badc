package services

import (
	"testing"

	"studybuddy/backend/database"
)

// setupTestDB points database.DB at a fresh in-memory database holding the
// demo catalog: three mentors, student-alex with 1500 coins and ten courses.
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

func mustExec(t *testing.T, query string, args ...any) {
	t.Helper()
	if _, err := database.DB.Exec(query, args...); err != nil {
		t.Fatalf("Exec %q failed: %v", query, err)
	}
}

func countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := database.DB.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Count %q failed: %v", query, err)
	}
	return n
}
