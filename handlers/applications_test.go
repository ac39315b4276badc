package handlers

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"studybuddy/backend/models"
	"studybuddy/backend/onboarding"
	"studybuddy/backend/security"
	"studybuddy/backend/services"
	"studybuddy/backend/storage"
)

func TestReviewApplication(t *testing.T) {
	setupTestDB(t)
	cipher, _ := security.NewCipher("applications-test-key")
	broker := services.NewAuthStateBroker()
	cache := services.NewProfileCache(broker)
	defer cache.Close()
	store, err := storage.NewLocalStorageClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorageClient failed: %v", err)
	}
	h := NewApplicationsHandler(cipher, cache, store)

	object := storage.GenerateObjectName("wizard-1", "eduCert", "degree.pdf")
	if _, err := store.UploadFile(context.Background(), bytes.NewReader(pdfBytes), object, "application/pdf"); err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	app := services.NewMentorApplication(TestStudentID, map[string][]string{
		"fullName": {"Alex Kim"},
		"phone":    {"5550001111"},
		"subjects": {"physics", "mathematics", "chemistry"},
	}, map[string][]onboarding.File{
		"eduCert": {{Name: "degree.pdf", ObjectName: object}},
	})
	if err := services.SaveMentorApplication(context.Background(), cipher, app); err != nil {
		t.Fatalf("SaveMentorApplication failed: %v", err)
	}
	if _, err := cache.Get(context.Background(), TestStudentID); err != nil {
		t.Fatalf("Failed to warm cache: %v", err)
	}

	path := "/api/applications/" + app.ID
	rr := serve("/api/applications/{id}", h.GetApplication, NewAuthenticatedRequest("GET", path, nil, TestAdminID))
	expectStatus(t, rr, http.StatusOK)
	var got models.MentorApplication
	decodeResponse(t, rr, &got)
	if got.Phone != "5550001111" {
		t.Errorf("Expected decrypted phone, got %q", got.Phone)
	}

	testCases := []struct {
		name   string
		status string
		want   int
	}{
		{"Unknown decision", "maybe", http.StatusUnprocessableEntity},
		{"Approve", models.ApplicationApproved, http.StatusOK},
		{"Decide twice", models.ApplicationRejected, http.StatusConflict},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve("/api/applications/{id}/review", h.ReviewApplication,
				NewAuthenticatedRequest("POST", path+"/review", map[string]string{"status": tc.status}, TestAdminID))
			if rr.Code != tc.want {
				t.Errorf("Expected status %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}

	if cache.Cached(TestStudentID) {
		t.Errorf("Expected applicant's cached profile to be dropped")
	}
	role, _ := services.GetUserRole(context.Background(), TestStudentID)
	if role != models.RoleMentor {
		t.Errorf("Expected applicant promoted to mentor, got %s", role)
	}

	rr = serve("/api/applications/{id}", h.GetApplication, NewAuthenticatedRequest("GET", "/api/applications/missing", nil, TestAdminID))
	expectStatus(t, rr, http.StatusNotFound)

	rr = serve("/api/applications/{id}/documents/{field}", h.GetDocument,
		NewAuthenticatedRequest("GET", path+"/documents/eduCert", nil, TestAdminID))
	expectStatus(t, rr, http.StatusOK)
	if !bytes.Equal(rr.Body.Bytes(), pdfBytes) {
		t.Errorf("Expected stored certificate bytes, got %d bytes", rr.Body.Len())
	}

	rr = serve("/api/applications/{id}/documents/{field}", h.GetDocument,
		NewAuthenticatedRequest("GET", path+"/documents/idFront", nil, TestAdminID))
	expectStatus(t, rr, http.StatusNotFound)
}
