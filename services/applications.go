package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"studybuddy/backend/database"
	"studybuddy/backend/models"
	"studybuddy/backend/onboarding"
	"studybuddy/backend/security"
)

// Fields lifted out of the generic field map into their own columns.
var applicationColumns = map[string]bool{
	"fullName":         true,
	"email":            true,
	"phone":            true,
	"dob":              true,
	"city":             true,
	"digitalSignature": true,
}

// NewMentorApplication builds the record for a completed wizard. Documents
// map each file field to its stored object name.
func NewMentorApplication(userID string, values map[string][]string, files map[string][]onboarding.File) *models.MentorApplication {
	first := func(field string) string {
		if v := values[field]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	app := &models.MentorApplication{
		UserID:      userID,
		FullName:    first("fullName"),
		Email:       first("email"),
		Phone:       first("phone"),
		DateOfBirth: first("dob"),
		City:        first("city"),
		Signature:   first("digitalSignature"),
		Fields:      map[string][]string{},
		Documents:   map[string]string{},
		Status:      models.ApplicationPending,
	}
	for field, v := range values {
		if !applicationColumns[field] {
			app.Fields[field] = append([]string(nil), v...)
		}
	}
	for field, list := range files {
		if len(list) > 0 {
			app.Documents[field] = list[0].ObjectName
		}
	}
	return app
}

// SaveMentorApplication stores a submitted application. Phone, date of
// birth and signature are sealed with cipher.
func SaveMentorApplication(ctx context.Context, cipher *security.Cipher, app *models.MentorApplication) error {
	phone, err := cipher.Encrypt(app.Phone)
	if err != nil {
		return fmt.Errorf("failed to encrypt phone: %w", err)
	}
	dob, err := cipher.Encrypt(app.DateOfBirth)
	if err != nil {
		return fmt.Errorf("failed to encrypt date of birth: %w", err)
	}
	signature, err := cipher.Encrypt(app.Signature)
	if err != nil {
		return fmt.Errorf("failed to encrypt signature: %w", err)
	}
	fields, err := json.Marshal(app.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}
	documents, err := json.Marshal(app.Documents)
	if err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}

	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}
	app.SubmittedAt = time.Now().UTC()

	_, err = database.DB.ExecContext(ctx, `
		INSERT INTO mentor_applications (id, user_id, full_name, email, phone_enc, dob_enc, city,
			fields, documents, signature_enc, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.UserID, app.FullName, app.Email, phone, dob, app.City,
		string(fields), string(documents), signature, app.Status, app.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to save mentor application: %w", err)
	}

	log.Printf("Mentor application %s submitted by %q", app.ID, app.Email)
	return nil
}

func GetMentorApplication(ctx context.Context, cipher *security.Cipher, id string) (*models.MentorApplication, error) {
	var (
		app                   models.MentorApplication
		phone, dob, signature string
		fields, documents     string
	)
	err := database.DB.QueryRowContext(ctx, `
		SELECT id, user_id, full_name, email, phone_enc, dob_enc, city, fields, documents,
			signature_enc, status, submitted_at
		FROM mentor_applications WHERE id = ?`, id).
		Scan(&app.ID, &app.UserID, &app.FullName, &app.Email, &phone, &dob, &app.City,
			&fields, &documents, &signature, &app.Status, &app.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mentor application: %w", err)
	}

	if app.Phone, err = cipher.Decrypt(phone); err != nil {
		return nil, err
	}
	if app.DateOfBirth, err = cipher.Decrypt(dob); err != nil {
		return nil, err
	}
	if app.Signature, err = cipher.Decrypt(signature); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &app.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	if err := json.Unmarshal([]byte(documents), &app.Documents); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return &app, nil
}

// ReviewMentorApplication approves or rejects a pending application.
// Approving promotes the applicant's profile to mentor.
func ReviewMentorApplication(ctx context.Context, id, status string) (err error) {
	if status != models.ApplicationApproved && status != models.ApplicationRejected {
		return fmt.Errorf("invalid application status: %s", status)
	}

	tx, err := database.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var userID, current string
	err = tx.QueryRowContext(ctx, "SELECT user_id, status FROM mentor_applications WHERE id = ?", id).Scan(&userID, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load application: %w", err)
	}
	if current != models.ApplicationPending {
		return fmt.Errorf("%w: %s is %s", ErrApplicationClosed, id, current)
	}

	if _, err = tx.ExecContext(ctx, "UPDATE mentor_applications SET status = ? WHERE id = ?", status, id); err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if status == models.ApplicationApproved && userID != "" {
		if _, err = tx.ExecContext(ctx,
			"UPDATE profiles SET role = ?, updated_at = ? WHERE id = ? AND role = ?",
			models.RoleMentor, time.Now().UTC(), userID, models.RoleStudent); err != nil {
			return fmt.Errorf("failed to promote user: %w", err)
		}
	}

	return tx.Commit()
}
