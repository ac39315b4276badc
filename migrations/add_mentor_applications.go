package migrations

import (
	"database/sql"
	"fmt"
)

// AddMentorApplications stores submitted onboarding wizards. Phone, date of
// birth and signature are stored encrypted.
func AddMentorApplications(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS mentor_applications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone_enc TEXT NOT NULL,
			dob_enc TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			fields TEXT NOT NULL DEFAULT '{}',
			documents TEXT NOT NULL DEFAULT '{}',
			signature_enc TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create mentor_applications table: %w", err)
	}
	return nil
}
