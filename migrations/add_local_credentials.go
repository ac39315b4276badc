package migrations

import (
	"database/sql"
	"fmt"
)

// AddLocalCredentials backs the development identity provider. Tokens carry
// the token_version they were issued under; sign-out bumps it.
func AddLocalCredentials(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			token_version INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create credentials table: %w", err)
	}
	return nil
}
