package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// AddCourseSchedulingTags adds the session type, group size, availability,
// time slot and feature tags used by the browse filters. List columns hold
// JSON arrays.
func AddCourseSchedulingTags(db *sql.DB) error {
	columns := []struct {
		name string
		def  string
	}{
		{"session_type", "TEXT NOT NULL DEFAULT '1on1'"},
		{"group_size", "TEXT NOT NULL DEFAULT ''"},
		{"availability", "TEXT NOT NULL DEFAULT '[]'"},
		{"time_slots", "TEXT NOT NULL DEFAULT '[]'"},
		{"features", "TEXT NOT NULL DEFAULT '[]'"},
	}

	for _, col := range columns {
		exists, err := columnExists(db, "courses", col.name)
		if err != nil {
			return err
		}
		if exists {
			log.Printf("Column courses.%s already exists, skipping", col.name)
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE courses ADD COLUMN %s %s", col.name, col.def)); err != nil {
			return fmt.Errorf("failed to add courses.%s: %w", col.name, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
