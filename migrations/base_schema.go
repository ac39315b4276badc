package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// CreateBaseSchema creates the marketplace tables.
func CreateBaseSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			full_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'student',
			avatar_url TEXT NOT NULL DEFAULT '',
			headline TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			coin_balance INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS courses (
			id TEXT PRIMARY KEY,
			mentor_id TEXT NOT NULL REFERENCES profiles(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			short_description TEXT NOT NULL DEFAULT '',
			subject TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT 'english',
			difficulty_level TEXT NOT NULL DEFAULT 'beginner',
			price_per_session INTEGER NOT NULL DEFAULT 0,
			total_sessions INTEGER NOT NULL DEFAULT 1,
			duration_minutes INTEGER NOT NULL DEFAULT 60,
			course_image_url TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT 1,
			enrollment_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS course_reviews (
			id TEXT PRIMARY KEY,
			course_id TEXT NOT NULL REFERENCES courses(id),
			student_id TEXT NOT NULL REFERENCES profiles(id),
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(course_id, student_id)
		);

		CREATE TABLE IF NOT EXISTS course_enrollments (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL REFERENCES profiles(id),
			course_id TEXT NOT NULL REFERENCES courses(id),
			coins_paid INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			enrolled_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(student_id, course_id)
		);

		CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES profiles(id),
			amount INTEGER NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			course_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'completed',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS course_sessions (
			id TEXT PRIMARY KEY,
			course_id TEXT NOT NULL REFERENCES courses(id),
			title TEXT NOT NULL,
			scheduled_at DATETIME NOT NULL,
			duration_minutes INTEGER NOT NULL DEFAULT 60,
			meeting_url TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'scheduled'
		);

		CREATE TABLE IF NOT EXISTS course_messages (
			id TEXT PRIMARY KEY,
			course_id TEXT NOT NULL REFERENCES courses(id),
			sender_id TEXT NOT NULL REFERENCES profiles(id),
			content TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create base schema: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_courses_active_created ON courses(is_active, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_courses_mentor ON courses(mentor_id)",
		"CREATE INDEX IF NOT EXISTS idx_enrollments_student ON course_enrollments(student_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_messages_course ON course_messages(course_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_course ON course_sessions(course_id, scheduled_at)",
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("Base schema created")
	return nil
}
