package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration is one named, idempotent schema step.
type Migration struct {
	Name string
	Fn   func(*sql.DB) error
}

// All lists every migration in the order it must be applied.
var All = []Migration{
	{"create_base_schema", CreateBaseSchema},
	{"add_course_scheduling_tags", AddCourseSchedulingTags},
	{"add_mentor_applications", AddMentorApplications},
	{"add_local_credentials", AddLocalCredentials},
	{"add_payment_references", AddPaymentReferences},
	// Demo catalog for development and PR environments
	{"seed_demo_catalog", SeedDemoCatalog},
}

// RunMigrations applies every pending migration of All.
func RunMigrations(db *sql.DB) error {
	return Run(db, All)
}

// Run applies the pending migrations of list in order and records each one in
// the migrations table.
func Run(db *sql.DB, list []Migration) error {
	log.Println("Running migrations...")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, migration := range list {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", migration.Name).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if count > 0 {
			log.Printf("Skipping already applied migration: %s", migration.Name)
			continue
		}

		log.Printf("Applying migration: %s", migration.Name)
		if err := migration.Fn(db); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
		}
		if _, err := db.Exec("INSERT INTO migrations (name) VALUES (?)", migration.Name); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}

	log.Println("All migrations completed successfully")
	return nil
}

// Applied returns the names of the applied migrations in order.
func Applied(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT name FROM migrations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
