package migrations

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// SeedDemoCatalog seeds mentors, a student and a course catalog for
// development and PR environments. It never runs in production.
func SeedDemoCatalog(db *sql.DB) error {
	if os.Getenv("APP_ENV") == "production" || os.Getenv("ENVIRONMENT") == "production" {
		log.Println("Refusing to seed demo data in production environment")
		return nil
	}

	if os.Getenv("RESET_DB") != "true" &&
		os.Getenv("APP_ENV") != "development" &&
		os.Getenv("ENVIRONMENT") != "development" &&
		os.Getenv("PR_DEPLOYMENT") != "true" &&
		os.Getenv("SEED_DEMO_DATA") != "true" {
		log.Println("Skipping demo data seeding - not explicitly requested and not in dev/PR environment")
		return nil
	}

	log.Println("Seeding demo catalog...")
	return seedDemoCatalog(db, time.Now().UTC())
}

type demoCourse struct {
	id, mentor, title, description, subject, language, difficulty string
	price, sessions                                                int
	sessionType, groupSize                                         string
	availability, timeSlots, features                              []string
	age                                                            time.Duration
}

func seedDemoCatalog(db *sql.DB, now time.Time) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	profiles := []struct {
		id, email, name, role, headline string
		coins                           int
	}{
		{"mentor-priya", "priya@example.com", "Priya Sharma", "mentor", "Physics PhD, 8 years of teaching", 0},
		{"mentor-diego", "diego@example.com", "Diego Alvarez", "mentor", "Senior software engineer", 0},
		{"mentor-mei", "mei@example.com", "Mei Chen", "mentor", "Certified language coach", 0},
		{"student-alex", "alex@example.com", "Alex Kim", "student", "", 1500},
		{"admin", "admin@example.com", "Admin", "admin", "", 0},
	}
	for _, p := range profiles {
		_, err = tx.Exec(`INSERT OR IGNORE INTO profiles (id, email, full_name, role, headline, coin_balance, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, p.id, p.email, p.name, p.role, p.headline, p.coins, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert profile %s: %w", p.id, err)
		}
	}

	courses := []demoCourse{
		{"course-mechanics", "mentor-priya", "Classical Mechanics Made Simple", "Newton's laws, energy and momentum with worked problems.", "physics", "english", "beginner", 150, 8, "1on1", "", []string{"today", "weekend"}, []string{"evening"}, []string{"free-trial", "certificate"}, 1 * time.Hour},
		{"course-quantum", "mentor-priya", "Intro to Quantum Physics", "Wave functions, uncertainty and the hydrogen atom.", "physics", "english", "advanced", 400, 10, "group", "6-10", []string{"thisweek"}, []string{"morning"}, []string{"certificate"}, 30 * time.Hour},
		{"course-calculus", "mentor-priya", "Calculus for Engineers", "Limits, derivatives and integrals applied to real problems.", "mathematics", "english", "intermediate", 250, 12, "group", "2-5", []string{"today", "tomorrow"}, []string{"afternoon"}, []string{"recorded"}, 70 * time.Hour},
		{"course-python", "mentor-diego", "Python from Zero", "Variables, loops and functions through small projects.", "programming", "english", "beginner", 200, 6, "1on1", "", []string{"today"}, []string{"afternoon", "evening"}, []string{"free-trial", "recorded"}, 5 * time.Hour},
		{"course-go", "mentor-diego", "Backend Services in Go", "HTTP servers, databases and testing in Go.", "programming", "english", "intermediate", 350, 8, "group", "6-10", []string{"weekend"}, []string{"morning"}, []string{"certificate", "recorded"}, 50 * time.Hour},
		{"course-dsa", "mentor-diego", "Data Structures Interview Prep", "Arrays, trees, graphs and dynamic programming drills.", "programming", "english", "professional", 600, 10, "1on1", "", []string{"tomorrow", "thisweek"}, []string{"evening"}, nil, 90 * time.Hour},
		{"course-spanish", "mentor-mei", "Conversational Spanish", "Everyday conversations and pronunciation practice.", "languages", "spanish", "beginner", 120, 10, "group", "2-5", []string{"today", "weekend"}, []string{"morning", "evening"}, []string{"free-trial"}, 8 * time.Hour},
		{"course-hindi", "mentor-mei", "Hindi for Beginners", "Devanagari script, greetings and basic grammar.", "languages", "hindi", "beginner", 90, 8, "1on1", "", []string{"thisweek"}, []string{"afternoon"}, nil, 20 * time.Hour},
		{"course-mandarin", "mentor-mei", "Business Mandarin", "Meetings, negotiation and email etiquette in Mandarin.", "languages", "mandarin", "advanced", 500, 12, "1on1", "", []string{"tomorrow"}, []string{"morning"}, []string{"certificate"}, 120 * time.Hour},
		{"course-english", "mentor-mei", "IELTS Speaking Coach", "Band 7+ strategies with mock speaking tests.", "languages", "english", "intermediate", 300, 6, "1on1", "", []string{"today"}, []string{"evening"}, []string{"free-trial", "certificate"}, 2 * time.Hour},
	}
	for _, c := range courses {
		availability, _ := json.Marshal(nonNil(c.availability))
		timeSlots, _ := json.Marshal(nonNil(c.timeSlots))
		features, _ := json.Marshal(nonNil(c.features))
		created := now.Add(-c.age)
		_, err = tx.Exec(`INSERT OR IGNORE INTO courses (id, mentor_id, title, description, short_description, subject, language,
				difficulty_level, price_per_session, total_sessions, duration_minutes, session_type, group_size,
				availability, time_slots, features, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 60, ?, ?, ?, ?, ?, 1, ?, ?)`,
			c.id, c.mentor, c.title, c.description, c.description, c.subject, c.language, c.difficulty,
			c.price, c.sessions, c.sessionType, c.groupSize, string(availability), string(timeSlots), string(features),
			created, created)
		if err != nil {
			return fmt.Errorf("failed to insert course %s: %w", c.id, err)
		}
	}

	reviews := []struct {
		course string
		rating int
	}{
		{"course-mechanics", 5}, {"course-python", 4}, {"course-spanish", 5}, {"course-go", 4}, {"course-english", 3},
	}
	for i, r := range reviews {
		_, err = tx.Exec(`INSERT OR IGNORE INTO course_reviews (id, course_id, student_id, rating, comment, created_at)
			VALUES (?, ?, 'student-alex', ?, 'Great sessions', ?)`, fmt.Sprintf("review-%d", i+1), r.course, r.rating, now)
		if err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit demo data: %w", err)
	}
	log.Printf("Seeded %d profiles and %d courses", len(profiles), len(courses))
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
