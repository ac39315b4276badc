package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"studybuddy/backend/catalog"
	"studybuddy/backend/database"
	"studybuddy/backend/models"
)

const courseSelect = `
	SELECT c.id, c.mentor_id, c.title, c.description, c.short_description, c.subject,
		c.language, c.difficulty_level, c.price_per_session, c.total_sessions,
		c.duration_minutes, c.course_image_url, c.is_active, c.enrollment_count, c.created_at,
		c.session_type, c.group_size, c.availability, c.time_slots, c.features,
		COALESCE(p.full_name, ''), COALESCE(p.avatar_url, ''), COALESCE(p.headline, ''),
		COALESCE((SELECT AVG(r.rating) FROM course_reviews r WHERE r.course_id = c.id), 0),
		(SELECT COUNT(*) FROM course_reviews r WHERE r.course_id = c.id)
	FROM courses c
	LEFT JOIN profiles p ON p.id = c.mentor_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (models.Course, error) {
	var (
		c                                 models.Course
		availability, timeSlots, features string
	)
	err := row.Scan(&c.ID, &c.MentorID, &c.Title, &c.Description, &c.ShortDescription, &c.Subject,
		&c.Language, &c.DifficultyLevel, &c.PricePerSession, &c.TotalSessions,
		&c.DurationMinutes, &c.CourseImageURL, &c.IsActive, &c.EnrollmentCount, &c.CreatedAt,
		&c.SessionType, &c.GroupSize, &availability, &timeSlots, &features,
		&c.Mentor.FullName, &c.Mentor.AvatarURL, &c.Mentor.Headline,
		&c.AverageRating, &c.TotalReviews)
	if err != nil {
		return c, err
	}
	c.Mentor.ID = c.MentorID
	c.Availability = decodeTags(c.ID, availability)
	c.TimeSlots = decodeTags(c.ID, timeSlots)
	c.Features = decodeTags(c.ID, features)
	return c, nil
}

func decodeTags(courseID, raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		log.Printf("Warning: course %s has malformed tag list %q: %v", courseID, raw, err)
		return nil
	}
	return tags
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(tags)
	return string(data)
}

func queryCourses(ctx context.Context, where []string, args []any) ([]models.Course, error) {
	query := courseSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.created_at DESC, c.id"

	rows, err := database.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetAllCourses returns active courses, newest first, narrowed by the
// optional server-side criteria.
func GetAllCourses(ctx context.Context, criteria models.CatalogCriteria) ([]models.Course, error) {
	where := []string{"c.is_active = 1"}
	args := []any{}

	if criteria.Subject != "" {
		where = append(where, "LOWER(c.subject) = LOWER(?)")
		args = append(args, criteria.Subject)
	}
	if criteria.Difficulty != "" {
		where = append(where, "LOWER(c.difficulty_level) = LOWER(?)")
		args = append(args, criteria.Difficulty)
	}
	if criteria.Language != "" {
		where = append(where, "LOWER(c.language) = LOWER(?)")
		args = append(args, criteria.Language)
	}
	if criteria.MaxPrice > 0 {
		where = append(where, "c.price_per_session <= ?")
		args = append(args, criteria.MaxPrice)
	}
	if criteria.MentorID != "" {
		where = append(where, "c.mentor_id = ?")
		args = append(args, criteria.MentorID)
	}

	return queryCourses(ctx, where, args)
}

// Catalog serves the browse engine from the course table.
type Catalog struct{}

func (Catalog) FetchCatalog(ctx context.Context, criteria models.CatalogCriteria) ([]models.Course, error) {
	return GetAllCourses(ctx, criteria)
}

func GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	row := database.DB.QueryRowContext(ctx, courseSelect+" WHERE c.id = ?", id)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course %s: %w", id, err)
	}
	return &c, nil
}

// GetMentorCourses returns every course of a mentor, inactive ones included.
func GetMentorCourses(ctx context.Context, mentorID string) ([]models.Course, error) {
	return queryCourses(ctx, []string{"c.mentor_id = ?"}, []any{mentorID})
}

// CreateCourse stores a new course owned by mentorID and returns it as read
// back from the database.
func CreateCourse(ctx context.Context, mentorID string, course models.Course) (*models.Course, error) {
	course.ID = uuid.New().String()
	course.MentorID = mentorID
	if course.TotalSessions == 0 {
		course.TotalSessions = 1
	}
	if course.DurationMinutes == 0 {
		course.DurationMinutes = 60
	}
	if course.SessionType == "" {
		course.SessionType = "1on1"
	}
	if course.Language == "" {
		course.Language = "english"
	}
	if course.DifficultyLevel == "" {
		course.DifficultyLevel = models.DifficultyBeginner
	}
	course.AverageRating, course.TotalReviews, course.EnrollmentCount = 0, 0, 0
	if err := course.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err := database.DB.ExecContext(ctx, `
		INSERT INTO courses (id, mentor_id, title, description, short_description, subject, language,
			difficulty_level, price_per_session, total_sessions, duration_minutes, course_image_url,
			is_active, session_type, group_size, availability, time_slots, features, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?)`,
		course.ID, course.MentorID, course.Title, course.Description, course.ShortDescription,
		course.Subject, course.Language, course.DifficultyLevel, course.PricePerSession,
		course.TotalSessions, course.DurationMinutes, course.CourseImageURL,
		course.SessionType, course.GroupSize, encodeTags(course.Availability),
		encodeTags(course.TimeSlots), encodeTags(course.Features), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	log.Printf("Course %s created by mentor %s", course.ID, mentorID)
	return GetCourseByID(ctx, course.ID)
}

// UpdateCourse writes the editable fields of course. Only the owning mentor
// may update it.
func UpdateCourse(ctx context.Context, mentorID string, course models.Course) (*models.Course, error) {
	if err := course.Validate(); err != nil {
		return nil, err
	}

	res, err := database.DB.ExecContext(ctx, `
		UPDATE courses SET title = ?, description = ?, short_description = ?, subject = ?,
			language = ?, difficulty_level = ?, price_per_session = ?, total_sessions = ?,
			duration_minutes = ?, course_image_url = ?, is_active = ?, session_type = ?,
			group_size = ?, availability = ?, time_slots = ?, features = ?, updated_at = ?
		WHERE id = ? AND mentor_id = ?`,
		course.Title, course.Description, course.ShortDescription, course.Subject,
		course.Language, course.DifficultyLevel, course.PricePerSession, course.TotalSessions,
		course.DurationMinutes, course.CourseImageURL, course.IsActive, course.SessionType,
		course.GroupSize, encodeTags(course.Availability), encodeTags(course.TimeSlots),
		encodeTags(course.Features), time.Now().UTC(), course.ID, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := GetCourseByID(ctx, course.ID); err != nil {
			return nil, err
		}
		return nil, ErrNotCourseMentor
	}

	return GetCourseByID(ctx, course.ID)
}

var _ catalog.Source = Catalog{}
