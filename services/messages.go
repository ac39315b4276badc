package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studybuddy/backend/database"
	"studybuddy/backend/models"
)

// GetCourseMessages returns a course's message thread, oldest first.
func GetCourseMessages(ctx context.Context, courseID string) ([]models.CourseMessage, error) {
	rows, err := database.DB.QueryContext(ctx, `
		SELECT m.id, m.course_id, m.sender_id, COALESCE(p.full_name, ''), m.content, m.is_read, m.created_at
		FROM course_messages m
		LEFT JOIN profiles p ON p.id = m.sender_id
		WHERE m.course_id = ?
		ORDER BY m.created_at ASC, m.rowid ASC`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	list := []models.CourseMessage{}
	for rows.Next() {
		var m models.CourseMessage
		if err := rows.Scan(&m.ID, &m.CourseID, &m.SenderID, &m.SenderName, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func SendCourseMessage(ctx context.Context, courseID, senderID, content string) (*models.CourseMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content is required")
	}
	m := &models.CourseMessage{
		ID:        uuid.New().String(),
		CourseID:  courseID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := database.DB.ExecContext(ctx, `
		INSERT INTO course_messages (id, course_id, sender_id, content, is_read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`, m.ID, m.CourseID, m.SenderID, m.Content, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return m, nil
}

// MarkMessagesRead marks everything in the thread not sent by readerID as
// read and returns how many messages changed.
func MarkMessagesRead(ctx context.Context, courseID, readerID string) (int64, error) {
	res, err := database.DB.ExecContext(ctx, `
		UPDATE course_messages SET is_read = 1
		WHERE course_id = ? AND sender_id != ? AND is_read = 0`, courseID, readerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return res.RowsAffected()
}

// GetCourseSessions returns a course's scheduled sessions, earliest first.
func GetCourseSessions(ctx context.Context, courseID string) ([]models.CourseSession, error) {
	return querySessions(ctx, "s.course_id = ?", courseID)
}

func querySessions(ctx context.Context, where string, args ...any) ([]models.CourseSession, error) {
	rows, err := database.DB.QueryContext(ctx, `
		SELECT s.id, s.course_id, COALESCE(c.title, ''), s.title, s.scheduled_at, s.duration_minutes, s.meeting_url, s.status
		FROM course_sessions s
		LEFT JOIN courses c ON c.id = s.course_id
		WHERE `+where+`
		ORDER BY s.scheduled_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	list := []models.CourseSession{}
	for rows.Next() {
		var s models.CourseSession
		if err := rows.Scan(&s.ID, &s.CourseID, &s.CourseTitle, &s.Title, &s.ScheduledAt, &s.DurationMinutes, &s.MeetingURL, &s.Status); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func CreateCourseSession(ctx context.Context, session *models.CourseSession) error {
	if strings.TrimSpace(session.Title) == "" {
		return fmt.Errorf("session title is required")
	}
	if session.ScheduledAt.IsZero() {
		return fmt.Errorf("session time is required")
	}
	session.ID = uuid.New().String()
	session.ScheduledAt = session.ScheduledAt.UTC()
	if session.DurationMinutes <= 0 {
		session.DurationMinutes = 60
	}
	if session.Status == "" {
		session.Status = models.SessionScheduled
	}
	_, err := database.DB.ExecContext(ctx, `
		INSERT INTO course_sessions (id, course_id, title, scheduled_at, duration_minutes, meeting_url, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.CourseID, session.Title, session.ScheduledAt,
		session.DurationMinutes, session.MeetingURL, session.Status)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// CompleteElapsedSessions marks scheduled sessions whose end time has passed
// as completed.
func CompleteElapsedSessions(ctx context.Context, now time.Time) (int64, error) {
	sessions, err := querySessions(ctx, "s.status = ?", models.SessionScheduled)
	if err != nil {
		return 0, err
	}

	var done int64
	for _, s := range sessions {
		end := s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
		if end.After(now) {
			continue
		}
		if _, err := database.DB.ExecContext(ctx,
			"UPDATE course_sessions SET status = ? WHERE id = ? AND status = ?",
			models.SessionCompleted, s.ID, models.SessionScheduled); err != nil {
			return done, fmt.Errorf("failed to complete session %s: %w", s.ID, err)
		}
		done++
	}
	return done, nil
}

// AddReview records an enrolled student's rating of a course. A student can
// review a course once.
func AddReview(ctx context.Context, review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRating
	}
	enrolled, err := IsEnrolled(ctx, review.StudentID, review.CourseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	review.ID = uuid.New().String()
	review.Comment = strings.TrimSpace(review.Comment)
	review.CreatedAt = time.Now().UTC()
	_, err = database.DB.ExecContext(ctx, `
		INSERT INTO course_reviews (id, course_id, student_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID, review.CourseID, review.StudentID, review.Rating, review.Comment, review.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyReviewed
	}
	if err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}
	return nil
}
