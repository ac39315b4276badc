package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"studybuddy/backend/database"
	"studybuddy/backend/models"
)

// EnrollInCourse charges the student price × sessions coins and enrolls
// them. Enrollment row, ledger row, balance debit and the course counter
// are written in one transaction.
func EnrollInCourse(ctx context.Context, courseID, studentID string) (enrollment *models.Enrollment, err error) {
	tx, err := database.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	course := models.Course{ID: courseID}
	err = tx.QueryRowContext(ctx, `
		SELECT title, price_per_session, total_sessions FROM courses
		WHERE id = ? AND is_active = 1`, courseID).
		Scan(&course.Title, &course.PricePerSession, &course.TotalSessions)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	var exists bool
	if err = tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM course_enrollments WHERE student_id = ? AND course_id = ?)",
		studentID, courseID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if exists {
		return nil, ErrAlreadyEnrolled
	}

	var balance int
	err = tx.QueryRowContext(ctx, "SELECT coin_balance FROM profiles WHERE id = ?", studentID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}

	cost := course.TotalCost()
	if balance < cost {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientCoins, cost, balance)
	}

	now := time.Now().UTC()
	enrollment = &models.Enrollment{
		ID:          uuid.New().String(),
		StudentID:   studentID,
		CourseID:    courseID,
		CoinsPaid:   cost,
		Status:      models.EnrollmentActive,
		EnrolledAt:  now,
		CourseTitle: course.Title,
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO course_enrollments (id, student_id, course_id, coins_paid, status, enrolled_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		enrollment.ID, studentID, courseID, cost, enrollment.Status, now); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to insert enrollment: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE profiles SET coin_balance = coin_balance - ?, updated_at = ? WHERE id = ?",
		cost, now, studentID); err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	if err = insertTransaction(ctx, tx, &models.Transaction{
		UserID:      studentID,
		Amount:      -cost,
		Type:        models.TransactionCourseEnrollment,
		Description: "Enrolled in " + course.Title,
		CourseID:    courseID,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE courses SET enrollment_count = enrollment_count + 1 WHERE id = ?", courseID); err != nil {
		return nil, fmt.Errorf("failed to update enrollment count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit enrollment: %w", err)
	}

	log.Printf("Student %s enrolled in %s for %d coins", studentID, courseID, cost)
	return enrollment, nil
}

func GetUserEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	rows, err := database.DB.QueryContext(ctx, `
		SELECT e.id, e.student_id, e.course_id, e.coins_paid, e.status, e.enrolled_at, COALESCE(c.title, '')
		FROM course_enrollments e
		LEFT JOIN courses c ON c.id = e.course_id
		WHERE e.student_id = ?
		ORDER BY e.enrolled_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	list := []models.Enrollment{}
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.CoinsPaid, &e.Status, &e.EnrolledAt, &e.CourseTitle); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	var exists bool
	err := database.DB.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM course_enrollments WHERE student_id = ? AND course_id = ? AND status != ?)",
		studentID, courseID, models.EnrollmentCancelled).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}
