package services

import (
	"context"
	"errors"
	"testing"

	"studybuddy/backend/models"
)

func TestEnrollInCourse(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	enrollment, err := EnrollInCourse(ctx, "course-mechanics", "student-alex")
	if err != nil {
		t.Fatalf("EnrollInCourse failed: %v", err)
	}
	// 150 coins x 8 sessions
	if enrollment.CoinsPaid != 1200 {
		t.Errorf("Expected 1200 coins paid, got %d", enrollment.CoinsPaid)
	}
	if enrollment.Status != models.EnrollmentActive {
		t.Errorf("Expected active enrollment, got %s", enrollment.Status)
	}

	balance, _ := GetCoinBalance(ctx, "student-alex")
	if balance != 300 {
		t.Errorf("Expected balance 300, got %d", balance)
	}

	course, _ := GetCourseByID(ctx, "course-mechanics")
	if course.EnrollmentCount != 1 {
		t.Errorf("Expected enrollment count 1, got %d", course.EnrollmentCount)
	}

	txs, _ := GetRecentTransactions(ctx, "student-alex", 0)
	if len(txs) != 1 || txs[0].Amount != -1200 || txs[0].Type != models.TransactionCourseEnrollment || txs[0].CourseID != "course-mechanics" {
		t.Errorf("Expected one enrollment debit of -1200, got %+v", txs)
	}

	enrollments, _ := GetUserEnrollments(ctx, "student-alex")
	if len(enrollments) != 1 || enrollments[0].CourseTitle != "Classical Mechanics Made Simple" {
		t.Errorf("Expected enrollment with course title, got %+v", enrollments)
	}
}

func TestEnrollInCourseFailures(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	if _, err := EnrollInCourse(ctx, "course-hindi", "student-alex"); err != nil {
		t.Fatalf("First enrollment failed: %v", err)
	}

	testCases := []struct {
		name     string
		course   string
		student  string
		expected error
	}{
		{"Duplicate", "course-hindi", "student-alex", ErrAlreadyEnrolled},
		{"Insufficient coins", "course-quantum", "student-alex", ErrInsufficientCoins},
		{"Unknown course", "course-missing", "student-alex", ErrNotFound},
		{"Unknown student", "course-python", "nobody", ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before, _ := GetCoinBalance(ctx, "student-alex")
			if _, err := EnrollInCourse(ctx, tc.course, tc.student); !errors.Is(err, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, err)
			}
			after, _ := GetCoinBalance(ctx, "student-alex")
			if before != after {
				t.Errorf("Expected balance unchanged, went from %d to %d", before, after)
			}
		})
	}

	if n := countRows(t, "SELECT COUNT(*) FROM course_enrollments"); n != 1 {
		t.Errorf("Expected 1 enrollment row, got %d", n)
	}
	if n := countRows(t, "SELECT COUNT(*) FROM transactions"); n != 1 {
		t.Errorf("Expected 1 ledger row, got %d", n)
	}
}

func TestEnrollInInactiveCourse(t *testing.T) {
	setupTestDB(t)
	mustExec(t, "UPDATE courses SET is_active = 0 WHERE id = ?", "course-python")

	if _, err := EnrollInCourse(context.Background(), "course-python", "student-alex"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for inactive course, got %v", err)
	}
}
