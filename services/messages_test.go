package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"studybuddy/backend/models"
)

func TestCourseMessages(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	if _, err := SendCourseMessage(ctx, "course-python", "student-alex", "  When is the next class? "); err != nil {
		t.Fatalf("SendCourseMessage failed: %v", err)
	}
	if _, err := SendCourseMessage(ctx, "course-python", "mentor-diego", "Thursday at 6pm"); err != nil {
		t.Fatalf("SendCourseMessage failed: %v", err)
	}
	if _, err := SendCourseMessage(ctx, "course-python", "student-alex", "   "); err == nil {
		t.Errorf("Expected empty message to be rejected")
	}

	messages, err := GetCourseMessages(ctx, "course-python")
	if err != nil {
		t.Fatalf("GetCourseMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "When is the next class?" || messages[0].SenderName != "Alex Kim" {
		t.Errorf("Expected trimmed first message from Alex Kim, got %+v", messages[0])
	}

	n, err := MarkMessagesRead(ctx, "course-python", "mentor-diego")
	if err != nil {
		t.Fatalf("MarkMessagesRead failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 message marked read, got %d", n)
	}

	messages, _ = GetCourseMessages(ctx, "course-python")
	if !messages[0].IsRead || messages[1].IsRead {
		t.Errorf("Expected only the student's message read, got %v/%v", messages[0].IsRead, messages[1].IsRead)
	}
}

func TestCourseSessions(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	later := &models.CourseSession{CourseID: "course-go", Title: "Routing", ScheduledAt: now.Add(48 * time.Hour)}
	earlier := &models.CourseSession{CourseID: "course-go", Title: "Intro", ScheduledAt: now.Add(-3 * time.Hour), DurationMinutes: 90}
	for _, s := range []*models.CourseSession{later, earlier} {
		if err := CreateCourseSession(ctx, s); err != nil {
			t.Fatalf("CreateCourseSession failed: %v", err)
		}
	}
	if err := CreateCourseSession(ctx, &models.CourseSession{CourseID: "course-go"}); err == nil {
		t.Errorf("Expected session without title to fail")
	}

	sessions, err := GetCourseSessions(ctx, "course-go")
	if err != nil {
		t.Fatalf("GetCourseSessions failed: %v", err)
	}
	if len(sessions) != 2 || sessions[0].Title != "Intro" {
		t.Fatalf("Expected sessions earliest first, got %+v", sessions)
	}
	if sessions[1].DurationMinutes != 60 || sessions[1].Status != models.SessionScheduled {
		t.Errorf("Expected defaults of 60 minutes and scheduled, got %d/%s", sessions[1].DurationMinutes, sessions[1].Status)
	}
	if sessions[0].CourseTitle != "Backend Services in Go" {
		t.Errorf("Expected course title to be joined, got %q", sessions[0].CourseTitle)
	}

	done, err := CompleteElapsedSessions(ctx, now)
	if err != nil {
		t.Fatalf("CompleteElapsedSessions failed: %v", err)
	}
	if done != 1 {
		t.Errorf("Expected 1 session completed, got %d", done)
	}
	sessions, _ = GetCourseSessions(ctx, "course-go")
	if sessions[0].Status != models.SessionCompleted || sessions[1].Status != models.SessionScheduled {
		t.Errorf("Expected only the elapsed session completed, got %s/%s", sessions[0].Status, sessions[1].Status)
	}
}

func TestAddReview(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	review := &models.Review{CourseID: "course-hindi", StudentID: "student-alex", Rating: 4, Comment: "Clear lessons"}
	if err := AddReview(ctx, review); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("Expected ErrNotEnrolled before enrolling, got %v", err)
	}

	if _, err := EnrollInCourse(ctx, "course-hindi", "student-alex"); err != nil {
		t.Fatalf("EnrollInCourse failed: %v", err)
	}
	if err := AddReview(ctx, &models.Review{CourseID: "course-hindi", StudentID: "student-alex", Rating: 6}); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("Expected ErrInvalidRating, got %v", err)
	}
	if err := AddReview(ctx, review); err != nil {
		t.Fatalf("AddReview failed: %v", err)
	}
	if err := AddReview(ctx, review); !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("Expected ErrAlreadyReviewed, got %v", err)
	}

	course, _ := GetCourseByID(ctx, "course-hindi")
	if course.AverageRating != 4 || course.TotalReviews != 1 {
		t.Errorf("Expected rating 4 from 1 review, got %.1f from %d", course.AverageRating, course.TotalReviews)
	}
}
