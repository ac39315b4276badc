package services

import (
	"context"
	"testing"
	"time"

	"studybuddy/backend/models"
)

type countingSweeper struct {
	calls int
}

func (c *countingSweeper) Sweep(now time.Time) int {
	c.calls++
	return 0
}

func TestRunScheduledTasks(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s := &models.CourseSession{CourseID: "course-go", Title: "Done", ScheduledAt: now.Add(-2 * time.Hour)}
	if err := CreateCourseSession(ctx, s); err != nil {
		t.Fatalf("CreateCourseSession failed: %v", err)
	}

	sweeper := &countingSweeper{}
	runScheduledTasks(ctx, now, []Sweeper{sweeper, sweeper})

	if sweeper.calls != 2 {
		t.Errorf("Expected 2 sweeps, got %d", sweeper.calls)
	}
	sessions, _ := GetCourseSessions(ctx, "course-go")
	if sessions[0].Status != models.SessionCompleted {
		t.Errorf("Expected elapsed session completed, got %s", sessions[0].Status)
	}
}
