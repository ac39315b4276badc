package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"studybuddy/backend/database"
	"studybuddy/backend/models"
)

const recentSessionCount = 3

// BuildMentorDashboard aggregates a mentor's courses, earnings, conversations
// and schedule as of now.
func BuildMentorDashboard(ctx context.Context, mentorID string, now time.Time) (*models.MentorDashboard, error) {
	profile, err := GetUserProfile(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	courses, err := GetMentorCourses(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	dash := &models.MentorDashboard{
		Profile:          profile,
		Courses:          courses,
		Conversations:    []models.Conversation{},
		UpcomingSessions: []models.CourseSession{},
		PastSessions:     []models.CourseSession{},
		RecentSessions:   []models.CourseSession{},
	}
	dash.Stats.TotalCourses = len(courses)

	err = database.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT e.student_id), COALESCE(SUM(e.coins_paid), 0)
		FROM course_enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE c.mentor_id = ?`, mentorID).
		Scan(&dash.Stats.TotalStudents, &dash.Stats.TotalEarnings)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate enrollments: %w", err)
	}

	var ratingSum float64
	var rated int
	for _, c := range courses {
		if c.TotalReviews > 0 {
			ratingSum += c.AverageRating
			rated++
		}
	}
	if rated > 0 {
		dash.Stats.AverageRating = ratingSum / float64(rated)
	}

	if len(courses) == 0 {
		return dash, nil
	}

	ids := make([]any, len(courses))
	placeholders := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
		placeholders[i] = "?"
	}
	in := "(" + strings.Join(placeholders, ", ") + ")"

	for _, c := range courses {
		messages, err := GetCourseMessages(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if len(messages) == 0 {
			continue
		}
		conv := models.Conversation{CourseID: c.ID, CourseTitle: c.Title, Messages: messages}
		for _, m := range messages {
			if !m.IsRead && m.SenderID != mentorID {
				conv.UnreadCount++
			}
		}
		last := messages[len(messages)-1]
		conv.LastMessage = &last
		dash.Stats.UnreadTotal += conv.UnreadCount
		dash.Conversations = append(dash.Conversations, conv)
	}
	sort.SliceStable(dash.Conversations, func(i, j int) bool {
		return dash.Conversations[i].LastMessage.CreatedAt.After(dash.Conversations[j].LastMessage.CreatedAt)
	})

	sessions, err := querySessions(ctx, "s.course_id IN "+in, ids...)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		end := s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
		if s.Status == models.SessionScheduled && end.After(now) {
			dash.UpcomingSessions = append(dash.UpcomingSessions, s)
		} else {
			dash.PastSessions = append(dash.PastSessions, s)
		}
	}
	// past sessions newest first
	sort.SliceStable(dash.PastSessions, func(i, j int) bool {
		return dash.PastSessions[i].ScheduledAt.After(dash.PastSessions[j].ScheduledAt)
	})
	n := len(dash.PastSessions)
	if n > recentSessionCount {
		n = recentSessionCount
	}
	dash.RecentSessions = append(dash.RecentSessions, dash.PastSessions[:n]...)

	return dash, nil
}
