package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studybuddy/backend/models"
)

func TestGetCourses(t *testing.T) {
	setupTestDB(t)

	testCases := []struct {
		name  string
		url   string
		count int
	}{
		{"All active courses", "/api/courses", 10},
		{"By subject", "/api/courses?subject=Physics", 2},
		{"By max price", "/api/courses?maxPrice=150", 3},
		{"By mentor", "/api/courses?mentorId=mentor-diego", 3},
		{"Garbage max price ignored", "/api/courses?maxPrice=cheap", 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			GetCourses(rr, httptest.NewRequest("GET", tc.url, nil))
			expectStatus(t, rr, http.StatusOK)

			var courses []models.Course
			decodeResponse(t, rr, &courses)
			if len(courses) != tc.count {
				t.Errorf("Expected %d courses, got %d", tc.count, len(courses))
			}
		})
	}
}

func TestGetCourse(t *testing.T) {
	setupTestDB(t)

	rr := serve("/api/courses/{id}", GetCourse, httptest.NewRequest("GET", "/api/courses/course-go", nil))
	expectStatus(t, rr, http.StatusOK)
	var course models.Course
	decodeResponse(t, rr, &course)
	if course.Mentor.FullName != "Diego Alvarez" {
		t.Errorf("Expected mentor name Diego Alvarez, got %q", course.Mentor.FullName)
	}

	rr = serve("/api/courses/{id}", GetCourse, httptest.NewRequest("GET", "/api/courses/missing", nil))
	expectStatus(t, rr, http.StatusNotFound)
}

func TestCreateAndUpdateCourse(t *testing.T) {
	setupTestDB(t)

	rr := httptest.NewRecorder()
	CreateCourse(rr, NewAuthenticatedRequest("POST", "/api/courses", map[string]any{"description": "no title"}, TestMentorID))
	expectStatus(t, rr, http.StatusBadRequest)

	rr = httptest.NewRecorder()
	CreateCourse(rr, NewAuthenticatedRequest("POST", "/api/courses", map[string]any{
		"title":           "Optics",
		"subject":         "physics",
		"pricePerSession": 180,
	}, TestMentorID))
	expectStatus(t, rr, http.StatusCreated)
	var created models.Course
	decodeResponse(t, rr, &created)
	if created.MentorID != TestMentorID || created.TotalSessions != 1 {
		t.Fatalf("Expected defaults for new course, got %+v", created)
	}

	path := "/api/courses/" + created.ID
	rr = serve("/api/courses/{id}", UpdateCourse,
		NewAuthenticatedRequest("PUT", path, map[string]any{"title": "Stolen"}, "mentor-diego"))
	expectStatus(t, rr, http.StatusForbidden)

	rr = serve("/api/courses/{id}", UpdateCourse,
		NewAuthenticatedRequest("PUT", path, map[string]any{"pricePerSession": 220}, TestMentorID))
	expectStatus(t, rr, http.StatusOK)
	var updated models.Course
	decodeResponse(t, rr, &updated)
	if updated.PricePerSession != 220 || updated.Title != "Optics" {
		t.Errorf("Expected price 220 with title kept, got %d %q", updated.PricePerSession, updated.Title)
	}

	// admins may edit any course
	rr = serve("/api/courses/{id}", UpdateCourse,
		NewAuthenticatedRequest("PUT", path, map[string]any{"isActive": false}, TestAdminID))
	expectStatus(t, rr, http.StatusOK)
}

func TestEnrollInCourse(t *testing.T) {
	setupTestDB(t)

	testCases := []struct {
		name   string
		course string
		status int
	}{
		{"First enrollment", "course-mechanics", http.StatusCreated},
		{"Duplicate enrollment", "course-mechanics", http.StatusConflict},
		{"Not enough coins", "course-quantum", http.StatusPaymentRequired},
		{"Unknown course", "course-missing", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve("/api/courses/{id}/enroll", EnrollInCourse,
				NewAuthenticatedRequest("POST", "/api/courses/"+tc.course+"/enroll", nil, TestStudentID))
			if rr.Code != tc.status {
				t.Errorf("Expected status %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
		})
	}

	rr := httptest.NewRecorder()
	GetEnrollments(rr, NewAuthenticatedRequest("GET", "/api/enrollments", nil, TestStudentID))
	expectStatus(t, rr, http.StatusOK)
	var list []models.Enrollment
	decodeResponse(t, rr, &list)
	if len(list) != 1 || list[0].CoinsPaid != 1200 {
		t.Errorf("Expected one enrollment paid 1200, got %+v", list)
	}
}

func TestCourseMessagesRequireParticipation(t *testing.T) {
	setupTestDB(t)
	path := "/api/courses/course-mechanics/messages"

	rr := serve("/api/courses/{id}/messages", GetCourseMessages, NewAuthenticatedRequest("GET", path, nil, TestStudentID))
	expectStatus(t, rr, http.StatusForbidden)

	rr = serve("/api/courses/{id}/enroll", EnrollInCourse,
		NewAuthenticatedRequest("POST", "/api/courses/course-mechanics/enroll", nil, TestStudentID))
	expectStatus(t, rr, http.StatusCreated)

	rr = serve("/api/courses/{id}/messages", SendCourseMessage,
		NewAuthenticatedRequest("POST", path, map[string]string{"content": "  "}, TestStudentID))
	expectStatus(t, rr, http.StatusBadRequest)

	rr = serve("/api/courses/{id}/messages", SendCourseMessage,
		NewAuthenticatedRequest("POST", path, map[string]string{"content": "When is the first class?"}, TestStudentID))
	expectStatus(t, rr, http.StatusCreated)

	// the course mentor reads without being enrolled
	rr = serve("/api/courses/{id}/messages", GetCourseMessages, NewAuthenticatedRequest("GET", path, nil, TestMentorID))
	expectStatus(t, rr, http.StatusOK)
	var messages []models.CourseMessage
	decodeResponse(t, rr, &messages)
	if len(messages) != 1 || messages[0].SenderName != "Alex Kim" {
		t.Fatalf("Expected Alex's message, got %+v", messages)
	}

	rr = serve("/api/courses/{id}/messages/read", MarkMessagesRead,
		NewAuthenticatedRequest("POST", path+"/read", nil, TestMentorID))
	expectStatus(t, rr, http.StatusOK)
	var marked map[string]int64
	decodeResponse(t, rr, &marked)
	if marked["marked"] != 1 {
		t.Errorf("Expected 1 message marked read, got %d", marked["marked"])
	}
}

func TestCreateCourseSession(t *testing.T) {
	setupTestDB(t)
	path := "/api/courses/course-mechanics/sessions"
	body := map[string]any{"title": "Kinematics", "scheduledAt": time.Now().Add(48 * time.Hour).UTC()}

	rr := serve("/api/courses/{id}/sessions", CreateCourseSession, NewAuthenticatedRequest("POST", path, body, TestStudentID))
	expectStatus(t, rr, http.StatusForbidden)

	rr = serve("/api/courses/{id}/sessions", CreateCourseSession, NewAuthenticatedRequest("POST", path, map[string]any{}, TestMentorID))
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	rr = serve("/api/courses/{id}/sessions", CreateCourseSession, NewAuthenticatedRequest("POST", path, body, TestMentorID))
	expectStatus(t, rr, http.StatusCreated)
	var session models.CourseSession
	decodeResponse(t, rr, &session)
	if session.DurationMinutes != 60 || session.Status != models.SessionScheduled {
		t.Errorf("Expected a scheduled 60 minute session, got %+v", session)
	}

	rr = serve("/api/courses/{id}/sessions", GetCourseSessions, NewAuthenticatedRequest("GET", path, nil, TestMentorID))
	expectStatus(t, rr, http.StatusOK)
	var sessions []models.CourseSession
	decodeResponse(t, rr, &sessions)
	if len(sessions) != 1 {
		t.Errorf("Expected 1 session, got %d", len(sessions))
	}
}

func TestAddReview(t *testing.T) {
	setupTestDB(t)
	path := "/api/courses/course-hindi/reviews"

	rr := serve("/api/courses/{id}/reviews", AddReview,
		NewAuthenticatedRequest("POST", path, map[string]any{"rating": 6}, TestStudentID))
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	rr = serve("/api/courses/{id}/reviews", AddReview,
		NewAuthenticatedRequest("POST", path, map[string]any{"rating": 4}, TestStudentID))
	expectStatus(t, rr, http.StatusForbidden)

	rr = serve("/api/courses/{id}/enroll", EnrollInCourse,
		NewAuthenticatedRequest("POST", "/api/courses/course-hindi/enroll", nil, TestStudentID))
	expectStatus(t, rr, http.StatusCreated)

	rr = serve("/api/courses/{id}/reviews", AddReview,
		NewAuthenticatedRequest("POST", path, map[string]any{"rating": 4, "comment": "Clear lessons"}, TestStudentID))
	expectStatus(t, rr, http.StatusCreated)

	rr = serve("/api/courses/{id}/reviews", AddReview,
		NewAuthenticatedRequest("POST", path, map[string]any{"rating": 5}, TestStudentID))
	expectStatus(t, rr, http.StatusConflict)
}
