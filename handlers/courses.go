package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"studybuddy/backend/middleware"
	"studybuddy/backend/models"
	"studybuddy/backend/services"
)

// criteriaFromQuery reads the server-side catalog narrowing from the URL.
func criteriaFromQuery(r *http.Request) models.CatalogCriteria {
	q := r.URL.Query()
	c := models.CatalogCriteria{
		Subject:    strings.TrimSpace(q.Get("subject")),
		Difficulty: strings.TrimSpace(q.Get("difficulty")),
		Language:   strings.TrimSpace(q.Get("language")),
		MentorID:   strings.TrimSpace(q.Get("mentorId")),
	}
	if raw := q.Get("maxPrice"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			c.MaxPrice = n
		}
	}
	return c
}

// GetCourses handles GET /api/courses
func GetCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := services.GetAllCourses(r.Context(), criteriaFromQuery(r))
	if err != nil {
		writeServiceError(w, "to load courses", err)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /api/courses/{id}
func GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := services.GetCourseByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, "to load course", err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// GetMyCourses handles GET /api/mentor/courses
func GetMyCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := services.GetMentorCourses(r.Context(), middleware.GetUserIDFromContext(r))
	if err != nil {
		writeServiceError(w, "to load mentor courses", err)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

// CreateCourse handles POST /api/courses
func CreateCourse(w http.ResponseWriter, r *http.Request) {
	var course models.Course
	if !decodeBody(w, r, &course, false) {
		return
	}

	created, err := services.CreateCourse(r.Context(), middleware.GetUserIDFromContext(r), course)
	if err != nil {
		writeServiceError(w, "to create course", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// loadManagedCourse fetches the course of the route and checks that the
// caller may manage it.
func loadManagedCourse(w http.ResponseWriter, r *http.Request) (*models.Course, bool) {
	course, err := services.GetCourseByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, "to load course", err)
		return nil, false
	}
	ok, err := services.CanManageCourse(r.Context(), middleware.GetUserIDFromContext(r), course)
	if err != nil {
		writeServiceError(w, "to check course permissions", err)
		return nil, false
	}
	if !ok {
		http.Error(w, "Forbidden: not your course", http.StatusForbidden)
		return nil, false
	}
	return course, true
}

// UpdateCourse handles PUT /api/courses/{id}. The body is applied over the
// stored course, so omitted fields keep their value.
func UpdateCourse(w http.ResponseWriter, r *http.Request) {
	existing, ok := loadManagedCourse(w, r)
	if !ok {
		return
	}

	course := *existing
	if !decodeBody(w, r, &course, false) {
		return
	}
	course.ID = existing.ID
	course.MentorID = existing.MentorID

	updated, err := services.UpdateCourse(r.Context(), existing.MentorID, course)
	if err != nil {
		writeServiceError(w, "to update course", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// EnrollInCourse handles POST /api/courses/{id}/enroll
func EnrollInCourse(w http.ResponseWriter, r *http.Request) {
	enrollment, err := services.EnrollInCourse(r.Context(), mux.Vars(r)["id"], middleware.GetUserIDFromContext(r))
	if err != nil {
		writeServiceError(w, "to enroll", err)
		return
	}
	writeJSON(w, http.StatusCreated, enrollment)
}

// GetEnrollments handles GET /api/enrollments
func GetEnrollments(w http.ResponseWriter, r *http.Request) {
	list, err := services.GetUserEnrollments(r.Context(), middleware.GetUserIDFromContext(r))
	if err != nil {
		writeServiceError(w, "to load enrollments", err)
		return
	}
	if list == nil {
		list = []models.Enrollment{}
	}
	writeJSON(w, http.StatusOK, list)
}

// requireParticipant lets through the course's students and whoever manages
// the course.
func requireParticipant(w http.ResponseWriter, r *http.Request) (*models.Course, bool) {
	ctx := r.Context()
	userID := middleware.GetUserIDFromContext(r)
	course, err := services.GetCourseByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, "to load course", err)
		return nil, false
	}

	allowed, err := isParticipant(ctx, userID, course)
	if err != nil {
		writeServiceError(w, "to check enrollment", err)
		return nil, false
	}
	if !allowed {
		http.Error(w, "Forbidden: not enrolled in this course", http.StatusForbidden)
		return nil, false
	}
	return course, true
}

func isParticipant(ctx context.Context, userID string, course *models.Course) (bool, error) {
	manager, err := services.CanManageCourse(ctx, userID, course)
	if err != nil || manager {
		return manager, err
	}
	return services.IsEnrolled(ctx, userID, course.ID)
}

// GetCourseMessages handles GET /api/courses/{id}/messages
func GetCourseMessages(w http.ResponseWriter, r *http.Request) {
	course, ok := requireParticipant(w, r)
	if !ok {
		return
	}
	messages, err := services.GetCourseMessages(r.Context(), course.ID)
	if err != nil {
		writeServiceError(w, "to load messages", err)
		return
	}
	if messages == nil {
		messages = []models.CourseMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

type messageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// SendCourseMessage handles POST /api/courses/{id}/messages
func SendCourseMessage(w http.ResponseWriter, r *http.Request) {
	course, ok := requireParticipant(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "Message content is required", http.StatusBadRequest)
		return
	}

	msg, err := services.SendCourseMessage(r.Context(), course.ID, middleware.GetUserIDFromContext(r), req.Content)
	if err != nil {
		writeServiceError(w, "to send message", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// MarkMessagesRead handles POST /api/courses/{id}/messages/read
func MarkMessagesRead(w http.ResponseWriter, r *http.Request) {
	course, ok := requireParticipant(w, r)
	if !ok {
		return
	}
	n, err := services.MarkMessagesRead(r.Context(), course.ID, middleware.GetUserIDFromContext(r))
	if err != nil {
		writeServiceError(w, "to mark messages read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": n})
}

// GetCourseSessions handles GET /api/courses/{id}/sessions
func GetCourseSessions(w http.ResponseWriter, r *http.Request) {
	course, ok := requireParticipant(w, r)
	if !ok {
		return
	}
	list, err := services.GetCourseSessions(r.Context(), course.ID)
	if err != nil {
		writeServiceError(w, "to load sessions", err)
		return
	}
	if list == nil {
		list = []models.CourseSession{}
	}
	writeJSON(w, http.StatusOK, list)
}

type sessionRequest struct {
	Title           string    `json:"title" validate:"required,max=200"`
	ScheduledAt     time.Time `json:"scheduledAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"omitempty,gt=0,max=480"`
	MeetingURL      string    `json:"meetingUrl" validate:"omitempty,url"`
}

// CreateCourseSession handles POST /api/courses/{id}/sessions
func CreateCourseSession(w http.ResponseWriter, r *http.Request) {
	course, ok := loadManagedCourse(w, r)
	if !ok {
		return
	}
	var req sessionRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	session := &models.CourseSession{
		CourseID:        course.ID,
		Title:           strings.TrimSpace(req.Title),
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		MeetingURL:      req.MeetingURL,
	}
	if err := services.CreateCourseSession(r.Context(), session); err != nil {
		writeServiceError(w, "to create session", err)
		return
	}
	log.Printf("Session %s scheduled for course %s", session.ID, course.ID)
	writeJSON(w, http.StatusCreated, session)
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// AddReview handles POST /api/courses/{id}/reviews
func AddReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	review := &models.Review{
		CourseID:  mux.Vars(r)["id"],
		StudentID: middleware.GetUserIDFromContext(r),
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := services.AddReview(r.Context(), review); err != nil {
		writeServiceError(w, "to add review", err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}
