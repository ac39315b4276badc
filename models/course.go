package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidCourse = errors.New("invalid course record")

// MentorSummary is the part of a mentor profile shown on a course card.
type MentorSummary struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Headline  string `json:"headline,omitempty"`
}

// Course is a catalog item.
type Course struct {
	ID               string        `json:"id"`
	MentorID         string        `json:"mentorId"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"shortDescription,omitempty"`
	Subject          string        `json:"subject"`
	Language         string        `json:"language"`
	DifficultyLevel  string        `json:"difficultyLevel"`
	PricePerSession  int           `json:"pricePerSession"`
	TotalSessions    int           `json:"totalSessions"`
	DurationMinutes  int           `json:"durationMinutes"`
	AverageRating    float64       `json:"averageRating"`
	TotalReviews     int           `json:"totalReviews"`
	EnrollmentCount  int           `json:"enrollmentCount"`
	CourseImageURL   string        `json:"courseImageUrl,omitempty"`
	IsActive         bool          `json:"isActive"`
	CreatedAt        time.Time     `json:"createdAt"`
	Mentor           MentorSummary `json:"mentor"`

	// Scheduling tags. Empty means the mentor did not publish them.
	SessionType  string   `json:"sessionType,omitempty"` // 1on1 or group
	GroupSize    string   `json:"groupSize,omitempty"`
	Availability []string `json:"availability,omitempty"`
	TimeSlots    []string `json:"timeSlots,omitempty"`
	Features     []string `json:"features,omitempty"`
}

// TotalCost is what a student pays to enroll.
func (c *Course) TotalCost() int {
	sessions := c.TotalSessions
	if sessions < 1 {
		sessions = 1
	}
	return c.PricePerSession * sessions
}

// Validate checks the shape of a course record coming from storage or a
// request body.
func (c *Course) Validate() error {
	switch {
	case strings.TrimSpace(c.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidCourse)
	case strings.TrimSpace(c.Title) == "":
		return fmt.Errorf("%w: course %s has no title", ErrInvalidCourse, c.ID)
	case c.PricePerSession < 0:
		return fmt.Errorf("%w: course %s has negative price", ErrInvalidCourse, c.ID)
	case c.AverageRating < 0 || c.AverageRating > 5:
		return fmt.Errorf("%w: course %s rating %.2f out of range", ErrInvalidCourse, c.ID, c.AverageRating)
	case c.TotalReviews < 0 || c.EnrollmentCount < 0 || c.TotalSessions < 0:
		return fmt.Errorf("%w: course %s has negative counters", ErrInvalidCourse, c.ID)
	}
	return nil
}

// CourseSession is one scheduled meeting of a course.
type CourseSession struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"courseId"`
	CourseTitle     string    `json:"courseTitle,omitempty"`
	Title           string    `json:"title"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	MeetingURL      string    `json:"meetingUrl,omitempty"`
	Status          string    `json:"status"`
}

// CourseMessage is a message in a course conversation.
type CourseMessage struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"courseId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName,omitempty"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Review is a student rating of a course.
type Review struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	StudentID string    `json:"studentId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
