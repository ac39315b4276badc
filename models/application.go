package models

import "time"

// MentorApplication is a submitted onboarding wizard.
type MentorApplication struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId,omitempty"`
	FullName    string              `json:"fullName"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	DateOfBirth string              `json:"dateOfBirth"`
	City        string              `json:"city"`
	Fields      map[string][]string `json:"fields"`
	Documents   map[string]string   `json:"documents"` // field name to stored object name
	Signature   string              `json:"signature"`
	Status      string              `json:"status"`
	SubmittedAt time.Time           `json:"submittedAt"`
}
