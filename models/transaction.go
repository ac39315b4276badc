package models

import "time"

// Transaction is a row in the coin ledger. Amount is negative for debits.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      int       `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CourseID    string    `json:"courseId,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Enrollment links a student to a course they paid for.
type Enrollment struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	CourseID    string    `json:"courseId"`
	CoinsPaid   int       `json:"coinsPaid"`
	Status      string    `json:"status"`
	EnrolledAt  time.Time `json:"enrolledAt"`
	CourseTitle string    `json:"courseTitle,omitempty"`
}
