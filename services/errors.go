package services

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientCoins  = errors.New("insufficient coins")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrAlreadyReviewed    = errors.New("course already reviewed")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotCourseMentor    = errors.New("user is not the mentor of this course")
	ErrApplicationClosed  = errors.New("application already reviewed")
	ErrDuplicatePayment   = errors.New("payment reference already used")
)

// isUniqueViolation reports whether err is a sqlite UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
