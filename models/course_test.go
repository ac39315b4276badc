package models

import (
	"errors"
	"testing"
)

func TestCourseValidate(t *testing.T) {
	valid := Course{ID: "c1", Title: "Algebra", PricePerSession: 100, AverageRating: 4.5}

	testCases := []struct {
		name    string
		mutate  func(c *Course)
		wantErr bool
	}{
		{name: "Valid course", mutate: func(c *Course) {}, wantErr: false},
		{name: "Missing id", mutate: func(c *Course) { c.ID = " " }, wantErr: true},
		{name: "Missing title", mutate: func(c *Course) { c.Title = "" }, wantErr: true},
		{name: "Negative price", mutate: func(c *Course) { c.PricePerSession = -1 }, wantErr: true},
		{name: "Rating above five", mutate: func(c *Course) { c.AverageRating = 5.1 }, wantErr: true},
		{name: "Negative reviews", mutate: func(c *Course) { c.TotalReviews = -3 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidCourse) {
				t.Errorf("Expected ErrInvalidCourse, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestCourseTotalCost(t *testing.T) {
	c := Course{PricePerSession: 120, TotalSessions: 5}
	if got := c.TotalCost(); got != 600 {
		t.Errorf("Expected 600, got %d", got)
	}

	c.TotalSessions = 0
	if got := c.TotalCost(); got != 120 {
		t.Errorf("Expected single session cost 120, got %d", got)
	}
}
