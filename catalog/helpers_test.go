package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"studybuddy/backend/models"
)

type fakeSource struct {
	courses []models.Course
	err     error
	calls   int
}

func (f *fakeSource) FetchCatalog(ctx context.Context, criteria models.CatalogCriteria) ([]models.Course, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.courses, nil
}

type memoryFavorites struct {
	mu    sync.Mutex
	ids   []string
	saves int
	err   error
}

func (m *memoryFavorites) Load(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...), nil
}

func (m *memoryFavorites) Save(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.ids = append([]string(nil), ids...)
	return nil
}

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// makeCourses builds n beginner English courses with distinct prices,
// ratings, enrollment counts and creation times.
func makeCourses(n int) []models.Course {
	courses := make([]models.Course, 0, n)
	for i := 0; i < n; i++ {
		courses = append(courses, models.Course{
			ID:              fmt.Sprintf("course-%02d", i+1),
			Title:           fmt.Sprintf("Course %d", i+1),
			Description:     "A structured course",
			Subject:         "mathematics",
			Language:        "English",
			DifficultyLevel: "beginner",
			PricePerSession: 100 + i*10,
			AverageRating:   float64(i%5) + 0.5 + float64(i)/100,
			EnrollmentCount: (i * 7) % 23,
			TotalSessions:   4,
			IsActive:        true,
			CreatedAt:       baseTime.Add(time.Duration(i) * time.Hour),
		})
	}
	return courses
}

func loadedEngine(courses []models.Course, pageSize int) *Engine {
	e := NewEngine(Options{PageSize: pageSize}, nil)
	if err := e.Load(context.Background(), &fakeSource{courses: courses}, models.CatalogCriteria{}); err != nil {
		panic(err)
	}
	return e
}

func ids(courses []models.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.ID)
	}
	return out
}
