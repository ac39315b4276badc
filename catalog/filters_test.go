package catalog

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"studybuddy/backend/models"
)

func sampleCatalog() []models.Course {
	return []models.Course{
		{ID: "py", Title: "Python for Data", Description: "Pandas and numpy", Subject: "Programming", Language: "English", DifficultyLevel: "beginner", PricePerSession: 200, Mentor: models.MentorSummary{Headline: "Data scientist"}},
		{ID: "hin", Title: "Hindi Basics", Description: "Script and grammar", Subject: "Languages", Language: "Hindi", DifficultyLevel: "beginner", PricePerSession: 80},
		{ID: "calc", Title: "Calculus II", Description: "Integration techniques", Subject: "Mathematics", Language: "english", DifficultyLevel: "Advanced", PricePerSession: 1500},
		{ID: "cheap", Title: "Chess Openings", Description: "Ruy Lopez", Subject: "Games", Language: "English", DifficultyLevel: "beginner", PricePerSession: 20},
		{ID: "grp", Title: "Group Physics", Description: "Mechanics", Subject: "Physics", Language: "English", DifficultyLevel: "beginner", PricePerSession: 300,
			SessionType: "group", GroupSize: "6-10", Availability: []string{"today", "weekend"}, TimeSlots: []string{"Evening"}, Features: []string{"free-trial", "certificate"}},
	}
}

func TestApplyFiltersDefaults(t *testing.T) {
	got := ids(ApplyFilters(sampleCatalog(), DefaultFilterState()))
	want := []string{"py", "grp"}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestApplyFiltersPredicates(t *testing.T) {
	open := DefaultFilterState()
	open.Difficulty = Any
	open.Languages = nil
	open.PriceMin, open.PriceMax = 0, 5000

	testCases := []struct {
		name   string
		mutate func(f *FilterState)
		want   []string
	}{
		{name: "No constraints", mutate: func(f *FilterState) {}, want: []string{"py", "hin", "calc", "cheap", "grp"}},
		{name: "Search matches title case-insensitively", mutate: func(f *FilterState) { f.Search = "  CALCULUS " }, want: []string{"calc"}},
		{name: "Search matches description", mutate: func(f *FilterState) { f.Search = "ruy" }, want: []string{"cheap"}},
		{name: "Search matches subject", mutate: func(f *FilterState) { f.Search = "physics" }, want: []string{"grp"}},
		{name: "Search matches mentor headline", mutate: func(f *FilterState) { f.Search = "scientist" }, want: []string{"py"}},
		{name: "Price bounds are inclusive", mutate: func(f *FilterState) { f.PriceMin, f.PriceMax = 80, 300 }, want: []string{"py", "hin", "grp"}},
		{name: "Language is case-insensitive", mutate: func(f *FilterState) { f.Languages = []string{"ENGLISH"} }, want: []string{"py", "calc", "cheap", "grp"}},
		{name: "Difficulty is case-insensitive", mutate: func(f *FilterState) { f.Difficulty = "advanced" }, want: []string{"calc"}},
		{name: "Subject set", mutate: func(f *FilterState) { f.Subjects = []string{"languages", "GAMES"} }, want: []string{"hin", "cheap"}},
		{name: "Availability", mutate: func(f *FilterState) { f.Availability = "weekend" }, want: []string{"grp"}},
		{name: "Time slot", mutate: func(f *FilterState) { f.TimeSlot = "evening" }, want: []string{"grp"}},
		{name: "Session type", mutate: func(f *FilterState) { f.SessionType = SessionGroup }, want: []string{"grp"}},
		{name: "Group size rejects mismatch", mutate: func(f *FilterState) { f.SessionType = SessionGroup; f.GroupSize = "2-5" }, want: []string{}},
		{name: "Group size ignored for one-on-one", mutate: func(f *FilterState) { f.GroupSize = "2-5" }, want: []string{"py", "hin", "calc", "cheap", "grp"}},
		{name: "Features require all", mutate: func(f *FilterState) { f.Features = []string{"free-trial", "certificate"} }, want: []string{"grp"}},
		{name: "Missing feature", mutate: func(f *FilterState) { f.Features = []string{"recorded"} }, want: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := open.Clone()
			tc.mutate(&f)
			got := ids(ApplyFilters(sampleCatalog(), f))
			if !slices.Equal(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestApplyFiltersIdempotent(t *testing.T) {
	source := makeCourses(30)
	f := DefaultFilterState()
	f.PriceMin, f.PriceMax = 150, 320
	f.Search = "course 2"

	first := ApplyFilters(source, f)
	second := ApplyFilters(source, f)
	if !slices.Equal(ids(first), ids(second)) {
		t.Errorf("Expected identical results, got %v and %v", ids(first), ids(second))
	}
}

func TestApplyFiltersSearchAndPriceProperties(t *testing.T) {
	source := append(makeCourses(40), sampleCatalog()...)
	queries := []string{"course 1", "a", "python", "zzz", "MECH"}
	ranges := [][2]int{{0, 100}, {150, 250}, {300, 300}, {1000, 2000}}

	for _, q := range queries {
		for _, r := range ranges {
			f := FilterState{PriceMin: r[0], PriceMax: r[1], Search: q}
			needle := strings.ToLower(strings.TrimSpace(q))
			for _, c := range ApplyFilters(source, f) {
				if c.PricePerSession < r[0] || c.PricePerSession > r[1] {
					t.Errorf("Course %s price %d outside [%d,%d]", c.ID, c.PricePerSession, r[0], r[1])
				}
				fields := strings.ToLower(c.Title + "\x00" + c.Description + "\x00" + c.Subject + "\x00" + c.Mentor.Headline)
				if !strings.Contains(fields, needle) {
					t.Errorf("Course %s does not contain %q", c.ID, q)
				}
			}
		}
	}
}

func TestFilterStateValidate(t *testing.T) {
	f := DefaultFilterState()
	if err := f.Validate(); err != nil {
		t.Errorf("Expected defaults to be valid, got %v", err)
	}

	f.PriceMin, f.PriceMax = 500, 100
	if err := f.Validate(); !errors.Is(err, ErrInvalidPriceRange) {
		t.Errorf("Expected ErrInvalidPriceRange, got %v", err)
	}

	f.PriceMin, f.PriceMax = -1, 100
	if err := f.Validate(); !errors.Is(err, ErrInvalidPriceRange) {
		t.Errorf("Expected ErrInvalidPriceRange for negative min, got %v", err)
	}
}
