package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"studybuddy/backend/models"
)

// Any disables a single-choice scheduling filter.
const Any = "any"

// Session types
const (
	SessionOneOnOne = "1on1"
	SessionGroup    = "group"
)

const (
	DefaultPriceMin = 50
	DefaultPriceMax = 2000
)

var ErrInvalidPriceRange = errors.New("invalid price range")

// FilterState is the set of browse controls for one session. Empty sets and
// "any" values place no constraint on the listing.
type FilterState struct {
	PriceMin     int      `json:"priceMin"`
	PriceMax     int      `json:"priceMax"`
	Languages    []string `json:"languages"`
	Subjects     []string `json:"subjects"`
	Difficulty   string   `json:"difficulty"`
	Availability string   `json:"availability"`
	TimeSlot     string   `json:"timeSlot"`
	SessionType  string   `json:"sessionType"`
	GroupSize    string   `json:"groupSize"`
	Features     []string `json:"features"`
	Search       string   `json:"search"`
}

// DefaultFilterState is the state a browse session starts with and returns to
// when filters are cleared.
func DefaultFilterState() FilterState {
	return FilterState{
		PriceMin:     DefaultPriceMin,
		PriceMax:     DefaultPriceMax,
		Languages:    []string{"english"},
		Subjects:     []string{},
		Difficulty:   models.DifficultyBeginner,
		Availability: Any,
		TimeSlot:     Any,
		SessionType:  Any,
		GroupSize:    Any,
		Features:     []string{},
	}
}

// Validate checks invariants that the controls cannot express on their own.
func (f FilterState) Validate() error {
	if f.PriceMin < 0 || f.PriceMax < 0 {
		return fmt.Errorf("%w: prices must not be negative", ErrInvalidPriceRange)
	}
	if f.PriceMin > f.PriceMax {
		return fmt.Errorf("%w: min %d is above max %d", ErrInvalidPriceRange, f.PriceMin, f.PriceMax)
	}
	return nil
}

// normalized lower-cases every tag so that all tag comparisons are
// case-insensitive, and copies the slices so the result owns its memory.
func (f FilterState) normalized() FilterState {
	out := f
	out.Languages = normalizeSet(f.Languages)
	out.Subjects = normalizeSet(f.Subjects)
	out.Features = normalizeSet(f.Features)
	out.Difficulty = normalizeChoice(f.Difficulty)
	out.Availability = normalizeChoice(f.Availability)
	out.TimeSlot = normalizeChoice(f.TimeSlot)
	out.SessionType = normalizeChoice(f.SessionType)
	out.GroupSize = normalizeChoice(f.GroupSize)
	out.Search = normalize(f.Search)
	return out
}

// Clone returns a deep copy.
func (f FilterState) Clone() FilterState {
	out := f
	out.Languages = slices.Clone(f.Languages)
	out.Subjects = slices.Clone(f.Subjects)
	out.Features = slices.Clone(f.Features)
	return out
}

// Matches reports whether a course passes every active filter. Predicates are
// evaluated in a fixed order and stop at the first failure.
func (f FilterState) Matches(c *models.Course) bool {
	if f.Search != "" &&
		!strings.Contains(normalize(c.Title), f.Search) &&
		!strings.Contains(normalize(c.Description), f.Search) &&
		!strings.Contains(normalize(c.Subject), f.Search) &&
		!strings.Contains(normalize(c.Mentor.Headline), f.Search) {
		return false
	}

	if c.PricePerSession < f.PriceMin || c.PricePerSession > f.PriceMax {
		return false
	}

	if len(f.Languages) > 0 && !slices.Contains(f.Languages, normalize(c.Language)) {
		return false
	}

	if f.Difficulty != "" && normalize(c.DifficultyLevel) != f.Difficulty {
		return false
	}

	if len(f.Subjects) > 0 && !slices.Contains(f.Subjects, normalize(c.Subject)) {
		return false
	}

	if f.Availability != "" && !containsFold(c.Availability, f.Availability) {
		return false
	}

	if f.TimeSlot != "" && !containsFold(c.TimeSlots, f.TimeSlot) {
		return false
	}

	if f.SessionType != "" && normalize(c.SessionType) != f.SessionType {
		return false
	}

	// Group size only narrows group sessions.
	if f.SessionType == SessionGroup && f.GroupSize != "" && normalize(c.GroupSize) != f.GroupSize {
		return false
	}

	for _, feature := range f.Features {
		if !containsFold(c.Features, feature) {
			return false
		}
	}

	return true
}

// ApplyFilters returns the courses of source that match the state, in source
// order. The state is normalized first.
func ApplyFilters(source []models.Course, state FilterState) []models.Course {
	f := state.normalized()
	out := make([]models.Course, 0, len(source))
	for i := range source {
		if f.Matches(&source[i]) {
			out = append(out, source[i])
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeChoice maps "any" to the empty string so callers only test for "".
func normalizeChoice(s string) string {
	s = normalize(s)
	if s == Any {
		return ""
	}
	return s
}

func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = normalize(v); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if normalize(v) == want {
			return true
		}
	}
	return false
}
