package catalog

import (
	"errors"
	"fmt"
	"sort"

	"studybuddy/backend/models"
)

type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortRating    SortKey = "rating"
	SortPriceLow  SortKey = "priceLow"
	SortPriceHigh SortKey = "priceHigh"
	SortPopular   SortKey = "popular"
	SortNewest    SortKey = "newest"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// ParseSortKey maps a control value to a sort key. The empty string selects
// relevance.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(s); key {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortRating, SortPriceLow, SortPriceHigh, SortPopular, SortNewest:
		return key, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
}

// SortCourses reorders list in place. The sort is stable, so ties keep their
// current relative order. Relevance leaves the list untouched.
func SortCourses(list []models.Course, key SortKey) error {
	var less func(a, b *models.Course) bool
	switch key {
	case SortRelevance, "":
		return nil
	case SortRating:
		less = func(a, b *models.Course) bool { return a.AverageRating > b.AverageRating }
	case SortPriceLow:
		less = func(a, b *models.Course) bool { return a.PricePerSession < b.PricePerSession }
	case SortPriceHigh:
		less = func(a, b *models.Course) bool { return a.PricePerSession > b.PricePerSession }
	case SortPopular:
		less = func(a, b *models.Course) bool { return a.EnrollmentCount > b.EnrollmentCount }
	case SortNewest:
		less = func(a, b *models.Course) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}

	sort.SliceStable(list, func(i, j int) bool { return less(&list[i], &list[j]) })
	return nil
}
