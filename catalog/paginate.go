package catalog

import "fmt"

const DefaultPageSize = 8

// Paginate returns the cumulative prefix of list covering pages 1..page.
func Paginate[T any](list []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return list[:0]
	}
	end := page * pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[:end]
}

// HasMore reports whether a load-more control should be shown.
func HasMore(total, page, pageSize int) bool {
	return total > page*pageSize
}

// ResultsText is the result counter shown above the listing.
func ResultsText(visible, total int) string {
	return fmt.Sprintf("Showing %d of %d courses", visible, total)
}
