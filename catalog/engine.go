// Package catalog filters, sorts and pages the course listing of a single
// browse session.
package catalog

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"studybuddy/backend/models"
)

// Source is the remote listing the engine is loaded from.
type Source interface {
	FetchCatalog(ctx context.Context, criteria models.CatalogCriteria) ([]models.Course, error)
}

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

type Options struct {
	PageSize       int
	SearchDebounce time.Duration
}

// Engine holds one browse session: the listing fetched once, the filter and
// sort controls, and the page cursor. All methods are safe for concurrent use.
type Engine struct {
	mu        sync.Mutex
	source    []models.Course
	positions map[string]int
	filtered  []models.Course
	filters   FilterState
	sortKey   SortKey
	page      int
	pageSize  int
	status    Status
	loadErr   error

	favorites *Favorites
	debounce  *Debouncer
	pending   string
}

func NewEngine(opts Options, favorites *Favorites) *Engine {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if favorites == nil {
		favorites = &Favorites{}
	}
	return &Engine{
		filters:   DefaultFilterState(),
		sortKey:   SortRelevance,
		page:      1,
		pageSize:  opts.PageSize,
		status:    StatusLoading,
		favorites: favorites,
		debounce:  NewDebouncer(opts.SearchDebounce),
	}
}

// Load fetches the listing once. On failure the engine holds no listing and
// reports the error state; it never keeps data from an earlier load.
func (e *Engine) Load(ctx context.Context, src Source, criteria models.CatalogCriteria) error {
	courses, err := src.FetchCatalog(ctx, criteria)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.source = nil
		e.positions = nil
		e.filtered = nil
		e.page = 1
		e.status = StatusError
		e.loadErr = err
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	e.source = make([]models.Course, 0, len(courses))
	e.positions = make(map[string]int, len(courses))
	for _, c := range courses {
		if err := c.Validate(); err != nil {
			log.Printf("Warning: dropping catalog record: %v", err)
			continue
		}
		if _, dup := e.positions[c.ID]; dup {
			log.Printf("Warning: dropping duplicate catalog record %s", c.ID)
			continue
		}
		e.positions[c.ID] = len(e.source)
		e.source = append(e.source, c)
	}
	e.loadErr = nil
	e.status = StatusLoading
	e.recompute()
	return nil
}

// recompute rebuilds the filtered view from the source, resets the page
// cursor and reapplies the selected sort. Callers hold e.mu.
func (e *Engine) recompute() {
	if e.status == StatusError {
		return
	}
	e.filtered = ApplyFilters(e.source, e.filters)
	e.page = 1
	e.applySort()
	if len(e.filtered) == 0 {
		e.status = StatusEmpty
	} else {
		e.status = StatusReady
	}
}

func (e *Engine) applySort() {
	if e.sortKey == SortRelevance {
		sort.SliceStable(e.filtered, func(i, j int) bool {
			return e.positions[e.filtered[i].ID] < e.positions[e.filtered[j].ID]
		})
		return
	}
	// Keys are validated before they are stored.
	_ = SortCourses(e.filtered, e.sortKey)
}

// ApplyFilters recomputes the view with the current controls.
func (e *Engine) ApplyFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recompute()
}

// SetFilters replaces the whole filter state.
func (e *Engine) SetFilters(f FilterState) error {
	if err := f.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = f.Clone()
	e.filters.Search = normalize(f.Search)
	e.recompute()
	return nil
}

// SetPriceRange updates the price bounds. The range is rejected, and the state
// left unchanged, when lo > hi or either bound is negative.
func (e *Engine) SetPriceRange(lo, hi int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.filters
	next.PriceMin, next.PriceMax = lo, hi
	if err := next.Validate(); err != nil {
		return err
	}
	e.filters = next
	e.recompute()
	return nil
}

func (e *Engine) SetLanguages(languages []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters.Languages = normalizeSet(languages)
	e.recompute()
}

// SelectAllLanguages checks or unchecks every language present in the
// listing. Unchecking leaves no language constraint.
func (e *Engine) SelectAllLanguages(selected bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !selected {
		e.filters.Languages = []string{}
		e.recompute()
		return
	}
	all := slices.Clone(e.filters.Languages)
	for _, c := range e.source {
		all = append(all, c.Language)
	}
	e.filters.Languages = normalizeSet(all)
	e.recompute()
}

// ToggleSubject adds or removes one subject from the subject set.
func (e *Engine) ToggleSubject(subject string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	subject = normalize(subject)
	if subject == "" {
		return
	}
	subjects := normalizeSet(e.filters.Subjects)
	if i := slices.Index(subjects, subject); i >= 0 {
		subjects = slices.Delete(subjects, i, i+1)
	} else {
		subjects = append(subjects, subject)
	}
	e.filters.Subjects = subjects
	e.recompute()
}

// Reset restores the default filters and clears the search.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debounce.Stop()
	e.pending = ""
	e.filters = DefaultFilterState()
	e.recompute()
}

// Search sets the free-text query and recomputes immediately.
func (e *Engine) Search(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters.Search = normalize(query)
	e.recompute()
}

// SearchDebounced records the query and recomputes once input has been quiet
// for the debounce window. Only the last query of a burst is applied.
func (e *Engine) SearchDebounced(query string) {
	e.mu.Lock()
	e.pending = query
	e.mu.Unlock()

	e.debounce.Trigger(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.filters.Search = normalize(e.pending)
		e.recompute()
	})
}

// Sort selects a sort key and reorders the current view without touching the
// page cursor.
func (e *Engine) Sort(key SortKey) error {
	key, err := ParseSortKey(string(key))
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sortKey = key
	e.applySort()
	return nil
}

// LoadMore grows the visible prefix by one page. It reports false, leaving
// the cursor alone, when everything is already visible.
func (e *Engine) LoadMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !HasMore(len(e.filtered), e.page, e.pageSize) {
		return false
	}
	e.page++
	return true
}

// HasMore reports whether the load-more control is shown.
func (e *Engine) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return HasMore(len(e.filtered), e.page, e.pageSize)
}

// Visible returns a copy of the visible prefix of the filtered view.
func (e *Engine) Visible() []models.Course {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(Paginate(e.filtered, e.page, e.pageSize))
}

// Filtered returns a copy of the whole filtered view.
func (e *Engine) Filtered() []models.Course {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.filtered)
}

// Filters returns a copy of the current filter state.
func (e *Engine) Filters() FilterState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters.Clone()
}

func (e *Engine) Page() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page
}

// Course looks up a course of the loaded listing, whether or not it passes
// the filters.
func (e *Engine) Course(id string) (models.Course, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.positions[id]
	if !ok {
		return models.Course{}, false
	}
	return e.source[i], true
}

// ToggleFavorite flips a course in the favorites set.
func (e *Engine) ToggleFavorite(ctx context.Context, id string) bool {
	return e.favorites.Toggle(ctx, strings.TrimSpace(id))
}

func (e *Engine) Favorites() []string {
	return e.favorites.IDs()
}

// Close cancels a pending debounced search.
func (e *Engine) Close() {
	e.debounce.Stop()
}

// Item is a visible course with its favorite flag.
type Item struct {
	models.Course
	Favorite bool `json:"favorite"`
}

// View is what the rendering side needs after any operation.
type View struct {
	Status       Status      `json:"status"`
	Error        string      `json:"error,omitempty"`
	Items        []Item      `json:"items"`
	Total        int         `json:"total"`
	VisibleCount int         `json:"visibleCount"`
	HasMore      bool        `json:"hasMore"`
	ResultsText  string      `json:"resultsText"`
	Page         int         `json:"page"`
	PageSize     int         `json:"pageSize"`
	Sort         SortKey     `json:"sort"`
	Filters      FilterState `json:"filters"`
}

// Snapshot returns the current view.
func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	visible := Paginate(e.filtered, e.page, e.pageSize)
	items := make([]Item, 0, len(visible))
	for _, c := range visible {
		items = append(items, Item{Course: c, Favorite: e.favorites.Has(c.ID)})
	}

	v := View{
		Status:       e.status,
		Items:        items,
		Total:        len(e.filtered),
		VisibleCount: len(visible),
		HasMore:      HasMore(len(e.filtered), e.page, e.pageSize),
		ResultsText:  ResultsText(len(visible), len(e.filtered)),
		Page:         e.page,
		PageSize:     e.pageSize,
		Sort:         e.sortKey,
		Filters:      e.filters.Clone(),
	}
	if e.loadErr != nil {
		v.Error = "We couldn't load courses right now. Please try again later."
	}
	return v
}
