// Package onboarding drives the mentor application wizard: a fixed linear
// list of steps, each gated by its field rules, ending in a review.
package onboarding

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type State string

const (
	StateWelcome    State = "welcome"
	StateInProgress State = "in_progress"
	StateSuccess    State = "success"
)

var (
	ErrNotStarted     = errors.New("application has not been started")
	ErrAlreadyStarted = errors.New("application already started")
	ErrNotAtReview    = errors.New("application can only be submitted from the review step")
	ErrSubmitted      = errors.New("application already submitted")
	ErrIncomplete     = errors.New("application has steps that no longer validate")
)

// IncompleteError names the first data entry step that fails its rules when
// the application is submitted.
type IncompleteError struct {
	Step     int
	Failures []FieldError
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%v: step %d", ErrIncomplete, e.Step+1)
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncomplete
}

// FieldError is an inline validation message attached to a field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Progress drives the progress bar and the navigation buttons.
type Progress struct {
	Step       int     `json:"step"`
	Total      int     `json:"total"`
	Percent    float64 `json:"percent"`
	Text       string  `json:"text"`
	ShowBack   bool    `json:"showBack"`
	ShowNext   bool    `json:"showNext"`
	ShowSubmit bool    `json:"showSubmit"`
}

// Wizard is one applicant's pass through the steps. It is safe for
// concurrent use.
type Wizard struct {
	mu      sync.Mutex
	steps   []Step
	state   State
	current int
	form    *Form
	errors  map[string]string
	summary *Summary
	now     func() time.Time
}

// New creates a wizard on the welcome screen. A nil clock means time.Now and
// no steps means DefaultSteps.
func New(steps []Step, now func() time.Time) *Wizard {
	if len(steps) == 0 {
		steps = DefaultSteps()
	}
	if now == nil {
		now = time.Now
	}
	return &Wizard{
		steps:  steps,
		state:  StateWelcome,
		form:   NewForm(),
		errors: make(map[string]string),
		now:    now,
	}
}

// Start leaves the welcome screen for the first step.
func (w *Wizard) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateWelcome {
		return ErrAlreadyStarted
	}
	w.state = StateInProgress
	w.current = 0
	return nil
}

func (w *Wizard) reviewIndex() int {
	return len(w.steps) - 1
}

// ValidateStep evaluates every rule of step i. Each failing rule records its
// message on its field; each passing rule clears the field's previous error.
func (w *Wizard) ValidateStep(i int) []FieldError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validateStep(i)
}

func (w *Wizard) validateStep(i int) []FieldError {
	if i < 0 || i >= len(w.steps) {
		return nil
	}
	now := w.now()
	var failures []FieldError
	for _, rule := range w.steps[i].Rules {
		delete(w.errors, rule.Field)
		if rule.Check(w.form, now) {
			continue
		}
		msg := rule.Message()
		w.errors[rule.Field] = msg
		failures = append(failures, FieldError{Field: rule.Field, Message: msg})
	}
	return failures
}

// Next advances one step when the current step validates. Entering the review
// step materializes the summary. It reports whether the step changed.
func (w *Wizard) Next() (bool, []FieldError, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireInProgress(); err != nil {
		return false, nil, err
	}

	if failures := w.validateStep(w.current); len(failures) > 0 {
		return false, failures, nil
	}
	if w.current >= w.reviewIndex() {
		return false, nil, nil
	}

	w.current++
	if w.current == w.reviewIndex() {
		w.summary = BuildSummary(w.form)
	}
	return true, nil, nil
}

// Back retreats one step without validating.
func (w *Wizard) Back() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireInProgress(); err != nil {
		return false, err
	}
	if w.current == 0 {
		return false, nil
	}
	w.current--
	return true, nil
}

// Submit finishes the application. It is only accepted on the review step
// and only while every data entry step still validates; otherwise the wizard
// returns to the first failing step with its errors shown. Persisting the
// application is up to the caller.
func (w *Wizard) Submit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireSubmittable(); err != nil {
		return err
	}
	w.state = StateSuccess
	return nil
}

// CanSubmit reports whether Submit would be accepted. A failing step is
// handled as in Submit.
func (w *Wizard) CanSubmit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.requireSubmittable()
}

func (w *Wizard) requireSubmittable() error {
	if err := w.requireAtReview(); err != nil {
		return err
	}
	for i := 0; i < w.reviewIndex(); i++ {
		if failures := w.validateStep(i); len(failures) > 0 {
			w.current = i
			w.summary = nil
			return &IncompleteError{Step: i, Failures: failures}
		}
	}
	return nil
}

func (w *Wizard) requireAtReview() error {
	if err := w.requireInProgress(); err != nil {
		return err
	}
	if w.current != w.reviewIndex() {
		return ErrNotAtReview
	}
	return nil
}

func (w *Wizard) requireInProgress() error {
	switch w.state {
	case StateWelcome:
		return ErrNotStarted
	case StateSuccess:
		return ErrSubmitted
	}
	return nil
}

// SetField sets a single-valued field.
func (w *Wizard) SetField(field, value string) error {
	return w.edit(func(f *Form) { f.Set(field, value) })
}

// SetValues sets a multi-valued field such as a checkbox group.
func (w *Wizard) SetValues(field string, values []string) error {
	return w.edit(func(f *Form) { f.SetAll(field, values) })
}

func (w *Wizard) AttachFile(field string, file File) error {
	return w.edit(func(f *Form) { f.Attach(field, file) })
}

func (w *Wizard) DetachFile(field string) error {
	return w.edit(func(f *Form) { f.Detach(field) })
}

func (w *Wizard) edit(fn func(f *Form)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSuccess {
		return ErrSubmitted
	}
	fn(w.form)
	if w.summary != nil && w.current == w.reviewIndex() {
		w.summary = BuildSummary(w.form)
	}
	return nil
}

// Progress returns the progress bar state for the current step.
func (w *Wizard) Progress() Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress()
}

func (w *Wizard) progress() Progress {
	total := len(w.steps)
	step := w.current + 1
	return Progress{
		Step:       step,
		Total:      total,
		Percent:    float64(step) / float64(total) * 100,
		Text:       fmt.Sprintf("Step %d of %d", step, total),
		ShowBack:   w.current > 0,
		ShowNext:   w.current < total-1,
		ShowSubmit: w.current == total-1,
	}
}

func (w *Wizard) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Errors returns the inline errors currently shown.
func (w *Wizard) Errors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

// Summary returns the review summary, or nil before the review step has been
// reached.
func (w *Wizard) Summary() *Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

// SectionVisible reports whether a conditional section is shown.
func (w *Wizard) SectionVisible(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return SectionVisible(w.form, name)
}

// Values returns a copy of every field value and attached file.
func (w *Wizard) Values() (map[string][]string, map[string][]File) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.snapshot()
}

// View is the wizard as rendered by a client.
type View struct {
	State     State             `json:"state"`
	Step      int               `json:"step"`
	StepTitle string            `json:"stepTitle"`
	Progress  Progress          `json:"progress"`
	Errors    map[string]string `json:"errors"`
	Sections  map[string]bool   `json:"sections"`
	BioCount  string            `json:"bioCount"`
	Summary   *Summary          `json:"summary,omitempty"`
}

func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	errs := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		errs[k] = v
	}
	visible := make(map[string]bool, len(sections))
	for name := range sections {
		visible[name] = SectionVisible(w.form, name)
	}

	v := View{
		State:     w.state,
		Step:      w.current,
		StepTitle: w.steps[w.current].Title,
		Progress:  w.progress(),
		Errors:    errs,
		Sections:  visible,
		BioCount:  BioCount(w.form),
	}
	if w.current == w.reviewIndex() {
		v.Summary = w.summary
	}
	return v
}
