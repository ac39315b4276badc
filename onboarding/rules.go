package onboarding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type RuleType string

const (
	RuleText      RuleType = "text"
	RuleEmail     RuleType = "email"
	RulePhone     RuleType = "phone"
	RuleDate      RuleType = "date"
	RuleSelect    RuleType = "select"
	RuleYear      RuleType = "year"
	RuleCheckbox  RuleType = "checkbox"
	RuleFile      RuleType = "file"
	RuleNDA       RuleType = "nda"
	RuleSignature RuleType = "signature"
)

// FullNameField is the step 0 field a signature must reproduce.
const FullNameField = "fullName"

const minGradYear = 1950

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// Rule is a single field check of a step.
type Rule struct {
	Field string   `json:"field"`
	Type  RuleType `json:"type"`
	Min   int      `json:"min,omitempty"`
	Max   int      `json:"max,omitempty"`
}

// Step is one screen of the wizard.
type Step struct {
	Title string `json:"title"`
	Rules []Rule `json:"rules"`
}

// DefaultSteps is the mentor application: six data entry steps and a review.
func DefaultSteps() []Step {
	return []Step{
		{Title: "Personal Information", Rules: []Rule{
			{Field: "fullName", Type: RuleText, Min: 2},
			{Field: "email", Type: RuleEmail},
			{Field: "phone", Type: RulePhone},
			{Field: "dob", Type: RuleDate},
			{Field: "city", Type: RuleText, Min: 2},
		}},
		{Title: "Education", Rules: []Rule{
			{Field: "educationLevel", Type: RuleSelect},
			{Field: "institution", Type: RuleText, Min: 3},
			{Field: "gradYear", Type: RuleYear},
			{Field: "fieldOfStudy", Type: RuleText, Min: 2},
		}},
		{Title: "Subjects", Rules: []Rule{
			{Field: "subjects", Type: RuleCheckbox, Min: 3, Max: 10},
		}},
		{Title: "Identity Verification", Rules: []Rule{
			{Field: "idFront", Type: RuleFile},
			{Field: "idBack", Type: RuleFile},
			{Field: "eduCert", Type: RuleFile},
		}},
		{Title: "Demo Video", Rules: []Rule{
			{Field: "demoVideo", Type: RuleFile},
		}},
		{Title: "Agreement", Rules: []Rule{
			{Field: "ndaAgree", Type: RuleNDA},
			{Field: "digitalSignature", Type: RuleSignature},
		}},
		{Title: "Review"},
	}
}

// Check evaluates the rule against the form. now supplies the calendar year
// for year rules.
func (r Rule) Check(f *Form, now time.Time) bool {
	value := f.Value(r.Field)

	switch r.Type {
	case RuleText:
		return utf8.RuneCountInString(strings.TrimSpace(value)) >= r.Min
	case RuleEmail:
		return emailPattern.MatchString(value)
	case RulePhone:
		return phonePattern.MatchString(value)
	case RuleDate, RuleSelect:
		return strings.TrimSpace(value) != ""
	case RuleYear:
		year, err := strconv.Atoi(strings.TrimSpace(value))
		return err == nil && year > minGradYear && year <= now.Year()
	case RuleCheckbox:
		checked := len(f.Values(r.Field))
		return checked >= r.Min && checked <= r.Max
	case RuleFile:
		return len(f.Files(r.Field)) > 0
	case RuleNDA:
		return isChecked(value)
	case RuleSignature:
		fullName := strings.TrimSpace(f.Value(FullNameField))
		return fullName != "" && strings.TrimSpace(value) == fullName
	}
	return false
}

// Message is the inline error shown when the rule fails.
func (r Rule) Message() string {
	switch r.Type {
	case RuleText:
		return fmt.Sprintf("Please enter at least %d characters.", r.Min)
	case RuleEmail:
		return "Please enter a valid email address."
	case RulePhone:
		return "Please enter a 10-digit phone number."
	case RuleDate, RuleSelect:
		return "This field is required."
	case RuleYear:
		return "Please enter a valid year."
	case RuleCheckbox:
		return fmt.Sprintf("Please select between %d and %d subjects.", r.Min, r.Max)
	case RuleFile:
		return "Please upload the required file."
	case RuleNDA:
		return "You must agree to the NDA."
	case RuleSignature:
		return "Signature must match your full name from Step 1."
	}
	return "Invalid input."
}

func isChecked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "off", "0", "no":
		return false
	}
	return true
}
