package onboarding

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const BioMaxLength = 500

type labeledField struct {
	Field string
	Label string
}

// summaryFields lists the fields shown on the review step, in form order.
var summaryFields = []labeledField{
	{"fullName", "Full Name"},
	{"email", "Email"},
	{"phone", "Phone"},
	{"dob", "Date of Birth"},
	{"gender", "Gender"},
	{"city", "City"},
	{"bio", "Bio"},
	{"educationLevel", "Education"},
	{"institution", "Institution"},
	{"gradYear", "Graduation Year"},
	{"fieldOfStudy", "Field of Study"},
	{"profession", "Profession"},
	{"experience", "Experience"},
	{"teachingExperience", "Taught Before?"},
	{"digitalSignature", "Signature"},
}

var documentFields = []labeledField{
	{"idFront", "ID Proof (Front)"},
	{"idBack", "ID Proof (Back)"},
	{"eduCert", "Education Certificate"},
	{"demoVideo", "Demo Teaching Video"},
}

// DocumentFields returns the names of the upload fields.
func DocumentFields() []string {
	out := make([]string, 0, len(documentFields))
	for _, d := range documentFields {
		out = append(out, d.Field)
	}
	return out
}

type SummaryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type DocumentItem struct {
	Field    string `json:"field"`
	Label    string `json:"label"`
	FileName string `json:"fileName"`
	Uploaded bool   `json:"uploaded"`
}

// Summary is the read-only review of everything entered.
type Summary struct {
	Items     []SummaryItem  `json:"items"`
	Documents []DocumentItem `json:"documents"`
}

// BuildSummary materializes the review from the form. Empty fields are
// skipped, subjects are joined, uploaded documents are listed separately.
func BuildSummary(f *Form) *Summary {
	s := &Summary{Items: []SummaryItem{}, Documents: []DocumentItem{}}

	for _, lf := range summaryFields {
		for _, v := range f.Values(lf.Field) {
			if v == "" {
				continue
			}
			s.Items = append(s.Items, SummaryItem{Label: lf.Label, Value: v})
		}
	}

	if subjects := f.Values("subjects"); len(subjects) > 0 {
		s.Items = append(s.Items, SummaryItem{Label: "Subjects", Value: strings.Join(subjects, ", ")})
	}

	for _, df := range documentFields {
		files := f.Files(df.Field)
		if len(files) == 0 {
			continue
		}
		s.Documents = append(s.Documents, DocumentItem{
			Field:    df.Field,
			Label:    df.Label,
			FileName: files[0].Name,
			Uploaded: true,
		})
	}
	return s
}

// BioCount is the character counter under the bio field.
func BioCount(f *Form) string {
	return fmt.Sprintf("%d/%d characters", utf8.RuneCountInString(f.Value("bio")), BioMaxLength)
}

// condition shows a section when a field holds a given value.
type condition struct {
	Field  string
	Equals string
}

var sections = map[string]condition{
	"teachingDetails": {Field: "teachingExperience", Equals: "yes"},
}

// SectionVisible reports whether a conditional section is shown for the
// current field values. Unknown sections are always visible.
func SectionVisible(f *Form, name string) bool {
	c, ok := sections[name]
	if !ok {
		return true
	}
	return f.Value(c.Field) == c.Equals
}

// SectionNames lists the conditional sections.
func SectionNames() []string {
	out := make([]string, 0, len(sections))
	for name := range sections {
		out = append(out, name)
	}
	return out
}
