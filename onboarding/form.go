package onboarding

import (
	"maps"
	"slices"
	"strings"
)

// File is an uploaded document attached to a file field.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	ObjectName  string `json:"objectName,omitempty"`
}

// Form holds every field value of the wizard. Fields may carry several
// values, like checkbox groups.
type Form struct {
	values map[string][]string
	files  map[string][]File
}

func NewForm() *Form {
	return &Form{
		values: make(map[string][]string),
		files:  make(map[string][]File),
	}
}

// Set replaces the field with a single value. An empty value clears it.
func (f *Form) Set(field, value string) {
	if value == "" {
		delete(f.values, field)
		return
	}
	f.values[field] = []string{value}
}

// SetAll replaces every value of a multi-valued field. Blank entries are
// dropped.
func (f *Form) SetAll(field string, values []string) {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(f.values, field)
		return
	}
	f.values[field] = kept
}

// Value returns the first value of the field.
func (f *Form) Value(field string) string {
	if v := f.values[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *Form) Values(field string) []string {
	return slices.Clone(f.values[field])
}

// Attach replaces the file of a file field.
func (f *Form) Attach(field string, file File) {
	f.files[field] = []File{file}
}

func (f *Form) Detach(field string) {
	delete(f.files, field)
}

func (f *Form) Files(field string) []File {
	return slices.Clone(f.files[field])
}

// snapshot copies the values and files.
func (f *Form) snapshot() (map[string][]string, map[string][]File) {
	values := make(map[string][]string, len(f.values))
	for k, v := range f.values {
		values[k] = slices.Clone(v)
	}
	files := maps.Clone(f.files)
	for k, v := range files {
		files[k] = slices.Clone(v)
	}
	return values, files
}
