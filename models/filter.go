package models

// CatalogCriteria are the optional server-side filters applied when the
// catalog listing is fetched. Zero values mean no constraint.
type CatalogCriteria struct {
	Subject    string `json:"subject,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Language   string `json:"language,omitempty"`
	MaxPrice   int    `json:"maxPrice,omitempty"`
	MentorID   string `json:"mentorId,omitempty"`
}
