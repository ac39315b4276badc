package models

import "time"

// Profile is the marketplace profile attached to an authenticated user.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Role        string    `json:"role"` // student, mentor, admin
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Headline    string    `json:"headline,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	CoinBalance int       `json:"coinBalance"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfileAttributes are the optional fields accepted at sign-up.
type ProfileAttributes struct {
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// Session is an authenticated session returned by sign-in and sign-up.
type Session struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// IsMentor reports whether the profile may run courses.
func (p *Profile) IsMentor() bool {
	return p != nil && (p.Role == RoleMentor || p.Role == RoleAdmin)
}

// IsStudent reports whether the profile is a plain student.
func (p *Profile) IsStudent() bool {
	return p != nil && p.Role == RoleStudent
}
