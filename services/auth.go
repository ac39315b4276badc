package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"studybuddy/backend/models"
)

// Identity is the verified owner of a session token.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// IdentityProvider authenticates users. Firebase in production, LocalIdentity
// in development and tests.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	VerifyToken(ctx context.Context, token string) (*Identity, error)
	SignOut(ctx context.Context, uid string) error
}

// AuthService runs account flows against a provider and publishes auth state
// changes.
type AuthService struct {
	provider IdentityProvider
	broker   *AuthStateBroker
}

func NewAuthService(provider IdentityProvider, broker *AuthStateBroker) *AuthService {
	return &AuthService{provider: provider, broker: broker}
}

func (s *AuthService) Provider() IdentityProvider {
	return s.provider
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := s.provider.SignIn(ctx, normalizeEmail(email), password)
	if err != nil {
		return nil, err
	}
	s.broker.Publish(AuthEvent{Type: EventSignedIn, UserID: session.UserID, Session: session})
	return session, nil
}

// SignUp creates the account and its profile, then signs the user in.
func (s *AuthService) SignUp(ctx context.Context, email, password string, attrs models.ProfileAttributes) (*models.Session, *models.Profile, error) {
	email = normalizeEmail(email)
	session, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	profile := &models.Profile{
		ID:       session.UserID,
		Email:    email,
		FullName: strings.TrimSpace(attrs.FullName),
		Role:     attrs.Role,
	}
	if err := CreateProfile(ctx, profile); err != nil {
		log.Printf("Error creating profile for new user %s: %v", session.UserID, err)
		return nil, nil, fmt.Errorf("account created but profile failed: %w", err)
	}

	s.broker.Publish(AuthEvent{Type: EventSignedIn, UserID: session.UserID, Session: session})
	return session, profile, nil
}

func (s *AuthService) SignOut(ctx context.Context, uid string) error {
	if err := s.provider.SignOut(ctx, uid); err != nil {
		return err
	}
	s.broker.Publish(AuthEvent{Type: EventSignedOut, UserID: uid})
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
