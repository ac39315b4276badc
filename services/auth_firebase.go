package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"studybuddy/backend/models"
)

// FirebaseIdentity signs users in through the Identity Toolkit REST API and
// manages accounts and tokens with the Admin SDK.
type FirebaseIdentity struct {
	auth    *auth.Client
	toolkit *identitytoolkit.Service
}

func NewFirebaseIdentity(ctx context.Context, app *firebase.App, webAPIKey string) (*FirebaseIdentity, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}
	if webAPIKey == "" {
		return nil, errors.New("FIREBASE_WEB_API_KEY is required for password sign-in")
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(webAPIKey))
	if err != nil {
		return nil, fmt.Errorf("error creating Identity Toolkit client: %w", err)
	}
	return &FirebaseIdentity{auth: client, toolkit: toolkit}, nil
}

func (f *FirebaseIdentity) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error signing in: %w", err)
	}

	return &models.Session{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

func (f *FirebaseIdentity) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	_, err := f.auth.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if auth.IsEmailAlreadyExists(err) {
		return nil, ErrEmailInUse
	}
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return f.SignIn(ctx, email, password)
}

// VerifyToken checks the ID token and that its refresh tokens were not
// revoked by a sign-out.
func (f *FirebaseIdentity) VerifyToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := f.auth.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	email, _ := token.Claims["email"].(string)
	return &Identity{UID: token.UID, Email: email}, nil
}

func (f *FirebaseIdentity) SignOut(ctx context.Context, uid string) error {
	if err := f.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("error revoking tokens: %w", err)
	}
	return nil
}

var _ IdentityProvider = (*FirebaseIdentity)(nil)
