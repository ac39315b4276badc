package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"studybuddy/backend/database"
	"studybuddy/backend/models"
)

const MinPasswordLength = 6

var ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

type localClaims struct {
	Email   string `json:"email"`
	Version int    `json:"ver"`
	jwt.RegisteredClaims
}

// LocalIdentity is the development identity provider: bcrypt hashes in the
// credentials table and HS256 session tokens. Signing out bumps the user's
// token version, which invalidates every token issued before.
type LocalIdentity struct {
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewLocalIdentity(secret string, ttl time.Duration) *LocalIdentity {
	if secret == "" {
		log.Println("Warning: JWT_SECRET not set, using an insecure development secret")
		secret = "studybuddy-dev-secret"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LocalIdentity{secret: []byte(secret), ttl: ttl, cost: bcrypt.DefaultCost, now: time.Now}
}

func (l *LocalIdentity) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	uid := uuid.New().String()
	_, err = database.DB.ExecContext(ctx,
		"INSERT INTO credentials (user_id, email, password_hash, token_version, created_at) VALUES (?, ?, ?, 0, ?)",
		uid, email, string(hash), l.now().UTC())
	if isUniqueViolation(err) {
		return nil, ErrEmailInUse
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	return l.issue(uid, email, 0)
}

func (l *LocalIdentity) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	var (
		uid, hash string
		version   int
	)
	err := database.DB.QueryRowContext(ctx,
		"SELECT user_id, password_hash, token_version FROM credentials WHERE email = ?", email).
		Scan(&uid, &hash, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return l.issue(uid, email, version)
}

func (l *LocalIdentity) issue(uid, email string, version int) (*models.Session, error) {
	now := l.now()
	expires := now.Add(l.ttl)
	claims := localClaims{
		Email:   email,
		Version: version,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &models.Session{UserID: uid, Email: email, IDToken: signed, ExpiresAt: expires}, nil
}

func (l *LocalIdentity) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	claims := &localClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return l.secret, nil
	}, jwt.WithTimeFunc(l.now), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var version int
	err = database.DB.QueryRowContext(ctx, "SELECT token_version FROM credentials WHERE user_id = ?", claims.Subject).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token version: %w", err)
	}
	if version != claims.Version {
		return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
	}

	return &Identity{UID: claims.Subject, Email: claims.Email}, nil
}

func (l *LocalIdentity) SignOut(ctx context.Context, uid string) error {
	res, err := database.DB.ExecContext(ctx, "UPDATE credentials SET token_version = token_version + 1 WHERE user_id = ?", uid)
	if err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ IdentityProvider = (*LocalIdentity)(nil)
