package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"studybuddy/backend/database"
	"studybuddy/backend/models"
)

// Coin balance tiers shown next to the wallet.
const (
	BalanceLow    = "low"
	BalanceMedium = "medium"
	BalanceHigh   = "high"
)

// DefaultTransactionLimit is how many ledger rows the wallet shows.
const DefaultTransactionLimit = 5

// BalanceTier buckets a coin balance: below 100 is low, up to 500 medium.
func BalanceTier(balance int) string {
	switch {
	case balance < 100:
		return BalanceLow
	case balance <= 500:
		return BalanceMedium
	default:
		return BalanceHigh
	}
}

// ProfileUpdate holds the self-editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	FullName  *string `json:"fullName" validate:"omitempty,min=2,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
	Headline  *string `json:"headline" validate:"omitempty,max=200"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
}

func GetUserProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := database.DB.QueryRowContext(ctx, `
		SELECT id, email, full_name, role, avatar_url, headline, bio, coin_balance, created_at, updated_at
		FROM profiles WHERE id = ?`, userID).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.AvatarURL, &p.Headline, &p.Bio,
			&p.CoinBalance, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	return &p, nil
}

// CreateProfile inserts the profile row created alongside a new account.
// Unknown roles fall back to student.
func CreateProfile(ctx context.Context, profile *models.Profile) error {
	switch profile.Role {
	case models.RoleStudent, models.RoleMentor:
	default:
		profile.Role = models.RoleStudent
	}
	now := time.Now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now

	_, err := database.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, role, avatar_url, headline, bio, coin_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Email, profile.FullName, profile.Role, profile.AvatarURL,
		profile.Headline, profile.Bio, profile.CoinBalance, now, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %s already exists", profile.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	log.Printf("Profile created for %s (%s)", profile.ID, profile.Role)
	return nil
}

func UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.Profile, error) {
	sets := []string{}
	args := []any{}
	if update.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, strings.TrimSpace(*update.FullName))
	}
	if update.AvatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, *update.AvatarURL)
	}
	if update.Headline != nil {
		sets = append(sets, "headline = ?")
		args = append(args, *update.Headline)
	}
	if update.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *update.Bio)
	}
	if len(sets) == 0 {
		return GetUserProfile(ctx, userID)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), userID)
	res, err := database.DB.ExecContext(ctx,
		"UPDATE profiles SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return GetUserProfile(ctx, userID)
}

func IsMentor(ctx context.Context, userID string) (bool, error) {
	p, err := GetUserProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	return p.IsMentor(), nil
}

func IsStudent(ctx context.Context, userID string) (bool, error) {
	p, err := GetUserProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	return p.IsStudent(), nil
}

func GetCoinBalance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := database.DB.QueryRowContext(ctx, "SELECT coin_balance FROM profiles WHERE id = ?", userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get coin balance: %w", err)
	}
	return balance, nil
}

// UpdateCoinBalance applies delta to the balance and records the ledger row
// in the same transaction. A debit beyond the balance fails with
// ErrInsufficientCoins.
func UpdateCoinBalance(ctx context.Context, userID string, delta int, txType, description string) (int, error) {
	return applyCoinDelta(ctx, &models.Transaction{
		UserID:      userID,
		Amount:      delta,
		Type:        txType,
		Description: description,
	})
}

// PurchaseCoins credits a wallet for a captured payment. Each payment
// reference credits once; a repeat fails with ErrDuplicatePayment.
func PurchaseCoins(ctx context.Context, userID string, amount int, reference string) (int, error) {
	balance, err := applyCoinDelta(ctx, &models.Transaction{
		UserID:      userID,
		Amount:      amount,
		Type:        models.TransactionCoinPurchase,
		Description: "Coin purchase",
		Reference:   reference,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicatePayment, reference)
		}
		return 0, err
	}
	log.Printf("Credited %d coins to %s for payment %s", amount, userID, reference)
	return balance, nil
}

func applyCoinDelta(ctx context.Context, t *models.Transaction) (balance int, err error) {
	delta, userID := t.Amount, t.UserID
	tx, err := database.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = tx.QueryRowContext(ctx, "SELECT coin_balance FROM profiles WHERE id = ?", userID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return 0, err
	}
	if balance+delta < 0 {
		return 0, ErrInsufficientCoins
	}
	balance += delta

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, "UPDATE profiles SET coin_balance = ?, updated_at = ? WHERE id = ?", balance, now, userID); err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}
	t.CreatedAt = now
	if err = insertTransaction(ctx, tx, t); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit balance update: %w", err)
	}
	return balance, nil
}

// GetRecentTransactions returns the newest ledger rows of a user. A
// non-positive limit means DefaultTransactionLimit.
func GetRecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	rows, err := database.DB.QueryContext(ctx, `
		SELECT id, user_id, amount, type, description, course_id, COALESCE(reference, ''), status, created_at
		FROM transactions WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	list := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description, &t.CourseID, &t.Reference, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, db execer, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = models.StatusCompleted
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, type, description, course_id, reference, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)`,
		t.ID, t.UserID, t.Amount, t.Type, t.Description, t.CourseID, t.Reference, t.Status, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// RecordTransaction appends a ledger row without touching the balance.
func RecordTransaction(ctx context.Context, t *models.Transaction) error {
	return insertTransaction(ctx, database.DB, t)
}
