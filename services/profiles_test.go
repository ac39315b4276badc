package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"studybuddy/backend/models"
)

func TestBalanceTier(t *testing.T) {
	testCases := []struct {
		balance  int
		expected string
	}{
		{0, BalanceLow},
		{99, BalanceLow},
		{100, BalanceMedium},
		{500, BalanceMedium},
		{501, BalanceHigh},
	}

	for _, tc := range testCases {
		if got := BalanceTier(tc.balance); got != tc.expected {
			t.Errorf("BalanceTier(%d): expected %s, got %s", tc.balance, tc.expected, got)
		}
	}
}

func TestCreateProfileDefaultsRole(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	p := &models.Profile{ID: "new-user", Email: "new@example.com", FullName: "New User", Role: models.RoleAdmin}
	if err := CreateProfile(ctx, p); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	got, err := GetUserProfile(ctx, "new-user")
	if err != nil {
		t.Fatalf("GetUserProfile failed: %v", err)
	}
	if got.Role != models.RoleStudent {
		t.Errorf("Expected self-assigned admin to fall back to student, got %s", got.Role)
	}

	isStudent, _ := IsStudent(ctx, "new-user")
	isMentor, _ := IsMentor(ctx, "new-user")
	if !isStudent || isMentor {
		t.Errorf("Expected student role checks, got student=%v mentor=%v", isStudent, isMentor)
	}

	if err := CreateProfile(ctx, &models.Profile{ID: "new-user"}); err == nil {
		t.Errorf("Expected duplicate profile to fail")
	}
}

func TestUpdateProfile(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	headline := "Learning physics"
	name := "  Alex J. Kim "
	p, err := UpdateProfile(ctx, "student-alex", ProfileUpdate{FullName: &name, Headline: &headline})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if p.FullName != "Alex J. Kim" || p.Headline != headline {
		t.Errorf("Expected updated fields, got %q / %q", p.FullName, p.Headline)
	}
	if p.CoinBalance != 1500 {
		t.Errorf("Expected balance untouched, got %d", p.CoinBalance)
	}

	if _, err := UpdateProfile(ctx, "nobody", ProfileUpdate{Headline: &headline}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPurchaseCoinsOncePerReference(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	balance, err := PurchaseCoins(ctx, "student-alex", 300, "pay-123")
	if err != nil {
		t.Fatalf("PurchaseCoins failed: %v", err)
	}
	if balance != 1800 {
		t.Errorf("Expected 1800, got %d", balance)
	}

	if _, err := PurchaseCoins(ctx, "student-alex", 300, "pay-123"); !errors.Is(err, ErrDuplicatePayment) {
		t.Errorf("Expected ErrDuplicatePayment, got %v", err)
	}
	if _, err := PurchaseCoins(ctx, "mentor-priya", 300, "pay-123"); !errors.Is(err, ErrDuplicatePayment) {
		t.Errorf("Expected a reference to be spent for every user, got %v", err)
	}

	current, _ := GetCoinBalance(ctx, "student-alex")
	if current != 1800 {
		t.Errorf("Expected a repeated payment to leave 1800, got %d", current)
	}
	txs, err := GetRecentTransactions(ctx, "student-alex", 0)
	if err != nil {
		t.Fatalf("GetRecentTransactions failed: %v", err)
	}
	if len(txs) == 0 || txs[0].Reference != "pay-123" {
		t.Errorf("Expected the newest transaction to carry pay-123, got %+v", txs)
	}

	// ledger rows without a reference do not collide
	if _, err := UpdateCoinBalance(ctx, "student-alex", 10, models.TransactionCoinPurchase, "bonus"); err != nil {
		t.Errorf("Expected unreferenced credits to keep working, got %v", err)
	}
	if _, err := UpdateCoinBalance(ctx, "student-alex", 10, models.TransactionCoinPurchase, "bonus"); err != nil {
		t.Errorf("Expected a second unreferenced credit to work, got %v", err)
	}
}

func TestUpdateCoinBalance(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	balance, err := UpdateCoinBalance(ctx, "student-alex", 500, models.TransactionCoinPurchase, "Bought 500 coins")
	if err != nil {
		t.Fatalf("UpdateCoinBalance failed: %v", err)
	}
	if balance != 2000 {
		t.Errorf("Expected 2000, got %d", balance)
	}

	if _, err := UpdateCoinBalance(ctx, "student-alex", -2500, models.TransactionMentorPayout, "too much"); !errors.Is(err, ErrInsufficientCoins) {
		t.Errorf("Expected ErrInsufficientCoins, got %v", err)
	}

	current, _ := GetCoinBalance(ctx, "student-alex")
	if current != 2000 {
		t.Errorf("Expected failed debit to leave 2000, got %d", current)
	}
	if n := countRows(t, "SELECT COUNT(*) FROM transactions WHERE user_id = ?", "student-alex"); n != 1 {
		t.Errorf("Expected 1 ledger row, got %d", n)
	}

	if _, err := GetCoinBalance(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetRecentTransactions(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		err := RecordTransaction(ctx, &models.Transaction{
			UserID:    "student-alex",
			Amount:    10 * (i + 1),
			Type:      models.TransactionCoinPurchase,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}
	}

	list, err := GetRecentTransactions(ctx, "student-alex", 0)
	if err != nil {
		t.Fatalf("GetRecentTransactions failed: %v", err)
	}
	if len(list) != DefaultTransactionLimit {
		t.Fatalf("Expected %d transactions, got %d", DefaultTransactionLimit, len(list))
	}
	if list[0].Amount != 70 || list[4].Amount != 30 {
		t.Errorf("Expected newest first (70..30), got %d..%d", list[0].Amount, list[4].Amount)
	}
	if list[0].Status != models.StatusCompleted {
		t.Errorf("Expected default status completed, got %s", list[0].Status)
	}
}
