package handlers

import (
	"net/http"

	"studybuddy/backend/middleware"
	"studybuddy/backend/models"
	"studybuddy/backend/services"
)

type profileResponse struct {
	*models.Profile
	BalanceTier string `json:"balanceTier"`
}

// ProfileHandler serves the caller's own profile and wallet. Edits drop the
// cached copy kept for signed-in users.
type ProfileHandler struct {
	cache *services.ProfileCache
}

func NewProfileHandler(cache *services.ProfileCache) *ProfileHandler {
	return &ProfileHandler{cache: cache}
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := services.GetUserProfile(r.Context(), middleware.GetUserIDFromContext(r))
	if err != nil {
		writeServiceError(w, "to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: profile, BalanceTier: services.BalanceTier(profile.CoinBalance)})
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update services.ProfileUpdate
	if !decodeBody(w, r, &update, false) {
		return
	}

	userID := middleware.GetUserIDFromContext(r)
	profile, err := services.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		writeServiceError(w, "to update profile", err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(userID)
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: profile, BalanceTier: services.BalanceTier(profile.CoinBalance)})
}

type walletResponse struct {
	Balance      int                  `json:"balance"`
	Tier         string               `json:"tier"`
	Transactions []models.Transaction `json:"transactions"`
}

func (h *ProfileHandler) writeWallet(w http.ResponseWriter, r *http.Request, status int, balance int) {
	txs, err := services.GetRecentTransactions(r.Context(), middleware.GetUserIDFromContext(r), services.DefaultTransactionLimit)
	if err != nil {
		writeServiceError(w, "to load transactions", err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	writeJSON(w, status, walletResponse{Balance: balance, Tier: services.BalanceTier(balance), Transactions: txs})
}

// GetWallet handles GET /api/profile/coins
func (h *ProfileHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	balance, err := services.GetCoinBalance(r.Context(), middleware.GetUserIDFromContext(r))
	if err != nil {
		writeServiceError(w, "to load coin balance", err)
		return
	}
	h.writeWallet(w, r, http.StatusOK, balance)
}

type purchaseRequest struct {
	Amount           int    `json:"amount" validate:"required,gt=0,max=100000"`
	PaymentReference string `json:"paymentReference" validate:"required,max=100"`
}

// PurchaseCoins handles POST /api/profile/coins. Payment capture happens
// upstream; this credits the wallet once per payment reference and records
// the purchase.
func (h *ProfileHandler) PurchaseCoins(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	userID := middleware.GetUserIDFromContext(r)
	balance, err := services.PurchaseCoins(r.Context(), userID, req.Amount, req.PaymentReference)
	if err != nil {
		writeServiceError(w, "to purchase coins", err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(userID)
	}
	h.writeWallet(w, r, http.StatusOK, balance)
}
