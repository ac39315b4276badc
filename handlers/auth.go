package handlers

import (
	"net/http"

	"studybuddy/backend/middleware"
	"studybuddy/backend/models"
	"studybuddy/backend/services"
)

// AuthHandler exposes sign-up, sign-in and sign-out over the configured
// identity provider.
type AuthHandler struct {
	auth  *services.AuthService
	cache *services.ProfileCache
}

func NewAuthHandler(auth *services.AuthService, cache *services.ProfileCache) *AuthHandler {
	return &AuthHandler{auth: auth, cache: cache}
}

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName" validate:"omitempty,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=student mentor"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Session *models.Session `json:"session"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	session, profile, err := h.auth.SignUp(r.Context(), req.Email, req.Password, models.ProfileAttributes{
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, "to sign up", err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Session: session, Profile: profile})
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, "to sign in", err)
		return
	}

	profile, err := h.cache.Get(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, "to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Session: session, Profile: profile})
}

// SignOut handles POST /api/auth/signout. Tokens issued before the call stop
// verifying.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), middleware.GetUserIDFromContext(r)); err != nil {
		writeServiceError(w, "to sign out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me. The profile comes from the signed-in cache;
// the coin balance is always read fresh.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserIDFromContext(r)

	cached, err := h.cache.Get(ctx, userID)
	if err != nil {
		writeServiceError(w, "to load profile", err)
		return
	}
	balance, err := services.GetCoinBalance(ctx, userID)
	if err != nil {
		writeServiceError(w, "to load coin balance", err)
		return
	}

	profile := *cached
	profile.CoinBalance = balance
	writeJSON(w, http.StatusOK, profileResponse{Profile: &profile, BalanceTier: services.BalanceTier(balance)})
}
