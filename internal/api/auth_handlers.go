package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/plantshop/internal/account"
	"github.com/example/plantshop/internal/api/middleware"
	"github.com/example/plantshop/internal/auth"
)

// AuthHandlers serves registration, login and token refresh.
type AuthHandlers struct {
	accounts account.Store
	tokens   *auth.TokenService
	logger   zerolog.Logger
}

func NewAuthHandlers(accounts account.Store, tokens *auth.TokenService, logger zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		accounts: accounts,
		tokens:   tokens,
		logger:   logger.With().Str("component", "auth-api").Logger(),
	}
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         any       `json:"user,omitempty"`
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, "a valid email is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, "name is required", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	user := &account.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         account.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.accounts.Create(r.Context(), user); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			respondError(w, "email is already registered", http.StatusConflict)
			return
		}
		h.logger.Error().Err(err).Msg("failed to create user")
		respondError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	h.respondWithTokens(w, user, http.StatusCreated)
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.accounts.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		respondError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	h.respondWithTokens(w, user, http.StatusOK)
}

func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, err := h.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		respondError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	user, err := h.accounts.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	access, expiresAt, err := h.tokens.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue access token")
		respondError(w, "token refresh failed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: access,
		ExpiresAt:   expiresAt,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, "user not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateMe updates the mutable profile fields of the authenticated user.
// Email, role and password are not editable here.
func (h *AuthHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, "name is required", http.StatusBadRequest)
		return
	}
	if len(req.Name) < 3 {
		respondError(w, "name must be at least 3 characters", http.StatusBadRequest)
		return
	}

	user, err := h.accounts.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, "user not found", http.StatusNotFound)
		return
	}

	user.Name = req.Name
	user.Avatar = req.Avatar
	user.UpdatedAt = time.Now()
	if err := h.accounts.Update(r.Context(), user); err != nil {
		h.logger.Error().Err(err).Msg("failed to update profile")
		respondError(w, "failed to update profile", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandlers) respondWithTokens(w http.ResponseWriter, user *account.User, status int) {
	access, expiresAt, err := h.tokens.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue access token")
		respondError(w, "authentication failed", http.StatusInternalServerError)
		return
	}
	refresh, _, err := h.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue refresh token")
		respondError(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, status, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         user,
	})
}
