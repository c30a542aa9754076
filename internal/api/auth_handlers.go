package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/moviemex/moviemex/internal/apperrors"
)

// LoginRequest represents admin login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse contains the bearer token for the admin endpoints.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, &apperrors.ErrUnauthorized{}) {
			respondError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.log.Error().Err(err).Msg("authentication lookup failed")
		respondError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	isAdmin := user.Role == "admin"
	token, err := h.tokens.Generate(user.ID, user.Username, isAdmin)
	if err != nil {
		h.log.Error().Err(err).Msg("token generation failed")
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		Username:  user.Username,
		IsAdmin:   isAdmin,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

// VerifyToken handles GET /api/v1/auth/verify
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		respondError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	claims, err := h.tokens.Validate(tokenString)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"valid":    true,
		"user_id":  claims.UserID,
		"username": claims.Username,
		"is_admin": claims.IsAdmin,
	})
}
