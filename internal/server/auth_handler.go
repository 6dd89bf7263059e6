package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/auth"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// Login exchanges credentials for a signed session token.
//
// Unknown usernames and wrong passwords produce the same response so the
// endpoint cannot be used to enumerate accounts.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			writeError(w, shared.ErrInvalidCredentials)
			return
		}
		writeError(w, err)
		return
	}
	if err := auth.CheckPassword(req.Password, user.PasswordHash); err != nil {
		writeError(w, shared.ErrInvalidCredentials)
		return
	}

	token, err := h.auth.CreateToken(user)
	if err != nil {
		writeError(w, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	h.logger.Info("login", "username", user.Username)
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:    token,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
}

// Logout acknowledges the client discarding its token. Tokens are stateless,
// so nothing is revoked server-side; they age out at the configured TTL.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "logged out"})
}
