package server

import (
	"fmt"
	"net/http"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/auth"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/library"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

// UserInfo returns the caller's own account.
func (h *Handlers) UserInfo(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UserDirectories reports where the caller's files land, after the library
// override rules are applied.
func (h *Handlers) UserDirectories(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	musicDir := library.MusicDir(h.cfg, user.LibraryPath)
	tempDir := library.TempDir(h.cfg, user.LibraryPath)
	writeJSON(w, http.StatusOK, map[string]any{
		"username":     user.Username,
		"library_path": user.LibraryPath,
		"music_dir":    musicDir,
		"temp_dir":     tempDir,
	})
}

// ChangeOwnPassword rotates the caller's password after verifying the old one.
func (h *Handlers) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, fmt.Errorf("%w: password must be at least %d characters", shared.ErrMissingArgument, minPasswordLength))
		return
	}

	user, err := h.users.Get(identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := auth.CheckPassword(req.OldPassword, user.PasswordHash); err != nil {
		writeError(w, shared.ErrInvalidCredentials)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.UpdatePassword(user.ID, hash); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("password changed", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ChangeOwnUsername renames the caller's account. The issued token keeps the
// old name until it expires; only the subject ID matters for auth.
func (h *Handlers) ChangeOwnUsername(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUsernameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.NewUsername) < minUsernameLength {
		writeError(w, fmt.Errorf("%w: username must be at least %d characters", shared.ErrMissingArgument, minUsernameLength))
		return
	}

	if err := h.users.UpdateUsername(identity(r).UserID, req.NewUsername); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"new_username": req.NewUsername,
	})
}
