package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/auth"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// ListUsers returns every account. Password hashes never serialize.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser provisions an account with an already-validated username and
// password.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Username) < minUsernameLength {
		writeError(w, fmt.Errorf("%w: username must be at least %d characters", shared.ErrMissingArgument, minUsernameLength))
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, fmt.Errorf("%w: password must be at least %d characters", shared.ErrMissingArgument, minPasswordLength))
		return
	}
	if req.LibraryPath != nil && strings.Contains(*req.LibraryPath, "..") {
		writeError(w, fmt.Errorf("%w: library path must not contain '..'", shared.ErrMissingArgument))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		IsAdmin:      req.IsAdmin,
		LibraryPath:  req.LibraryPath,
	}
	if err := h.users.Create(user); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("user created", "username", user.Username, "admin", user.IsAdmin)
	writeJSON(w, http.StatusCreated, user)
}

// DeleteUser removes an account. Admins cannot delete themselves, which
// keeps at least one working admin login around.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == identity(r).UserID {
		writeError(w, fmt.Errorf("%w: cannot delete your own account", shared.ErrMissingArgument))
		return
	}

	if err := h.users.Delete(userID); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("user deleted", "user_id", userID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}

// AdminChangePassword sets another user's password without knowing the old one.
func (h *Handlers) AdminChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.AdminChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, fmt.Errorf("%w: password must be at least %d characters", shared.ErrMissingArgument, minPasswordLength))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.UpdatePassword(r.PathValue("id"), hash); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// UpdateLibraryPath rebinds a user's library root.
func (h *Handlers) UpdateLibraryPath(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateLibraryPathRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.LibraryPath == "" {
		writeError(w, fmt.Errorf("%w: library path is required", shared.ErrMissingArgument))
		return
	}
	if strings.Contains(req.LibraryPath, "..") {
		writeError(w, fmt.Errorf("%w: library path must not contain '..'", shared.ErrMissingArgument))
		return
	}

	userID := r.PathValue("id")
	if err := h.users.UpdateLibraryPath(userID, req.LibraryPath); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"library_path": req.LibraryPath,
	})
}

// ListConfig returns every runtime settings row.
func (h *Handlers) ListConfig(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateConfig writes one runtime settings row, overriding the static
// config default for that key from then on.
func (h *Handlers) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Key == "" {
		writeError(w, fmt.Errorf("%w: setting key is required", shared.ErrMissingArgument))
		return
	}

	if err := h.settings.Set(req.Key, req.Value); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("setting updated", "key", req.Key, "value", req.Value)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GetConfig returns one runtime settings row.
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	value, ok, err := h.settings.Get(key)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fmt.Errorf("%w: setting %s", shared.ErrNotFound, key))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// ListLogs returns job history: every user's for admins, the caller's own
// otherwise.
func (h *Handlers) ListLogs(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)

	scope := ""
	if !caller.IsAdmin {
		scope = caller.UserID
	}
	logs, err := h.jobs.List(scope, logListLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// SystemInfo reports the effective feature switches, database overrides
// included.
func (h *Handlers) SystemInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ferric_enabled":  h.settings.EffectiveBool("ferric_enabled", h.cfg.Paths.FerricEnabled),
		"youtube_enabled": h.cfg.YouTube.Enabled,
		"spotify_enabled": h.cfg.Spotify.Enabled,
	})
}
