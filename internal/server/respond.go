package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// errorResponse is the uniform error body for every API endpoint.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the given status. Encoding failures after the
// header is written can only be logged by the caller's middleware.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy onto HTTP status codes.
//
// Anything unrecognized is a 500 with a generic body so internal details
// never leak to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, shared.ErrForbidden),
		errors.Is(err, shared.ErrFeatureDisabled):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, shared.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, shared.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, shared.ErrFileTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
	case errors.Is(err, shared.ErrInvalidURL),
		errors.Is(err, shared.ErrInvalidFilename),
		errors.Is(err, shared.ErrDisallowedExtension),
		errors.Is(err, shared.ErrNoFiles),
		errors.Is(err, shared.ErrMissingArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeJSON parses a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", shared.ErrMissingArgument)
	}
	return nil
}
