package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTokenExpired       = fmt.Errorf("session token expired")
	ErrForbidden          = fmt.Errorf("forbidden")

	// Input validation errors (rejected before any job row or process exists)
	ErrInvalidURL          = fmt.Errorf("invalid url")
	ErrInvalidFilename     = fmt.Errorf("invalid filename")
	ErrDisallowedExtension = fmt.Errorf("file extension not allowed")
	ErrFileTooLarge        = fmt.Errorf("file too large")
	ErrFeatureDisabled     = fmt.Errorf("feature disabled")
	ErrMissingArgument     = fmt.Errorf("missing required argument")
	ErrNoFiles             = fmt.Errorf("no files uploaded")

	// Pipeline errors
	ErrExternalTool      = fmt.Errorf("external tool failed")
	ErrStorage           = fmt.Errorf("storage failure")
	ErrInvalidTransition = fmt.Errorf("invalid job status transition")
	ErrNotFound          = fmt.Errorf("not found")
	ErrConflict          = fmt.Errorf("already exists")
)
