// Package models defines domain entities and request/response shapes for the
// music upload service.
//
// The package contains two categories of types:
//
// 1. Persistent entities backed by the SQLite store:
//   - [User] : accounts with credentials, admin flag, and library path override
//   - [JobLog] : one tracked acquisition attempt with its lifecycle status
//
// 2. Request/response DTOs exchanged over the HTTP API:
//   - [LoginRequest] / [LoginResponse]
//   - [DownloadRequest] : remote-source submission
//   - [UploadResponse] : job submission outcome with log and session ids
package models

import "time"

// Model defines the base interface for persistent models.
type Model interface {
	Key() string          // Key returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}
