package models

import (
	"fmt"
	"time"
)

// JobKind identifies how the audio enters the pipeline.
type JobKind string

const (
	KindFile    JobKind = "file"
	KindYouTube JobKind = "youtube"
	KindSpotify JobKind = "spotify"
)

// Valid reports whether the kind is one of the known source types.
func (k JobKind) Valid() bool {
	switch k {
	case KindFile, KindYouTube, KindSpotify:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of one acquisition job.
//
// Transitions are monotonic and forward-only:
// pending → processing → {completed | failed}.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status ends the job lifecycle.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition enforces the allowed state machine edges.
func (s JobStatus) CanTransition(to JobStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// JobLog is one tracked acquisition attempt (upload or remote fetch).
//
// Invariants: CompletedAt is non-nil iff Status is terminal; ErrorMessage is
// non-nil only when Status is failed.
type JobLog struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Kind         JobKind    `json:"upload_type"`
	Source       string     `json:"source"`
	Status       JobStatus  `json:"status"`
	FileCount    *int       `json:"file_count,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	Created      time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

var _ Model = (*JobLog)(nil)

func (j *JobLog) Key() string          { return fmt.Sprintf("%d", j.ID) }
func (j *JobLog) CreatedAt() time.Time { return j.Created }

// Validate checks the persisted invariants of the status state machine.
func (j *JobLog) Validate() error {
	if j.UserID == "" {
		return fmt.Errorf("job log requires an owning user")
	}
	if !j.Kind.Valid() {
		return fmt.Errorf("unknown job kind %q", j.Kind)
	}
	if j.Status.Terminal() && j.CompletedAt == nil {
		return fmt.Errorf("terminal job log missing completed_at")
	}
	if !j.Status.Terminal() && j.CompletedAt != nil {
		return fmt.Errorf("non-terminal job log has completed_at set")
	}
	if j.ErrorMessage != nil && j.Status != StatusFailed {
		return fmt.Errorf("error message set on non-failed job log")
	}
	return nil
}
