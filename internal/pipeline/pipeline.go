// Package pipeline implements the acquisition flow: validated input in,
// tagged files in the user's library and a persisted job record out.
//
// Every job follows the same shape regardless of source. A log row is
// created, the files are fetched or received, the tagging/move step runs,
// and the row reaches a terminal status exactly once. Progress sessions are
// a side channel; they never affect the job's outcome.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/library"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// defaultTeardownDelay is how long a finished job's progress session stays
// registered so late readers can drain the final lines.
const defaultTeardownDelay = 2 * time.Second

// JobStore persists job records and guards their status transitions.
type JobStore interface {
	Create(userID string, kind models.JobKind, source string) (int64, error)
	UpdateStatus(id int64, status models.JobStatus, fileCount *int, errorMessage *string) error
}

// UserStore resolves the acting user so their library override applies.
type UserStore interface {
	Get(id string) (*models.User, error)
}

// Settings exposes the runtime overrides for static config defaults.
type Settings interface {
	EffectiveBool(key string, fallback bool) bool
}

// Pipeline orchestrates acquisition jobs end to end.
type Pipeline struct {
	cfg           *shared.Config
	logger        *log.Logger
	jobs          JobStore
	users         UserStore
	settings      Settings
	runner        CommandRunner
	progress      *Broadcaster
	teardownDelay time.Duration
}

// Options configures a Pipeline. Runner and Progress default to the real
// process runner and a fresh broadcaster when nil.
type Options struct {
	Config   *shared.Config
	Logger   *log.Logger
	Jobs     JobStore
	Users    UserStore
	Settings Settings
	Runner   CommandRunner
	Progress *Broadcaster
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		cfg:           opts.Config,
		logger:        opts.Logger,
		jobs:          opts.Jobs,
		users:         opts.Users,
		settings:      opts.Settings,
		runner:        opts.Runner,
		progress:      opts.Progress,
		teardownDelay: defaultTeardownDelay,
	}
	if p.runner == nil {
		p.runner = &ExecRunner{}
	}
	if p.progress == nil {
		p.progress = NewBroadcaster()
	}
	return p
}

// Progress returns the broadcaster so the HTTP layer can attach readers.
func (p *Pipeline) Progress() *Broadcaster {
	return p.progress
}

// Remote fetches a track from an external platform into the user's library.
//
// Validation failures surface before any job row exists. Once the row is
// created, every failure path records it as failed before returning.
func (p *Pipeline) Remote(ctx context.Context, userID string, kind models.JobKind, rawURL string) (*models.UploadResponse, error) {
	if err := p.kindEnabled(kind); err != nil {
		return nil, err
	}

	url, err := ValidateRemoteURL(kind, rawURL)
	if err != nil {
		return nil, err
	}

	user, err := p.users.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving user: %v", shared.ErrStorage, err)
	}
	musicDir, tempDir, err := library.Directories(p.cfg, user.LibraryPath)
	if err != nil {
		return nil, err
	}
	// The temp dir is shared per user, so a failed fetch must not leave
	// partial files behind for the next job to count as its own.
	defer library.Drain(tempDir)

	sessionID := shared.GenerateID()
	p.progress.Register(sessionID)
	p.progress.Send(sessionID, fmt.Sprintf("Starting %s download...", kind))

	logID, err := p.jobs.Create(userID, kind, url)
	if err != nil {
		p.progress.Unregister(sessionID)
		return nil, fmt.Errorf("%w: creating job record: %v", shared.ErrStorage, err)
	}
	if err := p.jobs.UpdateStatus(logID, models.StatusProcessing, nil, nil); err != nil {
		p.progress.Unregister(sessionID)
		return nil, fmt.Errorf("%w: starting job %d: %v", shared.ErrStorage, logID, err)
	}

	p.logger.Info("download started", "log_id", logID, "kind", kind, "user", user.Username)
	p.progress.Send(sessionID, "Downloading from "+url)

	count, err := p.fetch(ctx, kind, tempDir, url)
	if err != nil {
		p.finish(sessionID, logID, 0, "Download failed: "+err.Error())
		return nil, err
	}

	p.progress.Send(sessionID, fmt.Sprintf("Downloaded %d file(s), now processing...", count))

	if err := p.organize(ctx, tempDir, musicDir); err != nil {
		p.finish(sessionID, logID, count, "Processing failed: "+err.Error())
		return nil, err
	}

	if err := p.jobs.UpdateStatus(logID, models.StatusCompleted, &count, nil); err != nil {
		p.progress.Unregister(sessionID)
		return nil, fmt.Errorf("%w: completing job %d: %v", shared.ErrStorage, logID, err)
	}

	p.logger.Info("download complete", "log_id", logID, "files", count)
	p.progress.Send(sessionID, "✓ Complete!")
	p.progress.ScheduleUnregister(sessionID, p.teardownDelay)

	return &models.UploadResponse{
		Success:   true,
		Message:   fmt.Sprintf("Successfully downloaded and processed %d file(s)", count),
		LogID:     &logID,
		SessionID: sessionID,
	}, nil
}

// UploadedFile is one part of a direct multipart upload.
//
// Size is the declared length when the client supplied one, or -1 when
// unknown; the write path enforces the limit either way.
type UploadedFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// Upload receives directly uploaded files into the user's library. Direct
// uploads complete within the request, so no progress session is created.
//
// The job row exists before any part is inspected, so even an empty or
// immediately rejected upload leaves a failed record behind.
func (p *Pipeline) Upload(ctx context.Context, userID string, files []UploadedFile) (*models.UploadResponse, error) {
	user, err := p.users.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving user: %v", shared.ErrStorage, err)
	}
	musicDir, tempDir, err := library.Directories(p.cfg, user.LibraryPath)
	if err != nil {
		return nil, err
	}
	defer library.Drain(tempDir)

	logID, err := p.jobs.Create(userID, models.KindFile, "multipart upload")
	if err != nil {
		return nil, fmt.Errorf("%w: creating job record: %v", shared.ErrStorage, err)
	}
	if err := p.jobs.UpdateStatus(logID, models.StatusProcessing, nil, nil); err != nil {
		return nil, fmt.Errorf("%w: starting job %d: %v", shared.ErrStorage, logID, err)
	}

	count := 0
	for _, file := range files {
		if err := p.receive(tempDir, file); err != nil {
			p.fail(logID, count, err.Error())
			return nil, err
		}
		count++
	}

	if count == 0 {
		p.fail(logID, 0, shared.ErrNoFiles.Error())
		return nil, shared.ErrNoFiles
	}

	if err := p.organize(ctx, tempDir, musicDir); err != nil {
		p.fail(logID, count, "Processing failed: "+err.Error())
		return nil, err
	}

	if err := p.jobs.UpdateStatus(logID, models.StatusCompleted, &count, nil); err != nil {
		return nil, fmt.Errorf("%w: completing job %d: %v", shared.ErrStorage, logID, err)
	}

	p.logger.Info("upload complete", "log_id", logID, "files", count, "user", user.Username)

	return &models.UploadResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully uploaded and processed %d file(s)", count),
		LogID:   &logID,
	}, nil
}

// receive writes one uploaded file into tempDir under its sanitized name,
// enforcing the configured size limit. A file that overruns the limit
// mid-stream is removed before the error returns.
func (p *Pipeline) receive(tempDir string, file UploadedFile) error {
	name, err := SanitizeUploadFilename(file.Name, p.cfg.Upload.AllowedExtensions)
	if err != nil {
		return err
	}

	limit := p.cfg.MaxFileSizeBytes()
	if file.Size > limit {
		return fmt.Errorf("%w: %s is %d MB (max %d MB)",
			shared.ErrFileTooLarge, name, file.Size/(1024*1024), p.cfg.Upload.MaxFileSizeMB)
	}

	dst := filepath.Join(tempDir, name)
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", shared.ErrStorage, dst, err)
	}

	written, err := io.Copy(out, io.LimitReader(file.Content, limit+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: writing %s: %v", shared.ErrStorage, dst, err)
	}
	if written > limit {
		os.Remove(dst)
		return fmt.Errorf("%w: %s exceeds %d MB", shared.ErrFileTooLarge, name, p.cfg.Upload.MaxFileSizeMB)
	}

	return nil
}

// kindEnabled rejects remote kinds whose integration is switched off.
func (p *Pipeline) kindEnabled(kind models.JobKind) error {
	switch kind {
	case models.KindYouTube:
		if !p.cfg.YouTube.Enabled {
			return fmt.Errorf("%w: youtube downloads", shared.ErrFeatureDisabled)
		}
	case models.KindSpotify:
		if !p.cfg.Spotify.Enabled {
			return fmt.Errorf("%w: spotify downloads", shared.ErrFeatureDisabled)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", shared.ErrInvalidURL, kind)
	}
	return nil
}

// finish records a remote job failure and winds down its session.
func (p *Pipeline) finish(sessionID string, logID int64, count int, message string) {
	p.fail(logID, count, message)
	p.progress.Send(sessionID, "✗ "+message)
	p.progress.ScheduleUnregister(sessionID, p.teardownDelay)
}

// fail marks a job failed, best effort: the original error is what the
// caller reports, so a broken status write only warrants a warning.
func (p *Pipeline) fail(logID int64, count int, message string) {
	if err := p.jobs.UpdateStatus(logID, models.StatusFailed, &count, &message); err != nil {
		p.logger.Warn("failed to record job failure", "log_id", logID, "error", err)
	}
}
