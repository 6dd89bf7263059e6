package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// Output carries the captured streams of a finished tool invocation.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner abstracts process execution so the pipeline can be exercised
// without the real yt-dlp, spotdl, or ferric binaries on PATH.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (*Output, error)
}

// ExecRunner runs tools through os/exec with context cancellation.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := &Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return out, fmt.Errorf("%w: %s timed out or was canceled: %v", shared.ErrExternalTool, name, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(out.Stderr)
			if detail == "" {
				detail = strings.TrimSpace(out.Stdout)
			}
			return out, fmt.Errorf("%w: %s exited with code %d: %s", shared.ErrExternalTool, name, out.ExitCode, detail)
		}
		return out, fmt.Errorf("%w: failed to start %s: %v", shared.ErrExternalTool, name, err)
	}

	return out, nil
}
