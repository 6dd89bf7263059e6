package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/library"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// ytdlpArgs builds the yt-dlp argument vector for a single-track download
// into the user's temp directory.
//
// The format selector and player client are optional; operator passthrough
// flags go last so they can override anything before them, and the URL is
// always the final argument.
func ytdlpArgs(cfg *shared.YouTubeConfig, tempDir, url string) []string {
	args := []string{
		"--extract-audio",
		"--audio-format", cfg.AudioFormat,
	}

	if selector := strings.TrimSpace(cfg.FormatSelector); selector != "" {
		args = append(args, "-f", selector)
	}
	if client := strings.TrimSpace(cfg.PlayerClient); client != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+client)
	}

	args = append(args,
		"--output", filepath.Join(tempDir, "%(title)s.%(ext)s"),
		"--no-playlist",
	)
	args = append(args, cfg.ExtraArgs...)
	args = append(args, url)

	return args
}

// spotdlArgs builds the spotdl argument vector. The output template names
// files "Artist - Title" so the tagging step has something to work with even
// for untagged formats.
func spotdlArgs(cfg *shared.SpotifyConfig, tempDir, url string) []string {
	return []string{
		"download", url,
		"--output", filepath.Join(tempDir, "{artist} - {title}.{output-ext}"),
		"--format", cfg.AudioFormat,
	}
}

// fetch runs the downloader for the given kind and reports how many files
// landed in tempDir. A zero count after a clean exit is still a failure; the
// tool exiting 0 with nothing downloaded happens with region-locked tracks.
func (p *Pipeline) fetch(ctx context.Context, kind models.JobKind, tempDir, url string) (int, error) {
	var (
		binary  string
		args    []string
		timeout time.Duration
	)

	switch kind {
	case models.KindYouTube:
		binary = p.cfg.YouTube.YtdlpPath
		args = ytdlpArgs(&p.cfg.YouTube, tempDir, url)
		timeout = time.Duration(p.cfg.YouTube.TimeoutMinutes) * time.Minute
	case models.KindSpotify:
		binary = p.cfg.Spotify.SpotdlPath
		args = spotdlArgs(&p.cfg.Spotify, tempDir, url)
		timeout = time.Duration(p.cfg.Spotify.TimeoutMinutes) * time.Minute
	default:
		return 0, fmt.Errorf("%w: kind %s has no downloader", shared.ErrExternalTool, kind)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	p.logger.Debug("running downloader", "binary", binary, "kind", kind)
	if _, err := p.runner.Run(ctx, binary, args...); err != nil {
		return 0, err
	}

	count, err := library.CountFiles(tempDir)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: %s exited cleanly but produced no files", shared.ErrExternalTool, binary)
	}

	return count, nil
}
