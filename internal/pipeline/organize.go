package pipeline

import (
	"context"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/library"
)

// ferricEnabledKey is the settings-store override for the static
// paths.ferric_enabled config default.
const ferricEnabledKey = "ferric_enabled"

// organize moves the fetched files from tempDir into the user's library.
//
// When the tagging tool is enabled it owns the move: it reads tempDir and
// writes tagged copies under musicDir. When disabled the files are moved
// as-is. Draining the leftovers is the orchestrator's job; it happens on
// failed runs too.
func (p *Pipeline) organize(ctx context.Context, tempDir, musicDir string) error {
	if p.settings.EffectiveBool(ferricEnabledKey, p.cfg.Paths.FerricEnabled) {
		_, err := p.runner.Run(ctx, p.cfg.Paths.FerricPath,
			"--input-dir", tempDir,
			"--output-dir", musicDir,
		)
		return err
	}

	return library.MoveContents(tempDir, musicDir)
}
