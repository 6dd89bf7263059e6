package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/repositories"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/ui"
)

// Tui launches the interactive upload history browser.
func (r *Runner) Tui(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/upload-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	jobs := repositories.NewJobLogRepository(db)
	model := ui.NewModel(jobs, "", int(cmd.Int("limit")))
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
