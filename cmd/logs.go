package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/formatter"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/repositories"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// Logs prints upload job history in the requested format.
func (r *Runner) Logs(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	userID := ""
	if username := cmd.String("user"); username != "" {
		user, err := repositories.NewUserRepository(db).GetByUsername(username)
		if err != nil {
			return err
		}
		userID = user.ID
	}

	logs, err := repositories.NewJobLogRepository(db).List(userID, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list job logs: %w", err)
	}

	var output []byte
	switch format := cmd.String("format"); format {
	case "text":
		output, err = formatter.ExportToText(logs)
	case "csv":
		output, err = formatter.ExportToCSV(logs)
	case "json":
		output, err = formatter.ExportToJSON(logs)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrMissingArgument, format)
	}
	if err != nil {
		return fmt.Errorf("failed to format logs: %w", err)
	}

	return r.writePlain("%s", output)
}
