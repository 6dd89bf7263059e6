package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/auth"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/repositories"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// UserAdd creates an account from the command line, bypassing the HTTP API.
func (r *Runner) UserAdd(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	password := cmd.String("password")
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", shared.ErrMissingArgument)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     cmd.String("username"),
		PasswordHash: hash,
		IsAdmin:      cmd.Bool("admin"),
	}
	if path := cmd.String("library-path"); path != "" {
		user.LibraryPath = &path
	}

	if err := repositories.NewUserRepository(db).Create(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("user created", "username", user.Username, "admin", user.IsAdmin)
	r.writePlain("✓ Created account %s\n", user.Username)
	return nil
}

// UserList prints every account.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db).List()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, true)
	}

	for _, user := range users {
		role := "user"
		if user.IsAdmin {
			role = "admin"
		}
		library := "(shared library)"
		if user.LibraryPath != nil {
			library = *user.LibraryPath
		}
		r.writePlain("%s  %-5s  %s\n", user.Username, role, library)
	}
	return nil
}

// UserSetPassword resets an account's password without the old one; this is
// the recovery path when the only admin locks themselves out.
func (r *Runner) UserSetPassword(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	password := cmd.String("password")
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", shared.ErrMissingArgument)
	}

	users := repositories.NewUserRepository(db)
	user, err := users.GetByUsername(cmd.String("username"))
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := users.UpdatePassword(user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	r.writePlain("✓ Password updated for %s\n", user.Username)
	return nil
}
