package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/auth"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/pipeline"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/repositories"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/server"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

const shutdownGrace = 10 * time.Second

// Allow five quick attempts per host, then one every two seconds.
const (
	loginRatePerSecond = 0.5
	loginBurst         = 5
)

// Serve runs the HTTP service until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	users := repositories.NewUserRepository(db)
	jobs := repositories.NewJobLogRepository(db)
	settings := repositories.NewSettingRepository(db)

	if err := r.seedDefaultAdmin(users); err != nil {
		return err
	}

	authenticator := auth.NewAuthenticator(config.Security)
	pl := pipeline.New(pipeline.Options{
		Config:   config,
		Logger:   r.logger,
		Jobs:     jobs,
		Users:    users,
		Settings: settings,
	})

	handlers := server.NewHandlers(config, r.logger, authenticator, users, jobs, settings, pl)
	router := server.NewRouter(handlers, auth.NewLoginLimiter(loginRatePerSecond, loginBurst))
	srv := server.New(config, r.logger, router)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

// seedDefaultAdmin creates the admin/admin account on an empty users table so
// a fresh install has a way in. The credentials are logged loudly; they are
// meant to be rotated immediately.
func (r *Runner) seedDefaultAdmin(users *repositories.UserRepository) error {
	count, err := users.Count()
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	r.logger.Warn("no users found in database, creating default admin user")
	r.logger.Warn("DEFAULT CREDENTIALS - username: admin, password: admin")
	r.logger.Warn("change this password immediately after first login")

	hash, err := auth.HashPassword("admin")
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}
	return users.Create(&models.User{
		Username:     "admin",
		PasswordHash: hash,
		IsAdmin:      true,
	})
}
