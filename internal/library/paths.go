// Package library resolves the per-user filesystem sandbox and provides the
// file operations the acquisition pipeline performs inside it.
package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// MusicDir returns the effective library directory for a user.
//
// A user's library_path override replaces the global music root. When the
// override resolves to exactly the global root, a fixed "default"
// subdirectory is used instead so a misconfigured override never dumps files
// at the shared root.
func MusicDir(cfg *shared.Config, libraryPath *string) string {
	if libraryPath == nil || *libraryPath == "" {
		return cfg.Paths.MusicDir
	}

	userPath := filepath.Clean(*libraryPath)
	if userPath == filepath.Clean(cfg.Paths.MusicDir) {
		return filepath.Join(cfg.Paths.MusicDir, "default")
	}
	return userPath
}

// TempDir returns the effective scratch directory for a user.
//
// Overridden users get {library_path}/tmp. When the override equals the
// global music root the global temp directory is used instead, so the
// working directory is never nested where it would be swept up as library
// content.
func TempDir(cfg *shared.Config, libraryPath *string) string {
	if libraryPath == nil || *libraryPath == "" {
		return cfg.Paths.TempDir
	}

	userPath := filepath.Clean(*libraryPath)
	if userPath == filepath.Clean(cfg.Paths.MusicDir) {
		return cfg.Paths.TempDir
	}
	return filepath.Join(userPath, "tmp")
}

// EnsureExists idempotently creates a directory tree.
func EnsureExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", shared.ErrStorage, path, err)
	}
	return nil
}

// Directories resolves and creates the (music, temp) pair for a user.
func Directories(cfg *shared.Config, libraryPath *string) (string, string, error) {
	musicDir := MusicDir(cfg, libraryPath)
	tempDir := TempDir(cfg, libraryPath)

	if err := EnsureExists(musicDir); err != nil {
		return "", "", err
	}
	if err := EnsureExists(tempDir); err != nil {
		return "", "", err
	}

	return musicDir, tempDir, nil
}
