package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// CountFiles counts plain files (not directories) directly inside dir.
func CountFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, dir, err)
	}

	count := 0
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			count++
		}
	}
	return count, nil
}

// MoveContents moves every plain file in src into dst.
//
// Copy-then-delete rather than rename so moves stay correct when src and dst
// live on different volumes.
func MoveContents(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, src, err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		if err := copyFile(from, to); err != nil {
			return err
		}
		if err := os.Remove(from); err != nil {
			return fmt.Errorf("%w: failed to remove %s: %v", shared.ErrStorage, from, err)
		}
	}

	return nil
}

// Drain removes every plain file in dir, best-effort. Subdirectories are
// left alone.
func Drain(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.Type().IsRegular() {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", shared.ErrStorage, src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", shared.ErrStorage, dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: failed to copy %s: %v", shared.ErrStorage, src, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: failed to flush %s: %v", shared.ErrStorage, dst, err)
	}

	return nil
}
