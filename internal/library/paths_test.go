package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

func testConfig() *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Paths.MusicDir = "/srv/navidrome/music"
	cfg.Paths.TempDir = "/srv/navidrome/tmp"
	return cfg
}

func strptr(s string) *string { return &s }

func TestMusicDir(t *testing.T) {
	cfg := testConfig()

	t.Run("WithOverride", func(t *testing.T) {
		got := MusicDir(cfg, strptr("/srv/navidrome/music/jcledesma"))
		if got != "/srv/navidrome/music/jcledesma" {
			t.Errorf("expected override path, got %s", got)
		}
	})

	t.Run("WithoutOverride", func(t *testing.T) {
		if got := MusicDir(cfg, nil); got != cfg.Paths.MusicDir {
			t.Errorf("expected global music dir, got %s", got)
		}
		if got := MusicDir(cfg, strptr("")); got != cfg.Paths.MusicDir {
			t.Errorf("empty override should fall back to global, got %s", got)
		}
	})

	t.Run("OverrideEqualsGlobalRoot", func(t *testing.T) {
		got := MusicDir(cfg, strptr(cfg.Paths.MusicDir))
		want := filepath.Join(cfg.Paths.MusicDir, "default")
		if got != want {
			t.Errorf("root-equal override must use %s, got %s", want, got)
		}
	})

	t.Run("OverrideEqualsGlobalRootTrailingSlash", func(t *testing.T) {
		got := MusicDir(cfg, strptr(cfg.Paths.MusicDir+"/"))
		want := filepath.Join(cfg.Paths.MusicDir, "default")
		if got != want {
			t.Errorf("trailing slash should still match the root, got %s", got)
		}
	})
}

func TestTempDir(t *testing.T) {
	cfg := testConfig()

	t.Run("WithOverride", func(t *testing.T) {
		got := TempDir(cfg, strptr("/srv/navidrome/music/jcledesma"))
		if got != "/srv/navidrome/music/jcledesma/tmp" {
			t.Errorf("expected override tmp path, got %s", got)
		}
	})

	t.Run("WithoutOverride", func(t *testing.T) {
		if got := TempDir(cfg, nil); got != cfg.Paths.TempDir {
			t.Errorf("expected global temp dir, got %s", got)
		}
	})

	t.Run("OverrideEqualsGlobalRoot", func(t *testing.T) {
		// The working directory must never nest inside the "default"
		// subdirectory where it would be swept up as library content.
		got := TempDir(cfg, strptr(cfg.Paths.MusicDir))
		if got != cfg.Paths.TempDir {
			t.Errorf("root-equal override must use global temp dir, got %s", got)
		}
	})
}

func TestEnsureExists(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "a", "b", "c")

	if err := EnsureExists(path); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := EnsureExists(path); err != nil {
		t.Fatalf("second create should be a no-op: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory at %s", path)
	}
}

func TestDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := shared.DefaultConfig()
	cfg.Paths.MusicDir = filepath.Join(base, "music")
	cfg.Paths.TempDir = filepath.Join(base, "tmp")

	music, temp, err := Directories(cfg, strptr(filepath.Join(base, "music", "alice")))
	if err != nil {
		t.Fatalf("directories failed: %v", err)
	}

	for _, dir := range []string{music, temp} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected created directory at %s", dir)
		}
	}

	if music != filepath.Join(base, "music", "alice") {
		t.Errorf("unexpected music dir %s", music)
	}
	if temp != filepath.Join(base, "music", "alice", "tmp") {
		t.Errorf("unexpected temp dir %s", temp)
	}
}
