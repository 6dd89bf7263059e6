package shared

import (
	"testing"
)

func TestMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	t.Run("RunMigrations", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Fatalf("migrations failed: %v", err)
		}

		for _, table := range []string{"users", "upload_logs", "settings"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
			if err != nil {
				t.Errorf("expected table %s to exist: %v", table, err)
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second migration run should be a no-op: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to count migrations: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 applied migration, got %d", count)
		}
	})

	t.Run("Rollback", func(t *testing.T) {
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}

		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = 'upload_logs'").Scan(&name)
		if err == nil {
			t.Error("upload_logs should be dropped after rollback")
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("rollback with no applied migrations should fail")
		}
	})
}
