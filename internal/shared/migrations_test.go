package shared

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrations(t *testing.T) {
	t.Run("LoadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		if len(migrations) == 0 {
			t.Fatal("expected at least one embedded migration")
		}
		for i, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration %d incomplete: %+v", m.Version, m)
			}
			if i > 0 && migrations[i-1].Version >= m.Version {
				t.Error("migrations should be sorted by version")
			}
		}
	})

	t.Run("RunMigrations", func(t *testing.T) {
		db := testDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		// play_history must exist afterwards
		if _, err := db.Exec("INSERT INTO play_history (track_id, uri, title, artist, album) VALUES ('t1', 'spotify:track:t1', 'Song', 'Artist', 'Album')"); err != nil {
			t.Errorf("play_history should be usable after migration: %v", err)
		}

		version, err := getCurrentVersion(db)
		if err != nil {
			t.Fatal(err)
		}
		if version != 1 {
			t.Errorf("expected version 1 applied, got %d", version)
		}
	})

	t.Run("RunMigrationsIsIdempotent", func(t *testing.T) {
		db := testDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatal(err)
		}
		if err := RunMigrations(db); err != nil {
			t.Errorf("second run should be a no-op, got %v", err)
		}
	})

	t.Run("Rollback", func(t *testing.T) {
		db := testDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatal(err)
		}
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if _, err := db.Exec("INSERT INTO play_history (track_id) VALUES ('x')"); err == nil {
			t.Error("play_history should be gone after rollback")
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("rollback with nothing applied should fail")
		}
	})
}
