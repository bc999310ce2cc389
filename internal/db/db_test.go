package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	database, err := New(path, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return database
}

func TestNew_CreatesSchema(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "nested", "studio.db"))
	defer database.Close()

	for _, table := range []string{"projects", "config", "media_metadata", "_migrations"} {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestNew_WALEnabled(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "studio.db"))
	defer database.Close()

	var journalMode string
	if err := database.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}
}

func TestNew_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.db")

	db1 := openTestDB(t, path)
	if _, err := db1.Conn().Exec(
		`INSERT INTO projects (id, name, dir, created_at, updated_at) VALUES ('p1', 'demo', '/p', datetime('now'), datetime('now'))`,
	); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	db1.Close()

	db2 := openTestDB(t, path)
	defer db2.Close()

	var count int
	if err := db2.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations error = %v", err)
	}
	if count != 2 {
		t.Errorf("migration count = %d, want 2", count)
	}

	if err := db2.Conn().QueryRow("SELECT COUNT(*) FROM projects").Scan(&count); err != nil || count != 1 {
		t.Errorf("projects after reopen = %d, %v", count, err)
	}
}
