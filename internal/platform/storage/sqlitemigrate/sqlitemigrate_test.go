package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrationsCreatesSchema(t *testing.T) {
	sqlDB := openTestDB(t)

	migrations := fstest.MapFS{
		"0001_widgets.sql": &fstest.MapFile{Data: []byte(`CREATE TABLE widgets (id TEXT PRIMARY KEY);`)},
		"0002_gadgets.sql": &fstest.MapFile{Data: []byte(`CREATE TABLE gadgets (id TEXT PRIMARY KEY);`)},
	}

	if err := ApplyMigrations(sqlDB, migrations); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	for _, table := range []string{"widgets", "gadgets"} {
		var name string
		err := sqlDB.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s: %v", table, err)
		}
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	sqlDB := openTestDB(t)

	migrations := fstest.MapFS{
		"0001_widgets.sql": &fstest.MapFile{Data: []byte(`CREATE TABLE widgets (id TEXT PRIMARY KEY);`)},
	}

	if err := ApplyMigrations(sqlDB, migrations); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := ApplyMigrations(sqlDB, migrations); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", count)
	}
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	if err := ApplyMigrations(nil, fstest.MapFS{}); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestApplyMigrationsSkipsEmptyFiles(t *testing.T) {
	sqlDB := openTestDB(t)

	migrations := fstest.MapFS{
		"0001_empty.sql": &fstest.MapFile{Data: []byte("\n\n")},
	}
	if err := ApplyMigrations(sqlDB, migrations); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
}
