package migration

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/neurozen/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func memFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func TestGetCurrentVersionFreshDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, memFS(map[string]string{"001_test.sql": "CREATE TABLE test (id INTEGER);"}), SQLite)

	version, err := runner.GetCurrentVersion(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	runner := NewRunner(setupTestDB(t), memFS(map[string]string{
		"002_second.sql": "SELECT 2;",
		"001_first.sql":  "SELECT 1;",
		"README.md":      "ignored",
	}), SQLite)

	got, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d migrations, want 2", len(got))
	}
	if got[0].Version != 1 || got[0].Name != "first" || got[1].Version != 2 {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestReadMigrationFilesRejectsBadNames(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{name: "no underscore", files: map[string]string{"001.sql": "SELECT 1;"}, want: "invalid migration filename"},
		{name: "non numeric", files: map[string]string{"abc_x.sql": "SELECT 1;"}, want: "invalid version number"},
		{name: "zero version", files: map[string]string{"000_x.sql": "SELECT 1;"}, want: "at least 1"},
		{name: "duplicate", files: map[string]string{"001_a.sql": "SELECT 1;", "1_b.sql": "SELECT 1;"}, want: "duplicate migration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(setupTestDB(t), memFS(tt.files), SQLite).ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ReadMigrationFiles() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestApplyMigrationsIncremental(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	files := map[string]string{"001_users.sql": "CREATE TABLE users (id TEXT PRIMARY KEY);"}

	applied, err := NewRunner(db, memFS(files), SQLite).ApplyMigrations(ctx, nil)
	if err != nil || applied != 1 {
		t.Fatalf("first ApplyMigrations = %d, %v; want 1, nil", applied, err)
	}

	files["002_points.sql"] = "ALTER TABLE users ADD COLUMN points INTEGER NOT NULL DEFAULT 0;"
	runner := NewRunner(db, memFS(files), SQLite)

	pending, err := runner.Pending(ctx)
	if err != nil || pending != 1 {
		t.Fatalf("Pending() = %d, %v; want 1", pending, err)
	}

	var logs []string
	applied, err = runner.ApplyMigrations(ctx, func(s string) { logs = append(logs, s) })
	if err != nil || applied != 1 {
		t.Fatalf("second ApplyMigrations = %d, %v; want 1, nil", applied, err)
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}

	version, _ := runner.GetCurrentVersion(ctx)
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	applied, err = runner.ApplyMigrations(ctx, nil)
	if err != nil || applied != 0 {
		t.Errorf("no-op ApplyMigrations = %d, %v; want 0, nil", applied, err)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, memFS(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE broken (id INTEGER); THIS IS NOT SQL;",
	}), SQLite)

	applied, err := runner.ApplyMigrations(ctx, nil)
	if err == nil {
		t.Fatal("expected an error from the broken migration")
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}

	version, _ := runner.GetCurrentVersion(ctx)
	if version != 1 {
		t.Errorf("version = %d, want 1 after rollback", version)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, memFS(map[string]string{"001_a.sql": "SELECT 1;"}), SQLite)

	if err := runner.EnsureSchemaVersionTable(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (9)"); err != nil {
		t.Fatal(err)
	}

	err := runner.ValidateVersion(ctx)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("ValidateVersion() error = %v", err)
	}
}

func TestEmbeddedSQLiteSchemaApplies(t *testing.T) {
	ctx := context.Background()
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatal(err)
	}
	db := setupTestDB(t)
	runner := NewRunner(db, sub, SQLite)

	if _, err := runner.ApplyMigrations(ctx, nil); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}

	for _, table := range []string{"users", "tasks", "rewards", "pomodoro_sessions", "mood_entries", "daily_summaries", "point_transactions"} {
		var n int
		if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&n); err != nil || n != 1 {
			t.Errorf("table %s missing (n=%d, err=%v)", table, n, err)
		}
	}
}

func TestEmbeddedDialectsStayInStep(t *testing.T) {
	versions := func(dir string) []int {
		sub, err := fs.Sub(migrations.FS, dir)
		if err != nil {
			t.Fatal(err)
		}
		ms, err := NewRunner(nil, sub, SQLite).ReadMigrationFiles()
		if err != nil {
			t.Fatal(err)
		}
		var out []int
		for _, m := range ms {
			out = append(out, m.Version)
		}
		return out
	}

	lite, pg := versions("sqlite"), versions("postgres")
	if len(lite) != len(pg) {
		t.Fatalf("sqlite has %d migrations, postgres has %d", len(lite), len(pg))
	}
	for i := range lite {
		if lite[i] != pg[i] {
			t.Errorf("migration %d: sqlite v%d, postgres v%d", i, lite[i], pg[i])
		}
	}
}
