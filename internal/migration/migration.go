package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Dialect selects the bind-parameter syntax used for the bookkeeping queries.
type Dialect int

const (
	// SQLite uses ? placeholders.
	SQLite Dialect = iota
	// Postgres uses $N placeholders.
	Postgres
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Runner manages database schema migrations
type Runner struct {
	db      *sql.DB
	fs      fs.FS
	dialect Dialect
}

// NewRunner creates a new migration runner reading NNN_name.sql files from migrationFS.
func NewRunner(db *sql.DB, migrationFS fs.FS, dialect Dialect) *Runner {
	return &Runner{
		db:      db,
		fs:      migrationFS,
		dialect: dialect,
	}
}

func (r *Runner) insertVersionSQL() string {
	if r.dialect == Postgres {
		return "INSERT INTO schema_version (version) VALUES ($1)"
	}
	return "INSERT INTO schema_version (version) VALUES (?)"
}

// EnsureSchemaVersionTable creates the schema_version table if it doesn't exist
func (r *Runner) EnsureSchemaVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`)
	return err
}

// GetCurrentVersion returns the current schema version from the database.
// Returns 0 if no version is set (fresh database).
func (r *Runner) GetCurrentVersion(ctx context.Context) (int, error) {
	if err := r.EnsureSchemaVersionTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	var version int
	err := r.db.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// ReadMigrationFiles reads and parses migration files, sorted by version.
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	files, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		// "001_init.sql" -> 1
		parts := strings.SplitN(file.Name(), "_", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid migration filename format: %s (expected NNN_name.sql)", file.Name())
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in filename %s: %w", file.Name(), err)
		}
		if version < 1 {
			return nil, fmt.Errorf("invalid version number in filename %s: version must be at least 1", file.Name())
		}

		content, err := fs.ReadFile(r.fs, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}

	return migrations, nil
}

// GetLatestVersion returns the highest migration version available
func (r *Runner) GetLatestVersion() (int, error) {
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return 0, nil
	}
	return migrations[len(migrations)-1].Version, nil
}

// ApplyMigrations applies all pending migrations up to the latest version.
// Returns the number of migrations applied.
func (r *Runner) ApplyMigrations(ctx context.Context, logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	currentVersion, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}

	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}

	if len(migrations) == 0 {
		logFn("No migration files found")
		return 0, nil
	}

	latestVersion := migrations[len(migrations)-1].Version
	if currentVersion > latestVersion {
		return 0, fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", currentVersion, latestVersion)
	}

	var pending []Migration
	for _, m := range migrations {
		if m.Version > currentVersion {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", currentVersion))
		return 0, nil
	}

	logFn(fmt.Sprintf("Current schema version: %d", currentVersion))
	logFn(fmt.Sprintf("Target schema version: %d", latestVersion))
	logFn(fmt.Sprintf("Applying %d migration(s)...", len(pending)))

	startTime := time.Now()
	applied := 0

	for _, m := range pending {
		logFn(fmt.Sprintf("  Applying migration %d: %s", m.Version, m.Name))
		if err := r.apply(ctx, m); err != nil {
			return applied, err
		}
		applied++
		logFn(fmt.Sprintf("  ✓ Migration %d applied successfully", m.Version))
	}

	logFn(fmt.Sprintf("Applied %d migration(s) in %v", applied, time.Since(startTime)))
	return applied, nil
}

// apply runs one migration and records its version in the same transaction.
func (r *Runner) apply(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.Version, err)
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear version in migration %d: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, r.insertVersionSQL(), m.Version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to set version in migration %d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

// ValidateVersion checks if the database version is compatible with the application
func (r *Runner) ValidateVersion(ctx context.Context) error {
	currentVersion, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return err
	}

	latestVersion, err := r.GetLatestVersion()
	if err != nil {
		return err
	}

	if currentVersion > latestVersion {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", currentVersion, latestVersion)
	}
	return nil
}

// Pending returns how many migrations have not been applied yet.
func (r *Runner) Pending(ctx context.Context) (int, error) {
	current, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return 0, err
	}
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range migrations {
		if m.Version > current {
			n++
		}
	}
	return n, nil
}
