package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/migration"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/storage/sqldb"
	"github.com/julianstephens/neurozen/migrations"
)

// Store is the single-file SQLite provider.
//
// SQLite has one writer per database, so WithUserTx serializes writers for
// all users rather than per user. The pool is limited to one connection and
// transactions start with BEGIN IMMEDIATE.
type Store struct {
	*sqldb.Queries

	path string
	db   *sql.DB
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func dsn(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", dsn(s.path))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s.db = db
	s.Queries = sqldb.New(db, sqldb.SQLite)
	return nil
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.Migrate(context.Background(), func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'neurozen init' first")
	}

	if err := s.open(); err != nil {
		return err
	}
	return s.runner().ValidateVersion(context.Background())
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// the embedded directory is fixed at compile time
		panic(fmt.Sprintf("sqlite migrations missing: %v", err))
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite)
}

// Migrate applies pending migrations and returns how many ran.
func (s *Store) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	return s.runner().ApplyMigrations(ctx, logFn)
}

// CheckSchema fails when the database was written by a newer version.
func (s *Store) CheckSchema(ctx context.Context) error {
	return s.runner().ValidateVersion(ctx)
}

// PendingMigrations reports how many migrations have not been applied.
func (s *Store) PendingMigrations(ctx context.Context) (int, error) {
	return s.runner().Pending(ctx)
}

func (s *Store) AddUser(ctx context.Context, u models.User) error {
	return sqldb.InTx(ctx, s.db, s.Queries, nil, func(q *sqldb.Queries) error {
		return q.InsertUser(ctx, u)
	})
}

func (s *Store) WithUserTx(ctx context.Context, userID string, fn func(storage.Tx) error) error {
	return sqldb.InTx(ctx, s.db, s.Queries, nil, func(q *sqldb.Queries) error {
		return fn(q)
	})
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
