package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/migration"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/storage/sqldb"
	"github.com/julianstephens/neurozen/migrations"
)

// Store is the PostgreSQL provider. WithUserTx locks the user's row, so
// transactions for different users run in parallel.
type Store struct {
	*sqldb.Queries

	connStr string
	db      *sql.DB
}

var _ storage.Provider = (*Store)(nil)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	s := &Store{
		connStr: connStr,
	}
	s.ensureSearchPath()
	return s
}

func (s *Store) ensureSearchPath() {
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
	} else if !hasParam(s.connStr, "search_path") {
		s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
	}
}

// hasParam reports whether a DSN-style connection string carries key
// (case-insensitive).
func hasParam(connStr, key string) bool {
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], key) {
			return true
		}
	}
	return false
}

// hasSSLMode checks for an sslmode parameter in URL or DSN form.
func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	return hasParam(connStr, "sslmode")
}

// ValidateConnString checks that connStr is a PostgreSQL URI or DSN without
// an embedded password. Passwords belong in the keyring or .pgpass.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := parsedURL.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}
		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return true, nil
	}

	if hasParam(connStr, "password") {
		return false, ErrEmbeddedCredentials
	}
	return true, nil
}

func (s *Store) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	s.Queries = sqldb.New(db, sqldb.Postgres)
	return nil
}

func (s *Store) Init() error {
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
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
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		panic(fmt.Sprintf("postgres migrations missing: %v", err))
	}
	return migration.NewRunner(s.db, subFS, migration.Postgres)
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

func lockUser(userID string) sqldb.LockFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to lock user %s: %w", userID, err)
		}
		return nil
	}
}

func (s *Store) WithUserTx(ctx context.Context, userID string, fn func(storage.Tx) error) error {
	return sqldb.InTx(ctx, s.db, s.Queries, lockUser(userID), func(q *sqldb.Queries) error {
		return fn(q)
	})
}

func (s *Store) GetConfigPath() string {
	// non-sensitive identifier instead of the connection string
	return "postgresql"
}
