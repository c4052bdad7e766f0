// Package sqldb holds the SQL shared by the SQLite and PostgreSQL stores.
// Queries are written with ? placeholders and rebound for PostgreSQL.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// timeLayout is fixed width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries implements the read side of storage.Provider and all of storage.Tx.
type Queries struct {
	db      DBTX
	dialect Dialect
}

func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

// WithTx returns a copy of q bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

func (q *Queries) rebind(query string) string {
	if q.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.rebind(query), args...)
}

// execOne runs a mutation that must touch exactly one row and reports whether it did.
func (q *Queries) execOne(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := q.exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, apperrors.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %s: %w", what, id, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullDay(d calendar.Day) any {
	if d == "" {
		return nil
	}
	return string(d)
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
