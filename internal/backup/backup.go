// Package backup snapshots and restores the SQLite ledger database.
// Snapshots are written with VACUUM INTO next to the database and rotated
// to keep the newest constants.MaxBackups.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/logger"
)

const (
	minuteLayout = "20060102-1504"
	secondLayout = "20060102-150405"
)

// backupName matches neurozen-<timestamp>[-<n>].db
var backupName = regexp.MustCompile(`^` + regexp.QuoteMeta(constants.BackupFilePrefix) +
	`(\d{8}-\d{4}(?:\d{2})?)(?:-\d+)?` + regexp.QuoteMeta(constants.BackupFileSuffix) + `$`)

// Info describes one snapshot on disk.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

type Manager struct {
	dbPath    string
	backupDir string
	now       func() time.Time
}

// NewManager manages snapshots of dbPath in a backups directory beside it.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		now:       time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.backupDir
}

// Create writes a new snapshot and rotates old ones.
func (m *Manager) Create(ctx context.Context) (string, error) {
	path, err := m.create(ctx)
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "dir", m.backupDir, "error", err)
	}
	logger.Info("Backup created", "path", path)
	return path, nil
}

func (m *Manager) create(ctx context.Context) (string, error) {
	if _, err := os.Stat(m.dbPath); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return "", err
	}
	if err := m.snapshot(ctx, path); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}
	return path, nil
}

// nextPath picks an unused file name, widening to seconds and then a
// counter when several snapshots land in the same minute.
func (m *Manager) nextPath() (string, error) {
	now := m.now()
	candidate := func(layout string, n int) string {
		name := constants.BackupFilePrefix + now.Format(layout)
		if n > 0 {
			name += fmt.Sprintf("-%d", n)
		}
		return filepath.Join(m.backupDir, name+constants.BackupFileSuffix)
	}

	if p := candidate(minuteLayout, 0); !exists(p) {
		return p, nil
	}
	for n := 0; n <= 100; n++ {
		if p := candidate(secondLayout, n); !exists(p) {
			return p, nil
		}
	}
	return "", errors.New("failed to generate unique backup filename")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (m *Manager) snapshot(ctx context.Context, dest string) error {
	db, err := sql.Open("sqlite", "file:"+m.dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := validate(ctx, db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return err
	}
	return nil
}

func validate(ctx context.Context, db *sql.DB) error {
	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

// List returns snapshots newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := backupName.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		layout := minuteLayout
		if len(match[1]) == len(secondLayout) {
			layout = secondLayout
		}
		ts, err := time.ParseInLocation(layout, match[1], time.Local)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the snapshot at path. The current
// database, if any, is snapshotted first; its path is returned. The store
// must be closed while restoring.
func (m *Manager) Restore(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("backup file does not exist: %s", path)
	}
	if err := Verify(ctx, path); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous string
	if exists(m.dbPath) {
		p, err := m.create(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to backup current database before restore: %w", err)
		}
		previous = p
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return "", fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return "", fmt.Errorf("failed to restore database: %w", err)
	}
	// stale WAL files belong to the replaced database
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove stale WAL file", "path", m.dbPath+suffix, "error", err)
		}
	}

	logger.Info("Database restored", "from", path, "previous", previous)
	return previous, nil
}

// Verify checks that path is a readable SQLite database.
func Verify(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return err
	}
	defer db.Close()
	return validate(ctx, db)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
