package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/storage/sqlite"
	"github.com/julianstephens/neurozen/internal/storage/storagetest"
)

func TestProviderSuite(t *testing.T) {
	storagetest.RunProviderSuite(t, func(t *testing.T) storage.Provider {
		return storagetest.OpenSQLite(t)
	})
}

func TestLoadRequiresInit(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if err == nil || !strings.Contains(err.Error(), "neurozen init") {
		t.Errorf("Load() error = %v, want init hint", err)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	reopened := sqlite.NewStore(path)
	if err := reopened.Init(); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	defer reopened.Close()

	pending, err := reopened.PendingMigrations(context.Background())
	if err != nil || pending != 0 {
		t.Errorf("PendingMigrations = %d, %v; want 0", pending, err)
	}
	if reopened.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", reopened.GetConfigPath(), path)
	}
}
