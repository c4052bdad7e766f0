package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/neurozen/internal/backup"
	"github.com/julianstephens/neurozen/internal/config"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/service"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/storage/sqlite"
)

// Context is handed to every command's Run method.
type Context struct {
	Ctx     context.Context
	Config  config.Config
	Store   storage.Provider
	Service *service.Service
	// User is the --user flag; empty selects the only existing user.
	User string
}

// Migrator is implemented by the stores that track a schema version.
type Migrator interface {
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	PendingMigrations(ctx context.Context) (int, error)
	CheckSchema(ctx context.Context) error
}

// Context returns the command's context.
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// CurrentUser resolves the user the command acts for.
func (c *Context) CurrentUser() (models.User, error) {
	ctx := c.Context()
	if name := strings.TrimSpace(c.User); name != "" {
		u, err := c.Service.UserByName(ctx, name)
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.User{}, fmt.Errorf("no user named %q, create one with 'neurozen user add %s'", name, name)
		}
		return u, err
	}

	users, err := c.Service.Users(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to list users: %w", err)
	}
	switch len(users) {
	case 0:
		return models.User{}, errors.New("no users yet, create one with 'neurozen user add <name>'")
	case 1:
		return users[0], nil
	default:
		return models.User{}, errors.New("several users exist, choose one with --user")
	}
}

// IsSQLite reports whether the store is a local database file.
func (c *Context) IsSQLite() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// PerformAutomaticBackup snapshots the SQLite database and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(c.Context()); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ShortID is the id prefix shown in listings.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ResolveID expands an id prefix to the one id in ids that starts with it.
// An exact match always wins.
func ResolveID(kind, prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%s id is required", kind)
	}
	var matches []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %s: %w", kind, prefix, apperrors.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, prefix, len(matches))
	}
}
