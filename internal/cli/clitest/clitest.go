// Package clitest builds command contexts over throwaway SQLite databases.
package clitest

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/config"
	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/service"
	"github.com/julianstephens/neurozen/internal/storage/storagetest"
)

// Now is the instant every test context is pinned to.
var Now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

// NewContext returns a context over an initialized database with no users.
// Every user shares the returned clock.
func NewContext(t *testing.T) (*cli.Context, *calendar.FixedClock) {
	t.Helper()
	store := storagetest.OpenSQLite(t)
	clock := calendar.Fixed(Now)
	return &cli.Context{
		Ctx:     context.Background(),
		Config:  config.Config{Database: store.GetConfigPath(), AI: config.AIConfig{Timeout: constants.DefaultAITimeout}},
		Store:   store,
		Service: service.New(store, nil, service.WithClock(clock)),
	}, clock
}

// WithUser returns a context with one user, who CurrentUser resolves to.
func WithUser(t *testing.T) (*cli.Context, models.User, *calendar.FixedClock) {
	t.Helper()
	ctx, clock := NewContext(t)
	u, err := ctx.Service.CreateUser(ctx.Ctx, "ada", "Ada")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return ctx, u, clock
}
