// Package storagetest provides fixtures and a behavioural suite shared by the
// storage providers and the packages built on them.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/storage/sqlite"
)

// OpenSQLite returns an initialized store in a temporary directory.
func OpenSQLite(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// CreateUser adds a user with a unique username and the given balance.
func CreateUser(t *testing.T, p storage.Provider, points int) models.User {
	t.Helper()
	id := uuid.New().String()
	u := models.User{
		ID:          id,
		Username:    "user-" + id[:8],
		DisplayName: "Test User",
		Points:      points,
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.AddUser(context.Background(), u); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}
	return u
}

// CreateTask adds a todo task in the user's "work" category.
func CreateTask(t *testing.T, p storage.Provider, userID string, points int) models.Task {
	t.Helper()
	ctx := context.Background()
	cat, err := p.GetCategoryByName(ctx, userID, "work")
	if err != nil {
		t.Fatalf("failed to get default category: %v", err)
	}
	task := models.Task{
		ID:         uuid.New().String(),
		CategoryID: cat.ID,
		UserID:     userID,
		Title:      "task " + uuid.New().String()[:6],
		Priority:   constants.PriorityMedium,
		Status:     constants.TaskStatusTodo,
		Points:     points,
		CreatedAt:  time.Now().UTC(),
	}
	if err := p.AddTask(ctx, task); err != nil {
		t.Fatalf("failed to add task: %v", err)
	}
	return task
}

// CreateReward adds an active, unclaimed reward priced at points.
func CreateReward(t *testing.T, p storage.Provider, userID string, points int) models.Reward {
	t.Helper()
	r := models.Reward{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     "reward " + uuid.New().String()[:6],
		Points:    points,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.AddReward(context.Background(), r); err != nil {
		t.Fatalf("failed to add reward: %v", err)
	}
	return r
}

// Balance reads the user's current points.
func Balance(t *testing.T, p storage.Provider, userID string) int {
	t.Helper()
	u, err := p.GetUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	return u.Points
}
