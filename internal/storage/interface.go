package storage

import (
	"context"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/models"
)

// DayActivity holds the counts the daily summary and the dashboard are built from.
type DayActivity struct {
	TasksDue        int
	TasksCompleted  int
	TasksPending    int
	SessionsStarted int
	CompletedTitles []string
}

// Provider is the record store. Reads run on the shared pool; every mutation
// of ledger-owned state goes through WithUserTx.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Users
	AddUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)

	// Preferences
	GetPreferences(ctx context.Context, userID string) (models.Preferences, error)
	SavePreferences(ctx context.Context, p models.Preferences) error

	// Categories
	AddCategory(ctx context.Context, c models.Category) error
	GetCategories(ctx context.Context, userID string) ([]models.Category, error)
	GetCategoryByName(ctx context.Context, userID, name string) (models.Category, error)

	// Tasks
	AddTask(ctx context.Context, t models.Task) error
	GetTask(ctx context.Context, userID, id string) (models.Task, error)
	GetTasks(ctx context.Context, userID string, includeCompleted bool) ([]models.Task, error)
	// UpdateTaskPoints changes the award of a task that has not been completed.
	// It returns false when the task is already completed.
	UpdateTaskPoints(ctx context.Context, userID, id string, points int) (bool, error)

	// Rewards
	AddReward(ctx context.Context, r models.Reward) error
	GetReward(ctx context.Context, userID, id string) (models.Reward, error)
	GetRewards(ctx context.Context, userID string) ([]models.Reward, error)

	// Sessions
	AddSession(ctx context.Context, s models.PomodoroSession) error
	GetSession(ctx context.Context, userID, id string) (models.PomodoroSession, error)
	// GetSessions returns sessions whose start time falls in [from, to), newest first.
	GetSessions(ctx context.Context, userID string, from, to time.Time) ([]models.PomodoroSession, error)

	// Moods
	AddMoodEntry(ctx context.Context, m models.MoodEntry) error
	GetLatestMood(ctx context.Context, userID string, day calendar.Day) (*models.MoodEntry, error)

	// Summaries
	GetSummary(ctx context.Context, userID string, day calendar.Day) (models.DailySummary, error)
	// InsertSummaryIfAbsent stores s unless a summary for (UserID, Day) exists.
	// It reports whether this call inserted the row.
	InsertSummaryIfAbsent(ctx context.Context, s models.DailySummary) (bool, error)

	// Aggregates
	// GetDayActivity counts the user's work for day; from and to bound the day in UTC.
	GetDayActivity(ctx context.Context, userID string, day calendar.Day, from, to time.Time) (DayActivity, error)
	GetTransactions(ctx context.Context, userID string, limit int) ([]models.PointTransaction, error)

	// WithUserTx runs fn in a transaction that serializes against every other
	// transaction for the same user. fn's error rolls the transaction back.
	WithUserTx(ctx context.Context, userID string, fn func(Tx) error) error

	// Utils
	GetConfigPath() string
}

// Tx is the handle handed to code running inside WithUserTx.
type Tx interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	GetTask(ctx context.Context, userID, id string) (models.Task, error)
	// LatestCompletion returns the most recent completed_at of the user's tasks, or nil.
	LatestCompletion(ctx context.Context, userID string) (*time.Time, error)

	// MarkTaskCompleted moves a task into completed; false if it already was.
	MarkTaskCompleted(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkTaskStarted moves a todo task into in_progress; false otherwise.
	MarkTaskStarted(ctx context.Context, id string) (bool, error)

	// AdjustPoints adds delta to the balance unless that would make it negative.
	// ok is false, and nothing changes, when the balance is too small.
	AdjustPoints(ctx context.Context, userID string, delta int) (balance int, ok bool, err error)
	IncrementCompletedTasks(ctx context.Context, userID string) error
	IncrementPomodoroSessions(ctx context.Context, userID string) error
	SaveStreak(ctx context.Context, userID string, streak, longest int, lastActive calendar.Day) error
	AddTransaction(ctx context.Context, t models.PointTransaction) error

	GetReward(ctx context.Context, userID, id string) (models.Reward, error)
	// MarkRewardClaimed flags an unclaimed reward; false if it was already claimed.
	MarkRewardClaimed(ctx context.Context, id string, at time.Time) (bool, error)

	GetSession(ctx context.Context, userID, id string) (models.PomodoroSession, error)
	// EndSession finalizes a running session; false if it had already ended.
	EndSession(ctx context.Context, id string, at time.Time, notes *string) (bool, error)
}
