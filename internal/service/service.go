// Package service is the application layer shared by the CLI and the HTTP
// API. It resolves each user's clock from their preferences once per call
// and hands it to the components, so one operation sees one "today".
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/ledger"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/rewards"
	"github.com/julianstephens/neurozen/internal/sessions"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/streak"
	"github.com/julianstephens/neurozen/internal/summary"
	"github.com/julianstephens/neurozen/internal/tasks"
)

type Service struct {
	store     storage.Provider
	ledger    *ledger.Ledger
	tracker   *streak.Tracker
	tasks     *tasks.Service
	rewards   *rewards.Service
	sessions  *sessions.Service
	summaries *summary.Cache

	// fixed overrides per-user clocks when set
	fixed calendar.Clock
}

type Option func(*options)

type options struct {
	clock   calendar.Clock
	summary []summary.Option
}

// WithClock makes every user share clock instead of their timezone clock.
func WithClock(clock calendar.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithSummaryOptions configures the daily summary cache.
func WithSummaryOptions(opts ...summary.Option) Option {
	return func(o *options) { o.summary = append(o.summary, opts...) }
}

// New wires the components over store. gen may be nil, in which case
// stored summaries are still served and new ones fail with
// ErrGenerationFailed.
func New(store storage.Provider, gen summary.Generator, opts ...Option) *Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if gen == nil {
		gen = unavailableGenerator{}
	}

	journalClock := o.clock
	if journalClock == nil {
		journalClock = calendar.System(time.UTC)
	}
	summaryOpts := append([]summary.Option{summary.WithNow(journalClock.Now)}, o.summary...)

	l := ledger.New(store, journalClock)
	tracker := streak.NewTracker(store)
	return &Service{
		store:     store,
		ledger:    l,
		tracker:   tracker,
		tasks:     tasks.NewService(store, l, tracker),
		rewards:   rewards.NewService(store, l),
		sessions:  sessions.NewService(store, l),
		summaries: summary.NewCache(store, gen, summaryOpts...),
		fixed:     o.clock,
	}
}

type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("text generation is not configured; run 'neurozen keyring set --ai'")
}

// ClockFor returns the clock that defines "today" for the user.
func (s *Service) ClockFor(ctx context.Context, userID string) (calendar.Clock, error) {
	if s.fixed != nil {
		return s.fixed, nil
	}
	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	clock, err := prefs.Clock()
	if err != nil {
		logger.Warn("Invalid timezone preference, using local time", "user", userID, "timezone", prefs.Timezone, "error", err)
		return calendar.System(time.Local), nil
	}
	return clock, nil
}

// CreateUser registers a user with default preferences and categories.
func (s *Service) CreateUser(ctx context.Context, username, displayName string) (models.User, error) {
	u := models.User{
		ID:          uuid.New().String(),
		Username:    strings.TrimSpace(username),
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if _, err := s.store.GetUserByUsername(ctx, u.Username); err == nil {
		return models.User{}, fmt.Errorf("%w: username %q is taken", apperrors.ErrValidation, u.Username)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.User{}, err
	}
	if err := s.store.AddUser(ctx, u); err != nil {
		return models.User{}, err
	}
	logger.Info("User created", "user", u.ID, "username", u.Username)
	return u, nil
}

func (s *Service) User(ctx context.Context, userID string) (models.User, error) {
	return s.store.GetUser(ctx, userID)
}

func (s *Service) UserByName(ctx context.Context, username string) (models.User, error) {
	return s.store.GetUserByUsername(ctx, username)
}

func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.store.GetAllUsers(ctx)
}

func (s *Service) Preferences(ctx context.Context, userID string) (models.Preferences, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return models.Preferences{}, err
	}
	return s.store.GetPreferences(ctx, userID)
}

func (s *Service) SavePreferences(ctx context.Context, p models.Preferences) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if _, err := s.store.GetUser(ctx, p.UserID); err != nil {
		return err
	}
	return s.store.SavePreferences(ctx, p)
}

// CompleteTask completes the task at most once, crediting its points and
// updating the streak.
func (s *Service) CompleteTask(ctx context.Context, userID, taskID string) (tasks.Completion, error) {
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return tasks.Completion{}, err
	}
	return s.tasks.Complete(ctx, clock, userID, taskID)
}

func (s *Service) StartTask(ctx context.Context, userID, taskID string) (bool, error) {
	return s.tasks.Start(ctx, userID, taskID)
}

func (s *Service) CreateTask(ctx context.Context, userID string, in tasks.NewTask) (models.Task, error) {
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return models.Task{}, err
	}
	return s.tasks.Create(ctx, clock, userID, in)
}

func (s *Service) SetTaskPoints(ctx context.Context, userID, taskID string, points int) error {
	return s.tasks.SetPoints(ctx, userID, taskID, points)
}

func (s *Service) Tasks(ctx context.Context, userID string, includeCompleted bool) ([]models.Task, error) {
	return s.tasks.List(ctx, userID, includeCompleted)
}

// ClaimReward spends the reward's price once. Insufficient balance and
// repeat claims are reported in the result, not as errors.
func (s *Service) ClaimReward(ctx context.Context, userID, rewardID string) (rewards.Result, error) {
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return rewards.Result{}, err
	}
	return s.rewards.Claim(ctx, clock, userID, rewardID)
}

func (s *Service) CreateReward(ctx context.Context, userID, title, description string, points int) (models.Reward, error) {
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return models.Reward{}, err
	}
	return s.rewards.Create(ctx, clock, userID, title, description, points)
}

func (s *Service) Rewards(ctx context.Context, userID string) ([]models.Reward, error) {
	return s.rewards.List(ctx, userID)
}

func (s *Service) StartSession(ctx context.Context, userID string, taskID *string) (models.PomodoroSession, error) {
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return models.PomodoroSession{}, err
	}
	return s.sessions.Start(ctx, clock, userID, taskID)
}

// EndSession ends a running session exactly once.
func (s *Service) EndSession(ctx context.Context, userID, sessionID string, note *string) (sessions.EndResult, error) {
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return sessions.EndResult{}, err
	}
	return s.sessions.End(ctx, clock, userID, sessionID, note)
}

func (s *Service) Session(ctx context.Context, userID, sessionID string) (models.PomodoroSession, error) {
	return s.store.GetSession(ctx, userID, sessionID)
}

// SessionHistory groups the sessions of the last days days (today included).
func (s *Service) SessionHistory(ctx context.Context, userID string, days int) ([]sessions.DayGroup, error) {
	if days < 1 {
		days = 1
	}
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := clock.Today()
	return s.sessions.History(ctx, userID, today.AddDays(-(days - 1)), today, clock.Location())
}

// GetDailySummary returns the user's summary for day, generating and
// storing it on first request. An empty day means today.
func (s *Service) GetDailySummary(ctx context.Context, userID string, day calendar.Day) (summary.Summary, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return summary.Summary{}, err
	}
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return summary.Summary{}, err
	}
	today := clock.Today()
	if day == "" {
		day = today
	}
	if _, err := calendar.ParseDay(string(day)); err != nil {
		return summary.Summary{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if today.Before(day) {
		return summary.Summary{}, fmt.Errorf("%w: %s is in the future", apperrors.ErrValidation, day)
	}
	return s.summaries.GetOrCreate(ctx, u, day, clock.Location())
}

// LogMood records a mood for today.
func (s *Service) LogMood(ctx context.Context, userID string, mood constants.Mood, notes string) (models.MoodEntry, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return models.MoodEntry{}, err
	}
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return models.MoodEntry{}, err
	}
	m := models.MoodEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Mood:      mood,
		Notes:     strings.TrimSpace(notes),
		Day:       clock.Today(),
		CreatedAt: clock.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return models.MoodEntry{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.store.AddMoodEntry(ctx, m); err != nil {
		return models.MoodEntry{}, err
	}
	return m, nil
}

// Ledger returns the user's most recent point transactions.
func (s *Service) Ledger(ctx context.Context, userID string, limit int) ([]models.PointTransaction, error) {
	return s.ledger.History(ctx, userID, limit)
}
