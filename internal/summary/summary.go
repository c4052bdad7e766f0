// Package summary caches one generated narrative per user per day.
//
// A stored summary is never regenerated. On a miss the text is generated
// outside any transaction and stored with an insert-if-absent, so
// concurrent misses store exactly one row and the losers return the
// winner's content. Duplicate generation is suppressed in-process with
// singleflight and, when a Locker is configured, across processes.
package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
)

// Generator produces summary text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Locker serializes generation for a key across processes. acquired is
// false when another holder owns the key.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), acquired bool, err error)
}

// Summary is the cached content for one day. Created is true when this call
// generated and stored it.
type Summary struct {
	Day     calendar.Day
	Content string
	Created bool
}

type Cache struct {
	store   storage.Provider
	gen     Generator
	locker  Locker
	lockTTL time.Duration
	poll    time.Duration
	now     func() time.Time
	group   singleflight.Group
}

type Option func(*Cache)

// WithLocker adds cross-process serialization of generation.
func WithLocker(l Locker) Option {
	return func(c *Cache) { c.locker = l }
}

// WithLockTTL bounds how long a generation lock is held.
func WithLockTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.lockTTL = ttl }
}

// WithNow sets the clock used for created_at.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func NewCache(store storage.Provider, gen Generator, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		gen:     gen,
		lockTTL: constants.SummaryLockTTL,
		poll:    250 * time.Millisecond,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCreate returns the stored summary for (user, day), generating it on
// the first request. loc defines the day's boundaries for the aggregates.
func (c *Cache) GetOrCreate(ctx context.Context, user models.User, day calendar.Day, loc *time.Location) (Summary, error) {
	if s, ok, err := c.lookup(ctx, user.ID, day); err != nil || ok {
		return s, err
	}

	key := user.ID + "|" + string(day)
	v, err, _ := c.group.Do(key, func() (any, error) {
		// a cancelled caller must not fail the others sharing this flight
		return c.create(context.WithoutCancel(ctx), user, day, loc)
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

func (c *Cache) lookup(ctx context.Context, userID string, day calendar.Day) (Summary, bool, error) {
	s, err := c.store.GetSummary(ctx, userID, day)
	if errors.Is(err, apperrors.ErrNotFound) {
		return Summary{}, false, nil
	}
	if err != nil {
		return Summary{}, false, err
	}
	return Summary{Day: s.Day, Content: s.Content}, true, nil
}

func (c *Cache) create(ctx context.Context, user models.User, day calendar.Day, loc *time.Location) (Summary, error) {
	if c.locker != nil {
		unlock, s, done, err := c.acquire(ctx, user.ID, day)
		if err != nil || done {
			return s, err
		}
		defer unlock()
	}

	// re-check now that this caller owns generation
	if s, ok, err := c.lookup(ctx, user.ID, day); err != nil || ok {
		return s, err
	}

	prompt, err := c.prompt(ctx, user, day, loc)
	if err != nil {
		return Summary{}, err
	}

	content, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, apperrors.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", apperrors.ErrGenerationFailed, err)
		}
		return Summary{}, err
	}
	if content == "" {
		return Summary{}, fmt.Errorf("%w: empty completion", apperrors.ErrGenerationFailed)
	}

	row := models.DailySummary{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Day:       day,
		Content:   content,
		CreatedAt: c.now(),
	}
	inserted, err := c.store.InsertSummaryIfAbsent(ctx, row)
	if err != nil {
		return Summary{}, err
	}
	if !inserted {
		logger.Debug("Summary stored by another writer", "user", user.ID, "day", day)
		s, _, err := c.lookup(ctx, user.ID, day)
		return s, err
	}

	logger.Info("Daily summary generated", "user", user.ID, "day", day)
	return Summary{Day: day, Content: content, Created: true}, nil
}

// acquire takes the cross-process lock. When another process holds it, it
// waits for that process's row; done is true when the row was found.
func (c *Cache) acquire(ctx context.Context, userID string, day calendar.Day) (func(), Summary, bool, error) {
	key := fmt.Sprintf("%s:summary:%s:%s", constants.AppName, userID, day)
	deadline := time.Now().Add(c.lockTTL)

	for {
		unlock, acquired, err := c.locker.Lock(ctx, key, c.lockTTL)
		if err != nil {
			// the storage constraint still guarantees one row
			logger.Warn("Summary lock unavailable, continuing without it", "error", err)
			return func() {}, Summary{}, false, nil
		}
		if acquired {
			return unlock, Summary{}, false, nil
		}

		if s, ok, err := c.lookup(ctx, userID, day); err != nil || ok {
			return nil, s, true, err
		}
		if time.Now().After(deadline) {
			return func() {}, Summary{}, false, nil
		}

		select {
		case <-ctx.Done():
			return nil, Summary{}, true, ctx.Err()
		case <-time.After(c.poll):
		}
	}
}

func (c *Cache) prompt(ctx context.Context, user models.User, day calendar.Day, loc *time.Location) (string, error) {
	from, to := day.Bounds(loc)
	activity, err := c.store.GetDayActivity(ctx, user.ID, day, from, to)
	if err != nil {
		return "", err
	}
	mood, err := c.store.GetLatestMood(ctx, user.ID, day)
	if err != nil {
		return "", err
	}
	return BuildPrompt(Aggregates{Name: user.Name(), Day: day, Activity: activity, Mood: mood}), nil
}
