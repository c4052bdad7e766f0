// Package streak tracks consecutive days of activity.
package streak

import (
	"context"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
)

// State is the persisted streak of one user. An empty LastActive means the
// user has never been active.
type State struct {
	Days       int          `json:"days"`
	Longest    int          `json:"longest"`
	LastActive calendar.Day `json:"last_active,omitempty"`
}

// Result is the state after an evaluation and whether it differs from the input.
type Result struct {
	State
	Changed bool
}

// Evaluate applies one day of activity to s.
//
// Only activity on today counts. Activity the day after LastActive extends
// the streak; activity after a gap, or on the first active day, restarts it
// at 1. A second evaluation on the same day changes nothing.
func Evaluate(s State, activityDay, today calendar.Day) Result {
	if activityDay != today || s.LastActive == today {
		return Result{State: s}
	}

	next := s
	if s.LastActive != "" && s.LastActive == today.AddDays(-1) {
		next.Days = s.Days + 1
	} else {
		next.Days = 1
	}
	next.LastActive = today
	if next.Days > next.Longest {
		next.Longest = next.Days
	}
	return Result{State: next, Changed: true}
}

// Tracker persists streak evaluations.
type Tracker struct {
	store storage.Provider
}

func NewTracker(store storage.Provider) *Tracker {
	return &Tracker{store: store}
}

// StateOf extracts the streak fields of u.
func StateOf(u models.User) State {
	return State{Days: u.StreakDays, Longest: u.LongestStreak, LastActive: u.LastActiveDate}
}

// Apply evaluates activity on activityDay against the user's stored streak
// and saves the result when it changed. It runs on the caller's transaction.
func (t *Tracker) Apply(ctx context.Context, tx storage.Tx, userID string, activityDay, today calendar.Day) (Result, error) {
	u, err := tx.GetUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	r := Evaluate(StateOf(u), activityDay, today)
	if !r.Changed {
		return r, nil
	}
	if err := tx.SaveStreak(ctx, userID, r.Days, r.Longest, r.LastActive); err != nil {
		return Result{}, err
	}

	logger.Debug("Streak updated", "user", userID, "days", r.Days, "longest", r.Longest, "day", today)
	return r, nil
}

// Check is the activity check run when the dashboard is opened. It applies
// the user's most recent completion, read in clock's location. Calling it
// repeatedly on the same day is harmless.
func (t *Tracker) Check(ctx context.Context, userID string, clock calendar.Clock) (Result, error) {
	var result Result
	err := t.store.WithUserTx(ctx, userID, func(tx storage.Tx) error {
		latest, err := tx.LatestCompletion(ctx, userID)
		if err != nil {
			return err
		}
		if latest == nil {
			u, err := tx.GetUser(ctx, userID)
			if err != nil {
				return err
			}
			result = Result{State: StateOf(u)}
			return nil
		}

		result, err = t.Apply(ctx, tx, userID, calendar.DayOf(*latest, clock.Location()), clock.Today())
		return err
	})
	return result, err
}
