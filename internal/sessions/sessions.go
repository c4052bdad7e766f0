// Package sessions tracks focus (pomodoro) sessions. A session is started
// with the user's configured focus length and is finalized exactly once.
package sessions

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/ledger"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
)

// EndResult reports whether End finalized the session.
type EndResult struct {
	Ended   bool
	Session models.PomodoroSession
}

// DayGroup is one day of session history.
type DayGroup struct {
	Day      calendar.Day
	Sessions []models.PomodoroSession
	Minutes  int
}

type Service struct {
	store  storage.Provider
	ledger *ledger.Ledger
}

func NewService(store storage.Provider, l *ledger.Ledger) *Service {
	return &Service{store: store, ledger: l}
}

// Start opens a session. taskID is optional and must name one of the user's tasks.
func (s *Service) Start(ctx context.Context, clock calendar.Clock, userID string, taskID *string) (models.PomodoroSession, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return models.PomodoroSession{}, err
	}
	if taskID != nil {
		if _, err := s.store.GetTask(ctx, userID, *taskID); err != nil {
			return models.PomodoroSession{}, err
		}
	}

	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return models.PomodoroSession{}, err
	}

	session := models.PomodoroSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		TaskID:    taskID,
		StartTime: clock.Now(),
		Duration:  prefs.FocusMinutes,
	}
	if err := s.store.AddSession(ctx, session); err != nil {
		return models.PomodoroSession{}, err
	}

	logger.Info("Focus session started", "user", userID, "session", session.ID, "minutes", session.Duration)
	return session, nil
}

// End finalizes a running session and counts it. Ending a session that has
// already ended changes nothing and reports Ended=false. A nil note keeps the
// existing notes.
func (s *Service) End(ctx context.Context, clock calendar.Clock, userID, sessionID string, note *string) (EndResult, error) {
	var res EndResult
	err := s.store.WithUserTx(ctx, userID, func(tx storage.Tx) error {
		if _, err := tx.GetSession(ctx, userID, sessionID); err != nil {
			return err
		}

		ended, err := tx.EndSession(ctx, sessionID, clock.Now(), note)
		if err != nil {
			return err
		}
		if ended {
			if err := s.ledger.RecordSession(ctx, tx, userID); err != nil {
				return err
			}
		}

		session, err := tx.GetSession(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		res = EndResult{Ended: ended, Session: session}
		return nil
	})
	if err != nil {
		return EndResult{}, err
	}

	if res.Ended {
		logger.Info("Focus session ended", "user", userID, "session", sessionID)
	}
	return res, nil
}

// History returns sessions started between from and to (inclusive days),
// grouped by day in loc, newest day first.
func (s *Service) History(ctx context.Context, userID string, from, to calendar.Day, loc *time.Location) ([]DayGroup, error) {
	start, _ := from.Bounds(loc)
	_, end := to.Bounds(loc)

	list, err := s.store.GetSessions(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := map[calendar.Day]*DayGroup{}
	for _, sess := range list {
		day := calendar.DayOf(sess.StartTime, loc)
		g, ok := byDay[day]
		if !ok {
			g = &DayGroup{Day: day}
			byDay[day] = g
		}
		g.Sessions = append(g.Sessions, sess)
		if sess.Completed {
			g.Minutes += sess.Duration
		}
	}

	groups := make([]DayGroup, 0, len(byDay))
	for _, g := range byDay {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[j].Day.Before(groups[i].Day) })
	return groups, nil
}
