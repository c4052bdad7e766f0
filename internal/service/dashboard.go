package service

import (
	"context"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/streak"
)

// Dashboard is the overview shown when a user opens the app.
type Dashboard struct {
	User           models.User       `json:"user"`
	Day            calendar.Day      `json:"day"`
	Streak         streak.State      `json:"streak"`
	TasksToday     int               `json:"tasks_today"`
	CompletedToday int               `json:"completed_today"`
	Pending        int               `json:"pending"`
	SessionsToday  int               `json:"sessions_today"`
	DailyGoal      int               `json:"daily_goal"`
	GoalProgress   int               `json:"goal_progress"` // percent, capped at 100
	Mood           *models.MoodEntry `json:"mood,omitempty"`
}

// Dashboard runs the streak activity check and collects today's counts.
func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	clock, err := s.ClockFor(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	result, err := s.tracker.Check(ctx, userID, clock)
	if err != nil {
		return Dashboard{}, err
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	today := clock.Today()
	from, to := today.Bounds(clock.Location())
	activity, err := s.store.GetDayActivity(ctx, userID, today, from, to)
	if err != nil {
		return Dashboard{}, err
	}
	mood, err := s.store.GetLatestMood(ctx, userID, today)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		User:           u,
		Day:            today,
		Streak:         result.State,
		TasksToday:     activity.TasksDue,
		CompletedToday: activity.TasksCompleted,
		Pending:        activity.TasksPending,
		SessionsToday:  activity.SessionsStarted,
		DailyGoal:      prefs.DailyGoal,
		GoalProgress:   goalProgress(activity.TasksCompleted, prefs.DailyGoal),
		Mood:           mood,
	}, nil
}

func goalProgress(done, goal int) int {
	if goal <= 0 {
		return 100
	}
	pct := done * 100 / goal
	if pct > 100 {
		return 100
	}
	return pct
}
