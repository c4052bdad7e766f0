package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
)

// User is an account together with the progress aggregates owned by the ledger.
// Points, TotalCompletedTasks, TotalPomodoroSessions, StreakDays, LongestStreak
// and LastActiveDate are written only through the ledger and streak packages.
type User struct {
	ID                    string       `json:"id"`
	Username              string       `json:"username"`
	DisplayName           string       `json:"display_name"`
	Points                int          `json:"points"`
	TotalCompletedTasks   int          `json:"total_completed_tasks"`
	TotalPomodoroSessions int          `json:"total_pomodoro_sessions"`
	StreakDays            int          `json:"streak_days"`
	LongestStreak         int          `json:"longest_streak"`
	LastActiveDate        calendar.Day `json:"last_active_date,omitempty"` // empty when never active
	CreatedAt             time.Time    `json:"created_at"`
}

// Name returns the name used when addressing the user.
func (u *User) Name() string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if strings.ContainsAny(u.Username, " \t\n") {
		return fmt.Errorf("username cannot contain whitespace")
	}
	if u.Points < 0 {
		return fmt.Errorf("points cannot be negative")
	}
	if u.StreakDays < 0 || u.LongestStreak < 0 {
		return fmt.Errorf("streak cannot be negative")
	}
	return nil
}
