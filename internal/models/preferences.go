package models

import (
	"fmt"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
)

// Preferences holds per-user settings that influence the ledger.
type Preferences struct {
	UserID       string `json:"user_id"`
	FocusMinutes int    `json:"focus_minutes"` // length of a focus session
	BreakMinutes int    `json:"break_minutes"` // length of the break after a session
	DailyGoal    int    `json:"daily_goal"`    // tasks to complete per day
	Timezone     string `json:"timezone"`      // IANA timezone name or "Local"
}

// DefaultPreferences returns the preferences a new user starts with.
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:       userID,
		FocusMinutes: constants.DefaultFocusMinutes,
		BreakMinutes: constants.DefaultBreakMinutes,
		DailyGoal:    constants.DefaultDailyGoal,
		Timezone:     constants.DefaultTimezone,
	}
}

func (p *Preferences) Validate() error {
	if p.FocusMinutes < 1 || p.FocusMinutes > 240 {
		return fmt.Errorf("focus minutes must be between 1 and 240")
	}
	if p.BreakMinutes < 0 || p.BreakMinutes > 120 {
		return fmt.Errorf("break minutes must be between 0 and 120")
	}
	if p.DailyGoal < 0 {
		return fmt.Errorf("daily goal cannot be negative")
	}
	if !calendar.ValidateTimezone(p.Timezone) {
		return fmt.Errorf("invalid timezone: %s", p.Timezone)
	}
	return nil
}

// Clock returns the clock that defines "today" for the user.
func (p *Preferences) Clock() (calendar.Clock, error) {
	return calendar.ForTimezone(p.Timezone)
}
