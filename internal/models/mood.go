package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
)

type MoodEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Mood      constants.Mood `json:"mood"`
	Notes     string         `json:"notes,omitempty"`
	Day       calendar.Day   `json:"day"`
	CreatedAt time.Time      `json:"created_at"`
}

func (m *MoodEntry) Validate() error {
	switch m.Mood {
	case constants.MoodVeryHappy, constants.MoodHappy, constants.MoodNeutral, constants.MoodSad, constants.MoodVerySad:
	default:
		return fmt.Errorf("invalid mood: %s", m.Mood)
	}
	if _, err := calendar.ParseDay(string(m.Day)); err != nil {
		return err
	}
	return nil
}

// Label returns the human readable mood name.
func (m *MoodEntry) Label() string {
	switch m.Mood {
	case constants.MoodVeryHappy:
		return "Very Happy"
	case constants.MoodHappy:
		return "Happy"
	case constants.MoodNeutral:
		return "Neutral"
	case constants.MoodSad:
		return "Sad"
	case constants.MoodVerySad:
		return "Very Sad"
	}
	return string(m.Mood)
}
