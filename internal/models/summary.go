package models

import (
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
)

// DailySummary is the cached narrative for one user and day. At most one
// row exists per (UserID, Day).
type DailySummary struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Day       calendar.Day `json:"day"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
}
