package models

import (
	"fmt"
	"strings"
	"time"
)

// Reward is something a user buys with points. Claiming is one-way.
type Reward struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Points      int        `json:"points"`
	IsActive    bool       `json:"is_active"`
	IsClaimed   bool       `json:"is_claimed"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (r *Reward) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("reward title cannot be empty")
	}
	if r.Points < 0 {
		return fmt.Errorf("reward price cannot be negative")
	}
	if r.IsClaimed && r.ClaimedAt == nil {
		return fmt.Errorf("claimed reward must have a claim time")
	}
	return nil
}
