package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
)

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// Task belongs to a user through its category.
type Task struct {
	ID          string               `json:"id"`
	CategoryID  string               `json:"category_id"`
	UserID      string               `json:"user_id"` // derived from the category on read
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Priority    constants.Priority   `json:"priority"`
	DueDate     calendar.Day         `json:"due_date,omitempty"`
	Status      constants.TaskStatus `json:"status"`
	Points      int                  `json:"points"`
	CreatedAt   time.Time            `json:"created_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title cannot be empty")
	}
	if len(t.Title) > 100 {
		return fmt.Errorf("task title cannot exceed 100 characters")
	}
	if t.CategoryID == "" {
		return fmt.Errorf("task category is required")
	}
	if t.Points < 0 {
		return fmt.Errorf("task points cannot be negative")
	}

	switch t.Priority {
	case constants.PriorityLow, constants.PriorityMedium, constants.PriorityHigh:
	default:
		return fmt.Errorf("invalid priority: %s", t.Priority)
	}

	switch t.Status {
	case constants.TaskStatusTodo, constants.TaskStatusInProgress, constants.TaskStatusCompleted:
	default:
		return fmt.Errorf("invalid status: %s", t.Status)
	}

	if t.DueDate != "" {
		if _, err := calendar.ParseDay(string(t.DueDate)); err != nil {
			return err
		}
	}
	return nil
}

// IsCompleted reports whether the task has reached its terminal state.
func (t *Task) IsCompleted() bool {
	return t.Status == constants.TaskStatusCompleted
}
