// Package tasks implements the task lifecycle: todo, in_progress, completed.
// Completion is the only transition that touches the ledger and it happens
// at most once per task.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/ledger"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/streak"
)

// Completion reports what completing a task changed.
type Completion struct {
	Awarded     bool
	PointsDelta int
	Balance     int
	Streak      streak.Result
}

// NewTask is the input for Create. Category is a category name and defaults
// to "other".
type NewTask struct {
	Category    string
	Title       string
	Description string
	Priority    constants.Priority
	DueDate     calendar.Day
	Points      int
}

type Service struct {
	store   storage.Provider
	ledger  *ledger.Ledger
	tracker *streak.Tracker
}

func NewService(store storage.Provider, l *ledger.Ledger, tracker *streak.Tracker) *Service {
	return &Service{store: store, ledger: l, tracker: tracker}
}

// Complete marks the task completed, credits its points, counts the
// completion and updates the streak, all in one transaction. Completing an
// already completed task changes nothing and reports Awarded=false.
func (s *Service) Complete(ctx context.Context, clock calendar.Clock, userID, taskID string) (Completion, error) {
	var c Completion
	err := s.store.WithUserTx(ctx, userID, func(tx storage.Tx) error {
		task, err := tx.GetTask(ctx, userID, taskID)
		if err != nil {
			return err
		}

		changed := false
		if !task.IsCompleted() {
			if changed, err = tx.MarkTaskCompleted(ctx, task.ID, clock.Now()); err != nil {
				return err
			}
		}
		if !changed {
			u, err := tx.GetUser(ctx, userID)
			if err != nil {
				return err
			}
			c = Completion{Balance: u.Points, Streak: streak.Result{State: streak.StateOf(u)}}
			return nil
		}

		balance, err := s.ledger.Credit(ctx, tx, userID, task.Points, task.ID)
		if err != nil {
			return err
		}
		if err := s.ledger.RecordCompletion(ctx, tx, userID); err != nil {
			return err
		}
		today := clock.Today()
		result, err := s.tracker.Apply(ctx, tx, userID, today, today)
		if err != nil {
			return err
		}

		c = Completion{Awarded: true, PointsDelta: task.Points, Balance: balance, Streak: result}
		return nil
	})
	if err != nil {
		return Completion{}, err
	}

	if c.Awarded {
		logger.Info("Task completed", "user", userID, "task", taskID, "points", c.PointsDelta, "streak", c.Streak.Days)
	} else {
		logger.Debug("Task already completed", "user", userID, "task", taskID)
	}
	return c, nil
}

// Start moves a todo task to in_progress. It reports whether the status
// changed; starting a running task is a no-op and a completed task cannot
// be started again.
func (s *Service) Start(ctx context.Context, userID, taskID string) (bool, error) {
	var started bool
	err := s.store.WithUserTx(ctx, userID, func(tx storage.Tx) error {
		task, err := tx.GetTask(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if task.IsCompleted() {
			return fmt.Errorf("start task %s: %w", taskID, apperrors.ErrTaskCompleted)
		}
		started, err = tx.MarkTaskStarted(ctx, task.ID)
		return err
	})
	return started, err
}

// Create validates and stores a new todo task in one of the user's categories.
func (s *Service) Create(ctx context.Context, clock calendar.Clock, userID string, in NewTask) (models.Task, error) {
	name := strings.TrimSpace(in.Category)
	if name == "" {
		name = "other"
	}
	cat, err := s.store.GetCategoryByName(ctx, userID, name)
	if err != nil {
		return models.Task{}, err
	}

	priority := in.Priority
	if priority == "" {
		priority = constants.PriorityMedium
	}

	task := models.Task{
		ID:          uuid.New().String(),
		CategoryID:  cat.ID,
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    priority,
		DueDate:     in.DueDate,
		Status:      constants.TaskStatusTodo,
		Points:      in.Points,
		CreatedAt:   clock.Now(),
	}
	if err := task.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.store.AddTask(ctx, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// SetPoints changes the award of a task that is not completed yet.
func (s *Service) SetPoints(ctx context.Context, userID, taskID string, points int) error {
	if points < 0 {
		return fmt.Errorf("task points %d: %w", points, apperrors.ErrInvalidAmount)
	}
	ok, err := s.store.UpdateTaskPoints(ctx, userID, taskID, points)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("set points on task %s: %w", taskID, apperrors.ErrTaskCompleted)
	}
	return nil
}

// List returns the user's tasks, highest priority first.
func (s *Service) List(ctx context.Context, userID string, includeCompleted bool) ([]models.Task, error) {
	return s.store.GetTasks(ctx, userID, includeCompleted)
}
