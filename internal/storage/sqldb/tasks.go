package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/models"
)

// Tasks are owned through their category, so every read joins categories.
const taskSelect = `
	SELECT t.id, t.category_id, c.user_id, t.title, t.description, t.priority, t.due_date,
	       t.status, t.points, t.created_at, t.completed_at
	FROM tasks t JOIN categories c ON c.id = t.category_id`

func scanTask(row scanner) (models.Task, error) {
	var t models.Task
	var priority, status, createdAt string
	var dueDate, completedAt sql.NullString
	err := row.Scan(&t.ID, &t.CategoryID, &t.UserID, &t.Title, &t.Description, &priority, &dueDate,
		&status, &t.Points, &createdAt, &completedAt)
	if err != nil {
		return models.Task{}, err
	}
	t.Priority = constants.Priority(priority)
	t.Status = constants.TaskStatus(status)
	if dueDate.Valid {
		t.DueDate = calendar.Day(dueDate.String)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, err
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (q *Queries) AddTask(ctx context.Context, t models.Task) error {
	_, err := q.exec(ctx, `
		INSERT INTO tasks (id, category_id, title, description, priority, due_date, status, points, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CategoryID, t.Title, t.Description, string(t.Priority), nullDay(t.DueDate),
		string(t.Status), t.Points, formatTime(t.CreatedAt), nullTime(t.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return nil
}

func (q *Queries) GetTask(ctx context.Context, userID, id string) (models.Task, error) {
	t, err := scanTask(q.queryRow(ctx, taskSelect+` WHERE t.id = ? AND c.user_id = ?`, id, userID))
	if err != nil {
		return models.Task{}, notFound(err, "task", id)
	}
	return t, nil
}

func (q *Queries) GetTasks(ctx context.Context, userID string, includeCompleted bool) ([]models.Task, error) {
	query := taskSelect + ` WHERE c.user_id = ?`
	if !includeCompleted {
		query += ` AND t.status != 'completed'`
	}
	query += ` ORDER BY CASE t.priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, t.created_at`

	rows, err := q.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (q *Queries) UpdateTaskPoints(ctx context.Context, userID, id string, points int) (bool, error) {
	if _, err := q.GetTask(ctx, userID, id); err != nil {
		return false, err
	}
	ok, err := q.execOne(ctx, `UPDATE tasks SET points = ? WHERE id = ? AND status != 'completed'`, points, id)
	if err != nil {
		return false, fmt.Errorf("failed to update task points: %w", err)
	}
	return ok, nil
}

func (q *Queries) MarkTaskCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	ok, err := q.execOne(ctx, `
		UPDATE tasks SET status = 'completed', completed_at = COALESCE(completed_at, ?)
		WHERE id = ? AND status != 'completed'`, formatTime(at), id)
	if err != nil {
		return false, fmt.Errorf("failed to complete task: %w", err)
	}
	return ok, nil
}

func (q *Queries) MarkTaskStarted(ctx context.Context, id string) (bool, error) {
	ok, err := q.execOne(ctx, `UPDATE tasks SET status = 'in_progress' WHERE id = ? AND status = 'todo'`, id)
	if err != nil {
		return false, fmt.Errorf("failed to start task: %w", err)
	}
	return ok, nil
}

func (q *Queries) LatestCompletion(ctx context.Context, userID string) (*time.Time, error) {
	var latest sql.NullString
	err := q.queryRow(ctx, `
		SELECT MAX(t.completed_at)
		FROM tasks t JOIN categories c ON c.id = t.category_id
		WHERE c.user_id = ? AND t.status = 'completed'`, userID).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest completion: %w", err)
	}
	return parseNullTime(latest)
}

func scanReward(row scanner) (models.Reward, error) {
	var r models.Reward
	var claimedAt sql.NullString
	var createdAt string
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.Points, &r.IsActive, &r.IsClaimed, &claimedAt, &createdAt)
	if err != nil {
		return models.Reward{}, err
	}
	if r.ClaimedAt, err = parseNullTime(claimedAt); err != nil {
		return models.Reward{}, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Reward{}, err
	}
	return r, nil
}

const rewardSelect = `
	SELECT id, user_id, title, description, points, is_active, is_claimed, claimed_at, created_at
	FROM rewards`

func (q *Queries) AddReward(ctx context.Context, r models.Reward) error {
	_, err := q.exec(ctx, `
		INSERT INTO rewards (id, user_id, title, description, points, is_active, is_claimed, claimed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Title, r.Description, r.Points, r.IsActive, r.IsClaimed, nullTime(r.ClaimedAt), formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add reward: %w", err)
	}
	return nil
}

func (q *Queries) GetReward(ctx context.Context, userID, id string) (models.Reward, error) {
	r, err := scanReward(q.queryRow(ctx, rewardSelect+` WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return models.Reward{}, notFound(err, "reward", id)
	}
	return r, nil
}

func (q *Queries) GetRewards(ctx context.Context, userID string) ([]models.Reward, error) {
	rows, err := q.query(ctx, rewardSelect+` WHERE user_id = ? ORDER BY is_claimed, points, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []models.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, r)
	}
	return rewards, rows.Err()
}

func (q *Queries) MarkRewardClaimed(ctx context.Context, id string, at time.Time) (bool, error) {
	ok, err := q.execOne(ctx, `
		UPDATE rewards SET is_claimed = TRUE, claimed_at = ?
		WHERE id = ? AND is_claimed = FALSE`, formatTime(at), id)
	if err != nil {
		return false, fmt.Errorf("failed to claim reward: %w", err)
	}
	return ok, nil
}

