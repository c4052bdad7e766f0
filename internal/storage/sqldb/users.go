package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/models"
)

const userColumns = `id, username, display_name, points, total_completed_tasks, total_pomodoro_sessions,
	streak_days, longest_streak, last_active_date, created_at`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	var lastActive sql.NullString
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Points, &u.TotalCompletedTasks, &u.TotalPomodoroSessions,
		&u.StreakDays, &u.LongestStreak, &lastActive, &createdAt)
	if err != nil {
		return models.User{}, err
	}
	if lastActive.Valid {
		u.LastActiveDate = calendar.Day(lastActive.String)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// InsertUser creates a user with default preferences and the default
// categories. Callers run it inside a transaction.
func (q *Queries) InsertUser(ctx context.Context, u models.User) error {
	_, err := q.exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.DisplayName, u.Points, u.TotalCompletedTasks, u.TotalPomodoroSessions,
		u.StreakDays, u.LongestStreak, nullDay(u.LastActiveDate), formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := q.SavePreferences(ctx, models.DefaultPreferences(u.ID)); err != nil {
		return err
	}

	for i, name := range constants.DefaultCategories {
		color, ok := constants.DefaultCategoryColors[name]
		if !ok {
			color = constants.FallbackCategoryColor
		}
		c := models.Category{
			ID:        uuid.New().String(),
			UserID:    u.ID,
			Name:      name,
			Color:     color,
			IsDefault: true,
			// keep display order stable when sorting by creation time
			CreatedAt: u.CreatedAt.Add(time.Duration(i) * time.Microsecond),
		}
		if err := q.AddCategory(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return models.User{}, notFound(err, "user", id)
	}
	return u, nil
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		return models.User{}, notFound(err, "user", username)
	}
	return u, nil
}

func (q *Queries) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := q.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *Queries) GetPreferences(ctx context.Context, userID string) (models.Preferences, error) {
	p := models.Preferences{UserID: userID}
	err := q.queryRow(ctx, `
		SELECT focus_minutes, break_minutes, daily_goal, timezone
		FROM preferences WHERE user_id = ?`, userID).
		Scan(&p.FocusMinutes, &p.BreakMinutes, &p.DailyGoal, &p.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultPreferences(userID), nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}
	return p, nil
}

func (q *Queries) SavePreferences(ctx context.Context, p models.Preferences) error {
	_, err := q.exec(ctx, `
		INSERT INTO preferences (user_id, focus_minutes, break_minutes, daily_goal, timezone)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			focus_minutes = excluded.focus_minutes,
			break_minutes = excluded.break_minutes,
			daily_goal = excluded.daily_goal,
			timezone = excluded.timezone`,
		p.UserID, p.FocusMinutes, p.BreakMinutes, p.DailyGoal, p.Timezone)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

func (q *Queries) AddCategory(ctx context.Context, c models.Category) error {
	_, err := q.exec(ctx, `
		INSERT INTO categories (id, user_id, name, color, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Color, c.IsDefault, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add category %s: %w", c.Name, err)
	}
	return nil
}

func scanCategory(row scanner) (models.Category, error) {
	var c models.Category
	var createdAt string
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.IsDefault, &createdAt); err != nil {
		return models.Category{}, err
	}
	var err error
	c.CreatedAt, err = parseTime(createdAt)
	return c, err
}

func (q *Queries) GetCategories(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := q.query(ctx, `
		SELECT id, user_id, name, color, is_default, created_at
		FROM categories WHERE user_id = ? ORDER BY created_at, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (q *Queries) GetCategoryByName(ctx context.Context, userID, name string) (models.Category, error) {
	c, err := scanCategory(q.queryRow(ctx, `
		SELECT id, user_id, name, color, is_default, created_at
		FROM categories WHERE user_id = ? AND name = ?`, userID, name))
	if err != nil {
		return models.Category{}, notFound(err, "category", name)
	}
	return c, nil
}

// AdjustPoints applies delta to the balance with a conditional update so the
// balance can never go negative, even without a row lock.
func (q *Queries) AdjustPoints(ctx context.Context, userID string, delta int) (int, bool, error) {
	var balance int
	err := q.queryRow(ctx, `
		UPDATE users SET points = points + ?
		WHERE id = ? AND points + ? >= 0
		RETURNING points`, delta, userID, delta).Scan(&balance)
	if err == nil {
		return balance, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to adjust points: %w", err)
	}

	// no row matched: either the user is missing or the balance is too small
	if err := q.queryRow(ctx, `SELECT points FROM users WHERE id = ?`, userID).Scan(&balance); err != nil {
		return 0, false, notFound(err, "user", userID)
	}
	return balance, false, nil
}

func (q *Queries) IncrementCompletedTasks(ctx context.Context, userID string) error {
	return q.incrementCounter(ctx, "total_completed_tasks", userID)
}

func (q *Queries) IncrementPomodoroSessions(ctx context.Context, userID string) error {
	return q.incrementCounter(ctx, "total_pomodoro_sessions", userID)
}

func (q *Queries) incrementCounter(ctx context.Context, column, userID string) error {
	ok, err := q.execOne(ctx, `UPDATE users SET `+column+` = `+column+` + 1 WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	if !ok {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

func (q *Queries) SaveStreak(ctx context.Context, userID string, streak, longest int, lastActive calendar.Day) error {
	ok, err := q.execOne(ctx, `
		UPDATE users SET streak_days = ?, longest_streak = ?, last_active_date = ?
		WHERE id = ?`, streak, longest, nullDay(lastActive), userID)
	if err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	if !ok {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

func (q *Queries) AddTransaction(ctx context.Context, t models.PointTransaction) error {
	_, err := q.exec(ctx, `
		INSERT INTO point_transactions (id, user_id, kind, amount, balance_after, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Kind), t.Amount, t.BalanceAfter, t.Reference, formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

func (q *Queries) GetTransactions(ctx context.Context, userID string, limit int) ([]models.PointTransaction, error) {
	rows, err := q.query(ctx, `
		SELECT id, user_id, kind, amount, balance_after, reference, created_at
		FROM point_transactions WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.PointTransaction
	for rows.Next() {
		var t models.PointTransaction
		var kind, createdAt string
		if err := rows.Scan(&t.ID, &t.UserID, &kind, &t.Amount, &t.BalanceAfter, &t.Reference, &createdAt); err != nil {
			return nil, err
		}
		t.Kind = constants.TransactionKind(kind)
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
