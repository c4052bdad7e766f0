package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
)

var _ storage.Tx = (*Queries)(nil)

const sessionSelect = `
	SELECT id, user_id, task_id, start_time, end_time, duration, completed, notes
	FROM pomodoro_sessions`

func scanSession(row scanner) (models.PomodoroSession, error) {
	var s models.PomodoroSession
	var taskID, endTime sql.NullString
	var startTime string
	err := row.Scan(&s.ID, &s.UserID, &taskID, &startTime, &endTime, &s.Duration, &s.Completed, &s.Notes)
	if err != nil {
		return models.PomodoroSession{}, err
	}
	if taskID.Valid {
		id := taskID.String
		s.TaskID = &id
	}
	if s.StartTime, err = parseTime(startTime); err != nil {
		return models.PomodoroSession{}, err
	}
	if s.EndTime, err = parseNullTime(endTime); err != nil {
		return models.PomodoroSession{}, err
	}
	return s, nil
}

func (q *Queries) AddSession(ctx context.Context, s models.PomodoroSession) error {
	_, err := q.exec(ctx, `
		INSERT INTO pomodoro_sessions (id, user_id, task_id, start_time, end_time, duration, completed, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, nullString(s.TaskID), formatTime(s.StartTime), nullTime(s.EndTime), s.Duration, s.Completed, s.Notes)
	if err != nil {
		return fmt.Errorf("failed to add session: %w", err)
	}
	return nil
}

func (q *Queries) GetSession(ctx context.Context, userID, id string) (models.PomodoroSession, error) {
	s, err := scanSession(q.queryRow(ctx, sessionSelect+` WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return models.PomodoroSession{}, notFound(err, "session", id)
	}
	return s, nil
}

func (q *Queries) GetSessions(ctx context.Context, userID string, from, to time.Time) ([]models.PomodoroSession, error) {
	rows, err := q.query(ctx, sessionSelect+`
		WHERE user_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time DESC`, userID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.PomodoroSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (q *Queries) EndSession(ctx context.Context, id string, at time.Time, notes *string) (bool, error) {
	ok, err := q.execOne(ctx, `
		UPDATE pomodoro_sessions SET end_time = ?, completed = TRUE, notes = COALESCE(?, notes)
		WHERE id = ? AND end_time IS NULL`, formatTime(at), nullString(notes), id)
	if err != nil {
		return false, fmt.Errorf("failed to end session: %w", err)
	}
	return ok, nil
}

func (q *Queries) AddMoodEntry(ctx context.Context, m models.MoodEntry) error {
	_, err := q.exec(ctx, `
		INSERT INTO mood_entries (id, user_id, mood, notes, day, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, string(m.Mood), m.Notes, string(m.Day), formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add mood entry: %w", err)
	}
	return nil
}

// GetLatestMood returns the most recent mood logged for day, or nil.
func (q *Queries) GetLatestMood(ctx context.Context, userID string, day calendar.Day) (*models.MoodEntry, error) {
	var m models.MoodEntry
	var mood, d, createdAt string
	err := q.queryRow(ctx, `
		SELECT id, user_id, mood, notes, day, created_at
		FROM mood_entries WHERE user_id = ? AND day = ?
		ORDER BY created_at DESC LIMIT 1`, userID, string(day)).
		Scan(&m.ID, &m.UserID, &mood, &m.Notes, &d, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mood: %w", err)
	}
	m.Mood = constants.Mood(mood)
	m.Day = calendar.Day(d)
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (q *Queries) GetSummary(ctx context.Context, userID string, day calendar.Day) (models.DailySummary, error) {
	var s models.DailySummary
	var d, createdAt string
	err := q.queryRow(ctx, `
		SELECT id, user_id, day, content, created_at
		FROM daily_summaries WHERE user_id = ? AND day = ?`, userID, string(day)).
		Scan(&s.ID, &s.UserID, &d, &s.Content, &createdAt)
	if err != nil {
		return models.DailySummary{}, notFound(err, "summary", userID+"/"+string(day))
	}
	s.Day = calendar.Day(d)
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.DailySummary{}, err
	}
	return s, nil
}

// InsertSummaryIfAbsent relies on UNIQUE(user_id, day); a losing writer
// inserts nothing and reports false.
func (q *Queries) InsertSummaryIfAbsent(ctx context.Context, s models.DailySummary) (bool, error) {
	ok, err := q.execOne(ctx, `
		INSERT INTO daily_summaries (id, user_id, day, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, day) DO NOTHING`,
		s.ID, s.UserID, string(s.Day), s.Content, formatTime(s.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("failed to store summary: %w", err)
	}
	return ok, nil
}

func (q *Queries) GetDayActivity(ctx context.Context, userID string, day calendar.Day, from, to time.Time) (storage.DayActivity, error) {
	var a storage.DayActivity
	start, end := formatTime(from), formatTime(to)

	err := q.queryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN t.due_date = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.completed_at >= ? AND t.completed_at < ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.status != 'completed' THEN 1 ELSE 0 END), 0)
		FROM tasks t JOIN categories c ON c.id = t.category_id
		WHERE c.user_id = ?`, string(day), start, end, userID).
		Scan(&a.TasksDue, &a.TasksCompleted, &a.TasksPending)
	if err != nil {
		return a, fmt.Errorf("failed to count tasks: %w", err)
	}

	err = q.queryRow(ctx, `
		SELECT COUNT(*) FROM pomodoro_sessions
		WHERE user_id = ? AND start_time >= ? AND start_time < ?`, userID, start, end).
		Scan(&a.SessionsStarted)
	if err != nil {
		return a, fmt.Errorf("failed to count sessions: %w", err)
	}

	rows, err := q.query(ctx, `
		SELECT t.title FROM tasks t JOIN categories c ON c.id = t.category_id
		WHERE c.user_id = ? AND t.completed_at >= ? AND t.completed_at < ?
		ORDER BY t.completed_at`, userID, start, end)
	if err != nil {
		return a, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return a, err
		}
		a.CompletedTitles = append(a.CompletedTitles, title)
	}
	return a, rows.Err()
}
