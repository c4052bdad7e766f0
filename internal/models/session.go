package models

import "time"

// PomodoroSession is a focus session. It is running while EndTime is nil.
type PomodoroSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TaskID    *string    `json:"task_id,omitempty"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Duration  int        `json:"duration"` // minutes, fixed at start
	Completed bool       `json:"completed"`
	Notes     string     `json:"notes,omitempty"`
}

// Running reports whether the session has not been ended yet.
func (s *PomodoroSession) Running() bool {
	return s.EndTime == nil
}

// PlannedEnd returns when the focus period is scheduled to finish.
func (s *PomodoroSession) PlannedEnd() time.Time {
	return s.StartTime.Add(time.Duration(s.Duration) * time.Minute)
}
