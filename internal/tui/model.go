// Package tui is the focus timer shown by `neurozen session start --watch`.
// It counts down the session's focus period, ends the session when the
// period elapses, then counts down the break.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/notifier"
	"github.com/julianstephens/neurozen/internal/sessions"
)

// SessionEnder ends a running focus session. *service.Service implements it.
type SessionEnder interface {
	EndSession(ctx context.Context, userID, sessionID string, note *string) (sessions.EndResult, error)
}

// Notifier shows a desktop notification. *notifier.Notifier implements it.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type phase int

const (
	phaseFocus phase = iota
	phaseBreak
	phaseDone
)

type tickMsg time.Time

type sessionEndedMsg struct {
	result sessions.EndResult
	err    error
}

type Model struct {
	ctx      context.Context
	ender    SessionEnder
	notifier Notifier
	session  models.PomodoroSession

	breakLen  time.Duration
	phase     phase
	remaining time.Duration
	phaseEnd  time.Time

	// ended is set once the store has recorded the end, counted when this
	// model was the one that ended it
	ended   bool
	counted bool
	ending  bool
	err     error

	keys     KeyMap
	help     help.Model
	quitting bool
	now      func() time.Time
}

// New returns a timer for a session that is already running.
func New(ctx context.Context, ender SessionEnder, session models.PomodoroSession, breakMinutes int) Model {
	m := Model{
		ctx:      ctx,
		ender:    ender,
		session:  session,
		breakLen: time.Duration(breakMinutes) * time.Minute,
		phase:    phaseFocus,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		now:      time.Now,
	}
	m.phaseEnd = session.PlannedEnd()
	m.remaining = m.phaseEnd.Sub(m.now())
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if m.phase == phaseDone {
			return m, nil
		}
		m.remaining = m.phaseEnd.Sub(m.now())
		if m.remaining <= 0 {
			var cmd tea.Cmd
			m, cmd = m.advance()
			return m, tea.Batch(cmd, tick())
		}
		return m, tick()

	case sessionEndedMsg:
		m.ending = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ended = true
		m.counted = msg.result.Ended
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.End):
			if m.phase == phaseFocus {
				return m.advance()
			}
		case key.Matches(msg, m.keys.Skip):
			if m.phase == phaseBreak {
				m.phase = phaseDone
				m.remaining = 0
			}
		}
	}
	return m, nil
}

// WithNotifier sends a desktop notification at the end of each phase.
func (m Model) WithNotifier(n Notifier) Model {
	m.notifier = n
	return m
}

// advance moves focus to break (ending the session) and break to done.
func (m Model) advance() (Model, tea.Cmd) {
	switch m.phase {
	case phaseFocus:
		if m.breakLen > 0 {
			m.phase = phaseBreak
			m.phaseEnd = m.now().Add(m.breakLen)
			m.remaining = m.breakLen
		} else {
			m.phase = phaseDone
			m.remaining = 0
		}
		return m, tea.Batch(m.endSession(), m.notify(notifier.FocusComplete(m.session.Duration, int(m.breakLen/time.Minute))))
	case phaseBreak:
		m.phase = phaseDone
		m.remaining = 0
		return m, m.notify(notifier.BreakOver())
	}
	return m, nil
}

func (m Model) notify(text string) tea.Cmd {
	if m.notifier == nil {
		return nil
	}
	ctx, n := m.ctx, m.notifier
	return func() tea.Msg {
		if err := n.Notify(ctx, text); err != nil {
			logger.Debug("Desktop notification skipped", "error", err)
		}
		return nil
	}
}

func (m *Model) endSession() tea.Cmd {
	if m.ended || m.ending {
		return nil
	}
	m.ending = true
	ctx, ender, s := m.ctx, m.ender, m.session
	return func() tea.Msg {
		res, err := ender.EndSession(ctx, s.UserID, s.ID, nil)
		return sessionEndedMsg{result: res, err: err}
	}
}

// Counted reports whether this timer ended the session and it was counted.
func (m Model) Counted() bool {
	return m.counted
}

// Err returns the error from ending the session, if any.
func (m Model) Err() error {
	return m.err
}

// Run shows m until the user quits and returns the final model.
func Run(ctx context.Context, m Model) (Model, error) {
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}
