package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var clock, label string
	switch m.phase {
	case phaseFocus:
		clock = focusStyle.Render(formatRemaining(m.remaining))
		label = focusStyle.Render("FOCUS")
	case phaseBreak:
		clock = breakStyle.Render(formatRemaining(m.remaining))
		label = breakStyle.Render("BREAK")
	case phaseDone:
		clock = breakStyle.Render("Done!")
		label = mutedStyle.Render("Session complete")
	}

	status := mutedStyle.Render(fmt.Sprintf("%d minute session", m.session.Duration))
	switch {
	case m.err != nil:
		status = dangerStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.ending:
		status = mutedStyle.Render("Saving session...")
	case m.ended && m.counted:
		status = breakStyle.Render("✓ Session recorded")
	case m.ended:
		status = warningStyle.Render("Session was already ended elsewhere")
	}

	panel := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("neurozen focus"),
		"",
		clock,
		label,
		"",
		status,
	))

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, panel, m.help.View(m.keys)))
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
