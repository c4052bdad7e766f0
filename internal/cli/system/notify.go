package system

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/notifier"
)

// NotifyCmd is meant to run once a minute (cron, launchd). It tells the tray
// app when the current user's focus session reaches its planned end. With a
// message argument it sends that text instead.
type NotifyCmd struct {
	Message string `arg:"" optional:"" help:"Send this text instead of checking sessions."`
	DryRun  bool   `help:"Print notifications to stdout instead of sending them."`
}

// sender is swapped in tests.
var sender = func() interface {
	Notify(ctx context.Context, text string) error
} {
	return notifier.New()
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if msg := strings.TrimSpace(c.Message); msg != "" {
		return c.send(ctx, msg)
	}

	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	clock, err := ctx.Service.ClockFor(ctx.Context(), u.ID)
	if err != nil {
		return err
	}
	prefs, err := ctx.Service.Preferences(ctx.Context(), u.ID)
	if err != nil {
		return fmt.Errorf("failed to get preferences: %w", err)
	}
	groups, err := ctx.Service.SessionHistory(ctx.Context(), u.ID, 2)
	if err != nil {
		return fmt.Errorf("failed to get sessions: %w", err)
	}

	now := clock.Now()
	for _, g := range groups {
		for _, s := range g.Sessions {
			if !dueNow(s, now) {
				continue
			}
			if err := c.send(ctx, notifier.FocusComplete(s.Duration, prefs.BreakMinutes)); err != nil {
				return err
			}
		}
	}
	if c.DryRun && len(groups) == 0 {
		fmt.Println("No sessions today.")
	}
	return nil
}

// dueNow reports whether a running session's planned end falls within the
// minute before now, so a once-a-minute schedule notifies exactly once.
func dueNow(s models.PomodoroSession, now time.Time) bool {
	if !s.Running() {
		return false
	}
	end := s.PlannedEnd()
	return !end.After(now) && end.After(now.Add(-time.Minute))
}

func (c *NotifyCmd) send(ctx *cli.Context, msg string) error {
	if c.DryRun {
		fmt.Println("[DryRun] " + msg)
		return nil
	}
	if err := sender().Notify(ctx.Context(), msg); err != nil {
		if errors.Is(err, notifier.ErrTrayNotRunning) {
			fmt.Println("Tray app is not running; notification skipped.")
			return nil
		}
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
