package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/notifier"
	"github.com/julianstephens/neurozen/internal/tui"
)

// runTimer is swapped in tests.
var runTimer = func(ctx *cli.Context, sess models.PomodoroSession, breakMinutes int) error {
	m := tui.New(ctx.Context(), ctx.Service, sess, breakMinutes).WithNotifier(notifier.New())
	final, err := tui.Run(ctx.Context(), m)
	if err != nil {
		return fmt.Errorf("timer failed: %w", err)
	}
	if final.Err() != nil {
		return final.Err()
	}
	if final.Counted() {
		fmt.Println("✓ Session counted.")
	}
	return nil
}

type SessionStartCmd struct {
	Task  string `short:"t" help:"Task id or id prefix to focus on."`
	Watch bool   `short:"w" help:"Open the focus timer."`
}

func (c *SessionStartCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	var taskID *string
	if c.Task != "" {
		list, err := ctx.Service.Tasks(ctx.Context(), u.ID, true)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		ids := make([]string, len(list))
		for i, t := range list {
			ids[i] = t.ID
		}
		id, err := cli.ResolveID("task", c.Task, ids)
		if err != nil {
			return err
		}
		taskID = &id
	}

	clock, err := ctx.Service.ClockFor(ctx.Context(), u.ID)
	if err != nil {
		return err
	}
	sess, err := ctx.Service.StartSession(ctx.Context(), u.ID, taskID)
	if err != nil {
		return err
	}
	fmt.Printf("Focus session started: %d min, ends at %s [%s]\n",
		sess.Duration, sess.PlannedEnd().In(clock.Location()).Format(constants.TimeFormat), cli.ShortID(sess.ID))

	if !c.Watch {
		fmt.Println("End it with 'neurozen session end'.")
		return nil
	}
	prefs, err := ctx.Service.Preferences(ctx.Context(), u.ID)
	if err != nil {
		return fmt.Errorf("failed to get preferences: %w", err)
	}
	return runTimer(ctx, sess, prefs.BreakMinutes)
}

type SessionEndCmd struct {
	ID   string `arg:"" optional:"" help:"Session id or id prefix (defaults to the running session)."`
	Note string `short:"n" help:"Note to attach to the session."`
}

func (c *SessionEndCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	id, err := c.resolve(ctx, u.ID)
	if err != nil {
		return err
	}

	var note *string
	if c.Note != "" {
		note = &c.Note
	}
	res, err := ctx.Service.EndSession(ctx.Context(), u.ID, id, note)
	if err != nil {
		return err
	}
	if !res.Ended {
		fmt.Println("Session had already ended.")
		return nil
	}
	fmt.Printf("✓ Session ended after %s.\n", elapsed(res.Session))
	return nil
}

func (c *SessionEndCmd) resolve(ctx *cli.Context, userID string) (string, error) {
	groups, err := ctx.Service.SessionHistory(ctx.Context(), userID, 7)
	if err != nil {
		return "", fmt.Errorf("failed to list sessions: %w", err)
	}
	var ids, running []string
	for _, g := range groups {
		for _, s := range g.Sessions {
			ids = append(ids, s.ID)
			if s.Running() {
				running = append(running, s.ID)
			}
		}
	}
	if c.ID != "" {
		return cli.ResolveID("session", c.ID, ids)
	}
	switch len(running) {
	case 0:
		return "", errors.New("no running session")
	case 1:
		return running[0], nil
	default:
		return "", fmt.Errorf("%d sessions are running, pass an id", len(running))
	}
}

func elapsed(s models.PomodoroSession) string {
	if s.EndTime == nil {
		return "0m"
	}
	d := s.EndTime.Sub(s.StartTime).Round(time.Minute)
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

type SessionListCmd struct {
	Days int `short:"d" help:"Number of days to show, today included." default:"7"`
}

func (c *SessionListCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	clock, err := ctx.Service.ClockFor(ctx.Context(), u.ID)
	if err != nil {
		return err
	}
	groups, err := ctx.Service.SessionHistory(ctx.Context(), u.ID, c.Days)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(groups) == 0 {
		fmt.Println("No focus sessions yet.")
		return nil
	}

	for _, g := range groups {
		fmt.Printf("%s  (%d min focused)\n", g.Day, g.Minutes)
		for _, s := range g.Sessions {
			state := "running"
			if !s.Running() {
				state = "ended after " + elapsed(s)
			}
			line := fmt.Sprintf("  %s  %s  %2d min  %s", cli.ShortID(s.ID), s.StartTime.In(clock.Location()).Format(constants.TimeFormat), s.Duration, state)
			if s.Notes != "" {
				line += "  " + s.Notes
			}
			fmt.Println(line)
		}
	}
	return nil
}
