package sessions

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/cli/clitest"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/tasks"
)

func sessionsOf(t *testing.T, ctx *cli.Context, userID string) []models.PomodoroSession {
	t.Helper()
	groups, err := ctx.Service.SessionHistory(ctx.Ctx, userID, 1)
	if err != nil {
		t.Fatalf("SessionHistory() error = %v", err)
	}
	var all []models.PomodoroSession
	for _, g := range groups {
		all = append(all, g.Sessions...)
	}
	return all
}

func TestSessionStartAndEnd(t *testing.T) {
	ctx, u, clock := clitest.WithUser(t)

	if err := (&SessionStartCmd{}).Run(ctx); err != nil {
		t.Fatalf("session start failed: %v", err)
	}
	clock.Advance(25 * time.Minute)
	if err := (&SessionEndCmd{Note: "deep work"}).Run(ctx); err != nil {
		t.Fatalf("session end failed: %v", err)
	}

	list := sessionsOf(t, ctx, u.ID)
	if len(list) != 1 {
		t.Fatalf("got %d sessions, want 1", len(list))
	}
	if list[0].Running() || list[0].Notes != "deep work" {
		t.Errorf("session = %+v", list[0])
	}

	user, err := ctx.Service.User(ctx.Ctx, u.ID)
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}
	if user.TotalPomodoroSessions != 1 {
		t.Errorf("TotalPomodoroSessions = %d, want 1", user.TotalPomodoroSessions)
	}

	// Ending by id again is reported, not counted twice.
	if err := (&SessionEndCmd{ID: cli.ShortID(list[0].ID)}).Run(ctx); err != nil {
		t.Fatalf("second session end failed: %v", err)
	}
	if user, _ = ctx.Service.User(ctx.Ctx, u.ID); user.TotalPomodoroSessions != 1 {
		t.Errorf("TotalPomodoroSessions after second end = %d, want 1", user.TotalPomodoroSessions)
	}

	if err := (&SessionListCmd{Days: 7}).Run(ctx); err != nil {
		t.Errorf("session list failed: %v", err)
	}
}

func TestSessionEndWithoutRunning(t *testing.T) {
	ctx, _, _ := clitest.WithUser(t)

	if err := (&SessionEndCmd{}).Run(ctx); err == nil {
		t.Error("session end should fail when nothing is running")
	}
}

func TestSessionEndAmbiguous(t *testing.T) {
	ctx, _, _ := clitest.WithUser(t)
	for i := 0; i < 2; i++ {
		if err := (&SessionStartCmd{}).Run(ctx); err != nil {
			t.Fatalf("session start failed: %v", err)
		}
	}

	if err := (&SessionEndCmd{}).Run(ctx); err == nil {
		t.Error("session end should ask for an id when two sessions run")
	}
}

func TestSessionStartForTask(t *testing.T) {
	ctx, u, _ := clitest.WithUser(t)
	task, err := ctx.Service.CreateTask(ctx.Ctx, u.ID, tasks.NewTask{Title: "focus", Points: 5})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if err := (&SessionStartCmd{Task: cli.ShortID(task.ID)}).Run(ctx); err != nil {
		t.Fatalf("session start --task failed: %v", err)
	}
	list := sessionsOf(t, ctx, u.ID)
	if len(list) != 1 || list[0].TaskID == nil || *list[0].TaskID != task.ID {
		t.Errorf("sessions = %+v", list)
	}

	err = (&SessionStartCmd{Task: "ffffffff"}).Run(ctx)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("session start for unknown task error = %v, want ErrNotFound", err)
	}
}

func TestSessionStartWatch(t *testing.T) {
	ctx, _, _ := clitest.WithUser(t)

	var got models.PomodoroSession
	var gotBreak int
	orig := runTimer
	runTimer = func(_ *cli.Context, sess models.PomodoroSession, breakMinutes int) error {
		got, gotBreak = sess, breakMinutes
		return nil
	}
	t.Cleanup(func() { runTimer = orig })

	if err := (&SessionStartCmd{Watch: true}).Run(ctx); err != nil {
		t.Fatalf("session start --watch failed: %v", err)
	}
	if got.ID == "" || got.Duration != 25 || gotBreak != 5 {
		t.Errorf("timer got session %+v, break %d", got, gotBreak)
	}
}

func TestElapsed(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Minute + 40*time.Second)

	if got := elapsed(models.PomodoroSession{StartTime: start, EndTime: &end}); got != "25m" {
		t.Errorf("elapsed() = %q, want 25m", got)
	}
	if got := elapsed(models.PomodoroSession{StartTime: start}); got != "0m" {
		t.Errorf("elapsed() of a running session = %q", got)
	}
}
