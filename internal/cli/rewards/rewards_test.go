package rewards

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/cli/clitest"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/tasks"
)

// earn gives the user points the way the app does, by completing a task.
func earn(t *testing.T, ctx *cli.Context, userID string, points int) {
	t.Helper()
	task, err := ctx.Service.CreateTask(ctx.Ctx, userID, tasks.NewTask{Title: "earn", Points: points})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := ctx.Service.CompleteTask(ctx.Ctx, userID, task.ID); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
}

func onlyReward(t *testing.T, ctx *cli.Context, userID string) models.Reward {
	t.Helper()
	list, err := ctx.Service.Rewards(ctx.Ctx, userID)
	if err != nil {
		t.Fatalf("Rewards() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d rewards, want 1", len(list))
	}
	return list[0]
}

func balance(t *testing.T, ctx *cli.Context, userID string) int {
	t.Helper()
	u, err := ctx.Service.User(ctx.Ctx, userID)
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}
	return u.Points
}

func TestRewardClaimFlow(t *testing.T) {
	ctx, u, _ := clitest.WithUser(t)
	if err := (&RewardAddCmd{Title: "Movie night", Points: 50}).Run(ctx); err != nil {
		t.Fatalf("reward add failed: %v", err)
	}
	r := onlyReward(t, ctx, u.ID)
	claim := &RewardClaimCmd{ID: cli.ShortID(r.ID), Yes: true}

	// Not enough points: the claim is reported and nothing changes.
	earn(t, ctx, u.ID, 30)
	if err := claim.Run(ctx); err != nil {
		t.Fatalf("reward claim failed: %v", err)
	}
	if got := balance(t, ctx, u.ID); got != 30 {
		t.Fatalf("balance after insufficient claim = %d, want 30", got)
	}
	if onlyReward(t, ctx, u.ID).IsClaimed {
		t.Fatal("reward claimed without enough points")
	}

	earn(t, ctx, u.ID, 25)
	if err := claim.Run(ctx); err != nil {
		t.Fatalf("reward claim failed: %v", err)
	}
	if got := balance(t, ctx, u.ID); got != 5 {
		t.Errorf("balance after claim = %d, want 5", got)
	}
	if !onlyReward(t, ctx, u.ID).IsClaimed {
		t.Error("reward not marked claimed")
	}

	// A second claim charges nothing.
	if err := claim.Run(ctx); err != nil {
		t.Fatalf("second reward claim failed: %v", err)
	}
	if got := balance(t, ctx, u.ID); got != 5 {
		t.Errorf("balance after second claim = %d, want 5", got)
	}
	if err := (&RewardListCmd{}).Run(ctx); err != nil {
		t.Errorf("reward list failed: %v", err)
	}
}

func TestRewardAddRejectsNegativePrice(t *testing.T) {
	ctx, _, _ := clitest.WithUser(t)

	if err := (&RewardAddCmd{Title: "Free", Points: -5}).Run(ctx); err == nil {
		t.Error("reward add should reject a negative price")
	}
}

func TestRewardClaimUnknown(t *testing.T) {
	ctx, _, _ := clitest.WithUser(t)

	err := (&RewardClaimCmd{ID: "nope", Yes: true}).Run(ctx)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFormatReward(t *testing.T) {
	r := models.Reward{ID: "0123456789", Title: "Book", Points: 40, IsActive: true}
	if got := formatReward(r, 10); !strings.Contains(got, "need 30 more") {
		t.Errorf("formatReward() = %q", got)
	}
	r.IsClaimed = true
	if got := formatReward(r, 100); !strings.Contains(got, "claimed") {
		t.Errorf("formatReward() = %q", got)
	}
}
