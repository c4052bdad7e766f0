package rewards

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/rewards"
)

type RewardAddCmd struct {
	Title       string `arg:"" help:"Reward title."`
	Points      int    `arg:"" help:"Price in points."`
	Description string `help:"Longer description."`
}

func (c *RewardAddCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	r, err := ctx.Service.CreateReward(ctx.Context(), u.ID, c.Title, c.Description, c.Points)
	if err != nil {
		return fmt.Errorf("failed to add reward: %w", err)
	}
	fmt.Printf("Added reward: %s (%d pts) [%s]\n", r.Title, r.Points, cli.ShortID(r.ID))
	return nil
}

type RewardListCmd struct{}

func (c *RewardListCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	list, err := ctx.Service.Rewards(ctx.Context(), u.ID)
	if err != nil {
		return fmt.Errorf("failed to list rewards: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No rewards. Add one with 'neurozen reward add <title> <points>'.")
		return nil
	}
	fmt.Printf("Balance: %d pts\n\n", u.Points)
	for _, r := range list {
		fmt.Println(formatReward(r, u.Points))
	}
	return nil
}

func formatReward(r models.Reward, balance int) string {
	state := ""
	switch {
	case r.IsClaimed:
		state = "claimed"
	case !r.IsActive:
		state = "inactive"
	case r.Points > balance:
		state = fmt.Sprintf("need %d more", r.Points-balance)
	}
	return fmt.Sprintf("  %s  %-40s %5d pts  %s", cli.ShortID(r.ID), r.Title, r.Points, state)
}

type RewardClaimCmd struct {
	ID  string `arg:"" help:"Reward id or id prefix."`
	Yes bool   `short:"y" help:"Claim without asking for confirmation."`
}

func (c *RewardClaimCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	list, err := ctx.Service.Rewards(ctx.Context(), u.ID)
	if err != nil {
		return fmt.Errorf("failed to list rewards: %w", err)
	}
	ids := make([]string, len(list))
	byID := make(map[string]models.Reward, len(list))
	for i, r := range list {
		ids[i] = r.ID
		byID[r.ID] = r
	}
	id, err := cli.ResolveID("reward", c.ID, ids)
	if err != nil {
		return err
	}

	if !c.Yes {
		r := byID[id]
		confirmed := false
		if err := huh.NewConfirm().
			Title(fmt.Sprintf("Spend %d pts on %q?", r.Points, r.Title)).
			Description(fmt.Sprintf("Balance: %d pts", u.Points)).
			Value(&confirmed).
			Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Claim cancelled.")
			return nil
		}
	}

	res, err := ctx.Service.ClaimReward(ctx.Context(), u.ID, id)
	if err != nil {
		return err
	}
	switch res.Outcome {
	case rewards.Claimed:
		fmt.Printf("🎁 Reward claimed! Balance: %d pts\n", res.Balance)
		ctx.PerformAutomaticBackup()
	case rewards.AlreadyClaimed:
		fmt.Printf("Reward was already claimed. Balance: %d pts\n", res.Balance)
	case rewards.InsufficientBalance:
		fmt.Printf("Not enough points. Balance: %d pts\n", res.Balance)
	}
	return nil
}
