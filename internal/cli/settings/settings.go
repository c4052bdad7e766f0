package settings

import (
	"fmt"

	"github.com/julianstephens/neurozen/internal/cli"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show the current user's settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Change the current user's settings."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	prefs, err := ctx.Service.Preferences(ctx.Context(), u.ID)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	fmt.Printf("Settings for %s:\n", u.Name())
	fmt.Printf("  Focus Minutes:  %d\n", prefs.FocusMinutes)
	fmt.Printf("  Break Minutes:  %d\n", prefs.BreakMinutes)
	fmt.Printf("  Daily Goal:     %d tasks\n", prefs.DailyGoal)
	fmt.Printf("  Timezone:       %s\n", prefs.Timezone)
	return nil
}

type SettingsSetCmd struct {
	FocusMinutes *int    `help:"Length of a focus session in minutes."`
	BreakMinutes *int    `help:"Length of the break after a session in minutes."`
	DailyGoal    *int    `help:"Tasks to complete per day."`
	Timezone     *string `help:"IANA timezone that defines your day, or 'Local'."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	prefs, err := ctx.Service.Preferences(ctx.Context(), u.ID)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.FocusMinutes != nil {
		prefs.FocusMinutes = *c.FocusMinutes
		updated = true
	}
	if c.BreakMinutes != nil {
		prefs.BreakMinutes = *c.BreakMinutes
		updated = true
	}
	if c.DailyGoal != nil {
		prefs.DailyGoal = *c.DailyGoal
		updated = true
	}
	if c.Timezone != nil {
		prefs.Timezone = *c.Timezone
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use 'settings show' to view settings or flags to update them.")
		return nil
	}
	if err := ctx.Service.SavePreferences(ctx.Context(), prefs); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
