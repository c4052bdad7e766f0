package settings

import (
	"testing"

	"github.com/julianstephens/neurozen/internal/cli/clitest"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestSettingsShow(t *testing.T) {
	ctx, _, _ := clitest.WithUser(t)

	if err := (&SettingsShowCmd{}).Run(ctx); err != nil {
		t.Errorf("settings show failed: %v", err)
	}
}

func TestSettingsShowWithoutUser(t *testing.T) {
	ctx, _ := clitest.NewContext(t)

	if err := (&SettingsShowCmd{}).Run(ctx); err == nil {
		t.Error("settings show should fail before any user exists")
	}
}

func TestSettingsSet(t *testing.T) {
	ctx, u, _ := clitest.WithUser(t)

	cmd := &SettingsSetCmd{
		FocusMinutes: intPtr(50),
		BreakMinutes: intPtr(10),
		DailyGoal:    intPtr(6),
		Timezone:     strPtr("Europe/Berlin"),
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}

	prefs, err := ctx.Service.Preferences(ctx.Ctx, u.ID)
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if prefs.FocusMinutes != 50 || prefs.BreakMinutes != 10 || prefs.DailyGoal != 6 || prefs.Timezone != "Europe/Berlin" {
		t.Errorf("preferences = %+v", prefs)
	}
}

func TestSettingsSetRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  SettingsSetCmd
	}{
		{"zero focus", SettingsSetCmd{FocusMinutes: intPtr(0)}},
		{"negative break", SettingsSetCmd{BreakMinutes: intPtr(-1)}},
		{"negative goal", SettingsSetCmd{DailyGoal: intPtr(-2)}},
		{"unknown timezone", SettingsSetCmd{Timezone: strPtr("Mars/Olympus_Mons")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, u, _ := clitest.WithUser(t)
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("settings set should fail")
			}
			prefs, err := ctx.Service.Preferences(ctx.Ctx, u.ID)
			if err != nil {
				t.Fatalf("Preferences() error = %v", err)
			}
			if prefs.FocusMinutes != 25 || prefs.DailyGoal != 4 {
				t.Errorf("rejected change was saved: %+v", prefs)
			}
		})
	}
}

func TestSettingsSetNoChanges(t *testing.T) {
	ctx, _, _ := clitest.WithUser(t)

	if err := (&SettingsSetCmd{}).Run(ctx); err != nil {
		t.Errorf("settings set without flags failed: %v", err)
	}
}
