// Package progress holds the read-mostly commands: the status dashboard,
// daily summaries, the points journal and mood logging.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/service"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2)
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	d, err := ctx.Service.Dashboard(ctx.Context(), u.ID)
	if err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}
	fmt.Println(renderDashboard(d))
	return nil
}

func renderDashboard(d service.Dashboard) string {
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		headerStyle.Render(fmt.Sprintf("%s · %s", d.User.Name(), d.Day)),
		"",
		row("Points", fmt.Sprintf("%d", d.User.Points)),
		row("Streak", fmt.Sprintf("%d days (best %d)", d.Streak.Days, d.Streak.Longest)),
		row("Today", fmt.Sprintf("%d/%d tasks done", d.CompletedToday, d.TasksToday)),
		row("Daily goal", fmt.Sprintf("%d%% of %d", d.GoalProgress, d.DailyGoal)),
		row("Pending", fmt.Sprintf("%d", d.Pending)),
		row("Focus", fmt.Sprintf("%d sessions today", d.SessionsToday)),
	}
	if d.Mood != nil {
		lines = append(lines, row("Mood", d.Mood.Label()))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

type SummaryCmd struct {
	Day string `short:"d" help:"Day to summarize (YYYY-MM-DD, defaults to today)."`
}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	var day calendar.Day
	if c.Day != "" && c.Day != "today" {
		if day, err = calendar.ParseDay(c.Day); err != nil {
			return fmt.Errorf("invalid day: %w", err)
		}
	}

	s, err := ctx.Service.GetDailySummary(ctx.Context(), u.ID, day)
	if err != nil {
		return err
	}
	fmt.Println(headerStyle.Render("Summary for " + string(s.Day)))
	fmt.Println(s.Content)
	return nil
}

type LedgerCmd struct {
	Limit int `short:"l" help:"Number of entries to show." default:"20"`
}

func (c *LedgerCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	clock, err := ctx.Service.ClockFor(ctx.Context(), u.ID)
	if err != nil {
		return err
	}
	entries, err := ctx.Service.Ledger(ctx.Context(), u.ID, c.Limit)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No points earned or spent yet.")
		return nil
	}

	for _, e := range entries {
		sign := "+"
		if e.Kind == constants.TransactionSpend {
			sign = "-"
		}
		ref := ""
		if e.Reference != "" {
			ref = "  " + cli.ShortID(e.Reference)
		}
		fmt.Printf("%s  %-5s %s%-4d balance %d%s\n",
			e.CreatedAt.In(clock.Location()).Format(constants.DateFormat+" "+constants.TimeFormat), e.Kind, sign, e.Amount, e.BalanceAfter, ref)
	}
	return nil
}

type MoodLogCmd struct {
	Mood  string `arg:"" enum:"very_happy,happy,neutral,sad,very_sad" help:"How you feel: very_happy, happy, neutral, sad or very_sad."`
	Notes string `short:"n" help:"Optional notes."`
}

func (c *MoodLogCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	m, err := ctx.Service.LogMood(ctx.Context(), u.ID, constants.Mood(c.Mood), c.Notes)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Logged mood %s for %s\n", m.Label(), m.Day)
	return nil
}
