package tasks

import (
	"fmt"
	"strings"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/tasks"
)

type TaskAddCmd struct {
	Title       string `arg:"" help:"Task title."`
	Points      int    `short:"p" help:"Points awarded on completion." default:"10"`
	Category    string `short:"c" help:"Category name (work, study, personal, health, social, hobby, self_care, other)." default:"other"`
	Priority    string `short:"P" help:"Priority (low|medium|high)." default:"medium" enum:"low,medium,high"`
	Due         string `short:"d" help:"Due date (YYYY-MM-DD or 'today')."`
	Description string `help:"Longer description."`
}

func (c *TaskAddCmd) Validate() error {
	if c.Points < 0 {
		return fmt.Errorf("points cannot be negative")
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	var due calendar.Day
	if c.Due != "" {
		if due, err = parseDue(ctx, u.ID, c.Due); err != nil {
			return err
		}
	}

	task, err := ctx.Service.CreateTask(ctx.Context(), u.ID, tasks.NewTask{
		Category:    c.Category,
		Title:       c.Title,
		Description: c.Description,
		Priority:    constants.Priority(c.Priority),
		DueDate:     due,
		Points:      c.Points,
	})
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Printf("Added task: %s (%d pts) [%s]\n", task.Title, task.Points, cli.ShortID(task.ID))
	return nil
}

func parseDue(ctx *cli.Context, userID, s string) (calendar.Day, error) {
	if strings.EqualFold(s, "today") {
		clock, err := ctx.Service.ClockFor(ctx.Context(), userID)
		if err != nil {
			return "", err
		}
		return clock.Today(), nil
	}
	return calendar.ParseDay(s)
}

type TaskListCmd struct {
	All bool `short:"a" help:"Include completed tasks."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	list, err := ctx.Service.Tasks(ctx.Context(), u.ID, c.All)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No tasks. Add one with 'neurozen task add <title>'.")
		return nil
	}
	for _, t := range list {
		fmt.Println(formatTask(t))
	}
	return nil
}

func formatTask(t models.Task) string {
	mark := "[ ]"
	switch t.Status {
	case constants.TaskStatusInProgress:
		mark = "[~]"
	case constants.TaskStatusCompleted:
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s  %-40s %4d pts  %-6s", mark, cli.ShortID(t.ID), t.Title, t.Points, t.Priority)
	if t.DueDate != "" {
		line += "  due " + string(t.DueDate)
	}
	return line
}

// resolveTask expands an id prefix against all of the user's tasks.
func resolveTask(ctx *cli.Context, userID, prefix string) (string, error) {
	list, err := ctx.Service.Tasks(ctx.Context(), userID, true)
	if err != nil {
		return "", fmt.Errorf("failed to list tasks: %w", err)
	}
	ids := make([]string, len(list))
	for i, t := range list {
		ids[i] = t.ID
	}
	return cli.ResolveID("task", prefix, ids)
}

type TaskStartCmd struct {
	ID string `arg:"" help:"Task id or id prefix."`
}

func (c *TaskStartCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	id, err := resolveTask(ctx, u.ID, c.ID)
	if err != nil {
		return err
	}
	started, err := ctx.Service.StartTask(ctx.Context(), u.ID, id)
	if err != nil {
		return err
	}
	if started {
		fmt.Println("Task started.")
	} else {
		fmt.Println("Task is already in progress.")
	}
	return nil
}

type TaskCompleteCmd struct {
	ID string `arg:"" help:"Task id or id prefix."`
}

func (c *TaskCompleteCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	id, err := resolveTask(ctx, u.ID, c.ID)
	if err != nil {
		return err
	}
	res, err := ctx.Service.CompleteTask(ctx.Context(), u.ID, id)
	if err != nil {
		return err
	}

	if !res.Awarded {
		fmt.Printf("Task was already completed. Balance: %d pts\n", res.Balance)
		return nil
	}
	fmt.Printf("✓ +%d pts  (balance %d)\n", res.PointsDelta, res.Balance)
	if res.Streak.Changed {
		fmt.Printf("🔥 Streak: %d day(s)\n", res.Streak.Days)
	}
	ctx.PerformAutomaticBackup()
	return nil
}

// TaskPointsCmd changes the award of a task that is not completed yet.
type TaskPointsCmd struct {
	ID     string `arg:"" help:"Task id or id prefix."`
	Points int    `arg:"" help:"New point value."`
}

func (c *TaskPointsCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	id, err := resolveTask(ctx, u.ID, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Service.SetTaskPoints(ctx.Context(), u.ID, id, c.Points); err != nil {
		return err
	}
	fmt.Printf("Task now awards %d pts.\n", c.Points)
	return nil
}
