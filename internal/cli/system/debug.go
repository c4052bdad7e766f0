package system

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/cli"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/models"
)

type DebugCmd struct {
	DBPath      *DebugDBPathCmd      `cmd:"" help:"Show database path."`
	DumpUser    *DebugDumpUserCmd    `cmd:"" help:"Dump the current user and preferences as JSON."`
	DumpTask    *DebugDumpTaskCmd    `cmd:"" help:"Dump task data as JSON."`
	DumpSession *DebugDumpSessionCmd `cmd:"" help:"Dump focus session data as JSON."`
	DumpSummary *DebugDumpSummaryCmd `cmd:"" help:"Dump a stored daily summary as JSON."`
	DumpLedger  *DebugDumpLedgerCmd  `cmd:"" help:"Dump the point journal as JSON."`
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return fmt.Errorf("failed to get %s: %w", kind, err)
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"path":       ctx.Store.GetConfigPath(),
		"config_dir": ctx.Config.Dir,
	})
}

type DebugDumpUserCmd struct{}

func (cmd *DebugDumpUserCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	prefs, err := ctx.Service.Preferences(ctx.Context(), u.ID)
	if err != nil {
		return fmt.Errorf("failed to get preferences: %w", err)
	}
	return printJSON(struct {
		User        models.User        `json:"user"`
		Preferences models.Preferences `json:"preferences"`
	}{u, prefs})
}

type DebugDumpTaskCmd struct {
	ID string `arg:"" help:"ID of the task to dump."`
}

func (cmd *DebugDumpTaskCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	task, err := ctx.Store.GetTask(ctx.Context(), u.ID, cmd.ID)
	if err != nil {
		return notFound("task", cmd.ID, err)
	}
	return printJSON(task)
}

type DebugDumpSessionCmd struct {
	ID string `arg:"" help:"ID of the session to dump."`
}

func (cmd *DebugDumpSessionCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	sess, err := ctx.Service.Session(ctx.Context(), u.ID, cmd.ID)
	if err != nil {
		return notFound("session", cmd.ID, err)
	}
	return printJSON(sess)
}

type DebugDumpSummaryCmd struct {
	Day string `arg:"" help:"Day of the summary (YYYY-MM-DD)."`
}

// Run prints the stored summary only; it never generates one.
func (cmd *DebugDumpSummaryCmd) Run(ctx *cli.Context) error {
	day, err := calendar.ParseDay(cmd.Day)
	if err != nil {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", cmd.Day)
	}
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	s, err := ctx.Store.GetSummary(ctx.Context(), u.ID, day)
	if err != nil {
		return notFound("summary", cmd.Day, err)
	}
	return printJSON(s)
}

type DebugDumpLedgerCmd struct {
	Limit int `help:"Number of entries to dump." default:"50"`
}

func (cmd *DebugDumpLedgerCmd) Run(ctx *cli.Context) error {
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	txs, err := ctx.Service.Ledger(ctx.Context(), u.ID, cmd.Limit)
	if err != nil {
		return err
	}
	if txs == nil {
		txs = []models.PointTransaction{}
	}
	return printJSON(txs)
}
