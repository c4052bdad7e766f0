package system

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/neurozen/internal/backup"
	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/keyring"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage/sqlite"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warnOnly checks report a warning instead of failing the run.
	warnOnly bool
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Ledger consistency", run: checkLedgerConsistency, needsDB: true},
	{name: "User timezones", run: checkUserTimezones, needsDB: true},
	{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone() }},
	{name: "Summary generation", run: checkSummaryGeneration, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRowContext(ctx.Context(), "SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
		return nil
	}

	_, err := ctx.Store.GetAllUsers(ctx.Context())
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return nil
	}
	return m.CheckSchema(ctx.Context())
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return nil
	}
	pending, err := m.PendingMigrations(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("%d migration(s) pending, run 'neurozen migrate'", pending)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return errors.New("backups are managed by the PostgreSQL server")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'neurozen backup create'")
	}
	return nil
}

// checkLedgerConsistency compares every balance with the net of its journal.
func checkLedgerConsistency(ctx *cli.Context) error {
	users, err := ctx.Store.GetAllUsers(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	var problems []error
	for _, u := range users {
		if err := ledgerProblem(ctx, u); err != nil {
			problems = append(problems, err)
		}
	}
	return errors.Join(problems...)
}

func ledgerProblem(ctx *cli.Context, u models.User) error {
	if u.Points < 0 {
		return fmt.Errorf("%s: negative balance %d", u.Username, u.Points)
	}
	if u.LongestStreak < u.StreakDays {
		return fmt.Errorf("%s: longest streak %d is below current streak %d", u.Username, u.LongestStreak, u.StreakDays)
	}

	txs, err := ctx.Store.GetTransactions(ctx.Context(), u.ID, math.MaxInt32)
	if err != nil {
		return fmt.Errorf("%s: failed to read journal: %w", u.Username, err)
	}
	net := 0
	for _, t := range txs {
		switch t.Kind {
		case constants.TransactionEarn:
			net += t.Amount
		case constants.TransactionSpend:
			net -= t.Amount
		default:
			return fmt.Errorf("%s: unknown journal entry kind %q", u.Username, t.Kind)
		}
	}
	if net != u.Points {
		return fmt.Errorf("%s: balance %d does not match journal total %d", u.Username, u.Points, net)
	}
	return nil
}

func checkUserTimezones(ctx *cli.Context) error {
	users, err := ctx.Store.GetAllUsers(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		prefs, err := ctx.Store.GetPreferences(ctx.Context(), u.ID)
		if err != nil {
			return fmt.Errorf("%s: failed to read preferences: %w", u.Username, err)
		}
		if !calendar.ValidateTimezone(prefs.Timezone) {
			return fmt.Errorf("%s: invalid timezone %q, fix it with 'neurozen settings set --timezone'", u.Username, prefs.Timezone)
		}
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkSummaryGeneration(ctx *cli.Context) error {
	key, err := keyring.ResolveAIKey(ctx.Config.AI.APIKey)
	if err != nil {
		return fmt.Errorf("failed to read AI key: %w", err)
	}
	if key == "" {
		return errors.New("no AI API key configured; daily summaries cannot be generated (run 'neurozen keyring set --ai')")
	}
	return nil
}
