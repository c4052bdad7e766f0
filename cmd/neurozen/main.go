package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/cli/backups"
	"github.com/julianstephens/neurozen/internal/cli/progress"
	"github.com/julianstephens/neurozen/internal/cli/rewards"
	"github.com/julianstephens/neurozen/internal/cli/sessions"
	"github.com/julianstephens/neurozen/internal/cli/settings"
	"github.com/julianstephens/neurozen/internal/cli/system"
	"github.com/julianstephens/neurozen/internal/cli/tasks"
	"github.com/julianstephens/neurozen/internal/cli/users"
	"github.com/julianstephens/neurozen/internal/config"
	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/keyring"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/storage/postgres"
	"github.com/julianstephens/neurozen/internal/storage/sqlite"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Directory holding config.yaml, logs and the default database." type:"string" default:"${config_dir}"`
	Database  string `help:"SQLite database path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use .pgpass or the OS keyring instead." aliases:"config" type:"string"`
	Debug     bool   `help:"Enable debug logging to stderr."`
	User      string `short:"u" help:"Username to act as (defaults to the only user)." env:"NEUROZEN_USER"`

	Init    system.InitCmd      `cmd:"" help:"Initialize neurozen storage."`
	Migrate system.MigrateCmd   `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd    `cmd:"" help:"Run health checks and diagnostics."`
	Serve   system.ServeCmd     `cmd:"" help:"Serve the HTTP API."`
	Status  progress.StatusCmd  `cmd:"" help:"Show points, streak and today's progress." default:"1"`
	Summary progress.SummaryCmd `cmd:"" help:"Show the generated summary of a day."`
	Ledger  progress.LedgerCmd  `cmd:"" help:"Show recent point transactions."`
	Mood    struct {
		Log progress.MoodLogCmd `cmd:"" help:"Log how you feel today." default:"withargs"`
	} `cmd:"" help:"Track your mood."`
	Task struct {
		Add      tasks.TaskAddCmd      `cmd:"" help:"Add a new task."`
		List     tasks.TaskListCmd     `cmd:"" help:"List open tasks."`
		Start    tasks.TaskStartCmd    `cmd:"" help:"Mark a task in progress."`
		Complete tasks.TaskCompleteCmd `cmd:"" help:"Complete a task and collect its points."`
		Points   tasks.TaskPointsCmd   `cmd:"" help:"Change the points a task is worth."`
	} `cmd:"" help:"Manage tasks."`
	Reward struct {
		Add   rewards.RewardAddCmd   `cmd:"" help:"Add a reward to the catalogue."`
		List  rewards.RewardListCmd  `cmd:"" help:"List rewards."`
		Claim rewards.RewardClaimCmd `cmd:"" help:"Spend points on a reward."`
	} `cmd:"" help:"Manage rewards."`
	Session struct {
		Start sessions.SessionStartCmd `cmd:"" help:"Start a focus session."`
		End   sessions.SessionEndCmd   `cmd:"" help:"End a focus session."`
		List  sessions.SessionListCmd  `cmd:"" help:"Show recent focus sessions by day."`
	} `cmd:"" help:"Manage pomodoro focus sessions."`
	Users struct {
		Add   users.UserAddCmd   `cmd:"" help:"Add a user."`
		List  users.UserListCmd  `cmd:"" help:"List users."`
		Token users.UserTokenCmd `cmd:"" help:"Issue an API token for the current user."`
	} `cmd:"" name:"user" help:"Manage users."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage the current user's settings."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show a stored secret, masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete a stored secret."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
	DebugCmd system.DebugCmd  `cmd:"" name:"debug" hidden:"" help:"Debug commands for troubleshooting."`
	Notify   system.NotifyCmd `cmd:"" hidden:"" help:"Send a notification (used internally)."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Gamified task, reward and focus tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"config_dir": constants.DefaultConfigDir,
		},
	)

	cfg, err := config.Load(CLI.ConfigDir)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Database != "" {
		cfg.Database = config.ExpandHome(CLI.Database)
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	command := ""
	if ctx.Selected() != nil {
		command = ctx.Selected().Name
	}
	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.Dir,
		Level:     cfg.LogLevel,
		Stderr:    command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer store.Close()

	// init loads the store itself, possibly after deleting it
	if command != "init" {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup := cli.NewService(runCtx, cfg, store)
	defer cleanup()

	appCtx := &cli.Context{
		Ctx:     runCtx,
		Config:  cfg,
		Store:   store,
		Service: svc,
		User:    CLI.User,
	}
	if err := ctx.Run(appCtx); err != nil {
		apperrors.Fatal(err)
	}
}

// openStore picks the backend from the database setting. A PostgreSQL
// connection string stored in the keyring is used when no database was
// configured explicitly.
func openStore(cfg config.Config) (storage.Provider, error) {
	if cfg.IsPostgres() {
		if _, err := postgres.ValidateConnString(cfg.Database); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w\n       Store the connection string with 'neurozen keyring set' or use a .pgpass file", err)
			}
			return nil, err
		}
		logger.Debug("Using PostgreSQL storage")
		return postgres.New(cfg.Database), nil
	}

	if CLI.Database == "" && os.Getenv("NEUROZEN_DATABASE") == "" {
		connStr, err := keyring.GetConnectionString()
		switch {
		case err == nil:
			logger.Debug("Using PostgreSQL connection string from keyring")
			return postgres.New(connStr), nil
		case !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrKeyringUnavailable):
			logger.Debug("Keyring lookup failed", "error", err)
		}
	}

	logger.Debug("Using SQLite storage", "path", cfg.Database)
	return sqlite.NewStore(cfg.Database), nil
}
