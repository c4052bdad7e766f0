package backups

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/neurozen/internal/backup"
	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/constants"
)

var errPostgres = errors.New("backups are only managed for SQLite databases; use pg_dump for PostgreSQL")

func manager(ctx *cli.Context) (*backup.Manager, error) {
	if !ctx.IsSQLite() {
		return nil, errPostgres
	}
	return backup.NewManager(ctx.Store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backupPath, err := mgr.Create(ctx.Context())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		fmt.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	fmt.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		timestamp := b.Timestamp.Format("2006-01-02 15:04:05")
		fmt.Printf("  %s  %s  (%.1f KB)\n", timestamp, filepath.Base(b.Path), sizeKB)
	}
	fmt.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Restore without asking for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backupPath, err := resolveBackup(mgr, c.BackupFile)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Println("⚠️  WARNING: This will replace your current database with the backup.")
		fmt.Println("⚠️  IMPORTANT: Stop other neurozen processes (including 'serve') before restoring.")
		fmt.Println("A backup of your current database will be created before restoring.")
		fmt.Printf("\nRestore from: %s\n", backupPath)

		confirmed := false
		if err := huh.NewConfirm().
			Title("Continue?").
			Affirmative("Restore").
			Negative("Cancel").
			Value(&confirmed).
			Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	// the restore replaces the file underneath the open connection
	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}

	previous, err := mgr.Restore(ctx.Context(), backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Println("✓ Database restored successfully!")
	if previous != "" {
		fmt.Printf("  Previous database saved as %s\n", filepath.Base(previous))
	}
	return ctx.Store.Load()
}

// resolveBackup finds name as given, relative to the working directory, or
// inside the backup directory.
func resolveBackup(mgr *backup.Manager, name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		absPath, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return absPath, nil
	}
	possiblePath := filepath.Join(mgr.Dir(), name)
	if _, err := os.Stat(possiblePath); err == nil {
		return possiblePath, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", mgr.Dir())
}
