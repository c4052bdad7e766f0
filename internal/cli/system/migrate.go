package system

import (
	"fmt"

	"github.com/julianstephens/neurozen/internal/cli"
)

type MigrateCmd struct {
	Check bool `help:"Only report pending migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return fmt.Errorf("this store does not support migrations")
	}

	if c.Check {
		pending, err := m.PendingMigrations(ctx.Context())
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Printf("%d migration(s) pending.\n", pending)
		return nil
	}

	count, err := m.Migrate(ctx.Context(), func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
