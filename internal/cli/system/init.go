package system

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/neurozen/internal/cli"
)

type InitCmd struct {
	Force       bool   `help:"Force reset by deleting existing database before initialization."`
	Username    string `help:"Create the first user with this username."`
	DisplayName string `help:"Display name for the first user."`
	NoPrompt    bool   `help:"Do not ask for a first user interactively."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if !ctx.IsSQLite() {
			return errors.New("--force only resets SQLite databases")
		}
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// close first so the file is not locked
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
				if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to delete existing database: %w", err)
				}
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized neurozen storage at: %s\n", ctx.Store.GetConfigPath())

	users, err := ctx.Service.Users(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	username, displayName := c.Username, c.DisplayName
	if username == "" {
		if c.NoPrompt {
			fmt.Println("Create a user with 'neurozen user add <name>' to get started.")
			return nil
		}
		if username, displayName, err = promptFirstUser(); err != nil {
			return err
		}
	}

	u, err := ctx.Service.CreateUser(ctx.Context(), username, displayName)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Created user %s\n", u.Username)
	return nil
}

func promptFirstUser() (string, string, error) {
	var username, displayName string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("username is required")
					}
					if strings.ContainsAny(s, " \t") {
						return errors.New("username cannot contain whitespace")
					}
					return nil
				}),
			huh.NewInput().
				Title("Display name").
				Description("Optional").
				Value(&displayName),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("failed to read first user: %w", err)
	}
	return username, displayName, nil
}
