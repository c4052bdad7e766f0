package users

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/neurozen/internal/api"
	"github.com/julianstephens/neurozen/internal/cli"
)

type UserAddCmd struct {
	Username    string `arg:"" help:"Username (no whitespace)."`
	DisplayName string `short:"n" help:"Name to address the user by."`
}

func (c *UserAddCmd) Run(ctx *cli.Context) error {
	u, err := ctx.Service.CreateUser(ctx.Context(), c.Username, c.DisplayName)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Created user %s (%s)\n", u.Username, u.ID)
	return nil
}

type UserListCmd struct{}

func (c *UserListCmd) Run(ctx *cli.Context) error {
	users, err := ctx.Service.Users(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No users yet. Create one with 'neurozen user add <name>'.")
		return nil
	}
	for _, u := range users {
		fmt.Printf("  %-16s %-20s %5d pts  streak %d  %s\n", u.Username, u.Name(), u.Points, u.StreakDays, u.ID)
	}
	return nil
}

// UserTokenCmd issues a bearer token for the HTTP API.
type UserTokenCmd struct {
	TTL time.Duration `help:"How long the token is valid." default:"720h"`
}

func (c *UserTokenCmd) Run(ctx *cli.Context) error {
	if ctx.Config.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not set; add it to config.yaml or export NEUROZEN_AUTH_JWT_SECRET")
	}
	if c.TTL <= 0 {
		return errors.New("--ttl must be positive")
	}
	u, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	token, err := api.GenerateToken([]byte(ctx.Config.Auth.JWTSecret), u.ID, c.TTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
