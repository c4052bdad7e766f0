package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/neurozen/internal/api"
	"github.com/julianstephens/neurozen/internal/cli"
	"github.com/julianstephens/neurozen/internal/logger"
)

// ServeCmd runs the HTTP API until the process is interrupted.
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to server.addr)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	secret := ctx.Config.Auth.JWTSecret
	if secret == "" {
		return errors.New("auth.jwt_secret is not set; add it to config.yaml or export NEUROZEN_AUTH_JWT_SECRET")
	}
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}

	ctx.PerformAutomaticBackup()

	router := api.NewRouter(ctx.Service, []byte(secret))
	fmt.Printf("Serving neurozen API on %s\n", addr)
	logger.Info("API server starting", "addr", addr)
	if err := api.Serve(ctx.Context(), addr, router); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("API server stopped")
	return nil
}
