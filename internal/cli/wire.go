package cli

import (
	"context"

	"github.com/julianstephens/neurozen/internal/ai"
	"github.com/julianstephens/neurozen/internal/config"
	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/keyring"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/service"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/summary"
)

// NewService assembles the application service for cfg. The returned
// function releases the Redis connection, if one was opened.
func NewService(ctx context.Context, cfg config.Config, store storage.Provider) (*service.Service, func()) {
	cleanup := func() {}
	var opts []service.Option

	if cfg.Redis.Addr != "" {
		client, err := summary.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, summary lock is local to this process", "addr", cfg.Redis.Addr, "error", err)
		} else {
			opts = append(opts, service.WithSummaryOptions(
				summary.WithLocker(summary.NewRedisLocker(client)),
				summary.WithLockTTL(constants.SummaryLockTTL),
			))
			cleanup = func() {
				if err := client.Close(); err != nil {
					logger.Debug("Failed to close redis client", "error", err)
				}
			}
		}
	}

	return service.New(store, Generator(cfg), opts...), cleanup
}

// Generator returns the summary text generator, or nil when no API key is
// configured.
func Generator(cfg config.Config) summary.Generator {
	key, err := keyring.ResolveAIKey(cfg.AI.APIKey)
	if err != nil {
		logger.Debug("AI key lookup failed", "error", err)
		return nil
	}
	if key == "" {
		return nil
	}
	client, err := ai.New(ai.Config{
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		APIKey:  key,
		Timeout: cfg.AI.Timeout,
	})
	if err != nil {
		logger.Warn("Summary generation disabled", "error", err)
		return nil
	}
	return client
}
