package cmd

import (
	"context"

	"github.com/pawws/pawws/internal/app"
	"github.com/pawws/pawws/internal/config"
	"github.com/pawws/pawws/internal/logger"
)

// load reads the environment and starts the same logger the server uses.
func load() *config.Config {
	cfg := config.Load()
	logger.Init(logger.Options{
		Development: cfg.IsDevelopment(),
		Environment: cfg.AppEnv,
		SentryDSN:   cfg.SentryDSN,
	})
	return cfg
}

// withApp runs fn against a fully migrated and wired App.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg := load()
	defer logger.Flush()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
