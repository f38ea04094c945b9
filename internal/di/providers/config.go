// Package providers contains dependency injection providers for the CampusWall server.
package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/campuswall/campuswall-server/internal/config"
	"github.com/campuswall/campuswall-server/internal/logger"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
const shutdownTimeout = 30 * time.Second

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting CampusWall Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}

// ConfigWatcherHandle wraps the .env watcher with its context for lifecycle management.
type ConfigWatcherHandle struct {
	*config.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ConfigWatcherHandle) Shutdown() error {
	h.cancel()
	return h.Stop()
}

// ProvideConfigWatcher provides the hot-reload watcher for the .env file.
func ProvideConfigWatcher(i do.Injector) (*ConfigWatcherHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	w, err := config.NewWatcher(".env", log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	return &ConfigWatcherHandle{Watcher: w, cancel: cancel}, nil
}
