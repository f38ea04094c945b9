// Package main provides the entry point for the CampusWall server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/campuswall/campuswall-server/internal/di"
	"github.com/campuswall/campuswall-server/internal/di/providers"
	"github.com/campuswall/campuswall-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// Stores and the search index use wrapper types; close them explicitly
	// so nothing is left open if the container skipped them.
	if boardHandle, err := do.Invoke[*providers.BoardStoreHandle](injector); err == nil {
		log.Info("Closing board store...")
		if err := boardHandle.Shutdown(); err != nil {
			log.Error("Failed to close board store", "error", err)
		}
	}

	if userHandle, err := do.Invoke[*providers.UserStoreHandle](injector); err == nil {
		log.Info("Closing user store...")
		if err := userHandle.Shutdown(); err != nil {
			log.Error("Failed to close user store", "error", err)
		}
	}

	if searchHandle, err := do.Invoke[*providers.SearchIndexHandle](injector); err == nil {
		log.Info("Closing search index...")
		if err := searchHandle.Shutdown(); err != nil {
			log.Error("Failed to close search index", "error", err)
		}
	}

	log.Info("Goodnight, campus.")
}
