// Package di provides dependency injection configuration for the CampusWall server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/campuswall/campuswall-server/internal/auth"
	"github.com/campuswall/campuswall-server/internal/config"
	"github.com/campuswall/campuswall-server/internal/di/providers"
	"github.com/campuswall/campuswall-server/internal/logger"
	"github.com/campuswall/campuswall-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideConfigWatcher)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideBoardStore)
	do.Provide(injector, providers.ProvideUserStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvidePostService)
	do.Provide(injector, providers.ProvideProfileService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of every provider in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.ConfigWatcherHandle](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)

	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.BoardStoreHandle](injector)
	_ = do.MustInvoke[*providers.UserStoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	_ = do.MustInvoke[*auth.TokenService](injector)

	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.PostService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)

	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
