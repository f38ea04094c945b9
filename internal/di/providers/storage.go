package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/campuswall/campuswall-server/internal/config"
	"github.com/campuswall/campuswall-server/internal/logger"
	"github.com/campuswall/campuswall-server/internal/sse"
	"github.com/campuswall/campuswall-server/internal/store"
	"github.com/campuswall/campuswall-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// BoardStoreHandle wraps the board store with shutdown capability.
type BoardStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *BoardStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideBoardStore provides the Badger store for posts, votes, replies,
// and profiles. Committed changes are broadcast over SSE.
func ProvideBoardStore(i do.Injector) (*BoardStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "board")
	db, err := store.New(dbPath, log.Logger, sseHandle.Manager)
	if err != nil {
		return nil, err
	}

	log.Info("Board store initialized", "path", dbPath)

	return &BoardStoreHandle{Store: db}, nil
}

// UserStoreHandle wraps the user database with shutdown capability.
type UserStoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *UserStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideUserStore provides the SQLite store for users and sessions.
func ProvideUserStore(i do.Injector) (*UserStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "users.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("User store initialized", "path", dbPath)

	return &UserStoreHandle{Store: db}, nil
}
