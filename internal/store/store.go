// Package store provides Badger-backed persistence for board records:
// posts, votes, replies, and profiles.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/campuswall/campuswall-server/internal/domain"
)

// EventEmitter is the interface for emitting SSE events.
// Store uses this to broadcast changes without depending on SSE implementation details.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search implementation.
type SearchIndexer interface {
	IndexPost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, postID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexPost is a no-op.
func (NoopSearchIndexer) IndexPost(context.Context, *domain.Post) error { return nil }

// DeletePost is a no-op.
func (NoopSearchIndexer) DeletePost(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// SSE event emitter for broadcasting committed changes.
	eventEmitter EventEmitter

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// Serializes post-creation timestamp assignment so creation times
	// are strictly increasing per store.
	clockMu  sync.Mutex
	lastTime time.Time

	// Profiles holds one record per user, keyed by user ID.
	Profiles *Entity[domain.Profile]
}

// New creates a new Store instance with the given database path and event emitter.
// The emitter is required and used to broadcast store changes via SSE.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:            db,
		logger:        logger,
		eventEmitter:  emitter,
		searchIndexer: NewNoopSearchIndexer(),
	}

	store.initProfiles()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// Set after store creation to avoid circular dependencies
// (store needs to exist before the search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// initProfiles initializes the Profiles entity on the store.
// Profile records use the owning user's ID as their key, so no
// secondary index is needed for the by-user lookup. The status index
// serves the admin review queue (ListByIndex with a status prefix).
func (s *Store) initProfiles() {
	s.Profiles = NewEntity[domain.Profile](s, profilePrefix).
		WithIndex("status", func(p *domain.Profile) []string {
			return []string{string(p.Status) + ":" + p.UserID}
		})
}

// nextCreationTime returns a strictly increasing timestamp for new records.
func (s *Store) nextCreationTime() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	now := time.Now()
	if !now.After(s.lastTime) {
		now = s.lastTime.Add(time.Nanosecond)
	}
	s.lastTime = now
	return now
}
