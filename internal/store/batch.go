package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/campuswall/campuswall-server/internal/domain"
)

// BatchWriter provides efficient bulk write operations using BadgerDB's
// WriteBatch. Used by the seed tool; batched writes skip event emission
// and search indexing.
type BatchWriter struct {
	store     *Store
	batch     *badger.WriteBatch
	maxSize   int
	count     int
	autoFlush bool
}

// NewBatchWriter creates a batch writer that auto-flushes when maxSize is reached.
func (s *Store) NewBatchWriter(maxSize int) *BatchWriter {
	return &BatchWriter{
		store:     s,
		batch:     s.db.NewWriteBatch(),
		maxSize:   maxSize,
		autoFlush: true,
	}
}

// CreatePost adds a post to the batch.
func (b *BatchWriter) CreatePost(_ context.Context, post *domain.Post) error {
	now := b.store.nextCreationTime()
	post.CreatedAt = now
	post.UpdatedAt = now

	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	if err := b.batch.Set([]byte(postPrefix+post.ID), data); err != nil {
		return fmt.Errorf("batch set post: %w", err)
	}

	b.count++

	if b.autoFlush && b.count >= b.maxSize {
		if err := b.Flush(); err != nil {
			return fmt.Errorf("auto flush: %w", err)
		}
	}

	return nil
}

// CreateReply adds a reply to the batch. The caller is responsible for
// the parent's reply count; seeders typically set it up front or run
// RecalculateReplyCount afterwards.
func (b *BatchWriter) CreateReply(_ context.Context, reply *domain.Reply) error {
	now := b.store.nextCreationTime()
	reply.CreatedAt = now
	reply.UpdatedAt = now

	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	key := []byte(replyPrefix + reply.PostID + ":" + reply.ID)
	if err := b.batch.Set(key, data); err != nil {
		return fmt.Errorf("batch set reply: %w", err)
	}

	b.count++

	if b.autoFlush && b.count >= b.maxSize {
		if err := b.Flush(); err != nil {
			return fmt.Errorf("auto flush: %w", err)
		}
	}

	return nil
}

// Flush commits all pending writes in the batch.
func (b *BatchWriter) Flush() error {
	if b.count == 0 {
		return nil // Nothing to flush
	}

	if err := b.batch.Flush(); err != nil {
		return fmt.Errorf("flush batch: %w", err)
	}

	if b.store.logger != nil {
		b.store.logger.LogAttrs(context.Background(), slog.LevelInfo, "batch flushed",
			slog.Int("count", b.count),
		)
	}

	// Reset for next batch.
	b.count = 0
	b.batch = b.store.db.NewWriteBatch()

	return nil
}

// Cancel discards all pending writes in the batch.
func (b *BatchWriter) Cancel() {
	b.batch.Cancel()
	b.count = 0
}

// Count returns the number of operations in the current batch.
func (b *BatchWriter) Count() int {
	return b.count
}
