package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/campuswall/campuswall-server/internal/domain"
	"github.com/campuswall/campuswall-server/internal/sse"
)

// CreatePost persists a new post. The caller assigns the ID; the store
// assigns the creation timestamp so ordering is consistent per store.
// Counters must start at zero - only vote and reply transactions may
// move them afterwards.
func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.nextCreationTime()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Upvotes = 0
	post.Downvotes = 0
	post.Score = 0
	post.ReplyCount = 0

	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := buildKey(postPrefix, post.ID)
		defer releaseKey(key)

		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(append([]byte(nil), key...), data)
	})
	if err != nil {
		return err
	}

	s.eventEmitter.Emit(sse.NewPostCreatedEvent(post))

	if err := s.searchIndexer.IndexPost(ctx, post); err != nil && s.logger != nil {
		s.logger.Warn("failed to index post", "post_id", post.ID, "error", err)
	}

	return nil
}

// GetPost retrieves a post by ID.
// Returns ErrNotFound if the post does not exist.
func (s *Store) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var post domain.Post
	err := s.db.View(func(txn *badger.Txn) error {
		return s.getPostInTxn(txn, postID, &post)
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// ListPosts returns posts ordered by the given sort mode, optionally
// filtered to a single topic. Pass an empty topic for no filter.
func (s *Store) ListPosts(ctx context.Context, mode domain.SortMode, topic domain.Topic) ([]*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var posts []*domain.Post
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(postPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var post domain.Post
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &post)
			}); err != nil {
				return err
			}

			if topic != "" && post.Topic != topic {
				continue
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch mode {
	case domain.SortHot:
		sort.Slice(posts, func(i, j int) bool {
			if posts[i].Score != posts[j].Score {
				return posts[i].Score > posts[j].Score
			}
			// Newest first among equal scores.
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	default:
		sort.Slice(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	}

	return posts, nil
}

// getPostInTxn loads a post into dest within an existing transaction.
func (s *Store) getPostInTxn(txn *badger.Txn, postID string, dest *domain.Post) error {
	key := buildKey(postPrefix, postID)
	defer releaseKey(key)

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// setPostInTxn writes a post within an existing transaction.
func (s *Store) setPostInTxn(txn *badger.Txn, post *domain.Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	return txn.Set([]byte(postPrefix+post.ID), data)
}
