package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/campuswall/campuswall-server/internal/domain"
	"github.com/campuswall/campuswall-server/internal/sse"
)

// CreateReply persists a reply and increments the parent post's reply
// count in the same transaction, keeping the count equal to the number
// of reply records at every commit.
func (s *Store) CreateReply(ctx context.Context, reply *domain.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.nextCreationTime()
	reply.CreatedAt = now
	reply.UpdatedAt = now

	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	var post domain.Post
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := s.getPostInTxn(txn, reply.PostID, &post); err != nil {
			return err
		}

		key := []byte(replyPrefix + reply.PostID + ":" + reply.ID)
		if err := txn.Set(key, data); err != nil {
			return err
		}

		post.ReplyCount++
		post.Touch()
		return s.setPostInTxn(txn, &post)
	})
	if err != nil {
		return err
	}

	s.eventEmitter.Emit(sse.NewReplyCreatedEvent(reply, post.ReplyCount))

	return nil
}

// ListReplies returns all replies to a post, oldest first.
func (s *Store) ListReplies(ctx context.Context, postID string) ([]*domain.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var replies []*domain.Reply
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(replyPrefix + postID + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var reply domain.Reply
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &reply)
			}); err != nil {
				return err
			}
			replies = append(replies, &reply)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(replies, func(i, j int) bool {
		return replies[i].CreatedAt.Before(replies[j].CreatedAt)
	})

	return replies, nil
}

// RecalculateReplyCount rewrites a post's reply count from the actual
// reply records. Repair tool for stores that predate transactional
// counts; normal operation never needs it.
func (s *Store) RecalculateReplyCount(ctx context.Context, postID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.Update(func(txn *badger.Txn) error {
		var post domain.Post
		if err := s.getPostInTxn(txn, postID, &post); err != nil {
			return err
		}

		prefix := []byte(replyPrefix + postID + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		count = 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}

		if post.ReplyCount == count {
			return nil
		}

		if s.logger != nil {
			s.logger.Warn("repairing reply count",
				"post_id", postID,
				"stored", post.ReplyCount,
				"actual", count)
		}
		post.ReplyCount = count
		post.Touch()
		return s.setPostInTxn(txn, &post)
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
