package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/campuswall/campuswall-server/internal/domain"
	"github.com/campuswall/campuswall-server/internal/id"
	"github.com/campuswall/campuswall-server/internal/sse"
)

// CastVote applies a user's vote action to a post. The ledger read, the
// ledger write (upsert or delete), and the counter updates all happen in
// one transaction, so concurrent actions on the same post serialize and
// the score invariant holds after every commit.
//
// Casting the same direction twice toggles the vote off. Casting the
// opposite direction switches it. Returns the post with updated counters
// and the standing vote (nil after a toggle-off).
func (s *Store) CastVote(ctx context.Context, userID, postID string, direction domain.Direction) (*domain.Post, *domain.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if !direction.Valid() {
		return nil, nil, fmt.Errorf("invalid vote direction %q", direction)
	}

	var (
		post domain.Post
		vote *domain.Vote
	)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.getPostInTxn(txn, postID, &post); err != nil {
			return err
		}

		voteKey := []byte(votePrefix + postID + ":" + userID)

		// Read the standing vote, if any.
		var oldDir *domain.Direction
		var existing domain.Vote
		item, err := txn.Get(voteKey)
		switch {
		case err == nil:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return err
			}
			oldDir = &existing.Direction
		case errors.Is(err, badger.ErrKeyNotFound):
			// First vote by this user on this post.
		default:
			return err
		}

		delta, removed := domain.ComputeVoteDelta(oldDir, direction)

		if removed {
			if err := txn.Delete(voteKey); err != nil {
				return err
			}
			vote = nil
		} else {
			if oldDir == nil {
				voteID, err := id.Generate("vote")
				if err != nil {
					return err
				}
				existing = domain.Vote{
					UserID: userID,
					PostID: postID,
				}
				existing.ID = voteID
				existing.InitTimestamps()
			}
			existing.Direction = direction
			existing.Touch()

			data, err := json.Marshal(&existing)
			if err != nil {
				return fmt.Errorf("marshal vote: %w", err)
			}
			if err := txn.Set(voteKey, data); err != nil {
				return err
			}
			vote = &existing
		}

		post.Upvotes += delta.Up
		post.Downvotes += delta.Down
		post.Score += delta.Score()
		if post.Upvotes < 0 {
			post.Upvotes = 0
		}
		if post.Downvotes < 0 {
			post.Downvotes = 0
		}
		post.Touch()

		if err := s.setPostInTxn(txn, &post); err != nil {
			return err
		}

		// Upvotes on crush posts feed the owner's crush points,
		// inside the same transaction so the tallies never drift.
		if post.Topic == domain.TopicCrush && delta.Up != 0 {
			if err := s.updateCrushPointsInTxn(txn, post.UserID, delta.Up); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.eventEmitter.Emit(sse.NewPostVotedEvent(&post))

	return &post, vote, nil
}

// GetVote returns the user's standing vote on a post.
// Returns ErrNotFound when the user has no vote recorded.
func (s *Store) GetVote(ctx context.Context, userID, postID string) (*domain.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var vote domain.Vote
	err := s.db.View(func(txn *badger.Txn) error {
		key := buildKey(votePrefix, postID, userID)
		defer releaseKey(key)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &vote)
		})
	})
	if err != nil {
		return nil, err
	}

	return &vote, nil
}

// updateCrushPointsInTxn adjusts a profile's crush points within an
// existing transaction. Missing profiles are skipped: votes must not
// fail because the post owner never finished signup housekeeping.
func (s *Store) updateCrushPointsInTxn(txn *badger.Txn, userID string, delta int) error {
	key := []byte(profilePrefix + userID)

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var profile domain.Profile
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &profile)
	}); err != nil {
		return err
	}

	profile.CrushPoints += delta
	if profile.CrushPoints < 0 {
		profile.CrushPoints = 0 // Safety guard.
	}
	profile.Touch()

	data, err := json.Marshal(&profile)
	if err != nil {
		return err
	}

	return txn.Set(key, data)
}
