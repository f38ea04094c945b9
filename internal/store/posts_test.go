package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswall/campuswall-server/internal/domain"
	"github.com/campuswall/campuswall-server/internal/store"
)

func TestCreateAndGetPost(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	post := &domain.Post{
		UserID:    "user-1",
		Alias:     "NightOwl",
		Message:   "anyone else awake?",
		Topic:     domain.TopicCampus,
		ExtraTags: []string{"#Library"},
		// Dirty counters must be ignored at creation.
		Upvotes: 99,
		Score:   99,
	}
	post.ID = "post-1"
	require.NoError(t, s.CreatePost(ctx, post))

	got, err := s.GetPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, "NightOwl", got.Alias)
	assert.Equal(t, domain.TopicCampus, got.Topic)
	assert.Equal(t, []string{"#Library"}, got.ExtraTags)
	assert.Zero(t, got.Upvotes)
	assert.Zero(t, got.Downvotes)
	assert.Zero(t, got.Score)
	assert.Zero(t, got.ReplyCount)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreatePostDuplicateID(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	createTestPost(t, s, "post-1", domain.TopicRant)

	dup := &domain.Post{UserID: "user-2", Message: "again", Topic: domain.TopicRant}
	dup.ID = "post-1"
	err := s.CreatePost(context.Background(), dup)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetPostNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetPost(context.Background(), "post-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListPostsNewOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for i := range 5 {
		createTestPost(t, s, fmt.Sprintf("post-%d", i), domain.TopicRant)
	}

	posts, err := s.ListPosts(ctx, domain.SortNew, "")
	require.NoError(t, err)
	require.Len(t, posts, 5)

	// Creation timestamps are strictly increasing, so new order is
	// exactly reverse creation order.
	for i := 1; i < len(posts); i++ {
		assert.True(t, posts[i-1].CreatedAt.After(posts[i].CreatedAt))
	}
	assert.Equal(t, "post-4", posts[0].ID)
}

func TestListPostsHotOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestPost(t, s, "post-low", domain.TopicRant)
	createTestPost(t, s, "post-high", domain.TopicRant)
	createTestPost(t, s, "post-mid", domain.TopicRant)

	for _, user := range []string{"a", "b", "c"} {
		_, _, err := s.CastVote(ctx, "user-"+user, "post-high", domain.DirectionUp)
		require.NoError(t, err)
	}
	_, _, err := s.CastVote(ctx, "user-a", "post-mid", domain.DirectionUp)
	require.NoError(t, err)
	_, _, err = s.CastVote(ctx, "user-a", "post-low", domain.DirectionDown)
	require.NoError(t, err)

	posts, err := s.ListPosts(ctx, domain.SortHot, "")
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "post-high", posts[0].ID)
	assert.Equal(t, "post-mid", posts[1].ID)
	assert.Equal(t, "post-low", posts[2].ID)
}

func TestListPostsTopicFilter(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestPost(t, s, "post-1", domain.TopicCrush)
	createTestPost(t, s, "post-2", domain.TopicRant)
	createTestPost(t, s, "post-3", domain.TopicCrush)

	posts, err := s.ListPosts(ctx, domain.SortNew, domain.TopicCrush)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, domain.TopicCrush, p.Topic)
	}
}

func TestListPostsEmptyStore(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	posts, err := s.ListPosts(context.Background(), domain.SortNew, "")
	require.NoError(t, err)
	assert.Empty(t, posts)
}
