package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswall/campuswall-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*Index, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

// makePost builds a post with timestamps set for indexing.
func makePost(id, message string, topic domain.Topic) *domain.Post {
	post := &domain.Post{
		UserID:  "user-1",
		Alias:   domain.DefaultAlias,
		Message: message,
		Topic:   topic,
	}
	post.ID = id
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	return post
}

func TestNewIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexPost(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexPost(context.Background(), makePost("post-1", "lost my headphones in the library", domain.TopicCampus))
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_IndexPosts_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	posts := []*domain.Post{
		makePost("post-1", "first message", domain.TopicRant),
		makePost("post-2", "second message", domain.TopicRant),
		makePost("post-3", "third message", domain.TopicQuestion),
	}

	require.NoError(t, index.IndexPosts(posts))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndex_DeletePost(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexPost(context.Background(), makePost("post-1", "soon to be gone", domain.TopicConfession)))
	require.NoError(t, index.DeletePost(context.Background(), "post-1"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_MessageMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, index.IndexPosts([]*domain.Post{
		makePost("post-1", "the dining hall pasta is criminally underrated", domain.TopicCampus),
		makePost("post-2", "anyone else failing linear algebra", domain.TopicQuestion),
	}))

	params := DefaultParams()
	params.Query = "pasta"
	result, err := index.Search(ctx, params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, "post-1", result.Hits[0].ID)
	assert.Contains(t, result.Hits[0].Message, "pasta")
}

func TestSearch_FuzzyMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, index.IndexPost(context.Background(),
		makePost("post-1", "the campus coffee situation is dire", domain.TopicRant)))

	// One-character typo should still match.
	params := DefaultParams()
	params.Query = "cofee"
	result, err := index.Search(ctx, params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, "post-1", result.Hits[0].ID)
}

func TestSearch_TopicFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, index.IndexPosts([]*domain.Post{
		makePost("post-1", "saw you in the quad today", domain.TopicCrush),
		makePost("post-2", "the quad needs more benches", domain.TopicCampus),
	}))

	params := DefaultParams()
	params.Query = "quad"
	params.Topic = string(domain.TopicCrush)
	result, err := index.Search(ctx, params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, "post-1", result.Hits[0].ID)
	assert.Equal(t, string(domain.TopicCrush), result.Hits[0].Topic)
}

func TestSearch_ExtraTagFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	ctx := context.Background()

	tagged := makePost("post-1", "study group forming tonight", domain.TopicQuestion)
	tagged.ExtraTags = []string{"#LateNight", "#Finals"}
	plain := makePost("post-2", "study tips anyone", domain.TopicQuestion)
	require.NoError(t, index.IndexPosts([]*domain.Post{tagged, plain}))

	params := DefaultParams()
	params.ExtraTags = []string{"#Finals"}
	result, err := index.Search(ctx, params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, "post-1", result.Hits[0].ID)
}

func TestSearch_MatchAllWhenNoQuery(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, index.IndexPosts([]*domain.Post{
		makePost("post-1", "first", domain.TopicRant),
		makePost("post-2", "second", domain.TopicRant),
	}))

	result, err := index.Search(ctx, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearch_Facets(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, index.IndexPosts([]*domain.Post{
		makePost("post-1", "one", domain.TopicRant),
		makePost("post-2", "two", domain.TopicRant),
		makePost("post-3", "three", domain.TopicAdvice),
	}))

	params := DefaultParams()
	result, err := index.Search(ctx, params)
	require.NoError(t, err)

	require.NotEmpty(t, result.Facets.Topics)
	counts := make(map[string]int)
	for _, fc := range result.Facets.Topics {
		counts[fc.Value] = fc.Count
	}
	assert.Equal(t, 2, counts[string(domain.TopicRant)])
	assert.Equal(t, 1, counts[string(domain.TopicAdvice)])
}

func TestSearch_Pagination(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	ctx := context.Background()

	posts := make([]*domain.Post, 0, 5)
	for _, id := range []string{"post-1", "post-2", "post-3", "post-4", "post-5"} {
		posts = append(posts, makePost(id, "repeated message body", domain.TopicRant))
	}
	require.NoError(t, index.IndexPosts(posts))

	params := DefaultParams()
	params.Limit = 2
	result, err := index.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), result.Total)
	assert.Len(t, result.Hits, 2)

	params.Offset = 4
	result, err = index.Search(ctx, params)
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)
}

func TestRebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexPost(context.Background(), makePost("post-1", "before rebuild", domain.TopicRant)))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// The rebuilt index accepts new documents.
	require.NoError(t, index.IndexPost(context.Background(), makePost("post-2", "after rebuild", domain.TopicRant)))
}
