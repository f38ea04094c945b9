package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPost publishes a post as the given user and returns it.
func (ts *testServer) createPost(t *testing.T, token string, body map[string]any) PostResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/posts", authHeader(token), body)
	require.Equal(t, http.StatusOK, resp.Code, "create post failed: %s", resp.Body.String())

	var post PostResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &post))
	return post
}

func TestCreatePost(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signupVerified(t, "alice@example.com")

	post := ts.createPost(t, user.AccessToken, map[string]any{
		"alias":      "NightOwl",
		"message":    "saw you in the library again",
		"topic":      "#Crush",
		"extra_tags": "#Library, #Finals",
	})

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "NightOwl", post.Alias)
	assert.Equal(t, "#Crush", post.Topic)
	assert.Equal(t, []string{"#Library", "#Finals"}, post.ExtraTags)
	assert.Zero(t, post.Score)
	assert.Zero(t, post.ReplyCount)
}

func TestCreatePost_DefaultAlias(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signupVerified(t, "alice@example.com")

	post := ts.createPost(t, user.AccessToken, map[string]any{
		"message": "just venting",
		"topic":   "#Rant",
	})

	assert.Equal(t, "Anonymous", post.Alias)
}

func TestCreatePost_RequiresVerification(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signup(t, "alice@example.com")

	resp := ts.api.Post("/api/v1/posts", authHeader(user.AccessToken), map[string]any{
		"message": "should not go through",
		"topic":   "#Rant",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/posts", map[string]any{
		"message": "anonymous posting is not allowed",
		"topic":   "#Rant",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreatePost_UnknownTopic(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signupVerified(t, "alice@example.com")

	resp := ts.api.Post("/api/v1/posts", authHeader(user.AccessToken), map[string]any{
		"message": "where does this go",
		"topic":   "#Homework",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetFeed(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signupVerified(t, "alice@example.com")

	first := ts.createPost(t, user.AccessToken, map[string]any{
		"message": "first post", "topic": "#Campus",
	})
	second := ts.createPost(t, user.AccessToken, map[string]any{
		"message": "second post", "topic": "#Crush",
	})

	// Feed reads are public.
	resp := ts.api.Get("/api/v1/feed")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var feed FeedResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	require.Len(t, feed.Posts, 2)

	// Newest first by default.
	assert.Equal(t, second.ID, feed.Posts[0].ID)
	assert.Equal(t, first.ID, feed.Posts[1].ID)
}

func TestGetFeed_TopicFilter(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signupVerified(t, "alice@example.com")

	ts.createPost(t, user.AccessToken, map[string]any{
		"message": "campus news", "topic": "#Campus",
	})
	crush := ts.createPost(t, user.AccessToken, map[string]any{
		"message": "quad sighting", "topic": "#Crush",
	})

	resp := ts.api.Get("/api/v1/feed?topic=%23Crush")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var feed FeedResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, crush.ID, feed.Posts[0].ID)
}

func TestGetFeed_HotSort(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signupVerified(t, "alice@example.com")
	bob := ts.signupVerified(t, "bob@example.com")

	low := ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "meh", "topic": "#Rant",
	})
	high := ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "everyone agrees", "topic": "#Campus",
	})

	resp := ts.api.Post("/api/v1/posts/"+high.ID+"/vote", authHeader(bob.AccessToken),
		map[string]any{"direction": "up"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/feed?sort=hot")
	require.Equal(t, http.StatusOK, resp.Code)

	var feed FeedResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	require.Len(t, feed.Posts, 2)
	assert.Equal(t, high.ID, feed.Posts[0].ID)
	assert.Equal(t, low.ID, feed.Posts[1].ID)
}

func TestGetPost_AnonymousHasNoVote(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signupVerified(t, "alice@example.com")

	post := ts.createPost(t, user.AccessToken, map[string]any{
		"message": "hello board", "topic": "#Campus",
	})

	resp := ts.api.Get("/api/v1/posts/" + post.ID)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body PostWithVoteResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, post.ID, body.Post.ID)
	assert.Nil(t, body.Vote)
}

func TestGetPost_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/posts/post-does-not-exist")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCastVote_Lifecycle(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signupVerified(t, "alice@example.com")
	bob := ts.signupVerified(t, "bob@example.com")

	post := ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "vote on me", "topic": "#Question",
	})

	// Upvote.
	resp := ts.api.Post("/api/v1/posts/"+post.ID+"/vote", authHeader(bob.AccessToken),
		map[string]any{"direction": "up"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body PostWithVoteResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Post.Upvotes)
	assert.Equal(t, 0, body.Post.Downvotes)
	assert.Equal(t, 1, body.Post.Score)
	require.NotNil(t, body.Vote)
	assert.Equal(t, "up", body.Vote.Direction)

	// Switch to downvote.
	resp = ts.api.Post("/api/v1/posts/"+post.ID+"/vote", authHeader(bob.AccessToken),
		map[string]any{"direction": "down"})
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Post.Upvotes)
	assert.Equal(t, 1, body.Post.Downvotes)
	assert.Equal(t, -1, body.Post.Score)
	require.NotNil(t, body.Vote)
	assert.Equal(t, "down", body.Vote.Direction)

	// Toggle off.
	resp = ts.api.Post("/api/v1/posts/"+post.ID+"/vote", authHeader(bob.AccessToken),
		map[string]any{"direction": "down"})
	require.Equal(t, http.StatusOK, resp.Code)

	body = PostWithVoteResponse{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Zero(t, body.Post.Upvotes)
	assert.Zero(t, body.Post.Downvotes)
	assert.Zero(t, body.Post.Score)
	assert.Nil(t, body.Vote)
}

func TestCastVote_RequiresVerification(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signupVerified(t, "alice@example.com")
	bob := ts.signup(t, "bob@example.com")

	post := ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "verified voters only", "topic": "#Campus",
	})

	resp := ts.api.Post("/api/v1/posts/"+post.ID+"/vote", authHeader(bob.AccessToken),
		map[string]any{"direction": "up"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestCastVote_InvalidDirection(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signupVerified(t, "alice@example.com")

	post := ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "sideways is not a direction", "topic": "#Campus",
	})

	resp := ts.api.Post("/api/v1/posts/"+post.ID+"/vote", authHeader(alice.AccessToken),
		map[string]any{"direction": "sideways"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestReplies(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signupVerified(t, "alice@example.com")
	bob := ts.signup(t, "bob@example.com") // replying needs no verification

	post := ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "anyone else?", "topic": "#Question",
	})

	resp := ts.api.Post("/api/v1/posts/"+post.ID+"/replies", authHeader(bob.AccessToken),
		map[string]any{"message": "same here"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var reply ReplyResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reply))
	assert.Equal(t, post.ID, reply.PostID)
	assert.Equal(t, "Anonymous", reply.Alias)

	// Reply count is reflected on the post.
	resp = ts.api.Get("/api/v1/posts/" + post.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var withVote PostWithVoteResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &withVote))
	assert.Equal(t, 1, withVote.Post.ReplyCount)

	// Listing is public, oldest first.
	resp = ts.api.Get("/api/v1/posts/" + post.ID + "/replies")
	require.Equal(t, http.StatusOK, resp.Code)

	var list ReplyListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Replies, 1)
	assert.Equal(t, reply.ID, list.Replies[0].ID)
}

func TestCreateReply_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signupVerified(t, "alice@example.com")

	post := ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "no anonymous replies", "topic": "#Campus",
	})

	resp := ts.api.Post("/api/v1/posts/"+post.ID+"/replies",
		map[string]any{"message": "drive-by comment"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSearchPosts(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signupVerified(t, "alice@example.com")

	ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "the dining hall pasta is criminally underrated",
		"topic":   "#Campus",
	})
	ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "exam schedule drop when",
		"topic":   "#Question",
	})

	resp := ts.api.Get("/api/v1/search?q=pasta")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result struct {
		Total uint64 `json:"total"`
		Hits  []struct {
			Message string `json:"message"`
			Topic   string `json:"topic"`
		} `json:"hits"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.EqualValues(t, 1, result.Total)
	assert.Contains(t, result.Hits[0].Message, "pasta")
	assert.Equal(t, "#Campus", result.Hits[0].Topic)
}

func TestSearchPosts_TopicFilter(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signupVerified(t, "alice@example.com")

	ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "coffee cart on the quad", "topic": "#Campus",
	})
	ts.createPost(t, alice.AccessToken, map[string]any{
		"message": "coffee shop cutie", "topic": "#Crush",
	})

	resp := ts.api.Get("/api/v1/search?q=coffee&topic=%23Crush")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result struct {
		Total uint64 `json:"total"`
		Hits  []struct {
			Topic string `json:"topic"`
		} `json:"hits"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.EqualValues(t, 1, result.Total)
	assert.Equal(t, "#Crush", result.Hits[0].Topic)
}
