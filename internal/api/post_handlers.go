package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/campuswall/campuswall-server/internal/domain"
	"github.com/campuswall/campuswall-server/internal/search"
	"github.com/campuswall/campuswall-server/internal/service"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Get board feed",
		Description: "Returns board posts, newest first or by score, optionally filtered to one topic",
		Tags:        []string{"Posts"},
	}, s.handleGetFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPost",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts",
		Summary:     "Create post",
		Description: "Publishes a new post under an alias. Requires a verified profile.",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{postID}",
		Summary:     "Get post",
		Description: "Returns a single post with the caller's vote on it, if any",
		Tags:        []string{"Posts"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "castVote",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts/{postID}/vote",
		Summary:     "Cast vote",
		Description: "Records, switches, or toggles off the caller's vote on a post. Requires a verified profile.",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCastVote)

	huma.Register(s.api, huma.Operation{
		OperationID: "createReply",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts/{postID}/replies",
		Summary:     "Create reply",
		Description: "Appends a reply to a post. Requires authentication.",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReply)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReplies",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{postID}/replies",
		Summary:     "List replies",
		Description: "Returns a post's replies, oldest first",
		Tags:        []string{"Posts"},
	}, s.handleListReplies)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search posts",
		Description: "Full-text search over post messages and aliases with topic and tag filters",
		Tags:        []string{"Search"},
	}, s.handleSearchPosts)
}

// === DTOs ===

// PostResponse contains post data in API responses.
type PostResponse struct {
	ID         string    `json:"id" doc:"Post ID"`
	Alias      string    `json:"alias" doc:"Author's pseudonym"`
	Message    string    `json:"message" doc:"Post body"`
	Topic      string    `json:"topic" doc:"Primary topic tag"`
	ExtraTags  []string  `json:"extra_tags,omitempty" doc:"Additional tags"`
	Upvotes    int       `json:"upvotes" doc:"Upvote count"`
	Downvotes  int       `json:"downvotes" doc:"Downvote count"`
	Score      int       `json:"score" doc:"Net score (upvotes - downvotes)"`
	ReplyCount int       `json:"reply_count" doc:"Number of replies"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation timestamp"`
}

// VoteResponse describes the caller's standing vote on a post.
type VoteResponse struct {
	Direction string `json:"direction" doc:"Vote direction (up or down)"`
}

// PostWithVoteResponse pairs a post with the caller's vote, if any.
type PostWithVoteResponse struct {
	Post PostResponse  `json:"post" doc:"The post"`
	Vote *VoteResponse `json:"vote,omitempty" doc:"Caller's vote, absent when none stands"`
}

// FeedInput holds feed query parameters.
type FeedInput struct {
	Sort  string `query:"sort" enum:"new,hot" default:"new" doc:"Feed ordering"`
	Topic string `query:"topic" validate:"omitempty,max=30" doc:"Filter to one topic tag (e.g. #Crush)"`
}

// FeedResponse contains the board feed.
type FeedResponse struct {
	Posts []PostResponse `json:"posts" doc:"Posts in the requested order"`
}

// FeedOutput wraps the feed response for Huma.
type FeedOutput struct {
	Body FeedResponse
}

// CreatePostRequest is the request body for publishing a post.
type CreatePostRequest struct {
	Alias     string `json:"alias,omitempty" validate:"omitempty,max=40" doc:"Pseudonym to post under (defaults to Anonymous)"`
	Message   string `json:"message" validate:"required,max=2000" doc:"Post body"`
	Topic     string `json:"topic" validate:"required,max=30" doc:"Primary topic tag (e.g. #Confession)"`
	ExtraTags string `json:"extra_tags,omitempty" validate:"omitempty,max=200" doc:"Comma-separated additional tags; entries must start with '#'"`
}

// CreatePostInput wraps the create post request for Huma.
type CreatePostInput struct {
	Body CreatePostRequest
}

// PostOutput wraps a single post for Huma.
type PostOutput struct {
	Body PostResponse
}

// GetPostInput holds the post ID path parameter.
type GetPostInput struct {
	PostID string `path:"postID" validate:"required,max=100" doc:"Post ID"`
}

// PostWithVoteOutput wraps a post-with-vote response for Huma.
type PostWithVoteOutput struct {
	Body PostWithVoteResponse
}

// CastVoteRequest is the request body for voting.
type CastVoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down" enum:"up,down" doc:"Vote direction"`
}

// CastVoteInput wraps the vote request for Huma.
type CastVoteInput struct {
	PostID string `path:"postID" validate:"required,max=100" doc:"Post ID"`
	Body   CastVoteRequest
}

// CreateReplyRequest is the request body for replying to a post.
type CreateReplyRequest struct {
	Alias   string `json:"alias,omitempty" validate:"omitempty,max=40" doc:"Pseudonym to reply under (defaults to Anonymous)"`
	Message string `json:"message" validate:"required,max=2000" doc:"Reply body"`
}

// CreateReplyInput wraps the reply request for Huma.
type CreateReplyInput struct {
	PostID string `path:"postID" validate:"required,max=100" doc:"Post ID"`
	Body   CreateReplyRequest
}

// ReplyResponse contains reply data in API responses.
type ReplyResponse struct {
	ID        string    `json:"id" doc:"Reply ID"`
	PostID    string    `json:"post_id" doc:"Parent post ID"`
	Alias     string    `json:"alias" doc:"Author's pseudonym"`
	Message   string    `json:"message" doc:"Reply body"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// ReplyOutput wraps a single reply for Huma.
type ReplyOutput struct {
	Body ReplyResponse
}

// ReplyListResponse contains a post's replies.
type ReplyListResponse struct {
	Replies []ReplyResponse `json:"replies" doc:"Replies, oldest first"`
}

// ReplyListOutput wraps the reply list for Huma.
type ReplyListOutput struct {
	Body ReplyListResponse
}

// SearchInput holds search query parameters.
type SearchInput struct {
	Query  string `query:"q" validate:"omitempty,max=200" doc:"Search query. Omit to browse with filters only."`
	Topic  string `query:"topic" validate:"omitempty,max=30" doc:"Filter to one topic tag"`
	Tags   string `query:"tags" validate:"omitempty,max=200" doc:"Comma-separated extra tags to filter by (OR)"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
	SortBy string `query:"sort_by" enum:"relevance,recent,score" default:"relevance" doc:"Result ordering"`
	Facets bool   `query:"facets" doc:"Include topic/tag facet counts"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body search.Result
}

// === Handlers ===

func (s *Server) handleGetFeed(ctx context.Context, input *FeedInput) (*FeedOutput, error) {
	posts, err := s.services.Post.ListFeed(ctx, domain.SortMode(input.Sort), domain.Topic(input.Topic))
	if err != nil {
		return nil, err
	}

	resp := FeedResponse{Posts: make([]PostResponse, 0, len(posts))}
	for _, post := range posts {
		resp.Posts = append(resp.Posts, mapPostResponse(post))
	}

	return &FeedOutput{Body: resp}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Post.CreatePost(ctx, userID, service.CreatePostRequest{
		Alias:     input.Body.Alias,
		Message:   input.Body.Message,
		Topic:     input.Body.Topic,
		ExtraTags: input.Body.ExtraTags,
	})
	if err != nil {
		return nil, err
	}

	return &PostOutput{Body: mapPostResponse(post)}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *GetPostInput) (*PostWithVoteOutput, error) {
	result, err := s.services.Post.GetPost(ctx, input.PostID, OptionalUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &PostWithVoteOutput{Body: mapPostWithVote(result)}, nil
}

func (s *Server) handleCastVote(ctx context.Context, input *CastVoteInput) (*PostWithVoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Post.CastVote(ctx, userID, input.PostID, domain.Direction(input.Body.Direction))
	if err != nil {
		return nil, err
	}

	return &PostWithVoteOutput{Body: mapPostWithVote(result)}, nil
}

func (s *Server) handleCreateReply(ctx context.Context, input *CreateReplyInput) (*ReplyOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := s.services.Post.AddReply(ctx, userID, input.PostID, service.CreateReplyRequest{
		Alias:   input.Body.Alias,
		Message: input.Body.Message,
	})
	if err != nil {
		return nil, err
	}

	return &ReplyOutput{Body: mapReplyResponse(reply)}, nil
}

func (s *Server) handleListReplies(ctx context.Context, input *GetPostInput) (*ReplyListOutput, error) {
	replies, err := s.services.Post.ListReplies(ctx, input.PostID)
	if err != nil {
		return nil, err
	}

	resp := ReplyListResponse{Replies: make([]ReplyResponse, 0, len(replies))}
	for _, reply := range replies {
		resp.Replies = append(resp.Replies, mapReplyResponse(reply))
	}

	return &ReplyListOutput{Body: resp}, nil
}

func (s *Server) handleSearchPosts(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.Topic = input.Topic
	params.SortBy = input.SortBy
	params.IncludeFacets = input.Facets

	if input.Tags != "" {
		for _, tag := range strings.Split(input.Tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				params.ExtraTags = append(params.ExtraTags, tag)
			}
		}
	}
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}

	result, err := s.services.Post.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}

// === Helpers ===

func mapPostResponse(post *domain.Post) PostResponse {
	return PostResponse{
		ID:         post.ID,
		Alias:      post.Alias,
		Message:    post.Message,
		Topic:      string(post.Topic),
		ExtraTags:  post.ExtraTags,
		Upvotes:    post.Upvotes,
		Downvotes:  post.Downvotes,
		Score:      post.Score,
		ReplyCount: post.ReplyCount,
		CreatedAt:  post.CreatedAt,
	}
}

func mapPostWithVote(result *service.PostWithVote) PostWithVoteResponse {
	resp := PostWithVoteResponse{Post: mapPostResponse(result.Post)}
	if result.Vote != nil {
		resp.Vote = &VoteResponse{Direction: string(result.Vote.Direction)}
	}
	return resp
}

func mapReplyResponse(reply *domain.Reply) ReplyResponse {
	return ReplyResponse{
		ID:        reply.ID,
		PostID:    reply.PostID,
		Alias:     reply.Alias,
		Message:   reply.Message,
		CreatedAt: reply.CreatedAt,
	}
}
