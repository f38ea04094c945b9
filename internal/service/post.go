package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/campuswall/campuswall-server/internal/domain"
	domainerrors "github.com/campuswall/campuswall-server/internal/errors"
	"github.com/campuswall/campuswall-server/internal/id"
	"github.com/campuswall/campuswall-server/internal/search"
	"github.com/campuswall/campuswall-server/internal/store"
	"github.com/campuswall/campuswall-server/internal/tags"
)

// voteRetryAttempts bounds optimistic-concurrency retries when two voters
// hit the same post at once.
const voteRetryAttempts = 5

// PostService handles board posts, votes, and replies.
// Posting and voting require a verified profile; replying requires
// authentication only.
type PostService struct {
	board  *store.Store
	search *search.Index
	logger *slog.Logger
}

// NewPostService creates a new post service.
// The search index may be nil, in which case Search is unavailable.
func NewPostService(board *store.Store, searchIndex *search.Index, logger *slog.Logger) *PostService {
	return &PostService{
		board:  board,
		search: searchIndex,
		logger: logger,
	}
}

// CreatePostRequest contains new post data.
type CreatePostRequest struct {
	Alias   string `json:"alias" validate:"max=40"`
	Message string `json:"message" validate:"required,max=2000"`
	Topic   string `json:"topic" validate:"required"`

	// ExtraTags is a free-form comma-separated tag string; entries
	// without a leading '#' are dropped during parsing.
	ExtraTags string `json:"extra_tags" validate:"max=200"`
}

// CreateReplyRequest contains new reply data.
type CreateReplyRequest struct {
	Alias   string `json:"alias" validate:"max=40"`
	Message string `json:"message" validate:"required,max=2000"`
}

// PostWithVote pairs a post with the caller's vote on it, if any.
type PostWithVote struct {
	Post *domain.Post `json:"post"`
	Vote *domain.Vote `json:"vote,omitempty"`
}

// requireVerified loads the caller's profile and rejects unverified users.
func (s *PostService) requireVerified(ctx context.Context, userID string) error {
	profile, err := s.board.Profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotVerified("identity verification required")
		}
		return fmt.Errorf("get profile: %w", err)
	}
	if !profile.IsVerified() {
		return domainerrors.NotVerified("identity verification required")
	}
	return nil
}

// CreatePost publishes a new post to the board.
// Only verified users may post.
func (s *PostService) CreatePost(ctx context.Context, userID string, req CreatePostRequest) (*domain.Post, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	topic := domain.Topic(req.Topic)
	if !topic.Valid() {
		return nil, domainerrors.Validationf("unknown topic %q", req.Topic)
	}

	if err := s.requireVerified(ctx, userID); err != nil {
		return nil, err
	}

	postID, err := id.Generate("post")
	if err != nil {
		return nil, fmt.Errorf("generate post ID: %w", err)
	}

	post := &domain.Post{
		UserID:    userID,
		Alias:     tags.NormalizeAlias(req.Alias, domain.DefaultAlias),
		Message:   req.Message,
		Topic:     topic,
		ExtraTags: tags.ParseExtra(req.ExtraTags),
	}
	post.ID = postID

	if err := s.board.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("post created",
			"post_id", postID,
			"topic", topic,
		)
	}

	return post, nil
}

// ListFeed returns the board feed in the requested order.
// An empty mode defaults to newest-first; an empty topic returns all topics.
func (s *PostService) ListFeed(ctx context.Context, mode domain.SortMode, topic domain.Topic) ([]*domain.Post, error) {
	if mode == "" {
		mode = domain.SortNew
	}
	if !mode.Valid() {
		return nil, domainerrors.Validationf("unknown sort mode %q", mode)
	}
	if topic != "" && !topic.Valid() {
		return nil, domainerrors.Validationf("unknown topic %q", topic)
	}

	posts, err := s.board.ListPosts(ctx, mode, topic)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a post together with the caller's vote on it.
// callerID may be empty for anonymous reads; the vote is nil then.
func (s *PostService) GetPost(ctx context.Context, postID, callerID string) (*PostWithVote, error) {
	post, err := s.board.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	result := &PostWithVote{Post: post}

	if callerID != "" {
		vote, err := s.board.GetVote(ctx, callerID, postID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get vote: %w", err)
		}
		result.Vote = vote
	}

	return result, nil
}

// CastVote records or toggles the caller's vote on a post and returns the
// post with its updated counters. Only verified users may vote.
//
// Concurrent votes on the same post conflict at the storage layer; those
// are retried a bounded number of times before giving up.
func (s *PostService) CastVote(ctx context.Context, userID, postID string, direction domain.Direction) (*PostWithVote, error) {
	if err := s.requireVerified(ctx, userID); err != nil {
		return nil, err
	}

	var (
		post *domain.Post
		vote *domain.Vote
		err  error
	)
	for attempt := 0; attempt < voteRetryAttempts; attempt++ {
		post, vote, err = s.board.CastVote(ctx, userID, postID, direction)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		if errors.Is(err, badger.ErrConflict) {
			return nil, domainerrors.Conflict("vote conflicted with concurrent update, try again")
		}
		return nil, err
	}

	return &PostWithVote{Post: post, Vote: vote}, nil
}

// AddReply appends a reply to a post.
// Any authenticated user may reply; verification is not required.
func (s *PostService) AddReply(ctx context.Context, userID, postID string, req CreateReplyRequest) (*domain.Reply, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	replyID, err := id.Generate("reply")
	if err != nil {
		return nil, fmt.Errorf("generate reply ID: %w", err)
	}

	reply := &domain.Reply{
		PostID:  postID,
		UserID:  userID,
		Alias:   tags.NormalizeAlias(req.Alias, domain.DefaultAlias),
		Message: req.Message,
	}
	reply.ID = replyID

	if err := s.board.CreateReply(ctx, reply); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("create reply: %w", err)
	}

	return reply, nil
}

// ListReplies returns a post's replies, oldest first.
func (s *PostService) ListReplies(ctx context.Context, postID string) ([]*domain.Reply, error) {
	replies, err := s.board.ListReplies(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

// Search runs a full-text query over the board.
func (s *PostService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.search == nil {
		return nil, domainerrors.Internal("search is not available")
	}
	if params.Topic != "" && !domain.Topic(params.Topic).Valid() {
		return nil, domainerrors.Validationf("unknown topic %q", params.Topic)
	}

	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}
