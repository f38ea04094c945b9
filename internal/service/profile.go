package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campuswall/campuswall-server/internal/domain"
	domainerrors "github.com/campuswall/campuswall-server/internal/errors"
	"github.com/campuswall/campuswall-server/internal/sse"
	"github.com/campuswall/campuswall-server/internal/store"
)

// ProfileService handles identity verification and profile state.
type ProfileService struct {
	board    *store.Store
	notifier Notifier
	logger   *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(board *store.Store, notifier Notifier, logger *slog.Logger) *ProfileService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ProfileService{
		board:    board,
		notifier: notifier,
		logger:   logger,
	}
}

// ReviewRequest contains an admin's verdict on a pending verification.
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" validate:"max=500"`
}

// GetProfile returns a user's board profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.board.Profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// SubmitVerification moves a profile into the pending review queue.
// Only unverified or previously rejected profiles may submit; the
// submission is assigned an opaque document reference.
func (s *ProfileService) SubmitVerification(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !profile.CanSubmitVerification() {
		if profile.Status == domain.VerificationPending {
			return nil, domainerrors.Conflict("verification is already pending review")
		}
		return nil, domainerrors.Conflict("account is already verified")
	}

	now := time.Now()
	profile.Status = domain.VerificationPending
	profile.DocumentRef = uuid.NewString()
	profile.SubmittedAt = &now
	profile.ReviewedAt = nil
	profile.ReviewedBy = ""
	profile.ReviewNote = ""
	profile.Touch()

	if err := s.board.Profiles.Update(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	// Admins watching the live stream see new submissions immediately.
	s.notifier.Emit(sse.NewVerificationPendingEvent(profile))

	if s.logger != nil {
		s.logger.Info("verification submitted",
			"user_id", userID,
			"document_ref", profile.DocumentRef,
		)
	}

	return profile, nil
}

// ReviewVerification records an admin verdict on a pending submission.
// The affected user is notified over their live stream.
func (s *ProfileService) ReviewVerification(ctx context.Context, reviewerID, userID string, req ReviewRequest) (*domain.Profile, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.Status != domain.VerificationPending {
		return nil, domainerrors.Conflict("no pending verification to review")
	}

	now := time.Now()
	if req.Approve {
		profile.Status = domain.VerificationVerified
	} else {
		profile.Status = domain.VerificationRejected
	}
	profile.ReviewedAt = &now
	profile.ReviewedBy = reviewerID
	profile.ReviewNote = req.Note
	profile.Touch()

	if err := s.board.Profiles.Update(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.notifier.EmitToUser(userID, sse.NewVerificationReviewedEvent(profile.Status, req.Note))

	if s.logger != nil {
		s.logger.Info("verification reviewed",
			"user_id", userID,
			"reviewer_id", reviewerID,
			"status", profile.Status,
		)
	}

	return profile, nil
}

// ListPendingVerifications returns the admin review queue, i.e. all
// profiles awaiting a verdict.
func (s *ProfileService) ListPendingVerifications(ctx context.Context) ([]*domain.Profile, error) {
	var pending []*domain.Profile
	for profile, err := range s.board.Profiles.ListByIndex(ctx, "status", string(domain.VerificationPending)+":") {
		if err != nil {
			return nil, fmt.Errorf("list pending profiles: %w", err)
		}
		pending = append(pending, profile)
	}
	return pending, nil
}
