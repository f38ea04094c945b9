package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/campuswall/campuswall-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPendingVerifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/verifications",
		Summary:     "List pending verifications",
		Description: "Returns all profiles awaiting verification review. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPendingVerifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "reviewVerification",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/verifications/{userID}/review",
		Summary:     "Review verification",
		Description: "Approves or rejects a pending verification submission. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReviewVerification)
}

// === DTOs ===

// PendingVerification describes one submission awaiting review.
type PendingVerification struct {
	UserID      string     `json:"user_id" doc:"Submitting user ID"`
	DocumentRef string     `json:"document_ref" doc:"Opaque reference to the submitted document"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty" doc:"Submission time"`
}

// PendingVerificationsResponse contains the admin review queue.
type PendingVerificationsResponse struct {
	Pending []PendingVerification `json:"pending" doc:"Profiles awaiting review"`
}

// PendingVerificationsOutput wraps the review queue for Huma.
type PendingVerificationsOutput struct {
	Body PendingVerificationsResponse
}

// ReviewVerificationRequest is the request body for a review verdict.
type ReviewVerificationRequest struct {
	Approve bool   `json:"approve" doc:"True to verify the user, false to reject"`
	Note    string `json:"note,omitempty" validate:"omitempty,max=500" doc:"Optional note shown to the user"`
}

// ReviewVerificationInput wraps the review request for Huma.
type ReviewVerificationInput struct {
	UserID string `path:"userID" validate:"required,max=100" doc:"User whose submission is being reviewed"`
	Body   ReviewVerificationRequest
}

// === Handlers ===

func (s *Server) handleListPendingVerifications(ctx context.Context, _ *struct{}) (*PendingVerificationsOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	profiles, err := s.services.Profile.ListPendingVerifications(ctx)
	if err != nil {
		return nil, err
	}

	resp := PendingVerificationsResponse{Pending: make([]PendingVerification, 0, len(profiles))}
	for _, profile := range profiles {
		resp.Pending = append(resp.Pending, PendingVerification{
			UserID:      profile.UserID,
			DocumentRef: profile.DocumentRef,
			SubmittedAt: profile.SubmittedAt,
		})
	}

	return &PendingVerificationsOutput{Body: resp}, nil
}

func (s *Server) handleReviewVerification(ctx context.Context, input *ReviewVerificationInput) (*ProfileOutput, error) {
	reviewerID, err := RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.ReviewVerification(ctx, reviewerID, input.UserID, service.ReviewRequest{
		Approve: input.Body.Approve,
		Note:    input.Body.Note,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileResponse(profile)}, nil
}
