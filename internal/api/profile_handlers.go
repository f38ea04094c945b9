package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/campuswall/campuswall-server/internal/domain"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get profile",
		Description: "Returns the caller's board profile with verification status and crush points",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitVerification",
		Method:      http.MethodPost,
		Path:        "/api/v1/profile/verification",
		Summary:     "Submit verification",
		Description: "Submits the caller's profile for identity verification review. Only unverified or rejected profiles may submit.",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSubmitVerification)
}

// === DTOs ===

// ProfileResponse contains profile data in API responses.
type ProfileResponse struct {
	UserID      string     `json:"user_id" doc:"Owning user ID"`
	Status      string     `json:"status" doc:"Verification status (unverified, pending, verified, rejected)"`
	CrushPoints int        `json:"crush_points" doc:"Accumulated crush points"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty" doc:"When verification was last submitted"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty" doc:"When verification was last reviewed"`
	ReviewNote  string     `json:"review_note,omitempty" doc:"Reviewer's note, if any"`
	CreatedAt   time.Time  `json:"created_at" doc:"Profile creation timestamp"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileResponse(profile)}, nil
}

func (s *Server) handleSubmitVerification(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.SubmitVerification(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileResponse(profile)}, nil
}

// === Helpers ===

// mapProfileResponse omits the document reference; it is internal to the
// review workflow.
func mapProfileResponse(profile *domain.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:      profile.UserID,
		Status:      string(profile.Status),
		CrushPoints: profile.CrushPoints,
		SubmittedAt: profile.SubmittedAt,
		ReviewedAt:  profile.ReviewedAt,
		ReviewNote:  profile.ReviewNote,
		CreatedAt:   profile.CreatedAt,
	}
}
