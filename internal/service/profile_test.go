package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswall/campuswall-server/internal/domain"
	domainerrors "github.com/campuswall/campuswall-server/internal/errors"
	"github.com/campuswall/campuswall-server/internal/sse"
)

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	emitted  []any
	targeted map[string][]sse.Event
}

func (n *recordingNotifier) Emit(event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emitted = append(n.emitted, event)
}

func (n *recordingNotifier) EmitToUser(userID string, event sse.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.targeted == nil {
		n.targeted = make(map[string][]sse.Event)
	}
	n.targeted[userID] = append(n.targeted[userID], event)
}

func (n *recordingNotifier) broadcastCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.emitted)
}

func (n *recordingNotifier) targetedEvents(userID string) []sse.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.targeted[userID]
}

func TestSubmitVerification(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	resp := signupUser(t, env, "submit@campus.edu")

	profile, err := env.profiles.SubmitVerification(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationPending, profile.Status)
	assert.NotEmpty(t, profile.DocumentRef)
	require.NotNil(t, profile.SubmittedAt)

	// Admins are notified of the new submission.
	assert.Equal(t, 1, env.notifier.broadcastCount())
}

func TestSubmitVerification_AlreadyPending(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	resp := signupUser(t, env, "submit@campus.edu")

	_, err := env.profiles.SubmitVerification(ctx, resp.User.ID)
	require.NoError(t, err)

	_, err = env.profiles.SubmitVerification(ctx, resp.User.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestSubmitVerification_AlreadyVerified(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	resp := signupVerified(t, env, "verified@campus.edu")

	_, err := env.profiles.SubmitVerification(context.Background(), resp.User.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestReviewVerification_Approve(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	admin := signupUser(t, env, "admin@campus.edu")
	applicant := signupUser(t, env, "applicant@campus.edu")

	_, err := env.profiles.SubmitVerification(ctx, applicant.User.ID)
	require.NoError(t, err)

	profile, err := env.profiles.ReviewVerification(ctx, admin.User.ID, applicant.User.ID, ReviewRequest{
		Approve: true,
		Note:    "student ID checks out",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, profile.Status)
	assert.Equal(t, admin.User.ID, profile.ReviewedBy)
	require.NotNil(t, profile.ReviewedAt)

	// The applicant hears the verdict on their own stream.
	events := env.notifier.targetedEvents(applicant.User.ID)
	require.Len(t, events, 1)
	assert.Equal(t, sse.EventVerificationReviewed, events[0].Type)

	// The approved user can now post.
	_, err = env.posts.CreatePost(ctx, applicant.User.ID, CreatePostRequest{
		Message: "finally verified",
		Topic:   string(domain.TopicCampus),
	})
	require.NoError(t, err)
}

func TestReviewVerification_RejectAllowsResubmission(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	admin := signupUser(t, env, "admin@campus.edu")
	applicant := signupUser(t, env, "applicant@campus.edu")

	_, err := env.profiles.SubmitVerification(ctx, applicant.User.ID)
	require.NoError(t, err)

	profile, err := env.profiles.ReviewVerification(ctx, admin.User.ID, applicant.User.ID, ReviewRequest{
		Approve: false,
		Note:    "document unreadable",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationRejected, profile.Status)

	// Rejection clears the way for another attempt.
	resubmitted, err := env.profiles.SubmitVerification(ctx, applicant.User.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationPending, resubmitted.Status)
	assert.Empty(t, resubmitted.ReviewNote)
}

func TestReviewVerification_NothingPending(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	admin := signupUser(t, env, "admin@campus.edu")
	target := signupUser(t, env, "target@campus.edu")

	_, err := env.profiles.ReviewVerification(context.Background(), admin.User.ID, target.User.ID, ReviewRequest{
		Approve: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestListPendingVerifications(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	first := signupUser(t, env, "first@campus.edu")
	second := signupUser(t, env, "second@campus.edu")
	signupUser(t, env, "bystander@campus.edu")

	_, err := env.profiles.SubmitVerification(ctx, first.User.ID)
	require.NoError(t, err)
	_, err = env.profiles.SubmitVerification(ctx, second.User.ID)
	require.NoError(t, err)

	pending, err := env.profiles.ListPendingVerifications(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.UserID)
	}
	assert.ElementsMatch(t, []string{first.User.ID, second.User.ID}, ids)
}

func TestGetProfile_NotFound(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	_, err := env.profiles.GetProfile(context.Background(), "user-ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
