package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminVerificationReview(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.signup(t, "admin@example.com") // first signup is the admin
	member := ts.signup(t, "member@example.com")

	resp := ts.api.Post("/api/v1/profile/verification", authHeader(member.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The submission shows up in the admin queue.
	resp = ts.api.Get("/api/v1/admin/verifications", authHeader(admin.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var queue PendingVerificationsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &queue))
	require.Len(t, queue.Pending, 1)
	assert.Equal(t, member.User.ID, queue.Pending[0].UserID)
	assert.NotEmpty(t, queue.Pending[0].DocumentRef)

	// Approval verifies the profile.
	resp = ts.api.Post("/api/v1/admin/verifications/"+member.User.ID+"/review",
		authHeader(admin.AccessToken),
		map[string]any{"approve": true, "note": "looks good"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profile))
	assert.Equal(t, "verified", profile.Status)
	assert.Equal(t, "looks good", profile.ReviewNote)

	// The queue is empty again.
	resp = ts.api.Get("/api/v1/admin/verifications", authHeader(admin.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &queue))
	assert.Empty(t, queue.Pending)

	// The member can post now.
	resp = ts.api.Post("/api/v1/posts", authHeader(member.AccessToken), map[string]any{
		"message": "finally verified",
		"topic":   "#Campus",
	})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestAdminReview_Reject(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.signup(t, "admin@example.com")
	member := ts.signup(t, "member@example.com")

	resp := ts.api.Post("/api/v1/profile/verification", authHeader(member.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/admin/verifications/"+member.User.ID+"/review",
		authHeader(admin.AccessToken),
		map[string]any{"approve": false, "note": "document unreadable"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profile))
	assert.Equal(t, "rejected", profile.Status)

	// Rejected users may resubmit.
	resp = ts.api.Post("/api/v1/profile/verification", authHeader(member.AccessToken))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAdminReview_NoPendingSubmission(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.signup(t, "admin@example.com")
	member := ts.signup(t, "member@example.com")

	resp := ts.api.Post("/api/v1/admin/verifications/"+member.User.ID+"/review",
		authHeader(admin.AccessToken),
		map[string]any{"approve": true},
	)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "admin@example.com")
	member := ts.signup(t, "member@example.com")

	resp := ts.api.Get("/api/v1/admin/verifications", authHeader(member.AccessToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/v1/admin/verifications/someone/review",
		authHeader(member.AccessToken),
		map[string]any{"approve": true},
	)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Anonymous callers get 401.
	resp = ts.api.Get("/api/v1/admin/verifications")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
