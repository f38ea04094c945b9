package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/campuswall/campuswall-server/internal/auth"
	"github.com/campuswall/campuswall-server/internal/config"
	"github.com/campuswall/campuswall-server/internal/domain"
	"github.com/campuswall/campuswall-server/internal/search"
	"github.com/campuswall/campuswall-server/internal/service"
	"github.com/campuswall/campuswall-server/internal/sse"
	"github.com/campuswall/campuswall-server/internal/store"
	"github.com/campuswall/campuswall-server/internal/store/sqlite"
)

// testServer wraps the API server with direct store access for test setup.
type testServer struct {
	*Server
	api   humatest.TestAPI
	board *store.Store
	users *sqlite.Store
}

// setupTestServer builds the full stack on temporary storage.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	sseManager := sse.NewManager(logger)

	board, err := store.New(filepath.Join(tmpDir, "board"), nil, sseManager)
	require.NoError(t, err)
	t.Cleanup(func() { _ = board.Close() })

	users, err := sqlite.Open(filepath.Join(tmpDir, "users.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = users.Close() })

	searchIndex, err := search.NewIndex(search.Options{
		DataPath: tmpDir,
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = searchIndex.Close() })
	board.SetSearchIndexer(searchIndex)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	sessionService := service.NewSessionService(users, tokenService, logger)
	authService := service.NewAuthService(users, board, tokenService, sessionService, logger)
	postService := service.NewPostService(board, searchIndex, logger)
	profileService := service.NewProfileService(board, sseManager, logger)

	services := &Services{
		Auth:    authService,
		Session: sessionService,
		Post:    postService,
		Profile: profileService,
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name:        "Test Server",
			CORSOrigins: []string{"*"},
		},
		Limits: config.LimitsConfig{
			// Generous limits so tests never trip the limiter.
			AuthPerMinute:  1000,
			VotesPerMinute: 1000,
			Burst:          100,
		},
	}

	s := NewServer(cfg, board, services, searchIndex, sseManager, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		board:  board,
		users:  users,
	}
}

// signup creates an account via the API and returns the auth response.
// The first account on a fresh server becomes the admin.
func (ts *testServer) signup(t *testing.T, email string) AuthResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":    email,
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, "signup failed: %s", resp.Body.String())

	var body AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

// verifyUser marks a profile verified directly in the store.
func (ts *testServer) verifyUser(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()

	profile, err := ts.board.Profiles.Get(ctx, userID)
	require.NoError(t, err)

	profile.Status = domain.VerificationVerified
	require.NoError(t, ts.board.Profiles.Update(ctx, userID, profile))
}

// signupVerified creates an account and verifies its profile.
func (ts *testServer) signupVerified(t *testing.T, email string) AuthResponse {
	t.Helper()

	body := ts.signup(t, email)
	ts.verifyUser(t, body.User.ID)
	return body
}

func authHeader(token string) string {
	return "Authorization: Bearer " + token
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "healthy", body.Components["database"].Status)
	require.Equal(t, "healthy", body.Components["search"].Status)
	require.Equal(t, "healthy", body.Components["sse"].Status)
}
