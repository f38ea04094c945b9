package service

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswall/campuswall-server/internal/auth"
	"github.com/campuswall/campuswall-server/internal/domain"
	domainerrors "github.com/campuswall/campuswall-server/internal/errors"
	"github.com/campuswall/campuswall-server/internal/store"
	"github.com/campuswall/campuswall-server/internal/store/sqlite"
)

// testEnv bundles the services and stores backing a test.
type testEnv struct {
	auth     *AuthService
	sessions *SessionService
	posts    *PostService
	profiles *ProfileService
	board    *store.Store
	users    *sqlite.Store
	notifier *recordingNotifier
}

// setupServices creates the full service stack with temporary storage.
func setupServices(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "campuswall-service-test-*")
	require.NoError(t, err)

	board, err := store.New(filepath.Join(tmpDir, "board"), nil, store.NewNoopEmitter())
	require.NoError(t, err)

	users, err := sqlite.Open(filepath.Join(tmpDir, "users.db"), nil)
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	sessionService := NewSessionService(users, tokenService, nil)
	authService := NewAuthService(users, board, tokenService, sessionService, nil)
	postService := NewPostService(board, nil, nil)
	profileService := NewProfileService(board, notifier, nil)

	env := &testEnv{
		auth:     authService,
		sessions: sessionService,
		posts:    postService,
		profiles: profileService,
		board:    board,
		users:    users,
		notifier: notifier,
	}

	cleanup := func() {
		_ = users.Close()
		_ = board.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return env, cleanup
}

// signupUser registers an account and returns the auth response.
func signupUser(t *testing.T, env *testEnv, email string) *AuthResponse {
	t.Helper()

	resp, err := env.auth.Signup(context.Background(), SignupRequest{
		Email:    email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return resp
}

func TestSignup_FirstUserBecomesAdmin(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	first := signupUser(t, env, "first@campus.edu")
	assert.Equal(t, domain.RoleAdmin, first.User.Role)
	assert.NotEmpty(t, first.AccessToken)
	assert.NotEmpty(t, first.RefreshToken)

	second := signupUser(t, env, "second@campus.edu")
	assert.Equal(t, domain.RoleMember, second.User.Role)
}

func TestSignup_CreatesUnverifiedProfile(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	resp := signupUser(t, env, "someone@campus.edu")

	profile, err := env.profiles.GetProfile(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationUnverified, profile.Status)
	assert.Zero(t, profile.CrushPoints)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	signupUser(t, env, "dup@campus.edu")

	_, err := env.auth.Signup(context.Background(), SignupRequest{
		Email:    "DUP@campus.edu",
		Password: "another-password-1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestSignup_RejectsWeakPassword(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	_, err := env.auth.Signup(context.Background(), SignupRequest{
		Email:    "weak@campus.edu",
		Password: "short",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLogin_Success(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	signupUser(t, env, "login@campus.edu")

	resp, err := env.auth.Login(ctx, LoginRequest{
		Email:    "login@campus.edu",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
}

func TestLogin_WrongPassword(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	signupUser(t, env, "login@campus.edu")

	_, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "login@campus.edu",
		Password: "not-the-password",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()

	_, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "nobody@campus.edu",
		Password: "whatever-password",
	})
	require.Error(t, err)
	// Same error as a wrong password, so the response doesn't leak
	// which emails have accounts.
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestRefreshTokens_RotatesRefreshToken(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	signup := signupUser(t, env, "refresh@campus.edu")

	refreshed, err := env.auth.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: signup.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, signup.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, signup.SessionID, refreshed.SessionID)

	// The old refresh token is no longer valid after rotation.
	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: signup.RefreshToken,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	signup := signupUser(t, env, "logout@campus.edu")

	require.NoError(t, env.auth.Logout(ctx, signup.SessionID))

	_, err := env.auth.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: signup.RefreshToken,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestVerifyAccessToken(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	signup := signupUser(t, env, "verify@campus.edu")

	user, claims, err := env.auth.VerifyAccessToken(ctx, signup.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, user.ID)
	assert.Equal(t, signup.User.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleAdmin), claims.Role)

	_, _, err = env.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestDeleteExpiredSessions(t *testing.T) {
	env, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	signup := signupUser(t, env, "expire@campus.edu")

	// Force the session to be expired.
	sessions, err := env.sessions.ListUserSessions(ctx, signup.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	sessions[0].ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, env.users.UpdateSession(ctx, sessions[0]))

	count, err := env.sessions.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
