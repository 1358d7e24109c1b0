package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lesechos/accounts/internal/models"
	"github.com/lesechos/accounts/pkg/tokens"
)

// ============================================================================
// Login
// ============================================================================

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createTestUser(t, "alice", "pw123456", models.RoleUser)

	resp, err := env.auth.Login(context.Background(), &models.LoginRequest{Username: "alice", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := env.issuer.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID(), "token subject must be the user id")
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "USER", claims.Role)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.createTestUser(t, "alice", "pw123456", models.RoleUser)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "unknown user", username: "mallory", password: "pw123456"},
		{name: "wrong password", username: "alice", password: "wrong-password"},
		{name: "empty credentials", username: "", password: ""},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.auth.Login(context.Background(), &models.LoginRequest{Username: tt.username, Password: tt.password})
			assert.Nil(t, resp)
			requireKind(t, err, KindUnauthorized, MsgInvalidCredentials)
			messages = append(messages, err.Error())
		})
	}
	require.Len(t, messages, 3)
	assert.Equal(t, messages[0], messages[1])
}

// ============================================================================
// Logout
// ============================================================================

func TestLogout_RevokesOnlyThatToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createTestUser(t, "alice", "pw123456", models.RoleUser)

	first := env.login(t, "alice", "pw123456")
	second := env.login(t, "alice", "pw123456")

	resp, err := env.auth.Logout(ctx, "Bearer "+first)
	require.NoError(t, err)
	assert.Equal(t, "Logged out successfully", resp.Message)

	for i := 0; i < 3; i++ {
		_, err = env.auth.Authenticate(ctx, "Bearer "+first)
		requireKind(t, err, KindUnauthorized, MsgTokenBlacklisted)
	}

	user, err := env.auth.Authenticate(ctx, "Bearer "+second)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// Logging out twice is harmless.
	_, err = env.auth.Logout(ctx, "Bearer "+first)
	assert.NoError(t, err)
}

func TestLogout_HeaderErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
		msg    string
	}{
		{name: "missing header", header: "", msg: MsgAuthHeaderMissing},
		{name: "scheme only", header: "Bearer", msg: MsgBearerTokenMissing},
		{name: "scheme and spaces", header: "Bearer    ", msg: MsgBearerTokenMissing},
		{name: "garbage token", header: "Bearer not-a-token", msg: MsgInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Logout(context.Background(), tt.header)
			requireKind(t, err, KindUnauthorized, tt.msg)
		})
	}
}

func TestLogout_StoreFailure(t *testing.T) {
	env := newTestEnvWithStore(t, failingStore{})
	env.createTestUser(t, "alice", "pw123456", models.RoleUser)
	token := env.login(t, "alice", "pw123456")

	_, err := env.auth.Logout(context.Background(), "Bearer "+token)
	requireKind(t, err, KindInternal, "")
}

// ============================================================================
// Authenticate
// ============================================================================

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	env := newTestEnv(t, tokens.WithClock(func() time.Time { return now }))
	alice := env.createTestUser(t, "alice", "pw123456", models.RoleUser)
	ghost := env.createTestUser(t, "ghost", "pw123456", models.RoleUser)

	valid := env.login(t, "alice", "pw123456")
	ghostToken := env.login(t, "ghost", "pw123456")
	_, err := env.repo.DeleteUser(ctx, ghost.ID)
	require.NoError(t, err)

	now = now.Add(-2 * time.Hour)
	expired := env.login(t, "alice", "pw123456")
	now = time.Now()

	other, err := tokens.NewIssuer("a-different-secret-that-is-also-long-enough")
	require.NoError(t, err)
	forged, err := other.Issue(tokens.Subject{UserID: alice.ID, Username: "alice", Role: "ADMIN"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		msg    string
	}{
		{name: "no header", header: "", msg: MsgTokenNotProvided},
		{name: "wrong scheme", header: "Basic " + valid, msg: MsgTokenNotProvided},
		{name: "malformed", header: "Bearer abc", msg: MsgInvalidToken},
		{name: "forged", header: "Bearer " + forged.Token, msg: MsgInvalidToken},
		{name: "expired", header: "Bearer " + expired, msg: MsgTokenExpired},
		{name: "deleted user", header: "Bearer " + ghostToken, msg: MsgUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := env.auth.Authenticate(ctx, tt.header)
			assert.Nil(t, user)
			requireKind(t, err, KindUnauthorized, tt.msg)
		})
	}

	t.Run("valid", func(t *testing.T) {
		user, err := env.auth.Authenticate(ctx, "Bearer "+valid)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)
		assert.Empty(t, user.PasswordHash, "attached user must not carry the hash")
	})
}

func TestAuthenticate_RevokedCheckedBeforeExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	env := newTestEnv(t, tokens.WithClock(func() time.Time { return now }))
	env.createTestUser(t, "alice", "pw123456", models.RoleUser)

	token := env.login(t, "alice", "pw123456")
	_, err := env.auth.Logout(ctx, "Bearer "+token)
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, err = env.auth.Authenticate(ctx, "Bearer "+token)
	requireKind(t, err, KindUnauthorized, MsgTokenBlacklisted)
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	env := newTestEnvWithStore(t, failingStore{})
	env.createTestUser(t, "alice", "pw123456", models.RoleUser)
	token := env.login(t, "alice", "pw123456")

	_, err := env.auth.Authenticate(context.Background(), "Bearer "+token)
	requireKind(t, err, KindInternal, "")
}

// ============================================================================
// Authorize
// ============================================================================

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createTestUser(t, "alice", "pw123456", models.RoleUser)
	admin := env.createTestUser(t, "root", "pw123456", models.RoleAdmin)
	adminOnly := []models.Role{models.RoleAdmin}

	t.Run("no roles required", func(t *testing.T) {
		user, err := env.auth.Authorize(ctx, alice.Sanitized(), nil)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)
	})

	t.Run("no user in request", func(t *testing.T) {
		_, err := env.auth.Authorize(ctx, nil, adminOnly)
		requireKind(t, err, KindForbidden, MsgUserNotInRequest)
	})

	t.Run("insufficient role", func(t *testing.T) {
		_, err := env.auth.Authorize(ctx, alice.Sanitized(), adminOnly)
		requireKind(t, err, KindForbidden, MsgInsufficientPermissions)
	})

	t.Run("admin allowed", func(t *testing.T) {
		user, err := env.auth.Authorize(ctx, admin.Sanitized(), adminOnly)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("any of several roles", func(t *testing.T) {
		_, err := env.auth.Authorize(ctx, alice.Sanitized(), []models.Role{models.RoleUser, models.RoleAdmin})
		assert.NoError(t, err)
	})
}

func TestAuthorize_UsesCurrentRoleNotTokenRole(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createTestUser(t, "alice", "pw123456", models.RoleUser)
	token := env.login(t, "alice", "pw123456")
	adminOnly := []models.Role{models.RoleAdmin}

	user, err := env.auth.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	_, err = env.auth.Authorize(ctx, user, adminOnly)
	requireKind(t, err, KindForbidden, MsgInsufficientPermissions)

	promoted := models.RoleAdmin
	_, err = env.repo.UpdateUser(ctx, alice.ID, &models.UserPatch{Role: &promoted})
	require.NoError(t, err)

	// Same token, no re-login.
	user, err = env.auth.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	fresh, err := env.auth.Authorize(ctx, user, adminOnly)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, fresh.Role)

	demoted := models.RoleUser
	_, err = env.repo.UpdateUser(ctx, alice.ID, &models.UserPatch{Role: &demoted})
	require.NoError(t, err)
	_, err = env.auth.Authorize(ctx, fresh, adminOnly)
	requireKind(t, err, KindForbidden, MsgInsufficientPermissions)
}

func TestAuthorize_UserDeletedAfterAuthentication(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.createTestUser(t, "root", "pw123456", models.RoleAdmin)

	_, err := env.repo.DeleteUser(ctx, admin.ID)
	require.NoError(t, err)

	_, err = env.auth.Authorize(ctx, admin.Sanitized(), []models.Role{models.RoleAdmin})
	requireKind(t, err, KindForbidden, MsgUserNotFound)
}
