package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lesechos/accounts/internal/config"
	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/models"
)

const testSecret = "cli-test-secret-that-is-32-bytes-long!"

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{JWTSecret: testSecret, BcryptCost: 4},
		Database: config.DatabaseConfig{
			Type: config.DatabaseMemory,
		},
		Revocation: config.RevocationConfig{
			Backend:       config.RevocationMemory,
			SweepInterval: time.Minute,
		},
		NATS: config.NATSConfig{SubjectPrefix: "accounts"},
	}
}

// ============================================================================
// Command tree
// ============================================================================

func TestCommandsRegistered(t *testing.T) {
	expected := map[string]bool{"serve": false, "migrate": false, "user": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := expected[cmd.Name()]; ok {
			expected[cmd.Name()] = true
		}
	}
	for name, found := range expected {
		assert.True(t, found, "expected command %q to be registered", name)
	}

	var migrateSubs []string
	for _, cmd := range migrateCmd.Commands() {
		migrateSubs = append(migrateSubs, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "version"}, migrateSubs)

	require.Len(t, userCmd.Commands(), 1)
	assert.Equal(t, "create-admin", userCmd.Commands()[0].Name())
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestServe_MissingSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ACCOUNTS_AUTH_JWT_SECRET", "")

	_, err := execute(t, "serve")
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ACCOUNTS_AUTH_JWT_SECRET", testSecret)
	t.Setenv("ACCOUNTS_DATABASE_TYPE", "memory")

	_, err := execute(t, "migrate", "version")
	assert.ErrorIs(t, err, errNeedsPostgres)
}

func TestCreateAdmin_RequiresPersistentDatabase(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ACCOUNTS_AUTH_JWT_SECRET", testSecret)
	t.Setenv("ACCOUNTS_DATABASE_TYPE", "memory")

	_, err := execute(t, "user", "create-admin", "--username", "root", "--password", "root-password")
	assert.ErrorIs(t, err, errNeedsPersistentDB)
}

// ============================================================================
// Wiring
// ============================================================================

func TestNewApp_MemoryEndToEnd(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(), logging.Discard())
	require.NoError(t, err)
	defer a.close()

	_, err = a.users.CreateByAdmin(ctx, systemActor, &models.CreateUserRequest{
		Username: "root",
		Password: "root-password",
		Role:     "ADMIN",
	})
	require.NoError(t, err)

	router := a.router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"root","password":"root-password"}`)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/users/admin", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"root"`)
}

func TestNewApp_RedisRevocation(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Revocation.Backend = config.RevocationRedis
	cfg.Redis.URL = "redis://" + mr.Addr() + "/0"

	a, err := newApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.close()

	w := httptest.NewRecorder()
	a.router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","checks":{"redis":"ok"}}`, w.Body.String())

	mr.Close()
	w = httptest.NewRecorder()
	a.router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "postgres revocation without postgres", mutate: func(c *config.Config) { c.Revocation.Backend = config.RevocationPostgres }},
		{name: "unknown database", mutate: func(c *config.Config) { c.Database.Type = "sqlite" }},
		{name: "unknown revocation backend", mutate: func(c *config.Config) { c.Revocation.Backend = "etcd" }},
		{name: "unreachable redis", mutate: func(c *config.Config) {
			c.Revocation.Backend = config.RevocationRedis
			c.Redis.URL = "redis://127.0.0.1:1/0"
		}},
		{name: "unreachable nats", mutate: func(c *config.Config) {
			c.NATS.Enabled = true
			c.NATS.URL = "nats://127.0.0.1:1"
		}},
		{name: "missing secret", mutate: func(c *config.Config) { c.Auth.JWTSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			a, err := newApp(context.Background(), cfg, logging.Discard())
			assert.Error(t, err)
			assert.Nil(t, a)
		})
	}
}
