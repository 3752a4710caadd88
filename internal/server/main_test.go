package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stackit/internal/cache"
	"stackit/internal/config"
	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-that-is-long-enough-0123456789"

type testEnv struct {
	t   *testing.T
	s   *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
	rdb *redis.Client
}

func newTestEnv(t *testing.T, featureFlags string) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	cfg := &config.Config{
		JWTSecret:    testSecret,
		Env:          "test",
		FeatureFlags: featureFlags,
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	s.userService.WithBcryptCost(bcrypt.MinCost)
	t.Cleanup(s.shutdownFn)

	return &testEnv{t: t, s: s, app: s.App(), db: db, mr: mr, rdb: rdb}
}

// user creates a stored user and returns it with a signed token.
func (e *testEnv) user(username string, role models.Role) (*models.User, string) {
	e.t.Helper()
	u := testutil.CreateUser(e.t, e.db, username, role)
	token, err := e.s.tokens.Issue(u)
	require.NoError(e.t, err)
	return u, token
}

func (e *testEnv) do(method, path string, body any, token string) *http.Response {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
