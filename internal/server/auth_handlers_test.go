package server

import (
	"net/http"
	"testing"

	"stackit/internal/cache"
	"stackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Tr0ub4dor&Horse!"

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decode[authResponse](t, resp)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, models.RoleUser, registered.User.Role)

	resp = env.do(http.MethodGet, "/api/auth/me", nil, registered.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[models.User](t, resp)
	assert.Equal(t, "alice", me.Username)

	resp = env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[authResponse](t, resp).Token)
}

func TestRegister_Rejections(t *testing.T) {
	env := newTestEnv(t, "")
	env.user("taken", models.RoleUser)

	tests := []struct {
		name   string
		body   map[string]string
		status int
		code   string
	}{
		{"duplicate username", map[string]string{"username": "taken", "email": "new@example.com", "password": testPassword}, http.StatusConflict, models.CodeConflict},
		{"duplicate email", map[string]string{"username": "fresh", "email": "taken@example.com", "password": testPassword}, http.StatusConflict, models.CodeConflict},
		{"missing password", map[string]string{"username": "fresh", "email": "fresh@example.com"}, http.StatusBadRequest, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decode[models.ErrorResponse](t, resp).Code)
		})
	}
}

func TestLogin_BadCredentialsAndBan(t *testing.T) {
	env := newTestEnv(t, "")
	u, _ := env.user("bob", models.RoleUser)

	resp := env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": u.Email, "password": "wrong-password-123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	require.NoError(t, env.db.Model(u).Update("is_banned", true).Error)
	resp = env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": u.Email, "password": "Password123!",
	}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, "")
	u, token := env.user("carol", models.RoleUser)

	t.Run("missing header", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/auth/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, models.CodeUnauthorized, decode[models.ErrorResponse](t, resp).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/auth/me", nil, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("ban applies to live tokens", func(t *testing.T) {
		require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/auth/me", nil, token).StatusCode)

		require.NoError(t, env.db.Model(u).Update("is_banned", true).Error)
		cache.InvalidateUser(t.Context(), u.ID)

		resp := env.do(http.MethodGet, "/api/auth/me", nil, token)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		require.NoError(t, env.db.Model(u).Update("is_banned", false).Error)
		cache.InvalidateUser(t.Context(), u.ID)
	})

	t.Run("deleted user", func(t *testing.T) {
		ghost := &models.User{ID: 9999, Username: "ghost", Role: models.RoleUser}
		ghostToken, err := env.s.tokens.Issue(ghost)
		require.NoError(t, err)
		resp := env.do(http.MethodGet, "/api/auth/me", nil, ghostToken)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t, "")
	_, token := env.user("dave", models.RoleUser)

	resp := env.do(http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	claims, err := env.s.tokens.Parse(token)
	require.NoError(t, err)
	assert.True(t, env.mr.Exists(cache.RevokedTokenKey(claims.ID)))
	assert.Greater(t, env.mr.TTL(cache.RevokedTokenKey(claims.ID)).Hours(), 24.0)

	resp = env.do(http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", decode[models.ErrorResponse](t, resp).Message)
}

func TestOptionalAuth_FallsBackToGuest(t *testing.T) {
	env := newTestEnv(t, "")

	for _, token := range []string{"", "broken"} {
		resp := env.do(http.MethodGet, "/api/questions", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, decode[[]models.Question](t, resp))
	}
}

func TestRequireRole_AdminRoutes(t *testing.T) {
	env := newTestEnv(t, "")
	_, userToken := env.user("plain", models.RoleUser)
	_, adminToken := env.user("boss", models.RoleAdmin)

	resp := env.do(http.MethodGet, "/api/admin/stats", nil, userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[models.AdminStats](t, resp)
	assert.EqualValues(t, 2, stats.Users)
	assert.EqualValues(t, 1, stats.Admins)
}
