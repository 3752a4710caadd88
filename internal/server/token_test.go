package server

import (
	"testing"
	"time"

	"stackit/internal/config"
	"stackit/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := newTokenManager(&config.Config{JWTSecret: testSecret, JWTTTLHours: 2})
	user := &models.User{ID: 42, Username: "neo", Role: models.RoleAdmin}

	raw, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "neo", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	m := newTokenManager(&config.Config{JWTSecret: testSecret})
	assert.Equal(t, 7*24*time.Hour, m.ttl)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := newTokenManager(&config.Config{JWTSecret: testSecret})
	user := &models.User{ID: 1, Username: "neo", Role: models.RoleUser}

	t.Run("expired", func(t *testing.T) {
		raw, err := m.Issue(user)
		require.NoError(t, err)
		later := *m
		later.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
		_, err = later.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		other := newTokenManager(&config.Config{JWTSecret: "a-completely-different-secret-value"})
		raw, err := other.Issue(user)
		require.NoError(t, err)
		_, err = m.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{"someone-else"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = m.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Subject: "1", Issuer: tokenIssuer, Audience: jwt.ClaimStrings{tokenAudience}}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := newTokenManager(&config.Config{}).Issue(user)
		assert.Error(t, err)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "answer ID", humanizeParam("answerId"))
	assert.Equal(t, "question ID", humanizeParam("questionId"))
	assert.Equal(t, "tagName", humanizeParam("tagName"))
}
