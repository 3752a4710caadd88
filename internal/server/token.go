package server

import (
	"errors"
	"strconv"
	"time"

	"stackit/internal/config"
	"stackit/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer     = "stackit-api"
	tokenAudience   = "stackit-client"
	defaultTokenTTL = 7 * 24 * time.Hour
)

// tokenClaims is the JWT payload. The role is informational: the auth gate
// always re-reads it from the stored user.
type tokenClaims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokenManager(cfg *config.Config) *tokenManager {
	ttl := defaultTokenTTL
	if cfg.JWTTTLHours > 0 {
		ttl = time.Duration(cfg.JWTTTLHours) * time.Hour
	}
	return &tokenManager{secret: []byte(cfg.JWTSecret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for user.
func (m *tokenManager) Issue(user *models.User) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	now := m.now()
	claims := tokenClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates signature, issuer, audience and time claims.
func (m *tokenManager) Parse(raw string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// UserID returns the numeric subject.
func (c *tokenClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid subject claim")
	}
	return uint(id), nil
}
