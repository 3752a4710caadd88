package server

import (
	"context"
	"slices"
	"strings"

	"stackit/internal/cache"
	"stackit/internal/featureflags"
	"stackit/internal/middleware"
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

const claimsLocal = "tokenClaims"

// AuthRequired resolves the caller from a bearer token (or a websocket
// ticket on /api/ws) and rejects the request when that fails.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := s.resolveActor(c)
		if err != nil {
			return respondError(c, err)
		}
		middleware.SetActor(c, actor)
		return c.Next()
	}
}

// OptionalAuth resolves the caller when credentials are present and falls
// back to a guest on any failure.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := models.GuestActor()
		if c.Get(fiber.HeaderAuthorization) != "" {
			if resolved, err := s.resolveActor(c); err == nil {
				actor = resolved
			}
		}
		middleware.SetActor(c, actor)
		return c.Next()
	}
}

// RequireRole rejects actors whose role is not listed.
func (s *Server) RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !slices.Contains(roles, middleware.ActorFromCtx(c).Role) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Insufficient permissions"))
		}
		return c.Next()
	}
}

// AdminRequired returns middleware that enforces admin access.
// It must run after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !middleware.ActorFromCtx(c).IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// VotingEnabled gates vote routes behind the voting feature flag.
func (s *Server) VotingEnabled() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(featureflags.Voting, middleware.ActorFromCtx(c).UserID) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Voting is currently disabled"))
		}
		return c.Next()
	}
}

func (s *Server) resolveActor(c *fiber.Ctx) (models.Actor, error) {
	ctx := c.UserContext()

	if ticket := c.Query("ticket"); ticket != "" && strings.HasPrefix(c.Path(), "/api/ws") {
		userID, ok := s.tickets.Consume(ctx, ticket)
		if !ok {
			return models.Actor{}, models.NewUnauthorizedError("Invalid or expired websocket ticket")
		}
		return s.loadActor(ctx, userID)
	}

	raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return models.Actor{}, models.NewUnauthorizedError("Authorization required")
	}
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return models.Actor{}, models.NewUnauthorizedError("Invalid or expired token")
	}
	if s.isRevoked(ctx, claims.ID) {
		return models.Actor{}, models.NewUnauthorizedError("Token has been revoked")
	}
	userID, err := claims.UserID()
	if err != nil {
		return models.Actor{}, models.NewUnauthorizedError("Invalid subject claim")
	}

	actor, err := s.loadActor(ctx, userID)
	if err != nil {
		return models.Actor{}, err
	}
	c.Locals(claimsLocal, claims)
	return actor, nil
}

// loadActor reads the stored user so bans and role changes apply immediately.
func (s *Server) loadActor(ctx context.Context, userID uint) (models.Actor, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.Actor{}, models.NewUnauthorizedError("User no longer exists")
		}
		return models.Actor{}, err
	}
	if user.IsBanned {
		return models.Actor{}, models.NewForbiddenError("Account is banned")
	}
	return models.ActorFor(user), nil
}

func (s *Server) isRevoked(ctx context.Context, jti string) bool {
	if jti == "" || s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, cache.RevokedTokenKey(jti)).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token revocation check failed", "error", err)
		return false
	}
	return n > 0
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
