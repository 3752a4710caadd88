package middleware

import (
	"context"

	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

const actorLocal = "actor"

// SetActor attaches the resolved actor to the fiber locals and the user context.
// "userID" is kept in locals for the rate limiter and tracing middleware.
func SetActor(c *fiber.Ctx, actor models.Actor) {
	c.Locals(actorLocal, actor)
	if !actor.IsGuest() {
		c.Locals("userID", actor.UserID)
	}

	ctx := context.WithValue(c.UserContext(), ActorKey, actor)
	if !actor.IsGuest() {
		ctx = context.WithValue(ctx, UserIDKey, actor.UserID)
	}
	c.SetUserContext(ctx)
}

// ActorFromCtx returns the actor set by the auth gate, or a guest.
func ActorFromCtx(c *fiber.Ctx) models.Actor {
	if actor, ok := c.Locals(actorLocal).(models.Actor); ok {
		return actor
	}
	return models.GuestActor()
}

// ActorFromContext returns the actor stored in ctx, or a guest.
func ActorFromContext(ctx context.Context) models.Actor {
	if actor, ok := ctx.Value(ActorKey).(models.Actor); ok {
		return actor
	}
	return models.GuestActor()
}
