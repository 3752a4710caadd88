package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFromContext_DefaultsToGuest(t *testing.T) {
	t.Parallel()
	actor := ActorFromContext(context.Background())
	assert.True(t, actor.IsGuest())
	assert.Equal(t, models.RoleGuest, actor.Role)
}

func TestSetActor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		actor      models.Actor
		wantUserID any
	}{
		{"member", models.Actor{UserID: 7, Role: models.RoleUser}, uint(7)},
		{"admin", models.Actor{UserID: 1, Role: models.RoleAdmin}, uint(1)},
		{"guest", models.GuestActor(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var fromLocals, fromCtx models.Actor
			var userID any
			app.Get("/", func(c *fiber.Ctx) error {
				SetActor(c, tt.actor)
				fromLocals = ActorFromCtx(c)
				fromCtx = ActorFromContext(c.UserContext())
				userID = c.Locals("userID")
				return c.SendStatus(fiber.StatusNoContent)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			_ = resp.Body.Close()

			assert.Equal(t, tt.actor, fromLocals)
			assert.Equal(t, tt.actor, fromCtx)
			assert.Equal(t, tt.wantUserID, userID)
		})
	}
}
