package server

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"stackit/internal/cache"
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueWSTicket(t *testing.T) {
	env := newTestEnv(t, "")
	u, token := env.user("listener", models.RoleUser)

	resp := env.do(http.MethodPost, "/api/ws/ticket", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}](t, resp)
	require.NotEmpty(t, body.Ticket)
	assert.Equal(t, 30, body.ExpiresIn)

	stored, err := env.mr.Get(cache.WSTicketKey(body.Ticket))
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatUint(uint64(u.ID), 10), stored)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/ws/ticket", nil, "").StatusCode)
}

func TestWebsocketRoute_RequiresUpgrade(t *testing.T) {
	env := newTestEnv(t, "")
	_, token := env.user("listener", models.RoleUser)

	ticket, err := env.s.tickets.Issue(context.Background(), 1)
	require.NoError(t, err)

	resp := env.do(http.MethodGet, "/api/ws?ticket="+ticket, nil, token)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
	// a plain request must not burn the ticket
	assert.True(t, env.mr.Exists(cache.WSTicketKey(ticket)))
}

func TestResolveActor_TicketIsSingleUse(t *testing.T) {
	env := newTestEnv(t, "")
	u, _ := env.user("listener", models.RoleUser)

	env.app.Get("/api/ws/probe", env.s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	ticket, err := env.s.tickets.Issue(context.Background(), u.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodGet, "/api/ws/probe?ticket="+ticket, nil, "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/ws/probe?ticket="+ticket, nil, "").StatusCode)
}

func TestTicketStore_LocalFallback(t *testing.T) {
	store := newTicketStore(nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ticket, err := store.Issue(ctx, 7)
	require.NoError(t, err)

	id, ok := store.Consume(ctx, ticket)
	require.True(t, ok)
	assert.Equal(t, uint(7), id)

	_, ok = store.Consume(ctx, ticket)
	assert.False(t, ok)

	expired, err := store.Issue(ctx, 8)
	require.NoError(t, err)
	now = now.Add(cache.WSTicketTTL + time.Second)
	_, ok = store.Consume(ctx, expired)
	assert.False(t, ok)
}
