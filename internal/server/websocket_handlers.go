package server

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"stackit/internal/cache"
	"stackit/internal/middleware"
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ticketStore hands out single-use websocket tickets. Tickets live in Redis
// so any replica can redeem them; without Redis they are kept in process.
type ticketStore struct {
	rdb *redis.Client
	now func() time.Time

	mu    sync.Mutex
	local map[string]localTicket
}

type localTicket struct {
	userID    uint
	expiresAt time.Time
}

func newTicketStore(rdb *redis.Client) *ticketStore {
	return &ticketStore{rdb: rdb, now: time.Now, local: make(map[string]localTicket)}
}

func (t *ticketStore) Issue(ctx context.Context, userID uint) (string, error) {
	ticket := uuid.NewString()
	if t.rdb != nil {
		err := t.rdb.Set(ctx, cache.WSTicketKey(ticket), strconv.FormatUint(uint64(userID), 10), cache.WSTicketTTL).Err()
		return ticket, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for k, v := range t.local {
		if now.After(v.expiresAt) {
			delete(t.local, k)
		}
	}
	t.local[ticket] = localTicket{userID: userID, expiresAt: now.Add(cache.WSTicketTTL)}
	return ticket, nil
}

// Consume redeems a ticket exactly once.
func (t *ticketStore) Consume(ctx context.Context, ticket string) (uint, bool) {
	if t.rdb != nil {
		raw, err := t.rdb.GetDel(ctx, cache.WSTicketKey(ticket)).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				slog.WarnContext(ctx, "websocket ticket lookup failed", slog.String("error", err.Error()))
			}
			return 0, false
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.local[ticket]
	if !ok {
		return 0, false
	}
	delete(t.local, ticket)
	if t.now().After(entry.expiresAt) {
		return 0, false
	}
	return entry.userID, true
}

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue a websocket ticket
// @Description Single-use ticket valid for 30 seconds, passed as ?ticket= to /api/ws
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	ticket, err := s.tickets.Issue(c.UserContext(), actor.UserID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(cache.WSTicketTTL.Seconds()),
	})
}

// RequireUpgrade rejects plain HTTP requests on the websocket route.
func (s *Server) RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// WebsocketHandler streams the caller's notifications.
// @Summary Notification stream
// @Description Receives answer.created, answer.accepted and user.promoted events
// @Tags notifications
// @Param ticket query string true "Ticket from /ws/ticket"
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			slog.Warn("websocket registration refused",
				slog.Uint64("user_id", uint64(uid)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
