package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000

	// shutdownGrace bounds the wait for write pumps to flush their close frame.
	shutdownGrace = 2 * time.Second
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
)

// Hub maps userID -> set of connected clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

func (h *Hub) Name() string { return "notification hub" }

// Register adds a connection for userID, enforcing per-user and global limits.
func (h *Hub) Register(userID uint, conn Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	return client, nil
}

func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; exists {
		delete(m, client)
		h.totalConns--
		client.closeSend()
	}
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Broadcast sends message to every connection of userID.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.conns[userID] {
		c.TrySend(data)
	}
}

// Connections returns the number of open connections for userID.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring forwards every user-channel message from n to the matching
// local connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		userID, ok := ParseUserChannel(channel)
		if !ok {
			slog.Warn("invalid notification channel", slog.String("channel", channel))
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown asks every write pump to send a close frame, waits for them up to
// shutdownGrace or ctx, then closes the connections. New registrations are
// refused afterwards.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true

	var clients []*Client
	for _, userConns := range h.conns {
		for client := range userConns {
			clients = append(clients, client)
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	frame := websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")
	for _, client := range clients {
		client.closeWith(frame)
	}

	timer := time.NewTimer(shutdownGrace)
	defer timer.Stop()
	waiting := true
	for _, client := range clients {
		if client.Conn == nil {
			continue
		}
		if waiting {
			select {
			case <-client.done:
			case <-timer.C:
				waiting = false
			case <-ctx.Done():
				waiting = false
			}
		}
		select {
		case <-client.done:
			// the pump already closed it
			continue
		default:
		}
		if err := client.Conn.Close(); err != nil {
			slog.Debug("failed to close websocket", slog.Uint64("user_id", uint64(client.UserID)), slog.String("error", err.Error()))
		}
	}
	return nil
}
