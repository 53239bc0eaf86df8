package notifications

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"

	"olma/internal/observability"
)

const (
	// maxConnsPerUser bounds fan-out cost per account (multiple tabs/devices).
	maxConnsPerUser = 8

	// maxTotalConns is a process-wide safety valve.
	maxTotalConns = 10000
)

// Hub fans Redis notification messages out to connected websocket clients.
type Hub struct {
	mu    sync.RWMutex
	conns map[uint]map[*Client]struct{}
	total int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection to the hub with scaling guardrails.
func (h *Hub) Register(userID uint, isAdmin bool, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.total >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.conns[userID] = set
	}
	if len(set) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID, isAdmin)
	set[client] = struct{}{}
	h.total++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// UnregisterClient removes a client and closes its send channel.
func (h *Hub) UnregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, c.UserID)
	}
	h.total--
	observability.WebSocketConnections.Dec()
	close(c.Send)
}

// Broadcast delivers a message to every connection of one user.
func (h *Hub) Broadcast(userID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		c.TrySend(message)
	}
}

// BroadcastModerators delivers a message to every admin connection.
func (h *Hub) BroadcastModerators(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.conns {
		for c := range set {
			if c.IsAdmin {
				c.TrySend(message)
			}
		}
	}
}

// BroadcastAll delivers a message to every connection.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.conns {
		for c := range set {
			c.TrySend(message)
		}
	}
}

// StartWiring subscribes the hub to the Redis notification channels and
// routes incoming payloads to the right connections.
func (h *Hub) StartWiring(ctx context.Context, notifier *Notifier) error {
	return notifier.StartPatternSubscriber(ctx, func(channel, payload string) {
		switch {
		case strings.HasPrefix(channel, "notifications:user:"):
			idStr := strings.TrimPrefix(channel, "notifications:user:")
			id, err := strconv.ParseUint(idStr, 10, 64)
			if err != nil {
				log.Printf("Hub: bad user channel %q: %v", channel, err)
				return
			}
			h.Broadcast(uint(id), []byte(payload))
		case channel == moderationChannel:
			h.BroadcastModerators([]byte(payload))
		case channel == broadcastChannel:
			h.BroadcastAll([]byte(payload))
		}
	})
}

// Shutdown closes every connection. Used during graceful shutdown.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.conns {
		for c := range set {
			close(c.Send)
			if c.Conn != nil {
				_ = c.Conn.Close()
			}
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.total = 0
}
