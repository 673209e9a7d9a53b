package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerPost = 500
	maxTotalConns   = 10000
)

var (
	ErrHubFull     = errors.New("server connection limit reached")
	ErrPostFull    = errors.New("post connection limit reached")
	ErrHubShutdown = errors.New("hub is shutting down")
)

// Hub maps post id to the websocket clients following that post.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[uint]map[*Client]struct{}),
	}
}

// Register adds a client for postID. It fails once the hub or the post is at
// capacity.
func (h *Hub) Register(postID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubShutdown
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrHubFull
	}

	m, ok := h.conns[postID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[postID] = m
	}
	if len(m) >= maxConnsPerPost {
		return nil, ErrPostFull
	}

	client := newClient(h, conn, postID)
	m[client] = struct{}{}
	h.totalConns++
	observability.FeedConnections.Inc()

	return client, nil
}

// UnregisterClient removes the client and closes its send channel. Calling it
// twice is harmless.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.PostID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.PostID)
	}
	h.totalConns--
	observability.FeedConnections.Dec()
	close(client.Send)
}

// Subscribers reports how many clients follow postID.
func (h *Hub) Subscribers(postID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[postID])
}

// Broadcast sends message to every client of postID.
func (h *Hub) Broadcast(postID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[postID] {
		c.TrySend(message)
	}
}

// Dispatch routes a raw feed message from redis to the post's clients.
func (h *Hub) Dispatch(channel, payload string) {
	postID, ok := postIDFromChannel(channel)
	if !ok {
		middleware.Logger.Warn("invalid feed channel", "channel", channel)
		return
	}

	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		middleware.Logger.Warn("invalid feed event", "channel", channel, "error", err)
		return
	}
	observability.FeedEvents.WithLabelValues(event.Type).Inc()

	h.Broadcast(postID, []byte(payload))
}

// StartWiring connects the Notifier to this hub.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, h.Dispatch)
}

// Shutdown sends a close frame to every client and drops them all.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for postID, clients := range h.conns {
		for client := range clients {
			if client.Conn != nil {
				if err := client.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
					middleware.Logger.Debug("feed close frame failed", "post_id", postID, "error", err)
				}
				_ = client.Conn.Close()
			}
			close(client.Send)
			observability.FeedConnections.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0

	return nil
}
