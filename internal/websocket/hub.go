package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message tells clients that the item set or view state changed and the list
// should be derived again. Seq increases by one per broadcast, so a client
// that sees a gap knows it missed a message and refetches everything.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Seq    uint64         `json:"seq"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	seq     uint64
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client and queues a hello message carrying the current
// sequence number.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	h.hello(c)
}

// Resync sends c a fresh hello so it can refetch and resume from the
// current sequence number. Unknown clients are ignored.
func (h *Hub) Resync(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	h.hello(c)
}

// hello queues a feed_hello for c. The caller holds h.mu.
func (h *Hub) hello(c *Client) {
	msg := NewMessage("feed", "hello", 0, map[string]any{"clients": len(h.clients)})
	msg.Seq = h.seq
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal hello", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn("client buffer full, hello dropped", "seq", msg.Seq)
	}
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast stamps msg with the next sequence number and sends it to all
// connected clients. Clients whose buffer is full miss the message.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	msg.Seq = h.seq
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client buffer full, message dropped", "type", msg.Type, "seq", msg.Seq)
		}
	}
}

// Seq returns the sequence number of the last broadcast.
func (h *Hub) Seq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
