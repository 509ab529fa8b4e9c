package delivery

import (
	"context"
	"encoding/json"

	"github.com/impservers/impchat/internal/domain"
	"github.com/impservers/impchat/internal/logger"
	"github.com/impservers/impchat/internal/middleware/metrics"
)

// Hub is the push-model backend. A single run loop owns the client set and
// serializes broadcasts, so every viewer observes messages in the same
// relative order. Callers authenticate on the upgrade request before a
// client is registered.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Publish implements Channel. Marshalling happens once per message; the run
// loop copies the frame to every client's buffered send channel.
func (h *Hub) Publish(msg domain.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("failed to marshal message for fan-out", "error", err, "id", msg.Id)
		return
	}
	h.broadcast <- payload
}

// Register hands an authenticated client to the run loop.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister detaches a client; safe to call for a client already gone.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Run owns the client set until ctx is cancelled. Call it in its own
// goroutine; Done is closed after all connections are shut down.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			logger.Log.Info("delivery hub shut down", "component", "delivery_hub")
			return

		case c := <-h.register:
			h.clients[c] = true
			metrics.WsConnections.Inc()
			logger.Log.Debug("viewer connected", "component", "delivery_hub", "viewer", c.name, "total", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				metrics.WsConnections.Dec()
				logger.Log.Debug("viewer disconnected", "component", "delivery_hub", "viewer", c.name, "total", len(h.clients))
			}

		case payload := <-h.broadcast:
			for c := range h.clients {
				// Never block on one viewer: a full send buffer means the
				// connection is too slow to keep, so it is dropped here and
				// the client re-syncs via the list endpoint on reconnect.
				select {
				case c.send <- payload:
					metrics.FanoutDeliveries.Inc()
				default:
					delete(h.clients, c)
					close(c.send)
					metrics.WsConnections.Dec()
					logger.Log.Warn("dropping slow viewer", "component", "delivery_hub", "viewer", c.name)
				}
			}
		}
	}
}

// Done is closed once Run has torn down all connections.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
