package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/pkg/metrics"
)

const publishBuffer = 256

// Hub keeps the open notification connections and pushes each published
// notification to the connections of its recipients
type Hub struct {
	// Connected clients by user id
	clients map[string]map[*Client]bool

	// Outbound notifications waiting to be routed
	outbound chan *Envelope

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		outbound:   make(chan *Envelope, publishBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run routes registrations and notifications until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.outbound:
			h.deliver(env)
		}
	}
}

// Publish queues n for delivery. It never blocks; when the queue is full the push is
// dropped, and the notification is still readable through the list endpoint.
func (h *Hub) Publish(n *models.Notification) {
	select {
	case h.outbound <- newNotificationEnvelope(n):
	default:
		h.logger.Warn().Str("notificationID", n.ID).Msg("Notification push queue full, dropping push")
	}
}

// ClientCount returns the number of open connections of a user
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	metrics.WebsocketConnections.Inc()

	h.logger.Debug().
		Str("userID", client.userID).
		Str("role", string(client.role)).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.send)
	metrics.WebsocketConnections.Dec()
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Debug().Str("userID", client.userID).Msg("Client unregistered")
}

// deliver writes env to every recipient connection. A client whose buffer is full is dropped.
func (h *Hub) deliver(env *Envelope) {
	data, err := env.encode()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal notification push")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for userID, conns := range h.clients {
		for client := range conns {
			if !env.addressedTo(userID, client.role) {
				continue
			}
			select {
			case client.send <- data:
				sent++
			default:
				h.removeLocked(client)
			}
		}
	}

	h.logger.Debug().Int("recipients", sent).Str("type", env.Type).Msg("Notification pushed")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.removeLocked(client)
		}
	}
}
