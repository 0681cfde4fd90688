package events

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub maintains active WebSocket clients and fans events out to them.
// Delivery is at-most-once: a disconnected client misses what was published
// while it was away, and a slow client gets dropped rather than slowing the
// floor down.
type Hub struct {
	// Registered clients with their channel subscriptions
	clients map[*Client]map[string]bool

	// Inbound events to broadcast
	broadcast chan Event

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Subscription changes from clients
	subscribe chan subscription

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger
	logger *zap.Logger

	sendBuffer int
}

type subscription struct {
	client   *Client
	channels []string
}

// NewHub creates a new Hub instance.
func NewHub(logger *zap.Logger, broadcastBuffer, sendBuffer int) *Hub {
	if broadcastBuffer <= 0 {
		broadcastBuffer = 256
	}
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Hub{
		broadcast:  make(chan Event, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		clients:    make(map[*Client]map[string]bool),
		logger:     logger,
		sendBuffer: sendBuffer,
	}
}

// Run starts the hub's main event loop.
func (h *Hub) Run() {
	h.logger.Info("Event hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// New clients see everything until they narrow their subscription
			h.clients[client] = map[string]bool{ChannelAll: true}
			h.mu.Unlock()
			h.logger.Info("Event client registered",
				zap.String("remote_addr", client.conn.RemoteAddr().String()),
				zap.Int("total_clients", len(h.clients)))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("Event client unregistered",
					zap.String("remote_addr", client.conn.RemoteAddr().String()),
					zap.Int("total_clients", len(h.clients)))
			}
			h.mu.Unlock()

		case sub := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.clients[sub.client]; ok {
				channels := make(map[string]bool, len(sub.channels))
				for _, ch := range sub.channels {
					channels[ch] = true
				}
				h.clients[sub.client] = channels
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("Failed to marshal event", zap.Error(err))
				h.mu.Unlock()
				continue
			}

			for client, channels := range h.clients {
				if !channels[ChannelAll] && !channels[event.Channel] {
					continue
				}
				select {
				case client.send <- data:
					// Event queued for this client
				default:
					// Client send channel full - unregister slow/dead client
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("Client send buffer full, unregistering",
						zap.String("remote_addr", client.conn.RemoteAddr().String()))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for broadcast. Never blocks; if the hub is
// saturated the event is dropped.
func (h *Hub) Publish(event Event) {
	select {
	case h.broadcast <- event:
		// Event queued for broadcast
	default:
		h.logger.Warn("Hub broadcast channel full, event dropped",
			zap.String("event_type", string(event.Type)))
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
