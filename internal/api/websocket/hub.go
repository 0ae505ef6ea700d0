package websocket

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients, grouped per user, and fans
// messages out to them. It is the in-app delivery surface: a user with no
// open connection simply misses the push and catches up on next sync.
type Hub struct {
	// Connected clients indexed by user ID
	clients map[string]map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Broadcast messages to one user's clients, or to all when UserID is empty
	Broadcast chan Message

	mu sync.RWMutex

	Logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message, 256),
		Logger:     logger,
	}
}

// Run starts the hub's main event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, exists := h.clients[client.UserID]
	if !exists {
		set = make(map[*Client]bool)
		h.clients[client.UserID] = set
	}
	set[client] = true
	h.Logger.Info().Str("userId", client.UserID).Msg("Notification client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, exists := h.clients[client.UserID]
	if !exists {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	h.Logger.Info().Str("userId", client.UserID).Msg("Notification client disconnected")
}

func (h *Hub) broadcastMessage(message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	deliver := func(set map[*Client]bool) {
		for client := range set {
			select {
			case client.Send <- message:
			default:
				// Slow consumer, drop rather than block the hub
				h.Logger.Warn().Str("userId", client.UserID).Msg("Client send buffer full, dropping message")
			}
		}
	}

	if message.UserID == "" {
		for _, set := range h.clients {
			deliver(set)
		}
		return
	}

	set, exists := h.clients[message.UserID]
	if !exists {
		h.Logger.Debug().
			Str("userId", message.UserID).
			Str("type", string(message.Type)).
			Msg("No connected client for push message")
		return
	}
	deliver(set)
}

// ClientCount returns the number of open connections for a user.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
