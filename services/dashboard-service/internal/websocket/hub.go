package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/Rohianon/equishare-dashboard/pkg/logger"
	"github.com/Rohianon/equishare-dashboard/pkg/portfolio"
)

// Message types
const (
	MsgTypeSnapshot = "snapshot"
	MsgTypeError    = "error"
	MsgTypePing     = "ping"
	MsgTypePong     = "pong"
)

// ClientMessage represents a message from the client
type ClientMessage struct {
	Type string `json:"type"`
}

// ServerMessage represents a message to the client
type ServerMessage struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// SnapshotData announces that a newer snapshot is being displayed. Clients
// showing an older version reload.
type SnapshotData struct {
	Version   uint64    `json:"version"`
	FetchedAt time.Time `json:"fetched_at"`
	Holdings  int       `json:"holdings"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID   string
	Conn *websocket.Conn
	Hub  *Hub
	Send chan []byte
}

// Hub fans snapshot notifications out to every connected page
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug().Str("client_id", client.ID).Msg("WebSocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Debug().Str("client_id", client.ID).Msg("WebSocket client disconnected")

		case data := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- data:
				default:
					// Slow client; it will catch up on the next snapshot
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop shuts down the hub loop
func (h *Hub) Stop() {
	h.cancel()
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// BroadcastSnapshot notifies every client of a replaced snapshot. It has the
// signature of a session swap listener.
func (h *Hub) BroadcastSnapshot(view *portfolio.ViewModel) {
	data, err := json.Marshal(ServerMessage{
		Type: MsgTypeSnapshot,
		Data: SnapshotData{
			Version:   view.Version,
			FetchedAt: view.FetchedAt,
			Holdings:  len(view.Holdings),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal snapshot message")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn().Uint64("version", view.Version).Msg("Broadcast channel full, dropping snapshot message")
	}
}

// NewClient creates a new WebSocket client
func NewClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Hub:  hub,
		Send: make(chan []byte, 16),
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.ctx.Done():
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error().Err(err).Str("client_id", c.ID).Msg("WebSocket read error")
			}
			break
		}

		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.reply(ServerMessage{Type: MsgTypeError, Error: "Invalid message format"})
		return
	}

	switch msg.Type {
	case MsgTypePing:
		c.reply(ServerMessage{Type: MsgTypePong})
	default:
		c.reply(ServerMessage{Type: MsgTypeError, Error: "Unknown message type: " + msg.Type})
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) reply(msg ServerMessage) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, _ := json.Marshal(msg)
	select {
	case c.Send <- data:
	default:
	}
}
