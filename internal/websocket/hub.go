package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/sonicalchemist/api/internal/logger"
	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/notify"
)

// Client represents a WebSocket client
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by composer session ID
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	count      chan countRequest
	done       chan struct{}
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	SessionID string
	Message   []byte
}

type countRequest struct {
	sessionID string
	reply     chan int
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[*Client]bool)
			}
			h.clients[client.SessionID][client] = true
			logger.Debug("WebSocket client registered", logger.Fields{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.remove(client)
			logger.Debug("WebSocket client unregistered", logger.Fields{"session_id": client.SessionID})

		case msg := <-h.broadcast:
			for client := range h.clients[msg.SessionID] {
				select {
				case client.Send <- msg.Message:
				default:
					h.remove(client)
				}
			}

		case req := <-h.count:
			req.reply <- len(h.clients[req.sessionID])
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.SessionID)
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connections for a session.
func (h *Hub) ClientCount(sessionID string) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{sessionID: sessionID, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Notify pushes a toast to every connection of a session.
func (h *Hub) Notify(sessionID string, n notify.Notification) {
	h.send(sessionID, model.WSNotificationMessage{
		Type:      model.WSMessageTypeNotification,
		SessionID: sessionID,
		Title:     n.Title,
		Message:   n.Message,
		Severity:  string(n.Severity),
	})
}

// BroadcastState pushes a composer state transition to a session.
func (h *Hub) BroadcastState(sessionID string, state interface{}) {
	h.send(sessionID, model.WSStateMessage{
		Type:      model.WSMessageTypeState,
		SessionID: sessionID,
		State:     state,
	})
}

// SessionSink returns a notify.Sink that forwards to the session's sockets.
func (h *Hub) SessionSink(sessionID string) notify.Sink {
	return notify.SinkFunc(func(n notify.Notification) {
		h.Notify(sessionID, n)
	})
}

func (h *Hub) send(sessionID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to marshal websocket message", err, logger.Fields{"session_id": sessionID})
		return
	}

	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}:
	default:
		logger.Warn("WebSocket broadcast queue full, dropping message", logger.Fields{"session_id": sessionID})
	}
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, sessionID string) {
	client := &Client{
		SessionID: sessionID,
		Conn:      c,
		Send:      make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					_ = c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket error", logger.Fields{"session_id": sessionID, "error": err.Error()})
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			data, _ := json.Marshal(model.WSMessage{Type: model.WSMessageTypePong})
			select {
			case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}:
			case <-h.done:
				return
			}
		}
	}
}
