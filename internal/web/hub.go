// internal/web/hub.go
package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tahcohcat/goalquest-web/internal/logger"
	"github.com/tahcohcat/goalquest-web/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin for development
		// In production, implement proper origin checking
		return true
	},
}

// wsEvent is the message shape pushed to the browser notification host.
type wsEvent struct {
	Type          string                     `json:"type"`
	Notifications []models.NotificationEntry `json:"notifications,omitempty"`
	Achievement   *models.Achievement        `json:"achievement,omitempty"`
}

// Hub fans notification-queue changes out to connected browser views.
type Hub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	log        *logger.Log
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log *logger.Log) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 16),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		clients:    make(map[*wsClient]bool),
		log:        log.WithComponent("web"),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Infof("view connected, total: %d", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Infof("view disconnected, total: %d", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastNotifications pushes the current queue to every connected view.
func (h *Hub) BroadcastNotifications(entries []models.NotificationEntry) {
	h.send(wsEvent{Type: "notifications", Notifications: entries})
}

// BroadcastCelebration fires the celebratory burst in the browser. Best
// effort: if no view is connected the event is dropped.
func (h *Hub) BroadcastCelebration(a models.Achievement) {
	h.send(wsEvent{Type: "celebrate", Achievement: &a})
}

func (h *Hub) send(event wsEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Warn("failed to encode ws event")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		// No reader; drop rather than block the queue's callbacks.
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Warn("websocket error")
			}
			break
		}
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.log.WithError(err).Warn("websocket write error")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade error")
		return
	}

	client := &wsClient{hub: h, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
