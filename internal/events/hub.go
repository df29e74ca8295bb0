package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type client struct {
	userID uint
	conn   *websocket.Conn
	send   chan []byte
}

// Hub keeps the open websocket connections of each user and pushes share
// events to the participants that are online. It holds no business data.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*client]struct{}
	upgrader websocket.Upgrader
	log      *applog.Logger
}

func NewHub(allowedOrigins []string, log *applog.Logger) *Hub {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = struct{}{}
	}

	return &Hub{
		clients: make(map[uint]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
		log: log.WithComponent(applog.ComponentHub),
	}
}

// Publish queues the event on every connection of its recipients. Events
// other than share events are ignored. A connection whose buffer is full is
// dropped rather than blocking the publisher.
func (h *Hub) Publish(ctx context.Context, event Event) error {
	if !event.IsShareEvent() {
		return nil
	}

	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var slow []*client

	h.mu.RLock()
	for _, userID := range event.Recipients {
		for c := range h.clients[userID] {
			select {
			case c.send <- message:
			default:
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.WarnContext(ctx, "Dropping slow websocket client", applog.FieldUserID, c.userID)
		h.unregister(c)
	}

	return nil
}

// Connections returns the number of open connections of a user.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for c := range clients {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

// ServeWS upgrades the request and blocks until the connection closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", applog.FieldUserID, userID, applog.FieldError, err)
		return
	}

	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	welcome, _ := json.Marshal(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
	})
	c.send <- welcome

	h.register(c)
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}

	delete(clients, c)
	if len(clients) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

// readPump only exists to process control frames and notice disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.log.Debug("WebSocket connection closed", applog.FieldUserID, c.userID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("WebSocket read failed", applog.FieldUserID, c.userID, applog.FieldError, err)
			}
			return
		}
	}
}

// writePump is the only goroutine writing to the connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.log.Warn("WebSocket write failed", applog.FieldUserID, c.userID, applog.FieldError, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
