package notifications

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans toast notifications out to connected dashboard clients over
// WebSocket. A toast with no connected clients is dropped silently; toasts
// are transient by definition and never persisted.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu          sync.RWMutex
	connections map[string]*connection
	closed      bool
}

type connection struct {
	id   string
	conn *websocket.Conn
	send chan Toast
}

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	readLimit  = 512
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// NewHub creates a toast hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The console and its API are same-origin in deployment
				return true
			},
		},
		logger:      logger,
		connections: make(map[string]*connection),
	}
}

// Toast broadcasts a notification to every connected client. It implements
// Notifier and never blocks: a client with a full send buffer misses the toast.
func (h *Hub) Toast(level Level, title, description string) {
	toast := Toast{
		ID:          uuid.New(),
		Level:       level,
		Title:       title,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.connections {
		select {
		case c.send <- toast:
		default:
			h.logger.Debug("dropping toast for slow client", zap.String("connection", c.id))
		}
	}
}

// HandleConnection upgrades an HTTP request to a WebSocket subscription.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &connection{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan Toast, sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return nil
	}
	h.connections[c.id] = c
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)

	h.logger.Debug("dashboard client connected", zap.String("connection", c.id))
	return nil
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case toast, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(toast); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages; it exists to detect disconnects.
func (h *Hub) readPump(c *connection) {
	defer h.drop(c)

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *connection) {
	h.mu.Lock()
	if _, ok := h.connections[c.id]; ok {
		delete(h.connections, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Close disconnects all clients and stops accepting new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.connections {
		delete(h.connections, id)
		close(c.send)
		c.conn.Close()
	}
}
