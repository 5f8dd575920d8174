package broadcast

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client is one websocket subscriber scoped to a game room.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

// Hub fans published events out to every subscriber of a game room.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{clients: map[*client]bool{}, log: log}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	h.log.Debug("ws client joined", zap.String("game", c.gameID))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// Publish sends the message to every client subscribed to the game.
func (h *Hub) Publish(gameID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.gameID != gameID {
			continue
		}
		select {
		case c.send <- message:
		default:
			// slow consumer, drop it
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) subscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.gameID == gameID {
			n++
		}
	}
	return n
}

// writePump drains the send channel onto the socket.
func (c *client) writePump(h *Hub) {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readPump discards inbound frames; the socket is broadcast-only. Reading
// is still required to notice the peer going away.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
