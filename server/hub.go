package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsWriteTimeout     = 10 * time.Second
	clientSendBuffer   = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans state updates out to websocket clients. Slow clients drop
// messages rather than block the game.
type Hub struct {
	mu        sync.Mutex
	clients   map[*client]struct{}
	broadcast chan []byte
	logger    *slog.Logger
}

type client struct {
	send chan []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan []byte, 32),
		logger:    logger,
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues a typed message for every client without blocking.
func (h *Hub) Publish(kind string, payload interface{}) {
	data, err := encodeMessage(kind, payload)
	if err != nil {
		h.logger.Warn("failed to encode websocket message", "type", kind, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Debug("websocket broadcast queue full, dropping update", "type", kind)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// serve takes over an upgraded connection. initial is sent before any
// broadcast so a new client starts from the current state.
func (h *Hub) serve(conn *websocket.Conn, initial []byte) {
	c := &client{send: make(chan []byte, clientSendBuffer)}
	c.send <- initial
	h.register(c)

	go func() {
		// Reads only detect the peer going away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.unregister(c)
				return
			}
		}
	}()

	if err := writeWithHeartbeat(conn, c.send); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
	}
	h.unregister(c)
	_ = conn.Close()
}

func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping, _ := encodeMessage("ping", nil)

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func encodeMessage(kind string, payload interface{}) ([]byte, error) {
	msg := wsMessage{Type: kind}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}
