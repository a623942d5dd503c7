package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	maxReadSize  = 512
)

// Hub streams alerts to connected admin dashboards over WebSocket.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[string]*client
	mu         sync.RWMutex
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	log        *zap.Logger
}

type client struct {
	id   string
	user string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewHub(allowedOrigins []string, log *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[string]*client),
		register:   make(chan *client, 10),
		unregister: make(chan *client, 10),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		log:        log.With(zap.String("component", "alert-hub")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Run owns the client set until ctx ends. Registrations arriving after that
// are refused.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.log.Info("Alert hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()
			h.log.Info("Dashboard connected", zap.String("client_id", c.id), zap.String("user", c.user))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Info("Dashboard disconnected", zap.String("client_id", c.id))

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- message:
				default:
					// slow consumer
					close(c.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Permission is always granted; alerts with no dashboard connected are dropped.
func (h *Hub) Permission() Permission { return PermissionGranted }

func (h *Hub) RequestPermission(context.Context) Permission { return PermissionGranted }

func (h *Hub) Raise(_ context.Context, alert Alert) error {
	msg, err := json.Marshal(wsMessage{Type: "trip_alert", Data: alert})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("Alert broadcast dropped, channel full", zap.String("tag", alert.Tag))
	}
	return nil
}

// ServeWS upgrades an already authenticated request; user names the admin in logs.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, user string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		user: user,
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump only services control frames; dashboards do not send data.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxReadSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("WebSocket read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
