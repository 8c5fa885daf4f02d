package ws

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	MessageState   = "analytics.state"
	MessageUpdated = "analytics.updated"
	MessageError   = "error"
)

type Message struct {
	Type  string `json:"type"`
	Scope string `json:"scope"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// SnapshotFunc returns the current state for a scope, if any.
type SnapshotFunc func(scope string) (any, bool)

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

func (c *client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// Hub fans committed dashboards out to websocket subscribers by scope.
type Hub struct {
	logger    *zap.Logger
	snapshot  SnapshotFunc
	heartbeat time.Duration

	mu   sync.RWMutex
	subs map[string]map[*client]struct{}
}

func NewHub(logger *zap.Logger, snapshot SnapshotFunc, heartbeat time.Duration) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &Hub{
		logger:    logger,
		snapshot:  snapshot,
		heartbeat: heartbeat,
		subs:      make(map[string]map[*client]struct{}),
	}
}

func normalizeScope(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return "all"
	}
	return scope
}

func (h *Hub) subscribe(scope string, c *client) (unsubscribe func()) {
	h.mu.Lock()
	if h.subs[scope] == nil {
		h.subs[scope] = make(map[*client]struct{})
	}
	h.subs[scope][c] = struct{}{}
	h.mu.Unlock()

	return func() { h.drop(scope, c) }
}

func (h *Hub) drop(scope string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.subs[scope]
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.subs, scope)
	}
}

// Subscribers counts the clients listening on scope.
func (h *Hub) Subscribers(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[normalizeScope(scope)])
}

// Broadcast sends data to every subscriber of scope. Clients that fail a
// write are closed and dropped.
func (h *Hub) Broadcast(scope string, data any) {
	scope = normalizeScope(scope)

	h.mu.RLock()
	clients := make([]*client, 0, len(h.subs[scope]))
	for c := range h.subs[scope] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	message := Message{Type: MessageUpdated, Scope: scope, Data: data}
	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			h.logger.Debug("dropping websocket subscriber", zap.String("scope", scope), zap.Error(err))
			_ = c.conn.Close()
			h.drop(scope, c)
		}
	}
}

// ServeAnalytics streams dashboards for the butcher query parameter.
func (h *Hub) ServeAnalytics(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	scope := normalizeScope(r.URL.Query().Get("butcher"))
	c := &client{conn: conn}
	unsubscribe := h.subscribe(scope, c)
	defer unsubscribe()

	if h.snapshot != nil {
		if data, ok := h.snapshot(scope); ok {
			_ = c.writeJSON(Message{Type: MessageState, Scope: scope, Data: data})
		}
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	ctx := r.Context()
	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
