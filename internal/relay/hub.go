// Package relay pushes command objects to connected websocket listeners.
// Delivery is best-effort: there are no acknowledgements, no retries and no
// ordering across listeners.
package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type listener struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // gorilla connections allow one concurrent writer
}

func (l *listener) write(msg []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return l.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub tracks listeners and broadcasts commands to them.
type Hub struct {
	listeners map[string]*listener
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		listeners: make(map[string]*listener),
		logger:    logger,
	}
}

// ServeHTTP upgrades the request and registers the connection as a listener
// until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	l := &listener{id: uuid.NewString(), conn: conn}
	h.add(l)
	defer h.remove(l.id)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) add(l *listener) {
	h.mu.Lock()
	h.listeners[l.id] = l
	count := len(h.listeners)
	h.mu.Unlock()
	h.logger.Info("relay listener connected", "listener", l.id, "listeners", count)
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	l, ok := h.listeners[id]
	delete(h.listeners, id)
	count := len(h.listeners)
	h.mu.Unlock()

	if ok {
		l.conn.Close()
		h.logger.Info("relay listener disconnected", "listener", id, "listeners", count)
	}
}

// Count returns the number of connected listeners.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Broadcast sends command as JSON to every listener. It reports whether at
// least one listener was registered when the attempt started; it never
// confirms delivery. Listeners whose write fails are dropped.
func (h *Hub) Broadcast(command any) (bool, error) {
	msg, err := json.Marshal(command)
	if err != nil {
		return false, fmt.Errorf("encode relay command: %w", err)
	}

	h.mu.RLock()
	targets := make([]*listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		targets = append(targets, l)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return false, nil
	}

	var wg sync.WaitGroup
	for _, l := range targets {
		wg.Add(1)
		go func(l *listener) {
			defer wg.Done()
			if err := l.write(msg); err != nil {
				h.logger.Debug("relay write failed", "listener", l.id, "error", err)
				h.remove(l.id)
			}
		}(l)
	}
	wg.Wait()

	return true, nil
}

// Close disconnects every listener.
func (h *Hub) Close() {
	h.mu.Lock()
	listeners := h.listeners
	h.listeners = make(map[string]*listener)
	h.mu.Unlock()

	for _, l := range listeners {
		l.conn.Close()
	}
}
