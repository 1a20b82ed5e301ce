package devtools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/cellstore/pkg/reactive"
)

// EventKind identifies what happened.
type EventKind string

const (
	EventCellCreated       EventKind = "cell.created"
	EventCellNotified      EventKind = "cell.notified"
	EventCellPoisoned      EventKind = "cell.poisoned"
	EventObserverInstalled EventKind = "observer.installed"
	EventObserverDisposed  EventKind = "observer.disposed"
	EventStoreRegistered   EventKind = "store.registered"
	EventStoreRemoved      EventKind = "store.removed"
	EventStoresCleared     EventKind = "store.cleared"
)

// Event is one engine or registry event as sent to inspector clients.
type Event struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"time"`
	Kind     EventKind `json:"kind"`
	Cell     string    `json:"cell,omitempty"`
	Session  string    `json:"session,omitempty"`
	Registry string    `json:"registry,omitempty"`
	Store    string    `json:"store,omitempty"`

	Explicit      int    `json:"explicit,omitempty"`
	Implicit      int    `json:"implicit,omitempty"`
	Pruned        int    `json:"pruned,omitempty"`
	DurationUS    int64  `json:"durationUs,omitempty"`
	Invalidations uint64 `json:"invalidations,omitempty"`
	Count         int    `json:"count,omitempty"`
	Cause         string `json:"cause,omitempty"`
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithEventBuffer sets how many recent events the hub keeps.
func WithEventBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.ring = make([]Event, n)
		}
	}
}

// WithClientQueue sets the per-client send queue length.
func WithClientQueue(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.queue = n
		}
	}
}

// WithHubLogger sets the hub logger.
func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithCheckOrigin sets the websocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) HubOption {
	return func(h *Hub) {
		if fn != nil {
			h.upgrader.CheckOrigin = fn
		}
	}
}

// Hub collects engine events and fans them out to websocket clients.
// It implements reactive.Instrumentation and store.Hooks.
//
// Publishing never blocks: a client whose queue is full misses the event.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	queue    int

	seq     atomic.Uint64
	dropped atomic.Uint64

	ringMu sync.Mutex
	ring   []Event
	next   int
	filled bool

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger:  slog.Default(),
		queue:   64,
		ring:    make([]Event, 256),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Publish stamps e with a sequence number and time, records it, and sends
// it to every connected client.
func (h *Hub) Publish(e Event) {
	e.Seq = h.seq.Add(1)
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	h.ringMu.Lock()
	h.ring[h.next] = e
	h.next = (h.next + 1) % len(h.ring)
	if h.next == 0 {
		h.filled = true
	}
	h.ringMu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

// Recent returns up to limit recent events, oldest first. A limit of zero
// or less returns everything buffered.
func (h *Hub) Recent(limit int) []Event {
	h.ringMu.Lock()
	var out []Event
	if h.filled {
		out = make([]Event, 0, len(h.ring))
		out = append(out, h.ring[h.next:]...)
		out = append(out, h.ring[:h.next]...)
	} else {
		out = append([]Event(nil), h.ring[:h.next]...)
	}
	h.ringMu.Unlock()

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Dropped returns how many client sends were skipped because a queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and streams events until the
// client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.queue)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("inspector client connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)

	// Reads only detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	h.logger.Info("inspector client disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

func (h *Hub) CellCreated(cell string) {
	h.Publish(Event{Kind: EventCellCreated, Cell: cell})
}

func (h *Hub) Notified(stats reactive.NotifyStats) {
	h.Publish(Event{
		Kind:       EventCellNotified,
		Time:       stats.Start,
		Cell:       stats.Cell,
		Explicit:   stats.Explicit,
		Implicit:   stats.Implicit,
		Pruned:     stats.Pruned,
		DurationUS: stats.Duration.Microseconds(),
	})
}

func (h *Hub) ObserverInstalled(id string) {
	h.Publish(Event{Kind: EventObserverInstalled, Session: id})
}

func (h *Hub) ObserverDisposed(id string, invalidations uint64) {
	h.Publish(Event{Kind: EventObserverDisposed, Session: id, Invalidations: invalidations})
}

func (h *Hub) Poisoned(cell string, cause any) {
	h.Publish(Event{Kind: EventCellPoisoned, Cell: cell, Cause: fmt.Sprint(cause)})
}

func (h *Hub) StoreRegistered(registry, store string) {
	h.Publish(Event{Kind: EventStoreRegistered, Registry: registry, Store: store})
}

func (h *Hub) StoreRemoved(registry, store string) {
	h.Publish(Event{Kind: EventStoreRemoved, Registry: registry, Store: store})
}

func (h *Hub) StoresCleared(registry string, count int) {
	h.Publish(Event{Kind: EventStoresCleared, Registry: registry, Count: count})
}
