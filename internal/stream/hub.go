// Package stream fans scan signals out to websocket clients. Signals arrive
// either directly from the scanner daemon or via the Redis signal channel, so
// the API server and the scanner can run as separate processes.
package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"backtest-systemv1/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Signals are public read-only data; cross-origin dashboards may connect.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub manages websocket clients and broadcasts scan signals to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	// OnCount, when set before serving, observes the client count after each
	// connect and disconnect (e.g. a Prometheus gauge).
	OnCount func(n int)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Broadcast sends a signal to every connected client. Slow clients drop
// messages rather than stalling the hub.
func (h *Hub) Broadcast(sig model.ScanSignal) {
	data, err := json.Marshal(sig)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// client backed up, drop
		}
	}
}

// RunRedis subscribes to the Redis signal channel and rebroadcasts every
// message to connected clients, forwarding each signal to any extra sinks
// (e.g. the recent-signal ring). Blocks until ctx is done.
func (h *Hub) RunRedis(ctx context.Context, rdb *goredis.Client, channel string, sinks ...func(model.ScanSignal)) {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var sig model.ScanSignal
			if err := json.Unmarshal([]byte(msg.Payload), &sig); err != nil {
				log.Printf("[stream] bad signal payload: %v", err)
				continue
			}
			h.Broadcast(sig)
			for _, sink := range sinks {
				sink(sig)
			}
		}
	}
}

// ServeWS upgrades an HTTP request to a websocket and attaches the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[stream] upgrade failed: %v", err)
		return
	}
	c := newClient(h, conn)
	h.register(c)
	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	if h.OnCount != nil {
		h.OnCount(n)
	}
	log.Printf("[stream] client connected (%d total)", n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if h.OnCount != nil {
		h.OnCount(n)
	}
}
