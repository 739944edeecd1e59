// Package realtime pushes board sync signals to websocket viewers and relays
// signals between the websocket clients and the redis sync channels.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"openkanban/internal/presence"

	"github.com/redis/go-redis/v9"
)

// Message is the websocket wire format. Count is set on presence messages.
type Message struct {
	Type   string `json:"type"`
	Sender string `json:"sender,omitempty"`
	Count  int    `json:"count,omitempty"`
}

const (
	TypeSync     = "sync"
	TypePing     = "ping"
	TypePong     = "pong"
	TypePresence = "presence"
)

// Relay publishes a sync signal for a board on behalf of sender.
type Relay interface {
	Publish(ctx context.Context, slug, sender string) error
}

type signal struct {
	slug   string
	sender string
}

type headcount struct {
	client *Client
	count  int
}

// Hub keeps one room of clients per board.
type Hub struct {
	relay   Relay
	metrics *Metrics

	rdb         *redis.Client
	presenceTTL time.Duration

	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan signal
	headcounts chan headcount
	done       chan struct{}
}

type HubOption func(*Hub)

// WithPresence tracks every websocket viewer in the board's presence hash, so
// browser viewers and terminal sessions count each other.
func WithPresence(rdb *redis.Client, ttl time.Duration) HubOption {
	return func(h *Hub) {
		h.rdb = rdb
		h.presenceTTL = ttl
	}
}

func NewHub(relay Relay, metrics *Metrics, opts ...HubOption) *Hub {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	h := &Hub{
		relay:      relay,
		metrics:    metrics,
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan signal, 64),
		headcounts: make(chan headcount, 64),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// tracker returns the presence tracker of a new client, or nil when presence
// is not enabled.
func (h *Hub) tracker(slug, id string) *presence.Tracker {
	if h.rdb == nil {
		return nil
	}
	return presence.New(h.rdb, slug, presence.WithTTL(h.presenceTTL), presence.WithKey(id))
}

// Register adds a client to its board room. After the hub stopped the
// client is closed right away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Deliver sends a sync message to every client of the board except sender.
func (h *Hub) Deliver(slug, sender string) {
	select {
	case h.deliver <- signal{slug: slug, sender: sender}:
	case <-h.done:
	}
}

// Present queues the current viewer count of the client's board for it.
func (h *Hub) Present(client *Client, count int) {
	select {
	case h.headcounts <- headcount{client: client, count: count}:
	case <-h.done:
	}
}

// Run serves the hub until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			h.metrics.Connections.Set(0)
			return
		case client := <-h.register:
			room, ok := h.rooms[client.slug]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.slug] = room
			}
			room[client] = true
			h.metrics.Connections.Inc()
			log.Printf("🔌 Viewer %s joined board %q", client.id, client.slug)
		case client := <-h.unregister:
			h.remove(client)
		case sig := <-h.deliver:
			h.fanOut(sig)
		case hc := <-h.headcounts:
			h.sendCount(hc)
		}
	}
}

func (h *Hub) remove(client *Client) {
	room, ok := h.rooms[client.slug]
	if !ok || !room[client] {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.slug)
	}
	close(client.send)
	h.metrics.Connections.Dec()
	log.Printf("🔌 Viewer %s left board %q", client.id, client.slug)
}

func (h *Hub) fanOut(sig signal) {
	room := h.rooms[sig.slug]
	if len(room) == 0 {
		return
	}
	data, err := json.Marshal(Message{Type: TypeSync, Sender: sig.sender})
	if err != nil {
		return
	}
	for client := range room {
		if client.id == sig.sender {
			continue
		}
		select {
		case client.send <- data:
			h.metrics.Messages.WithLabelValues("out").Inc()
		default:
			log.Printf("⚠️ Send buffer full, dropping viewer %s", client.id)
			h.remove(client)
		}
	}
}

// sendCount pushes a presence message to a client still in its room. A full
// buffer skips the update; the next recount sends a fresh one.
func (h *Hub) sendCount(hc headcount) {
	if !h.rooms[hc.client.slug][hc.client] {
		return
	}
	data, err := json.Marshal(Message{Type: TypePresence, Count: hc.count})
	if err != nil {
		return
	}
	select {
	case hc.client.send <- data:
		h.metrics.Messages.WithLabelValues("out").Inc()
	default:
	}
}

// announce forwards a client's change signal to every other viewer.
func (h *Hub) announce(ctx context.Context, client *Client) {
	if h.relay == nil {
		h.Deliver(client.slug, client.id)
		return
	}
	if err := h.relay.Publish(ctx, client.slug, client.id); err != nil {
		log.Printf("⚠️ Failed to relay sync from %s: %v", client.id, err)
	}
}
