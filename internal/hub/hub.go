// Package hub fans studio changes out to connected editor tabs over
// websockets.
package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event types pushed to clients.
const (
	EventState    = "state"
	EventPages    = "pages"
	EventPlayback = "playback"
	EventPreview  = "preview"
)

// Message is one websocket frame. State is the snapshot taken when the
// message was built, not when the change happened.
type Message struct {
	Type  string `json:"type"`
	State any    `json:"state,omitempty"`
}

// Hub maintains the set of active clients and broadcasts to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan string
	done       chan struct{}

	snapshot func() any
	log      logrus.FieldLogger
	mu       sync.Mutex
}

// NewHub creates a Hub. snapshot is called from the hub goroutine for
// every broadcast, outside any store lock.
func NewHub(snapshot func() any, log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan string, 256),
		done:       make(chan struct{}),
		snapshot:   snapshot,
		log:        log,
	}
}

// Notify queues a broadcast of kind. It never blocks: when the queue is
// full the event is dropped, which loses nothing because every queued
// broadcast carries the latest snapshot.
func (h *Hub) Notify(kind string) {
	select {
	case h.events <- kind:
	default:
		h.log.WithField("type", kind).Debug("hub queue full, dropping event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run handles registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			c.closeSend()
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"client": c.ID, "clients": n}).Debug("client connected")
			h.sendTo(c, h.build(EventState))

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				c.closeSend()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"client": c.ID, "clients": n}).Debug("client disconnected")

		case kind := <-h.events:
			msg := h.build(kind)
			if msg == nil {
				continue
			}
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					c.closeSend()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) sendTo(c *Client, msg []byte) {
	if msg == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *Hub) build(kind string) []byte {
	m := Message{Type: kind}
	if h.snapshot != nil {
		m.State = h.snapshot()
	}
	data, err := json.Marshal(m)
	if err != nil {
		h.log.WithError(err).WithField("type", kind).Error("encoding hub message")
		return nil
	}
	return data
}
