package diagnostics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// eventType distinguishes the two kinds of push this server ever
// sends over WS /v1/stream: a new equity point or a newly emitted
// order tag. There is no subscription model, unlike the teacher's
// channel-keyed Hub — this surface is read-only and every client gets
// the same two streams.
type eventType string

const (
	eventEquity eventType = "equity"
	eventTag    eventType = "tag"
)

// streamMessage is the JSON envelope pushed to every connected client.
type streamMessage struct {
	Type      eventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// client is one connected WebSocket reader. Send is buffered the same
// way the teacher's Client.send is: a full buffer drops the client
// rather than blocking the hub's broadcast loop.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans out equity/tag events to every connected WS client. It only
// ever reads snapshots handed to it by internal/recorder through
// internal/engine's push calls; it holds no reference to engine state
// and cannot mutate it, preserving the single-owner rule even with a
// second goroutine in the process.
type Hub struct {
	log *zap.Logger

	mu      sync.RWMutex
	clients map[*client]bool

	upgrader websocket.Upgrader
}

// NewHub constructs an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// PublishEquity fans out a new equity point to every connected client.
func (h *Hub) PublishEquity(point interface{}) {
	h.broadcast(eventEquity, point)
}

// PublishTag fans out a newly emitted order tag to every connected client.
func (h *Hub) PublishTag(tag string) {
	h.broadcast(eventTag, tag)
}

func (h *Hub) broadcast(t eventType, data interface{}) {
	msg, err := json.Marshal(streamMessage{Type: t, Data: data, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		if h.log != nil {
			h.log.Error("diagnostics: failed to marshal stream message", zap.Error(err))
		}
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.removeLocked(c)
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
