// Package ws relays board mutation envelopes between connected peers over
// websockets. The hub fans every inbound envelope out to the board loop and
// broadcasts confirmed mutations back to all peers except the sender.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	sendQueueSize    = 32
	inboundQueueSize = 64
)

// Inbound pairs an envelope with the client that sent it, so the board loop
// can relay the mutation to everyone else.
type Inbound struct {
	Source   *Client
	Envelope Envelope
}

// Client is one connected peer. Fields are owned by the hub.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected peers and routes envelopes between them.
type Hub struct {
	logger *log.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool

	inbound chan Inbound
}

// NewHub creates a hub. The logger must not be nil.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: make(map[*Client]struct{}),
		inbound: make(chan Inbound, inboundQueueSize),
	}
}

// Inbound returns the channel of envelopes received from peers.
func (h *Hub) Inbound() <-chan Inbound {
	return h.inbound
}

// ClientCount reports the number of connected peers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler upgrades the request and services the peer until it disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			h.logger.Printf("websocket upgrade failed: %v", err)
			return
		}

		client := &Client{conn: conn, send: make(chan []byte, sendQueueSize)}
		if !h.register(client) {
			_ = conn.Close()
			return
		}

		go h.writePump(client)
		h.readPump(client)
	}
}

// Broadcast sends the envelope to every connected peer.
func (h *Hub) Broadcast(env Envelope) {
	h.BroadcastExcept(nil, env)
}

// BroadcastExcept sends the envelope to every connected peer but skip. Peers
// with a full send queue are dropped rather than allowed to stall the rest.
func (h *Hub) BroadcastExcept(skip *Client, env Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		h.logger.Printf("marshal %s envelope: %v", env.Kind, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client == skip {
			continue
		}
		select {
		case client.send <- raw:
		default:
			h.logger.Printf("peer send queue full, dropping connection")
			h.removeLocked(client)
		}
	}
}

// Close disconnects every peer and stops accepting new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for client := range h.clients {
		h.removeLocked(client)
	}
}

func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client] = struct{}{}
	return true
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	_ = client.conn.Close()
}

func (h *Hub) readPump(client *Client) {
	defer h.remove(client)

	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.logger.Printf("discarding malformed envelope: %v", err)
			continue
		}
		if env.Kind == "" || env.ShapeID == "" {
			h.logger.Printf("discarding envelope with missing kind or shape id")
			continue
		}
		select {
		case h.inbound <- Inbound{Source: client, Envelope: env}:
		default:
			h.logger.Printf("inbound queue full, discarding %s envelope", env.Kind)
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case raw, ok := <-client.send:
			if !ok {
				return
			}
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				h.remove(client)
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(client)
				return
			}
		}
	}
}
