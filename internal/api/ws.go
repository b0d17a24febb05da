// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/datapulse/datapulse/internal/logging"
	"github.com/datapulse/datapulse/internal/metrics"
	"github.com/datapulse/datapulse/internal/models"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	// wsSendBuffer bounds per-client backlog; slow consumers are dropped
	// rather than allowed to stall the broadcast.
	wsSendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin policy is enforced by the CORS layer for the REST surface;
	// the socket carries the same public dashboard data.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the envelope pushed to connected dashboards.
type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshot updates out to connected dashboard sockets. It runs
// under the supervision tree; registration and broadcast are channel-based
// so the hub goroutine owns the client set alone.
type Hub struct {
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte

	mu      sync.RWMutex
	clients int
}

// NewHub creates the websocket hub.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 16),
	}
}

// BroadcastSnapshot queues a snapshot push to every connected client.
// Typically wired as a refresh.Controller subscriber.
func (h *Hub) BroadcastSnapshot(snap *models.Snapshot) {
	raw, err := json.Marshal(wsMessage{Type: "snapshot", Data: snap})
	if err != nil {
		logging.Error().Err(err).Msg("snapshot broadcast encode failed")
		return
	}
	select {
	case h.broadcast <- raw:
	default:
		// Broadcast backlog full; the next update supersedes this one anyway.
	}
}

// ClientCount reports currently connected sockets.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients
}

// Serve implements suture.Service: the hub event loop.
func (h *Hub) Serve(ctx context.Context) error {
	clients := map[*wsClient]struct{}{}
	defer func() {
		for c := range clients {
			close(c.send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-h.register:
			clients[c] = struct{}{}
			h.setCount(len(clients))
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				h.setCount(len(clients))
			}
		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					delete(clients, c)
					close(c.send)
					h.setCount(len(clients))
				}
			}
		}
	}
}

func (h *Hub) String() string { return "websocket-hub" }

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.clients = n
	h.mu.Unlock()
	metrics.WebsocketClients.Set(float64(n))
}

// serveWS upgrades the connection and attaches it to the hub.
func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

// writePump drains the send channel to the socket, pinging on idle.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the socket is push-only. Reading is
// still required to process control frames and detect closure.
func (c *wsClient) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
