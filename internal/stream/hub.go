// Package stream pushes stored readings to websocket subscribers as
// they are ingested. Delivery is best-effort: a subscriber that cannot
// keep up is dropped rather than backing up the hub.
package stream

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"sensewire/internal/logging"
	"sensewire/internal/shared"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Hub struct {
	clients    map[*client]bool
	broadcast  chan shared.StoredReading
	register   chan *client
	unregister chan *client

	log *slog.Logger
}

type client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan shared.StoredReading
	deviceID string // empty means all devices
}

func NewHub() *Hub {
	return &Hub{
		clients:    map[*client]bool{},
		broadcast:  make(chan shared.StoredReading, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		log:        logging.Component("stream"),
	}
}

// Run owns the client set. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug("client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.log.Debug("client disconnected", "clients", len(h.clients))

		case rec := <-h.broadcast:
			for c := range h.clients {
				if c.deviceID != "" && c.deviceID != rec.DeviceID {
					continue
				}
				select {
				case c.send <- rec:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast queues a stored reading for delivery. Drops when the hub is
// saturated; ingestion must never block on slow websocket clients.
func (h *Hub) Broadcast(rec shared.StoredReading) {
	select {
	case h.broadcast <- rec:
	default:
		h.log.Warn("broadcast channel full, dropping reading", "device_id", rec.DeviceID)
	}
}

// ServeWS upgrades the connection and subscribes it. An optional
// ?device_id= narrows the feed to one device (exact match, like the
// rest of the system).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:      h,
		conn:     conn,
		send:     make(chan shared.StoredReading, 64),
		deviceID: r.URL.Query().Get("device_id"),
	}
	h.register <- c

	go c.writeLoop()
	go c.readLoop()
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for rec := range c.send {
		if err := c.conn.WriteJSON(rec); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readLoop only drains control frames and detects disconnects.
func (c *client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
