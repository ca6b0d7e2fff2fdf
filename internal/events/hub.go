package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer frames may queue per client before it is considered stalled
	sendBuffer = 32
)

// Message is the frame written to live feed clients
type Message struct {
	Event Type       `json:"event"`
	Data  OrderEvent `json:"data"`
}

// client is one live feed connection. Only its writer goroutine writes to conn.
type client struct {
	conn       *websocket.Conn
	subscriber string
	send       chan []byte
}

// Hub keeps the websocket connections of the order live feed (kitchen displays,
// admin dashboards) and broadcasts every order event to them. Publishing never
// waits on a client: frames are queued and a client whose queue is full is dropped.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Register adds a connection to the broadcast set and starts its writer
func (h *Hub) Register(conn *websocket.Conn, subscriber string) {
	c := &client{conn: conn, subscriber: subscriber, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	count := len(h.clients)
	h.mutex.Unlock()

	go h.writePump(c)
	log.WithFields(log.Fields{"subscriber": subscriber, "clients": count}).Info("Live feed client connected")
}

// writePump drains the client's queue until the hub closes it
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.WithError(err).WithField("subscriber", c.subscriber).Warn("Dropping live feed client")
			h.Unregister(c.conn)
			return
		}
	}
}

// Unregister removes a connection, its writer then closes it
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.remove(conn)
}

func (h *Hub) remove(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish implements Publisher. It only queues the frame for each client.
func (h *Hub) Publish(_ context.Context, event OrderEvent) error {
	data, err := json.Marshal(Message{Event: event.Type, Data: event})
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.WithField("subscriber", c.subscriber).Warn("Live feed client stalled, dropping it")
			h.remove(conn)
		}
	}
	return nil
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		h.remove(conn)
	}
}
