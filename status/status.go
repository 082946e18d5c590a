// Package status pushes editor status lines and field change
// notifications to websocket clients.
package status

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/OpenKore/openkore-sub004/field"
)

const (
	INFO = iota
	ERROR
	BLOCKS_CHANGED
	DIMENSIONS_CHANGED
)

type Message struct {
	Message string
	Time    time.Time
	Type    int
	Field   string `json:",omitempty"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump drains control frames and notices disconnects.
func (c *client) readPump() {
	defer c.hub.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Hub fans messages out to every connected client. The last message is
// replayed to new clients.
type Hub struct {
	lock     sync.Mutex
	clients  map[*client]bool
	last     []byte
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[status] ws upgrade error: %v", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, 32)}
	h.lock.Lock()
	h.clients[c] = true
	if h.last != nil {
		c.send <- h.last
	}
	h.lock.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

func (h *Hub) Send(m *Message) {
	if m.Time.IsZero() {
		m.Time = time.Now()
	}
	data, err := json.Marshal(m)
	if err != nil {
		log.Printf("[status] marshal error: %v", err)
		return
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// slow client, drop it instead of stalling the editor
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) Info(format string, a ...interface{}) {
	h.Send(&Message{Message: fmt.Sprintf(format, a...), Type: INFO})
}

func (h *Hub) Error(format string, a ...interface{}) {
	h.Send(&Message{Message: fmt.Sprintf(format, a...), Type: ERROR})
}

// Watch forwards the change notifications of f, tagged with name, until
// the returned stop function is called.
func (h *Hub) Watch(name string, f field.Field) (stop func()) {
	var stopped atomic.Bool
	f.OnBlockChanged(func() {
		if stopped.Load() {
			return
		}
		h.Send(&Message{Message: "blocks changed", Type: BLOCKS_CHANGED, Field: name})
	})
	f.OnDimensionChanged(func() {
		if stopped.Load() {
			return
		}
		h.Send(&Message{
			Message: fmt.Sprintf("resized to %dx%d", f.Width(), f.Height()),
			Type:    DIMENSIONS_CHANGED,
			Field:   name,
		})
	})
	return func() { stopped.Store(true) }
}
