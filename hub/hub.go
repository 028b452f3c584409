package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-floorplan/utils"
)

// Event types
const (
	EventTableCreate       = "table_create"
	EventTableUpdate       = "table_update"
	EventTableDelete       = "table_delete"
	EventLockUpdate        = "lock_update"
	EventReservationCreate = "reservation_create"
	EventReservationCancel = "reservation_cancel"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

const (
	// writeWait bounds a single write to a client.
	writeWait = 10 * time.Second
	// sendBuffer is how many messages a client may fall behind before it is dropped.
	sendBuffer = 32
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub menampung semua client denah yang terhubung lewat websocket.
// Setiap client punya goroutine penulis sendiri sehingga client yang lambat tidak menahan Broadcast.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	go h.writePump(c)
}

// Unregister melepaskan connection dan menutupnya.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.drop(conn)
}

// drop must be called with h.mutex held.
func (h *Hub) drop(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every client without waiting on the network. Clients whose queue
// is full are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s message: %v", msg.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))

	for conn, c := range h.clients {
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.Warnf("Dropping slow floor plan client %s", conn.RemoteAddr())
			h.drop(conn)
		}
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		err := c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err == nil {
			err = c.conn.WriteMessage(websocket.TextMessage, data)
		}
		if err != nil {
			utils.ErrorLogger.Warnf("Dropping floor plan client: %v", err)
			h.Unregister(c.conn)
			return
		}
	}
}
