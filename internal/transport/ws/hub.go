package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Connection lifecycle messages; review events use the service event names
const (
	MsgConnected MessageType = "connected"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sentAt"`
}

// Hub fans review events out to every connected staff member
type Hub struct {
	staffConns map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	UserID string
	Send   chan []byte
	Hub    *Hub
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		staffConns: make(map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.staffConns[conn] = true
			h.mu.Unlock()
			log.Printf("Staff %s connected to review feed", conn.UserID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if h.staffConns[conn] {
				delete(h.staffConns, conn)
				close(conn.Send)
				log.Printf("Staff %s disconnected from review feed", conn.UserID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("WebSocket marshal error: %v", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.staffConns {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for conn := range h.staffConns {
				delete(h.staffConns, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Close disconnects every client and stops the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ConnectedCount returns the number of open staff connections
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.staffConns)
}

// BroadcastToStaff sends an event to all staff connections (implements service.Broadcaster).
// It never blocks the caller: events are dropped when the queue is full.
func (h *Hub) BroadcastToStaff(msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("WebSocket payload error for %s: %v", msgType, err)
		return
	}
	msg := &Message{Type: MessageType(msgType), Payload: data, SentAt: time.Now()}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("WebSocket broadcast queue full, dropping %s", msgType)
	}
}
