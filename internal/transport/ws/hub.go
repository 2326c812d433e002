package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Reviewer message types
const (
	MsgAssessmentTriaged MessageType = "assessment_triaged"
	MsgReviewUpdated     MessageType = "review_updated"
	MsgError             MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for the reviewer feed
type Hub struct {
	// reviewerID -> connections; one reviewer may have several tabs open
	reviewerConns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message
}

// Connection represents a WebSocket connection
type Connection struct {
	ReviewerID string
	Send       chan []byte
	Hub        *Hub
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		reviewerConns: make(map[string]map[*Connection]struct{}),
		register:      make(chan *Connection),
		unregister:    make(chan *Connection),
		broadcast:     make(chan *Message, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.reviewerConns[conn.ReviewerID] == nil {
				h.reviewerConns[conn.ReviewerID] = make(map[*Connection]struct{})
			}
			h.reviewerConns[conn.ReviewerID][conn] = struct{}{}
			log.Printf("Reviewer %s connected", conn.ReviewerID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.reviewerConns[conn.ReviewerID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.reviewerConns, conn.ReviewerID)
					}
					log.Printf("Reviewer %s disconnected", conn.ReviewerID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg)
			for _, conns := range h.reviewerConns {
				for conn := range conns {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToReviewers sends a message to every connected reviewer
// (implements service.Broadcaster)
func (h *Hub) BroadcastToReviewers(msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &Message{
		Type:    MessageType(msgType),
		Payload: data,
	}
}
