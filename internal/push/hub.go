package push

import (
	"encoding/json"
	"log"
	"sync/atomic"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// Envelope is the frame pushed to dashboard clients
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub fans one snapshot stream out to every connected dashboard client
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	count      int32 // mirror of len(clients), readable off-loop
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set; it is the only goroutine that touches it, so
// no locking is needed.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			atomic.StoreInt32(&h.count, int32(len(h.clients)))
			log.Printf("Dashboard client connected (%d total)", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				atomic.StoreInt32(&h.count, int32(len(h.clients)))
				close(client.send)
				log.Printf("Dashboard client disconnected (%d total)", len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client: drop it rather than stall the broadcast
					delete(h.clients, client)
					close(client.send)
				}
			}
			atomic.StoreInt32(&h.count, int32(len(h.clients)))
		}
	}
}

// Count reports how many dashboard clients are connected
func (h *Hub) Count() int {
	return int(atomic.LoadInt32(&h.count))
}

// BroadcastSnapshot pushes a fresh aggregation pass to every client
func (h *Hub) BroadcastSnapshot(snapshot *telemetry.Snapshot) {
	data, err := json.Marshal(Envelope{Type: "snapshot", Payload: snapshot})
	if err != nil {
		log.Printf("Failed to encode snapshot frame: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Printf("Broadcast queue full, dropping snapshot frame")
	}
}
