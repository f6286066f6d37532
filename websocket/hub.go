package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/google/uuid"
)

// jsonWriter is the part of *websocket.Conn the hub uses.
type jsonWriter interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   jsonWriter
}

type Notification struct {
	UserID uuid.UUID   `json:"-"`
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Notify     chan Notification

	clientsMu sync.RWMutex
	clients   map[uuid.UUID]jsonWriter
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Notify:     make(chan Notification, 64),
		clients:    make(map[uuid.UUID]jsonWriter),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.Register:
			log.Printf("Client registered: %s", client.UserID)
			h.clientsMu.Lock()
			h.clients[client.UserID] = client.Conn
			h.clientsMu.Unlock()
		case client := <-h.Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			h.clientsMu.Lock()
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
			h.clientsMu.Unlock()
		case notification := <-h.Notify:
			h.deliver(notification)
		}
	}
}

func (h *Hub) deliver(notification Notification) {
	h.clientsMu.RLock()
	conn, ok := h.clients[notification.UserID]
	h.clientsMu.RUnlock()
	if !ok {
		return
	}

	if err := conn.WriteJSON(notification); err != nil {
		log.Printf("Error sending notification to client %s: %v", notification.UserID, err)
		conn.Close()
		h.clientsMu.Lock()
		if current, ok := h.clients[notification.UserID]; ok && current == conn {
			delete(h.clients, notification.UserID)
		}
		h.clientsMu.Unlock()
	}
}

func (h *Hub) Connected(userID uuid.UUID) bool {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// BookingConfirmed queues a dashboard update. It never blocks the request;
// when the queue is full the update is dropped.
func (h *Hub) BookingConfirmed(booking models.Booking) {
	notification := Notification{
		UserID: booking.UserID,
		Type:   "booking.confirmed",
		Data: map[string]interface{}{
			"id":          booking.ID,
			"reference":   booking.Reference,
			"date":        booking.Date,
			"total_price": booking.TotalPrice.String(),
		},
	}
	select {
	case h.Notify <- notification:
	default:
		log.Printf("⚠️ Notification queue full, dropping update for booking %s", booking.ID)
	}
}
