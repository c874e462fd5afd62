package websockets

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/oasis-cafe/oasis-service/internal/models"
)

// Hub routes order events to connected clients. Admin clients receive every
// order event; customer clients only receive events for their own orders.
// Every client map is guarded by mu: registration flows through the Run
// goroutine while broadcasts arrive on request goroutines.
type Hub struct {
	clients map[*Client]bool

	register chan *Client

	unregister chan *Client

	broadcast chan []byte

	adminClients map[*Client]bool

	userClients map[string]map[*Client]bool

	mu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:    make(chan []byte),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		clients:      make(map[*Client]bool),
		adminClients: make(map[*Client]bool),
		userClients:  make(map[string]map[*Client]bool),
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if client.clientType == ClientTypeAdmin {
		h.adminClients[client] = true
		return
	}

	if _, ok := h.userClients[client.userID]; !ok {
		h.userClients[client.userID] = make(map[*Client]bool)
	}
	h.userClients[client.userID][client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A client evicted by a broadcast is already gone; its later
	// unregister must not close the send channel a second time.
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	delete(h.adminClients, client)
	if clients, ok := h.userClients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userClients, client.userID)
		}
	}
}

// evictLocked drops a client whose send buffer is full. Callers hold mu.
func (h *Hub) evictLocked(client *Client) {
	close(client.send)
	delete(h.clients, client)
	delete(h.adminClients, client)
	if clients, ok := h.userClients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userClients, client.userID)
		}
	}
}

// BroadcastToAdmins delivers a message to every connected admin client.
// Clients with a full send buffer are dropped.
func (h *Hub) BroadcastToAdmins(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.adminClients {
		select {
		case client.send <- message:
		default:
			h.evictLocked(client)
		}
	}
}

// BroadcastToUser delivers a message to every connection held by one user
func (h *Hub) BroadcastToUser(userID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.userClients[userID]; ok {
		for client := range clients {
			select {
			case client.send <- message:
			default:
				h.evictLocked(client)
			}
		}
	}
}

// NotifyOrderCreated announces a freshly created order to the admin
// dashboard and to the customer who placed it.
func (h *Hub) NotifyOrderCreated(order *models.Order) {
	h.notifyOrder(TypeOrderNew, order)
}

// NotifyOrderStatus announces an order status change
func (h *Hub) NotifyOrderStatus(order *models.Order) {
	h.notifyOrder(TypeOrderStatus, order)
}

func (h *Hub) notifyOrder(msgType MessageType, order *models.Order) {
	data, err := json.Marshal(order)
	if err != nil {
		log.Printf("Error marshaling order event: %v", err)
		return
	}

	message, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		log.Printf("Error marshaling order message: %v", err)
		return
	}

	h.BroadcastToAdmins(message)
	h.BroadcastToUser(order.UserID, message)
}

func (h *Hub) broadcastAll(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			h.evictLocked(client)
		}
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastAll(message)
		}
	}
}
