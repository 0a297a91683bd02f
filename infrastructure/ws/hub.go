package ws

import (
	"log"
	"sync"
)

// Hub tracks live connections keyed by their opaque connection handle.
// Presence (who is online) lives in the presence registry; the hub only
// moves bytes to sockets this process owns.
type Hub struct {
	clients            map[string]*UserClient
	broadcast          chan []byte
	Register           chan *UserClient
	Unregister         chan *UserClient
	mu                 sync.RWMutex
	OnClientUnregister func(client *UserClient) error
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*UserClient),
		broadcast:  make(chan []byte, 256),
		Register:   make(chan *UserClient),
		Unregister: make(chan *UserClient),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client.Handle] = client
			h.mu.Unlock()
			log.Printf("%s is connected (handle %s)", client.UserId, client.Handle)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.Handle]; ok {
				delete(h.clients, client.Handle)
				close(client.send)
				log.Printf("%s is disconnected (handle %s)", client.UserId, client.Handle)
			}
			h.mu.Unlock()

			if h.OnClientUnregister != nil {
				if err := h.OnClientUnregister(client); err != nil {
					log.Printf("OnClientUnregister error: %v", err)
				}
			}

		case payload := <-h.broadcast:
			h.mu.RLock()
			for handle, client := range h.clients {
				select {
				case client.send <- payload:
				default:
					log.Printf("Broadcast dropped for slow client: %s", handle)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Send(handle string, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, exists := h.clients[handle]
	if !exists {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		log.Printf("Failed to send to client: %s", handle)
		return false
	}
}

func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RegisterClient(client *UserClient) {
	h.Register <- client
}

func (h *Hub) UnregisterClient(client *UserClient) {
	h.Unregister <- client
}

func (h *Hub) SetOnClientUnregister(callback func(client *UserClient) error) {
	h.OnClientUnregister = callback
}
