package ws

import "sync"

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub fans activity payloads out to subscribers grouped by organization ID.
type Hub struct {
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
	count     chan countRequest
	done      chan struct{}
	closeOnce sync.Once
}

type message struct {
	organizationID string
	payload        []byte
}

type subscription struct {
	organizationID string
	client         Subscriber
}

type countRequest struct {
	organizationID string
	reply          chan int
}

// NewHub creates an initialized Hub and starts its loop.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message, 64),
		count:     make(chan countRequest),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			for _, clients := range h.clients {
				for c := range clients {
					c.Close()
				}
			}
			h.clients = map[string]map[Subscriber]struct{}{}
			return
		case sub := <-h.register:
			if _, ok := h.clients[sub.organizationID]; !ok {
				h.clients[sub.organizationID] = make(map[Subscriber]struct{})
			}
			h.clients[sub.organizationID][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.clients[sub.organizationID]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.clients, sub.organizationID)
				}
			}
		case msg := <-h.broadcast:
			if clients, ok := h.clients[msg.organizationID]; ok {
				for c := range clients {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						delete(clients, c)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.organizationID)
				}
			}
		case req := <-h.count:
			req.reply <- len(h.clients[req.organizationID])
		}
	}
}

// Register adds a client to an organization stream.
func (h *Hub) Register(organizationID string, client Subscriber) {
	select {
	case h.register <- subscription{organizationID: organizationID, client: client}:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(organizationID string, client Subscriber) {
	select {
	case h.unreg <- subscription{organizationID: organizationID, client: client}:
	case <-h.done:
	}
}

// Broadcast queues payload for every subscriber of the organization.
// It reports false when the hub is closed or its queue is full.
func (h *Hub) Broadcast(organizationID string, payload []byte) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- message{organizationID: organizationID, payload: payload}:
		return true
	case <-h.done:
		return false
	default:
		return false
	}
}

// Subscribers reports how many clients follow an organization.
func (h *Hub) Subscribers(organizationID string) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{organizationID: organizationID, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Close stops the loop and closes every subscriber.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
