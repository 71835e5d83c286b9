package broadcast

import (
	"encoding/json"
	"sync"

	"auction-market/internal/events"
	"auction-market/utils"

	"github.com/gorilla/websocket"
)

// Manager fans domain events out to WebSocket clients watching an auction.
// It implements events.Publisher so it can sit behind the same fan-out as
// the NATS publisher.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *message
	done       chan struct{}
}

// Client is one WebSocket connection watching one auction
type Client struct {
	ID        string
	AuctionID int64
	Conn      *websocket.Conn
	Send      chan []byte
}

type message struct {
	auctionID int64
	payload   []byte
}

// NewManager creates a hub; call Run before registering clients
func NewManager() *Manager {
	return &Manager{
		subscribers: make(map[int64]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *message, 64),
		done:        make(chan struct{}),
	}
}

// Run processes register/unregister/broadcast requests until Stop
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.addClient(client)
		case client := <-m.unregister:
			m.removeClient(client)
		case msg := <-m.broadcast:
			m.deliver(msg)
		case <-m.done:
			return
		}
	}
}

// Stop terminates the Run loop
func (m *Manager) Stop() {
	close(m.done)
}

// Publish implements events.Publisher by delivering the event to every
// client subscribed to its auction.
func (m *Manager) Publish(event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		utils.Warn("failed to marshal event for broadcast", map[string]any{
			"event_id": event.EventID,
			"error":    err.Error(),
		})
		return
	}
	select {
	case m.broadcast <- &message{auctionID: event.AuctionID, payload: payload}:
	case <-m.done:
	}
}

// RegisterClient subscribes a client to its auction's feed
func (m *Manager) RegisterClient(client *Client) {
	select {
	case m.register <- client:
	case <-m.done:
	}
}

// UnregisterClient removes a client and closes its send channel
func (m *Manager) UnregisterClient(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

// SubscriberCount returns the number of clients watching an auction
func (m *Manager) SubscriberCount(auctionID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[auctionID])
}

func (m *Manager) addClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients, ok := m.subscribers[client.AuctionID]
	if !ok {
		clients = make(map[*Client]bool)
		m.subscribers[client.AuctionID] = clients
	}
	clients[client] = true
}

func (m *Manager) removeClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients, ok := m.subscribers[client.AuctionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(m.subscribers, client.AuctionID)
	}
	close(client.Send)
}

func (m *Manager) deliver(msg *message) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for client := range m.subscribers[msg.auctionID] {
		select {
		case client.Send <- msg.payload:
		default:
			// Slow consumer; drop the message rather than block the hub.
			utils.Warn("dropping broadcast for slow client", map[string]any{
				"client_id":  client.ID,
				"auction_id": msg.auctionID,
			})
		}
	}
}

// StartWritePump streams the Send channel to the connection until it closes
func (c *Client) StartWritePump() {
	go func() {
		defer c.Conn.Close()
		for payload := range c.Send {
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()
}

// StartReadPump consumes client frames to detect disconnects
func (c *Client) StartReadPump(manager *Manager) {
	go func() {
		defer manager.UnregisterClient(c)
		for {
			if _, _, err := c.Conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
