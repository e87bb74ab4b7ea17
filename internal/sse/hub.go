package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/google/uuid"
)

const EventMessageReceived = "message.received"

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type MessageReceivedEvent struct {
	MessageID   uuid.UUID  `json:"message_id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	CustomerID  *uuid.UUID `json:"customer_id,omitempty"`
	Body        string     `json:"body"`
	From        *string    `json:"from,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Client is one open event stream. A stream only ever sees its own workspace.
type Client struct {
	ID          string
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	Send        chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *WorkspaceMessage
	mu         sync.RWMutex
}

type WorkspaceMessage struct {
	WorkspaceID uuid.UUID
	Event       Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *WorkspaceMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for _, client := range h.clients {
				if client.WorkspaceID != msg.WorkspaceID {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount(workspaceID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, client := range h.clients {
		if client.WorkspaceID == workspaceID {
			n++
		}
	}
	return n
}

func (h *Hub) BroadcastMessageReceived(msg *models.Message) {
	h.broadcast <- &WorkspaceMessage{
		WorkspaceID: msg.WorkspaceID,
		Event: Event{
			Type: EventMessageReceived,
			Data: MessageReceivedEvent{
				MessageID:   msg.ID,
				WorkspaceID: msg.WorkspaceID,
				CustomerID:  msg.CustomerID,
				Body:        msg.Body,
				From:        msg.FromNumber,
				CreatedAt:   msg.CreatedAt,
			},
		},
	}
}
