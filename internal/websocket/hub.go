package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"trainingdesk/internal/auth"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer  = 64
	queueBuffer = 256
	writeWait   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for dev simplicity
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is pushed to subscribers after a workflow change commits.
type Event struct {
	Type     string    `json:"type"` // e.g. PAYMENT_APPROVED
	Entity   string    `json:"entity"`
	EntityID string    `json:"entity_id"`
	Status   string    `json:"status,omitempty"`
	ActorID  string    `json:"actor_id,omitempty"`
	OwnerID  string    `json:"owner_id,omitempty"`
	At       time.Time `json:"at"`
}

// visibleTo reports whether a subscriber acting as actor may receive evt.
// Staff and admin follow every record; everyone else only hears about their own.
func (evt Event) visibleTo(actor rbac.Actor) bool {
	if evt.OwnerID == "" {
		return true
	}
	switch actor.Role {
	case model.RoleAdmin, model.RoleStaff:
		return true
	}
	return evt.OwnerID == actor.ID.String()
}

// Client is one authenticated subscriber.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	actor rbac.Actor
	send  chan []byte
}

// Hub fans committed events out to the subscribers allowed to see them.
type Hub struct {
	clients    map[*Client]struct{}
	events     chan Event
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		events:     make(chan Event, queueBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the subscriber set. It must be started once before clients connect.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			log.Printf("WebSocket client %s (%s) connected", client.actor.ID, client.actor.Role)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case evt := <-h.events:
			h.dispatch(evt)
		}
	}
}

func (h *Hub) dispatch(evt Event) {
	msg, err := json.Marshal(evt)
	if err != nil {
		log.Printf("websocket: failed to encode %s event: %v", evt.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !evt.visibleTo(client.actor) {
			continue
		}
		select {
		case client.send <- msg:
		default:
			// A subscriber that cannot keep up is dropped rather than stalling the rest.
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Publish queues evt for delivery without blocking; a full queue drops it.
func (h *Hub) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	select {
	case h.events <- evt:
	default:
		log.Printf("websocket: event queue full, dropping %s event", evt.Type)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards client frames; it exists to notice the connection closing.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket: read error for %s: %v", c.actor.ID, err)
			}
			return
		}
	}
}

// ServeWs upgrades the request once the token query parameter names a valid actor.
func ServeWs(hub *Hub, c *gin.Context, tokens *auth.Tokens) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	actor, err := tokens.Parse(tokenString)
	if err != nil {
		log.Println("WebSocket connection rejected:", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}

	client := &Client{hub: hub, conn: conn, actor: actor, send: make(chan []byte, sendBuffer)}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}
