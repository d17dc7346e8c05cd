package server

import (
	"context"
	"net/http"

	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

type sessionEvent struct {
	sessionID string
	event     models.MStateEvent
}

// Hub fans state events out to the open pages of each session. It
// implements interfaces.INotifier.
type Hub struct {
	Logger *logger.Logger

	// only touched by the Run loop
	sessions map[string]map[*Client]struct{}

	events     chan sessionEvent // Buffered so Notify never blocks a pipeline
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
}

// -----------------------------------------------------------------------------

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		Logger:     log,
		sessions:   make(map[string]map[*Client]struct{}),
		events:     make(chan sessionEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Run is the main Hub loop. It returns when ctx is done, closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for client := range clients {
					close(client.send)
				}
			}
			h.sessions = make(map[string]map[*Client]struct{})
			return

		case client := <-h.register:
			clients, ok := h.sessions[client.sessionID]
			if !ok {
				clients = make(map[*Client]struct{})
				h.sessions[client.sessionID] = clients
			}
			clients[client] = struct{}{}

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.events:
			for client := range h.sessions[msg.sessionID] {
				select {
				case client.send <- msg.event:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					h.drop(client)
				}
			}

		case reply := <-h.count:
			n := 0
			for _, clients := range h.sessions {
				n += len(clients)
			}
			reply <- n
		}
	}
}

func (h *Hub) drop(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}
}

// -----------------------------------------------------------------------------

// Notify queues event for the pages of sessionID. Events are dropped when
// the queue is full; pages also poll /state.
func (h *Hub) Notify(sessionID string, event models.MStateEvent) {
	select {
	case h.events <- sessionEvent{sessionID: sessionID, event: event}:
	default:
		h.Logger.Debug("Event queue full, dropping %s event for %s", event.Status, event.Screen)
	}
}

// Connections is the number of open websocket connections.
func (h *Hub) Connections(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-ctx.Done():
		return 0
	case <-h.done:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-ctx.Done():
		return 0
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	ws := workspace(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:       s.hub,
		conn:      conn,
		sessionID: ws.ID,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 64),
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
