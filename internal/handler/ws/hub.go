// Package ws streams crossing events and run summaries to connected
// browsers over a websocket, so the dashboard updates without polling.
package ws

import (
	"context"
	"net/http"
	"sync"

	"rrtracker/internal/domain/models"
	xlogger "rrtracker/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type envelope struct {
	Type string      `json:"type"` // "crossing" or "run"
	Data interface{} `json:"data"`
}

// Hub fans events out to all connected clients. Slow clients are dropped
// rather than buffered without bound.
type Hub struct {
	logger *xlogger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	send chan envelope
}

func NewHub(logger *xlogger.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/alerts", h.Serve)
}

// Serve upgrades the connection and streams events until the client leaves.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	cl := &client{send: make(chan envelope, 16)}
	h.add(cl)
	defer h.remove(cl)

	// Reader goroutine only watches for close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case msg := <-cl.send:
			if err := conn.WriteJSON(msg); err != nil {
				return nil
			}
		}
	}
}

// PublishCrossing implements repository.AlertPublisher so the hub can be
// wired into the checker alongside the Kafka publisher.
func (h *Hub) PublishCrossing(_ context.Context, ev *models.CrossingEvent) error {
	h.broadcast(envelope{Type: "crossing", Data: ev})
	return nil
}

// Close implements repository.AlertPublisher. Connections close themselves
// when the server shuts down.
func (h *Hub) Close() error { return nil }

// BroadcastRun pushes a completed run summary to every client.
func (h *Hub) BroadcastRun(sum *models.RunSummary) {
	h.broadcast(envelope{Type: "run", Data: sum})
}

func (h *Hub) broadcast(msg envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- msg:
		default:
			// Slow consumer; drop the message, keep the connection.
		}
	}
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cl] = struct{}{}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, cl)
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
