package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"fileshare-backend/internal/auth"
	"fileshare-backend/internal/models"
)

// Event is a file-activity notification pushed to connected clients.
type Event struct {
	Action string          `json:"action"` // "upload" or "delete"
	File   models.FileInfo `json:"file"`
}

type eventClient struct {
	userID int64
	send   chan Event
}

// EventHub fans file events out to the websocket clients of the owning
// user.
type EventHub struct {
	mu      sync.RWMutex
	clients map[string]*eventClient
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[string]*eventClient)}
}

// Publish delivers an event to every connection of the given user. Slow
// clients are skipped rather than blocking the request.
func (h *EventHub) Publish(userID int64, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.userID != userID {
			continue
		}
		select {
		case client.send <- ev:
		default:
		}
	}
}

func (h *EventHub) add(userID int64) (string, *eventClient) {
	id := uuid.NewString()
	client := &eventClient{userID: userID, send: make(chan Event, 16)}
	h.mu.Lock()
	h.clients[id] = client
	h.mu.Unlock()
	return id, client
}

func (h *EventHub) remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

// eventsHandler handles GET /api/events: upgrades to a websocket and
// streams the authenticated user's file activity.
func (h *Handlers) eventsHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	id, client := h.events.add(user.ID)
	defer h.events.remove(id)

	// Drain reads so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-client.send:
			if err := ws.WriteJSON(ev); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
