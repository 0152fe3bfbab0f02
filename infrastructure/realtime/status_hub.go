package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"socialcast/domain/repository"

	"github.com/gin-gonic/gin"
)

// Hub maintains per-user SSE subscribers listening for publish status events.
// This replaces the realtime database subscriptions the UI used to hold.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[chan repository.PublishEvent]struct{}
}

func NewStatusHub() *Hub {
	return &Hub{users: make(map[string]map[chan repository.PublishEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by
// middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan repository.PublishEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	// Initial comment to keep connection open
	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: publish_status\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(userID string, ch chan repository.PublishEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan repository.PublishEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan repository.PublishEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// Broadcast delivers an event to all of the owning user's subscribers
// without blocking slow consumers.
func (h *Hub) Broadcast(evt *repository.PublishEvent) {
	if evt == nil {
		return
	}
	h.mu.RLock()
	subs := h.users[evt.UserID]
	for ch := range subs {
		select {
		case ch <- *evt:
		default:
		}
	}
	h.mu.RUnlock()
}
