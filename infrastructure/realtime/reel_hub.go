package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"reelshare/domain/model"

	"github.com/gin-gonic/gin"
)

const reelStatusEvent = "reel_status"

// ReelStatusEvent is the SSE payload sent when one of the caller's reels changes state.
type ReelStatusEvent struct {
	Type      string                `json:"type"`
	ReelID    string                `json:"reelId"`
	Shortcode string                `json:"shortcode"`
	Status    model.ReelStatus      `json:"status"`
	Method    string                `json:"method,omitempty"`
	Category  model.FailureCategory `json:"category,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// Hub fans reel status changes out to the submitter's open streams.
type Hub struct {
	mu        sync.RWMutex
	users     map[string]map[chan ReelStatusEvent]struct{}
	keepAlive time.Duration
}

func NewReelHub() *Hub {
	return &Hub{
		users:     make(map[string]map[chan ReelStatusEvent]struct{}),
		keepAlive: 25 * time.Second,
	}
}

// Serve streams events for the authenticated account (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch := make(chan ReelStatusEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			_, _ = c.Writer.Write([]byte(":ping\n\n"))
			c.Writer.Flush()
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: " + reelStatusEvent + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// Subscribers returns the number of open streams for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (h *Hub) addSubscriber(userID string, ch chan ReelStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan ReelStatusEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan ReelStatusEvent) {
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

// BroadcastReelStatus never blocks; a slow stream drops the event.
func (h *Hub) BroadcastReelStatus(reel *model.Reel) {
	if reel == nil {
		return
	}
	evt := ReelStatusEvent{
		Type:      reelStatusEvent,
		ReelID:    reel.ID.Hex(),
		Shortcode: reel.Shortcode,
		Status:    reel.Status,
	}
	if reel.Payload != nil {
		evt.Method = reel.Payload.Method
	}
	if reel.Failure != nil {
		evt.Category = reel.Failure.Category
		evt.Error = reel.Failure.Message
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[reel.SubmittedBy.Hex()] {
		select {
		case ch <- evt:
		default:
		}
	}
}
