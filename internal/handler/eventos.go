package handler

import (
	"encoding/json"
	"io"
	"time"

	"github.com/mauropillox/chorilocal-sub000/internal/events"

	"github.com/gin-gonic/gin"
)

// EventosHandler streams order state changes to connected clients over SSE.
type EventosHandler struct{ broadcaster *events.Broadcaster }

func NewEventosHandler(b *events.Broadcaster) *EventosHandler {
	return &EventosHandler{broadcaster: b}
}

// Stream holds the connection open and writes one SSE "pedido" event per
// state change. A heartbeat comment every 30s keeps proxies from closing
// idle connections.
func (h *EventosHandler) Stream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch, cancel := h.broadcaster.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			data, err := json.Marshal(ev)
			if err != nil {
				return true
			}
			c.SSEvent("pedido", string(data))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
