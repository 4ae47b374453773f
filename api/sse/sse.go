package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/patrolbot/events"
	"go.uber.org/zap"
)

const defaultKeepalive = 30 * time.Second

// Handler streams room events as server-sent events.
type Handler struct {
	bus       events.Bus
	channel   string
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler reading from channel on bus.
func NewHandler(bus events.Bus, channel string, logger *zap.Logger) *Handler {
	if channel == "" {
		channel = events.DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{bus: bus, channel: channel, keepalive: defaultKeepalive, logger: logger}
}

// WithKeepalive sets the keepalive comment period.
func (h *Handler) WithKeepalive(d time.Duration) *Handler {
	if d > 0 {
		h.keepalive = d
	}
	return h
}

// ServeSSE handles GET /debug/events?bot_id=<id>&kind=<kind>.
// Each event is sent with its kind as the SSE event name.
func (h *Handler) ServeSSE(c *gin.Context) {
	botID, kind := c.Query("bot_id"), c.Query("kind")

	ctx := c.Request.Context()
	msgCh, unsub, err := h.bus.Subscribe(ctx, h.channel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscribe failed"})
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			ev, err := events.Decode(msg.Payload)
			if err != nil {
				continue
			}
			if (botID != "" && ev.BotID != botID) || (kind != "" && ev.Kind != kind) {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Kind, msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-ctx.Done():
			return
		}
	}
}
