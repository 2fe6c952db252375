package handler

import (
	"io"
	"time"

	"campus-pay/internal/adapter/http/middleware"
	"campus-pay/internal/notify"
	"campus-pay/pkg/apperror"
	"campus-pay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const heartbeatInterval = 25 * time.Second

// EventsHandler streams payment notifications to the authenticated
// account over Server-Sent Events.
type EventsHandler struct {
	registry *notify.Registry
	log      zerolog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(registry *notify.Registry, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{registry: registry, log: log}
}

// Stream handles GET /api/v1/events. The session stays registered for
// the lifetime of the connection; events always target the payee
// identity the session was registered for, never the transport.
func (h *EventsHandler) Stream(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	session := h.registry.Register(accountID)
	defer h.registry.Unregister(session)

	h.log.Debug().
		Str("account_id", accountID.String()).
		Int("live_sessions", h.registry.Live(accountID)).
		Msg("sse session opened")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	clientGone := c.Request.Context().Done()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-session.Events():
			c.SSEvent("payment", event)
			return true
		case <-heartbeat.C:
			// Keeps intermediaries from closing an idle connection.
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		case <-session.Done():
			return false
		case <-clientGone:
			return false
		}
	})

	h.log.Debug().
		Str("account_id", accountID.String()).
		Msg("sse session closed")
}
