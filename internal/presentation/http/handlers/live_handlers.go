package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/messaging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
)

// LiveHandlers serves the live event feed over websockets.
type LiveHandlers struct {
	broadcaster messaging.Broadcaster
	logger      *logging.ChanneledLogger
	upgrader    websocket.Upgrader
}

// NewLiveHandlers creates live feed handlers with injected dependencies
func NewLiveHandlers(broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger) *LiveHandlers {
	return &LiveHandlers{
		broadcaster: broadcaster,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The CORS middleware already restricts origins for the rest
			// of the API; the upgrade request carries the same token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetLiveFeed handles GET /api/analytics/live - websocket upgrade for
// the real-time event stream. The optional property query param scopes
// the feed; absent means all properties.
func (h *LiveHandlers) GetLiveFeed(c *gin.Context) {
	property := c.Query("property")
	if property == "" {
		property = messaging.PropertyAll
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Live().Error("Websocket upgrade failed", "error", err.Error())
		return
	}

	client := messaging.NewLiveClient(conn, property)
	h.broadcaster.Register(client)
	h.logger.Live().Info("Live feed client connected", "property", property)

	go client.WritePump()

	// Reads only serve to detect disconnects; the feed is one way.
	go func() {
		defer h.broadcaster.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.logger.Live().Debug("Live feed client disconnected", "property", property)
				return
			}
		}
	}()
}
