package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/performance"
)

// HealthHandlers serves liveness and status endpoints.
type HealthHandlers struct {
	perfTracker *performance.Tracker
	startedAt   time.Time
}

// NewHealthHandlers creates health handlers.
func NewHealthHandlers(perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{
		perfTracker: perfTracker,
		startedAt:   time.Now().UTC(),
	}
}

// GetHealth handles GET /api/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	recent := h.perfTracker.RecentMarkers()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptime":        time.Since(h.startedAt).String(),
		"operations":    h.perfTracker.OperationCount(),
		"recentMarkers": recent,
	})
}
