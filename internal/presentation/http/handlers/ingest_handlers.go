// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/application/services"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// IngestHandlers contains the event ingestion HTTP handlers
type IngestHandlers struct {
	ingestService *services.IngestService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewIngestHandlers creates ingest handlers with injected dependencies
func NewIngestHandlers(ingestService *services.IngestService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *IngestHandlers {
	return &IngestHandlers{
		ingestService: ingestService,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// PostEvents handles POST /api/analytics/events - batched event ingestion
func (h *IngestHandlers) PostEvents(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("ingest:post_events", "")
	defer marker.Complete()

	var batch events.Batch
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.logger.Ingest().Error("Batch JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, events.IngestResponse{
			Success: false,
			Errors:  []string{"invalid request format"},
		})
		return
	}

	response, err := h.ingestService.ProcessBatch(c.Request.Context(), batch)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	marker.SetSuccess(response.Success)
	marker.AddMetadata("received", response.Received)

	status := http.StatusOK
	if !response.Success {
		status = http.StatusBadRequest
	}

	h.logger.Ingest().Debug("Ingest request completed",
		"received", response.Received,
		"rejected", len(response.Errors),
		"duration", time.Since(start))
	c.JSON(status, response)
}
