package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/application/services"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// AnalyticsHandlers contains the dashboard query HTTP handlers
type AnalyticsHandlers struct {
	queryService *services.QueryService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies
func NewAnalyticsHandlers(queryService *services.QueryService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		queryService: queryService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// rangeQueryFromContext reads the shared property/from/to/limit query params.
func rangeQueryFromContext(c *gin.Context) services.RangeQuery {
	q := services.RangeQuery{
		Property: c.Query("property"),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(events.TimeFormat, from); err == nil {
			q.Start = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(events.TimeFormat, to); err == nil {
			q.End = t
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			q.Limit = n
		}
	}
	return q
}

// GetEvents handles GET /api/analytics/query/events
func (h *AnalyticsHandlers) GetEvents(c *gin.Context) {
	marker := h.perfTracker.StartOperation("query:events", c.Query("property"))
	defer marker.Complete()

	result, err := h.queryService.Events(c.Request.Context(), rangeQueryFromContext(c))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"events": result, "count": len(result)})
}

// GetCounts handles GET /api/analytics/query/counts
func (h *AnalyticsHandlers) GetCounts(c *gin.Context) {
	marker := h.perfTracker.StartOperation("query:counts", c.Query("property"))
	defer marker.Complete()

	result, err := h.queryService.Counts(c.Request.Context(), rangeQueryFromContext(c))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, result)
}

// GetTopPages handles GET /api/analytics/query/top-pages
func (h *AnalyticsHandlers) GetTopPages(c *gin.Context) {
	marker := h.perfTracker.StartOperation("query:top_pages", c.Query("property"))
	defer marker.Complete()

	result, err := h.queryService.TopPages(c.Request.Context(), rangeQueryFromContext(c))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"pages": result})
}

// GetCategories handles GET /api/analytics/query/categories
func (h *AnalyticsHandlers) GetCategories(c *gin.Context) {
	marker := h.perfTracker.StartOperation("query:categories", c.Query("property"))
	defer marker.Complete()

	result, err := h.queryService.Categories(c.Request.Context(), rangeQueryFromContext(c))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"categories": result})
}

// GetSessions handles GET /api/analytics/query/sessions
func (h *AnalyticsHandlers) GetSessions(c *gin.Context) {
	marker := h.perfTracker.StartOperation("query:sessions", c.Query("property"))
	defer marker.Complete()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	result, err := h.queryService.Sessions(c.Request.Context(), c.Query("property"), limit)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"sessions": result})
}
