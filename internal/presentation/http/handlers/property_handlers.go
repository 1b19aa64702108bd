package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/domain/entities/property"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/security"
)

// PropertyHandlers manages the property registry endpoints.
type PropertyHandlers struct {
	properties property.Repository
	logger     *logging.ChanneledLogger
}

// NewPropertyHandlers creates property handlers with injected dependencies
func NewPropertyHandlers(properties property.Repository, logger *logging.ChanneledLogger) *PropertyHandlers {
	return &PropertyHandlers{
		properties: properties,
		logger:     logger,
	}
}

// GetProperties handles GET /api/properties
func (h *PropertyHandlers) GetProperties(c *gin.Context) {
	list, err := h.properties.FindAll()
	if err != nil {
		h.logger.System().Error("Failed to list properties", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list properties"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": list})
}

// PostProperty handles POST /api/properties - register or update a property
func (h *PropertyHandlers) PostProperty(c *gin.Context) {
	var req struct {
		Slug       string   `json:"slug" binding:"required"`
		Name       string   `json:"name" binding:"required"`
		Domains    []string `json:"domains"`
		AlertEmail string   `json:"alertEmail"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	prop := &property.Property{
		ID:         security.GenerateULID(),
		Slug:       req.Slug,
		Name:       req.Name,
		Domains:    req.Domains,
		AlertEmail: req.AlertEmail,
	}

	if existing, err := h.properties.FindBySlug(req.Slug); err == nil && existing != nil {
		prop.ID = existing.ID
	}

	if err := h.properties.Upsert(prop); err != nil {
		h.logger.System().Error("Failed to upsert property", "error", err.Error(), "slug", req.Slug)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save property"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": prop})
}
