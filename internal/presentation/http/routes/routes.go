// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/application/container"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/presentation/http/handlers"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestIDMiddleware())

	// Initialize handlers
	ingestHandlers := handlers.NewIngestHandlers(container.IngestService, container.Logger, container.PerfTracker)
	analyticsHandlers := handlers.NewAnalyticsHandlers(container.QueryService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	liveHandlers := handlers.NewLiveHandlers(container.Broadcaster, container.Logger)
	propertyHandlers := handlers.NewPropertyHandlers(container.Properties, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.PerfTracker)

	r.GET("/api/health", healthHandlers.GetHealth)

	// Authentication
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandlers.PostLogin)
		auth.GET("/status", authHandlers.GetAuthStatus)
	}

	// Event ingestion is public: it receives batches from tracked sites
	analytics := r.Group("/api/analytics")
	{
		analytics.POST("/events", ingestHandlers.PostEvents)

		// Dashboard surfaces require a token
		query := analytics.Group("/query")
		query.Use(authHandlers.AuthMiddleware())
		{
			query.GET("/events", analyticsHandlers.GetEvents)
			query.GET("/counts", analyticsHandlers.GetCounts)
			query.GET("/top-pages", analyticsHandlers.GetTopPages)
			query.GET("/categories", analyticsHandlers.GetCategories)
			query.GET("/sessions", analyticsHandlers.GetSessions)
		}

		analytics.GET("/live", authHandlers.AuthMiddleware(), liveHandlers.GetLiveFeed)
	}

	// Property registry
	properties := r.Group("/api/properties")
	properties.Use(authHandlers.AuthMiddleware())
	{
		properties.GET("", propertyHandlers.GetProperties)
		properties.POST("", propertyHandlers.PostProperty)
	}

	return r
}
