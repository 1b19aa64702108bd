// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/application/container"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/security"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/presentation/http/server"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	log.Println("\033[32m" + `
  ▄▄▄▄  ▄  ▄ ▄   ▄▄▄ ▄▄▄▄▄ ▄▄▄▄  ▄▄▄  ▄▄▄ ▄ ▄
  █   █ █  █ █  █      █   █   █ █  █ █    █▄▀
  █▄▄▄▀ █  █ █  ▀▄▄▄   █   █▄▄▄▀ █▄▄█ █    █ █
  █     ▀▄▄▀ █▄▄ ▄▄▄▀  █   █  ▀▄ █  █ ▀▄▄▄ ▄ ▄
` + "\033[97m" + `
  made by Driftwood Creative
` + "\033[0m")

	// Step 1: Bring up the channeled logger
	log.Println("Initializing logging...")
	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.OutputToFile = config.LogToFile
	loggerConfig.LogDirectory = config.LogDirectory
	logger, err := logging.NewChanneledLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if os.Getenv("DEBUG") != "" {
		logger.SetChannelLevel(logging.ChannelDebug, slog.LevelDebug)
	}

	// A missing JWT secret gets an ephemeral one so the dashboard still
	// works out of the box; issued tokens will not survive a restart.
	if config.JWTSecret == "" {
		secret, err := security.GenerateSecureToken(32)
		if err != nil {
			return fmt.Errorf("failed to generate ephemeral JWT secret: %w", err)
		}
		config.JWTSecret = secret
		logger.Startup().Warn("JWT_SECRET not set, generated an ephemeral secret",
			"hint", "run with -generate-secret and set JWT_SECRET to keep sessions across restarts")
	}

	// Step 2: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	startContainerTime := time.Now()
	appContainer, err := container.NewContainer(logger)
	if err != nil {
		return fmt.Errorf("container initialization failed: %w", err)
	}
	logger.LogStartupPhase("container", time.Since(startContainerTime), true, map[string]any{
		"eventStoreDriver": config.EventStoreDriver,
	})

	// Step 3: Start the live feed broadcaster
	logger.Startup().Info("Starting live event broadcaster...")
	go appContainer.Broadcaster.Run()

	// Step 4: Initialize HTTP server
	logger.Startup().Info("Starting HTTP server...")
	startServerTime := time.Now()

	port := config.Port
	httpServer := server.New(port, appContainer)

	logger.Startup().Info("HTTP server initialized", "port", port, "duration", time.Since(startServerTime))

	// Step 5: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	totalStartupTime := time.Since(start)
	logger.Startup().Info("Application startup complete",
		"totalDuration", totalStartupTime,
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Stop server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	// Close the container's stores
	logger.Shutdown().Info("Closing event stores...")
	if err := appContainer.Close(); err != nil {
		logger.Shutdown().Error("Error closing event stores", "error", err.Error())
	} else {
		logger.Shutdown().Info("Event stores closed successfully")
	}

	elapsed := time.Since(start)
	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", elapsed,
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
