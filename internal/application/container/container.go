// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/application/services"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/domain/analytics"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/domain/entities/property"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/email"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/messaging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/performance"
	analyticsrepo "github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/persistence/analytics"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/persistence/clickhouse"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/persistence/database"
	propertyrepo "github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/persistence/property"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/security"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	IngestService *services.IngestService
	QueryService  *services.QueryService
	AuthService   *services.AuthService

	// Infrastructure dependencies
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
	DB          *database.DB
	Broadcaster *messaging.LiveBroadcaster
	Properties  property.Repository

	// clickhouseStore is kept for shutdown when the driver is clickhouse.
	clickhouseStore *clickhouse.EventStore
}

// NewContainer creates and wires all singleton services
func NewContainer(logger *logging.ChanneledLogger) (*Container, error) {
	perfTracker := performance.NewTracker()

	dsn := config.EventStoreDSN
	if sqlDriver() == "libsql" {
		// Fail fast on a bad remote database before wiring anything else.
		if err := database.TestLibSQLConnection(config.EventStoreDSN, config.EventStoreAuthToken); err != nil {
			return nil, fmt.Errorf("failed to verify libsql connection: %w", err)
		}
		if config.EventStoreAuthToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", dsn, config.EventStoreAuthToken)
		}
	}

	db, err := database.NewConnectionWithLogger(sqlDriver(), dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event database: %w", err)
	}

	schema := database.NewSchemaBuilder()
	if err := schema.CreateSchema(db.DB); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if config.DefaultProperty != "" {
		if err := schema.SeedDefaultProperty(db.DB, security.GenerateULID(), config.DefaultProperty, config.DefaultProperty); err != nil {
			return nil, fmt.Errorf("failed to seed default property: %w", err)
		}
	}

	properties := propertyrepo.NewPropertyRepository(db.DB, logger)
	repo := analyticsrepo.NewSQLEventRepository(db, logger)

	// The write path can be redirected to ClickHouse for high-volume
	// installs; dashboard queries stay on the SQL repository.
	var store analytics.EventStore = repo
	var chStore *clickhouse.EventStore
	if config.EventStoreDriver == "clickhouse" {
		chStore, err = clickhouse.NewEventStore(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect ClickHouse store: %w", err)
		}
		store = chStore
	}

	broadcaster := messaging.NewLiveBroadcaster(logger)

	mailer, err := email.NewService()
	if err != nil {
		logger.Email().Warn("Email alerts disabled", "reason", err.Error())
		mailer = nil
	}

	return &Container{
		IngestService:   services.NewIngestService(logger, store, properties, broadcaster, mailer),
		QueryService:    services.NewQueryService(logger, repo),
		AuthService:     services.NewAuthService(logger),
		Logger:          logger,
		PerfTracker:     perfTracker,
		DB:              db,
		Broadcaster:     broadcaster,
		Properties:      properties,
		clickhouseStore: chStore,
	}, nil
}

// Close releases the container's long-lived resources.
func (c *Container) Close() error {
	if c.clickhouseStore != nil {
		if err := c.clickhouseStore.Close(); err != nil {
			return err
		}
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// sqlDriver maps the configured event store driver to the SQL driver
// name. The clickhouse driver still needs a SQL database for queries
// and the property registry.
func sqlDriver() string {
	if config.EventStoreDriver == "libsql" {
		return "libsql"
	}
	return "sqlite3"
}
