// Package clickhouse provides an alternative event store backed by
// ClickHouse for high-volume installs.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// EventStore persists analytics events to ClickHouse using native
// batch inserts.
type EventStore struct {
	conn   clickhouse.Conn
	logger *logging.ChanneledLogger
}

// NewEventStore connects to ClickHouse with the configured credentials.
func NewEventStore(logger *logging.ChanneledLogger) (*EventStore, error) {
	options := &clickhouse.Options{
		Addr: []string{config.ClickHouseAddr},
		Auth: clickhouse.Auth{
			Database: config.ClickHouseDB,
			Username: config.ClickHouseUser,
			Password: config.ClickHousePass,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.Database().Info("ClickHouse connection established", "addr", config.ClickHouseAddr, "database", config.ClickHouseDB)
	return &EventStore{conn: conn, logger: logger}, nil
}

// StoreBatch saves a batch of events in a single native insert.
func (s *EventStore) StoreBatch(ctx context.Context, batch []events.AnalyticsEvent) error {
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	insert, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO events (
			id, session_id, user_id, property, source_property, created_at,
			url, referrer, category, action, target, value
		)`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range batch {
		var value float64
		if event.Value != nil {
			value = *event.Value
		}

		err := insert.Append(
			event.ID,
			event.SessionID,
			event.UserID,
			event.Property,
			event.SourceProperty,
			event.Timestamp.UTC(),
			event.URL,
			event.Referrer,
			string(event.Category),
			event.Action,
			event.Target,
			value,
		)
		if err != nil {
			s.logger.Database().Error("Failed to append event to batch",
				"error", err.Error(),
				"eventId", event.ID)
		}
	}

	if err := insert.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	s.logger.Database().Info("Event batch sent to ClickHouse",
		"count", len(batch),
		"duration", time.Since(start))
	return nil
}

// Close tears down the ClickHouse connection.
func (s *EventStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
