// Package analytics provides the concrete SQL-based implementation
// for analytics event persistence.
//
// PURPOSE: Store batched client events as they arrive and serve the
// dashboard queries over the same tables.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/domain/analytics"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/persistence/database"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

const sqliteTimeFormat = "2006-01-02 15:04:05"

// SQLEventRepository handles event persistence to a sqlite or libsql database.
type SQLEventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLEventRepository creates a new instance of the repository.
func NewSQLEventRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLEventRepository {
	return &SQLEventRepository{
		db:     db,
		logger: logger,
	}
}

// StoreBatch saves a batch of events inside a single transaction and
// upserts the session rows they belong to.
func (r *SQLEventRepository) StoreBatch(ctx context.Context, batch []events.AnalyticsEvent) error {
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	r.logger.Database().Debug("Executing event batch insert", "count", len(batch))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event batch transaction: %w", err)
	}
	defer tx.Rollback()

	const eventQuery = `
		INSERT INTO events (id, session_id, user_id, property, source_property, created_at, url, referrer, category, action, target, value, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	const sessionQuery = `
		INSERT INTO sessions (id, property, user_id, source_property, first_seen, last_seen, event_count)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			last_seen = excluded.last_seen,
			user_id = COALESCE(excluded.user_id, sessions.user_id),
			event_count = sessions.event_count + 1`

	eventStmt, err := tx.PrepareContext(ctx, eventQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer eventStmt.Close()

	sessionStmt, err := tx.PrepareContext(ctx, sessionQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare session upsert: %w", err)
	}
	defer sessionStmt.Close()

	for _, event := range batch {
		var metadata any
		if len(event.Metadata) > 0 {
			encoded, err := json.Marshal(event.Metadata)
			if err != nil {
				r.logger.Database().Error("Failed to encode event metadata",
					"error", err.Error(),
					"eventId", event.ID)
			} else {
				metadata = string(encoded)
			}
		}

		createdAt := event.Timestamp.UTC().Format(sqliteTimeFormat)

		// The session row must exist before the event references it.
		_, err = sessionStmt.ExecContext(ctx,
			event.SessionID,
			event.Property,
			nullable(event.UserID),
			nullable(event.SourceProperty),
			createdAt,
			createdAt,
		)
		if err != nil {
			r.logger.Database().Error("Session upsert failed",
				"error", err.Error(),
				"sessionId", event.SessionID)
			return fmt.Errorf("failed to upsert session %s: %w", event.SessionID, err)
		}

		_, err = eventStmt.ExecContext(ctx,
			event.ID,
			event.SessionID,
			nullable(event.UserID),
			event.Property,
			nullable(event.SourceProperty),
			createdAt,
			event.URL,
			nullable(event.Referrer),
			string(event.Category),
			event.Action,
			nullable(event.Target),
			event.Value,
			metadata,
		)
		if err != nil {
			r.logger.Database().Error("Event insert failed",
				"error", err.Error(),
				"eventId", event.ID,
				"action", event.Action)
			return fmt.Errorf("failed to store event %s: %w", event.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event batch: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Event batch insert completed",
		"count", len(batch),
		"duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "BULK_"+eventQuery, duration)
	return nil
}

// FindEventsInRange retrieves events for a property within a time range.
func (r *SQLEventRepository) FindEventsInRange(ctx context.Context, property string, startTime, endTime time.Time) ([]events.AnalyticsEvent, error) {
	const query = `
		SELECT id, session_id, user_id, property, source_property, created_at, url, referrer, category, action, target, value, metadata
		FROM events
		WHERE property = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at`

	start := time.Now()
	r.logger.Database().Debug("Loading events in range",
		"property", property,
		"startTime", startTime,
		"endTime", endTime)

	rows, err := r.db.QueryContext(ctx, query,
		property,
		startTime.UTC().Format(sqliteTimeFormat),
		endTime.UTC().Format(sqliteTimeFormat))
	if err != nil {
		r.logger.Database().Error("Failed to query events in range",
			"error", err.Error(),
			"property", property)
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var result []events.AnalyticsEvent
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan event row", "error", err.Error())
			continue
		}
		result = append(result, event)
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for events", "error", err.Error())
		return nil, err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Events loaded in range",
		"property", property,
		"count", len(result),
		"duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return result, nil
}

// CountEventsInRange summarizes event volume for a property.
func (r *SQLEventRepository) CountEventsInRange(ctx context.Context, property string, startTime, endTime time.Time) (analytics.EventCounts, error) {
	start := time.Now()
	counts := analytics.EventCounts{Property: property}

	startArg := startTime.UTC().Format(sqliteTimeFormat)
	endArg := endTime.UTC().Format(sqliteTimeFormat)

	const totalQuery = `SELECT COUNT(*) FROM events WHERE property = ? AND created_at >= ? AND created_at < ?`
	if err := r.db.QueryRowContext(ctx, totalQuery, property, startArg, endArg).Scan(&counts.Total); err != nil {
		r.logger.Database().Error("Failed to count events", "error", err.Error(), "property", property)
		return counts, fmt.Errorf("failed to count events: %w", err)
	}

	const sessionQuery = `SELECT COUNT(DISTINCT session_id) FROM events WHERE property = ? AND created_at >= ? AND created_at < ?`
	if err := r.db.QueryRowContext(ctx, sessionQuery, property, startArg, endArg).Scan(&counts.Sessions); err != nil {
		r.logger.Database().Error("Failed to count sessions", "error", err.Error(), "property", property)
		return counts, fmt.Errorf("failed to count sessions: %w", err)
	}

	const pageViewQuery = `SELECT COUNT(*) FROM events WHERE property = ? AND action = 'page_view' AND created_at >= ? AND created_at < ?`
	if err := r.db.QueryRowContext(ctx, pageViewQuery, property, startArg, endArg).Scan(&counts.PageViews); err != nil {
		r.logger.Database().Error("Failed to count page views", "error", err.Error(), "property", property)
		return counts, fmt.Errorf("failed to count page views: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Event count completed",
		"property", property,
		"total", counts.Total,
		"sessions", counts.Sessions,
		"duration", duration)
	database.CheckAndLogSlowQuery(r.logger, totalQuery, duration)
	return counts, nil
}

// TopPages returns the most viewed URLs for a property.
func (r *SQLEventRepository) TopPages(ctx context.Context, property string, startTime, endTime time.Time, limit int) ([]analytics.PageCount, error) {
	const query = `
		SELECT url, COUNT(*) AS views
		FROM events
		WHERE property = ? AND action = 'page_view' AND created_at >= ? AND created_at < ?
		GROUP BY url
		ORDER BY views DESC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query,
		property,
		startTime.UTC().Format(sqliteTimeFormat),
		endTime.UTC().Format(sqliteTimeFormat),
		limit)
	if err != nil {
		r.logger.Database().Error("Failed to query top pages", "error", err.Error(), "property", property)
		return nil, fmt.Errorf("failed to query top pages: %w", err)
	}
	defer rows.Close()

	var pages []analytics.PageCount
	for rows.Next() {
		var page analytics.PageCount
		if err := rows.Scan(&page.URL, &page.Count); err != nil {
			r.logger.Database().Error("Failed to scan top page row", "error", err.Error())
			continue
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return pages, nil
}

// CategoryBreakdown returns per-category event counts for a property.
func (r *SQLEventRepository) CategoryBreakdown(ctx context.Context, property string, startTime, endTime time.Time) ([]analytics.CategoryCount, error) {
	const query = `
		SELECT category, COUNT(*) AS total
		FROM events
		WHERE property = ? AND created_at >= ? AND created_at < ?
		GROUP BY category
		ORDER BY total DESC`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query,
		property,
		startTime.UTC().Format(sqliteTimeFormat),
		endTime.UTC().Format(sqliteTimeFormat))
	if err != nil {
		r.logger.Database().Error("Failed to query category breakdown", "error", err.Error(), "property", property)
		return nil, fmt.Errorf("failed to query category breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []analytics.CategoryCount
	for rows.Next() {
		var row analytics.CategoryCount
		if err := rows.Scan(&row.Category, &row.Count); err != nil {
			r.logger.Database().Error("Failed to scan category row", "error", err.Error())
			continue
		}
		breakdown = append(breakdown, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return breakdown, nil
}

// FindSessions returns the most recent sessions for a property.
func (r *SQLEventRepository) FindSessions(ctx context.Context, property string, limit int) ([]analytics.SessionSummary, error) {
	const query = `
		SELECT id, property, user_id, source_property, first_seen, last_seen, event_count
		FROM sessions
		WHERE property = ?
		ORDER BY last_seen DESC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, property, limit)
	if err != nil {
		r.logger.Database().Error("Failed to query sessions", "error", err.Error(), "property", property)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []analytics.SessionSummary
	for rows.Next() {
		var session analytics.SessionSummary
		var userID, sourceProperty sql.NullString
		var firstSeenStr, lastSeenStr string

		err := rows.Scan(&session.ID, &session.Property, &userID, &sourceProperty, &firstSeenStr, &lastSeenStr, &session.EventCount)
		if err != nil {
			r.logger.Database().Error("Failed to scan session row", "error", err.Error())
			continue
		}

		session.UserID = userID.String
		session.SourceProperty = sourceProperty.String
		if session.FirstSeen, err = r.parseTimestamp(firstSeenStr); err != nil {
			r.logger.Database().Error("Failed to parse session timestamp", "error", err.Error(), "timestamp", firstSeenStr)
			continue
		}
		if session.LastSeen, err = r.parseTimestamp(lastSeenStr); err != nil {
			r.logger.Database().Error("Failed to parse session timestamp", "error", err.Error(), "timestamp", lastSeenStr)
			continue
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return sessions, nil
}

// scanEvent maps one row of the events table back to the wire model.
func (r *SQLEventRepository) scanEvent(rows *sql.Rows) (events.AnalyticsEvent, error) {
	var event events.AnalyticsEvent
	var userID, sourceProperty, referrer, target, metadataStr sql.NullString
	var value sql.NullFloat64
	var createdAtStr, category string

	err := rows.Scan(
		&event.ID,
		&event.SessionID,
		&userID,
		&event.Property,
		&sourceProperty,
		&createdAtStr,
		&event.URL,
		&referrer,
		&category,
		&event.Action,
		&target,
		&value,
		&metadataStr,
	)
	if err != nil {
		return event, err
	}

	event.UserID = userID.String
	event.SourceProperty = sourceProperty.String
	event.Referrer = referrer.String
	event.Target = target.String
	event.Category = events.Category(category)
	if value.Valid {
		v := value.Float64
		event.Value = &v
	}
	if metadataStr.Valid && metadataStr.String != "" {
		if err := json.Unmarshal([]byte(metadataStr.String), &event.Metadata); err != nil {
			r.logger.Database().Error("Failed to decode event metadata",
				"error", err.Error(),
				"eventId", event.ID)
		}
	}

	event.Timestamp, err = r.parseTimestamp(createdAtStr)
	if err != nil {
		return event, err
	}
	return event, nil
}

// parseTimestamp handles multiple timestamp formats
func (r *SQLEventRepository) parseTimestamp(timestampStr string) (time.Time, error) {
	// Try RFC3339 first
	if t, err := time.Parse(time.RFC3339, timestampStr); err == nil {
		return t, nil
	}

	// Try SQLite format
	if t, err := time.Parse(sqliteTimeFormat, timestampStr); err == nil {
		return t, nil
	}

	// Try ISO format with milliseconds
	if t, err := time.Parse("2006-01-02T15:04:05.000Z", timestampStr); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp format: %s", timestampStr)
}

// nullable maps empty strings to NULL on the way into the database.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
