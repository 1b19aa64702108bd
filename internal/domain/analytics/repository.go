// Package analytics defines the interfaces for accessing analytics data.
package analytics

import (
	"context"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// EventCounts summarizes event volume for a property over a range.
type EventCounts struct {
	Property  string `json:"property"`
	Total     int    `json:"total"`
	Sessions  int    `json:"sessions"`
	PageViews int    `json:"pageViews"`
}

// PageCount is one row of the top-pages query.
type PageCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// CategoryCount is one row of the category breakdown query.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// SessionSummary describes one tracked session.
type SessionSummary struct {
	ID             string    `json:"id"`
	Property       string    `json:"property"`
	UserID         string    `json:"userId,omitempty"`
	SourceProperty string    `json:"sourceProperty,omitempty"`
	FirstSeen      time.Time `json:"firstSeen"`
	LastSeen       time.Time `json:"lastSeen"`
	EventCount     int       `json:"eventCount"`
}

// EventStore defines the contract for persisting analytics events.
type EventStore interface {
	// StoreBatch saves a batch of events in a single round trip.
	StoreBatch(ctx context.Context, batch []events.AnalyticsEvent) error
}

// EventRepository extends the store contract with the dashboard queries.
type EventRepository interface {
	EventStore

	// FindEventsInRange retrieves events for a property within a time range.
	FindEventsInRange(ctx context.Context, property string, start, end time.Time) ([]events.AnalyticsEvent, error)

	// CountEventsInRange summarizes event volume for a property.
	CountEventsInRange(ctx context.Context, property string, start, end time.Time) (EventCounts, error)

	// TopPages returns the most viewed URLs for a property.
	TopPages(ctx context.Context, property string, start, end time.Time, limit int) ([]PageCount, error)

	// CategoryBreakdown returns per-category event counts for a property.
	CategoryBreakdown(ctx context.Context, property string, start, end time.Time) ([]CategoryCount, error)

	// FindSessions returns the most recent sessions for a property.
	FindSessions(ctx context.Context, property string, limit int) ([]SessionSummary, error)
}
