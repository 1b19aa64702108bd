// Package events defines the analytics event model shared by the
// client SDK and the ingestion service.
package events

import "time"

// Category classifies what kind of observation an event records.
type Category string

const (
	CategoryNavigation  Category = "navigation"
	CategoryInteraction Category = "interaction"
	CategorySearch      Category = "search"
	CategoryContent     Category = "content"
	CategoryConversion  Category = "conversion"
	CategoryError       Category = "error"
	CategoryPerformance Category = "performance"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryNavigation, CategoryInteraction, CategorySearch,
		CategoryContent, CategoryConversion, CategoryError, CategoryPerformance:
		return true
	}
	return false
}

// AnalyticsEvent is a single observation. An event belongs to exactly one
// session and one property at creation time and is never mutated after
// construction.
type AnalyticsEvent struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"sessionId"`
	UserID         string         `json:"userId,omitempty"`
	Property       string         `json:"property"`
	SourceProperty string         `json:"sourceProperty,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	URL            string         `json:"url,omitempty"`
	Referrer       string         `json:"referrer,omitempty"`
	Category       Category       `json:"category"`
	Action         string         `json:"action"`
	Target         string         `json:"target,omitempty"`
	Value          *float64       `json:"value,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Batch is a transient grouping of queued events plus a send timestamp,
// constructed at flush time and discarded after transmission is attempted.
type Batch struct {
	Events []AnalyticsEvent `json:"events"`
	SentAt time.Time        `json:"sentAt"`
}

// IngestResponse is the ingestion endpoint's reply shape.
type IngestResponse struct {
	Success  bool     `json:"success"`
	Received int      `json:"received"`
	Errors   []string `json:"errors,omitempty"`
}

// Timestamp format used on the wire.
const TimeFormat = time.RFC3339
