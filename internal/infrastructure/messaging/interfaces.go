// Package messaging provides the real-time fan-out of ingested events
// to dashboard subscribers.
package messaging

import "github.com/DriftwoodCreative/pulsetrack-go/pkg/events"

// Broadcaster defines the interface for streaming ingested events to
// live subscribers.
type Broadcaster interface {
	Register(client *LiveClient)
	Unregister(client *LiveClient)
	BroadcastEvents(batch []events.AnalyticsEvent)
	SubscriberCount(property string) int
}
