package messaging

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

func newRunningBroadcaster(t *testing.T) *LiveBroadcaster {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)

	b := NewLiveBroadcaster(logger)
	go b.Run()
	return b
}

func waitForSubscribers(t *testing.T, b *LiveBroadcaster, property string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return b.SubscriberCount(property) == want
	}, time.Second, 5*time.Millisecond)
}

func liveEvent(property string) events.AnalyticsEvent {
	return events.AnalyticsEvent{
		ID:        "01EV",
		SessionID: "sess-1",
		Property:  property,
		Category:  events.CategoryNavigation,
		Action:    "page_view",
		Timestamp: time.Now().UTC(),
	}
}

func TestBroadcastReachesPropertySubscribers(t *testing.T) {
	b := newRunningBroadcaster(t)

	acme := &LiveClient{Property: "acme-main", Send: make(chan []byte, 8)}
	other := &LiveClient{Property: "other-site", Send: make(chan []byte, 8)}
	b.Register(acme)
	b.Register(other)
	waitForSubscribers(t, b, "acme-main", 1)
	waitForSubscribers(t, b, "other-site", 1)

	b.BroadcastEvents([]events.AnalyticsEvent{liveEvent("acme-main")})

	select {
	case msg := <-acme.Send:
		var got events.AnalyticsEvent
		require.NoError(t, json.Unmarshal(msg, &got))
		assert.Equal(t, "acme-main", got.Property)
		assert.Equal(t, "page_view", got.Action)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}

	select {
	case <-other.Send:
		t.Fatal("events must not leak across properties")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWildcardSubscriberSeesEveryProperty(t *testing.T) {
	b := newRunningBroadcaster(t)

	all := &LiveClient{Property: PropertyAll, Send: make(chan []byte, 8)}
	b.Register(all)
	waitForSubscribers(t, b, PropertyAll, 1)

	b.BroadcastEvents([]events.AnalyticsEvent{liveEvent("acme-main"), liveEvent("other-site")})

	for i := 0; i < 2; i++ {
		select {
		case <-all.Send:
		case <-time.After(time.Second):
			t.Fatalf("wildcard subscriber only saw %d of 2 events", i)
		}
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	b := newRunningBroadcaster(t)

	client := &LiveClient{Property: "acme-main", Send: make(chan []byte, 8)}
	b.Register(client)
	waitForSubscribers(t, b, "acme-main", 1)

	b.Unregister(client)
	waitForSubscribers(t, b, "acme-main", 0)

	select {
	case _, open := <-client.Send:
		assert.False(t, open, "send channel closes on unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestSlowSubscriberDoesNotBlockBroadcast(t *testing.T) {
	b := newRunningBroadcaster(t)

	// A full buffer simulates a stalled reader.
	slow := &LiveClient{Property: "acme-main", Send: make(chan []byte)}
	b.Register(slow)
	waitForSubscribers(t, b, "acme-main", 1)

	done := make(chan struct{})
	go func() {
		b.BroadcastEvents([]events.AnalyticsEvent{liveEvent("acme-main")})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
}
