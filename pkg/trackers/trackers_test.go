package trackers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/client"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// captureSender records every delivered event for assertions.
type captureSender struct {
	mu     sync.Mutex
	events []events.AnalyticsEvent
}

func (s *captureSender) Send(_ context.Context, _ string, batch events.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch.Events...)
	return nil
}

func (s *captureSender) byAction(action string) []events.AnalyticsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.AnalyticsEvent
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// newCaptureClient builds a client that never flushes on its own; tests
// call Flush and then inspect the sender.
func newCaptureClient(t *testing.T) (*client.Client, *captureSender) {
	t.Helper()
	sender := &captureSender{}
	c, err := client.New(client.Config{
		Property:     "acme-main",
		Sender:       sender,
		BeaconSender: sender,
		BatchSize:    1000,
		BatchTimeout: time.Hour,
	})
	require.NoError(t, err)
	return c, sender
}
