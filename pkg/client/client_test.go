package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

type fakeSender struct {
	mu      sync.Mutex
	batches []events.Batch
	err     error
}

func (f *fakeSender) Send(_ context.Context, _ string, batch events.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeSender) sent() []events.Batch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Batch(nil), f.batches...)
}

type recordingSink struct {
	mu      sync.Mutex
	dropped []int
	errs    []error
	ops     []string
}

func (r *recordingSink) DroppedBatch(count int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, count)
	r.errs = append(r.errs, err)
}

func (r *recordingSink) ClientError(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func (r *recordingSink) clientErrors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func newTestClient(t *testing.T, cfg Config) (*Client, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	if cfg.Property == "" {
		cfg.Property = "acme-main"
	}
	if cfg.Sender == nil {
		cfg.Sender = sender
	}
	if cfg.BeaconSender == nil {
		cfg.BeaconSender = sender
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Hour // keep the timer out of the way
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c, sender
}

func TestNewRequiresProperty(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingProperty)
}

func TestTrackHonorsDNTUnconditionally(t *testing.T) {
	env := &StaticEnvironment{DNT: true}
	c, sender := newTestClient(t, Config{Environment: env, RespectDNT: false})

	for i := 0; i < 25; i++ {
		c.Track(events.CategoryInteraction, "button_click", nil)
	}
	c.Flush()

	assert.Zero(t, c.QueueLen())
	assert.Empty(t, sender.sent())
}

func TestTrackHonorsUserOptOut(t *testing.T) {
	c, sender := newTestClient(t, Config{UserOptedOut: true})

	c.Track(events.CategoryInteraction, "button_click", nil)
	assert.Zero(t, c.QueueLen())

	c.SetUserOptedOut(false)
	c.Track(events.CategoryInteraction, "button_click", nil)
	assert.Equal(t, 1, c.QueueLen())

	c.Flush()
	require.Len(t, sender.sent(), 1)
}

func TestBatchSizeTriggersSynchronousFlush(t *testing.T) {
	c, sender := newTestClient(t, Config{BatchSize: 10})

	for i := 0; i < 9; i++ {
		c.ScrollDepth(50)
	}
	assert.Empty(t, sender.sent(), "no flush before the batch size is reached")
	assert.Equal(t, 9, c.QueueLen())

	c.PageView()

	batches := sender.sent()
	require.Len(t, batches, 1, "tenth event must flush before Track returns")
	require.Len(t, batches[0].Events, 10)
	assert.Zero(t, c.QueueLen())

	// FIFO enqueue order within the batch.
	for i := 0; i < 9; i++ {
		assert.Equal(t, "scroll_depth", batches[0].Events[i].Action)
	}
	assert.Equal(t, "page_view", batches[0].Events[9].Action)
}

func TestFlushTimerDelivers(t *testing.T) {
	sender := &fakeSender{}
	c, _ := newTestClient(t, Config{Sender: sender, BeaconSender: sender, BatchTimeout: 20 * time.Millisecond})

	c.PageView()

	assert.Eventually(t, func() bool {
		return len(sender.sent()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, c.QueueLen())
}

func TestDeliveryFailureDropsBatch(t *testing.T) {
	sink := &recordingSink{}
	failing := &fakeSender{err: errors.New("connection refused")}
	c, _ := newTestClient(t, Config{Sender: failing, BeaconSender: failing, Diagnostics: sink})

	c.PageView()
	c.Flush()

	assert.Zero(t, c.QueueLen(), "failed batches are not re-enqueued")
	require.Len(t, sink.dropped, 1)
	assert.Equal(t, 1, sink.dropped[0])

	// A later flush with nothing queued reports nothing.
	c.Flush()
	assert.Len(t, sink.dropped, 1)
}

func TestPageHiddenEmitsSessionEndOnce(t *testing.T) {
	normal := &fakeSender{}
	beacon := &fakeSender{}
	c, _ := newTestClient(t, Config{Sender: normal, BeaconSender: beacon})

	c.PageView()
	c.PageHidden()
	c.PageVisible()
	c.PageHidden()

	var sessionEnds int
	for _, b := range beacon.sent() {
		for _, e := range b.Events {
			if e.Action == "session_end" {
				sessionEnds++
				require.NotNil(t, e.Value)
			}
		}
	}
	assert.Equal(t, 1, sessionEnds, "session_end is guarded by a sent-flag")
	assert.Empty(t, normal.sent(), "hidden flushes use the beacon transport")
}

func TestPropertyTransitionEmittedOnConstruction(t *testing.T) {
	sender := &fakeSender{}
	env := &StaticEnvironment{URL: "https://acme-main.com/pricing", Refer: "https://shop.acme.com/checkout"}
	c, err := New(Config{
		Property:     "acme-main",
		Environment:  env,
		Sender:       sender,
		BeaconSender: sender,
		BatchTimeout: time.Hour,
		Properties: map[string]string{
			"acme-main.com": "acme-main",
			"shop.acme.com": "acme-shop",
		},
	})
	require.NoError(t, err)

	require.Equal(t, 1, c.QueueLen())
	c.Flush()
	batches := sender.sent()
	require.Len(t, batches, 1)
	evt := batches[0].Events[0]
	assert.Equal(t, "property_transition", evt.Action)
	assert.Equal(t, "acme-shop", evt.SourceProperty)
	assert.Equal(t, "acme-shop", evt.Metadata["from"])
	assert.Equal(t, "acme-main", evt.Metadata["to"])
}

func TestEventConstruction(t *testing.T) {
	env := &StaticEnvironment{URL: "https://acme-main.com/blog", Refer: "https://www.google.com/"}
	c, sender := newTestClient(t, Config{Environment: env, UserID: "lead-42"})

	c.Track(events.CategorySearch, "search", &TrackOptions{Target: "pricing", Value: Float(7)})
	c.Flush()

	batches := sender.sent()
	require.Len(t, batches, 1)
	evt := batches[0].Events[0]

	assert.NotEmpty(t, evt.ID)
	assert.NotEmpty(t, evt.SessionID)
	assert.Equal(t, "acme-main", evt.Property)
	assert.Equal(t, "lead-42", evt.UserID)
	assert.Equal(t, events.CategorySearch, evt.Category)
	assert.Equal(t, "https://acme-main.com/blog", evt.URL)
	assert.Equal(t, "https://www.google.com/", evt.Referrer)
	require.NotNil(t, evt.Value)
	assert.Equal(t, 7.0, *evt.Value)

	assert.False(t, evt.Timestamp.IsZero())
	assert.Equal(t, time.UTC, evt.Timestamp.Location())
}

func TestCloseDisablesTracking(t *testing.T) {
	c, sender := newTestClient(t, Config{})

	c.PageView()
	c.Close()
	require.Len(t, sender.sent(), 1, "Close flushes the queue")

	c.PageView()
	assert.Zero(t, c.QueueLen())
}

func TestConcurrentTrackersFanIn(t *testing.T) {
	c, sender := newTestClient(t, Config{BatchSize: 1000})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Track(events.CategoryInteraction, fmt.Sprintf("action_%d", g), nil)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 400, c.QueueLen())
	c.Flush()
	batches := sender.sent()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Events, 400)
}
