// Package client provides the PulseTrack event client: typed tracking
// calls, privacy opt-outs, batching, and best-effort delivery to the
// ingestion endpoint. Public methods never panic into caller code;
// absent storage, network, or host environment degrade to no-ops.
package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// ErrMissingProperty is returned by New when no property id is given.
var ErrMissingProperty = errors.New("client: property identifier is required")

// Environment describes the host context the client runs in: the
// Do-Not-Track signal, the current page URL, and the document referrer.
// A nil Environment behaves as an empty page with no DNT signal.
type Environment interface {
	DoNotTrack() bool
	PageURL() string
	Referrer() string
}

// StaticEnvironment is a fixed-value Environment for hosts that know
// their context up front.
type StaticEnvironment struct {
	DNT     bool
	URL     string
	Refer   string
}

func (e *StaticEnvironment) DoNotTrack() bool { return e.DNT }
func (e *StaticEnvironment) PageURL() string  { return e.URL }
func (e *StaticEnvironment) Referrer() string { return e.Refer }

// Config carries the recognized client options.
type Config struct {
	// Property is the site identifier stamped on every event. Required.
	Property string
	// Endpoint receives batches; defaults to /api/analytics/events.
	Endpoint string
	// BatchSize triggers an immediate flush when the queue reaches it.
	// Defaults to 10.
	BatchSize int
	// BatchTimeout arms a flush timer on first enqueue. Defaults to 5s.
	BatchTimeout time.Duration
	// RespectDNT is kept for configuration compatibility. The Do-Not-Track
	// signal is honored regardless of its value.
	RespectDNT bool
	// Debug enables logging of dropped batches and swallowed errors.
	Debug bool
	// UserOptedOut starts the client in the opted-out state.
	UserOptedOut bool
	// UserID is an optional stable user identifier.
	UserID string

	// Properties maps hostnames to property identifiers for
	// cross-property navigation detection.
	Properties map[string]string
	// SessionTimeout overrides the 30 minute session inactivity window.
	SessionTimeout time.Duration

	// Storage persists the session record. Defaults to in-memory.
	Storage Storage
	// Environment supplies DNT, URL and referrer. May be nil.
	Environment Environment
	// Sender is the normal-path transport. Defaults to an HTTPSender.
	Sender Sender
	// BeaconSender is the page-hide transport. Defaults to a BeaconSender.
	BeaconSender Sender
	// Diagnostics receives swallowed errors. Defaults to NopSink.
	Diagnostics DiagnosticSink
	// Logger is used for debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// TrackOptions carries the optional fields of a tracking call.
type TrackOptions struct {
	Target   string
	Value    *float64
	Metadata map[string]any
}

// Float is a convenience for TrackOptions.Value.
func Float(v float64) *float64 { return &v }

// Client queues events, batches them, and flushes via the configured
// transport. It is safe for concurrent use by multiple trackers.
type Client struct {
	cfg     Config
	session *SessionManager
	env     Environment
	sender  Sender
	beacon  Sender
	sink    DiagnosticSink
	logger  *slog.Logger
	now     func() time.Time

	mu             sync.Mutex
	queue          []events.AnalyticsEvent
	timer          *time.Timer
	hidden         bool
	sessionEndSent bool
	optedOut       bool
	userID         string
	closed         bool
}

// New creates a dependency-injected client instance. The caller owns its
// lifecycle; call Close when the host application shuts down.
func New(cfg Config) (*Client, error) {
	if cfg.Property == "" {
		return nil, ErrMissingProperty
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = config.DefaultEndpoint
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultBatchSize
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = config.DefaultBatchTimeout
	}
	if cfg.Storage == nil {
		cfg.Storage = NewMemoryStorage()
	}
	if cfg.Sender == nil {
		cfg.Sender = NewHTTPSender(nil)
	}
	if cfg.BeaconSender == nil {
		cfg.BeaconSender = NewBeaconSender(nil)
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = NopSink{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var referrer string
	if cfg.Environment != nil {
		referrer = cfg.Environment.Referrer()
	}

	c := &Client{
		cfg:      cfg,
		session:  NewSessionManager(cfg.Property, referrer, cfg.Properties, cfg.Storage, cfg.SessionTimeout),
		env:      cfg.Environment,
		sender:   cfg.Sender,
		beacon:   cfg.BeaconSender,
		sink:     cfg.Diagnostics,
		logger:   cfg.Logger,
		now:      time.Now,
		optedOut: cfg.UserOptedOut,
		userID:   cfg.UserID,
	}
	c.session.setSink(cfg.Diagnostics)

	if source := c.session.SourceProperty(); source != "" {
		c.Track(events.CategoryNavigation, "property_transition", &TrackOptions{
			Metadata: map[string]any{"from": source, "to": cfg.Property},
		})
	}
	return c, nil
}

// Session exposes the client's session manager.
func (c *Client) Session() *SessionManager {
	return c.session
}

// SetUserOptedOut updates the user-level opt-out flag at runtime.
func (c *Client) SetUserOptedOut(optedOut bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.optedOut = optedOut
}

// SetUserID updates the user identifier stamped on subsequent events.
func (c *Client) SetUserID(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

// disabled reports whether tracking calls must be silent no-ops. The
// Do-Not-Track signal is read fresh on every call.
func (c *Client) disabled() bool {
	if c.env != nil && c.env.DoNotTrack() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.optedOut || c.closed
}

// Track constructs an event and enqueues it. Disabled calls are silent
// no-ops. When the queue reaches the batch size the flush happens
// synchronously before Track returns.
func (c *Client) Track(category events.Category, action string, opts *TrackOptions) {
	if c == nil || c.disabled() {
		return
	}

	evt := events.AnalyticsEvent{
		ID:             ulid.Make().String(),
		SessionID:      c.session.SessionID(),
		Property:       c.cfg.Property,
		SourceProperty: c.session.SourceProperty(),
		Timestamp:      c.now().UTC(),
		Category:       category,
		Action:         action,
	}
	c.mu.Lock()
	evt.UserID = c.userID
	c.mu.Unlock()
	if c.env != nil {
		evt.URL = c.env.PageURL()
		evt.Referrer = c.env.Referrer()
	}
	if opts != nil {
		evt.Target = opts.Target
		evt.Value = opts.Value
		if len(opts.Metadata) > 0 {
			evt.Metadata = make(map[string]any, len(opts.Metadata))
			for k, v := range opts.Metadata {
				evt.Metadata[k] = v
			}
		}
	}

	c.enqueue(evt)
}

func (c *Client) enqueue(evt events.AnalyticsEvent) {
	c.mu.Lock()
	c.queue = append(c.queue, evt)

	if len(c.queue) >= c.cfg.BatchSize {
		batch := c.swapQueueLocked()
		c.mu.Unlock()
		c.deliver(batch)
		return
	}

	if c.timer == nil {
		c.timer = time.AfterFunc(c.cfg.BatchTimeout, c.Flush)
	}
	c.mu.Unlock()
}

// swapQueueLocked atomically takes the queue and cancels any pending
// timer. Caller holds c.mu.
func (c *Client) swapQueueLocked() []events.AnalyticsEvent {
	batch := c.queue
	c.queue = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	return batch
}

// Flush delivers everything currently queued. On delivery failure the
// batch is dropped: no retry, no re-enqueue.
func (c *Client) Flush() {
	if c == nil {
		return
	}
	c.mu.Lock()
	batch := c.swapQueueLocked()
	c.mu.Unlock()
	c.deliver(batch)
}

func (c *Client) deliver(batch []events.AnalyticsEvent) {
	if len(batch) == 0 {
		return
	}

	payload := events.Batch{
		Events: batch,
		SentAt: c.now().UTC(),
	}

	c.mu.Lock()
	hidden := c.hidden
	c.mu.Unlock()

	sender := c.sender
	if hidden {
		sender = c.beacon
	}

	if err := sender.Send(context.Background(), c.cfg.Endpoint, payload); err != nil {
		c.sink.DroppedBatch(len(batch), err)
		if c.cfg.Debug {
			c.logger.Debug("batch dropped", "count", len(batch), "error", err)
		}
	}
}

// PageHidden flushes queued events over the beacon transport and emits a
// session_end event (value = elapsed session seconds) the first time the
// page becomes hidden.
func (c *Client) PageHidden() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.hidden = true
	sendEnd := !c.sessionEndSent
	c.sessionEndSent = true
	c.mu.Unlock()

	if sendEnd {
		elapsed := c.now().Sub(c.session.StartedAt()).Seconds()
		c.Track(events.CategoryNavigation, "session_end", &TrackOptions{Value: Float(elapsed)})
	}
	c.Flush()
}

// PageVisible restores the normal-path transport after a PageHidden.
func (c *Client) PageVisible() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.hidden = false
	c.mu.Unlock()
}

// Close flushes outstanding events and disables the client.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.Flush()
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
}

// QueueLen reports how many events are waiting for the next flush.
func (c *Client) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}
