package trackers

import (
	"math"
	"sync"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/client"
)

// Rage click defaults.
const (
	DefaultRageWindow    = 500 * time.Millisecond
	DefaultRageClicks    = 3
	DefaultRageDistance  = 50.0
)

// RageClickOptions configures a RageClickTracker.
type RageClickOptions struct {
	Window    time.Duration // sliding window, default 500ms
	Clicks    int           // clicks required, default 3
	Distance  float64       // pixel radius, default 50
}

// RageClickTracker maintains a sliding window of recent click
// coordinates and reports a burst of rapid clicks in one area as a
// frustration signal. The window is cleared after a report so the same
// burst never double-reports.
type RageClickTracker struct {
	client   *client.Client
	window   time.Duration
	clicks   int
	distance float64
	now      func() time.Time

	mu      sync.Mutex
	recent  []clickSample
	stopped bool
}

type clickSample struct {
	x, y float64
	at   time.Time
}

// NewRageClickTracker builds a rage-click tracker with the given options;
// zero values fall back to the defaults.
func NewRageClickTracker(c *client.Client, opts RageClickOptions) *RageClickTracker {
	if opts.Window <= 0 {
		opts.Window = DefaultRageWindow
	}
	if opts.Clicks <= 0 {
		opts.Clicks = DefaultRageClicks
	}
	if opts.Distance <= 0 {
		opts.Distance = DefaultRageDistance
	}
	return &RageClickTracker{
		client:   c,
		window:   opts.Window,
		clicks:   opts.Clicks,
		distance: opts.Distance,
		now:      time.Now,
	}
}

// Click feeds one click at the given page coordinates. target is a
// best-effort identifier of the clicked element.
func (t *RageClickTracker) Click(x, y float64, target string) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}

	now := t.now()
	t.recent = append(t.recent, clickSample{x: x, y: y, at: now})

	// Expire clicks that fell out of the window.
	cutoff := now.Add(-t.window)
	kept := t.recent[:0]
	for _, s := range t.recent {
		if s.at.After(cutoff) {
			kept = append(kept, s)
		}
	}
	t.recent = kept

	// Count window clicks near the newest one.
	count := 0
	for _, s := range t.recent {
		if distance(s.x, s.y, x, y) <= t.distance {
			count++
		}
	}

	if count < t.clicks {
		t.mu.Unlock()
		return
	}
	t.recent = nil
	t.mu.Unlock()

	t.client.RageClick(target, count)
}

// Stop tears the tracker down. Safe to call more than once.
func (t *RageClickTracker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.recent = nil
	t.mu.Unlock()
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
