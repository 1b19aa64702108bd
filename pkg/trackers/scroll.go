// Package trackers provides composable behavioral detectors that observe
// host-supplied page signals and feed the event client. Every tracker is
// safe to construct with a nil client and exposes an idempotent Stop.
package trackers

import (
	"sync"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/client"
)

// DefaultScrollThresholds are the depth percentages reported by default.
var DefaultScrollThresholds = []int{25, 50, 75, 100}

// ScrollTracker reports scroll depth thresholds, each at most once per
// page life regardless of scroll oscillation.
type ScrollTracker struct {
	client     *client.Client
	thresholds []int

	mu       sync.Mutex
	reported map[int]bool
	stopped  bool
}

// NewScrollTracker builds a scroll tracker. With no thresholds the
// defaults (25/50/75/100) apply.
func NewScrollTracker(c *client.Client, thresholds ...int) *ScrollTracker {
	if len(thresholds) == 0 {
		thresholds = DefaultScrollThresholds
	}
	return &ScrollTracker{
		client:     c,
		thresholds: thresholds,
		reported:   make(map[int]bool),
	}
}

// Observe feeds one scroll sample: the scroll offset, the viewport
// height, and the total document height, all in pixels.
func (t *ScrollTracker) Observe(scrollTop, viewportHeight, docHeight float64) {
	depth := scrollDepthPercent(scrollTop, viewportHeight, docHeight)

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	var crossed []int
	for _, threshold := range t.thresholds {
		if depth >= float64(threshold) && !t.reported[threshold] {
			t.reported[threshold] = true
			crossed = append(crossed, threshold)
		}
	}
	t.mu.Unlock()

	for _, threshold := range crossed {
		t.client.ScrollDepth(threshold)
	}
}

// Stop tears the tracker down. Safe to call more than once.
func (t *ScrollTracker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// scrollDepthPercent computes how far down the scrollable height the
// viewport bottom has reached. A document no taller than the viewport
// counts as fully scrolled.
func scrollDepthPercent(scrollTop, viewportHeight, docHeight float64) float64 {
	scrollable := docHeight - viewportHeight
	if scrollable <= 0 {
		return 100
	}
	depth := scrollTop / scrollable * 100
	if depth > 100 {
		depth = 100
	}
	if depth < 0 {
		depth = 0
	}
	return depth
}
