package trackers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollThresholdsReportedOnce(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewScrollTracker(c)
	defer tracker.Stop()

	// Page is 4000px tall with a 1000px viewport: 3000px scrollable.
	tracker.Observe(0, 1000, 4000)     // 0%
	tracker.Observe(1600, 1000, 4000)  // ~53%
	tracker.Observe(300, 1000, 4000)   // back up to 10%
	tracker.Observe(1700, 1000, 4000)  // past 50% again
	tracker.Observe(3000, 1000, 4000)  // 100%

	c.Flush()
	reported := sender.byAction("scroll_depth")
	require.Len(t, reported, 4)

	var values []float64
	for _, e := range reported {
		require.NotNil(t, e.Value)
		values = append(values, *e.Value)
	}
	assert.Equal(t, []float64{25, 50, 75, 100}, values,
		"oscillating past a threshold reports it exactly once")
}

func TestScrollShortDocumentCountsAsComplete(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewScrollTracker(c)
	defer tracker.Stop()

	tracker.Observe(0, 1000, 800)

	c.Flush()
	assert.Len(t, sender.byAction("scroll_depth"), 4,
		"a document shorter than the viewport reports every threshold")
}

func TestScrollCustomThresholds(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewScrollTracker(c, 90)
	defer tracker.Stop()

	tracker.Observe(1000, 1000, 3000) // 50%
	c.Flush()
	assert.Empty(t, sender.byAction("scroll_depth"))

	tracker.Observe(1900, 1000, 3000) // 95%
	c.Flush()
	assert.Len(t, sender.byAction("scroll_depth"), 1)
}

func TestScrollStoppedTrackerIsInert(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewScrollTracker(c)

	tracker.Stop()
	tracker.Stop() // idempotent
	tracker.Observe(3000, 1000, 4000)

	c.Flush()
	assert.Empty(t, sender.byAction("scroll_depth"))
}
