package trackers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeMarksReportedOnce(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewTimeTracker(c, TimeTrackerOptions{Interval: time.Hour})
	defer tracker.Stop()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tracker.mu.Lock()
	tracker.now = func() time.Time { return now }
	tracker.lastResume = now
	tracker.mu.Unlock()

	now = now.Add(35 * time.Second)
	tracker.tick()
	tracker.tick() // same elapsed time, no duplicate

	c.Flush()
	reports := sender.byAction("time_on_page")
	require.Len(t, reports, 1)
	require.NotNil(t, reports[0].Value)
	assert.Equal(t, 30.0, *reports[0].Value)

	now = now.Add(100 * time.Second) // 135s total: crosses 60 and 120
	tracker.tick()

	c.Flush()
	assert.Len(t, sender.byAction("time_on_page"), 3)
}

func TestTimePausesWhileHidden(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewTimeTracker(c, TimeTrackerOptions{Interval: time.Hour, PauseWhenHidden: true})
	defer tracker.Stop()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tracker.mu.Lock()
	tracker.now = func() time.Time { return now }
	tracker.lastResume = now
	tracker.mu.Unlock()

	now = now.Add(10 * time.Second)
	tracker.Hide()
	now = now.Add(10 * time.Minute) // hidden time must not count
	tracker.Show()
	now = now.Add(25 * time.Second)
	tracker.tick()

	c.Flush()
	reports := sender.byAction("time_on_page")
	require.Len(t, reports, 1, "35 active seconds crosses only the 30s mark")
	assert.Equal(t, 30.0, *reports[0].Value)
}

func TestTimeFinalReading(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewTimeTracker(c, TimeTrackerOptions{Interval: time.Hour})
	defer tracker.Stop()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tracker.mu.Lock()
	tracker.now = func() time.Time { return now }
	tracker.lastResume = now
	tracker.mu.Unlock()

	now = now.Add(42 * time.Second)
	tracker.Final()

	c.Flush()
	reports := sender.byAction("time_on_page")
	require.Len(t, reports, 1)
	assert.Equal(t, true, reports[0].Metadata["final"])
	assert.Equal(t, 42.0, *reports[0].Value)
}
