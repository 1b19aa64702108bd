package trackers

import (
	"sync"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/client"
)

// DefaultTimeMarks are the active-second intervals reported by default.
var DefaultTimeMarks = []int{30, 60, 120, 300}

// TimeTrackerOptions configures a TimeTracker.
type TimeTrackerOptions struct {
	// Marks are the active-second intervals to report. Defaults to
	// 30/60/120/300.
	Marks []int
	// PauseWhenHidden stops the active clock while the tab is hidden.
	PauseWhenHidden bool
	// Interval is the internal sampling tick. Defaults to one second.
	Interval time.Duration
}

// TimeTracker accumulates active time on the page and reports it at
// configured marks plus a final reading on page hide.
type TimeTracker struct {
	client          *client.Client
	marks           []int
	pauseWhenHidden bool
	now             func() time.Time

	mu         sync.Mutex
	reported   map[int]bool
	accumulated time.Duration
	lastResume time.Time
	hidden     bool
	stopped    bool

	stopOnce sync.Once
	stop     chan struct{}
}

// NewTimeTracker builds and starts a time tracker. The internal sampler
// runs until Stop is called.
func NewTimeTracker(c *client.Client, opts TimeTrackerOptions) *TimeTracker {
	if len(opts.Marks) == 0 {
		opts.Marks = DefaultTimeMarks
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	t := &TimeTracker{
		client:          c,
		marks:           opts.Marks,
		pauseWhenHidden: opts.PauseWhenHidden,
		now:             time.Now,
		reported:        make(map[int]bool),
		stop:            make(chan struct{}),
	}
	t.lastResume = t.now()

	go t.run(opts.Interval)
	return t
}

func (t *TimeTracker) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.tick()
		case <-t.stop:
			return
		}
	}
}

// tick reports any marks the active clock has crossed.
func (t *TimeTracker) tick() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	seconds := int(t.activeLocked().Seconds())
	var crossed []int
	for _, mark := range t.marks {
		if seconds >= mark && !t.reported[mark] {
			t.reported[mark] = true
			crossed = append(crossed, mark)
		}
	}
	t.mu.Unlock()

	for _, mark := range crossed {
		t.client.TimeOnPage(mark, false)
	}
}

// activeLocked returns accumulated active time. Caller holds t.mu.
func (t *TimeTracker) activeLocked() time.Duration {
	active := t.accumulated
	if !t.hidden {
		active += t.now().Sub(t.lastResume)
	}
	return active
}

// Hide pauses the active clock when configured to do so.
func (t *TimeTracker) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hidden || !t.pauseWhenHidden {
		return
	}
	t.accumulated += t.now().Sub(t.lastResume)
	t.hidden = true
}

// Show resumes the active clock after a Hide.
func (t *TimeTracker) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hidden {
		return
	}
	t.hidden = false
	t.lastResume = t.now()
}

// Final reports the current active reading as the page-hide measurement.
func (t *TimeTracker) Final() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	seconds := int(t.activeLocked().Seconds())
	t.mu.Unlock()

	t.client.TimeOnPage(seconds, true)
}

// Stop tears the tracker down. Safe to call more than once.
func (t *TimeTracker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}
