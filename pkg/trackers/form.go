package trackers

import (
	"sync"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/client"
)

// FormTracker follows the form lifecycle: first focus emits form_start,
// a submit emits form_submit and clears the tracked state, and a page
// unload with unsubmitted state emits form_abandon with the last focused
// field and elapsed time.
type FormTracker struct {
	client *client.Client
	now    func() time.Time

	mu      sync.Mutex
	forms   map[string]*formState
	stopped bool
}

type formState struct {
	startedAt time.Time
	lastField string
}

// NewFormTracker builds a form tracker.
func NewFormTracker(c *client.Client) *FormTracker {
	return &FormTracker{
		client: c,
		now:    time.Now,
		forms:  make(map[string]*formState),
	}
}

// FocusField feeds a focus on a field within the given form. The first
// focus inside a form starts tracking it.
func (t *FormTracker) FocusField(formID, field string) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	state, tracked := t.forms[formID]
	if !tracked {
		state = &formState{startedAt: t.now()}
		t.forms[formID] = state
	}
	state.lastField = field
	t.mu.Unlock()

	if !tracked {
		t.client.FormStart(formID)
	}
}

// Submit feeds a form submission and clears its tracked state.
func (t *FormTracker) Submit(formID string) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	_, tracked := t.forms[formID]
	delete(t.forms, formID)
	t.mu.Unlock()

	if tracked {
		t.client.FormSubmit(formID)
	}
}

// PageHide reports every form with unsubmitted tracked state as
// abandoned and clears the tracker.
func (t *FormTracker) PageHide() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	abandoned := t.forms
	t.forms = make(map[string]*formState)
	now := t.now()
	t.mu.Unlock()

	for formID, state := range abandoned {
		t.client.FormAbandon(formID, state.lastField, now.Sub(state.startedAt).Seconds())
	}
}

// Stop tears the tracker down. Safe to call more than once.
func (t *FormTracker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.forms = make(map[string]*formState)
	t.mu.Unlock()
}
