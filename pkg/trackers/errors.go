package trackers

import (
	"strings"
	"sync"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/client"
)

// maxAlertLength caps reported alert text.
const maxAlertLength = 120

// Validity mirrors the relevant flags of a native validation failure.
type Validity struct {
	ValueMissing    bool
	TypeMismatch    bool
	PatternMismatch bool
}

// Kind classifies the failure as required, type, pattern or other.
func (v Validity) Kind() string {
	switch {
	case v.ValueMissing:
		return "required"
	case v.TypeMismatch:
		return "type"
	case v.PatternMismatch:
		return "pattern"
	default:
		return "other"
	}
}

// ErrorTracker reports dynamically surfaced alert/error elements and
// classifies native validation failures. Identical alert text is
// reported once per page life to keep re-rendered alerts from flooding
// the queue.
type ErrorTracker struct {
	client *client.Client

	mu      sync.Mutex
	seen    map[string]bool
	stopped bool
}

// NewErrorTracker builds an error tracker.
func NewErrorTracker(c *client.Client) *ErrorTracker {
	return &ErrorTracker{
		client: c,
		seen:   make(map[string]bool),
	}
}

// AlertShown feeds the text of an alert or error element that appeared
// on the page, with a selector identifying where it surfaced.
func (t *ErrorTracker) AlertShown(text, selector string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	text = truncateRunes(text, maxAlertLength)

	t.mu.Lock()
	if t.stopped || t.seen[text] {
		t.mu.Unlock()
		return
	}
	t.seen[text] = true
	t.mu.Unlock()

	t.client.ErrorShown(text, selector)
}

// ValidationFailed feeds a native validation failure for a field.
func (t *ErrorTracker) ValidationFailed(field string, validity Validity) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.client.ValidationError(field, validity.Kind())
}

// Stop tears the tracker down. Safe to call more than once.
func (t *ErrorTracker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// truncateRunes caps s at n characters without splitting a multi-byte
// rune at the boundary.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
