package trackers

import (
	"strings"
	"sync"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/client"
)

// maxLabelLength caps the human-readable identifier of a CTA.
const maxLabelLength = 50

// Element carries the attributes of a clicked element needed to decide
// whether it is a call-to-action and how to label it.
type Element struct {
	Tag     string
	Type    string
	ID      string
	CTAData string // value of the data-cta attribute
	Name    string
	Text    string
	Classes []string
}

// Matcher decides whether a clicked element counts as a CTA.
type Matcher func(Element) bool

// DefaultCTAMatcher covers data-cta attributes, the cta class, and
// submit buttons.
func DefaultCTAMatcher(el Element) bool {
	if el.CTAData != "" {
		return true
	}
	for _, class := range el.Classes {
		if class == "cta" {
			return true
		}
	}
	tag := strings.ToLower(el.Tag)
	typ := strings.ToLower(el.Type)
	if tag == "button" && (typ == "" || typ == "submit") {
		return true
	}
	return tag == "input" && typ == "submit"
}

// CTATracker reports clicks on call-to-action elements with a
// best-effort human-readable identifier.
type CTATracker struct {
	client *client.Client
	match  Matcher

	mu      sync.Mutex
	stopped bool
}

// NewCTATracker builds a CTA tracker. A nil matcher gets the default.
func NewCTATracker(c *client.Client, match Matcher) *CTATracker {
	if match == nil {
		match = DefaultCTAMatcher
	}
	return &CTATracker{client: c, match: match}
}

// Click feeds one clicked element; non-CTA elements are ignored.
func (t *CTATracker) Click(el Element) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	if !t.match(el) {
		return
	}
	t.client.CTAClick(Label(el))
}

// Stop tears the tracker down. Safe to call more than once.
func (t *CTATracker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Label resolves the identifier for a CTA: id, then data attribute,
// then name, then trimmed text content.
func Label(el Element) string {
	if el.ID != "" {
		return el.ID
	}
	if el.CTAData != "" {
		return el.CTAData
	}
	if el.Name != "" {
		return el.Name
	}
	text := strings.Join(strings.Fields(el.Text), " ")
	if text != "" {
		text = truncateRunes(text, maxLabelLength)
		return text
	}
	return "unlabeled"
}
