package client

import "github.com/DriftwoodCreative/pulsetrack-go/pkg/events"

// Typed wrappers over Track. No side effects beyond constructing
// well-formed metadata.

// PageView records a navigation to the current page.
func (c *Client) PageView() {
	c.Track(events.CategoryNavigation, "page_view", nil)
}

// ButtonClick records a click on a labeled button.
func (c *Client) ButtonClick(label string) {
	c.Track(events.CategoryInteraction, "button_click", &TrackOptions{Target: label})
}

// CTAClick records a click on a call-to-action element.
func (c *Client) CTAClick(label string) {
	c.Track(events.CategoryInteraction, "cta_click", &TrackOptions{Target: label})
}

// ScrollDepth records that the page was scrolled past a depth threshold.
func (c *Client) ScrollDepth(percent int) {
	c.Track(events.CategoryContent, "scroll_depth", &TrackOptions{Value: Float(float64(percent))})
}

// TimeOnPage records accumulated active seconds; final marks the reading
// taken at page hide.
func (c *Client) TimeOnPage(seconds int, final bool) {
	c.Track(events.CategoryContent, "time_on_page", &TrackOptions{
		Value:    Float(float64(seconds)),
		Metadata: map[string]any{"final": final},
	})
}

// FormStart records the first focus inside a form.
func (c *Client) FormStart(formID string) {
	c.Track(events.CategoryConversion, "form_start", &TrackOptions{Target: formID})
}

// FormSubmit records a form submission.
func (c *Client) FormSubmit(formID string) {
	c.Track(events.CategoryConversion, "form_submit", &TrackOptions{Target: formID})
}

// FormAbandon records a page unload with unsubmitted form state.
func (c *Client) FormAbandon(formID, lastField string, elapsedSeconds float64) {
	c.Track(events.CategoryConversion, "form_abandon", &TrackOptions{
		Target: formID,
		Value:  Float(elapsedSeconds),
		Metadata: map[string]any{
			"lastField": lastField,
		},
	})
}

// RageClick records a burst of rapid clicks in one area.
func (c *Client) RageClick(target string, count int) {
	c.Track(events.CategoryError, "rage_click", &TrackOptions{
		Target: target,
		Value:  Float(float64(count)),
	})
}

// ErrorShown records an error or alert surfaced to the visitor.
func (c *Client) ErrorShown(message, target string) {
	c.Track(events.CategoryError, "error_shown", &TrackOptions{
		Target:   target,
		Metadata: map[string]any{"message": message},
	})
}

// ValidationError records a native form validation failure.
// kind is one of required, type, pattern or other.
func (c *Client) ValidationError(field, kind string) {
	c.Track(events.CategoryError, "validation_error", &TrackOptions{
		Target:   field,
		Metadata: map[string]any{"kind": kind},
	})
}

// WebVital records a performance measurement such as LCP or CLS.
func (c *Client) WebVital(name string, value float64) {
	c.Track(events.CategoryPerformance, "web_vital", &TrackOptions{
		Target: name,
		Value:  Float(value),
	})
}

// SearchQuery records a sanitized free-text search. The raw query is
// redacted before it reaches the queue.
func (c *Client) SearchQuery(query string, resultCount int) {
	c.Track(events.CategorySearch, "search", &TrackOptions{
		Target: SanitizeSearchQuery(query),
		Value:  Float(float64(resultCount)),
	})
}
