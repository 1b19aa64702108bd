package trackers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormLifecycleStartAndSubmit(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewFormTracker(c)
	defer tracker.Stop()

	tracker.FocusField("contact", "email")
	tracker.FocusField("contact", "message") // same form, no second start
	tracker.Submit("contact")

	c.Flush()
	assert.Len(t, sender.byAction("form_start"), 1)
	assert.Len(t, sender.byAction("form_submit"), 1)
	assert.Empty(t, sender.byAction("form_abandon"))
}

func TestFormAbandonOnPageHide(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewFormTracker(c)
	defer tracker.Stop()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	tracker.FocusField("contact", "email")
	now = now.Add(45 * time.Second)
	tracker.FocusField("contact", "phone")
	tracker.PageHide()

	c.Flush()
	abandons := sender.byAction("form_abandon")
	require.Len(t, abandons, 1)
	assert.Equal(t, "contact", abandons[0].Target)
	assert.Equal(t, "phone", abandons[0].Metadata["lastField"])
	require.NotNil(t, abandons[0].Value)
	assert.Equal(t, 45.0, *abandons[0].Value)
}

func TestSubmittedFormNotAbandoned(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewFormTracker(c)
	defer tracker.Stop()

	tracker.FocusField("newsletter", "email")
	tracker.Submit("newsletter")
	tracker.PageHide()

	c.Flush()
	assert.Empty(t, sender.byAction("form_abandon"))
}

func TestUnknownFormSubmitIgnored(t *testing.T) {
	c, sender := newCaptureClient(t)
	tracker := NewFormTracker(c)
	defer tracker.Stop()

	tracker.Submit("never-focused")

	c.Flush()
	assert.Empty(t, sender.byAction("form_submit"))
}
