// Package performance provides lightweight operation timing for request
// handlers and background workers.
package performance

import (
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"` // e.g., "ingest:process_batch"
	Property  string         `json:"property,omitempty"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Completed bool           `json:"completed"`
}

// Complete marks the operation as finished and calculates final metrics
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// maxRecentMarkers bounds the in-memory marker history.
const maxRecentMarkers = 256

// Tracker collects markers for completed operations.
type Tracker struct {
	mu      sync.Mutex
	recent  []*Marker
	counter uint64
}

// NewTracker creates a new performance tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// StartOperation begins timing an operation for a property.
func (t *Tracker) StartOperation(operation, property string) *Marker {
	marker := &Marker{
		Operation: operation,
		Property:  property,
		StartTime: time.Now(),
	}

	t.mu.Lock()
	t.recent = append(t.recent, marker)
	if len(t.recent) > maxRecentMarkers {
		t.recent = t.recent[len(t.recent)-maxRecentMarkers:]
	}
	t.counter++
	t.mu.Unlock()

	return marker
}

// RecentMarkers returns a snapshot of the most recent markers.
func (t *Tracker) RecentMarkers() []*Marker {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Marker, len(t.recent))
	copy(out, t.recent)
	return out
}

// OperationCount returns the number of operations started since boot.
func (t *Tracker) OperationCount() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counter
}
