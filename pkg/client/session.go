package client

import (
	"crypto/rand"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
)

// sessionStorageKey is where the session record lives in client storage.
const sessionStorageKey = "pulsetrack_session"

// DefaultSessionTimeout is the inactivity window after which a session
// is considered over and a new one is created transparently.
var DefaultSessionTimeout = config.SessionTimeout

// Storage persists small key/value records for the lifetime of the
// browsing context. Implementations must be safe for concurrent use:
// trackers call into the client from multiple goroutines. Storage may
// be unavailable (private browsing); the session manager degrades to
// per-call ids in that case.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemoryStorage is the default in-process Storage.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// sessionRecord is the persisted shape of a session.
type sessionRecord struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"startedAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	SourceProperty string    `json:"sourceProperty,omitempty"`
}

// SessionManager derives and persists a session identifier and detects
// cross-property navigation from the referrer. It is safe for
// concurrent use; the read-refresh-persist sequence runs atomically.
type SessionManager struct {
	mu       sync.Mutex
	storage  Storage
	timeout  time.Duration
	property string
	source   string
	sink     DiagnosticSink
	now      func() time.Time
}

// NewSessionManager builds a session manager for the given property.
// properties maps hostnames to property identifiers and drives
// cross-property detection: a referrer that resolves to a different
// known property than the current one records a source property.
// Unknown or local hostnames resolve to no detected source.
func NewSessionManager(property, referrer string, properties map[string]string, storage Storage, timeout time.Duration) *SessionManager {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	m := &SessionManager{
		storage:  storage,
		timeout:  timeout,
		property: property,
		sink:     NopSink{},
		now:      time.Now,
	}
	m.source = detectSourceProperty(property, referrer, properties)
	return m
}

// setSink routes the manager's swallowed errors to the client's sink.
func (m *SessionManager) setSink(sink DiagnosticSink) {
	if sink == nil {
		return
	}
	m.mu.Lock()
	m.sink = sink
	m.mu.Unlock()
}

// SourceProperty returns the property the visitor arrived from, or ""
// when none was detected.
func (m *SessionManager) SourceProperty() string {
	return m.source
}

// SessionID returns the current session id, refreshing the activity
// timestamp. An expired or missing record yields a fresh session. With
// no usable storage a fresh non-persisted id is generated on every call.
func (m *SessionManager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if m.storage == nil {
		return m.newSessionID(now)
	}

	if raw, ok := m.storage.Get(sessionStorageKey); ok {
		var rec sessionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err == nil && rec.ID != "" {
			if now.Sub(rec.LastActivityAt) < m.timeout {
				rec.LastActivityAt = now
				m.persist(&rec)
				return rec.ID
			}
		}
	}

	rec := sessionRecord{
		ID:             m.newSessionID(now),
		StartedAt:      now,
		LastActivityAt: now,
		SourceProperty: m.source,
	}
	m.persist(&rec)
	return rec.ID
}

// StartedAt reports when the current session began, falling back to now
// when no record is available.
func (m *SessionManager) StartedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.storage != nil {
		if raw, ok := m.storage.Get(sessionStorageKey); ok {
			var rec sessionRecord
			if err := json.Unmarshal([]byte(raw), &rec); err == nil && !rec.StartedAt.IsZero() {
				return rec.StartedAt
			}
		}
	}
	return m.now()
}

// persist writes the record. Storage failure is non-fatal; the next
// call regenerates. Callers hold m.mu.
func (m *SessionManager) persist(rec *sessionRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		m.sink.ClientError("session_persist", err)
		return
	}
	if err := m.storage.Set(sessionStorageKey, string(data)); err != nil {
		m.sink.ClientError("session_persist", err)
	}
}

// newSessionID generates an id, reporting a degraded randomness source.
// Callers hold m.mu.
func (m *SessionManager) newSessionID(now time.Time) string {
	id, err := generateSessionID(now)
	if err != nil {
		m.sink.ClientError("session_id", err)
	}
	return id
}

const sessionRandAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateSessionID produces a collision-resistant id of the form
// <unix-millis base36>-<6 random base36 chars>. A failing randomness
// source degrades to a nanosecond suffix; the id is still usable and
// the error reports the degradation.
func generateSessionID(now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	b.WriteByte('-')

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		b.WriteString(strconv.FormatInt(now.UnixNano()%0x7fffffff, 36))
		return b.String(), err
	}
	for _, c := range buf {
		b.WriteByte(sessionRandAlphabet[int(c)%len(sessionRandAlphabet)])
	}
	return b.String(), nil
}

// detectSourceProperty resolves the referrer host against the property
// table. Malformed referrers and local hosts are treated as no source.
func detectSourceProperty(current, referrer string, properties map[string]string) string {
	if referrer == "" || len(properties) == 0 {
		return ""
	}
	u, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || host == "localhost" || host == "127.0.0.1" {
		return ""
	}
	host = strings.TrimPrefix(host, "www.")

	prop, ok := properties[host]
	if !ok || prop == current {
		return ""
	}
	return prop
}
