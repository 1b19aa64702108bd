package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/application/services"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/domain/entities/property"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/messaging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)
	return logger
}

type memoryStore struct {
	mu     sync.Mutex
	events []events.AnalyticsEvent
}

func (m *memoryStore) StoreBatch(ctx context.Context, batch []events.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, batch...)
	return nil
}

type memoryProperties struct {
	known map[string]*property.Property
}

func (m *memoryProperties) FindBySlug(slug string) (*property.Property, error) {
	return m.known[slug], nil
}

func (m *memoryProperties) FindAll() ([]*property.Property, error) {
	var all []*property.Property
	for _, p := range m.known {
		all = append(all, p)
	}
	return all, nil
}

func (m *memoryProperties) Upsert(p *property.Property) error {
	m.known[p.Slug] = p
	return nil
}

type noopBroadcaster struct{}

func (noopBroadcaster) Register(client *messaging.LiveClient)         {}
func (noopBroadcaster) Unregister(client *messaging.LiveClient)       {}
func (noopBroadcaster) BroadcastEvents(batch []events.AnalyticsEvent) {}
func (noopBroadcaster) SubscriberCount(property string) int           { return 0 }

// testIngestRouter wires a router with just the ingest endpoint backed
// by in-memory collaborators.
func testIngestRouter(t *testing.T) (*gin.Engine, *memoryStore) {
	t.Helper()
	logger := quietLogger(t)
	store := &memoryStore{}
	props := &memoryProperties{known: map[string]*property.Property{
		"acme-main": {ID: "01ARZ3", Slug: "acme-main", Name: "Acme"},
	}}

	svc := services.NewIngestService(logger, store, props, noopBroadcaster{}, nil)
	handlers := NewIngestHandlers(svc, logger, performance.NewTracker())

	router := gin.New()
	router.POST("/api/analytics/events", handlers.PostEvents)
	return router, store
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
