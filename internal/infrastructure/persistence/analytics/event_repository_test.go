package analytics

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/DriftwoodCreative/pulsetrack-go/internal/domain/analytics"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/persistence/database"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

func newTestRepository(t *testing.T) *SQLEventRepository {
	t.Helper()

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)

	// A file-backed database: with a connection pool, ":memory:" would
	// give every pooled connection its own empty database.
	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewSchemaBuilder().CreateSchema(db.DB))

	return NewSQLEventRepository(db, logger)
}

func storedEvent(id, sessionID, action string, category events.Category, at time.Time) events.AnalyticsEvent {
	return events.AnalyticsEvent{
		ID:        id,
		SessionID: sessionID,
		Property:  "acme-main",
		Category:  category,
		Action:    action,
		URL:       "https://acme.example/pricing",
		Timestamp: at,
	}
}

func TestStoreBatchRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	value := 75.0
	source := events.AnalyticsEvent{
		ID:             "01EV1",
		SessionID:      "sess-1",
		UserID:         "lead-42",
		Property:       "acme-main",
		SourceProperty: "acme-blog",
		Category:       events.CategoryInteraction,
		Action:         "scroll_depth",
		URL:            "https://acme.example/pricing",
		Referrer:       "https://www.google.com/",
		Target:         "main",
		Value:          &value,
		Metadata:       map[string]any{"final": true},
		Timestamp:      now,
	}
	require.NoError(t, repo.StoreBatch(ctx, []events.AnalyticsEvent{source}))

	found, err := repo.FindEventsInRange(ctx, "acme-main", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)

	got := found[0]
	assert.Equal(t, source.ID, got.ID)
	assert.Equal(t, source.SessionID, got.SessionID)
	assert.Equal(t, source.UserID, got.UserID)
	assert.Equal(t, source.SourceProperty, got.SourceProperty)
	assert.Equal(t, source.Category, got.Category)
	assert.Equal(t, source.Action, got.Action)
	assert.Equal(t, source.URL, got.URL)
	assert.Equal(t, source.Referrer, got.Referrer)
	require.NotNil(t, got.Value)
	assert.Equal(t, 75.0, *got.Value)
	assert.Equal(t, true, got.Metadata["final"])
	assert.True(t, got.Timestamp.Equal(now))
}

func TestStoreBatchUpsertsSessions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	batch := []events.AnalyticsEvent{
		storedEvent("01EV1", "sess-1", "page_view", events.CategoryNavigation, now),
		storedEvent("01EV2", "sess-1", "scroll_depth", events.CategoryInteraction, now.Add(time.Minute)),
		storedEvent("01EV3", "sess-2", "page_view", events.CategoryNavigation, now.Add(2*time.Minute)),
	}
	require.NoError(t, repo.StoreBatch(ctx, batch))

	sessions, err := repo.FindSessions(ctx, "acme-main", 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	byID := map[string]domain.SessionSummary{}
	for _, s := range sessions {
		byID[s.ID] = s
	}
	assert.Equal(t, 2, byID["sess-1"].EventCount)
	assert.Equal(t, 1, byID["sess-2"].EventCount)
	assert.True(t, byID["sess-1"].LastSeen.After(byID["sess-1"].FirstSeen))
}

func TestCountEventsInRange(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	batch := []events.AnalyticsEvent{
		storedEvent("01EV1", "sess-1", "page_view", events.CategoryNavigation, now),
		storedEvent("01EV2", "sess-1", "scroll_depth", events.CategoryInteraction, now),
		storedEvent("01EV3", "sess-2", "page_view", events.CategoryNavigation, now),
	}
	require.NoError(t, repo.StoreBatch(ctx, batch))

	counts, err := repo.CountEventsInRange(ctx, "acme-main", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "acme-main", counts.Property)
	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, 2, counts.Sessions)
	assert.Equal(t, 2, counts.PageViews)

	// Outside the window
	empty, err := repo.CountEventsInRange(ctx, "acme-main", now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
}

func TestTopPagesRanksByViews(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	mkView := func(id, url string) events.AnalyticsEvent {
		e := storedEvent(id, "sess-1", "page_view", events.CategoryNavigation, now)
		e.URL = url
		return e
	}
	batch := []events.AnalyticsEvent{
		mkView("01EV1", "https://acme.example/pricing"),
		mkView("01EV2", "https://acme.example/pricing"),
		mkView("01EV3", "https://acme.example/"),
	}
	// Non page-view traffic must not count as a view
	scroll := storedEvent("01EV4", "sess-1", "scroll_depth", events.CategoryInteraction, now)
	batch = append(batch, scroll)
	require.NoError(t, repo.StoreBatch(ctx, batch))

	pages, err := repo.TopPages(ctx, "acme-main", now.Add(-time.Hour), now.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "https://acme.example/pricing", pages[0].URL)
	assert.Equal(t, 2, pages[0].Count)
	assert.Equal(t, "https://acme.example/", pages[1].URL)
	assert.Equal(t, 1, pages[1].Count)
}

func TestCategoryBreakdown(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	batch := []events.AnalyticsEvent{
		storedEvent("01EV1", "sess-1", "page_view", events.CategoryNavigation, now),
		storedEvent("01EV2", "sess-1", "page_view", events.CategoryNavigation, now),
		storedEvent("01EV3", "sess-1", "form_submit", events.CategoryConversion, now),
	}
	require.NoError(t, repo.StoreBatch(ctx, batch))

	breakdown, err := repo.CategoryBreakdown(ctx, "acme-main", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	byCategory := map[string]int{}
	for _, row := range breakdown {
		byCategory[row.Category] = row.Count
	}
	assert.Equal(t, 2, byCategory[string(events.CategoryNavigation)])
	assert.Equal(t, 1, byCategory[string(events.CategoryConversion)])
}
