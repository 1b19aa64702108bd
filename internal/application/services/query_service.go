package services

import (
	"context"
	"fmt"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/domain/analytics"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

const queryTimeout = 5 * time.Second

// defaultTopPagesLimit bounds the top-pages result when no limit is given.
const defaultTopPagesLimit = 10

// QueryService serves the dashboard read paths over the event store.
type QueryService struct {
	logger *logging.ChanneledLogger
	repo   analytics.EventRepository
}

// NewQueryService creates a new query service
func NewQueryService(logger *logging.ChanneledLogger, repo analytics.EventRepository) *QueryService {
	return &QueryService{
		logger: logger,
		repo:   repo,
	}
}

// RangeQuery carries the common parameters of the dashboard queries.
type RangeQuery struct {
	Property string
	Start    time.Time
	End      time.Time
	Limit    int
}

// Normalize fills defaults: a zero range means the trailing 24 hours.
func (q *RangeQuery) Normalize() error {
	if q.Property == "" {
		return fmt.Errorf("property is required")
	}
	if q.End.IsZero() {
		q.End = time.Now().UTC()
	}
	if q.Start.IsZero() {
		q.Start = q.End.Add(-24 * time.Hour)
	}
	if !q.Start.Before(q.End) {
		return fmt.Errorf("start must be before end")
	}
	if q.Limit <= 0 {
		q.Limit = defaultTopPagesLimit
	}
	return nil
}

// Events returns the raw events for a property in a range.
func (s *QueryService) Events(ctx context.Context, q RangeQuery) ([]events.AnalyticsEvent, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.repo.FindEventsInRange(ctx, q.Property, q.Start, q.End)
}

// Counts summarizes event volume for a property in a range.
func (s *QueryService) Counts(ctx context.Context, q RangeQuery) (analytics.EventCounts, error) {
	if err := q.Normalize(); err != nil {
		return analytics.EventCounts{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.repo.CountEventsInRange(ctx, q.Property, q.Start, q.End)
}

// TopPages returns the most viewed URLs for a property in a range.
func (s *QueryService) TopPages(ctx context.Context, q RangeQuery) ([]analytics.PageCount, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.repo.TopPages(ctx, q.Property, q.Start, q.End, q.Limit)
}

// Categories returns per-category event counts for a property in a range.
func (s *QueryService) Categories(ctx context.Context, q RangeQuery) ([]analytics.CategoryCount, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.repo.CategoryBreakdown(ctx, q.Property, q.Start, q.End)
}

// Sessions returns the most recent sessions for a property.
func (s *QueryService) Sessions(ctx context.Context, property string, limit int) ([]analytics.SessionSummary, error) {
	if property == "" {
		return nil, fmt.Errorf("property is required")
	}
	if limit <= 0 {
		limit = 50
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.repo.FindSessions(ctx, property, limit)
}
