// Package services provides application-level orchestration services
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/domain/analytics"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/domain/entities/property"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/email"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/messaging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/security"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// maxBatchSize caps how many events one request may carry.
const maxBatchSize = 100

// IngestService validates and persists incoming event batches, then
// fans them out to live subscribers and alerting.
type IngestService struct {
	logger      *logging.ChanneledLogger
	store       analytics.EventStore
	properties  property.Repository
	broadcaster messaging.Broadcaster
	mailer      email.Service
}

// NewIngestService creates a new ingest service. The mailer may be nil
// when no email provider is configured.
func NewIngestService(
	logger *logging.ChanneledLogger,
	store analytics.EventStore,
	properties property.Repository,
	broadcaster messaging.Broadcaster,
	mailer email.Service,
) *IngestService {
	return &IngestService{
		logger:      logger,
		store:       store,
		properties:  properties,
		broadcaster: broadcaster,
		mailer:      mailer,
	}
}

// ProcessBatch validates a batch, stores the accepted events and
// reports per-event validation errors. A batch with at least one
// accepted event succeeds.
func (s *IngestService) ProcessBatch(ctx context.Context, batch events.Batch) (events.IngestResponse, error) {
	start := time.Now()

	if len(batch.Events) == 0 {
		return events.IngestResponse{Success: false, Errors: []string{"empty batch"}}, nil
	}
	if len(batch.Events) > maxBatchSize {
		return events.IngestResponse{
			Success: false,
			Errors:  []string{fmt.Sprintf("batch exceeds %d events", maxBatchSize)},
		}, nil
	}

	accepted := make([]events.AnalyticsEvent, 0, len(batch.Events))
	var validationErrors []string

	for i, event := range batch.Events {
		if err := s.validate(&event); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("event %d: %v", i, err))
			continue
		}
		accepted = append(accepted, event)
	}

	if len(accepted) == 0 {
		s.logger.Ingest().Warn("Batch rejected, no valid events",
			"total", len(batch.Events),
			"errors", len(validationErrors))
		return events.IngestResponse{Success: false, Errors: validationErrors}, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.store.StoreBatch(storeCtx, accepted); err != nil {
		s.logger.Ingest().Error("Failed to persist event batch",
			"error", err.Error(),
			"count", len(accepted))
		return events.IngestResponse{Success: false, Errors: []string{"storage failure"}},
			fmt.Errorf("failed to persist event batch: %w", err)
	}

	s.broadcaster.BroadcastEvents(accepted)
	s.notifyConversions(accepted)

	s.logger.Ingest().Info("Event batch processed",
		"received", len(accepted),
		"rejected", len(validationErrors),
		"duration", time.Since(start))

	return events.IngestResponse{
		Success:  true,
		Received: len(accepted),
		Errors:   validationErrors,
	}, nil
}

// validate checks one event and fills in the fields the server owns.
func (s *IngestService) validate(event *events.AnalyticsEvent) error {
	if event.Property == "" {
		return fmt.Errorf("missing property")
	}
	if event.SessionID == "" {
		return fmt.Errorf("missing session id")
	}
	if event.Action == "" {
		return fmt.Errorf("missing action")
	}
	if !event.Category.Valid() {
		return fmt.Errorf("unknown category %q", event.Category)
	}

	prop, err := s.properties.FindBySlug(event.Property)
	if err != nil {
		return fmt.Errorf("property lookup failed: %w", err)
	}
	if prop == nil {
		return fmt.Errorf("unregistered property %q", event.Property)
	}

	if event.ID == "" {
		event.ID = security.GenerateULID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return nil
}

// notifyConversions sends an alert email for each conversion event.
// The property's alert address wins; ALERT_TO_EMAIL is the fallback.
func (s *IngestService) notifyConversions(batch []events.AnalyticsEvent) {
	if s.mailer == nil {
		return
	}

	for _, event := range batch {
		if event.Category != events.CategoryConversion || event.Action != "form_submit" {
			continue
		}

		prop, err := s.properties.FindBySlug(event.Property)
		if err != nil || prop == nil {
			continue
		}
		toEmail := prop.AlertEmail
		if toEmail == "" {
			toEmail = config.AlertToEmail
		}
		if toEmail == "" {
			continue
		}

		// Email delivery must not hold up the ingest path
		go func(toEmail string, event events.AnalyticsEvent) {
			if err := s.mailer.SendConversionAlert(toEmail, event); err != nil {
				s.logger.Email().Error("Failed to send conversion alert",
					"error", err.Error(),
					"property", event.Property,
					"eventId", event.ID)
				return
			}
			s.logger.Email().Info("Conversion alert sent",
				"property", event.Property,
				"action", event.Action)
		}(toEmail, event)
	}
}
