// Package email provides the email client for sending alert emails.
package email

import (
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/email/templates"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendConversionAlert(toEmail string, event events.AnalyticsEvent) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	if config.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := config.AlertFromEmail
	if fromEmail == "" {
		fromEmail = "alerts@pulsetrack.dev"
	}

	return &ResendClient{
		client:    resend.NewClient(config.ResendAPIKey),
		fromEmail: fromEmail,
		fromName:  "PulseTrack",
	}, nil
}

// SendConversionAlert composes and sends a conversion notification.
func (c *ResendClient) SendConversionAlert(toEmail string, event events.AnalyticsEvent) error {
	subject := fmt.Sprintf("Conversion on %s: %s", event.Property, event.Action)

	content := templates.GetConversionAlertContent(templates.ConversionAlertProps{
		Property:  event.Property,
		Action:    event.Action,
		Target:    event.Target,
		URL:       event.URL,
		SessionID: event.SessionID,
		Timestamp: event.Timestamp.Format(events.TimeFormat),
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: subject,
		Content:   content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send conversion alert via Resend: %w", err)
	}

	return nil
}
