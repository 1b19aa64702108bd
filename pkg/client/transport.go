package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// Sender delivers one batch to the ingestion endpoint.
type Sender interface {
	Send(ctx context.Context, endpoint string, batch events.Batch) error
}

// HTTPSender is the normal-path transport: a keep-alive POST whose
// response status is checked.
type HTTPSender struct {
	client *http.Client
}

// NewHTTPSender creates a sender backed by the given http.Client.
// A nil client gets a default with a 10s timeout.
func NewHTTPSender(httpClient *http.Client) *HTTPSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSender{client: httpClient}
}

func (s *HTTPSender) Send(ctx context.Context, endpoint string, batch events.Batch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver batch: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingestion endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// BeaconSender is the page-hide transport: fire-and-forget, never blocks
// the caller and never reports failure. Best-effort by contract.
type BeaconSender struct {
	client *http.Client
}

// NewBeaconSender creates a beacon-style sender. A nil client gets a
// short-timeout default so stray goroutines cannot linger.
func NewBeaconSender(httpClient *http.Client) *BeaconSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &BeaconSender{client: httpClient}
}

func (s *BeaconSender) Send(_ context.Context, endpoint string, batch events.Batch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil
	}

	go func() {
		req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.client.Do(req)
		if err != nil {
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	return nil
}
