package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Sender delivers one rendered payload to a webhook URL.
type Sender interface {
	Send(ctx context.Context, url string, body []byte) error
}

// WebhookSender posts JSON documents to webhook endpoints. A shared
// token-bucket limiter caps the outbound request rate across all
// workers.
type WebhookSender struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewWebhookSender creates a webhook sender with the given per-request
// timeout and global requests-per-second cap.
func NewWebhookSender(timeout time.Duration, ratePerSec float64) *WebhookSender {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	return &WebhookSender{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), int(ratePerSec)+1),
	}
}

// Send posts the body to the URL. Transport failures and server-side
// statuses come back retryable; client errors do not, the endpoint will
// reject the same document again.
func (s *WebhookSender) Send(ctx context.Context, url string, body []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return NewRetryableError(fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return NewNonRetryableError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "statuskite-webhook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return NewRetryableError(fmt.Errorf("post webhook: %w", err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return NewRetryableError(fmt.Errorf("webhook returned %d", resp.StatusCode))
	default:
		return NewNonRetryableError(fmt.Errorf("webhook returned %d", resp.StatusCode))
	}
}
