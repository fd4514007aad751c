package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dandantas/profilewatch/pkg/middleware"
)

// ErrCircuitOpen is returned while the breaker refuses deliveries
var ErrCircuitOpen = errors.New("circuit breaker is open")

// WebhookNotifier posts events as JSON to a URL with retries
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *Breaker
	policy  RetryPolicy
}

// NewWebhookNotifier creates a notifier posting to url
func NewWebhookNotifier(url string, timeout time.Duration, policy RetryPolicy) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: NewBreaker(5, 2, 60*time.Second),
		policy:  policy.withDefaults(),
	}
}

// BreakerState reports the webhook circuit state
func (w *WebhookNotifier) BreakerState() CircuitState {
	return w.breaker.State()
}

// Notify delivers e, retrying transient failures
func (w *WebhookNotifier) Notify(ctx context.Context, e Event) error {
	if !w.breaker.Allow() {
		slog.Warn("Circuit breaker is open, skipping webhook delivery",
			"webhook_url", w.url,
			"kind", string(e.Kind),
		)
		return ErrCircuitOpen
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	for attempt := 1; attempt <= w.policy.MaxAttempts; attempt++ {
		status, err := w.deliver(ctx, e.CorrelationID, payload)
		if err == nil {
			w.breaker.Success()
			slog.Debug("Webhook delivered",
				"webhook_url", w.url,
				"attempt", attempt,
				"status_code", status,
			)
			return nil
		}

		if !w.policy.ShouldRetry(attempt, status, err) {
			w.breaker.Failure()
			return fmt.Errorf("webhook delivery failed after %d attempts: %w", attempt, err)
		}

		delay := w.policy.Delay(attempt)
		slog.Warn("Webhook delivery failed, retrying",
			"webhook_url", w.url,
			"attempt", attempt,
			"next_retry_ms", delay.Milliseconds(),
			"error", err.Error(),
		)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	w.breaker.Failure()
	return fmt.Errorf("webhook delivery failed after %d attempts", w.policy.MaxAttempts)
}

func (w *WebhookNotifier) deliver(ctx context.Context, correlationID string, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if correlationID != "" {
		req.Header.Set(middleware.CorrelationHeader, correlationID)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
