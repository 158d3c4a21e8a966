package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nathannam/aau-tryouts/internal/check"
	"github.com/nathannam/aau-tryouts/internal/logger"
)

// Webhook POSTs changed results as JSON to a URL, retrying with exponential
// backoff on failure.
type Webhook struct {
	url        string
	client     *http.Client
	maxRetries int
	log        *logger.Logger
}

type webhookPayload struct {
	Changes   []check.Result `json:"changes"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewWebhook creates a webhook notifier targeting the given URL.
func NewWebhook(url string, log *logger.Logger) *Webhook {
	if log == nil {
		log = logger.Default()
	}
	return &Webhook{
		url:        url,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		log:        log,
	}
}

// Notify posts the changed results. Returns an error only after exhausting
// all retries.
func (w *Webhook) Notify(ctx context.Context, changed []check.Result) error {
	body, err := json.Marshal(webhookPayload{
		Changes:   changed,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("webhook: encoding payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			lastErr = err
			w.log.Warn("Webhook request failed", logger.Fields{
				"attempt": attempt + 1, "error": err.Error(),
			})
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook: status %d", resp.StatusCode)
		w.log.Warn("Webhook returned bad status", logger.Fields{
			"attempt": attempt + 1, "status": resp.StatusCode,
		})
	}
	return fmt.Errorf("webhook: all retries exhausted: %w", lastErr)
}
