package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	eventVersion = "1.0"
	eventType    = "run.completed"

	maxAttempts = 3
	baseBackoff = 500 * time.Millisecond
)

// HTTPEmitter POSTs run events as JSON to a configured endpoint.
type HTTPEmitter struct {
	cfg    Config
	client *http.Client
}

// NewHTTPEmitter creates a new HTTP emitter.
func NewHTTPEmitter(cfg Config) *HTTPEmitter {
	return &HTTPEmitter{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// EmitRun sends a run event to the configured endpoint, retrying transient
// failures with backoff. Notification failure is reported to the caller but
// never aborts a run.
func (e *HTTPEmitter) EmitRun(ctx context.Context, evt Event) error {
	evt.Version = eventVersion
	evt.EventType = eventType
	evt.EventID = uuid.NewString()
	evt.Timestamp = time.Now().UTC()

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(baseBackoff * time.Duration(1<<(attempt-2))):
			}
		}

		lastErr = e.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		slog.Warn("run event emission failed",
			"attempt", attempt, "endpoint", e.cfg.Endpoint, "error", lastErr)
	}
	return fmt.Errorf("emit run event after %d attempts: %w", maxAttempts, lastErr)
}

func (e *HTTPEmitter) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return nil
}

// Close is a no-op for the HTTP emitter.
func (e *HTTPEmitter) Close() error {
	return nil
}
