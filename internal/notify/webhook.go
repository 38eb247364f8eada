// Package notify reports confident detections to an external API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ayusman/gamesight/internal/detector"
)

// Threshold is the confidence a result must exceed to be reported.
const Threshold = 0.7

const userAgent = "gamesight/0.1.0"

// Notifier reports detection results. Implementations must not fail the caller.
type Notifier interface {
	Notify(ctx context.Context, result detector.Result) bool
}

// Config holds webhook options.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:4000.
	BaseURL string
	// Path is appended to BaseURL, e.g. /api/webhooks/game-detected.
	Path string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// Timeout bounds each request (default: 5s).
	Timeout time.Duration
	// Enabled turns delivery on at startup.
	Enabled bool
}

// Webhook posts results as JSON to a fixed endpoint.
type Webhook struct {
	endpoint string
	apiKey   string
	client   *http.Client
	enabled  atomic.Bool
	logger   *slog.Logger
}

// NewWebhook creates a Webhook from config.
func NewWebhook(config Config, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	w := &Webhook{
		endpoint: strings.TrimRight(config.BaseURL, "/") + config.Path,
		apiKey:   strings.TrimSpace(config.APIKey),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
	w.enabled.Store(config.Enabled)
	return w
}

// Endpoint returns the URL notifications are posted to.
func (w *Webhook) Endpoint() string {
	return w.endpoint
}

// SetEnabled turns delivery on or off.
func (w *Webhook) SetEnabled(enabled bool) {
	w.enabled.Store(enabled)
}

// Enabled reports whether delivery is on.
func (w *Webhook) Enabled() bool {
	return w.enabled.Load()
}

// ShouldNotify reports whether result would be sent.
func (w *Webhook) ShouldNotify(result detector.Result) bool {
	return w.Enabled() && result.Confidence > Threshold
}

// Notify sends result if it qualifies and reports whether the endpoint
// accepted it. Failures are logged and otherwise ignored.
func (w *Webhook) Notify(ctx context.Context, result detector.Result) bool {
	if !w.ShouldNotify(result) {
		return false
	}
	if err := w.Send(ctx, result); err != nil {
		w.logger.Warn("game notification failed",
			"game", result.Game,
			"endpoint", w.endpoint,
			"error", err)
		return false
	}
	w.logger.Info("game notification sent", "game", result.Game, "confidence", result.Confidence)
	return true
}

// Send posts result unconditionally.
func (w *Webhook) Send(ctx context.Context, result detector.Result) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("notification endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Nop is a Notifier that never sends.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, detector.Result) bool { return false }
