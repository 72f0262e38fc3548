// Package webhook notifies an external endpoint when a regression run
// finishes. Payloads are HMAC-signed and redelivered on a configured
// schedule until the endpoint accepts them or the schedule is exhausted.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/models"
)

// BatchCompleted is the notification payload for a finished regression run.
type BatchCompleted struct {
	Type        string              `json:"type"` // always "batch.completed"
	RunID       string              `json:"run_id"`
	CompletedAt time.Time           `json:"completed_at"`
	Result      *models.BatchResult `json:"result"`
}

// Notifier delivers batch-run notifications to the configured endpoint.
// A Notifier with no URL is valid and delivers nothing.
type Notifier struct {
	url    string
	secret string
	delays []time.Duration
	client *http.Client
	log    *slog.Logger
}

// NewNotifier builds a Notifier from config. A nil logger falls back to the
// process default.
func NewNotifier(cfg config.WebhookConfig, log *slog.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		url:    cfg.URL,
		secret: cfg.Secret,
		delays: cfg.RetryDelays,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Enabled reports whether an endpoint is configured.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// BatchCompleted posts one notification for a finished run. The body carries
// an X-Ownertrace-Signature header ("sha256=<hex>", HMAC-SHA256 over the
// exact bytes sent) when a secret is configured.
func (n *Notifier) BatchCompleted(ctx context.Context, runID string, result *models.BatchResult) error {
	body, err := json.Marshal(BatchCompleted{
		Type:        "batch.completed",
		RunID:       runID,
		CompletedAt: time.Now().UTC(),
		Result:      result,
	})
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Ownertrace-Webhook/1.0")
	if n.secret != "" {
		req.Header.Set("X-Ownertrace-Signature", "sha256="+n.Sign(body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of the body under the configured secret.
// Exposed so receivers have a reference implementation to verify against.
func (n *Notifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(n.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// BatchCompletedAsync delivers in the background, redelivering per the
// configured schedule. A no-endpoint Notifier returns immediately.
func (n *Notifier) BatchCompletedAsync(runID string, result *models.BatchResult) {
	if !n.Enabled() {
		return
	}
	go n.redeliver(runID, result)
}

// redeliver runs the initial attempt plus one attempt per configured delay.
func (n *Notifier) redeliver(runID string, result *models.BatchResult) {
	attempts := append([]time.Duration{0}, n.delays...)
	for i, delay := range attempts {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), n.client.Timeout)
		err := n.BatchCompleted(ctx, runID, result)
		cancel()
		if err == nil {
			n.log.Info("webhook delivered",
				"url", n.url,
				"run_id", runID,
				"attempt", i+1,
			)
			return
		}
		n.log.Warn("webhook delivery failed",
			"url", n.url,
			"run_id", runID,
			"attempt", i+1,
			"error", err,
		)
	}
	n.log.Error("webhook delivery exhausted all attempts",
		"url", n.url,
		"run_id", runID,
		"attempts", len(attempts),
	)
}
