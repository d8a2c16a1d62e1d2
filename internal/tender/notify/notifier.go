// Package notify implements the fire-and-forget admin notification hook.
// Events that admins should see (currently manual tender creation) are
// POSTed to a configured webhook; delivery failures are logged and dropped,
// never surfaced to the triggering user action.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Notifier struct {
	webhookURL string
	client     *http.Client
	log        *zap.Logger
}

func New(webhookURL string, log *zap.Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type message struct {
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NotifyAdmins delivers asynchronously; callers never wait on the webhook.
func (n *Notifier) NotifyAdmins(title, body string, metadata map[string]interface{}) {
	if n.webhookURL == "" {
		return
	}
	go n.send(message{Title: title, Body: body, Metadata: metadata})
}

func (n *Notifier) send(msg message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		n.log.Warn("Failed to marshal admin notification", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		n.log.Warn("Failed to build admin notification request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn("Admin notification delivery failed", zap.Error(err), zap.String("title", msg.Title))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.log.Warn("Admin notification rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("title", msg.Title),
		)
	}
}
