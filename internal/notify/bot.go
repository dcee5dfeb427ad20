package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nhle/job-tracker/internal/model"
)

// BotClient posts batched status-update notices to the external bot
// endpoint. One call carries the whole batch; a failed call is logged by
// the caller and the batch discarded, since the ledger is already
// durably updated.
type BotClient struct {
	httpClient *http.Client
	endpoint   string
	secret     string
}

// NewBotClient creates a client for the configured bot endpoint.
func NewBotClient(endpoint, secret string) *BotClient {
	return &BotClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   endpoint,
		secret:     secret,
	}
}

// PushUpdates POSTs the pending updates as a JSON array with bearer
// authentication. A nil or empty batch is a no-op.
func (c *BotClient) PushUpdates(ctx context.Context, updates []model.PendingUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if c.endpoint == "" {
		return fmt.Errorf("bot endpoint not configured")
	}

	body, err := json.Marshal(updates)
	if err != nil {
		return fmt.Errorf("marshaling pending updates: %w", err)
	}

	url := c.endpoint + "/updateMessages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building bot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting updates to bot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bot endpoint returned %d: %s", resp.StatusCode, msg)
	}

	return nil
}
