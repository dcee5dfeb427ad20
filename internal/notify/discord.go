// Package notify holds the outbound notification channels: the Discord
// webhook used for new applications, the bot endpoint used for batched
// status updates, and the archival fallback when no webhook is set.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nhle/job-tracker/internal/model"
)

// ErrInvalidWebhook is returned when a webhook URL does not match the
// accepted provider prefix. No network call is made in that case.
var ErrInvalidWebhook = errors.New("invalid webhook URL")

// embedColor is the accent color of the notification embed.
const embedColor = 5814783

// embedField is one name/value pair shown inline in the embed.
type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
	Footer      embedFooter  `json:"footer"`
}

type webhookPayload struct {
	Content *string `json:"content"`
	Embeds  []embed `json:"embeds"`
}

type webhookResponse struct {
	ID string `json:"id"`
}

// DiscordClient delivers new-application notifications to a Discord
// webhook and captures the created message id.
type DiscordClient struct {
	httpClient *http.Client
	prefix     string
}

// NewDiscordClient creates a Discord webhook client. Only URLs starting
// with prefix are accepted; pass the configured webhook prefix.
func NewDiscordClient(prefix string) *DiscordClient {
	return &DiscordClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		prefix:     prefix,
	}
}

// Send posts the event as an embed to webhookURL and returns the created
// message id. URLs not matching the accepted prefix are rejected with
// ErrInvalidWebhook before any network I/O.
func (c *DiscordClient) Send(
	ctx context.Context,
	webhookURL string,
	ev model.JobEvent,
) (string, error) {
	if webhookURL == "" || !strings.HasPrefix(webhookURL, c.prefix) {
		return "", ErrInvalidWebhook
	}

	// wait=true makes the webhook return the created message.
	url := webhookURL + "?wait=true"
	if strings.Contains(webhookURL, "?") {
		url = webhookURL + "&wait=true"
	}

	title := ev.Subject
	if title == "" {
		title = "No Subject"
	}
	description := ev.Snippet()
	if description == "" {
		description = "No snippet available."
	}
	status := ev.Status
	if status == "" {
		status = "New"
	}
	date := "Unknown Date"
	if !ev.Date.IsZero() {
		date = ev.Date.Format(time.RFC1123)
	}
	from := ev.From
	if from == "" {
		from = "Unknown"
	}

	payload := webhookPayload{
		Embeds: []embed{{
			Title:       "Job Update: " + title,
			Description: description,
			Color:       embedColor,
			Fields: []embedField{
				{Name: "From", Value: from, Inline: true},
				{Name: "Status", Value: status, Inline: true},
				{Name: "Date", Value: date, Inline: true},
			},
			Footer: embedFooter{Text: "Job Application Tracker"},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("webhook returned %d: %s", resp.StatusCode, msg)
	}

	var out webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding webhook response: %w", err)
	}

	return out.ID, nil
}
