package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client posts plain-text notifications to a configured webhook (a
// Slack-style incoming webhook or any endpoint accepting {"text": ...}).
type Client struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook notification client.
func NewClient(webhookURL string) *Client {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &Client{
		httpClient: restyClient,
		url:        webhookURL,
	}
}

// Send delivers one message. Failures are returned for logging; callers never
// fail a business operation over a notification.
func (c *Client) Send(ctx context.Context, text string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode())
	}
	return nil
}
