// Package sms sends fire-and-forget text messages through the provider's
// HTTP dispatch endpoint.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client posts messages to the SMS provider.
type Client struct {
	endpoint   string
	apiKey     string
	sender     string
	httpClient *http.Client
}

// NewClient creates an SMS client.
func NewClient(endpoint, apiKey, sender string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendPayload struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// Send dispatches one message. Delivery is best-effort: callers log failures
// and move on, they never fail a committed payment over an SMS error.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(sendPayload{
		To:      phone,
		From:    c.sender,
		Message: message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms dispatch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms dispatch: provider returned %d", resp.StatusCode)
	}

	return nil
}
