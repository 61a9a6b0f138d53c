// Package whatsapp is a thin adapter around the WhatsApp Cloud API's
// messages endpoint. No third-party Cloud API client exists anywhere in
// the example pack or its transitive dependencies, so this talks to the
// Graph API directly with net/http; request bodies are still built with
// sonic to match the rest of the gateway's JSON path.
package whatsapp

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

const graphAPIBase = "https://graph.facebook.com/v19.0"

// Client sends outbound text messages through the WhatsApp Cloud API
type Client struct {
	accessToken string
	phoneID     string
	httpClient  *http.Client
}

// NewClient constructs a Client; a blank accessToken or phoneID is valid
// and simply means the WhatsApp channel is disabled — Send becomes a no-op.
func NewClient(accessToken, phoneID string) *Client {
	return &Client{
		accessToken: accessToken,
		phoneID:     phoneID,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether live credentials were configured
func (c *Client) Enabled() bool { return c.accessToken != "" && c.phoneID != "" }

type textMessage struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             textPayload `json:"text"`
}

type textPayload struct {
	Body string `json:"body"`
}

// Send delivers a plain-text reply to the given WhatsApp chat ID (the
// sender's E.164 phone number, as given by the inbound webhook payload).
func (c *Client) Send(ctx context.Context, to, body string) error {
	if !c.Enabled() {
		return nil
	}

	payload := textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textPayload{Body: body},
	}
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding whatsapp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", graphAPIBase, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("building whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp API returned status %d", resp.StatusCode)
	}
	return nil
}
