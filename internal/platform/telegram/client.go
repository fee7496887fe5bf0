package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Davlaati/humo-ai/internal/common/logger"
)

// Client is a thin Bot API client for the payment endpoints the backend
// calls directly. Bot updates are consumed elsewhere; this client only
// mints invoice links.
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

// Response represents the common Bot API response envelope.
type Response struct {
	Ok          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

// LabeledPrice is one line of an invoice price table. Amount is in the
// smallest units of the currency (whole stars for XTR).
type LabeledPrice struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

// InvoiceLinkRequest mirrors the createInvoiceLink method parameters.
type InvoiceLinkRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Payload     string         `json:"payload"`
	Currency    string         `json:"currency"`
	Prices      []LabeledPrice `json:"prices"`
}

func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		token:   token,
		baseURL: "https://api.telegram.org",
	}
}

// WithBaseURL overrides the Bot API host. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// CreateInvoiceLink asks the Bot API for a shareable invoice link. The
// call is bounded by the client timeout and is never retried.
func (c *Client) CreateInvoiceLink(ctx context.Context, req InvoiceLinkRequest) (string, error) {
	endpoint := fmt.Sprintf("%s/bot%s/createInvoiceLink", c.baseURL, c.token)

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call createInvoiceLink: %w", err)
	}
	defer resp.Body.Close()

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if !envelope.Ok {
		logger.Warn().
			Str("description", envelope.Description).
			Msg("createInvoiceLink rejected")
		return "", fmt.Errorf("telegram API error: %s", envelope.Description)
	}

	var link string
	if err := json.Unmarshal(envelope.Result, &link); err != nil {
		return "", fmt.Errorf("failed to decode invoice link: %w", err)
	}

	return link, nil
}
