// Package gateway wraps the third-party payment gateway's server-side API:
// session initialization and transaction verification.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tanapark/internal/domain"
)

// InitializeRequest carries the parameters for opening a payment session.
type InitializeRequest struct {
	TxRef       string
	Amount      float64
	Currency    string
	Phone       string
	FirstName   string
	LastName    string
	Title       string
	Description string
}

// Session is the gateway's response to a successful initialization.
type Session struct {
	TxRef       string
	PublicKey   string
	CheckoutURL string
}

// VerifyResult is the gateway's authoritative answer for one transaction.
type VerifyResult struct {
	TxRef     string
	Status    domain.PaymentStatus
	Amount    float64
	Currency  string
	ChargedAt time.Time
}

// Client talks to the gateway's REST API.
type Client struct {
	baseURL    string
	secretKey  string
	publicKey  string
	httpClient *http.Client
}

// NewClient creates a gateway client. The public key is returned to callers
// alongside each session so the checkout page can be rendered against the
// right gateway mode.
func NewClient(baseURL, secretKey, publicKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		publicKey: publicKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PublicKey returns the configured checkout public key.
func (c *Client) PublicKey() string {
	return c.publicKey
}

type initializePayload struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	TxRef       string `json:"tx_ref"`
	Customization struct {
		Title       string `json:"title,omitempty"`
		Description string `json:"description,omitempty"`
	} `json:"customization"`
}

type apiEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	CheckoutURL string `json:"checkout_url"`
}

type verifyData struct {
	TxRef     string  `json:"tx_ref"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	CreatedAt string  `json:"created_at"`
}

// Initialize opens a new payment session for the given txRef. The txRef must
// be fresh: the gateway rejects reused references, so retries always carry a
// new one.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*Session, error) {
	payload := initializePayload{
		Amount:      fmt.Sprintf("%.2f", req.Amount),
		Currency:    req.Currency,
		PhoneNumber: FormatPhone(req.Phone, c.publicKey),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
	}
	payload.Customization.Title = req.Title
	payload.Customization.Description = req.Description

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway initialize: %w", err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("gateway initialize: decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || envelope.Status != "success" {
		return nil, fmt.Errorf("gateway initialize: %s", envelope.Message)
	}

	var data initializeData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("gateway initialize: decode data: %w", err)
	}

	return &Session{
		TxRef:       req.TxRef,
		PublicKey:   c.publicKey,
		CheckoutURL: data.CheckoutURL,
	}, nil
}

// Verify asks the gateway for the authoritative status of txRef. Verification
// has no side effects at the gateway, so it is safe to call repeatedly.
func (c *Client) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/transaction/verify/"+txRef, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway verify: %w", err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("gateway verify: decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, fmt.Errorf("gateway verify: %s", envelope.Message)
	}

	var data verifyData
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("gateway verify: decode data: %w", err)
		}
	}

	result := &VerifyResult{
		TxRef:    txRef,
		Status:   normalizeStatus(data.Status),
		Amount:   data.Amount,
		Currency: data.Currency,
	}
	if data.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, data.CreatedAt); err == nil {
			result.ChargedAt = t
		}
	}

	return result, nil
}

// normalizeStatus maps the gateway's wire statuses onto the domain enum.
// Anything unrecognized is treated as still pending, matching the polling
// policy of retrying on unknown transient states.
func normalizeStatus(s string) domain.PaymentStatus {
	switch s {
	case "success", "successful":
		return domain.PaymentStatusSuccessful
	case "failed", "error":
		return domain.PaymentStatusFailed
	case "cancelled", "canceled":
		return domain.PaymentStatusCancelled
	case "processing":
		return domain.PaymentStatusProcessing
	default:
		return domain.PaymentStatusPending
	}
}
