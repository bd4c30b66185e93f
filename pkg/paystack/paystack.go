package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Verification outcomes. The caller distinguishes a provider that said "no"
// (safe, nothing happened) from a provider we could not reach (retryable).
var (
	// ErrPaymentRejected means the provider's record of truth does not show a
	// successful payment for the reference: explicit failure, cancellation,
	// or a reference the provider does not recognize.
	ErrPaymentRejected = errors.New("payment not confirmed by provider")

	// ErrProviderUnavailable means the provider could not be consulted at
	// all. Verification fails closed; it never defaults to success.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)

// Config holds the provider connection details.
type Config struct {
	SecretKey   string
	BaseURL     string        // defaults to the live API
	Timeout     time.Duration // per-request bound, defaults to 10s
	MaxAttempts int           // total attempts for network-class failures, defaults to 3
}

// Client calls the provider's transaction endpoints.
type Client struct {
	secretKey   string
	baseURL     string
	maxAttempts int
	httpClient  *http.Client
}

// Verification is the provider's confirmed view of one transaction.
type Verification struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"` // in subunits (kobo)
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
	Channel   string `json:"channel"`
}

// verifyResponse mirrors the provider's envelope.
type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		PaidAt    string `json:"paid_at"`
		Channel   string `json:"channel"`
	} `json:"data"`
}

// NewClient creates a new provider client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Client{
		secretKey:   cfg.SecretKey,
		baseURL:     baseURL,
		maxAttempts: maxAttempts,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// VerifyTransaction asks the provider whether the referenced payment really
// succeeded. Read-only: no state is mutated on either side. Network errors
// and 5xx responses are retried up to the attempt bound; business rejections
// are never retried.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Verification, error) {
	if reference == "" {
		return nil, fmt.Errorf("empty transaction reference: %w", ErrPaymentRejected)
	}

	url := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, reference)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("verification cancelled: %w", ErrProviderUnavailable)
			case <-time.After(time.Duration(attempt-1) * 200 * time.Millisecond):
			}
		}

		verification, retryable, err := c.verifyOnce(ctx, url)
		if err == nil {
			return verification, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// verifyOnce performs a single verification request. The second return value
// reports whether the failure is network-class and worth another attempt.
func (c *Client) verifyOnce(ctx context.Context, url string) (*Verification, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build verification request: %w", ErrProviderUnavailable)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("verification request failed: %v: %w", err, ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read verification response: %v: %w", err, ErrProviderUnavailable)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("provider returned %d: %w", resp.StatusCode, ErrProviderUnavailable)
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		// The provider does not recognize the reference. Reject, do not retry.
		return nil, false, fmt.Errorf("provider does not recognize reference: %w", ErrPaymentRejected)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("provider returned %d: %w", resp.StatusCode, ErrProviderUnavailable)
	}

	var parsed verifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// A response we cannot parse is never treated as success.
		return nil, false, fmt.Errorf("malformed provider response: %v: %w", err, ErrProviderUnavailable)
	}

	if !parsed.Status || parsed.Data.Status != "success" {
		return nil, false, fmt.Errorf("provider reported status %q: %w", parsed.Data.Status, ErrPaymentRejected)
	}

	return &Verification{
		Reference: parsed.Data.Reference,
		Amount:    parsed.Data.Amount,
		Currency:  parsed.Data.Currency,
		PaidAt:    parsed.Data.PaidAt,
		Channel:   parsed.Data.Channel,
	}, false, nil
}
