package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"go.uber.org/zap"
)

// Client talks to the tax authority self-service API (identity lookup,
// return filing, PRN generation, payment push, PIN registration).
type Client struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	logger      *logging.SafeLogger
	retryConfig RetryConfig
}

// RetryConfig defines retry behavior for idempotent requests. Filing, PRN
// generation and payment pushes are never retried automatically.
type RetryConfig struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns sensible defaults for idempotent retries
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}
}

// APIError is a failure reported by the tax authority API. The server's
// message is surfaced verbatim to the caller.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed with status %d", e.Endpoint, e.StatusCode)
}

// NewClient creates a tax authority API client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *logging.SafeLogger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
		retryConfig: DefaultRetryConfig(),
	}
}

// LookupParams identifies a taxpayer for lookup/PIN retrieval
type LookupParams struct {
	IDNumber    string `json:"id_number"`
	Msisdn      string `json:"msisdn"`
	YearOfBirth int    `json:"year_of_birth"`
}

// LookupResult is a resolved taxpayer identity
type LookupResult struct {
	Name string
	Pin  string
}

type lookupResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
	Pin     string `json:"pin"`
	Error   string `json:"error"`
}

// Lookup resolves a taxpayer name and PIN from ID number and year of
// birth. Lookups are idempotent and retried with backoff.
func (c *Client) Lookup(ctx context.Context, params LookupParams) (*LookupResult, error) {
	var result *LookupResult
	err := c.withRetry(ctx, "lookup", func() error {
		var resp lookupResponse
		if err := c.post(ctx, "/lookup", params, &resp); err != nil {
			return err
		}
		if !resp.Success {
			return &APIError{Endpoint: "lookup", Message: resp.Error}
		}
		result = &LookupResult{Name: resp.Name, Pin: resp.Pin}
		return nil
	})
	return result, err
}

// RegisterPINParams registers a new taxpayer
type RegisterPINParams struct {
	IDNumber    string `json:"id_number"`
	Msisdn      string `json:"msisdn"`
	YearOfBirth int    `json:"year_of_birth"`
	FullName    string `json:"full_name"`
	Email       string `json:"email,omitempty"`
}

type registerPINResponse struct {
	Success bool   `json:"success"`
	Pin     string `json:"pin"`
	Message string `json:"message"`
}

// RegisterPIN submits a PIN registration and returns the issued PIN.
// Not retried: registration is not idempotent server-side.
func (c *Client) RegisterPIN(ctx context.Context, params RegisterPINParams) (string, error) {
	var resp registerPINResponse
	if err := c.post(ctx, "/pin/register", params, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &APIError{Endpoint: "pin-register", Message: resp.Message}
	}
	return resp.Pin, nil
}

// FileReturnParams files a return for a period
type FileReturnParams struct {
	Pin            string `json:"pin"`
	ObligationCode string `json:"obligation_code"`
	Period         string `json:"period"`
	Amount         string `json:"amount"`
	IdempotencyKey string `json:"idempotency_key"`
}

type fileReturnResponse struct {
	Success       bool   `json:"success"`
	ReceiptNumber string `json:"receiptNumber"`
	Message       string `json:"message"`
}

// FileReturn files a return. Called at most once per attempt; the
// idempotency key lets the server deduplicate a resubmission.
func (c *Client) FileReturn(ctx context.Context, params FileReturnParams) (string, error) {
	var resp fileReturnResponse
	if err := c.post(ctx, "/returns/file", params, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &APIError{Endpoint: "file-return", Message: resp.Message}
	}
	return resp.ReceiptNumber, nil
}

// GeneratePRNParams requests a payment reference number
type GeneratePRNParams struct {
	Pin            string `json:"pin"`
	ObligationCode string `json:"obligation_code"`
	PeriodFrom     string `json:"period_from"`
	PeriodTo       string `json:"period_to"`
	Amount         string `json:"amount"`
}

type generatePRNResponse struct {
	Success bool   `json:"success"`
	PRN     string `json:"prn"`
	Message string `json:"message"`
}

// GeneratePRN generates a payment reference number for the given amount
func (c *Client) GeneratePRN(ctx context.Context, params GeneratePRNParams) (string, error) {
	var resp generatePRNResponse
	if err := c.post(ctx, "/payments/prn", params, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &APIError{Endpoint: "generate-prn", Message: resp.Message}
	}
	return resp.PRN, nil
}

// MakePaymentParams pushes a mobile-money payment prompt
type MakePaymentParams struct {
	Msisdn string `json:"msisdn"`
	PRN    string `json:"prn"`
}

type makePaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MakePayment pushes a payment prompt to the taxpayer's phone. Fire and
// forget: success means the push was accepted, not that payment completed.
func (c *Client) MakePayment(ctx context.Context, params MakePaymentParams) error {
	var resp makePaymentResponse
	if err := c.post(ctx, "/payments/push", params, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Endpoint: "make-payment", Message: resp.Message}
	}
	return nil
}

type liabilitiesResponse struct {
	Success     bool               `json:"success"`
	Liabilities []models.Liability `json:"liabilities"`
	Message     string             `json:"message"`
}

// Liabilities fetches outstanding liabilities for a PIN. Idempotent,
// retried with backoff.
func (c *Client) Liabilities(ctx context.Context, pin string) ([]models.Liability, error) {
	var result []models.Liability
	err := c.withRetry(ctx, "liabilities", func() error {
		var resp liabilitiesResponse
		if err := c.post(ctx, "/liabilities", map[string]string{"pin": pin}, &resp); err != nil {
			return err
		}
		if !resp.Success {
			return &APIError{Endpoint: "liabilities", Message: resp.Message}
		}
		result = resp.Liabilities
		return nil
	})
	return result, err
}

// post sends a JSON POST and decodes the response body into out
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		observability.ExternalCalls.WithLabelValues(path, "error").Inc()
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	c.logger.Debug("tax authority API call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	observability.ExternalCalls.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Endpoint: path, StatusCode: resp.StatusCode}
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			if errResp.Message != "" {
				apiErr.Message = errResp.Message
			} else if errResp.Error != "" {
				apiErr.Message = errResp.Error
			}
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	return nil
}

// withRetry executes fn with exponential backoff for retryable failures
func (c *Client) withRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.retryConfig.BaseDelay) * math.Pow(c.retryConfig.BackoffFactor, float64(attempt-1)))
			if delay > c.retryConfig.MaxDelay {
				delay = c.retryConfig.MaxDelay
			}

			c.logger.Debug("retrying tax authority operation",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			if attempt > 0 {
				c.logger.Info("tax authority operation succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempts", attempt+1))
			}
			return nil
		}

		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, c.retryConfig.MaxRetries+1, lastErr)
}

// isRetryableError reports whether an error is worth retrying: transport
// failures and server-side 5xx, never business rejections.
func isRetryableError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.StatusCode >= 500
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "connection", "dial", "no such host", "eof"} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}
