package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"go.uber.org/zap"
)

// CustomsClient proxies HS-code category lookups and cash value currency
// conversion to the customs reference API.
type CustomsClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logging.SafeLogger
}

// NewCustomsClient creates a customs reference API client
func NewCustomsClient(baseURL, apiKey string, timeout time.Duration, logger *logging.SafeLogger) *CustomsClient {
	return &CustomsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type hsCategoryResponse struct {
	Success    bool                `json:"success"`
	Categories []models.HSCategory `json:"categories"`
	Message    string              `json:"message"`
}

// HSCategories looks up tariff categories for an HS code prefix
func (c *CustomsClient) HSCategories(ctx context.Context, hsCode string) ([]models.HSCategory, error) {
	var resp hsCategoryResponse
	query := url.Values{"hs": {hsCode}}
	if err := c.get(ctx, "/categories", query, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: "hs-categories", Message: resp.Message}
	}
	return resp.Categories, nil
}

type cashValueResponse struct {
	Success        bool            `json:"success"`
	Currency       string          `json:"currency"`
	Rate           decimal.Decimal `json:"rate"`
	ConvertedValue decimal.Decimal `json:"converted_value"`
	Message        string          `json:"message"`
}

// CashValue converts a foreign-currency amount to local currency at the
// customs reference rate.
func (c *CustomsClient) CashValue(ctx context.Context, currency string, amount decimal.Decimal) (*models.CashValue, error) {
	var resp cashValueResponse
	query := url.Values{
		"currency": {strings.ToUpper(currency)},
		"amount":   {amount.StringFixed(2)},
	}
	if err := c.get(ctx, "/cash-value", query, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: "cash-value", Message: resp.Message}
	}
	return &models.CashValue{
		Currency:  resp.Currency,
		Amount:    amount,
		Rate:      resp.Rate,
		Converted: resp.ConvertedValue,
	}, nil
}

func (c *CustomsClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	c.logger.Debug("customs API call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	observability.ExternalCalls.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Endpoint: path, StatusCode: resp.StatusCode}
		var errResp struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			apiErr.Message = errResp.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
