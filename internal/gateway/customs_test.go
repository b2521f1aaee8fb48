package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ushuru-digital/app-tsp/internal/logging"
)

func newCustomsTestClient(t *testing.T, handler http.HandlerFunc) *CustomsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCustomsClient(srv.URL, "", 5*time.Second, logging.Logger)
}

func TestHSCategories(t *testing.T) {
	client := newCustomsTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		assert.Equal(t, "8471", r.URL.Query().Get("hs"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"categories": []map[string]string{
				{"hs_code": "8471.30", "description": "Portable computers", "duty_rate": "0%"},
			},
		})
	})

	categories, err := client.HSCategories(context.Background(), "8471")
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "8471.30", categories[0].HSCode)
}

func TestCashValue(t *testing.T) {
	client := newCustomsTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("currency"))
		assert.Equal(t, "100.00", r.URL.Query().Get("amount"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"currency":        "USD",
			"rate":            "129.50",
			"converted_value": "12950.00",
		})
	})

	cv, err := client.CashValue(context.Background(), "usd", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "USD", cv.Currency)
	assert.True(t, cv.Converted.Equal(decimal.RequireFromString("12950.00")))
}

func TestCashValue_Failure(t *testing.T) {
	client := newCustomsTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "unsupported currency"})
	})

	_, err := client.CashValue(context.Background(), "XYZ", decimal.NewFromInt(5))
	require.Error(t, err)
	assert.Equal(t, "unsupported currency", err.Error())
}
