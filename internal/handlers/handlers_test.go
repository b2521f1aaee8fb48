package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/ushuru-digital/app-tsp/internal/gateway"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/services"
	"github.com/ushuru-digital/app-tsp/internal/tax"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid id", models.ErrInvalidIDNumber, http.StatusBadRequest},
		{"invalid pin", models.ErrInvalidPIN, http.StatusBadRequest},
		{"invalid msisdn", models.ErrInvalidMSISDN, http.StatusBadRequest},
		{"validation error", models.Validationf("unknown obligation %q", "vat"), http.StatusBadRequest},
		{"attempt not found", models.ErrAttemptNotFound, http.StatusNotFound},
		{"invoice not found", models.ErrInvoiceNotFound, http.StatusNotFound},
		{"duplicate filing", models.ErrDuplicateFiling, http.StatusConflict},
		{"upstream failure", errors.New("filing backend unavailable"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/t", func(c *gin.Context) { respondError(c, tt.err) })

			w := performRequest(router, http.MethodGet, "/t", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.err.Error())
		})
	}
}

func TestStartFiling_MalformedBody(t *testing.T) {
	router := gin.New()
	router.POST("/filing", StartFiling)

	w := performRequest(router, http.MethodPost, "/filing", `{"msisdn": 42}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartFiling_MissingRequiredFields(t *testing.T) {
	router := gin.New()
	router.POST("/filing", StartFiling)

	w := performRequest(router, http.MethodPost, "/filing", `{"msisdn":"0712345678"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateTaxpayer_MalformedBody(t *testing.T) {
	router := gin.New()
	router.POST("/taxpayer/validate", ValidateTaxpayer)

	w := performRequest(router, http.MethodPost, "/taxpayer/validate", `not-json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListInvoices_RequiresMsisdn(t *testing.T) {
	router := gin.New()
	router.GET("/invoices", ListInvoices)

	w := performRequest(router, http.MethodGet, "/invoices", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "msisdn")
}

func TestGetHSCategories_RequiresCode(t *testing.T) {
	router := gin.New()
	router.GET("/customs/categories", GetHSCategories)

	w := performRequest(router, http.MethodGet, "/customs/categories", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCashValue_RejectsBadAmount(t *testing.T) {
	router := gin.New()
	router.GET("/customs/cash-value", GetCashValue)

	w := performRequest(router, http.MethodGet, "/customs/cash-value?currency=USD&amount=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "amount")
}

// stubAttemptStore satisfies services.AttemptStore for handler tests; the
// requests exercised here are rejected before the store is ever written.
type stubAttemptStore struct{}

func (stubAttemptStore) Insert(context.Context, *models.FilingAttempt) error { return nil }
func (stubAttemptStore) Update(context.Context, *models.FilingAttempt) error { return nil }
func (stubAttemptStore) FindByID(context.Context, string) (*models.FilingAttempt, error) {
	return nil, models.ErrAttemptNotFound
}
func (stubAttemptStore) FindByIdempotencyKey(context.Context, string) (*models.FilingAttempt, error) {
	return nil, nil
}
func (stubAttemptStore) FindActive(context.Context, string, tax.Obligation, string) (*models.FilingAttempt, error) {
	return nil, nil
}

type stubGateway struct{}

func (stubGateway) Lookup(context.Context, gateway.LookupParams) (*gateway.LookupResult, error) {
	return &gateway.LookupResult{}, nil
}
func (stubGateway) RegisterPIN(context.Context, gateway.RegisterPINParams) (string, error) {
	return "", nil
}
func (stubGateway) FileReturn(context.Context, gateway.FileReturnParams) (string, error) {
	return "RCT-001", nil
}
func (stubGateway) GeneratePRN(context.Context, gateway.GeneratePRNParams) (string, error) {
	return "PRN123", nil
}
func (stubGateway) MakePayment(context.Context, gateway.MakePaymentParams) error { return nil }
func (stubGateway) Liabilities(context.Context, string) ([]models.Liability, error) {
	return nil, nil
}

func TestStartFiling_InvalidInputReturns400(t *testing.T) {
	services.FilingServiceInstance = services.NewFilingService(stubAttemptStore{}, stubGateway{}, nil, logging.Logger)
	defer func() { services.FilingServiceInstance = nil }()

	router := gin.New()
	router.POST("/filing", StartFiling)

	tests := []struct {
		name string
		body string
	}{
		{
			"malformed period",
			`{"msisdn":"0712345678","pin":"A012345678Z","obligation":"mri","period":"June 2024","amount":"50000","mode":"file-only"}`,
		},
		{
			"unknown obligation",
			`{"msisdn":"0712345678","pin":"A012345678Z","obligation":"vat","period":"01/06/2024 - 30/06/2024","amount":"50000","mode":"file-only"}`,
		},
		{
			"nil return with payment",
			`{"msisdn":"0712345678","pin":"A012345678Z","obligation":"nil","period":"01/06/2024 - 30/06/2024","amount":"0","mode":"file-and-pay"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/filing", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "client input errors are 400, not an upstream failure")
		})
	}
}

func TestStartFiling_ServiceUnavailable(t *testing.T) {
	router := gin.New()
	router.POST("/filing", StartFiling)

	body := `{"msisdn":"0712345678","pin":"A012345678Z","obligation":"mri","period":"01/06/2024 - 30/06/2024","amount":"50000","mode":"file-only"}`
	w := performRequest(router, http.MethodPost, "/filing", body)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
