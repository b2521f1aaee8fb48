package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"github.com/ushuru-digital/app-tsp/internal/services"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// ValidateTaxpayer godoc
// @Summary Validate taxpayer identity
// @Description Resolves the taxpayer name and PIN from ID number and year of birth, and advances the session.
// @Tags taxpayer
// @Accept json
// @Produce json
// @Param request body models.ValidateTaxpayerRequest true "Identity details"
// @Success 200 {object} models.ValidateTaxpayerResponse
// @Failure 400 {object} ErrorResponse "Malformed ID number, year of birth or phone"
// @Failure 502 {object} ErrorResponse "Lookup rejected by the tax authority API"
// @Router /taxpayer/validate [post]
func ValidateTaxpayer(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ValidateTaxpayer")
	defer span.End()

	var req models.ValidateTaxpayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	logger := observability.Logger().With(
		zap.String("id_number", observability.MaskIDNumber(req.IDNumber)))

	if services.TaxpayerServiceInstance == nil {
		logger.Error("taxpayer service not initialized")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "taxpayer service unavailable"})
		return
	}

	resp, err := services.TaxpayerServiceInstance.Validate(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RetrievePin godoc
// @Summary Retrieve a taxpayer PIN
// @Description Looks up the PIN registered against an ID number and year of birth.
// @Tags taxpayer
// @Accept json
// @Produce json
// @Param request body models.PinRetrieveRequest true "Identity details"
// @Success 200 {object} models.ValidateTaxpayerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /taxpayer/pin/retrieve [post]
func RetrievePin(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "RetrievePin")
	defer span.End()

	var req models.PinRetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if services.TaxpayerServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "taxpayer service unavailable"})
		return
	}

	resp, err := services.TaxpayerServiceInstance.RetrievePin(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterPin godoc
// @Summary Register a new taxpayer PIN
// @Description Submits a PIN registration and returns the issued PIN.
// @Tags taxpayer
// @Accept json
// @Produce json
// @Param request body models.PinRegisterRequest true "Registration details"
// @Success 201 {object} models.PinRegisterResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /taxpayer/pin/register [post]
func RegisterPin(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "RegisterPin")
	defer span.End()

	var req models.PinRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if services.TaxpayerServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "taxpayer service unavailable"})
		return
	}

	resp, err := services.TaxpayerServiceInstance.RegisterPin(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetLiabilities godoc
// @Summary Outstanding liability summary
// @Description Fetches outstanding liabilities for a PIN with per-component and grand totals.
// @Tags taxpayer
// @Produce json
// @Param pin path string true "Taxpayer PIN"
// @Success 200 {object} models.LiabilitySummary
// @Failure 400 {object} ErrorResponse "Invalid PIN format"
// @Failure 502 {object} ErrorResponse
// @Router /taxpayer/{pin}/liabilities [get]
func GetLiabilities(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "GetLiabilities")
	defer span.End()

	if services.TaxpayerServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "taxpayer service unavailable"})
		return
	}

	summary, err := services.TaxpayerServiceInstance.LiabilitySummary(ctx, c.Param("pin"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
