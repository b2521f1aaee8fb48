package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"github.com/ushuru-digital/app-tsp/internal/services"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StartFiling godoc
// @Summary Start a filing attempt
// @Description Validates the request, records a filing attempt and runs the file/PRN/payment sequence. A failure halts the sequence; the partial result is returned and can be resumed.
// @Tags filing
// @Accept json
// @Produce json
// @Param request body models.FilingRequest true "Filing details"
// @Success 200 {object} models.FilingResult
// @Failure 400 {object} ErrorResponse "Invalid input, rejected before any external call"
// @Failure 409 {object} ErrorResponse "A return for this PIN and period already exists"
// @Failure 502 {object} ErrorResponse
// @Router /filing [post]
func StartFiling(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "StartFiling")
	defer span.End()

	var req models.FilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("obligation", string(req.Obligation)),
		attribute.String("mode", string(req.Mode)),
	)
	logger := observability.Logger().With(
		zap.String("obligation", string(req.Obligation)),
		zap.String("mode", string(req.Mode)),
		zap.String("pin", observability.MaskPIN(req.Pin)))

	if services.FilingServiceInstance == nil {
		logger.Error("filing service not initialized")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "filing service unavailable"})
		return
	}

	result, err := services.FilingServiceInstance.Start(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResumeFiling godoc
// @Summary Resume a filing attempt
// @Description Continues a partially-completed attempt from its last successful step, reusing the receipt and PRN already obtained.
// @Tags filing
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.FilingResult
// @Failure 404 {object} ErrorResponse "Unknown attempt"
// @Failure 502 {object} ErrorResponse
// @Router /filing/{id}/resume [post]
func ResumeFiling(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ResumeFiling")
	defer span.End()

	if services.FilingServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "filing service unavailable"})
		return
	}

	result, err := services.FilingServiceInstance.Resume(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFiling godoc
// @Summary Filing attempt status
// @Description Returns the current state and result summary of a filing attempt.
// @Tags filing
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.FilingResult
// @Failure 404 {object} ErrorResponse
// @Router /filing/{id} [get]
func GetFiling(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "GetFiling")
	defer span.End()

	if services.FilingServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "filing service unavailable"})
		return
	}

	result, err := services.FilingServiceInstance.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
