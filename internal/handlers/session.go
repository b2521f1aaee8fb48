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

// GetSession godoc
// @Summary Load or bootstrap a session
// @Description Loads the wizard session for a phone number, creating an empty one if none exists.
// @Tags session
// @Produce json
// @Param msisdn path string true "Phone number (E.164 or local Kenyan format)"
// @Success 200 {object} models.TaxpayerSession
// @Failure 400 {object} ErrorResponse "Invalid phone number"
// @Failure 500 {object} ErrorResponse
// @Router /session/{msisdn} [get]
func GetSession(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "GetSession")
	defer span.End()

	msisdn := c.Param("msisdn")
	logger := observability.Logger().With(zap.String("msisdn", observability.MaskMSISDN(msisdn)))

	if services.SessionServiceInstance == nil {
		logger.Error("session service not initialized")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "session service unavailable"})
		return
	}

	session, err := services.SessionServiceInstance.Bootstrap(ctx, msisdn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SaveSession godoc
// @Summary Overwrite session state
// @Description Replaces the wizard session for a phone number wholesale and refreshes its TTL.
// @Tags session
// @Accept json
// @Produce json
// @Param msisdn path string true "Phone number"
// @Param session body models.TaxpayerSession true "Session state"
// @Success 200 {object} models.TaxpayerSession
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /session/{msisdn} [post]
func SaveSession(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "SaveSession")
	defer span.End()

	var session models.TaxpayerSession
	if err := c.ShouldBindJSON(&session); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	session.Msisdn = c.Param("msisdn")

	if services.SessionServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "session service unavailable"})
		return
	}

	if err := services.SessionServiceInstance.Save(ctx, &session); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ClearSession godoc
// @Summary Clear a session
// @Description Removes the wizard session for a phone number.
// @Tags session
// @Produce json
// @Param msisdn path string true "Phone number"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /session/{msisdn} [delete]
func ClearSession(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ClearSession")
	defer span.End()

	if services.SessionServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "session service unavailable"})
		return
	}

	if err := services.SessionServiceInstance.Clear(ctx, c.Param("msisdn")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "session cleared"})
}
