package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ushuru-digital/app-tsp/internal/models"
)

// ErrorResponse is the error payload for all endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a minimal acknowledgement payload
type SuccessResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service and dependency health
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// respondError maps service errors to HTTP statuses. Validation errors are
// 400, missing records 404, duplicate filings 409, everything else 502/500
// depending on whether the failure came from the upstream API.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidIDNumber),
		errors.Is(err, models.ErrInvalidYearOfBirth),
		errors.Is(err, models.ErrInvalidPIN),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidMSISDN):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrAttemptNotFound),
		errors.Is(err, models.ErrInvoiceNotFound),
		errors.Is(err, models.ErrEmployeeNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrDuplicateFiling):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}
}
