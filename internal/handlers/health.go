package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"go.uber.org/zap"
)

// HealthCheck godoc
// @Summary Service health
// @Description Reports the health of the service and its MongoDB and Redis dependencies.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "All dependencies reachable"
// @Failure 503 {object} HealthResponse "One or more dependencies unreachable"
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	logger := observability.Logger()

	health := HealthResponse{
		Status:   "healthy",
		Services: map[string]string{},
	}

	if err := config.MongoDB.Client().Ping(ctx, nil); err != nil {
		logger.Error("mongodb health check failed", zap.Error(err))
		health.Status = "unhealthy"
		health.Services["mongodb"] = "unhealthy"
	} else {
		health.Services["mongodb"] = "healthy"
	}

	if err := config.Redis.Ping(ctx).Err(); err != nil {
		logger.Error("redis health check failed", zap.Error(err))
		health.Status = "unhealthy"
		health.Services["redis"] = "unhealthy"
	} else {
		health.Services["redis"] = "healthy"
	}

	if health.Status == "healthy" {
		c.JSON(http.StatusOK, health)
		return
	}
	c.JSON(http.StatusServiceUnavailable, health)
}
