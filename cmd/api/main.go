package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/handlers"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/middleware"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"github.com/ushuru-digital/app-tsp/internal/services"
	"go.uber.org/zap"

	_ "github.com/ushuru-digital/app-tsp/docs"
)

// @title           Tax Self-service Portal API
// @version         1.0
// @description     Backend for the mobile tax self-service portal: taxpayer validation, return filing and payment orchestration, eTIMS invoicing, payroll and customs support.

// @host      localhost:8080
// @BasePath  /v1

// @tag.name session
// @tag.description Per-phone wizard session state

// @tag.name taxpayer
// @tag.description Identity validation, PIN services and liabilities

// @tag.name filing
// @tag.description Return filing and payment orchestration

// @tag.name invoicing
// @tag.description eTIMS invoices and credit notes

// @tag.name payroll
// @tag.description Employer payroll records

// @tag.name customs
// @tag.description Traveller declaration support

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	// Initialize observability
	observability.InitTracer()
	defer observability.ShutdownTracer()

	// Initialize database connections
	config.InitMongoDB()
	config.InitRedis()

	// Initialize services
	services.InitServices()

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.Default(),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		v1.GET("/session/:msisdn", handlers.GetSession)
		v1.POST("/session/:msisdn", handlers.SaveSession)
		v1.DELETE("/session/:msisdn", handlers.ClearSession)

		v1.POST("/taxpayer/validate", handlers.ValidateTaxpayer)
		v1.POST("/taxpayer/pin/retrieve", handlers.RetrievePin)
		v1.POST("/taxpayer/pin/register", handlers.RegisterPin)
		v1.GET("/taxpayer/:pin/liabilities", handlers.GetLiabilities)

		v1.POST("/filing", handlers.StartFiling)
		v1.POST("/filing/:id/resume", handlers.ResumeFiling)
		v1.GET("/filing/:id", handlers.GetFiling)

		v1.POST("/invoices", handlers.CreateInvoice)
		v1.GET("/invoices", handlers.ListInvoices)
		v1.POST("/credit-notes", handlers.CreateCreditNote)

		v1.POST("/payroll/:pin/employees", handlers.AddEmployee)
		v1.GET("/payroll/:pin/employees", handlers.ListEmployees)
		v1.DELETE("/payroll/:pin/employees/:id", handlers.RemoveEmployee)

		v1.POST("/customs/countries", handlers.AddCountries)
		v1.GET("/customs/countries/:msisdn", handlers.GetCountries)
		v1.POST("/customs/items", handlers.SaveItem)
		v1.GET("/customs/items/:msisdn", handlers.ListItems)
		v1.GET("/customs/categories", handlers.GetHSCategories)
		v1.GET("/customs/cash-value", handlers.GetCashValue)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", config.AppConfig.Port),
			zap.String("environment", config.AppConfig.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("server exited gracefully")
}
