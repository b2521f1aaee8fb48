package services

import (
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/gateway"
	"github.com/ushuru-digital/app-tsp/internal/logging"
)

// InitServices initializes all global service instances. Config, Mongo and
// Redis must already be initialized.
func InitServices() {
	taxGateway := gateway.NewClient(
		config.AppConfig.EtaxBaseURL,
		config.AppConfig.EtaxAPIKey,
		config.AppConfig.EtaxTimeout,
		logging.Logger.Named("etax_gateway"),
	)
	customsGateway := gateway.NewCustomsClient(
		config.AppConfig.CustomsBaseURL,
		config.AppConfig.CustomsAPIKey,
		config.AppConfig.EtaxTimeout,
		logging.Logger.Named("customs_gateway"),
	)

	InitSessionService()
	InitNotificationService()
	InitTaxpayerService(taxGateway)
	InitFilingService(taxGateway, NotificationServiceInstance)
	InitInvoiceService()
	InitPayrollService()
	InitCustomsService(customsGateway)
}
