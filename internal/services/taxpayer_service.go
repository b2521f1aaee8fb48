package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/gateway"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"github.com/ushuru-digital/app-tsp/internal/redisclient"
	"github.com/ushuru-digital/app-tsp/internal/utils"
	"go.uber.org/zap"
)

// Global taxpayer service instance
var TaxpayerServiceInstance *TaxpayerService

// TaxAuthorityGateway is the slice of the external API the taxpayer and
// filing services depend on. Narrow interface so tests can substitute a fake.
type TaxAuthorityGateway interface {
	Lookup(ctx context.Context, params gateway.LookupParams) (*gateway.LookupResult, error)
	RegisterPIN(ctx context.Context, params gateway.RegisterPINParams) (string, error)
	FileReturn(ctx context.Context, params gateway.FileReturnParams) (string, error)
	GeneratePRN(ctx context.Context, params gateway.GeneratePRNParams) (string, error)
	MakePayment(ctx context.Context, params gateway.MakePaymentParams) error
	Liabilities(ctx context.Context, pin string) ([]models.Liability, error)
}

// TaxpayerService handles identity validation, PIN retrieval/registration
// and liability lookups.
type TaxpayerService struct {
	gateway  TaxAuthorityGateway
	sessions *SessionService
	redis    *redisclient.Client
	cacheTTL time.Duration
	logger   *logging.SafeLogger
}

// NewTaxpayerService creates a new taxpayer service
func NewTaxpayerService(gw TaxAuthorityGateway, sessions *SessionService, redis *redisclient.Client, cacheTTL time.Duration, logger *logging.SafeLogger) *TaxpayerService {
	return &TaxpayerService{
		gateway:  gw,
		sessions: sessions,
		redis:    redis,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// InitTaxpayerService initializes the global taxpayer service instance
func InitTaxpayerService(gw TaxAuthorityGateway) {
	TaxpayerServiceInstance = NewTaxpayerService(
		gw,
		SessionServiceInstance,
		config.Redis,
		config.AppConfig.LookupCacheTTL,
		logging.Logger.Named("taxpayer_service"),
	)
}

func lookupCacheKey(idNumber string, yearOfBirth int) string {
	return fmt.Sprintf("lookup:id:%s:%d", idNumber, yearOfBirth)
}

// validateIdentityInput rejects malformed input before any network call
func validateIdentityInput(idNumber string, yearOfBirth int) error {
	if !utils.ValidateIDNumber(idNumber) {
		return models.ErrInvalidIDNumber
	}
	if !utils.ValidateYearOfBirth(yearOfBirth) {
		return models.ErrInvalidYearOfBirth
	}
	return nil
}

// Validate resolves a taxpayer identity from ID number and year of birth
// and advances the caller's session with the resolved name and PIN.
func (s *TaxpayerService) Validate(ctx context.Context, req models.ValidateTaxpayerRequest) (*models.ValidateTaxpayerResponse, error) {
	if err := validateIdentityInput(req.IDNumber, req.YearOfBirth); err != nil {
		return nil, err
	}

	msisdn, err := utils.NormalizeMSISDN(req.Msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}

	result, err := s.lookup(ctx, req.IDNumber, msisdn, req.YearOfBirth)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Bootstrap(ctx, msisdn)
	if err != nil {
		return nil, err
	}
	session.IDNumber = req.IDNumber
	session.YearOfBirth = req.YearOfBirth
	session.FullName = result.Name
	session.Pin = result.Pin
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("taxpayer validated",
		zap.String("id_number", observability.MaskIDNumber(req.IDNumber)),
		zap.String("pin", observability.MaskPIN(result.Pin)))

	return &models.ValidateTaxpayerResponse{FullName: result.Name, Pin: result.Pin}, nil
}

// RetrievePin looks up the PIN registered against an ID number
func (s *TaxpayerService) RetrievePin(ctx context.Context, req models.PinRetrieveRequest) (*models.ValidateTaxpayerResponse, error) {
	if err := validateIdentityInput(req.IDNumber, req.YearOfBirth); err != nil {
		return nil, err
	}

	msisdn, err := utils.NormalizeMSISDN(req.Msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}

	result, err := s.lookup(ctx, req.IDNumber, msisdn, req.YearOfBirth)
	if err != nil {
		return nil, err
	}
	return &models.ValidateTaxpayerResponse{FullName: result.Name, Pin: result.Pin}, nil
}

// RegisterPin submits a new PIN registration
func (s *TaxpayerService) RegisterPin(ctx context.Context, req models.PinRegisterRequest) (*models.PinRegisterResponse, error) {
	if err := validateIdentityInput(req.IDNumber, req.YearOfBirth); err != nil {
		return nil, err
	}

	msisdn, err := utils.NormalizeMSISDN(req.Msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}

	pin, err := s.gateway.RegisterPIN(ctx, gateway.RegisterPINParams{
		IDNumber:    req.IDNumber,
		Msisdn:      msisdn,
		YearOfBirth: req.YearOfBirth,
		FullName:    req.FullName,
		Email:       req.Email,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("PIN registered",
		zap.String("id_number", observability.MaskIDNumber(req.IDNumber)),
		zap.String("pin", observability.MaskPIN(pin)))

	return &models.PinRegisterResponse{Pin: pin}, nil
}

// LiabilitySummary fetches outstanding liabilities for a PIN and sums the
// per-component totals.
func (s *TaxpayerService) LiabilitySummary(ctx context.Context, pin string) (*models.LiabilitySummary, error) {
	if !utils.ValidatePIN(pin) {
		return nil, models.ErrInvalidPIN
	}

	liabilities, err := s.gateway.Liabilities(ctx, pin)
	if err != nil {
		return nil, err
	}

	summary := models.SummarizeLiabilities(liabilities)
	return &summary, nil
}

// lookup performs the identity lookup with a short-lived Redis cache in
// front of the external API.
func (s *TaxpayerService) lookup(ctx context.Context, idNumber, msisdn string, yearOfBirth int) (*gateway.LookupResult, error) {
	cacheKey := lookupCacheKey(idNumber, yearOfBirth)

	if data, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
		var cached gateway.LookupResult
		if json.Unmarshal([]byte(data), &cached) == nil {
			observability.CacheHits.WithLabelValues("taxpayer_lookup").Inc()
			return &cached, nil
		}
	} else if err != redis.Nil {
		s.logger.Warn("lookup cache read failed", zap.Error(err))
	}

	result, err := s.gateway.Lookup(ctx, gateway.LookupParams{
		IDNumber:    idNumber,
		Msisdn:      msisdn,
		YearOfBirth: yearOfBirth,
	})
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("lookup cache write failed", zap.Error(err))
		}
	}

	return result, nil
}
