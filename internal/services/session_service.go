package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"github.com/ushuru-digital/app-tsp/internal/redisclient"
	"github.com/ushuru-digital/app-tsp/internal/utils"
	"go.uber.org/zap"
)

// Global session service instance
var SessionServiceInstance *SessionService

// SessionService stores per-phone wizard state in Redis. Sessions are
// volatile: TTL-bound, overwritten wholesale on save, and loaded fresh on
// each request instead of being held in ambient process state.
type SessionService struct {
	redis  *redisclient.Client
	ttl    time.Duration
	logger *logging.SafeLogger
}

// NewSessionService creates a new session service
func NewSessionService(redis *redisclient.Client, ttl time.Duration, logger *logging.SafeLogger) *SessionService {
	return &SessionService{
		redis:  redis,
		ttl:    ttl,
		logger: logger,
	}
}

// InitSessionService initializes the global session service instance
func InitSessionService() {
	SessionServiceInstance = NewSessionService(config.Redis, config.AppConfig.SessionTTL, logging.Logger.Named("session_service"))
}

func sessionKey(msisdn string) string {
	return "session:" + msisdn
}

// Bootstrap loads the session for a phone number, creating an empty one if
// none exists. The phone number is normalized before use so all session
// keys are E.164.
func (s *SessionService) Bootstrap(ctx context.Context, msisdn string) (*models.TaxpayerSession, error) {
	normalized, err := utils.NormalizeMSISDN(msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}

	session, err := s.Get(ctx, normalized)
	if err == nil {
		observability.CacheHits.WithLabelValues("session_get").Inc()
		return session, nil
	}
	if err != models.ErrSessionNotFound {
		return nil, err
	}

	session = &models.TaxpayerSession{
		Msisdn:    normalized,
		UpdatedAt: time.Now(),
	}
	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Debug("session bootstrapped", zap.String("msisdn", observability.MaskMSISDN(normalized)))
	return session, nil
}

// Get loads an existing session
func (s *SessionService) Get(ctx context.Context, msisdn string) (*models.TaxpayerSession, error) {
	normalized, err := utils.NormalizeMSISDN(msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}

	data, err := s.redis.Get(ctx, sessionKey(normalized)).Result()
	if err == redis.Nil {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.TaxpayerSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Save overwrites the session wholesale and refreshes its TTL
func (s *SessionService) Save(ctx context.Context, session *models.TaxpayerSession) error {
	normalized, err := utils.NormalizeMSISDN(session.Msisdn)
	if err != nil {
		return models.ErrInvalidMSISDN
	}
	session.Msisdn = normalized
	session.UpdatedAt = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.redis.Set(ctx, sessionKey(normalized), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Clear removes the session ("return home" / logout)
func (s *SessionService) Clear(ctx context.Context, msisdn string) error {
	normalized, err := utils.NormalizeMSISDN(msisdn)
	if err != nil {
		return models.ErrInvalidMSISDN
	}

	if err := s.redis.Del(ctx, sessionKey(normalized)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.logger.Debug("session cleared", zap.String("msisdn", observability.MaskMSISDN(normalized)))
	return nil
}
