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
	"github.com/ushuru-digital/app-tsp/internal/tax"
	"go.uber.org/zap"
)

// Global notification service instance
var NotificationServiceInstance *NotificationService

const (
	// NotificationQueue is the Redis list the dispatch worker drains
	NotificationQueue = "notify:queue:whatsapp"

	// notifySentKeyPrefix marks attempts that already had a notification
	// enqueued; the SetNX on this key is what makes delivery at-most-once
	// per attempt.
	notifySentKeyPrefix = "notify:sent:"

	// notifySentTTL keeps dedupe keys around long enough to cover any
	// realistic resume of the same attempt
	notifySentTTL = 7 * 24 * time.Hour
)

// NotificationJob is one queued WhatsApp notification
type NotificationJob struct {
	AttemptID  string    `json:"attempt_id"`
	Msisdn     string    `json:"msisdn"`
	Message    string    `json:"message"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	RetryCount int       `json:"retry_count"`
	MaxRetries int       `json:"max_retries"`
}

// notifyRedis is the slice of the Redis wrapper the enqueue path needs.
// *redisclient.Client satisfies it; tests substitute an in-memory double.
type notifyRedis interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ notifyRedis = (*redisclient.Client)(nil)

// NotificationService enqueues result notifications. Delivery is
// best-effort and decoupled from the filing sequence via a Redis queue.
type NotificationService struct {
	redis      notifyRedis
	maxRetries int
	logger     *logging.SafeLogger
}

// NewNotificationService creates a new notification service
func NewNotificationService(redis notifyRedis, maxRetries int, logger *logging.SafeLogger) *NotificationService {
	return &NotificationService{
		redis:      redis,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// InitNotificationService initializes the global notification service instance
func InitNotificationService() {
	NotificationServiceInstance = NewNotificationService(
		config.Redis,
		config.AppConfig.NotifyMaxRetries,
		logging.Logger.Named("notification_service"),
	)
}

// EnqueueFilingResult queues a WhatsApp summary for a completed attempt.
// At most one notification is ever enqueued per attempt.
func (s *NotificationService) EnqueueFilingResult(ctx context.Context, attempt *models.FilingAttempt) error {
	set, err := s.redis.SetNX(ctx, notifySentKeyPrefix+attempt.ID, "1", notifySentTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to check notification dedupe key: %w", err)
	}
	if !set {
		s.logger.Debug("notification already enqueued for attempt",
			zap.String("attempt_id", attempt.ID))
		return nil
	}

	job := NotificationJob{
		AttemptID:  attempt.ID,
		Msisdn:     attempt.Msisdn,
		Message:    BuildFilingMessage(attempt),
		EnqueuedAt: time.Now(),
		MaxRetries: s.maxRetries,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode notification job: %w", err)
	}

	if err := s.redis.LPush(ctx, NotificationQueue, data).Err(); err != nil {
		// Roll the dedupe key back so a later resume can still notify
		if delErr := s.redis.Del(ctx, notifySentKeyPrefix+attempt.ID).Err(); delErr != nil {
			s.logger.Warn("failed to release notification dedupe key",
				zap.String("attempt_id", attempt.ID),
				zap.Error(delErr))
		}
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	s.logger.Info("result notification enqueued",
		zap.String("attempt_id", attempt.ID),
		zap.String("msisdn", observability.MaskMSISDN(attempt.Msisdn)))
	return nil
}

// BuildFilingMessage renders the human-readable result summary shown on
// the wizard result page and sent via WhatsApp. Partial completion is
// reported as-is; nothing is described as rolled back.
func BuildFilingMessage(attempt *models.FilingAttempt) string {
	obligationName := obligationDisplayName(attempt.Obligation)

	if attempt.FailedStep != "" {
		switch attempt.FailedStep {
		case models.StepFileReturn:
			return fmt.Sprintf("%s return could not be filed: %s", obligationName, attempt.LastError)
		case models.StepGeneratePRN:
			return fmt.Sprintf("%s return filed (receipt %s), but payment slip generation failed: %s. Retry to continue from where you left off.",
				obligationName, attempt.ReceiptNumber, attempt.LastError)
		case models.StepMakePayment:
			return fmt.Sprintf("%s return filed (receipt %s) and payment slip %s generated, but the payment prompt failed: %s. Pay using the slip number or retry.",
				obligationName, attempt.ReceiptNumber, attempt.PRN, attempt.LastError)
		}
	}

	switch attempt.State {
	case models.StateFiled:
		return fmt.Sprintf("%s return for %s filed successfully. Receipt number %s. Tax due KES %s.",
			obligationName, attempt.Period, attempt.ReceiptNumber, attempt.TaxDue)
	case models.StatePRNReady:
		return fmt.Sprintf("%s return filed (receipt %s). Pay KES %s using slip number %s.",
			obligationName, attempt.ReceiptNumber, attempt.TaxDue, attempt.PRN)
	case models.StatePaymentInitiated:
		if attempt.Mode == models.PayModePayNow {
			return fmt.Sprintf("Payment of KES %s initiated. Check your phone to authorise the payment.", attempt.TaxDue)
		}
		return fmt.Sprintf("%s return for %s filed successfully (receipt %s) and a payment of KES %s was initiated. Check your phone to authorise the payment.",
			obligationName, attempt.Period, attempt.ReceiptNumber, attempt.TaxDue)
	default:
		return fmt.Sprintf("%s filing for %s is in progress.", obligationName, attempt.Period)
	}
}

func obligationDisplayName(o tax.Obligation) string {
	switch o {
	case tax.ObligationMRI:
		return "Monthly rental income"
	case tax.ObligationTOT:
		return "Turnover tax"
	case tax.ObligationNIL:
		return "NIL"
	default:
		return string(o)
	}
}
