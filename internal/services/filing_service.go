package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/gateway"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"github.com/ushuru-digital/app-tsp/internal/tax"
	"github.com/ushuru-digital/app-tsp/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Global filing service instance
var FilingServiceInstance *FilingService

// AttemptStore persists filing attempts. Mongo in production; tests use an
// in-memory fake.
type AttemptStore interface {
	Insert(ctx context.Context, attempt *models.FilingAttempt) error
	Update(ctx context.Context, attempt *models.FilingAttempt) error
	FindByID(ctx context.Context, id string) (*models.FilingAttempt, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.FilingAttempt, error)
	FindActive(ctx context.Context, pin string, obligation tax.Obligation, period string) (*models.FilingAttempt, error)
}

// FilingNotifier enqueues a result notification for a completed attempt
type FilingNotifier interface {
	EnqueueFilingResult(ctx context.Context, attempt *models.FilingAttempt) error
}

// FilingService orchestrates the file-return / generate-PRN / make-payment
// sequence. Each attempt is a persisted state machine: every transition is
// written before the next external call, a failure halts the sequence at
// the last successful state, and a resume continues from there reusing the
// receipt and PRN already obtained. Nothing is ever rolled back.
type FilingService struct {
	store    AttemptStore
	gateway  TaxAuthorityGateway
	notifier FilingNotifier
	logger   *logging.SafeLogger
}

// NewFilingService creates a new filing service
func NewFilingService(store AttemptStore, gw TaxAuthorityGateway, notifier FilingNotifier, logger *logging.SafeLogger) *FilingService {
	return &FilingService{
		store:    store,
		gateway:  gw,
		notifier: notifier,
		logger:   logger,
	}
}

// InitFilingService initializes the global filing service instance
func InitFilingService(gw TaxAuthorityGateway, notifier FilingNotifier) {
	store := NewMongoAttemptStore(config.MongoDB, config.AppConfig.FilingAttemptCollection)
	FilingServiceInstance = NewFilingService(store, gw, notifier, logging.Logger.Named("filing_service"))
}

// Start validates a filing request, persists a new attempt and runs the
// sequence. All validation happens before the attempt is recorded and
// before any external call.
func (s *FilingService) Start(ctx context.Context, req models.FilingRequest) (*models.FilingResult, error) {
	msisdn, err := utils.NormalizeMSISDN(req.Msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}
	if !utils.ValidatePIN(req.Pin) {
		return nil, models.ErrInvalidPIN
	}
	if !req.Obligation.Valid() {
		return nil, models.Validationf("unknown obligation %q", req.Obligation)
	}
	if !req.Mode.Valid() {
		return nil, models.Validationf("unknown payment mode %q", req.Mode)
	}
	if req.Obligation == tax.ObligationNIL && req.Mode != models.PayModeFileOnly {
		return nil, models.Validationf("nil returns cannot include a payment step")
	}
	if req.Amount.IsNegative() {
		return nil, models.ErrInvalidAmount
	}
	period, err := tax.ParsePeriod(req.Period)
	if err != nil {
		return nil, models.Validationf("%s", err)
	}

	taxDue, err := s.taxDue(req)
	if err != nil {
		return nil, err
	}

	// Idempotent replay: the same key returns the existing attempt
	if req.IdempotencyKey != "" {
		if existing, err := s.store.FindByIdempotencyKey(ctx, req.IdempotencyKey); err == nil && existing != nil {
			s.logger.Info("filing request replayed", zap.String("attempt_id", existing.ID))
			return s.result(existing), nil
		}
	}

	// Duplicate guard: an attempt for the same PIN, obligation and period
	// blocks a second filing; the first one is resumed instead.
	if existing, err := s.store.FindActive(ctx, req.Pin, req.Obligation, period.String()); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.ErrDuplicateFiling
	}

	now := time.Now()
	attempt := &models.FilingAttempt{
		ID:             uuid.NewString(),
		IdempotencyKey: req.IdempotencyKey,
		Msisdn:         msisdn,
		Pin:            req.Pin,
		Obligation:     req.Obligation,
		Period:         period.String(),
		Amount:         tax.FormatAmount(req.Amount),
		TaxDue:         tax.FormatAmount(taxDue),
		Mode:           req.Mode,
		State:          models.StateValidated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if attempt.IdempotencyKey == "" {
		attempt.IdempotencyKey = uuid.NewString()
	}

	// The attempt is persisted before the first external call so a crash
	// mid-sequence leaves a resumable record.
	if err := s.store.Insert(ctx, attempt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicateFiling
		}
		return nil, fmt.Errorf("failed to record filing attempt: %w", err)
	}

	s.logger.Info("filing attempt started",
		zap.String("attempt_id", attempt.ID),
		zap.String("obligation", string(attempt.Obligation)),
		zap.String("mode", string(attempt.Mode)),
		zap.String("pin", observability.MaskPIN(attempt.Pin)))

	s.runSequence(ctx, attempt)
	return s.result(attempt), nil
}

// Resume continues a partially-completed attempt from its last successful
// state. Completed attempts are returned as-is.
func (s *FilingService) Resume(ctx context.Context, id string) (*models.FilingResult, error) {
	attempt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt.Done() {
		return s.result(attempt), nil
	}

	attempt.FailedStep = ""
	attempt.LastError = ""

	s.logger.Info("filing attempt resumed",
		zap.String("attempt_id", attempt.ID),
		zap.String("state", string(attempt.State)))

	s.runSequence(ctx, attempt)
	return s.result(attempt), nil
}

// Get returns the current status of an attempt
func (s *FilingService) Get(ctx context.Context, id string) (*models.FilingResult, error) {
	attempt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.result(attempt), nil
}

// taxDue computes the tax owed for the request. Filing modes apply the
// obligation rate to the declared income; pay-now pays an already-assessed
// amount as given.
func (s *FilingService) taxDue(req models.FilingRequest) (decimal.Decimal, error) {
	if req.Mode == models.PayModePayNow {
		return req.Amount.Round(2), nil
	}
	return tax.Compute(req.Amount, req.Obligation)
}

// runSequence advances the attempt through its remaining steps. A step
// failure records the step and error, persists, and halts; earlier steps
// are never repeated and never rolled back.
func (s *FilingService) runSequence(ctx context.Context, attempt *models.FilingAttempt) {
	period, err := tax.ParsePeriod(attempt.Period)
	if err != nil {
		// Period was validated at Start; a parse failure here means the record is corrupt
		s.fail(ctx, attempt, models.StepFileReturn, err)
		return
	}

	if attempt.Mode != models.PayModePayNow && attempt.State == models.StateValidated {
		if !s.fileReturn(ctx, attempt) {
			return
		}
	}

	if attempt.Mode == models.PayModeFileOnly {
		s.complete(ctx, attempt)
		return
	}

	if attempt.PRN == "" {
		if !s.generatePRN(ctx, attempt, period) {
			return
		}
	}

	if attempt.State != models.StatePaymentInitiated {
		if !s.makePayment(ctx, attempt) {
			return
		}
	}

	s.complete(ctx, attempt)
}

func (s *FilingService) fileReturn(ctx context.Context, attempt *models.FilingAttempt) bool {
	code, err := attempt.Obligation.Code()
	if err != nil {
		s.fail(ctx, attempt, models.StepFileReturn, err)
		return false
	}

	receipt, err := s.gateway.FileReturn(ctx, gateway.FileReturnParams{
		Pin:            attempt.Pin,
		ObligationCode: code,
		Period:         attempt.Period,
		Amount:         attempt.TaxDue,
		IdempotencyKey: attempt.IdempotencyKey,
	})
	if err != nil {
		s.fail(ctx, attempt, models.StepFileReturn, err)
		return false
	}

	attempt.ReceiptNumber = receipt
	return s.transition(ctx, attempt, models.StateFiled)
}

func (s *FilingService) generatePRN(ctx context.Context, attempt *models.FilingAttempt, period tax.Period) bool {
	code, err := attempt.Obligation.Code()
	if err != nil {
		s.fail(ctx, attempt, models.StepGeneratePRN, err)
		return false
	}

	prn, err := s.gateway.GeneratePRN(ctx, gateway.GeneratePRNParams{
		Pin:            attempt.Pin,
		ObligationCode: code,
		PeriodFrom:     period.FromString(),
		PeriodTo:       period.ToString(),
		Amount:         attempt.TaxDue,
	})
	if err != nil {
		s.fail(ctx, attempt, models.StepGeneratePRN, err)
		return false
	}

	attempt.PRN = prn
	return s.transition(ctx, attempt, models.StatePRNReady)
}

func (s *FilingService) makePayment(ctx context.Context, attempt *models.FilingAttempt) bool {
	digits := utils.MsisdnDigits(attempt.Msisdn)
	if digits == "" {
		s.fail(ctx, attempt, models.StepMakePayment, models.ErrNoPhoneNumber)
		return false
	}

	err := s.gateway.MakePayment(ctx, gateway.MakePaymentParams{
		Msisdn: digits,
		PRN:    attempt.PRN,
	})
	if err != nil {
		s.fail(ctx, attempt, models.StepMakePayment, err)
		return false
	}
	return s.transition(ctx, attempt, models.StatePaymentInitiated)
}

// transition persists a forward state change before the sequence continues
func (s *FilingService) transition(ctx context.Context, attempt *models.FilingAttempt, state models.FilingState) bool {
	attempt.State = state
	attempt.FailedStep = ""
	attempt.LastError = ""
	attempt.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, attempt); err != nil {
		s.logger.Error("failed to persist attempt transition",
			zap.String("attempt_id", attempt.ID),
			zap.String("state", string(state)),
			zap.Error(err))
		return false
	}
	return true
}

func (s *FilingService) fail(ctx context.Context, attempt *models.FilingAttempt, step string, stepErr error) {
	attempt.FailedStep = step
	attempt.LastError = stepErr.Error()
	attempt.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, attempt); err != nil {
		s.logger.Error("failed to persist attempt failure",
			zap.String("attempt_id", attempt.ID),
			zap.Error(err))
	}

	observability.FilingAttempts.WithLabelValues(string(attempt.Obligation), string(attempt.Mode), "failed").Inc()
	s.logger.Warn("filing step failed",
		zap.String("attempt_id", attempt.ID),
		zap.String("step", step),
		zap.String("state", string(attempt.State)),
		zap.Error(stepErr))
}

func (s *FilingService) complete(ctx context.Context, attempt *models.FilingAttempt) {
	observability.FilingAttempts.WithLabelValues(string(attempt.Obligation), string(attempt.Mode), "success").Inc()
	s.logger.Info("filing attempt completed",
		zap.String("attempt_id", attempt.ID),
		zap.String("state", string(attempt.State)))

	if s.notifier != nil {
		if err := s.notifier.EnqueueFilingResult(ctx, attempt); err != nil {
			// Notification is best-effort; the attempt outcome stands
			s.logger.Warn("failed to enqueue result notification",
				zap.String("attempt_id", attempt.ID),
				zap.Error(err))
		}
	}
}

func (s *FilingService) result(attempt *models.FilingAttempt) *models.FilingResult {
	result := &models.FilingResult{
		Attempt: attempt,
		Message: BuildFilingMessage(attempt),
	}
	if attempt.ShowPRN() {
		result.PRN = attempt.PRN
	}
	return result
}

// MongoAttemptStore is the production AttemptStore
type MongoAttemptStore struct {
	collection *mongo.Collection
}

// NewMongoAttemptStore creates an attempt store over the given collection
func NewMongoAttemptStore(database *mongo.Database, collection string) *MongoAttemptStore {
	return &MongoAttemptStore{collection: database.Collection(collection)}
}

// Insert stores a new attempt
func (m *MongoAttemptStore) Insert(ctx context.Context, attempt *models.FilingAttempt) error {
	_, err := m.collection.InsertOne(ctx, attempt)
	return err
}

// Update replaces the attempt document
func (m *MongoAttemptStore) Update(ctx context.Context, attempt *models.FilingAttempt) error {
	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": attempt.ID}, attempt)
	return err
}

// FindByID loads an attempt by its ID
func (m *MongoAttemptStore) FindByID(ctx context.Context, id string) (*models.FilingAttempt, error) {
	var attempt models.FilingAttempt
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindByIdempotencyKey loads an attempt by its idempotency key
func (m *MongoAttemptStore) FindByIdempotencyKey(ctx context.Context, key string) (*models.FilingAttempt, error) {
	var attempt models.FilingAttempt
	err := m.collection.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&attempt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindActive returns any existing attempt for the same PIN, obligation and
// period, or nil when there is none.
func (m *MongoAttemptStore) FindActive(ctx context.Context, pin string, obligation tax.Obligation, period string) (*models.FilingAttempt, error) {
	var attempt models.FilingAttempt
	err := m.collection.FindOne(ctx, bson.M{
		"pin":        pin,
		"obligation": obligation,
		"period":     period,
	}).Decode(&attempt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
