package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ushuru-digital/app-tsp/internal/gateway"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/tax"
)

// fakeAttemptStore is an in-memory AttemptStore
type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]models.FilingAttempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: map[string]models.FilingAttempt{}}
}

func (f *fakeAttemptStore) Insert(_ context.Context, attempt *models.FilingAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[attempt.ID] = *attempt
	return nil
}

func (f *fakeAttemptStore) Update(_ context.Context, attempt *models.FilingAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[attempt.ID] = *attempt
	return nil
}

func (f *fakeAttemptStore) FindByID(_ context.Context, id string) (*models.FilingAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt, ok := f.attempts[id]
	if !ok {
		return nil, models.ErrAttemptNotFound
	}
	return &attempt, nil
}

func (f *fakeAttemptStore) FindByIdempotencyKey(_ context.Context, key string) (*models.FilingAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, attempt := range f.attempts {
		if attempt.IdempotencyKey == key {
			a := attempt
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAttemptStore) FindActive(_ context.Context, pin string, obligation tax.Obligation, period string) (*models.FilingAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, attempt := range f.attempts {
		if attempt.Pin == pin && attempt.Obligation == obligation && attempt.Period == period {
			a := attempt
			return &a, nil
		}
	}
	return nil, nil
}

// fakeGateway records calls and returns scripted results
type fakeGateway struct {
	fileReturnErr  error
	generatePRNErr error
	makePaymentErr error

	fileReturnCalls  int
	generatePRNCalls int
	makePaymentCalls int
	lookupCalls      int

	liabilities []models.Liability
}

func (f *fakeGateway) Lookup(context.Context, gateway.LookupParams) (*gateway.LookupResult, error) {
	f.lookupCalls++
	return &gateway.LookupResult{Name: "JANE WANJIKU", Pin: "A012345678Z"}, nil
}

func (f *fakeGateway) RegisterPIN(context.Context, gateway.RegisterPINParams) (string, error) {
	return "A098765432B", nil
}

func (f *fakeGateway) FileReturn(_ context.Context, params gateway.FileReturnParams) (string, error) {
	f.fileReturnCalls++
	if f.fileReturnErr != nil {
		return "", f.fileReturnErr
	}
	return "RCT-001", nil
}

func (f *fakeGateway) GeneratePRN(_ context.Context, params gateway.GeneratePRNParams) (string, error) {
	f.generatePRNCalls++
	if f.generatePRNErr != nil {
		return "", f.generatePRNErr
	}
	return "PRN123", nil
}

func (f *fakeGateway) MakePayment(context.Context, gateway.MakePaymentParams) error {
	f.makePaymentCalls++
	return f.makePaymentErr
}

func (f *fakeGateway) Liabilities(context.Context, string) ([]models.Liability, error) {
	return f.liabilities, nil
}

// fakeNotifier counts enqueued notifications per attempt
type fakeNotifier struct {
	enqueued map[string]int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{enqueued: map[string]int{}}
}

func (f *fakeNotifier) EnqueueFilingResult(_ context.Context, attempt *models.FilingAttempt) error {
	f.enqueued[attempt.ID]++
	return nil
}

func newTestFilingService() (*FilingService, *fakeAttemptStore, *fakeGateway, *fakeNotifier) {
	store := newFakeAttemptStore()
	gw := &fakeGateway{}
	notifier := newFakeNotifier()
	svc := NewFilingService(store, gw, notifier, logging.Logger)
	return svc, store, gw, notifier
}

func mriRequest(mode models.PaymentMode) models.FilingRequest {
	return models.FilingRequest{
		Msisdn:     "0712345678",
		Pin:        "A012345678Z",
		Obligation: tax.ObligationMRI,
		Period:     "01/06/2024 - 30/06/2024",
		Amount:     decimal.NewFromInt(50000),
		Mode:       mode,
	}
}

func TestStart_FileOnly(t *testing.T) {
	svc, _, gw, notifier := newTestFilingService()

	result, err := svc.Start(context.Background(), mriRequest(models.PayModeFileOnly))
	require.NoError(t, err)

	assert.Equal(t, models.StateFiled, result.Attempt.State)
	assert.Equal(t, "RCT-001", result.Attempt.ReceiptNumber)
	assert.Equal(t, "5000.00", result.Attempt.TaxDue)
	assert.Empty(t, result.PRN, "file-only result must carry no PRN")
	assert.Equal(t, 1, gw.fileReturnCalls)
	assert.Equal(t, 0, gw.generatePRNCalls)
	assert.Equal(t, 0, gw.makePaymentCalls, "file-only must never call the payment API")
	assert.Equal(t, 1, notifier.enqueued[result.Attempt.ID])
}

func TestStart_FileAndPay(t *testing.T) {
	svc, _, gw, _ := newTestFilingService()

	result, err := svc.Start(context.Background(), mriRequest(models.PayModeFileAndPay))
	require.NoError(t, err)

	assert.Equal(t, models.StatePaymentInitiated, result.Attempt.State)
	assert.Equal(t, 1, gw.fileReturnCalls)
	assert.Equal(t, 1, gw.generatePRNCalls)
	assert.Equal(t, 1, gw.makePaymentCalls)
	assert.Empty(t, result.PRN, "PRN is hidden once payment is initiated")
}

func TestStart_FileReturnFailureHaltsSequence(t *testing.T) {
	svc, _, gw, notifier := newTestFilingService()
	gw.fileReturnErr = errors.New("filing backend unavailable")

	result, err := svc.Start(context.Background(), mriRequest(models.PayModeFileAndPay))
	require.NoError(t, err)

	assert.Equal(t, models.StateValidated, result.Attempt.State)
	assert.Equal(t, models.StepFileReturn, result.Attempt.FailedStep)
	assert.Equal(t, 0, gw.generatePRNCalls, "PRN must not be generated after a filing failure")
	assert.Equal(t, 0, gw.makePaymentCalls, "payment must not be pushed after a filing failure")
	assert.Empty(t, notifier.enqueued)
	assert.Contains(t, result.Message, "could not be filed")
}

func TestStart_PRNFailureLeavesFiledState(t *testing.T) {
	svc, _, gw, _ := newTestFilingService()
	gw.generatePRNErr = errors.New("prn service down")

	result, err := svc.Start(context.Background(), mriRequest(models.PayModeFileAndPay))
	require.NoError(t, err)

	assert.Equal(t, models.StateFiled, result.Attempt.State)
	assert.Equal(t, models.StepGeneratePRN, result.Attempt.FailedStep)
	assert.Equal(t, "RCT-001", result.Attempt.ReceiptNumber, "filed return is kept, never rolled back")
	assert.Equal(t, 0, gw.makePaymentCalls)
	assert.Contains(t, result.Message, "return filed")
	assert.Contains(t, result.Message, "payment slip generation failed")
}

func TestResume_ContinuesFromLastSuccessfulStep(t *testing.T) {
	svc, _, gw, _ := newTestFilingService()
	gw.generatePRNErr = errors.New("prn service down")

	started, err := svc.Start(context.Background(), mriRequest(models.PayModeFileAndPay))
	require.NoError(t, err)
	require.Equal(t, models.StateFiled, started.Attempt.State)

	gw.generatePRNErr = nil
	resumed, err := svc.Resume(context.Background(), started.Attempt.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatePaymentInitiated, resumed.Attempt.State)
	assert.Equal(t, 1, gw.fileReturnCalls, "resume must not re-file the return")
	assert.Equal(t, 2, gw.generatePRNCalls)
	assert.Equal(t, 1, gw.makePaymentCalls)
}

func TestResume_PaymentFailureKeepsPRNVisible(t *testing.T) {
	svc, _, gw, _ := newTestFilingService()
	gw.makePaymentErr = errors.New("payment push rejected")

	result, err := svc.Start(context.Background(), mriRequest(models.PayModeFileAndPay))
	require.NoError(t, err)

	assert.Equal(t, models.StatePRNReady, result.Attempt.State)
	assert.Equal(t, "PRN123", result.PRN, "PRN stays visible for manual payment while unpaid")

	gw.makePaymentErr = nil
	resumed, err := svc.Resume(context.Background(), result.Attempt.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatePaymentInitiated, resumed.Attempt.State)
	assert.Empty(t, resumed.PRN, "PRN is hidden once payment succeeds")
	assert.Equal(t, 1, gw.generatePRNCalls, "resume reuses the PRN already generated")
}

func TestResume_CompletedAttemptIsNotReRun(t *testing.T) {
	svc, _, gw, notifier := newTestFilingService()

	result, err := svc.Start(context.Background(), mriRequest(models.PayModeFileOnly))
	require.NoError(t, err)

	resumed, err := svc.Resume(context.Background(), result.Attempt.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StateFiled, resumed.Attempt.State)
	assert.Equal(t, 1, gw.fileReturnCalls)
	assert.Equal(t, 1, notifier.enqueued[result.Attempt.ID], "no second notification on resume of a done attempt")
}

func TestStart_PayNowSkipsFiling(t *testing.T) {
	svc, _, gw, _ := newTestFilingService()

	req := mriRequest(models.PayModePayNow)
	req.Amount = decimal.NewFromInt(5000)

	result, err := svc.Start(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.StatePaymentInitiated, result.Attempt.State)
	assert.Equal(t, 0, gw.fileReturnCalls, "pay-now must not file a return")
	assert.Equal(t, "5000.00", result.Attempt.TaxDue, "pay-now pays the given amount without applying a rate")
}

func TestStart_DuplicateFilingRejected(t *testing.T) {
	svc, _, _, _ := newTestFilingService()

	_, err := svc.Start(context.Background(), mriRequest(models.PayModeFileOnly))
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), mriRequest(models.PayModeFileOnly))
	assert.ErrorIs(t, err, models.ErrDuplicateFiling)
}

func TestStart_IdempotencyKeyReplaysExistingAttempt(t *testing.T) {
	svc, _, gw, _ := newTestFilingService()

	req := mriRequest(models.PayModeFileOnly)
	req.IdempotencyKey = "client-key-1"

	first, err := svc.Start(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Start(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Attempt.ID, second.Attempt.ID)
	assert.Equal(t, 1, gw.fileReturnCalls, "a replay must not re-file")
}

func TestStart_ValidationBeforeAnyExternalCall(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.FilingRequest)
		errIs  error
	}{
		{"malformed period", func(r *models.FilingRequest) { r.Period = "June 2024" }, models.ErrValidation},
		{"invalid pin", func(r *models.FilingRequest) { r.Pin = "not-a-pin" }, models.ErrInvalidPIN},
		{"negative amount", func(r *models.FilingRequest) { r.Amount = decimal.NewFromInt(-5) }, models.ErrInvalidAmount},
		{"invalid msisdn", func(r *models.FilingRequest) { r.Msisdn = "abc" }, models.ErrInvalidMSISDN},
		{"unknown obligation", func(r *models.FilingRequest) { r.Obligation = "vat" }, models.ErrValidation},
		{"unknown mode", func(r *models.FilingRequest) { r.Mode = "maybe-pay" }, models.ErrValidation},
		{"nil return with payment", func(r *models.FilingRequest) {
			r.Obligation = tax.ObligationNIL
			r.Mode = models.PayModeFileAndPay
		}, models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, gw, _ := newTestFilingService()
			req := mriRequest(models.PayModeFileAndPay)
			tt.mutate(&req)

			_, err := svc.Start(context.Background(), req)
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
			assert.Equal(t, 0, gw.fileReturnCalls+gw.generatePRNCalls+gw.makePaymentCalls,
				"no external call may happen for invalid input")
			assert.Empty(t, store.attempts, "no attempt may be recorded for invalid input")
		})
	}
}

func TestResume_MissingPhoneFailsPaymentStep(t *testing.T) {
	svc, store, gw, _ := newTestFilingService()

	// A stored attempt that lost its phone number cannot receive a payment
	// push; the step must fail without calling the payment API.
	attempt := &models.FilingAttempt{
		ID:             "attempt-1",
		IdempotencyKey: "key-1",
		Pin:            "A012345678Z",
		Obligation:     tax.ObligationMRI,
		Period:         "01/06/2024 - 30/06/2024",
		TaxDue:         "5000.00",
		Mode:           models.PayModeFileAndPay,
		State:          models.StatePRNReady,
		ReceiptNumber:  "RCT-001",
		PRN:            "PRN123",
	}
	require.NoError(t, store.Insert(context.Background(), attempt))

	resumed, err := svc.Resume(context.Background(), attempt.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatePRNReady, resumed.Attempt.State)
	assert.Equal(t, models.StepMakePayment, resumed.Attempt.FailedStep)
	assert.Equal(t, models.ErrNoPhoneNumber.Error(), resumed.Attempt.LastError)
	assert.Equal(t, 0, gw.makePaymentCalls)
}

func TestStart_NILReturnFilesZero(t *testing.T) {
	svc, _, gw, _ := newTestFilingService()

	req := models.FilingRequest{
		Msisdn:     "0712345678",
		Pin:        "A012345678Z",
		Obligation: tax.ObligationNIL,
		Period:     "01/01/2024 - 31/12/2024",
		Amount:     decimal.Zero,
		Mode:       models.PayModeFileOnly,
	}

	result, err := svc.Start(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.StateFiled, result.Attempt.State)
	assert.Equal(t, "0.00", result.Attempt.TaxDue)
	assert.Equal(t, 0, gw.makePaymentCalls)
}
