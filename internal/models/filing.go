package models

import (
	"time"

	"github.com/ushuru-digital/app-tsp/internal/tax"
)

// FilingState is the last successfully completed stage of a filing attempt.
// The sequence only ever moves forward; a failure keeps the attempt at its
// last successful state so a resume can continue from there instead of
// re-running earlier steps.
type FilingState string

const (
	// StateValidated means the attempt is recorded but nothing external has succeeded yet
	StateValidated FilingState = "validated"
	// StateFiled means the return was filed and a receipt number obtained
	StateFiled FilingState = "filed"
	// StatePRNReady means a payment reference number was generated
	StatePRNReady FilingState = "prn_ready"
	// StatePaymentInitiated means the payment push was accepted
	StatePaymentInitiated FilingState = "payment_initiated"
)

// Filing sequence step names, recorded on failure
const (
	StepFileReturn  = "file-return"
	StepGeneratePRN = "generate-prn"
	StepMakePayment = "make-payment"
)

// FilingAttempt is a persisted filing/payment orchestration record. One
// document per attempt; the idempotency key is unique and an active attempt
// for the same (pin, obligation, period) blocks duplicate filings.
type FilingAttempt struct {
	ID             string         `bson:"_id" json:"id"`
	IdempotencyKey string         `bson:"idempotency_key" json:"idempotency_key"`
	Msisdn         string         `bson:"msisdn" json:"msisdn"`
	Pin            string         `bson:"pin" json:"pin"`
	Obligation     tax.Obligation `bson:"obligation" json:"obligation"`
	Period         string         `bson:"period" json:"period"`
	Amount         string         `bson:"amount" json:"amount"`
	TaxDue         string         `bson:"tax_due" json:"tax_due"`
	Mode           PaymentMode    `bson:"mode" json:"mode"`
	State          FilingState    `bson:"state" json:"state"`
	ReceiptNumber  string         `bson:"receipt_number,omitempty" json:"receipt_number,omitempty"`
	PRN            string         `bson:"prn,omitempty" json:"prn,omitempty"`
	FailedStep     string         `bson:"failed_step,omitempty" json:"failed_step,omitempty"`
	LastError      string         `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updated_at"`
}

// Done reports whether the attempt reached its terminal success state for
// its payment mode.
func (a *FilingAttempt) Done() bool {
	switch a.Mode {
	case PayModeFileOnly:
		return a.State == StateFiled || a.State == StatePRNReady || a.State == StatePaymentInitiated
	default:
		return a.State == StatePaymentInitiated
	}
}

// ShowPRN reports whether the PRN should be exposed in a result summary.
// The PRN is retained for manual payment only while the payment push has
// not succeeded; once payment is initiated it is hidden.
func (a *FilingAttempt) ShowPRN() bool {
	return a.PRN != "" && a.State != StatePaymentInitiated
}
