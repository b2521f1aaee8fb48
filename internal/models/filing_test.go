package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFilingAttempt_Done(t *testing.T) {
	tests := []struct {
		name  string
		mode  PaymentMode
		state FilingState
		done  bool
	}{
		{name: "file-only filed", mode: PayModeFileOnly, state: StateFiled, done: true},
		{name: "file-only validated", mode: PayModeFileOnly, state: StateValidated, done: false},
		{name: "file-and-pay filed", mode: PayModeFileAndPay, state: StateFiled, done: false},
		{name: "file-and-pay prn ready", mode: PayModeFileAndPay, state: StatePRNReady, done: false},
		{name: "file-and-pay payment initiated", mode: PayModeFileAndPay, state: StatePaymentInitiated, done: true},
		{name: "pay-now payment initiated", mode: PayModePayNow, state: StatePaymentInitiated, done: true},
		{name: "pay-now prn ready", mode: PayModePayNow, state: StatePRNReady, done: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &FilingAttempt{Mode: tt.mode, State: tt.state}
			assert.Equal(t, tt.done, a.Done())
		})
	}
}

func TestFilingAttempt_ShowPRN(t *testing.T) {
	a := &FilingAttempt{PRN: "PRN123", State: StatePRNReady, Mode: PayModeFileAndPay}
	assert.True(t, a.ShowPRN(), "PRN retained for manual use while payment not successful")

	a.State = StatePaymentInitiated
	assert.False(t, a.ShowPRN(), "PRN hidden once payment succeeds")

	a = &FilingAttempt{State: StateFiled, Mode: PayModeFileOnly}
	assert.False(t, a.ShowPRN(), "file-only attempts never carry a PRN")
}

func TestNormalizeItems(t *testing.T) {
	items := []InvoiceItem{
		{
			ItemName:      "Cement",
			TaxableAmount: decimal.RequireFromString("750.50"),
			Quantity:      4,
			// Client-supplied total is wrong on purpose
			ItemTotal: decimal.RequireFromString("1.00"),
		},
		{
			ItemName:      "Timber",
			TaxableAmount: decimal.RequireFromString("1200"),
			Quantity:      2,
		},
	}

	normalized, total := NormalizeItems(items)

	assert.Equal(t, "3002.00", normalized[0].ItemTotal.StringFixed(2))
	assert.Equal(t, "2400.00", normalized[1].ItemTotal.StringFixed(2))
	assert.Equal(t, "5402.00", total.StringFixed(2))
}

func TestSummarizeLiabilities(t *testing.T) {
	liabilities := []Liability{
		{
			PrincipalAmount: decimal.NewFromInt(1000),
			PenaltyAmount:   decimal.NewFromInt(100),
			InterestAmount:  decimal.NewFromInt(50),
			FineAmount:      decimal.Zero,
			TotalAmount:     decimal.NewFromInt(1150),
		},
		{
			PrincipalAmount: decimal.NewFromInt(2000),
			PenaltyAmount:   decimal.Zero,
			InterestAmount:  decimal.NewFromInt(25),
			FineAmount:      decimal.NewFromInt(10),
			TotalAmount:     decimal.NewFromInt(2035),
		},
	}

	s := SummarizeLiabilities(liabilities)

	assert.Equal(t, "3000", s.PrincipalTotal.String())
	assert.Equal(t, "100", s.PenaltyTotal.String())
	assert.Equal(t, "75", s.InterestTotal.String())
	assert.Equal(t, "10", s.FineTotal.String())
	assert.Equal(t, "3185", s.GrandTotal.String())
}

func TestPaymentModeValid(t *testing.T) {
	assert.True(t, PayModeFileOnly.Valid())
	assert.True(t, PayModeFileAndPay.Valid())
	assert.True(t, PayModePayNow.Valid())
	assert.False(t, PaymentMode("pay-later").Valid())
}
