package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ushuru-digital/app-tsp/internal/tax"
)

// PaymentMode selects how a filing attempt concludes
type PaymentMode string

const (
	// PayModeFileOnly files the return and stops
	PayModeFileOnly PaymentMode = "file-only"
	// PayModeFileAndPay files the return, generates a PRN and pushes a payment
	PayModeFileAndPay PaymentMode = "file-and-pay"
	// PayModePayNow generates a PRN and pushes a payment for an already-filed return
	PayModePayNow PaymentMode = "pay-now"
)

// Valid reports whether the payment mode is known
func (m PaymentMode) Valid() bool {
	switch m {
	case PayModeFileOnly, PayModeFileAndPay, PayModePayNow:
		return true
	}
	return false
}

// FilingMode is the declaration cadence for turnover tax
type FilingMode string

const (
	FilingModeDaily   FilingMode = "daily"
	FilingModeMonthly FilingMode = "monthly"
)

// TaxpayerSession is the per-MSISDN wizard state. It is volatile (Redis,
// TTL-bound) and overwritten wholesale as the user moves through a wizard;
// there are no cross-session invariants.
type TaxpayerSession struct {
	Msisdn        string           `json:"msisdn"`
	IDNumber      string           `json:"id_number,omitempty"`
	YearOfBirth   int              `json:"year_of_birth,omitempty"`
	FullName      string           `json:"full_name,omitempty"`
	Pin           string           `json:"pin,omitempty"`
	FilingYear    int              `json:"filing_year,omitempty"`
	Obligation    tax.Obligation   `json:"obligation,omitempty"`
	RentalIncome  *decimal.Decimal `json:"rental_income,omitempty"`
	GrossSales    *decimal.Decimal `json:"gross_sales,omitempty"`
	FilingMode    FilingMode       `json:"filing_mode,omitempty"`
	PaymentType   PaymentMode      `json:"payment_type,omitempty"`
	ReceiptNumber string           `json:"receipt_number,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Liability is a read-only projection of an outstanding liability as
// reported by the tax authority API.
type Liability struct {
	TaxPeriodFrom   string          `json:"tax_period_from"`
	TaxPeriodTo     string          `json:"tax_period_to"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	PenaltyAmount   decimal.Decimal `json:"penalty_amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	FineAmount      decimal.Decimal `json:"fine_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// LiabilitySummary aggregates liabilities for display
type LiabilitySummary struct {
	Liabilities    []Liability     `json:"liabilities"`
	PrincipalTotal decimal.Decimal `json:"principal_total"`
	PenaltyTotal   decimal.Decimal `json:"penalty_total"`
	InterestTotal  decimal.Decimal `json:"interest_total"`
	FineTotal      decimal.Decimal `json:"fine_total"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// SummarizeLiabilities sums the per-component and grand totals
func SummarizeLiabilities(liabilities []Liability) LiabilitySummary {
	s := LiabilitySummary{Liabilities: liabilities}
	for _, l := range liabilities {
		s.PrincipalTotal = s.PrincipalTotal.Add(l.PrincipalAmount)
		s.PenaltyTotal = s.PenaltyTotal.Add(l.PenaltyAmount)
		s.InterestTotal = s.InterestTotal.Add(l.InterestAmount)
		s.FineTotal = s.FineTotal.Add(l.FineAmount)
		s.GrandTotal = s.GrandTotal.Add(l.TotalAmount)
	}
	return s
}
