package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Obligation identifies a tax obligation type
type Obligation string

const (
	// ObligationMRI is Monthly Rental Income tax
	ObligationMRI Obligation = "mri"
	// ObligationTOT is Turnover Tax
	ObligationTOT Obligation = "tot"
	// ObligationNIL is a NIL income tax return (nothing due)
	ObligationNIL Obligation = "nil"
)

// rateEntry holds the server-defined obligation code and the flat rate
// applied to the declared amount.
type rateEntry struct {
	Code string
	Rate decimal.Decimal
}

// rateTable is the single source of truth for obligation codes and rates.
var rateTable = map[Obligation]rateEntry{
	ObligationMRI: {Code: "33", Rate: decimal.NewFromFloat(0.10)},
	ObligationTOT: {Code: "8", Rate: decimal.NewFromFloat(0.03)},
	ObligationNIL: {Code: "4", Rate: decimal.Zero},
}

// Valid reports whether the obligation is known
func (o Obligation) Valid() bool {
	_, ok := rateTable[o]
	return ok
}

// Code returns the server-defined obligation code (e.g. "33" for MRI)
func (o Obligation) Code() (string, error) {
	entry, ok := rateTable[o]
	if !ok {
		return "", fmt.Errorf("unknown obligation type: %s", o)
	}
	return entry.Code, nil
}

// Rate returns the flat tax rate for the obligation
func (o Obligation) Rate() (decimal.Decimal, error) {
	entry, ok := rateTable[o]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown obligation type: %s", o)
	}
	return entry.Rate, nil
}

// Compute calculates the tax due for a declared amount under the given
// obligation, rounded to two decimal places.
func Compute(amount decimal.Decimal, o Obligation) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative: %s", amount)
	}
	rate, err := o.Rate()
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

// FormatAmount renders a decimal amount with exactly two decimal places,
// the format the payment reference API expects.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
