package models

import (
	"github.com/shopspring/decimal"
	"github.com/ushuru-digital/app-tsp/internal/tax"
)

// ValidateTaxpayerRequest is the identity lookup input
type ValidateTaxpayerRequest struct {
	Msisdn      string `json:"msisdn" binding:"required"`
	IDNumber    string `json:"id_number" binding:"required"`
	YearOfBirth int    `json:"year_of_birth" binding:"required"`
}

// ValidateTaxpayerResponse is returned on a successful identity lookup
type ValidateTaxpayerResponse struct {
	FullName string `json:"full_name"`
	Pin      string `json:"pin"`
}

// PinRetrieveRequest asks for the PIN registered against an ID number
type PinRetrieveRequest struct {
	Msisdn      string `json:"msisdn" binding:"required"`
	IDNumber    string `json:"id_number" binding:"required"`
	YearOfBirth int    `json:"year_of_birth" binding:"required"`
}

// PinRegisterRequest registers a new taxpayer PIN
type PinRegisterRequest struct {
	Msisdn      string `json:"msisdn" binding:"required"`
	IDNumber    string `json:"id_number" binding:"required"`
	YearOfBirth int    `json:"year_of_birth" binding:"required"`
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email,omitempty"`
}

// PinRegisterResponse carries the newly issued PIN
type PinRegisterResponse struct {
	Pin string `json:"pin"`
}

// FilingRequest starts a filing attempt
type FilingRequest struct {
	Msisdn         string          `json:"msisdn" binding:"required"`
	Pin            string          `json:"pin" binding:"required"`
	Obligation     tax.Obligation  `json:"obligation" binding:"required"`
	Period         string          `json:"period" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Mode           PaymentMode     `json:"mode" binding:"required"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// FilingResult is the attempt status returned to the wizard result page
type FilingResult struct {
	Attempt *FilingAttempt `json:"attempt"`
	// PRN is populated only while it should be shown for manual payment
	PRN     string `json:"prn,omitempty"`
	Message string `json:"message"`
}

// InvoiceRequest creates an eTIMS invoice
type InvoiceRequest struct {
	Msisdn       string        `json:"msisdn" binding:"required"`
	Pin          string        `json:"pin" binding:"required"`
	CustomerName string        `json:"customer_name,omitempty"`
	CustomerPin  string        `json:"customer_pin,omitempty"`
	Items        []InvoiceItem `json:"items" binding:"required"`
}

// CreditNoteRequest creates a credit note against an existing invoice
type CreditNoteRequest struct {
	Msisdn            string        `json:"msisdn" binding:"required"`
	Pin               string        `json:"pin" binding:"required"`
	OriginalInvoiceID string        `json:"original_invoice_id" binding:"required"`
	Reason            string        `json:"reason,omitempty"`
	Items             []InvoiceItem `json:"items" binding:"required"`
}

// EmployeeRequest adds a payroll employee under an employer PIN
type EmployeeRequest struct {
	EmployeePin string          `json:"employee_pin" binding:"required"`
	FirstName   string          `json:"first_name" binding:"required"`
	LastName    string          `json:"last_name" binding:"required"`
	GrossSalary decimal.Decimal `json:"gross_salary"`
}

// CountriesRequest records countries visited before a customs declaration
type CountriesRequest struct {
	Msisdn    string   `json:"msisdn" binding:"required"`
	Countries []string `json:"countries" binding:"required"`
}

// SavedItemRequest saves a customs item for later declaration
type SavedItemRequest struct {
	Msisdn   string          `json:"msisdn" binding:"required"`
	ItemName string          `json:"item_name" binding:"required"`
	HSCode   string          `json:"hs_code,omitempty"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency" binding:"required"`
}
