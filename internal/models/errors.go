package models

import (
	"errors"
	"fmt"
)

// Error values shared across services and handlers
var (
	ErrInvalidIDNumber    = errors.New("please enter a valid ID number")
	ErrInvalidYearOfBirth = errors.New("year of birth must be a valid 4-digit year")
	ErrInvalidPIN         = errors.New("invalid taxpayer PIN format")
	ErrInvalidAmount      = errors.New("amount must be zero or greater")
	ErrInvalidMSISDN      = errors.New("invalid phone number")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAttemptNotFound    = errors.New("filing attempt not found")
	ErrDuplicateFiling    = errors.New("a return for this PIN and period has already been filed or is in progress")
	ErrNoPhoneNumber      = errors.New("no phone number available for payment")
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
)

// ErrValidation tags client input errors so the HTTP layer distinguishes
// them from upstream failures. Match with errors.Is.
var ErrValidation = errors.New("invalid input")

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

// Validationf builds a client validation error with a formatted message
func Validationf(format string, args ...interface{}) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}
