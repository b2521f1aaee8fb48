package utils

import (
	"regexp"
	"time"
)

var (
	idNumberRegex = regexp.MustCompile(`^[A-Za-z0-9]{6,10}$`)
	pinRegex      = regexp.MustCompile(`^[A-Z][0-9]{9}[A-Z]$`)
)

// ValidateIDNumber validates a national ID or alien ID number. Rejection
// happens before any network call is made.
func ValidateIDNumber(id string) bool {
	return idNumberRegex.MatchString(id)
}

// ValidatePIN validates a taxpayer PIN (letter, nine digits, letter)
func ValidatePIN(pin string) bool {
	return pinRegex.MatchString(pin)
}

// ValidateYearOfBirth checks for a plausible 4-digit year
func ValidateYearOfBirth(year int) bool {
	return year >= 1900 && year <= time.Now().Year()
}
