package observability

import (
	"github.com/ushuru-digital/app-tsp/internal/logging"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskPIN masks a taxpayer PIN for logging (keeps prefix letter and last two)
func MaskPIN(pin string) string {
	if len(pin) < 4 {
		return "***"
	}
	return pin[:1] + "********" + pin[len(pin)-2:]
}

// MaskIDNumber masks a national ID number for logging
func MaskIDNumber(id string) string {
	if len(id) < 4 {
		return "***"
	}
	return id[:2] + "****" + id[len(id)-2:]
}

// MaskMSISDN masks a phone number for logging
func MaskMSISDN(msisdn string) string {
	if len(msisdn) < 6 {
		return "******"
	}
	return msisdn[:4] + "*****" + msisdn[len(msisdn)-3:]
}
