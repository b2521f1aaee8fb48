package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion is the region assumed for numbers without a country code
const defaultRegion = "KE"

var msisdnRegex = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// NormalizeMSISDN parses a phone number and returns it in E.164 form.
// Numbers without a leading + are assumed Kenyan: "07xx..." national
// format and bare "254..." international format are both accepted.
func NormalizeMSISDN(phone string) (string, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if clean == "" {
		return "", fmt.Errorf("empty phone number")
	}

	if !strings.HasPrefix(clean, "+") && strings.HasPrefix(clean, "254") {
		clean = "+" + clean
	}

	num, err := phonenumbers.Parse(clean, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", phone)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// ValidatePhoneFormat is a cheap format check used before parsing
func ValidatePhoneFormat(phone string) error {
	if !msisdnRegex.MatchString(strings.ReplaceAll(phone, " ", "")) {
		return fmt.Errorf("invalid phone number format: %s", phone)
	}
	return nil
}

// MsisdnDigits strips the leading + for APIs that want bare digits
func MsisdnDigits(msisdn string) string {
	return strings.TrimPrefix(msisdn, "+")
}
