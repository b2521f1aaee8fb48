package tax

import (
	"fmt"
	"strings"
	"time"
)

// periodDateLayout is the date format used in filing period strings
const periodDateLayout = "02/01/2006"

// periodSeparator joins the two dates of a filing period string
const periodSeparator = " - "

// Period is a filing period parsed from its string encoding
// ("DD/MM/YYYY - DD/MM/YYYY").
type Period struct {
	From time.Time
	To   time.Time
}

// ParsePeriod parses a filing period string. Malformed strings are an
// error, never silently mis-parsed.
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(s, periodSeparator)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("invalid filing period %q: expected two dates separated by %q", s, periodSeparator)
	}

	from, err := time.Parse(periodDateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return Period{}, fmt.Errorf("invalid period start date %q: %w", parts[0], err)
	}

	to, err := time.Parse(periodDateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return Period{}, fmt.Errorf("invalid period end date %q: %w", parts[1], err)
	}

	if to.Before(from) {
		return Period{}, fmt.Errorf("invalid filing period %q: end date precedes start date", s)
	}

	return Period{From: from, To: to}, nil
}

// String re-encodes the period in its wire format
func (p Period) String() string {
	return p.FromString() + periodSeparator + p.ToString()
}

// FromString returns the period start date as DD/MM/YYYY
func (p Period) FromString() string {
	return p.From.Format(periodDateLayout)
}

// ToString returns the period end date as DD/MM/YYYY
func (p Period) ToString() string {
	return p.To.Format(periodDateLayout)
}
