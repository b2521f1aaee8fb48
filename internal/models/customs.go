package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VisitedCountries is one row per phone; the country list is deduplicated
// via set union on update.
type VisitedCountries struct {
	Msisdn    string    `bson:"msisdn" json:"msisdn"`
	Countries []string  `bson:"countries" json:"countries"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SavedItem is a customs item saved by a traveller for later declaration
type SavedItem struct {
	ID        string          `bson:"_id" json:"id"`
	Msisdn    string          `bson:"msisdn" json:"msisdn"`
	ItemName  string          `bson:"item_name" json:"item_name"`
	HSCode    string          `bson:"hs_code,omitempty" json:"hs_code,omitempty"`
	Category  string          `bson:"category,omitempty" json:"category,omitempty"`
	Value     decimal.Decimal `bson:"value" json:"value"`
	Currency  string          `bson:"currency" json:"currency"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
}

// HSCategory is the customs category resolved for an HS code
type HSCategory struct {
	HSCode      string `json:"hs_code"`
	Description string `json:"description"`
	DutyRate    string `json:"duty_rate"`
}

// CashValue is a currency conversion result from the customs proxy
type CashValue struct {
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Rate      decimal.Decimal `json:"rate"`
	Converted decimal.Decimal `json:"converted"`
}
