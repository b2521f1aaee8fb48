package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItem is a single eTIMS invoice or credit note line. ItemTotal is
// always recomputed server-side as TaxableAmount * Quantity.
type InvoiceItem struct {
	ItemName      string          `bson:"item_name" json:"item_name"`
	TaxableAmount decimal.Decimal `bson:"taxable_amount" json:"taxable_amount"`
	Quantity      int64           `bson:"quantity" json:"quantity"`
	ItemTotal     decimal.Decimal `bson:"item_total" json:"item_total"`
}

// Invoice is an eTIMS invoice issued through the portal
type Invoice struct {
	ID           string          `bson:"_id" json:"id"`
	Msisdn       string          `bson:"msisdn" json:"msisdn"`
	Pin          string          `bson:"pin" json:"pin"`
	CustomerName string          `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	CustomerPin  string          `bson:"customer_pin,omitempty" json:"customer_pin,omitempty"`
	Items        []InvoiceItem   `bson:"items" json:"items"`
	TotalAmount  decimal.Decimal `bson:"total_amount" json:"total_amount"`
	CreatedAt    time.Time       `bson:"created_at" json:"created_at"`
}

// CreditNote reverses all or part of a previously issued invoice
type CreditNote struct {
	ID                string          `bson:"_id" json:"id"`
	Msisdn            string          `bson:"msisdn" json:"msisdn"`
	Pin               string          `bson:"pin" json:"pin"`
	OriginalInvoiceID string          `bson:"original_invoice_id" json:"original_invoice_id"`
	Reason            string          `bson:"reason,omitempty" json:"reason,omitempty"`
	Items             []InvoiceItem   `bson:"items" json:"items"`
	TotalAmount       decimal.Decimal `bson:"total_amount" json:"total_amount"`
	CreatedAt         time.Time       `bson:"created_at" json:"created_at"`
}

// NormalizeItems recomputes every line total and returns the items with the
// invoice grand total. Client-supplied item totals are never trusted.
func NormalizeItems(items []InvoiceItem) ([]InvoiceItem, decimal.Decimal) {
	total := decimal.Zero
	normalized := make([]InvoiceItem, len(items))
	for i, item := range items {
		item.ItemTotal = item.TaxableAmount.Mul(decimal.NewFromInt(item.Quantity)).Round(2)
		normalized[i] = item
		total = total.Add(item.ItemTotal)
	}
	return normalized, total
}
