package receipt

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-ledger/internal/analytics"
)

// Receipt represents a stored receipt with its extracted fields
type Receipt struct {
	ID              string          `json:"id"`
	Vendor          string          `json:"vendor"`
	TransactionDate time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"` // INR, two decimal places
	Category        Category        `json:"category"`
	RawText         string          `json:"raw_text"`
	ConfidenceScore float64         `json:"confidence_score"`
	Filename        string          `json:"filename"`
	ContentType     string          `json:"content_type"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Record returns the analytic view of the receipt
func (r *Receipt) Record() analytics.Record {
	return analytics.Record{
		ID:              r.ID,
		Vendor:          r.Vendor,
		TransactionDate: r.TransactionDate,
		Amount:          r.Amount,
		Category:        string(r.Category),
		RawText:         r.RawText,
	}
}

// Fields returns the validated field set of the receipt
func (r *Receipt) Fields() Fields {
	return Fields{
		Vendor:          r.Vendor,
		TransactionDate: r.TransactionDate,
		Amount:          r.Amount,
		Category:        r.Category,
		RawText:         r.RawText,
		ConfidenceScore: r.ConfidenceScore,
	}
}

// ReceiptUpdate holds the user-editable fields. Nil fields are left unchanged.
type ReceiptUpdate struct {
	Vendor          *string
	TransactionDate *time.Time
	Amount          *decimal.Decimal
	Category        *Category
}
