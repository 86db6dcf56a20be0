// Package analytics implements search, ordering and aggregation over a set
// of receipt records. Every function is a pure function of its input: the
// working set is passed in on each call and is never modified.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field names understood by the search functions
const (
	FieldID              = "id"
	FieldVendor          = "vendor"
	FieldTransactionDate = "transaction_date"
	FieldAmount          = "amount"
	FieldCategory        = "category"
	FieldRawText         = "raw_text"
)

const dateLayout = "2006-01-02"

// Record is the analytic view of a receipt
type Record struct {
	ID              string          `json:"id,omitempty"`
	Vendor          string          `json:"vendor"`
	TransactionDate time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	RawText         string          `json:"raw_text,omitempty"`
}

// Field returns the value of the named field
func (r Record) Field(name string) (any, bool) {
	switch name {
	case FieldID:
		return r.ID, true
	case FieldVendor:
		return r.Vendor, true
	case FieldTransactionDate:
		return r.TransactionDate, true
	case FieldAmount:
		return r.Amount, true
	case FieldCategory:
		return r.Category, true
	case FieldRawText:
		return r.RawText, true
	}
	return nil, false
}

// FieldString returns the string form of the named field, or "" for
// unknown fields. Dates render as YYYY-MM-DD.
func (r Record) FieldString(name string) string {
	switch name {
	case FieldTransactionDate:
		if r.TransactionDate.IsZero() {
			return ""
		}
		return r.TransactionDate.Format(dateLayout)
	case FieldAmount:
		return r.Amount.String()
	}
	v, ok := r.Field(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Day truncates t to its calendar date in UTC
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func amountFloat(r Record) float64 {
	return r.Amount.InexactFloat64()
}
