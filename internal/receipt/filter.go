package receipt

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-ledger/internal/analytics"
)

// Sort orders accepted by Filter.SortBy. A leading "-" reverses the order.
const (
	SortByTransactionDate = "transaction_date"
	SortByAmount          = "amount"
	SortByVendor          = "vendor"
	SortByCreatedAt       = "created_at"

	DefaultSortBy = "-" + SortByTransactionDate
)

const dateLayout = "2006-01-02"

// Filter narrows and orders a receipt listing. Zero fields do not filter.
type Filter struct {
	Vendor    string // case-insensitive substring
	Category  Category
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	StartDate *time.Time // inclusive
	EndDate   *time.Time // inclusive
	Search    string     // case-insensitive substring of vendor or raw text
	SortBy    string
}

// FilterFromQuery reads a Filter from URL query parameters
func FilterFromQuery(q url.Values) (Filter, error) {
	var errs ValidationErrors
	f := Filter{
		Vendor:   strings.TrimSpace(q.Get("vendor")),
		Category: Category(strings.TrimSpace(q.Get("category"))),
		Search:   strings.TrimSpace(q.Get("search")),
		SortBy:   strings.TrimSpace(q.Get("sort_by")),
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_amount", &f.MinAmount}, {"max_amount", &f.MaxAmount}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: p.name, Value: v, Message: "must be a number"})
			continue
		}
		*p.dst = &d
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"start_date", &f.StartDate}, {"end_date", &f.EndDate}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			errs = append(errs, ValidationError{Field: p.name, Value: v, Message: "must be a date in YYYY-MM-DD format"})
			continue
		}
		*p.dst = &d
	}

	if f.SortBy != "" && !validSortBy(f.SortBy) {
		errs = append(errs, ValidationError{Field: "sort_by", Value: f.SortBy, Message: "unsupported sort order"})
	}

	if len(errs) > 0 {
		return Filter{}, errs
	}
	return f, nil
}

func validSortBy(s string) bool {
	switch strings.TrimPrefix(s, "-") {
	case SortByTransactionDate, SortByAmount, SortByVendor, SortByCreatedAt:
		return true
	}
	return false
}

// ListReceipts returns the receipts matching filter in the requested order
func (s *Service) ListReceipts(ctx context.Context, filter Filter) ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return applyFilter(receipts, filter)
}

func applyFilter(receipts []*Receipt, filter Filter) ([]*Receipt, error) {
	byID := make(map[string]*Receipt, len(receipts))
	records := make([]analytics.Record, len(receipts))
	for i, r := range receipts {
		byID[r.ID] = r
		records[i] = r.Record()
	}

	if filter.Vendor != "" {
		var err error
		records, err = analytics.PatternSearch(records, analytics.FieldVendor, regexp.QuoteMeta(filter.Vendor))
		if err != nil {
			return nil, fmt.Errorf("filtering by vendor: %w", err)
		}
	}
	if filter.Category != "" {
		records = analytics.LinearSearch(records, analytics.FieldCategory, string(filter.Category))
	}
	if filter.MinAmount != nil || filter.MaxAmount != nil {
		lo, hi := decimal.Zero, MaxAmount
		if filter.MinAmount != nil {
			lo = *filter.MinAmount
		}
		if filter.MaxAmount != nil {
			hi = *filter.MaxAmount
		}
		records = analytics.RangeSearch(records, lo, hi)
	}
	if filter.StartDate != nil || filter.EndDate != nil {
		records = slices.DeleteFunc(records, func(r analytics.Record) bool {
			day := analytics.Day(r.TransactionDate)
			return (filter.StartDate != nil && day.Before(analytics.Day(*filter.StartDate))) ||
				(filter.EndDate != nil && day.After(analytics.Day(*filter.EndDate)))
		})
	}
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		records = slices.DeleteFunc(records, func(r analytics.Record) bool {
			return !strings.Contains(strings.ToLower(r.Vendor), term) &&
				!strings.Contains(strings.ToLower(r.RawText), term)
		})
	}

	result := make([]*Receipt, len(records))
	for i, r := range records {
		result[i] = byID[r.ID]
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	return sortReceipts(result, sortBy), nil
}

// sortReceipts orders by amount and vendor with the analytics sorts and by
// date with a stable sort that breaks ties by creation time, newest first
func sortReceipts(receipts []*Receipt, sortBy string) []*Receipt {
	descending := strings.HasPrefix(sortBy, "-")

	switch strings.TrimPrefix(sortBy, "-") {
	case SortByAmount:
		return reorder(receipts, analytics.SortByAmount(toRecords(receipts), descending))
	case SortByVendor:
		if !descending {
			return reorder(receipts, analytics.SortByVendor(toRecords(receipts)))
		}
		// Vendors equal except for case keep their listing order
		sorted := slices.Clone(receipts)
		slices.SortStableFunc(sorted, func(a, b *Receipt) int {
			return strings.Compare(strings.ToLower(b.Vendor), strings.ToLower(a.Vendor))
		})
		return sorted
	case SortByCreatedAt:
		sorted := slices.Clone(receipts)
		slices.SortStableFunc(sorted, func(a, b *Receipt) int {
			if descending {
				return b.CreatedAt.Compare(a.CreatedAt)
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		return sorted
	}

	sorted := slices.Clone(receipts)
	slices.SortStableFunc(sorted, func(a, b *Receipt) int {
		c := analytics.Day(a.TransactionDate).Compare(analytics.Day(b.TransactionDate))
		if descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

func toRecords(receipts []*Receipt) []analytics.Record {
	out := make([]analytics.Record, len(receipts))
	for i, r := range receipts {
		out[i] = r.Record()
	}
	return out
}

// reorder maps sorted records back to their receipts
func reorder(receipts []*Receipt, sorted []analytics.Record) []*Receipt {
	byID := make(map[string]*Receipt, len(receipts))
	for _, r := range receipts {
		byID[r.ID] = r
	}
	out := make([]*Receipt, len(sorted))
	for i, r := range sorted {
		out[i] = byID[r.ID]
	}
	return out
}
