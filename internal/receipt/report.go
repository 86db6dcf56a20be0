package receipt

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-ledger/internal/analytics"
)

// Search types accepted by SearchQuery.Type
const (
	SearchKeyword = "keyword"
	SearchPattern = "pattern"
	SearchRange   = "range"
)

// DefaultRangeMax is the upper bound of a range search without a maximum
var DefaultRangeMax = decimal.NewFromInt(999999)

// AnalyticsReport is the analytics summary of a receipt listing
type AnalyticsReport struct {
	Statistics           *analytics.Statistics                   `json:"statistics"`
	VendorFrequency      []analytics.VendorCount                 `json:"vendor_frequency"`
	TopVendors           []analytics.VendorSpend                 `json:"top_vendors"`
	CategoryDistribution map[string]*analytics.CategoryBreakdown `json:"category_distribution"`
	TimeSeries           analytics.TimeSeries                    `json:"time_series"`
}

// Analytics summarizes the receipts matching filter
func (s *Service) Analytics(ctx context.Context, filter Filter) (*AnalyticsReport, error) {
	receipts, err := s.ListReceipts(ctx, filter)
	if err != nil {
		return nil, err
	}

	records := toRecords(receipts)
	for i := range records {
		records[i].ID = ""
		records[i].RawText = ""
	}

	return &AnalyticsReport{
		Statistics:           analytics.ComputeStatistics(records),
		VendorFrequency:      analytics.VendorFrequency(records),
		TopVendors:           analytics.TopKVendors(records, analytics.DefaultTopK),
		CategoryDistribution: analytics.CategoryDistribution(records),
		TimeSeries:           analytics.TimeSeriesAnalysis(records, analytics.DefaultWindowDays),
	}, nil
}

// SearchQuery selects one of the search strategies
type SearchQuery struct {
	Type  string // keyword (default), pattern or range
	Query string // vendor for keyword, expression for pattern
	Field string // pattern field, vendor by default
	Min   *decimal.Decimal
	Max   *decimal.Decimal
}

// Search runs query over the receipts matching filter. Keyword search is an
// exact vendor match, pattern search a case-insensitive regular expression
// over one field and range search an inclusive amount range.
func (s *Service) Search(ctx context.Context, filter Filter, query SearchQuery) ([]analytics.Record, error) {
	receipts, err := s.ListReceipts(ctx, filter)
	if err != nil {
		return nil, err
	}
	records := toRecords(receipts)

	switch query.Type {
	case SearchPattern:
		field := query.Field
		if field == "" {
			field = analytics.FieldVendor
		}
		results, err := analytics.PatternSearch(records, field, query.Query)
		if err != nil {
			return nil, ValidationErrors{{Field: "q", Value: query.Query, Message: err.Error()}}
		}
		return results, nil
	case SearchRange:
		lo, hi := decimal.Zero, DefaultRangeMax
		if query.Min != nil {
			lo = *query.Min
		}
		if query.Max != nil {
			hi = *query.Max
		}
		return analytics.RangeSearch(records, lo, hi), nil
	}
	return analytics.LinearSearch(records, analytics.FieldVendor, query.Query), nil
}
