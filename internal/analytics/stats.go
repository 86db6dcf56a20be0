package analytics

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// Statistics summarizes the amount field of a record set
type Statistics struct {
	TotalSpend  float64 `json:"total_spend"`
	MeanSpend   float64 `json:"mean_spend"`
	MedianSpend float64 `json:"median_spend"`
	// ModeSpend is nil when there are several amounts and all are distinct
	ModeSpend    *float64 `json:"mode_spend"`
	MinSpend     float64  `json:"min_spend"`
	MaxSpend     float64  `json:"max_spend"`
	StdDeviation float64  `json:"std_deviation"`
	Count        int      `json:"count"`
}

// ComputeStatistics returns summary statistics over the amounts, or nil for
// an empty record set
func ComputeStatistics(records []Record) *Statistics {
	if len(records) == 0 {
		return nil
	}

	total := decimal.Zero
	amounts := make([]float64, len(records))
	for i, r := range records {
		total = total.Add(r.Amount)
		amounts[i] = amountFloat(r)
	}

	n := float64(len(amounts))
	mean := total.InexactFloat64() / n

	sorted := slices.Clone(amounts)
	slices.Sort(sorted)

	return &Statistics{
		TotalSpend:   total.InexactFloat64(),
		MeanSpend:    mean,
		MedianSpend:  median(sorted),
		ModeSpend:    mode(amounts),
		MinSpend:     sorted[0],
		MaxSpend:     sorted[len(sorted)-1],
		StdDeviation: sampleStdDev(amounts, mean),
		Count:        len(records),
	}
}

func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// mode returns the most common value, the earliest one on ties.
// Several values that are all distinct have no mode.
func mode(values []float64) *float64 {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	if len(values) > 1 && len(counts) == len(values) {
		return nil
	}

	best, bestCount := values[0], 0
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return &best
}

func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// VendorCount is the number of receipts for one vendor
type VendorCount struct {
	Vendor string `json:"vendor"`
	Count  int    `json:"count"`
}

// VendorFrequency counts receipts per distinct vendor string, most frequent
// first. Vendors with equal counts keep first-seen order.
func VendorFrequency(records []Record) []VendorCount {
	index := make(map[string]int)
	counts := make([]VendorCount, 0)
	for _, r := range records {
		i, ok := index[r.Vendor]
		if !ok {
			i = len(counts)
			index[r.Vendor] = i
			counts = append(counts, VendorCount{Vendor: r.Vendor})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b VendorCount) int {
		return b.Count - a.Count
	})
	return counts
}

// CategoryBreakdown aggregates the receipts of one category
type CategoryBreakdown struct {
	Count    int      `json:"count"`
	Total    float64  `json:"total"`
	Receipts []Record `json:"receipts"`
}

// CategoryDistribution groups records by category
func CategoryDistribution(records []Record) map[string]*CategoryBreakdown {
	dist := make(map[string]*CategoryBreakdown)
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		b, ok := dist[r.Category]
		if !ok {
			b = &CategoryBreakdown{Receipts: make([]Record, 0)}
			dist[r.Category] = b
		}
		b.Count++
		b.Receipts = append(b.Receipts, r)
		totals[r.Category] = totals[r.Category].Add(r.Amount)
	}
	for category, total := range totals {
		dist[category].Total = total.InexactFloat64()
	}
	return dist
}
