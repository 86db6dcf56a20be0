package analytics

import (
	"container/heap"
	"slices"

	"github.com/shopspring/decimal"
)

// DefaultTopK is the number of vendors returned when none is given
const DefaultTopK = 10

// VendorSpend is the total spend with one vendor
type VendorSpend struct {
	Vendor     string  `json:"vendor"`
	TotalSpend float64 `json:"total_spend"`
}

type vendorTotal struct {
	vendor string
	total  decimal.Decimal
	order  int // first occurrence in the input
}

// ranksAbove orders by total descending, then by first occurrence
func (a vendorTotal) ranksAbove(b vendorTotal) bool {
	if c := a.total.Cmp(b.total); c != 0 {
		return c > 0
	}
	return a.order < b.order
}

// minHeap keeps the lowest-ranked candidate at the root
type minHeap []vendorTotal

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[j].ranksAbove(h[i]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(vendorTotal)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopKVendors returns the k vendors with the highest total spend, highest
// first, using a bounded min-heap (O(n log k)). Vendors with equal totals
// are ranked by first occurrence in records, so the result always equals the
// first k entries of the totals stably sorted by spend descending.
func TopKVendors(records []Record, k int) []VendorSpend {
	if k <= 0 || len(records) == 0 {
		return []VendorSpend{}
	}

	index := make(map[string]int)
	totals := make([]vendorTotal, 0)
	for _, r := range records {
		i, ok := index[r.Vendor]
		if !ok {
			i = len(totals)
			index[r.Vendor] = i
			totals = append(totals, vendorTotal{vendor: r.Vendor, order: i})
		}
		totals[i].total = totals[i].total.Add(r.Amount)
	}

	h := make(minHeap, 0, k)
	for _, t := range totals {
		if h.Len() < k {
			heap.Push(&h, t)
			continue
		}
		if t.ranksAbove(h[0]) {
			h[0] = t
			heap.Fix(&h, 0)
		}
	}

	top := []vendorTotal(h)
	slices.SortFunc(top, func(a, b vendorTotal) int {
		switch {
		case a.ranksAbove(b):
			return -1
		case b.ranksAbove(a):
			return 1
		}
		return 0
	})

	result := make([]VendorSpend, len(top))
	for i, t := range top {
		result[i] = VendorSpend{Vendor: t.vendor, TotalSpend: t.total.InexactFloat64()}
	}
	return result
}
