package analytics

import "strings"

// SortByAmount returns a copy of records ordered by amount using a
// three-way partition quicksort around the middle element.
//
// Partitions keep input order, so records with equal amounts stay in their
// original relative order in both directions.
func SortByAmount(records []Record, descending bool) []Record {
	if len(records) <= 1 {
		return append([]Record(nil), records...)
	}

	pivot := records[len(records)/2].Amount
	var less, equal, greater []Record
	for _, r := range records {
		switch r.Amount.Cmp(pivot) {
		case -1:
			less = append(less, r)
		case 0:
			equal = append(equal, r)
		default:
			greater = append(greater, r)
		}
	}

	sorted := make([]Record, 0, len(records))
	if descending {
		sorted = append(sorted, SortByAmount(greater, descending)...)
		sorted = append(sorted, equal...)
		return append(sorted, SortByAmount(less, descending)...)
	}
	sorted = append(sorted, SortByAmount(less, descending)...)
	sorted = append(sorted, equal...)
	return append(sorted, SortByAmount(greater, descending)...)
}

// SortByVendor returns a copy of records ordered by case-insensitive vendor
// name using a top-down merge sort. The sort is stable.
func SortByVendor(records []Record) []Record {
	if len(records) <= 1 {
		return append([]Record(nil), records...)
	}

	mid := len(records) / 2
	left := SortByVendor(records[:mid])
	right := SortByVendor(records[mid:])
	return mergeByVendor(left, right)
}

func mergeByVendor(left, right []Record) []Record {
	merged := make([]Record, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		// <= takes from the left run on ties, which keeps the sort stable
		if strings.ToLower(left[i].Vendor) <= strings.ToLower(right[j].Vendor) {
			merged = append(merged, left[i])
			i++
		} else {
			merged = append(merged, right[j])
			j++
		}
	}
	merged = append(merged, left[i:]...)
	return append(merged, right[j:]...)
}
