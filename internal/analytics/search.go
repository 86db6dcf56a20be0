package analytics

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// LinearSearch returns the records whose field equals value, in input order.
// O(n).
//
// Amounts compare numerically and dates compare by calendar day. A string
// value is parsed as a decimal or a YYYY-MM-DD date when the field needs it.
func LinearSearch(records []Record, field string, value any) []Record {
	results := make([]Record, 0)
	for _, r := range records {
		v, ok := r.Field(field)
		if !ok {
			continue
		}
		if fieldEquals(v, value) {
			results = append(results, r)
		}
	}
	return results
}

func fieldEquals(v, target any) bool {
	switch fv := v.(type) {
	case decimal.Decimal:
		switch t := target.(type) {
		case decimal.Decimal:
			return fv.Equal(t)
		case string:
			d, err := decimal.NewFromString(t)
			return err == nil && fv.Equal(d)
		case float64:
			return fv.Equal(decimal.NewFromFloat(t))
		case int:
			return fv.Equal(decimal.NewFromInt(int64(t)))
		}
		return false
	case time.Time:
		switch t := target.(type) {
		case time.Time:
			return Day(fv).Equal(Day(t))
		case string:
			d, err := time.Parse(dateLayout, t)
			return err == nil && Day(fv).Equal(d)
		}
		return false
	}
	return v == target
}

// BinarySearchByDate returns the first record found on the target date.
//
// The input does not need to be sorted: a date-sorted copy is made first, so
// the call is O(n log n) overall and O(log n) for the search itself.
func BinarySearchByDate(records []Record, target time.Time) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return Day(a.TransactionDate).Compare(Day(b.TransactionDate))
	})

	day := Day(target)
	left, right := 0, len(sorted)-1
	for left <= right {
		mid := (left + right) / 2
		midDay := Day(sorted[mid].TransactionDate)

		switch {
		case midDay.Equal(day):
			return sorted[mid], true
		case midDay.Before(day):
			left = mid + 1
		default:
			right = mid - 1
		}
	}

	return Record{}, false
}

// RangeSearch returns the records with min <= amount <= max, in input order
func RangeSearch(records []Record, min, max decimal.Decimal) []Record {
	results := make([]Record, 0)
	for _, r := range records {
		if r.Amount.GreaterThanOrEqual(min) && r.Amount.LessThanOrEqual(max) {
			results = append(results, r)
		}
	}
	return results
}

// PatternSearch returns the records whose field, in string form, matches
// the case-insensitive regular expression pattern
func PatternSearch(records []Record, field, pattern string) ([]Record, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	results := make([]Record, 0)
	for _, r := range records {
		if re.MatchString(r.FieldString(field)) {
			results = append(results, r)
		}
	}
	return results, nil
}
