package analytics

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWindowDays is the moving average window used when none is given
const DefaultWindowDays = 30

// TimeSeries is the daily spend series with its trailing moving average.
// The three slices are parallel.
type TimeSeries struct {
	Dates     []string  `json:"dates"`
	Amounts   []float64 `json:"amounts"`
	MovingAvg []float64 `json:"moving_avg"`
}

// TimeSeriesAnalysis sums amounts per calendar day, orders the days
// ascending, and averages each day with up to windowDays-1 preceding days.
// The window shrinks at the start of the series instead of being padded.
// A windowDays below 1 uses DefaultWindowDays.
func TimeSeriesAnalysis(records []Record, windowDays int) TimeSeries {
	series := TimeSeries{
		Dates:     make([]string, 0),
		Amounts:   make([]float64, 0),
		MovingAvg: make([]float64, 0),
	}
	if len(records) == 0 {
		return series
	}
	if windowDays < 1 {
		windowDays = DefaultWindowDays
	}

	daily := make(map[time.Time]decimal.Decimal)
	for _, r := range records {
		day := Day(r.TransactionDate)
		daily[day] = daily[day].Add(r.Amount)
	}

	days := make([]time.Time, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	for _, day := range days {
		series.Dates = append(series.Dates, day.Format(dateLayout))
		series.Amounts = append(series.Amounts, daily[day].InexactFloat64())
	}

	for i := range series.Amounts {
		window := series.Amounts[max(0, i-windowDays+1) : i+1]
		var sum float64
		for _, v := range window {
			sum += v
		}
		series.MovingAvg = append(series.MovingAvg, sum/float64(len(window)))
	}

	return series
}
