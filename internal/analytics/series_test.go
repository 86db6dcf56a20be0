package analytics

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TimeSeriesAnalysis", func() {
	It("returns empty series for no records", func() {
		series := TimeSeriesAnalysis(nil, 30)
		Expect(series.Dates).To(BeEmpty())
		Expect(series.Dates).NotTo(BeNil())
		Expect(series.Amounts).To(BeEmpty())
		Expect(series.MovingAvg).To(BeEmpty())
	})

	It("sums per day in ascending date order", func() {
		series := TimeSeriesAnalysis(sampleRecords(), 30)
		Expect(series.Dates).To(Equal([]string{"2024-03-01", "2024-03-10", "2024-03-12", "2024-03-15"}))
		Expect(series.Amounts).To(Equal([]float64{320.5, 320.5, 1749, 2999}))
	})

	It("averages over a trailing window that shrinks at the start", func() {
		series := TimeSeriesAnalysis(sampleRecords(), 2)
		Expect(series.MovingAvg).To(Equal([]float64{320.5, 320.5, 1034.75, 2374}))
	})

	It("averages everything so far when the window is wider than the series", func() {
		series := TimeSeriesAnalysis(sampleRecords(), 30)
		Expect(series.MovingAvg[0]).To(Equal(320.5))
		Expect(series.MovingAvg[3]).To(BeNumerically("~", 5389.0/4, 1e-9))
	})

	It("uses each day alone with a window of one", func() {
		series := TimeSeriesAnalysis(sampleRecords(), 1)
		Expect(series.MovingAvg).To(Equal(series.Amounts))
	})

	It("falls back to the default window below one", func() {
		Expect(TimeSeriesAnalysis(sampleRecords(), 0)).To(Equal(TimeSeriesAnalysis(sampleRecords(), DefaultWindowDays)))
	})

	It("keeps the three slices parallel", func() {
		series := TimeSeriesAnalysis(sampleRecords(), 3)
		Expect(series.Amounts).To(HaveLen(len(series.Dates)))
		Expect(series.MovingAvg).To(HaveLen(len(series.Dates)))
	})
})
