package analytics

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func randomRecords(n int, seed int64) []Record {
	rng := rand.New(rand.NewSource(seed))
	vendors := []string{"abc", "ABC", "Dmart", "dmart", "Zomato", "amazon", "Uber"}
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			ID:     fmt.Sprint(i),
			Vendor: vendors[rng.Intn(len(vendors))],
			Amount: decimal.NewFromInt(int64(rng.Intn(20))).Div(decimal.NewFromInt(4)),
		}
	}
	return records
}

var _ = Describe("SortByAmount", func() {
	It("sorts descending", func() {
		Expect(ids(SortByAmount(sampleRecords(), true))).To(Equal([]string{"3", "1", "2", "5", "4"}))
	})

	It("sorts ascending", func() {
		Expect(ids(SortByAmount(sampleRecords(), false))).To(Equal([]string{"4", "2", "5", "1", "3"}))
	})

	It("handles empty and single inputs", func() {
		Expect(SortByAmount(nil, true)).To(BeEmpty())
		Expect(ids(SortByAmount(sampleRecords()[:1], true))).To(Equal([]string{"1"}))
	})

	It("matches a stable library sort", func() {
		for seed := int64(0); seed < 20; seed++ {
			records := randomRecords(50, seed)

			want := slices.Clone(records)
			slices.SortStableFunc(want, func(a, b Record) int { return a.Amount.Cmp(b.Amount) })
			Expect(ids(SortByAmount(records, false))).To(Equal(ids(want)))

			wantDesc := slices.Clone(records)
			slices.SortStableFunc(wantDesc, func(a, b Record) int { return b.Amount.Cmp(a.Amount) })
			Expect(ids(SortByAmount(records, true))).To(Equal(ids(wantDesc)))
		}
	})

	It("does not modify the input", func() {
		records := sampleRecords()
		SortByAmount(records, true)
		Expect(ids(records)).To(Equal([]string{"1", "2", "3", "4", "5"}))
	})
})

var _ = Describe("SortByVendor", func() {
	It("sorts case-insensitively", func() {
		Expect(ids(SortByVendor(sampleRecords()))).To(Equal([]string{"3", "1", "4", "2", "5"}))
	})

	It("keeps the input order of vendors that differ only in case", func() {
		records := []Record{
			{ID: "first", Vendor: "abc"},
			{ID: "z", Vendor: "Zomato"},
			{ID: "second", Vendor: "ABC"},
		}
		Expect(ids(SortByVendor(records))).To(Equal([]string{"first", "second", "z"}))

		records[0], records[2] = records[2], records[0]
		Expect(ids(SortByVendor(records))).To(Equal([]string{"second", "first", "z"}))
	})

	It("matches a stable library sort", func() {
		for seed := int64(0); seed < 20; seed++ {
			records := randomRecords(50, seed)
			want := slices.Clone(records)
			slices.SortStableFunc(want, func(a, b Record) int {
				return strings.Compare(strings.ToLower(a.Vendor), strings.ToLower(b.Vendor))
			})
			Expect(ids(SortByVendor(records))).To(Equal(ids(want)))
		}
	})
})
