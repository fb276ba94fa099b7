package nfce

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseAmount", func() {
	DescribeTable("parsing comma-decimal values",
		func(in string, want float64, wantOK bool) {
			got, ok := ParseAmount(in)
			Expect(ok).To(Equal(wantOK))
			Expect(got).To(Equal(want))
		},
		Entry("comma decimal", "12,50", 12.50, true),
		Entry("no decimals", "7", 7.0, true),
		Entry("period decimal", "3.25", 3.25, true),
		Entry("letters", "abc", 0.0, false),
		Entry("thousands separator", "1.234,56", 0.0, false),
		Entry("two commas", "1,234,56", 0.0, false),
		Entry("empty", "", 0.0, false),
		Entry("not a number", "NaN", 0.0, false),
		Entry("infinity", "Inf", 0.0, false),
	)
})

var _ = Describe("FormatAmount", func() {
	It("rounds to two decimals", func() {
		Expect(FormatAmount(19.5)).To(Equal("19.50"))
		Expect(FormatAmount(2.675)).To(Equal("2.67"))
	})
})

var _ = Describe("Accumulator", func() {
	It("keeps full precision", func() {
		var acc Accumulator
		tenCents := 0.1
		for i := 0; i < 3; i++ {
			acc.Add(LineItem{Amount: tenCents, AmountParsed: true})
		}
		Expect(acc.Total()).To(Equal(tenCents + tenCents + tenCents))
		Expect(acc.Total()).NotTo(Equal(0.3))
	})

	It("counts unparsed rows as zero", func() {
		var acc Accumulator
		acc.Add(LineItem{Amount: 5, AmountParsed: true})
		acc.Add(LineItem{TotalValue: "abc"})
		Expect(acc.Total()).To(Equal(5.0))
		Expect(acc.Unparsed()).To(Equal(1))
	})
})

var _ = Describe("ComputeStatistics", func() {
	var (
		totals []float64
		stats  Statistics
		err    error
	)

	JustBeforeEach(func() {
		stats, err = ComputeStatistics(totals)
	})

	When("there are two documents", func() {
		BeforeEach(func() {
			totals = []float64{100, 300}
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("computes count, sum, mean, min and max", func() {
			Expect(stats).To(Equal(Statistics{Count: 2, Sum: 400, Mean: 200, Min: 100, Max: 300}))
		})

		It("computes contribution percentages", func() {
			shares, sharesErr := Contributions(totals)
			Expect(sharesErr).NotTo(HaveOccurred())
			Expect(shares).To(Equal([]float64{25, 75}))
		})
	})

	When("there is one document", func() {
		BeforeEach(func() {
			totals = []float64{42.5}
		})

		It("uses it for every metric", func() {
			Expect(stats).To(Equal(Statistics{Count: 1, Sum: 42.5, Mean: 42.5, Min: 42.5, Max: 42.5}))
		})
	})

	When("there are no documents", func() {
		BeforeEach(func() {
			totals = nil
		})

		It("returns ErrNoDocuments", func() {
			Expect(err).To(MatchError(ErrNoDocuments))
		})

		It("refuses contributions too", func() {
			_, sharesErr := Contributions(totals)
			Expect(sharesErr).To(MatchError(ErrNoDocuments))
		})
	})

	When("every total is zero", func() {
		BeforeEach(func() {
			totals = []float64{0, 0}
		})

		It("still computes statistics", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Mean).To(BeZero())
		})

		It("refuses contributions", func() {
			shares, sharesErr := Contributions(totals)
			Expect(sharesErr).To(MatchError(ErrZeroSum))
			Expect(shares).To(BeNil())
		})
	})
})
