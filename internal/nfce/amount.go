package nfce

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount parses a monetary value printed with a comma as decimal
// separator, such as "12,50". It reports false for anything that is not a
// finite number.
func ParseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatAmount renders v with two decimals for display.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Accumulator sums the parsed amounts of accepted rows at full precision.
type Accumulator struct {
	total    float64
	unparsed int
}

// Add adds the amount of item. Rows whose amount did not parse count as zero.
func (a *Accumulator) Add(item LineItem) {
	if !item.AmountParsed {
		a.unparsed++
		return
	}
	a.total += item.Amount
}

// Total returns the running total.
func (a *Accumulator) Total() float64 {
	return a.total
}

// Unparsed returns how many rows contributed zero because their amount did
// not parse.
func (a *Accumulator) Unparsed() int {
	return a.unparsed
}
