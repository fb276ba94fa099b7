package nfce

import "strings"

const (
	minRowFields = 6
	// itemIDDigits is the width of the item numbers subject to continuity checks.
	itemIDDigits = 3
)

// ParseRow turns one text line into a candidate LineItem. It reports false
// when the line does not have the shape of a table row: at least six
// whitespace-separated tokens, the first made only of decimal digits.
//
// The last four tokens are quantity, unit, unit value and total value. All
// tokens between the item number and those four form the description, so
// descriptions of any word count are absorbed.
func ParseRow(line string) (LineItem, bool) {
	fields := strings.Fields(line)
	if len(fields) < minRowFields || !isDigits(fields[0]) {
		return LineItem{}, false
	}

	n := len(fields)
	item := LineItem{
		ItemID:      fields[0],
		Description: strings.Join(fields[1:n-4], " "),
		Quantity:    fields[n-4],
		Unit:        fields[n-3],
		UnitValue:   fields[n-2],
		TotalValue:  fields[n-1],
	}
	item.Amount, item.AmountParsed = ParseAmount(item.TotalValue)
	return item, true
}

// Sequenced reports whether the item number takes part in continuity checks.
func (l LineItem) Sequenced() bool {
	return len(l.ItemID) == itemIDDigits
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
