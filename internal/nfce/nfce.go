// Package nfce recovers line-item rows and totals from the extracted text of
// NFC-e DANFE receipts.
//
// The package is pure: it never touches files, PDFs or the network. Callers
// hand it pages of text lines and get back immutable results.
package nfce

import "strings"

// LineItem is one recovered table row. The string fields hold the tokens as
// printed on the receipt.
type LineItem struct {
	ItemID       string  `json:"item_id"`
	Description  string  `json:"description"`
	Quantity     string  `json:"quantity"`
	Unit         string  `json:"unit"`
	UnitValue    string  `json:"unit_value"`
	TotalValue   string  `json:"total_value"`
	Amount       float64 `json:"amount"`        // TotalValue parsed with comma as decimal separator
	AmountParsed bool    `json:"amount_parsed"` // false when TotalValue is not a number
}

// Page is the ordered text lines of one document page.
type Page []string

// Document is the text of one source receipt, page by page.
type Document struct {
	Name  string
	Pages []Page
	// ReadError is set when the source could not be turned into text. Such a
	// document yields no rows.
	ReadError string
}

// Tally counts the anomalies recovered while extracting a document.
type Tally struct {
	Pages              int `json:"pages"`
	PagesWithoutHeader int `json:"pages_without_header"`
	MalformedLines     int `json:"malformed_lines"`
	OutOfSequence      int `json:"out_of_sequence"`
	UnparsedAmounts    int `json:"unparsed_amounts"`
}

// DocumentResult is the outcome of extracting one document.
type DocumentResult struct {
	Name      string     `json:"name"`
	Rows      []LineItem `json:"rows"`
	Total     float64    `json:"total"`
	Tally     Tally      `json:"tally"`
	ReadError string     `json:"read_error,omitempty"`
}

// SplitLines splits extracted page text into lines.
func SplitLines(text string) Page {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return Page(strings.Split(text, "\n"))
}
