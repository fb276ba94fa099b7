package reading

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/zombor/nfce-extractor/internal/nfce"
)

const (
	// baselineTolerance is how far apart, in points, two glyph runs may sit
	// vertically and still belong to the same line.
	baselineTolerance = 2.0
	// wordGapRatio is the horizontal gap, as a fraction of the font size,
	// above which two runs are separated by a space.
	wordGapRatio = 0.25
)

// PlainPDF implements the Reader interface in pure Go using ledongthuc/pdf.
// It needs no system libraries, at the cost of rebuilding lines from glyph
// positions itself.
type PlainPDF struct{}

// NewPlainPDF creates a new PlainPDF reader
func NewPlainPDF() *PlainPDF {
	return &PlainPDF{}
}

// ReadPages extracts the text of every page
func (p *PlainPDF) ReadPages(data []byte, contentType string) ([]nfce.Page, error) {
	return readPages(data, contentType, plainPages)
}

// Close is a no-op
func (p *PlainPDF) Close() error {
	return nil
}

func plainPages(data []byte) (pages []nfce.Page, err error) {
	// ledongthuc/pdf panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("reading PDF content: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	total := r.NumPage()
	pages = make([]nfce.Page, 0, total)
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nfce.Page{})
			continue
		}
		pages = append(pages, linesFromTexts(page.Content().Text))
	}
	return pages, nil
}

type textRow struct {
	y     float64
	texts []pdf.Text
}

// linesFromTexts groups glyph runs sharing a baseline into lines, top to
// bottom, each ordered left to right.
func linesFromTexts(texts []pdf.Text) nfce.Page {
	var rows []*textRow
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		row := findRow(rows, t.Y)
		if row == nil {
			row = &textRow{y: t.Y}
			rows = append(rows, row)
		}
		row.texts = append(row.texts, t)
	}

	// PDF user space grows upwards, so the top line has the largest Y.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	lines := make(nfce.Page, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.line())
	}
	return lines
}

func findRow(rows []*textRow, y float64) *textRow {
	for _, row := range rows {
		if abs(row.y-y) < baselineTolerance {
			return row
		}
	}
	return nil
}

func (r *textRow) line() string {
	sort.SliceStable(r.texts, func(i, j int) bool { return r.texts[i].X < r.texts[j].X })

	var b strings.Builder
	var end float64
	for i, t := range r.texts {
		if i > 0 && t.X-end > t.FontSize*wordGapRatio && !strings.HasPrefix(t.S, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		end = t.X + t.W
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
