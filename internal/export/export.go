// Package export renders extraction results as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/zombor/nfce-extractor/internal/nfce"
)

// CombinedSheet is the name of the sheet holding every row of the run
const CombinedSheet = "Todos os PDFs"

// maxSheetName is the longest sheet name a workbook accepts
const maxSheetName = 31

// Columns are the header labels of every sheet, in row order
var Columns = []string{"Item", "Descrição", "Qtde.", "Unid.", "Vl. unid.", "Vl. total"}

// SheetName names the sheet of the document at the 1-based index
func SheetName(index int, total float64) string {
	return fmt.Sprintf("%d_%s", index, nfce.FormatAmount(total))
}

// itemToRow converts a line item to its printed cell values
func itemToRow(item nfce.LineItem) []interface{} {
	return []interface{}{
		item.ItemID,
		item.Description,
		item.Quantity,
		item.Unit,
		item.UnitValue,
		item.TotalValue,
	}
}

// Workbook builds a workbook with one sheet per document followed by the
// combined sheet. The caller must Close the returned file.
func Workbook(result *nfce.CorpusResult) (*excelize.File, error) {
	f := excelize.NewFile()
	used := make(map[string]bool)

	first := true
	addSheet := func(name string, rows []nfce.LineItem) error {
		name = uniqueName(name, used)
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
		return writeRows(f, name, rows)
	}

	for i, doc := range result.Documents {
		if err := addSheet(SheetName(i+1, doc.Total), doc.Rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := addSheet(CombinedSheet, result.CombinedRows); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// writeRows writes the header and one row per item
func writeRows(f *excelize.File, sheet string, rows []nfce.LineItem) error {
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header of %q: %w", sheet, err)
	}

	for i, item := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolving cell: %w", err)
		}
		values := itemToRow(item)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d of %q: %w", i+1, sheet, err)
		}
	}
	return nil
}

// uniqueName truncates name to the sheet name limit and suffixes it until unused
func uniqueName(name string, used map[string]bool) string {
	candidate := truncate(name, maxSheetName)
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	used[candidate] = true
	return candidate
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Write renders result as an XLSX workbook to w
func Write(result *nfce.CorpusResult, w io.Writer) error {
	f, err := Workbook(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
