package nfce

import "strings"

// HeaderPhrase is the column-title line that opens the item table on every
// DANFE page.
const HeaderPhrase = "Item Descrição Qtde. Unid. Vl. unid. Vl. total"

// LocateHeader returns the index of the line right after the first line that
// contains HeaderPhrase. The boolean is false when the page has no header.
func LocateHeader(lines []string) (int, bool) {
	for i, line := range lines {
		if strings.Contains(line, HeaderPhrase) {
			return i + 1, true
		}
	}
	return 0, false
}
