package dataprocessing

import (
	"strings"

	"sheetclean/pkg/contracts/domain"
)

// TrimColumns strips leading and trailing whitespace from text cells in the
// listed columns. Non-text cells pass through unchanged and missing columns
// are skipped. It returns the number of cells whose value changed.
func TrimColumns(t *domain.Table, columns []string) int {
	changed := 0
	for _, col := range columns {
		c, ok := t.ColumnIndex(col)
		if !ok {
			continue
		}
		for _, row := range t.Records() {
			s, ok := row[c].AsText()
			if !ok {
				continue
			}
			if trimmed := strings.TrimSpace(s); trimmed != s {
				row[c] = domain.Text(trimmed)
				changed++
			}
		}
	}
	return changed
}
