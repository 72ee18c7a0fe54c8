package dataprocessing

import (
	"sheetclean/pkg/contracts/domain"
)

// FillDownStatistics describes one fill-down pass.
type FillDownStatistics struct {
	Column string
	// Filled is the number of null cells that received a preceding value.
	Filled int
	// LeadingNulls is the number of nulls at the top with nothing to copy.
	LeadingNulls int
}

// FillDown replaces null cells in column with the nearest non-null value
// above them, modelling vertically merged cells. Nulls before the first
// value stay null. ok is false when the column does not exist.
func FillDown(t *domain.Table, column string) (stats FillDownStatistics, ok bool) {
	stats.Column = column
	c, ok := t.ColumnIndex(column)
	if !ok {
		return stats, false
	}

	var last domain.Value
	for _, row := range t.Records() {
		if !row[c].IsNull() {
			last = row[c]
			continue
		}
		if last.IsNull() {
			stats.LeadingNulls++
			continue
		}
		row[c] = last
		stats.Filled++
	}
	return stats, true
}
