package exporter

import (
	"strconv"

	"sheetclean/pkg/contracts/domain"
)

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatValue renders an optional cell value; absent values are empty.
func formatValue(v *domain.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}
