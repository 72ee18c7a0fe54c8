package dataprocessing

import (
	"strconv"
	"strings"

	"sheetclean/pkg/contracts/domain"
)

// NormalizeColumnNames turns raw header cells into unique column names.
//
// Text headers are trimmed and their spaces replaced with underscores. Blank
// or non-text headers become Column_<position> (1-based). Duplicates are
// resolved left to right: the first occurrence of a base name keeps it, the
// k-th repeat becomes <base>_<k>. A suffixed name that is already taken is
// skipped, so the output never contains duplicates.
func NormalizeColumnNames(headers []domain.Value) []string {
	names := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	used := make(map[string]bool, len(headers))

	for i, h := range headers {
		base := baseColumnName(h, i)

		n := seen[base]
		name := base
		if n > 0 {
			name = suffixed(base, n)
		}
		for used[name] {
			n++
			name = suffixed(base, n)
		}

		seen[base] = n + 1
		used[name] = true
		names[i] = name
	}
	return names
}

func baseColumnName(h domain.Value, pos int) string {
	if s, ok := h.AsText(); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			return strings.ReplaceAll(s, " ", "_")
		}
	}
	return "Column_" + strconv.Itoa(pos+1)
}

func suffixed(base string, n int) string {
	return base + "_" + strconv.Itoa(n)
}
