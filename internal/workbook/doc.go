// Package workbook reads and writes spreadsheets with excelize.
//
// Source yields the first sheet of a workbook as a domain.RawTable with typed
// cells. Sink writes a cleaned domain.Table back into the same workbook as a
// dedicated sheet (Upraveno by default) holding one banded Excel table, and
// replaces that sheet on every run so rewriting is repeatable.
package workbook
