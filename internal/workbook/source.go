package workbook

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "sheetclean/internal/errors"
	"sheetclean/pkg/contracts/domain"
)

// Source reads the first worksheet of a workbook as a raw table.
type Source struct {
	// ReservedSheet is skipped when choosing the sheet to read, so that a
	// workbook rewritten earlier is read from its original data.
	ReservedSheet string
	logger        *slog.Logger
}

// NewSource creates a Source that never reads reservedSheet.
func NewSource(reservedSheet string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{ReservedSheet: reservedSheet, logger: logger.With(slog.String("component", "workbook_source"))}
}

// Read opens the workbook at path and returns the header and data rows of
// its first non-reserved sheet, with cells typed as text, number, bool or
// date. Rows are returned as stored; a row may be shorter than the header.
func (s *Source) Read(ctx context.Context, path string) (*domain.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open workbook", err).WithContext("file", path)
	}
	defer f.Close()

	sheet := s.pickSheet(f.GetSheetList())
	if sheet == "" {
		return nil, apperrors.NewParsingError("workbook has no data sheet", nil).WithContext("file", path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("read sheet", err).
			WithContext("file", path).
			WithContext("sheet", sheet)
	}

	r := &cellReader{f: f, sheet: sheet, dateStyles: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}

	raw := &domain.RawTable{Name: filepath.Base(path), Sheet: sheet}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vals := make([]domain.Value, len(row))
		for j, cell := range row {
			vals[j] = r.value(j+1, i+1, cell)
		}
		if i == 0 {
			raw.Header = vals
			continue
		}
		raw.Rows = append(raw.Rows, vals)
	}

	s.logger.DebugContext(ctx, "sheet read",
		slog.String("file", raw.Name),
		slog.String("sheet", sheet),
		slog.Int("rows", len(raw.Rows)),
		slog.Int("columns", raw.Width()))
	return raw, nil
}

func (s *Source) pickSheet(sheets []string) string {
	for _, name := range sheets {
		if !strings.EqualFold(name, s.ReservedSheet) {
			return name
		}
	}
	return ""
}

// cellReader types raw cell strings using the cell type and number format.
type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (r *cellReader) value(col, row int, raw string) domain.Value {
	if raw == "" {
		return domain.Null()
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return domain.Text(raw)
	}
	typ, err := r.f.GetCellType(r.sheet, cell)
	if err != nil {
		return domain.Text(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		return domain.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return domain.Time(t)
		}
		return domain.Text(raw)
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Text(raw)
		}
		if r.isDate(cell) {
			if t, err := excelize.ExcelDateToTime(f, r.date1904); err == nil {
				return domain.Time(t)
			}
		}
		return domain.Number(f)
	default:
		return domain.Text(raw)
	}
}

func (r *cellReader) isDate(cell string) bool {
	idx, err := r.f.GetCellStyle(r.sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	if d, ok := r.dateStyles[idx]; ok {
		return d
	}
	d := false
	if style, err := r.f.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			d = isDateFormat(*style.CustomNumFmt)
		} else {
			d = isBuiltInDateFormat(style.NumFmt)
		}
	}
	r.dateStyles[idx] = d
	return d
}

// isBuiltInDateFormat reports whether a built-in number format id renders a
// date or time.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	default:
		return false
	}
}

var (
	quotedOrBracketed = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)
	dateTokens        = regexp.MustCompile(`[ydhs]`)
)

// isDateFormat reports whether a custom format code renders a date or time.
func isDateFormat(code string) bool {
	code = strings.ToLower(quotedOrBracketed.ReplaceAllString(code, ""))
	return dateTokens.MatchString(code)
}
