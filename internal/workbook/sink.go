package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "sheetclean/internal/errors"
	"sheetclean/pkg/contracts/domain"
)

// SinkOptions controls where and how the cleaned table is written.
type SinkOptions struct {
	SheetName  string
	TableName  string
	TableStyle string
}

// Sink writes a cleaned table back into its workbook as a new sheet holding
// a banded table. Sheets other than SheetName are left untouched.
type Sink struct {
	opts   SinkOptions
	logger *slog.Logger
}

// NewSink creates a Sink.
func NewSink(opts SinkOptions, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{opts: opts, logger: logger.With(slog.String("component", "workbook_sink"))}
}

// Write replaces the output sheet of the workbook at path with t.
func (s *Sink) Write(ctx context.Context, path string, t *domain.Table) error {
	columns := t.Columns()
	if len(columns) == 0 {
		return apperrors.NewAppValidationError("table has no columns").WithContext("file", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return apperrors.NewStorageError("open workbook", err).WithContext("file", path)
	}
	defer f.Close()

	if err := s.dropOutputSheet(f); err != nil {
		return apperrors.NewStorageError("delete previous output sheet", err).WithContext("file", path)
	}
	tableName := s.uniqueTableName(f)

	if _, err := f.NewSheet(s.opts.SheetName); err != nil {
		return apperrors.NewStorageError("create output sheet", err).WithContext("file", path)
	}
	sw, err := f.NewStreamWriter(s.opts.SheetName)
	if err != nil {
		return apperrors.NewStorageError("open sheet writer", err).WithContext("file", path)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return apperrors.NewStorageError("write header", err).WithContext("file", path)
	}

	for i, rec := range t.Records() {
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v.Interface()
		}
		if err := sw.SetRow(cell, row); err != nil {
			return apperrors.NewStorageError("write row", err).
				WithContext("file", path).
				WithContext("row", i+2)
		}
	}

	ref, err := tableRange(len(columns), t.Len())
	if err != nil {
		return err
	}
	showStripes := true
	if err := sw.AddTable(&excelize.Table{
		Range:             ref,
		Name:              tableName,
		StyleName:         s.opts.TableStyle,
		ShowRowStripes:    &showStripes,
		ShowColumnStripes: true,
	}); err != nil {
		return apperrors.NewStorageError("add table", err).WithContext("file", path)
	}
	if err := sw.Flush(); err != nil {
		return apperrors.NewStorageError("flush sheet", err).WithContext("file", path)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return apperrors.NewStorageError("save workbook", err).WithContext("file", path)
	}

	s.logger.DebugContext(ctx, "sheet written",
		slog.String("file", t.Name),
		slog.String("sheet", s.opts.SheetName),
		slog.String("table", tableName),
		slog.String("range", ref))
	return nil
}

// dropOutputSheet removes the output sheet left by an earlier run together
// with its tables.
func (s *Sink) dropOutputSheet(f *excelize.File) error {
	idx, err := f.GetSheetIndex(s.opts.SheetName)
	if err != nil || idx < 0 {
		return nil
	}
	tables, err := f.GetTables(s.opts.SheetName)
	if err != nil {
		return err
	}
	for _, tbl := range tables {
		if err := f.DeleteTable(tbl.Name); err != nil {
			return err
		}
	}
	return f.DeleteSheet(s.opts.SheetName)
}

// tableRange covers the header and every data row. A table needs at least
// one body row, so an empty table still spans two rows.
func tableRange(cols, rows int) (string, error) {
	last := rows + 1
	if last < 2 {
		last = 2
	}
	end, err := excelize.CoordinatesToCellName(cols, last)
	if err != nil {
		return "", err
	}
	return "A1:" + end, nil
}

// uniqueTableName returns the configured table name, suffixed when another
// sheet already holds a table with that name. Table names are
// case-insensitive workbook-wide.
func (s *Sink) uniqueTableName(f *excelize.File) string {
	taken := map[string]bool{}
	for _, sheet := range f.GetSheetList() {
		tables, err := f.GetTables(sheet)
		if err != nil {
			continue
		}
		for _, tbl := range tables {
			taken[strings.ToLower(tbl.Name)] = true
		}
	}

	name := s.opts.TableName
	for n := 1; taken[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s_%d", s.opts.TableName, n)
	}
	return name
}
