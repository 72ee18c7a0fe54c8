package dataprocessing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sheetclean/pkg/contracts/domain"
)

const tracerName = "sheetclean/dataprocessing"

// Options configures the per-table cleaning stages.
type Options struct {
	// TrimColumns lists the columns whose text cells are whitespace-trimmed.
	TrimColumns []string
	// FillDownColumn is forward-filled; empty disables the stage.
	FillDownColumn string
	// Extractions derive new columns after corrections.
	Extractions []domain.ColumnExtractionRule
}

// ProcessStatistics reports what the stages did to one table.
type ProcessStatistics struct {
	Rows     int
	Columns  int
	Renamed  int
	Trimmed  int
	Filled   int
	Replaced int
	Skipped  int
	Derived  int
}

// Processor runs the fixed stage sequence over raw tables:
// column naming, trimming, fill-down, corrections, derived columns.
// It holds no per-table state and is safe for concurrent use.
type Processor struct {
	opts      Options
	rules     *domain.RuleSet
	engine    *CorrectionEngine
	extractor *DerivedColumnExtractor
	reporter  domain.Reporter
	tracer    trace.Tracer
}

// NewProcessor creates a processor. rules may be nil or empty.
func NewProcessor(opts Options, rules *domain.RuleSet, r domain.Reporter) *Processor {
	if r == nil {
		r = Discard
	}
	if rules == nil {
		rules = domain.NewRuleSet()
	}
	return &Processor{
		opts:      opts,
		rules:     rules,
		engine:    NewCorrectionEngine(r),
		extractor: NewDerivedColumnExtractor(r, opts.Extractions...),
		reporter:  r,
		tracer:    otel.Tracer(tracerName),
	}
}

// Process builds a Table from raw and runs every stage on it in place.
func (p *Processor) Process(ctx context.Context, raw *domain.RawTable) (*domain.Table, ProcessStatistics, error) {
	ctx, span := p.tracer.Start(ctx, "dataprocessing.Process",
		trace.WithAttributes(attribute.String("file", raw.Name)))
	defer span.End()

	var stats ProcessStatistics

	t, renamed, err := buildTable(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, stats, err
	}
	stats.Rows, stats.Columns, stats.Renamed = t.Len(), len(t.Columns()), renamed
	if renamed > 0 {
		p.reporter.Report(ctx, domain.Diagnostic{
			File:    t.Name,
			Stage:   domain.StageNormalize,
			Kind:    domain.DiagColumnsRenamed,
			Count:   renamed,
			Message: fmt.Sprintf("%d column names normalized", renamed),
		})
	}
	span.AddEvent(domain.StageNormalize)

	stats.Trimmed = TrimColumns(t, p.opts.TrimColumns)
	if stats.Trimmed > 0 {
		p.reporter.Report(ctx, domain.Diagnostic{
			File:    t.Name,
			Stage:   domain.StageTrim,
			Kind:    domain.DiagCellsTrimmed,
			Count:   stats.Trimmed,
			Message: fmt.Sprintf("%d cells trimmed", stats.Trimmed),
		})
	}
	span.AddEvent(domain.StageTrim)

	if col := p.opts.FillDownColumn; col != "" {
		if fd, ok := FillDown(t, col); ok {
			stats.Filled = fd.Filled
			p.reporter.Report(ctx, domain.Diagnostic{
				File:    t.Name,
				Stage:   domain.StageFillDown,
				Kind:    domain.DiagFillDown,
				Column:  col,
				Count:   fd.Filled,
				Message: fmt.Sprintf("column %q filled down", col),
			})
		}
	}
	span.AddEvent(domain.StageFillDown)

	res := p.engine.Apply(ctx, t, p.rules)
	stats.Replaced, stats.Skipped = res.Replaced, res.Skipped
	span.AddEvent(domain.StageCorrect)

	stats.Derived, err = p.extractor.Extract(ctx, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, stats, err
	}
	stats.Columns = len(t.Columns())
	span.AddEvent(domain.StageDerive)

	span.SetAttributes(
		attribute.Int("rows", stats.Rows),
		attribute.Int("values_replaced", stats.Replaced),
	)
	return t, stats, nil
}

// buildTable names the raw header and pads every row to the table width.
// It returns how many header names differ from the raw header text.
func buildTable(raw *domain.RawTable) (*domain.Table, int, error) {
	width := raw.Width()
	header := make([]domain.Value, width)
	copy(header, raw.Header)

	names := NormalizeColumnNames(header)
	renamed := 0
	for i, n := range names {
		if s, ok := header[i].AsText(); !ok || s != n {
			renamed++
		}
	}

	t, err := domain.NewTable(raw.Name, names)
	if err != nil {
		return nil, 0, fmt.Errorf("build table %s: %w", raw.Name, err)
	}
	for i, row := range raw.Rows {
		if err := t.AppendRow(row); err != nil {
			return nil, 0, fmt.Errorf("build table %s row %d: %w", raw.Name, i+2, err)
		}
	}
	return t, renamed, nil
}
