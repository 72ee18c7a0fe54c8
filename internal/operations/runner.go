package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"sheetclean/internal/dataprocessing"
	apperrors "sheetclean/internal/errors"
	"sheetclean/internal/files"
	"sheetclean/internal/infrastructure"
	"sheetclean/internal/validation"
	"sheetclean/pkg/contracts/domain"
)

// TableSource yields the raw table stored in a workbook.
type TableSource interface {
	Read(ctx context.Context, path string) (*domain.RawTable, error)
}

// TableSink persists a cleaned table into its workbook.
type TableSink interface {
	Write(ctx context.Context, path string, t *domain.Table) error
}

// TableProcessor turns a raw table into a cleaned one.
type TableProcessor interface {
	Process(ctx context.Context, raw *domain.RawTable) (*domain.Table, dataprocessing.ProcessStatistics, error)
}

// Options tune a Runner.
type Options struct {
	// Workers bounds the files processed at once. Values below 1 mean 1.
	Workers int
	// Extensions accepted by the per-file check. Empty disables the check.
	Extensions []string
	// Backup copies each workbook to <file>.bak before it is rewritten.
	Backup bool
	// DryRun runs every stage but never writes.
	DryRun bool
}

// Runner cleans a batch of workbooks.
type Runner struct {
	source    TableSource
	sink      TableSink
	processor TableProcessor
	opts      Options

	validator *validation.FileValidator
	files     *files.Manager
	metrics   *infrastructure.RunMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records per-file metrics on m.
func WithMetrics(m *infrastructure.RunMetrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer sets the tracer used for per-file spans.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithValidator replaces the per-file validator.
func WithValidator(v *validation.FileValidator) RunnerOption {
	return func(r *Runner) { r.validator = v }
}

// WithFileManager replaces the file manager used for backups.
func WithFileManager(m *files.Manager) RunnerOption {
	return func(r *Runner) { r.files = m }
}

// NewRunner creates a Runner.
func NewRunner(source TableSource, sink TableSink, processor TableProcessor, opts Options, options ...RunnerOption) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	r := &Runner{
		source:    source,
		sink:      sink,
		processor: processor,
		opts:      opts,
		tracer:    otel.Tracer(TracerName),
		logger:    slog.Default(),
	}
	for _, o := range options {
		o(r)
	}
	r.logger = r.logger.With(slog.String("component", "runner"))
	if r.validator == nil {
		r.validator = validation.NewFileValidator(r.logger)
	}
	if r.files == nil {
		r.files = files.NewManager(r.logger)
	}
	return r
}

// Run processes every path and returns one result per path, in input
// order. A failing file never stops the batch; the returned error is only
// set when ctx ends before every file was handled.
func (r *Runner) Run(ctx context.Context, paths []string) (*BatchSummary, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	start := time.Now()

	r.logger.InfoContext(ctx, "Batch started",
		slog.Int("files", len(paths)),
		slog.Int("workers", r.opts.Workers),
		slog.Bool("dry_run", r.opts.DryRun))

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = r.ProcessFile(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	summary := newBatchSummary(infrastructure.GetRunID(ctx), results, time.Since(start))
	level := slog.LevelInfo
	if summary.HasFailures() {
		level = slog.LevelWarn
	}
	r.logger.LogAttrs(ctx, level, "Batch complete", summary.LogAttrs()...)
	return summary, ctx.Err()
}

// ProcessFile reads, cleans and writes one workbook. Panics raised while
// handling it are recovered into a failed result.
func (r *Runner) ProcessFile(ctx context.Context, path string) (res FileResult) {
	start := time.Now()
	res = FileResult{
		Path:    path,
		Name:    filepath.Base(path),
		TraceID: infrastructure.GenerateTraceID(),
	}
	ctx = infrastructure.WithTraceID(ctx, res.TraceID)
	ctx, span := startFileSpan(ctx, r.tracer, &res)
	logger := r.logger.With(slog.String("file", res.Name))

	defer func() {
		if rec := recover(); rec != nil {
			res.Status = FileStatusFailed
			res.Err = fmt.Errorf("panic while processing %s: %v", res.Name, rec)
		}
		res.Duration = time.Since(start)
		r.metrics.RecordFile(ctx, string(res.Status), res.Stats.Rows, res.Stats.Replaced, res.Duration)
		endFileSpan(span, &res)

		if res.Err != nil {
			infrastructure.WithError(logger, res.Err).ErrorContext(ctx, "File failed",
				slog.Duration("duration", res.Duration))
			return
		}
		logger.InfoContext(ctx, "File cleaned",
			slog.String("status", string(res.Status)),
			slog.Int("rows", res.Stats.Rows),
			slog.Int("values_replaced", res.Stats.Replaced),
			slog.Duration("duration", res.Duration))
	}()

	fail := func(err error) FileResult {
		res.Status = FileStatusFailed
		res.Err = err
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if len(r.opts.Extensions) > 0 {
		if err := r.validator.ValidateSpreadsheet(path, r.opts.Extensions, !r.opts.DryRun); err != nil {
			return fail(err)
		}
	}

	raw, err := r.source.Read(ctx, path)
	if err != nil {
		return fail(err)
	}

	table, stats, err := r.processor.Process(ctx, raw)
	res.Stats = stats
	if err != nil {
		return fail(err)
	}

	if r.opts.DryRun {
		res.Status = FileStatusDryRun
		return res
	}

	if r.opts.Backup {
		backup, err := r.files.Backup(path)
		if err != nil {
			return fail(apperrors.NewStorageError("backup workbook", err).WithContext("file", path))
		}
		res.Backup = backup
		logger.DebugContext(ctx, "Backup written", slog.String("backup", backup))
	}

	if err := r.sink.Write(ctx, path, table); err != nil {
		return fail(err)
	}
	res.Status = FileStatusSucceeded
	return res
}
