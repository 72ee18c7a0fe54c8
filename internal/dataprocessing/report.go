package dataprocessing

import (
	"context"
	"log/slog"
	"sync"

	"sheetclean/pkg/contracts/domain"
)

// Discard is a Reporter that drops every diagnostic.
var Discard domain.Reporter = domain.ReporterFunc(func(context.Context, domain.Diagnostic) {})

// LogReporter writes diagnostics as structured log records.
type LogReporter struct {
	logger *slog.Logger
	// WarnUnmatched raises unused replace_map entries from DEBUG to WARN.
	WarnUnmatched bool
}

// NewLogReporter creates a reporter logging through logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger.With(slog.String("component", "diagnostics"))}
}

// Report logs d at a level chosen by its kind.
func (r *LogReporter) Report(ctx context.Context, d domain.Diagnostic) {
	attrs := []slog.Attr{
		slog.String("file", d.File),
		slog.String("stage", d.Stage),
		slog.String("kind", string(d.Kind)),
	}
	if d.Column != "" {
		attrs = append(attrs, slog.String("column", d.Column))
	}
	if d.Wrong != nil {
		attrs = append(attrs, slog.String("wrong", d.Wrong.String()))
	}
	if d.Correct != nil {
		attrs = append(attrs, slog.String("correct", d.Correct.String()))
	}
	attrs = append(attrs, slog.Int("count", d.Count))

	r.logger.LogAttrs(ctx, r.level(d.Kind), d.Message, attrs...)
}

func (r *LogReporter) level(k domain.DiagnosticKind) slog.Level {
	switch k {
	case domain.DiagColumnNotFound:
		return slog.LevelWarn
	case domain.DiagNoMatch:
		if r.WarnUnmatched {
			return slog.LevelWarn
		}
		return slog.LevelDebug
	case domain.DiagCellsTrimmed, domain.DiagColumnsRenamed:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Collector keeps every diagnostic in memory, in arrival order.
type Collector struct {
	mu    sync.Mutex
	items []domain.Diagnostic
}

// Report appends d.
func (c *Collector) Report(_ context.Context, d domain.Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of everything collected so far.
func (c *Collector) Diagnostics() []domain.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// OfKind returns the collected diagnostics of one kind.
func (c *Collector) OfKind(k domain.DiagnosticKind) []domain.Diagnostic {
	var out []domain.Diagnostic
	for _, d := range c.Diagnostics() {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// MultiReporter fans diagnostics out to several reporters.
func MultiReporter(reporters ...domain.Reporter) domain.Reporter {
	rs := make([]domain.Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return domain.ReporterFunc(func(ctx context.Context, d domain.Diagnostic) {
		for _, r := range rs {
			r.Report(ctx, d)
		}
	})
}
