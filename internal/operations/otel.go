package operations

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sheetclean/internal/infrastructure"
	"sheetclean/pkg/contracts/domain"
)

const TracerName = "sheetclean/operations"

// startFileSpan opens the span covering one workbook.
func startFileSpan(ctx context.Context, tracer trace.Tracer, res *FileResult) (context.Context, trace.Span) {
	return tracer.Start(ctx, "operations.file",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("file.name", res.Name),
			attribute.String("file.path", res.Path),
			attribute.String("trace_id", res.TraceID),
		),
	)
}

// endFileSpan records the outcome of res on span and ends it.
func endFileSpan(span trace.Span, res *FileResult) {
	span.SetAttributes(
		attribute.String("file.status", string(res.Status)),
		attribute.Int("rows", res.Stats.Rows),
		attribute.Int("values_replaced", res.Stats.Replaced),
	)
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type metricsReporter struct {
	metrics *infrastructure.RunMetrics
}

// NewMetricsReporter returns a Reporter counting diagnostics by kind.
func NewMetricsReporter(m *infrastructure.RunMetrics) domain.Reporter {
	return &metricsReporter{metrics: m}
}

func (r *metricsReporter) Report(ctx context.Context, d domain.Diagnostic) {
	r.metrics.RecordDiagnostic(ctx, string(d.Kind))
}
