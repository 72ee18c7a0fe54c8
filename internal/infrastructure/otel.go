package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"sheetclean/internal/config"
)

const (
	ServiceName = "sheetclean"
	MeterName   = "sheetclean"
)

// Telemetry holds the run's OpenTelemetry providers. Metrics are always
// collected into a private Prometheus registry; they are written out as a
// text file on Shutdown when a metrics file is configured. Tracing is only
// exported when a trace exporter is configured.
type Telemetry struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
	Registry       *prometheus.Registry
	Metrics        *RunMetrics

	metricsFile string
	logger      *slog.Logger
}

// InitializeTelemetry sets up metrics and, optionally, tracing. Trace spans
// go to traceOut when the stdout exporter is selected; nil means os.Stdout.
func InitializeTelemetry(cfg config.TelemetryConfig, version string, traceOut io.Writer, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
	)

	t := &Telemetry{
		Registry:    prometheus.NewRegistry(),
		metricsFile: cfg.MetricsFile,
		logger:      logger,
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(t.Registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Metrics, err = NewRunMetrics(t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(version)))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	switch cfg.TraceExporter {
	case "stdout":
		if traceOut == nil {
			traceOut = os.Stdout
		}
		spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceOut), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spanExporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(t.TracerProvider)
	case "none", "":
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	logger.Debug("Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))
	return t, nil
}

// Tracer returns a tracer from the configured provider, or the global one
// when tracing is disabled.
func (t *Telemetry) Tracer(name string) trace.Tracer {
	if t == nil || t.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return t.TracerProvider.Tracer(name)
}

// Shutdown flushes spans, writes the metrics file and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.metricsFile != "" {
		if err := prometheus.WriteToTextfile(t.metricsFile, t.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics file: %w", err))
		} else {
			t.logger.InfoContext(ctx, "Metrics written", slog.String("path", t.metricsFile))
		}
	}

	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
	}
	return errors.Join(errs...)
}

// RunMetrics holds the instruments recorded while cleaning workbooks.
type RunMetrics struct {
	FilesProcessed metric.Int64Counter
	RowsProcessed  metric.Int64Counter
	ValuesReplaced metric.Int64Counter
	Diagnostics    metric.Int64Counter
	FileDuration   metric.Float64Histogram
}

// NewRunMetrics creates the run instruments on meter.
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	filesProcessed, err := meter.Int64Counter(
		"files_processed",
		metric.WithDescription("Workbooks processed, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	rowsProcessed, err := meter.Int64Counter(
		"rows_processed",
		metric.WithDescription("Data rows cleaned"),
	)
	if err != nil {
		return nil, err
	}

	valuesReplaced, err := meter.Int64Counter(
		"values_replaced",
		metric.WithDescription("Cells rewritten by correction rules"),
	)
	if err != nil {
		return nil, err
	}

	diagnostics, err := meter.Int64Counter(
		"diagnostics",
		metric.WithDescription("Pipeline diagnostics, by kind"),
	)
	if err != nil {
		return nil, err
	}

	fileDuration, err := meter.Float64Histogram(
		"file_duration",
		metric.WithDescription("Time spent on one workbook"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		FilesProcessed: filesProcessed,
		RowsProcessed:  rowsProcessed,
		ValuesReplaced: valuesReplaced,
		Diagnostics:    diagnostics,
		FileDuration:   fileDuration,
	}, nil
}

// RecordFile records the outcome of one workbook.
func (m *RunMetrics) RecordFile(ctx context.Context, status string, rows, replaced int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.FilesProcessed.Add(ctx, 1, attrs)
	m.FileDuration.Record(ctx, d.Seconds(), attrs)
	m.RowsProcessed.Add(ctx, int64(rows))
	m.ValuesReplaced.Add(ctx, int64(replaced))
}

// RecordDiagnostic counts one diagnostic of the given kind.
func (m *RunMetrics) RecordDiagnostic(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.Diagnostics.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
