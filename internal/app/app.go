package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"sheetclean/internal/config"
	"sheetclean/internal/dataprocessing"
	apperrors "sheetclean/internal/errors"
	"sheetclean/internal/exporter"
	"sheetclean/internal/files"
	"sheetclean/internal/infrastructure"
	"sheetclean/internal/operations"
	"sheetclean/internal/rules"
	"sheetclean/internal/validation"
	"sheetclean/internal/workbook"
	"sheetclean/pkg/contracts"
	"sheetclean/pkg/contracts/domain"
)

// Options carries what the command line provides besides the config.
type Options struct {
	// Logger overrides the logger built from cfg.Logging.
	Logger *slog.Logger
	// TraceOut receives spans when the stdout trace exporter is selected.
	TraceOut io.Writer
}

// Application represents the main application container
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Rules     *domain.RuleSet
	Processor *dataprocessing.Processor
	Runner    *operations.Runner

	rulesPath   string
	diagnostics *exporter.DiagnosticsWriter
	discovery   *files.Discovery
	validator   *validation.FileValidator
}

// NewApplication builds every component from cfg. It fails with a CONFIG
// error when the rule document cannot be loaded.
func NewApplication(cfg *config.Config, opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Debug("Application starting",
		slog.String("version", contracts.Version),
		slog.String("input_dir", cfg.Input.Dir),
		slog.Int("workers", cfg.Workers))

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, contracts.Version, opts.TraceOut, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
		rulesPath: config.ResolveNearExecutable(cfg.Rules.Path),
		discovery: files.NewDiscovery(".", cfg.Input.Extensions...),
		validator: validation.NewFileValidator(logger),
	}

	a.Rules, err = rules.Load(a.rulesPath)
	if err != nil {
		_ = a.Telemetry.Shutdown(context.Background())
		return nil, err
	}
	summary := rules.Summarize(a.Rules)
	logger.Info("Correction rules loaded",
		slog.String("path", a.rulesPath),
		slog.Int("rules", summary.Rules),
		slog.Int("replace_map", summary.MapRules),
		slog.Int("wrong_value", summary.ValueRules),
		slog.Int("columns", len(summary.Columns)))

	if err := a.initializeServices(); err != nil {
		_ = a.Telemetry.Shutdown(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *Application) initializeServices() error {
	cfg := a.Config

	logReporter := dataprocessing.NewLogReporter(a.Logger)
	logReporter.WarnUnmatched = cfg.Rules.WarnUnmatched
	reporters := []domain.Reporter{logReporter, operations.NewMetricsReporter(a.Telemetry.Metrics)}

	if path := cfg.Telemetry.DiagnosticsFile; path != "" {
		w, err := exporter.NewDiagnosticsWriter(path)
		if err != nil {
			return apperrors.NewStorageError("create diagnostics file", err).WithContext("path", path)
		}
		a.diagnostics = w
		reporters = append(reporters, w)
	}

	procOpts := dataprocessing.Options{
		TrimColumns:    cfg.Cleaning.TrimColumns,
		FillDownColumn: cfg.Cleaning.FillDownColumn,
	}
	if cfg.Cleaning.DeriveCountry {
		procOpts.Extractions = append(procOpts.Extractions, dataprocessing.CountryExtraction)
	}
	a.Processor = dataprocessing.NewProcessor(procOpts, a.Rules, dataprocessing.MultiReporter(reporters...))

	source := workbook.NewSource(cfg.Output.SheetName, a.Logger)
	sink := workbook.NewSink(workbook.SinkOptions{
		SheetName:  cfg.Output.SheetName,
		TableName:  cfg.Output.TableName,
		TableStyle: cfg.Output.TableStyle,
	}, a.Logger)

	a.Runner = operations.NewRunner(source, sink, a.Processor, operations.Options{
		Workers:    cfg.Workers,
		Extensions: cfg.Input.Extensions,
		Backup:     cfg.Output.Backup,
		DryRun:     cfg.Output.DryRun,
	},
		operations.WithLogger(a.Logger),
		operations.WithMetrics(a.Telemetry.Metrics),
		operations.WithTracer(a.Telemetry.Tracer(operations.TracerName)),
		operations.WithValidator(a.validator),
		operations.WithFileManager(files.NewManager(a.Logger)),
	)
	return nil
}

// RulesPath returns the resolved location of the rule document.
func (a *Application) RulesPath() string {
	return a.rulesPath
}

// Run cleans every workbook found in the configured input directory.
func (a *Application) Run(ctx context.Context) (*operations.BatchSummary, error) {
	dir := a.Config.Input.Dir
	if err := a.validator.ValidateInputDirectory(dir); err != nil {
		return nil, err
	}

	found, err := a.discovery.FindSpreadsheets(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(found))
	for _, f := range found {
		paths = append(paths, f.Path)
	}
	if len(paths) == 0 {
		abs, _ := filepath.Abs(dir)
		a.Logger.WarnContext(ctx, "No spreadsheets found",
			slog.String("directory", abs),
			slog.Any("extensions", a.Config.Input.Extensions))
	}

	return a.Runner.Run(ctx, paths)
}

// Shutdown closes the diagnostics file, flushes telemetry and closes the
// log file.
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error
	if a.diagnostics != nil {
		if err := a.diagnostics.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close diagnostics file: %w", err))
		} else {
			a.Logger.InfoContext(ctx, "Diagnostics written",
				slog.String("path", a.Config.Telemetry.DiagnosticsFile),
				slog.Int("rows", a.diagnostics.Rows()))
		}
	}
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	infrastructure.CloseLogFile()
	return errors.Join(errs...)
}
