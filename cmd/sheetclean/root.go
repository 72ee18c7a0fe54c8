package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sheetclean/internal/app"
	"sheetclean/internal/config"
	"sheetclean/internal/infrastructure"
	"sheetclean/internal/operations"
	"sheetclean/internal/rules"
	"sheetclean/pkg/contracts"
)

var errFilesFailed = errors.New("one or more files failed")

// flagValues holds command-line overrides. A flag only overrides the
// loaded configuration when it was set explicitly.
type flagValues struct {
	configPath    string
	rulesPath     string
	workers       int
	dryRun        bool
	backup        bool
	warnUnmatched bool
	logLevel      string
	logFormat     string
	metricsFile   string
	diagnostics   string
	traces        string
}

func newRootCmd() *cobra.Command {
	var fv flagValues

	cmd := &cobra.Command{
		Use:   "sheetclean [dir]",
		Short: "Normalize and correct spreadsheet exports in place",
		Long: `sheetclean reads every workbook in a directory, normalizes column names,
trims text, fills down the serial number column, applies the correction
rules and derives the Country column. The result is written back into
each workbook as a separate sheet holding one banded table.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &fv, args)
			if err != nil {
				return err
			}
			return runClean(cmd, cfg)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&fv.configPath, "config", "c", "", "config file (default: ./"+config.DefaultConfigFile+" when present)")
	f.StringVarP(&fv.rulesPath, "rules", "r", "", "correction rule document (default: "+config.DefaultRulesFile+")")
	f.StringVar(&fv.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&fv.logFormat, "log-format", "", "log format: text, json")

	flags := cmd.Flags()
	flags.IntVarP(&fv.workers, "workers", "w", config.DefaultWorkers, "workbooks processed in parallel")
	flags.BoolVarP(&fv.dryRun, "dry-run", "n", false, "run every stage but do not write")
	flags.BoolVar(&fv.backup, "backup", false, "copy each workbook to <file>.bak before rewriting")
	flags.BoolVar(&fv.warnUnmatched, "warn-unmatched", false, "log unused replace_map entries as warnings")
	flags.StringVar(&fv.metricsFile, "metrics-file", "", "write run metrics to this file in Prometheus text format")
	flags.StringVar(&fv.diagnostics, "diagnostics-file", "", "write every diagnostic to this CSV file")
	flags.StringVar(&fv.traces, "traces", "", "trace exporter: none, stdout")

	cmd.AddCommand(newCheckRulesCmd(&fv), newVersionCmd())
	return cmd
}

// loadConfig layers the flags that were set over the loaded configuration.
func loadConfig(cmd *cobra.Command, fv *flagValues, args []string) (*config.Config, error) {
	cfg, err := config.Load(fv.configPath)
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if len(args) == 1 {
		cfg.Input.Dir = args[0]
	}
	if changed("rules") {
		cfg.Rules.Path = fv.rulesPath
	}
	if changed("workers") {
		cfg.Workers = fv.workers
	}
	if changed("dry-run") {
		cfg.Output.DryRun = fv.dryRun
	}
	if changed("backup") {
		cfg.Output.Backup = fv.backup
	}
	if changed("warn-unmatched") {
		cfg.Rules.WarnUnmatched = fv.warnUnmatched
	}
	if changed("log-level") {
		cfg.Logging.Level = fv.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = fv.logFormat
	}
	if changed("metrics-file") {
		cfg.Telemetry.MetricsFile = fv.metricsFile
	}
	if changed("diagnostics-file") {
		cfg.Telemetry.DiagnosticsFile = fv.diagnostics
	}
	if changed("traces") {
		cfg.Telemetry.TraceExporter = fv.traces
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

func runClean(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApplication(cfg, app.Options{Logger: logger, TraceOut: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := a.Shutdown(shutdownCtx); serr != nil {
			logger.Error("Shutdown failed", slog.String("error", serr.Error()))
		}
	}()

	summary, err := a.Run(ctx)
	if summary != nil {
		printSummary(cmd.OutOrStdout(), summary)
	}
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%w: %d of %d", errFilesFailed, summary.Failed, len(summary.Files))
	}
	return nil
}

func printSummary(w io.Writer, s *operations.BatchSummary) {
	for _, r := range s.Files {
		if r.Failed() {
			fmt.Fprintf(w, "FAILED  %s: %v\n", r.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "%-7s %s: %d rows, %d values replaced\n", statusLabel(r.Status), r.Name, r.Stats.Rows, r.Stats.Replaced)
	}
	fmt.Fprintf(w, "%d files: %d cleaned, %d dry-run, %d failed; %d values replaced in %s\n",
		len(s.Files), s.Succeeded, s.DryRun, s.Failed, s.Replaced, s.Duration.Round(time.Millisecond))
}

func statusLabel(s operations.FileStatus) string {
	switch s {
	case operations.FileStatusSucceeded:
		return "OK"
	case operations.FileStatusDryRun:
		return "DRY-RUN"
	default:
		return string(s)
	}
}

func newCheckRulesCmd(fv *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "check-rules [path]",
		Short: "Validate a correction rule document and print its rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fv.rulesPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				cfg, err := config.Load(fv.configPath)
				if err != nil {
					return err
				}
				path = cfg.Rules.Path
			}
			path = config.ResolveNearExecutable(path)

			rs, err := rules.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !config.FileExists(path) {
				fmt.Fprintf(out, "%s: not found, no corrections will be applied\n", path)
				return nil
			}
			fmt.Fprintf(out, "%s\n\n", path)
			return rules.Print(out, rs)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
			return err
		},
	}
}
