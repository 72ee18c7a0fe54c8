// Package app wires sheetclean together for the command line.
//
// NewApplication loads the correction rules, sets up telemetry and builds
// the workbook source and sink, the cleaning processor and the batch
// runner from a validated config.Config. Run discovers the workbooks of a
// directory and cleans them; Shutdown flushes traces and writes the metrics
// file.
//
// Rule loading happens before any workbook is touched, so a broken rule
// document aborts the run with a CONFIG error instead of silently skipping
// corrections.
//
// The app does not call os.Exit; the command decides the exit status from
// the returned error and BatchSummary.
package app
