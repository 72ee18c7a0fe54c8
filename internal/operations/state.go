package operations

import (
	"log/slog"
	"time"

	"sheetclean/internal/dataprocessing"
)

// FileStatus is the outcome of one workbook.
type FileStatus string

const (
	FileStatusSucceeded FileStatus = "succeeded"
	FileStatusFailed    FileStatus = "failed"
	// FileStatusDryRun means every stage ran but nothing was written.
	FileStatusDryRun FileStatus = "dry_run"
)

// FileResult records what happened to one workbook.
type FileResult struct {
	Path     string                           `json:"path"`
	Name     string                           `json:"name"`
	Status   FileStatus                       `json:"status"`
	TraceID  string                           `json:"trace_id"`
	Stats    dataprocessing.ProcessStatistics `json:"stats"`
	Backup   string                           `json:"backup,omitempty"`
	Duration time.Duration                    `json:"duration"`
	Err      error                            `json:"-"`
}

// Failed reports whether the file could not be cleaned.
func (r FileResult) Failed() bool {
	return r.Status == FileStatusFailed
}

// BatchSummary aggregates the results of one run.
type BatchSummary struct {
	RunID     string        `json:"run_id"`
	Files     []FileResult  `json:"files"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	DryRun    int           `json:"dry_run"`
	Rows      int           `json:"rows"`
	Replaced  int           `json:"replaced"`
	Duration  time.Duration `json:"duration"`
}

func newBatchSummary(runID string, results []FileResult, d time.Duration) *BatchSummary {
	s := &BatchSummary{RunID: runID, Files: results, Duration: d}
	for _, r := range results {
		switch r.Status {
		case FileStatusSucceeded:
			s.Succeeded++
		case FileStatusFailed:
			s.Failed++
		case FileStatusDryRun:
			s.DryRun++
		}
		s.Rows += r.Stats.Rows
		s.Replaced += r.Stats.Replaced
	}
	return s
}

// HasFailures reports whether any file failed.
func (s *BatchSummary) HasFailures() bool {
	return s != nil && s.Failed > 0
}

// FailedFiles returns the results of the files that failed, in input order.
func (s *BatchSummary) FailedFiles() []FileResult {
	if s == nil {
		return nil
	}
	var out []FileResult
	for _, r := range s.Files {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}

// LogAttrs returns the summary as log attributes.
func (s *BatchSummary) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("run_id", s.RunID),
		slog.Int("files", len(s.Files)),
		slog.Int("succeeded", s.Succeeded),
		slog.Int("failed", s.Failed),
		slog.Int("dry_run", s.DryRun),
		slog.Int("rows", s.Rows),
		slog.Int("values_replaced", s.Replaced),
		slog.Duration("duration", s.Duration),
	}
}
