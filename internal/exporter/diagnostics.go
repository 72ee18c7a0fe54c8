package exporter

import (
	"context"
	"log/slog"
	"sync"

	"sheetclean/pkg/contracts/domain"
)

// DiagnosticsHeaders are the columns of the diagnostics audit file.
var DiagnosticsHeaders = []string{"file", "stage", "kind", "column", "wrong", "correct", "count", "message"}

// DiagnosticsWriter is a Reporter appending each diagnostic as a CSV row.
// It is safe for concurrent use. Write errors are logged once and later
// rows are dropped.
type DiagnosticsWriter struct {
	mu     sync.Mutex
	stream *StreamWriter
	path   string
	rows   int
	err    error
}

// NewDiagnosticsWriter creates the audit file at path.
func NewDiagnosticsWriter(path string) (*DiagnosticsWriter, error) {
	stream, err := CreateStreamWriter(path, DiagnosticsHeaders)
	if err != nil {
		return nil, err
	}
	return &DiagnosticsWriter{stream: stream, path: path}, nil
}

// Report writes d as one row.
func (w *DiagnosticsWriter) Report(ctx context.Context, d domain.Diagnostic) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	w.err = w.stream.WriteRecord([]string{
		d.File,
		d.Stage,
		string(d.Kind),
		d.Column,
		formatValue(d.Wrong),
		formatValue(d.Correct),
		formatInt(d.Count),
		d.Message,
	})
	if w.err != nil {
		slog.ErrorContext(ctx, "Diagnostics file write failed",
			slog.String("path", w.path),
			slog.String("error", w.err.Error()))
		return
	}
	w.rows++
}

// Rows returns the number of rows written so far.
func (w *DiagnosticsWriter) Rows() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Close flushes and closes the file. It returns the first write error.
func (w *DiagnosticsWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.stream.Close(); err != nil && w.err == nil {
		w.err = err
	}
	return w.err
}
