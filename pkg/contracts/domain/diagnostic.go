package domain

import "context"

// Stage names used in diagnostics.
const (
	StageNormalize = "normalize_columns"
	StageTrim      = "trim_cells"
	StageFillDown  = "fill_down"
	StageCorrect   = "corrections"
	StageDerive    = "derive_columns"
)

// DiagnosticKind classifies a non-fatal pipeline event.
type DiagnosticKind string

const (
	DiagColumnNotFound DiagnosticKind = "column_not_found"
	DiagValuesReplaced DiagnosticKind = "values_replaced"
	DiagNoMatch        DiagnosticKind = "no_match"
	DiagFillDown       DiagnosticKind = "fill_down_applied"
	DiagColumnDerived  DiagnosticKind = "column_derived"
	DiagCellsTrimmed   DiagnosticKind = "cells_trimmed"
	DiagColumnsRenamed DiagnosticKind = "columns_renamed"
)

// Diagnostic is one audit event raised while cleaning a table. It is an
// observability record only and never alters control flow.
type Diagnostic struct {
	File    string         `json:"file"`
	Stage   string         `json:"stage"`
	Kind    DiagnosticKind `json:"kind"`
	Column  string         `json:"column,omitempty"`
	Count   int            `json:"count"`
	Wrong   *Value         `json:"wrong,omitempty"`
	Correct *Value         `json:"correct,omitempty"`
	Message string         `json:"message"`
}

// Reporter receives diagnostics. Implementations must be safe for
// concurrent use when files are processed in parallel.
type Reporter interface {
	Report(ctx context.Context, d Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, d Diagnostic)

// Report calls f(ctx, d).
func (f ReporterFunc) Report(ctx context.Context, d Diagnostic) { f(ctx, d) }
