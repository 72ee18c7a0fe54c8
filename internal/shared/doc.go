// Package shared holds helpers used by more than one package that belong
// to no single layer. testutil captures slog output so tests can assert on
// log records and diagnostics.
package shared
