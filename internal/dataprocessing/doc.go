// Package dataprocessing cleans tables read from spreadsheet files.
//
// # Stages
//
// Every table passes once through a fixed sequence:
//
//  1. NormalizeColumnNames: unique, underscore-separated column names
//  2. TrimColumns: whitespace trimming of text cells in configured columns
//  3. FillDown: forward-fill of a sparse identifier column (merged cells)
//  4. CorrectionEngine: ordered correction rules (replace maps and
//     optionally conditional value replacements)
//  5. DerivedColumnExtractor: computed columns such as Country from Location
//
// A stage whose column is missing does nothing and, where useful, emits a
// diagnostic. Stages never return errors.
//
// # Usage
//
//	proc := dataprocessing.NewProcessor(dataprocessing.Options{
//	    TrimColumns:    []string{"Location"},
//	    FillDownColumn: "Serial_Number",
//	    Extractions:    []domain.ColumnExtractionRule{dataprocessing.CountryExtraction},
//	}, rules, dataprocessing.NewLogReporter(logger))
//
//	table, stats, err := proc.Process(ctx, raw)
//
// # Diagnostics
//
// Stages report through domain.Reporter. LogReporter writes slog records,
// Collector keeps them for tests and summaries, MultiReporter fans out.
package dataprocessing
