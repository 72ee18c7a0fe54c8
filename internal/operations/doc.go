// Package operations runs the cleaning pipeline over a batch of workbooks.
//
// A Runner reads each file through a TableSource, cleans it with a
// TableProcessor and writes the result through a TableSink. Files are
// isolated from each other: a failure or panic while handling one workbook
// is recorded in its FileResult and the batch carries on with the rest.
//
// Files may be handled concurrently. Workers is the upper bound on files in
// flight; the rule set and processor are shared read-only, each file gets
// its own table.
//
// Every file gets its own trace id and span, so the diagnostics of one
// workbook can be followed in logs and traces:
//
//	runner := operations.NewRunner(source, sink, processor, operations.Options{Workers: 4})
//	summary, err := runner.Run(ctx, paths)
//	if summary.HasFailures() {
//	    os.Exit(1)
//	}
package operations
