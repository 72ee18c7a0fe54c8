// Package exporter writes CSV files for Excel users.
//
// StreamWriter writes a header and then one record at a time, with a UTF-8
// BOM so Excel detects the encoding. DiagnosticsWriter builds on it to keep
// an audit file of every diagnostic raised during a run:
//
//	w, err := exporter.NewDiagnosticsWriter("logs/diagnostics.csv")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	processor := dataprocessing.NewProcessor(opts, rules, w)
package exporter
