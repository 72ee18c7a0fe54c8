// Package files provides the file system side of a cleaning run.
//
// Discovery lists the spreadsheets of an input directory by extension,
// skipping subdirectories and the ~$ lock files Excel leaves next to open
// workbooks. Results are sorted by name so runs are reproducible.
//
// Manager copies a workbook to <name>.bak before it is rewritten in place.
//
// Example usage:
//
//	discovery := files.NewDiscovery(".", ".xlsx", ".xlsm")
//	sheets, err := discovery.FindSpreadsheets("reports")
//
//	manager := files.NewManager(logger)
//	backup, err := manager.Backup(sheets[0].Path)
package files
