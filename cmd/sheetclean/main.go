// Command sheetclean normalizes and corrects spreadsheet exports in place.
//
// Usage:
//
//	sheetclean [dir]            clean every workbook in dir (default: current directory)
//	sheetclean check-rules      validate the correction rule document
//	sheetclean version          print version information
package main

import (
	"errors"
	"fmt"
	"os"

	apperrors "sheetclean/internal/errors"
)

const (
	exitOK          = 0
	exitFilesFailed = 1
	exitConfig      = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errFilesFailed) {
		return exitFilesFailed
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeConfig:
		return exitConfig
	default:
		return exitFilesFailed
	}
}
