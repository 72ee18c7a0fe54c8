package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetclean/pkg/contracts/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM), "file starts with a BOM")

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	w, err := CreateStreamWriter(path, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord([]string{"1", "x, y"}))
	require.NoError(t, w.Close())

	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x, y"}}, readCSV(t, path))
}

func TestStreamWriter_BadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := CreateStreamWriter(filepath.Join(file, "out.csv"), nil)
	assert.Error(t, err)
}

func TestDiagnosticsWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.csv")
	w, err := NewDiagnosticsWriter(path)
	require.NoError(t, err)

	wrong, correct := domain.Text("Prag"), domain.Text("Praha")
	w.Report(context.Background(), domain.Diagnostic{
		File:    "report.xlsx",
		Stage:   domain.StageCorrect,
		Kind:    domain.DiagValuesReplaced,
		Column:  "Location",
		Count:   3,
		Wrong:   &wrong,
		Correct: &correct,
		Message: "3 values replaced",
	})
	w.Report(context.Background(), domain.Diagnostic{
		File:    "report.xlsx",
		Stage:   domain.StageDerive,
		Kind:    domain.DiagColumnNotFound,
		Message: `column "Location" not found`,
	})
	assert.Equal(t, 2, w.Rows())
	require.NoError(t, w.Close())

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, DiagnosticsHeaders, records[0])
	assert.Equal(t, []string{"report.xlsx", "corrections", "values_replaced", "Location", "Prag", "Praha", "3", "3 values replaced"}, records[1])
	assert.Equal(t, []string{"report.xlsx", "derive_columns", "column_not_found", "", "", "", "0", `column "Location" not found`}, records[2])
}

func TestDiagnosticsWriter_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.csv")
	w, err := NewDiagnosticsWriter(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Report(context.Background(), domain.Diagnostic{File: fmt.Sprintf("f%d.xlsx", i), Kind: domain.DiagFillDown})
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	assert.Len(t, readCSV(t, path), 21)
}
