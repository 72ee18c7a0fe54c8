package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetclean/internal/config"
	apperrors "sheetclean/internal/errors"
	"sheetclean/internal/operations"
	"sheetclean/internal/shared/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func testConfig(t *testing.T, rules string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Input.Dir = t.TempDir()
	cfg.Rules.Path = filepath.Join(t.TempDir(), "opravy.json")
	if rules != "" {
		require.NoError(t, os.WriteFile(cfg.Rules.Path, []byte(rules), 0o644))
	}
	return cfg
}

func report(t *testing.T, dir string) string {
	return writeWorkbook(t, dir, "report.xlsx", [][]interface{}{
		{"Serial Number", "Market brand", "Location"},
		{"SN-1", " Acme ", "Main St 1, Wien, Austria"},
		{nil, "Acme", "Praha, CZ "},
	})
}

func TestApplication_Run(t *testing.T) {
	cfg := testConfig(t, `[{"target_column": "Market_brand", "replace_map": {"Acme": "ACME"}}]`)
	cfg.Telemetry.MetricsFile = filepath.Join(t.TempDir(), "metrics.prom")
	path := report(t, cfg.Input.Dir)

	a, err := NewApplication(cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Rules.Len())
	assert.Equal(t, cfg.Rules.Path, a.RulesPath())

	summary, err := a.Run(t.Context())
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(t.Context()))

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Replaced)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sheet1", "Upraveno"}, f.GetSheetList())
	rows, err := f.GetRows("Upraveno")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Serial_Number", "Market_brand", "Location", "Country"},
		{"SN-1", "ACME", "Main St 1, Wien, Austria", "Austria"},
		{"SN-1", "ACME", "Praha, CZ", "CZ"},
	}, rows)

	metrics, err := os.ReadFile(cfg.Telemetry.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "files_processed")
}

func TestApplication_RerunIsRepeatable(t *testing.T) {
	cfg := testConfig(t, "")
	path := report(t, cfg.Input.Dir)

	for range 2 {
		a, err := NewApplication(cfg, Options{Logger: quietLogger()})
		require.NoError(t, err)
		summary, err := a.Run(t.Context())
		require.NoError(t, err)
		require.NoError(t, a.Shutdown(t.Context()))
		require.Equal(t, 1, summary.Succeeded)
	}

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1", "Upraveno"}, f.GetSheetList())

	tables, err := f.GetTables("Upraveno")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "A1:D3", tables[0].Range)
}

func TestApplication_DryRunAndBackup(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Output.DryRun = true
	cfg.Output.Backup = true
	path := report(t, cfg.Input.Dir)

	a, err := NewApplication(cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	summary, err := a.Run(t.Context())
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(t.Context()))

	assert.Equal(t, 1, summary.DryRun)
	assert.Equal(t, operations.FileStatusDryRun, summary.Files[0].Status)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
	assert.NoFileExists(t, path+".bak")
}

func TestApplication_BadRulesAbortBeforeAnyFile(t *testing.T) {
	cfg := testConfig(t, `[{"target_column": "Market_brand"}]`)
	path := report(t, cfg.Input.Dir)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = NewApplication(cfg, Options{Logger: quietLogger()})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestApplication_BrokenWorkbookDoesNotStopBatch(t *testing.T) {
	cfg := testConfig(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Input.Dir, "a_broken.xlsx"), []byte("not a zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Input.Dir, "~$report.xlsx"), []byte("lock"), 0o644))
	report(t, cfg.Input.Dir)

	a, err := NewApplication(cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	summary, err := a.Run(t.Context())
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(t.Context()))

	require.Len(t, summary.Files, 2, "lock files are not discovered")
	assert.Equal(t, "a_broken.xlsx", summary.Files[0].Name)
	assert.True(t, summary.Files[0].Failed())
	assert.Equal(t, operations.FileStatusSucceeded, summary.Files[1].Status)
	assert.True(t, summary.HasFailures())
}

func TestApplication_MissingInputDir(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Input.Dir = filepath.Join(cfg.Input.Dir, "nope")

	a, err := NewApplication(cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	defer a.Shutdown(t.Context())

	_, err = a.Run(t.Context())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestApplication_DiagnosticsAreLoggedAndExported(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	cfg := testConfig(t, `[{"target_column": "Region", "wrong_value": "x", "correct_value": "y"}]`)
	cfg.Telemetry.DiagnosticsFile = filepath.Join(t.TempDir(), "diagnostics.csv")
	report(t, cfg.Input.Dir)

	a, err := NewApplication(cfg, Options{Logger: logger})
	require.NoError(t, err)
	_, err = a.Run(t.Context())
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(t.Context()))

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Correction rules loaded")
	testutil.AssertLogContains(t, handler, slog.LevelWarn, `column "Region" not found`)
	testutil.AssertNoErrors(t, handler)

	content, err := os.ReadFile(cfg.Telemetry.DiagnosticsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "column_not_found")
	assert.Contains(t, string(content), "fill_down_applied")
}
