package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sheetclean/internal/errors"
)

func TestValidateInputDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.xlsx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateInputDirectory(dir))

	err := v.ValidateInputDirectory(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	err = v.ValidateInputDirectory(file)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestValidateSpreadsheet(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
		return p
	}
	exts := []string{".xlsx", ".xlsm"}

	tests := []struct {
		name    string
		path    string
		errType apperrors.ErrorType
	}{
		{name: "valid workbook", path: write("report.xlsx")},
		{name: "upper-case extension", path: write("REPORT.XLSM")},
		{name: "missing", path: filepath.Join(dir, "gone.xlsx"), errType: apperrors.ErrTypeStorage},
		{name: "directory", path: dir, errType: apperrors.ErrTypeStorage},
		{name: "lock file", path: write("~$report.xlsx"), errType: apperrors.ErrTypeValidation},
		{name: "wrong extension", path: write("data.csv"), errType: apperrors.ErrTypeValidation},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSpreadsheet(tt.path, exts, true)
			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}
