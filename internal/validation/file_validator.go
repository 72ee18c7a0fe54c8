package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "sheetclean/internal/errors"
)

// FileValidator checks the input directory and each workbook before a run
// touches them.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory validates that the input directory exists and is a
// directory. An empty directory is valid.
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return apperrors.NewConfigError(fmt.Sprintf("input directory %s does not exist", dir), err)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat directory %s", dir), err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return apperrors.NewConfigError(fmt.Sprintf("%s is not a directory", dir), nil)
	}
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return apperrors.NewStorageError(fmt.Sprintf("file %s does not exist", path), err)
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		return apperrors.NewStorageError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateSpreadsheet checks that path is a readable workbook with one of
// the accepted extensions. When writable is set the file must also open for
// writing, since it is rewritten in place.
func (v *FileValidator) ValidateSpreadsheet(path string, extensions []string, writable bool) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	accepted := false
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			accepted = true
			break
		}
	}
	if !accepted {
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not a spreadsheet (extension: %s)", path, ext)).
			WithContext("extensions", strings.Join(extensions, ","))
	}

	if writable {
		file, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("file %s is not writable", path), err)
		}
		file.Close()
	}
	return nil
}
