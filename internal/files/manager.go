package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to a workbook's name for its pre-rewrite copy.
const BackupSuffix = ".bak"

// Manager provides the file operations around an in-place rewrite.
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger.With(slog.String("component", "files"))}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Backup copies path to path+BackupSuffix, replacing an older backup, and
// returns the backup path.
func (m *Manager) Backup(path string) (string, error) {
	dst := path + BackupSuffix
	if err := m.CopyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// CopyFile copies a file from source to destination, keeping its mode.
func (m *Manager) CopyFile(src, dst string) error {
	m.logger.Debug("Copying file",
		slog.String("src", src),
		slog.String("dst", dst))

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	// Sync to ensure write is complete
	return dstFile.Sync()
}
