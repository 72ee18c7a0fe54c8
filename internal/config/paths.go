package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExecutableDir returns the directory holding the running binary, with
// symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// ResolveNearExecutable resolves a relative path against the working
// directory first and, when nothing exists there, against the directory of
// the binary. The working-directory path is returned when neither exists.
func ResolveNearExecutable(path string) string {
	return resolveNear(path, ExecutableDir)
}

func resolveNear(path string, dir func() (string, error)) string {
	if path == "" || filepath.IsAbs(path) || FileExists(path) {
		return path
	}
	base, err := dir()
	if err != nil {
		return path
	}
	candidate := filepath.Join(base, path)
	if FileExists(candidate) {
		return candidate
	}
	return path
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
