package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// lockFilePrefix marks the owner files Excel keeps next to an open workbook.
const lockFilePrefix = "~$"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds spreadsheets in a directory.
type Discovery struct {
	basePath   string
	extensions []string
}

// NewDiscovery creates a discovery instance resolving relative directories
// against basePath and accepting the given extensions, e.g. ".xlsx".
func NewDiscovery(basePath string, extensions ...string) *Discovery {
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &Discovery{basePath: basePath, extensions: exts}
}

// FindSpreadsheets lists the spreadsheets directly inside dir, sorted by
// name. Subdirectories, Excel lock files and other extensions are skipped.
func (d *Discovery) FindSpreadsheets(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, lockFilePrefix) || !d.accepts(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (d *Discovery) accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range d.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
