// Package catalog discovers model files a viewer can open.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"forge3d/internal/common/fsutil"
	"forge3d/pkg/types"
)

// Formats lists the file extensions (lowercase, without dot) a viewer can load.
var Formats = []string{"usdz", "gltf", "glb", "obj", "dae"}

// FormatOf returns the lowercase extension of path if it is a supported model format.
func FormatOf(path string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range Formats {
		if f == ext {
			return ext, true
		}
	}
	return "", false
}

// LoadDir scans a directory (non-recursively) for supported model files.
// ID is the full filename; Name is the filename without extension.
// A missing directory yields an empty catalog.
func LoadDir(dir string) ([]types.Asset, error) {
	if dir == "" {
		return nil, nil
	}
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var assets []types.Asset
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		format, ok := FormatOf(name)
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		assets = append(assets, types.Asset{
			ID:     name,
			Name:   strings.TrimSuffix(name, filepath.Ext(name)),
			Path:   filepath.Join(abs, name),
			Format: format,
			Size:   info.Size(),
		})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets, nil
}
