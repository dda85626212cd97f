// Package modelstore owns the model files on disk: generated results, imported
// files, and the read-only bundled assets.
package modelstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"forge3d/internal/catalog"
	"forge3d/internal/common/fsutil"
)

// ErrBundled is returned when asked to remove a bundled asset.
var ErrBundled = errors.New("modelstore: bundled assets are read-only")

// ErrUnsupportedFormat is returned when importing a file viewers cannot open.
var ErrUnsupportedFormat = errors.New("modelstore: unsupported model format")

// Store writes into modelsDir and treats bundledDir as read-only.
type Store struct {
	modelsDir  string
	bundledDir string
	ext        string
	now        func() time.Time
}

// New creates modelsDir if needed. ext is the extension used for generated models.
func New(modelsDir, bundledDir, ext string) (*Store, error) {
	if modelsDir == "" {
		return nil, errors.New("modelstore: empty models directory")
	}
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return nil, fmt.Errorf("modelstore: mkdir %s: %w", modelsDir, err)
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "glb"
	}
	return &Store{modelsDir: modelsDir, bundledDir: bundledDir, ext: ext, now: time.Now}, nil
}

// ModelsDir returns the writable model directory.
func (s *Store) ModelsDir() string { return s.modelsDir }

// BundledDir returns the read-only asset directory (may be empty).
func (s *Store) BundledDir() string { return s.bundledDir }

func (s *Store) uniqueName(prefix, ext string) string {
	short := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%s_%s.%s", prefix, s.now().UTC().Format("20060102T150405"), short, ext)
}

// SaveGenerated writes decoded model bytes under a unique name and returns the path.
func (s *Store) SaveGenerated(prefix string, data []byte) (string, int64, error) {
	if len(data) == 0 {
		return "", 0, errors.New("modelstore: empty model data")
	}
	if prefix == "" {
		prefix = "model"
	}
	p := filepath.Join(s.modelsDir, s.uniqueName(prefix, s.ext))
	if err := fsutil.WriteFileAtomic(p, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("modelstore: save: %w", err)
	}
	return p, int64(len(data)), nil
}

// Import copies src into the models directory, keeping its extension.
func (s *Store) Import(src string) (string, int64, error) {
	format, ok := catalog.FormatOf(src)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(src))
	}
	info, err := os.Stat(src)
	if err != nil {
		return "", 0, fmt.Errorf("modelstore: import: %w", err)
	}
	if info.IsDir() {
		return "", 0, fmt.Errorf("modelstore: import: %s is a directory", src)
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(s.modelsDir, s.uniqueName(sanitize(base), format))
	n, err := fsutil.CopyFile(src, dst)
	if err != nil {
		return "", 0, fmt.Errorf("modelstore: import: %w", err)
	}
	return dst, n, nil
}

// IsBundled reports whether path lies in the bundled asset directory.
func (s *Store) IsBundled(path string) bool {
	return fsutil.IsWithin(s.bundledDir, path)
}

// Exists reports whether the file at path is present.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes a model file. Missing files are not an error.
func (s *Store) Remove(path string) error {
	if s.IsBundled(path) {
		return ErrBundled
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("modelstore: remove %s: %w", path, err)
	}
	return nil
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "import"
	}
	return b.String()
}
