package modelstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	bundled := t.TempDir()
	s, err := New(filepath.Join(t.TempDir(), "models"), bundled, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return s, bundled
}

func TestSaveGenerated(t *testing.T) {
	s, _ := newStore(t)
	p1, n, err := s.SaveGenerated("text", []byte("glTF"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != 4 || filepath.Ext(p1) != ".glb" || !strings.HasPrefix(filepath.Base(p1), "text_") {
		t.Fatalf("unexpected result %s (%d bytes)", p1, n)
	}
	p2, _, err := s.SaveGenerated("text", []byte("glTF"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if p1 == p2 {
		t.Fatalf("names must be unique: %s", p1)
	}
	if _, _, err := s.SaveGenerated("text", nil); err == nil {
		t.Fatalf("expected error for empty data")
	}
}

func TestImport(t *testing.T) {
	s, _ := newStore(t)
	src := filepath.Join(t.TempDir(), "My Chair.OBJ")
	if err := os.WriteFile(src, []byte("v 0 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst, n, err := s.Import(src)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 8 || filepath.Dir(dst) != s.ModelsDir() || filepath.Ext(dst) != ".obj" {
		t.Fatalf("unexpected import %s (%d)", dst, n)
	}
	if !strings.HasPrefix(filepath.Base(dst), "My_Chair_") {
		t.Fatalf("unexpected name %s", filepath.Base(dst))
	}

	bad := filepath.Join(t.TempDir(), "notes.txt")
	_ = os.WriteFile(bad, []byte("x"), 0o644)
	if _, _, err := s.Import(bad); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, _, err := s.Import(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestRemoveKeepsBundled(t *testing.T) {
	s, bundled := newStore(t)
	asset := filepath.Join(bundled, "robot.usdz")
	_ = os.WriteFile(asset, []byte("usdz"), 0o644)
	if !s.IsBundled(asset) {
		t.Fatalf("expected bundled")
	}
	if err := s.Remove(asset); !errors.Is(err, ErrBundled) {
		t.Fatalf("expected ErrBundled, got %v", err)
	}
	if !s.Exists(asset) {
		t.Fatalf("bundled asset must survive")
	}

	p, _, _ := s.SaveGenerated("image", []byte("x"))
	if s.IsBundled(p) {
		t.Fatalf("generated file is not bundled")
	}
	if err := s.Remove(p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Exists(p) {
		t.Fatalf("file still present")
	}
	if err := s.Remove(p); err != nil {
		t.Fatalf("removing missing file should be a no-op: %v", err)
	}
}
