package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalkForFileFindsNestedManifests(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "de.toml"), "x")
	mustWriteFile(t, filepath.Join(root, "services", "api", "de.toml"), "x")
	mustWriteFile(t, filepath.Join(root, "node_modules", "pkg", "de.toml"), "x")

	var found []string
	if err := WalkForFile(root, "de.toml", func(dir string) {
		found = append(found, dir)
	}); err != nil {
		t.Fatalf("WalkForFile: %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("found %d manifests, want 2: %v", len(found), found)
	}
	for _, dir := range found {
		if filepath.Base(dir) == "pkg" {
			t.Errorf("WalkForFile descended into node_modules: %v", found)
		}
	}
}

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a", "b", "c.toml")
	if err := WriteFileAtomic(target, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}
	if _, err := os.Stat(target + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file was not cleaned up")
	}
}

func TestCopyDirPreservesTree(t *testing.T) {
	src := t.TempDir()
	mustWriteFile(t, filepath.Join(src, "a.txt"), "one")
	mustWriteFile(t, filepath.Join(src, "nested", "b.txt"), "two")

	dst := filepath.Join(t.TempDir(), "copy")
	if err := CopyDir(src, dst); err != nil {
		t.Fatalf("CopyDir: %v", err)
	}

	for _, rel := range []string{"a.txt", filepath.Join("nested", "b.txt")} {
		if _, err := os.Stat(filepath.Join(dst, rel)); err != nil {
			t.Errorf("missing copied file %s: %v", rel, err)
		}
	}
}

func TestPathEscapes(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		candidate string
		escapes   bool
	}{
		{"a/b/c", false},
		{"./a", false},
		{"../escape", true},
		{"a/../../escape", true},
	}
	for _, tt := range tests {
		got, err := PathEscapes(root, tt.candidate)
		if err != nil {
			t.Fatalf("PathEscapes(%q): %v", tt.candidate, err)
		}
		if got != tt.escapes {
			t.Errorf("PathEscapes(%q) = %v, want %v", tt.candidate, got, tt.escapes)
		}
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
