// Package fsutil holds the small filesystem helpers shared by the
// manifest, workspace, discovery and snapshot packages: directory copy,
// atomic write, and a skip-list-aware recursive walk. Adapted from the
// teacher's internal/fs package, generalized away from its
// owner--project workspace-slug assumptions.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
)

// skipDirs names directories a recursive de.toml / git scan should never
// descend into. Carried over verbatim from the teacher's internal/git
// skip list, which exists for the same reason here: scanning a large
// source tree for manifests should not wander into dependency caches and
// build output.
var skipDirs = map[string]bool{
	"node_modules": true, "vendor": true, "bower_components": true,
	".pnpm-store": true, "jspm_packages": true,
	".venv": true, "venv": true, "__pycache__": true, ".tox": true,
	".mypy_cache": true, ".pytest_cache": true, "site-packages": true,
	"target": true, "build": true, "dist": true, "out": true, "bin": true,
	"obj": true, "_build": true, "deps": true,
	".next": true, ".nuxt": true, ".output": true, ".svelte-kit": true,
	".turbo": true, ".cache": true, ".parcel-cache": true,
	".idea": true, ".vscode": true, ".terraform": true, ".git": true,
}

// WalkForFile calls fn with the directory containing every file named
// filename found under root, skipping the directories in skipDirs.
// Errors from fn do not stop the walk; the caller decides whether to
// collect or ignore them (spec §4.6: "errors on individual entries are
// logged and skipped, not fatal").
func WalkForFile(root, filename string, fn func(dir string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != filepath.Base(root) && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		candidate := filepath.Join(path, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			fn(path)
		}
		return nil
	})
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// WriteFileAtomic writes data to path by writing to a sibling temp file
// and renaming it into place, so a crash mid-write never leaves a
// truncated config file behind.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// CopyFile copies src to dst, creating parent directories and preserving
// the source file mode.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	return os.WriteFile(dst, data, mode)
}

// CopyDir recursively copies src into dst.
func CopyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		return CopyFile(path, target)
	})
}

// IsDirEmpty reports whether path contains no entries.
func IsDirEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// PathEscapes reports whether candidate, once resolved relative to root,
// would land outside of root. Used by the snapshot engine's zip-slip and
// stdin-file guards (spec §4.12 Security invariants).
func PathEscapes(root, candidate string) (bool, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return true, err
	}
	joined := filepath.Join(absRoot, candidate)
	rel, err := filepath.Rel(absRoot, joined)
	if err != nil {
		return true, err
	}
	if rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return true, nil
	}
	return false, nil
}
