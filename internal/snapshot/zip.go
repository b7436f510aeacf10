package snapshot

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/fsutil"
)

// writeZip walks srcRoot in directory order and writes every entry (files
// and directories, so empty directories survive) into a deterministic zip
// at destPath, each stored under its path relative to srcRoot (spec
// §4.12's "Zip the temp directory" step).
func writeZip(srcRoot, destPath string) error {
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	entries, err := listSorted(srcRoot)
	if err != nil {
		zw.Close()
		return err
	}

	for _, entry := range entries {
		rel, err := filepath.Rel(srcRoot, entry.path)
		if err != nil {
			zw.Close()
			return err
		}
		rel = filepath.ToSlash(rel)

		if entry.isDir {
			if _, err := zw.Create(rel + "/"); err != nil {
				zw.Close()
				return err
			}
			continue
		}

		w, err := zw.Create(rel)
		if err != nil {
			zw.Close()
			return err
		}
		src, err := os.Open(entry.path)
		if err != nil {
			zw.Close()
			return err
		}
		_, copyErr := io.Copy(w, src)
		src.Close()
		if copyErr != nil {
			zw.Close()
			return copyErr
		}
	}

	return zw.Close()
}

type walkEntry struct {
	path  string
	isDir bool
}

// listSorted returns every entry under root (excluding root itself) in
// deterministic directory order: parents before children, siblings sorted
// by name.
func listSorted(root string) ([]walkEntry, error) {
	var entries []walkEntry
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		entries = append(entries, walkEntry{path: path, isDir: info.IsDir()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })
	return entries, nil
}

// extractZip extracts src into destRoot, rejecting any entry whose
// canonicalized path would escape destRoot (spec §4.12's zip-slip guard).
func extractZip(src, destRoot string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		escapes, err := fsutil.PathEscapes(destRoot, f.Name)
		if err != nil {
			return err
		}
		if escapes {
			return &deerrors.SecurityError{Path: f.Name, Reason: "zip entry escapes extraction root"}
		}

		target := filepath.Join(destRoot, f.Name)
		if f.FileInfo().IsDir() {
			if err := fsutil.EnsureDir(target); err != nil {
				return err
			}
			continue
		}

		if err := fsutil.EnsureDir(filepath.Dir(target)); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(target)
		if err != nil {
			rc.Close()
			return err
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		out.Close()
		if copyErr != nil {
			return copyErr
		}
	}
	return nil
}
