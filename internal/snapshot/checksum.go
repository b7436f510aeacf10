package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// maxChecksumDepth bounds how deep the checksum walk descends, per spec
// §4.12 ("walk the snapshot tree (max depth 10)").
const maxChecksumDepth = 10

// ComputeChecksum hashes the serialized manifest (with its own Checksum
// field cleared) followed by every regular file under root other than
// manifest.json, in deterministic path order, and returns "sha256:<hex>".
func ComputeChecksum(root string, m Manifest) (string, error) {
	m.Checksum = ""
	manifestBytes, err := json.Marshal(m)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	if _, err := h.Write(manifestBytes); err != nil {
		return "", err
	}

	paths, err := filesUnderDepth(root, maxChecksumDepth)
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	for _, p := range paths {
		if filepath.Base(p) == "manifest.json" && filepath.Dir(p) == root {
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		_, copyErr := io.Copy(h, f)
		f.Close()
		if copyErr != nil {
			return "", copyErr
		}
	}

	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

func filesUnderDepth(root string, maxDepth int) ([]string, error) {
	var out []string
	rootDepth := depthOf(root)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if depthOf(path)-rootDepth > maxDepth {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out, err
}

func depthOf(path string) int {
	clean := filepath.Clean(path)
	depth := 0
	for clean != string(filepath.Separator) && clean != "." {
		parent := filepath.Dir(clean)
		if parent == clean {
			break
		}
		depth++
		clean = parent
	}
	return depth
}
