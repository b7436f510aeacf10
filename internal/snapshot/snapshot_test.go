package snapshot

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMaliciousZip writes a zip with a single entry whose name attempts to
// escape the extraction root via a parent-directory component.
func writeMaliciousZip(destPath string) error {
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("../escaped.txt")
	if err != nil {
		zw.Close()
		return err
	}
	if _, err := w.Write([]byte("pwned")); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func TestResolveEnvOmitsMissing(t *testing.T) {
	t.Setenv("DE_TEST_VAR", "hello")
	resolved := ResolveEnv(map[string]string{
		"greeting": "DE_TEST_VAR",
		"missing":  "DE_TEST_VAR_NOPE",
	})
	assert.Equal(t, "hello", resolved["greeting"])
	_, ok := resolved["missing"]
	assert.False(t, ok)
}

func TestSubstitutePlaceholders(t *testing.T) {
	resolved := map[string]string{"name": "api"}
	got := Substitute("echo ${name}-service", resolved)
	assert.Equal(t, "echo api-service", got)

	untouched := Substitute("echo ${unknown}", resolved)
	assert.Equal(t, "echo ${unknown}", untouched)
}

func TestWriteAndExtractZipRoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "b.txt"), []byte("world"), 0o644))

	zipPath := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, writeZip(src, zipPath))

	dest := t.TempDir()
	require.NoError(t, extractZip(zipPath, dest))

	a, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(a))

	b, err := os.ReadFile(filepath.Join(dest, "nested", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(b))
}

func TestExtractZipRejectsZipSlip(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "malicious.zip")
	require.NoError(t, writeMaliciousZip(zipPath))

	err := extractZip(zipPath, t.TempDir())
	assert.Error(t, err)
}

func TestComputeChecksumDeterministic(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("content"), 0o644))

	m := Manifest{WorkspaceName: "demo"}
	require.NoError(t, os.WriteFile(filepath.Join(root, "manifest.json"), []byte("{}"), 0o644))

	sum1, err := ComputeChecksum(root, m)
	require.NoError(t, err)
	sum2, err := ComputeChecksum(root, m)
	require.NoError(t, err)
	assert.Equal(t, sum1, sum2)
	assert.Contains(t, sum1, "sha256:")
}

func TestApplyRejectsNonEmptyTarget(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "existing.txt"), []byte("x"), 0o644))

	_, err := Apply(nil, ApplyOptions{ZipPath: "/does/not/matter.zip", TargetDir: target})
	assert.Error(t, err)
}
