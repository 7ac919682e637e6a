package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorReportPath(t *testing.T) {
	assert.Equal(t, "output/wc_products_errors.txt", ErrorReportPath("output/wc_products.csv"))
	assert.Equal(t, "out_errors.txt", ErrorReportPath("out.csv"))
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, WriteReport(path, "Test Report", []string{"line one", "line two"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(raw)
	assert.Contains(t, content, "Test Report")
	assert.Contains(t, content, "Generated: ")
	assert.Contains(t, content, "line one\nline two\n")
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "b")
	c := filepath.Join(dir, "c")

	require.NoError(t, EnsureDirectories(a, c, "", "."))
	assert.DirExists(t, a)
	assert.DirExists(t, c)
}

func TestFileExistsAndSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	assert.False(t, FileExists(path))
	assert.Zero(t, GetFileSize(path))

	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))
	assert.True(t, FileExists(path))
	assert.Equal(t, int64(5), GetFileSize(path))

	assert.False(t, FileExists(dir), "directories are not files")
}

func TestArchiveOutputFile(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "wc.csv")
	archive := filepath.Join(dir, "archive")

	// Nothing to archive yet.
	path, err := ArchiveOutputFile(output, archive)
	require.NoError(t, err)
	assert.Empty(t, path)

	require.NoError(t, os.WriteFile(output, []byte("data"), 0644))

	first, err := ArchiveOutputFile(output, archive)
	require.NoError(t, err)
	assert.FileExists(t, first)

	raw, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "data", string(raw))

	// The original stays in place; archive names never collide.
	assert.FileExists(t, output)
	second, err := ArchiveOutputFile(output, archive)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
