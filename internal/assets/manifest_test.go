package assets

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestManifest(t *testing.T) *Manifest {
	t.Helper()
	m, err := OpenManifest(filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManifestRecordAndIsDone(t *testing.T) {
	m := openTestManifest(t)

	done, _ := m.IsDone("https://x.ru/a.jpg")
	assert.False(t, done, "unknown URL must not be done")

	err := m.Record("https://x.ru/a.jpg", "SKU-1", "sku-1-a-01.jpg", 2048, "done", time.Now())
	require.NoError(t, err)

	done, filename := m.IsDone("https://x.ru/a.jpg")
	assert.True(t, done)
	assert.Equal(t, "sku-1-a-01.jpg", filename)
}

func TestManifestFailedIsRetried(t *testing.T) {
	m := openTestManifest(t)

	require.NoError(t, m.Record("https://x.ru/b.jpg", "SKU-1", "b.jpg", 0, "failed", time.Now()))
	done, _ := m.IsDone("https://x.ru/b.jpg")
	assert.False(t, done, "failed URLs must be retried on the next run")
}

func TestManifestUpsert(t *testing.T) {
	m := openTestManifest(t)

	require.NoError(t, m.Record("https://x.ru/c.jpg", "SKU-1", "c.jpg", 0, "failed", time.Now()))
	require.NoError(t, m.Record("https://x.ru/c.jpg", "SKU-1", "c.jpg", 4096, "done", time.Now()))

	done, _ := m.IsDone("https://x.ru/c.jpg")
	assert.True(t, done)

	counts, err := m.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, counts["done"])
	assert.Zero(t, counts["failed"])
}

func TestManifestSkippedCountsAsDone(t *testing.T) {
	m := openTestManifest(t)

	require.NoError(t, m.Record("https://x.ru/d.jpg", "SKU-2", "d.jpg", 2048, "skipped", time.Now()))
	done, _ := m.IsDone("https://x.ru/d.jpg")
	assert.True(t, done)
}
