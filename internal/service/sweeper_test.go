package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/impservers/impchat/internal/errors"
	"github.com/impservers/impchat/internal/storage/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveBlob(t *testing.T, blobs *fs.Storage, key, content string) {
	t.Helper()
	_, err := blobs.Save(strings.NewReader(content), key, 0)
	require.NoError(t, err)
}

func ageBlob(t *testing.T, dir, key string, age time.Duration) {
	t.Helper()
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(filepath.Join(dir, key), old, old))
}

func TestSweepDeletesOnlyExpiredBlobs(t *testing.T) {
	dir := t.TempDir()
	blobs, err := fs.New(dir)
	require.NoError(t, err)

	saveBlob(t, blobs, "old.png", "old")
	saveBlob(t, blobs, "fresh.png", "fresh")
	ageBlob(t, dir, "old.png", 73*time.Hour)

	sweeper := NewSweeper(blobs, 72*time.Hour)
	require.NoError(t, sweeper.RunSweep())

	stats := sweeper.LastStats()
	assert.Equal(t, 2, stats.BlobsScanned)
	assert.Equal(t, 1, stats.BlobsDeleted)
	assert.Equal(t, int64(len("old")), stats.BytesReclaimed)

	_, err = blobs.Open("old.png")
	assert.True(t, errors.IsNotFound(err))
	rc, err := blobs.Open("fresh.png")
	require.NoError(t, err, "blobs inside the retention window survive")
	rc.Close()
}

func TestSweepIgnoresInFlightWrites(t *testing.T) {
	dir := t.TempDir()
	blobs, err := fs.New(dir)
	require.NoError(t, err)

	// A stalled upload that never published, older than the window.
	partPath := filepath.Join(dir, "stalled.png.part")
	require.NoError(t, os.WriteFile(partPath, []byte("partial"), 0o644))
	old := time.Now().Add(-100 * time.Hour)
	require.NoError(t, os.Chtimes(partPath, old, old))

	sweeper := NewSweeper(blobs, 72*time.Hour)
	require.NoError(t, sweeper.RunSweep())

	assert.Equal(t, 0, sweeper.LastStats().BlobsScanned, "in-flight writes are invisible to the sweep")
	_, err = os.Stat(partPath)
	assert.NoError(t, err, "the in-flight file is untouched")
}

func TestSweepEmptyStore(t *testing.T) {
	blobs, err := fs.New(t.TempDir())
	require.NoError(t, err)

	sweeper := NewSweeper(blobs, 72*time.Hour)
	require.NoError(t, sweeper.RunSweep())
	assert.Equal(t, 0, sweeper.LastStats().BlobsDeleted)
}

func TestSweepRepeatedRunsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	blobs, err := fs.New(dir)
	require.NoError(t, err)

	saveBlob(t, blobs, "old.png", "old")
	ageBlob(t, dir, "old.png", 73*time.Hour)

	sweeper := NewSweeper(blobs, 72*time.Hour)
	require.NoError(t, sweeper.RunSweep())
	require.NoError(t, sweeper.RunSweep())
	assert.Equal(t, 0, sweeper.LastStats().BlobsDeleted, "second pass finds nothing to delete")
}
