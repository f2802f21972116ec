package master

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetadata(t *testing.T) *Metadata {
	t.Helper()
	m, err := NewMetadata(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)
	return m
}

func TestAddFileRejectsDuplicate(t *testing.T) {
	m := newTestMetadata(t)
	require.NoError(t, m.AddFile("/f", []string{"c1"}, 0))
	err := m.AddFile("/f", []string{"c1"}, 0)
	assert.Error(t, err)
}

func TestUpdateFileMetadataTracksLastChunkAndSize(t *testing.T) {
	m := newTestMetadata(t)
	require.NoError(t, m.AddFile("/f", nil, 0))

	require.NoError(t, m.UpdateFileMetadata("/f", "c1", 0, []string{"A", "B"}, 4, false))
	require.NoError(t, m.UpdateFileMetadata("/f", "c2", 1, []string{"A", "B"}, 2, false))

	file, ok := m.GetFile("/f")
	require.True(t, ok)
	assert.Equal(t, []string{"c1", "c2"}, file.ChunkIDs)
	assert.Equal(t, "c2", file.LastChunkID)
	assert.Equal(t, int64(2), file.LastChunkOffset)
	assert.Equal(t, int64(6), file.TotalSize)
	assert.Equal(t, []string{"A", "B"}, file.ChunkLocations["c1"])
}

func TestUpdateFileMetadataSetsPendingReplicationMarker(t *testing.T) {
	m := newTestMetadata(t)
	require.NoError(t, m.AddFile("/f", nil, 0))
	require.NoError(t, m.UpdateFileMetadata("/f", "c1", 0, []string{"A"}, 4, true))
	m.SetPendingReplication("/f", "c1", 2)

	file, ok := m.GetFile("/f")
	require.True(t, ok)
	assert.Equal(t, int32(2), file.PendingReplication["c1"])

	m.SetPendingReplication("/f", "c1", 0)
	file, _ = m.GetFile("/f")
	_, stillPending := file.PendingReplication["c1"]
	assert.False(t, stillPending, "a zero needed-count clears the pending marker")
}

func TestUpdateChunkOffsetAdjustsTotalSizeByDelta(t *testing.T) {
	m := newTestMetadata(t)
	require.NoError(t, m.AddFile("/f", nil, 0))
	require.NoError(t, m.UpdateFileMetadata("/f", "c1", 0, []string{"A"}, 4, false))

	require.NoError(t, m.UpdateChunkOffset("/f", "c1", 7))

	file, ok := m.GetFile("/f")
	require.True(t, ok)
	assert.Equal(t, int64(7), file.LastChunkOffset)
	assert.Equal(t, int64(7), file.TotalSize)
}

func TestGetChunkLocationsUnknownChunk(t *testing.T) {
	m := newTestMetadata(t)
	require.NoError(t, m.AddFile("/f", nil, 0))
	_, err := m.GetChunkLocations("/f", "missing")
	assert.Error(t, err)
}

func TestMetadataPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")

	m1, err := NewMetadata(path)
	require.NoError(t, err)
	require.NoError(t, m1.AddFile("/f", []string{"c1"}, 0))
	require.NoError(t, m1.UpdateFileMetadata("/f", "c1", 0, []string{"A"}, 4, false))

	m2, err := NewMetadata(path)
	require.NoError(t, err)
	file, ok := m2.GetFile("/f")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, file.ChunkLocations["c1"])
}

func TestPendingFilesOnlyReturnsUnderReplicated(t *testing.T) {
	m := newTestMetadata(t)
	require.NoError(t, m.AddFile("/a", nil, 0))
	require.NoError(t, m.AddFile("/b", nil, 0))
	require.NoError(t, m.UpdateFileMetadata("/a", "c1", 0, []string{"A"}, 4, true))
	m.SetPendingReplication("/a", "c1", 1)

	pending := m.PendingFiles()
	require.Len(t, pending, 1)
	assert.Equal(t, "/a", pending[0].FilePath)
}
