package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Master.Port)
	assert.Equal(t, int64(1<<20), cfg.Master.ChunkSize)
	assert.Equal(t, 3, cfg.Master.ReplicationFactor)
	assert.Equal(t, 5, cfg.ChunkServer.HeartbeatInterval)
	assert.Equal(t, int64(1<<20), cfg.Client.UploadChunkSize)
}

func TestLoadParsesAllSections(t *testing.T) {
	doc := `
[master]
host = "10.0.0.5"
port = 9000
chunk_size = 4194304
replication_factor = 2

[chunk_server]
data_dir = "/var/lib/dfs"
heartbeat_interval = 3
space_limit = 536870912

[client]
upload_chunk_size = 2097152
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Master.Host)
	assert.Equal(t, 9000, cfg.Master.Port)
	assert.Equal(t, int64(4194304), cfg.Master.ChunkSize)
	assert.Equal(t, 2, cfg.Master.ReplicationFactor)
	assert.Equal(t, "/var/lib/dfs", cfg.ChunkServer.DataDir)
	assert.Equal(t, 3, cfg.ChunkServer.HeartbeatInterval)
	assert.Equal(t, int64(536870912), cfg.ChunkServer.SpaceLimit)
	assert.Equal(t, int64(2097152), cfg.Client.UploadChunkSize)
}

func TestLoadPartialDocumentKeepsDefaultsElsewhere(t *testing.T) {
	doc := `
[master]
port = 9000
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Master.Port)
	assert.Equal(t, "localhost", cfg.Master.Host, "unset fields fall back to defaults")
	assert.Equal(t, 3, cfg.Master.ReplicationFactor)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
