package master

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harshvardha/distributed_file_system/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, replicationFactor int) *Server {
	t.Helper()
	s, err := NewServer("127.0.0.1:0", filepath.Join(t.TempDir(), "metadata.json"), 5, replicationFactor)
	require.NoError(t, err)
	return s
}

func heartbeatWithSpace(t *testing.T, s *Server, address string, x, y float64, total, used int64) {
	t.Helper()
	ack, err := s.Heartbeat(context.Background(), &rpc.HeartbeatRequest{
		Address: address, X: x, Y: y,
		SpaceInfo: &rpc.SpaceInfo{Total: total, Used: used, Available: total - used},
	})
	require.NoError(t, err)
	require.Equal(t, "ok", ack.Status)
}

func TestRegisterThenHeartbeatChunkServer(t *testing.T) {
	s := newTestServer(t, 2)
	ctx := context.Background()

	ack, err := s.RegisterChunkServer(ctx, &rpc.RegisterChunkServerRequest{Address: "A:1", X: 0, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, "ok", ack.Status)

	heartbeatWithSpace(t, s, "A:1", 0, 0, 100, 10)
}

func TestHeartbeatFromUnregisteredServerIsRejected(t *testing.T) {
	s := newTestServer(t, 2)
	ack, err := s.Heartbeat(context.Background(), &rpc.HeartbeatRequest{Address: "ghost:1"})
	require.NoError(t, err)
	assert.Equal(t, "error", ack.Status)
}

func TestGetChunkServersRanksByClientProximity(t *testing.T) {
	s := newTestServer(t, 3)
	ctx := context.Background()

	for _, srv := range []struct {
		addr string
		x, y float64
	}{{"A:1", 1, 0}, {"B:1", 100, 99}, {"D:1", 100, 100}} {
		_, err := s.RegisterChunkServer(ctx, &rpc.RegisterChunkServerRequest{Address: srv.addr, X: srv.x, Y: srv.y})
		require.NoError(t, err)
		heartbeatWithSpace(t, s, srv.addr, srv.x, srv.y, 100, 0)
	}

	_, err := s.RegisterClient(ctx, &rpc.RegisterClientRequest{ClientID: "c1", X: 0, Y: 0})
	require.NoError(t, err)
	_, err = s.RegisterClient(ctx, &rpc.RegisterClientRequest{ClientID: "c2", X: 100, Y: 100})
	require.NoError(t, err)

	resp, err := s.GetChunkServers(ctx, &rpc.GetChunkServersRequest{ClientID: "c1"})
	require.NoError(t, err)
	require.Len(t, resp.Servers, 3)
	assert.Equal(t, "A:1", resp.Servers[0])

	resp, err = s.GetChunkServers(ctx, &rpc.GetChunkServersRequest{ClientID: "c2"})
	require.NoError(t, err)
	require.Len(t, resp.Servers, 3)
	assert.Equal(t, "D:1", resp.Servers[0])
	assert.Equal(t, "B:1", resp.Servers[1])
}

func TestGetChunkServersListsFreshlyRegisteredServers(t *testing.T) {
	s := newTestServer(t, 2)
	ctx := context.Background()

	// No heartbeat yet, so no declared space: the server must still be
	// offered as a candidate.
	_, err := s.RegisterChunkServer(ctx, &rpc.RegisterChunkServerRequest{Address: "A:1"})
	require.NoError(t, err)

	resp, err := s.GetChunkServers(ctx, &rpc.GetChunkServersRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A:1"}, resp.Servers)
}

func TestGetReplicaLocationsExcludesHolders(t *testing.T) {
	s := newTestServer(t, 3)
	ctx := context.Background()

	for _, addr := range []string{"A:1", "B:1", "C:1"} {
		_, err := s.RegisterChunkServer(ctx, &rpc.RegisterChunkServerRequest{Address: addr})
		require.NoError(t, err)
		heartbeatWithSpace(t, s, addr, 0, 0, 100, 0)
	}

	resp, err := s.GetReplicaLocations(ctx, &rpc.GetReplicaLocationsRequest{
		ChunkID:   "c1",
		Excluding: []string{"A:1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Locations, 2, "replication factor 3 minus the one holder leaves two targets")
	assert.NotContains(t, resp.Locations, "A:1")
}

func TestAddFileThenGetFileMetadata(t *testing.T) {
	s := newTestServer(t, 2)
	ctx := context.Background()

	ack, err := s.AddFile(ctx, &rpc.AddFileRequest{FilePath: "/f", ChunkIDs: []string{"c1", "c2"}})
	require.NoError(t, err)
	require.Equal(t, "ok", ack.Status)

	ack, err = s.UpdateFileMetadata(ctx, &rpc.UpdateFileMetadataRequest{
		FilePath: "/f", ChunkID: "c1", ChunkLocations: []string{"A:1", "B:1"}, ChunkSize: 4,
	})
	require.NoError(t, err)
	require.Equal(t, "ok", ack.Status)

	resp, err := s.GetFileMetadata(ctx, &rpc.GetFileMetadataRequest{FilePath: "/f"})
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, "/f", resp.Metadata.FilePath)
	assert.Equal(t, []string{"A:1", "B:1"}, resp.Metadata.ChunkLocations["c1"])
	assert.Equal(t, int64(4), resp.Metadata.ChunkOffsets["c1"])
}

func TestUpdateFileMetadataPendingSchedulesRepair(t *testing.T) {
	s := newTestServer(t, 3)
	ctx := context.Background()

	_, err := s.AddFile(ctx, &rpc.AddFileRequest{FilePath: "/f", ChunkIDs: []string{"c1"}})
	require.NoError(t, err)

	ack, err := s.UpdateFileMetadata(ctx, &rpc.UpdateFileMetadataRequest{
		FilePath: "/f", ChunkID: "c1", ChunkLocations: []string{"A:1", "B:1"},
		ChunkSize: 4, PendingReplication: true,
	})
	require.NoError(t, err)
	require.Equal(t, "ok", ack.Status)

	file, ok := s.metadata.GetFile("/f")
	require.True(t, ok)
	assert.Equal(t, int32(1), file.PendingReplication["c1"], "3-way target with 2 copies leaves 1 needed")
}

func TestGetFileMetadataUnknownPath(t *testing.T) {
	s := newTestServer(t, 2)
	resp, err := s.GetFileMetadata(context.Background(), &rpc.GetFileMetadataRequest{FilePath: "/missing"})
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
}

func TestUpdateChunkOffsetAndGetChunkLocations(t *testing.T) {
	s := newTestServer(t, 2)
	ctx := context.Background()

	_, err := s.AddFile(ctx, &rpc.AddFileRequest{FilePath: "/f", ChunkIDs: []string{"c1"}})
	require.NoError(t, err)
	_, err = s.UpdateFileMetadata(ctx, &rpc.UpdateFileMetadataRequest{
		FilePath: "/f", ChunkID: "c1", ChunkLocations: []string{"A:1"}, ChunkSize: 4,
	})
	require.NoError(t, err)

	ack, err := s.UpdateChunkOffset(ctx, &rpc.UpdateChunkOffsetRequest{FilePath: "/f", ChunkID: "c1", Offset: 7})
	require.NoError(t, err)
	require.Equal(t, "ok", ack.Status)

	resp, err := s.GetChunkLocations(ctx, &rpc.GetChunkLocationsRequest{FilePath: "/f", ChunkID: "c1"})
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"A:1"}, resp.Locations)

	file, _ := s.metadata.GetFile("/f")
	assert.Equal(t, int64(7), file.LastChunkOffset)
}

func TestListFilesEnumeratesNamespace(t *testing.T) {
	s := newTestServer(t, 2)
	ctx := context.Background()
	_, err := s.AddFile(ctx, &rpc.AddFileRequest{FilePath: "/a"})
	require.NoError(t, err)
	_, err = s.AddFile(ctx, &rpc.AddFileRequest{FilePath: "/b"})
	require.NoError(t, err)

	resp, err := s.ListFiles(ctx, &rpc.ListFilesRequest{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/a", "/b"}, resp.Files)
}

func TestGetGraphDataIncludesNodesEdgesAndPriorities(t *testing.T) {
	s := newTestServer(t, 2)
	ctx := context.Background()

	_, err := s.RegisterChunkServer(ctx, &rpc.RegisterChunkServerRequest{Address: "A:1", X: 3, Y: 4})
	require.NoError(t, err)
	heartbeatWithSpace(t, s, "A:1", 3, 4, 100, 10)
	_, err = s.RegisterClient(ctx, &rpc.RegisterClientRequest{ClientID: "c1", X: 0, Y: 0})
	require.NoError(t, err)

	resp, err := s.GetGraphData(ctx, &rpc.GetGraphDataRequest{})
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.GraphData)
	assert.Len(t, resp.GraphData.Nodes, 2)
	require.Len(t, resp.GraphData.Edges, 1)
	assert.InDelta(t, 5.0, resp.GraphData.Edges[0].Distance, 1e-9)
	require.Contains(t, resp.GraphData.Priorities, "c1")
	assert.Equal(t, "A:1", resp.GraphData.Priorities["c1"][0].ServerID)
}

func TestMetadataEvictServerMarksPendingRepair(t *testing.T) {
	s := newTestServer(t, 2)
	ctx := context.Background()

	_, err := s.AddFile(ctx, &rpc.AddFileRequest{FilePath: "/f", ChunkIDs: []string{"c1"}})
	require.NoError(t, err)
	_, err = s.UpdateFileMetadata(ctx, &rpc.UpdateFileMetadataRequest{
		FilePath: "/f", ChunkID: "c1", ChunkLocations: []string{"A:1", "B:1"}, ChunkSize: 4,
	})
	require.NoError(t, err)

	s.metadata.EvictServer("B:1", 2)

	file, ok := s.metadata.GetFile("/f")
	require.True(t, ok)
	assert.Equal(t, []string{"A:1"}, file.ChunkLocations["c1"])
	assert.Equal(t, int32(1), file.PendingReplication["c1"])
}
