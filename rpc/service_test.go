package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// echoMaster answers just enough of the Master service to prove the
// hand-written service descriptors and the msgpack codec carry a full
// request/response round trip over a real connection.
type echoMaster struct {
	UnimplementedMasterServer
}

func (echoMaster) GetChunkServers(ctx context.Context, req *GetChunkServersRequest) (*GetChunkServersResponse, error) {
	return &GetChunkServersResponse{Status: "ok", Servers: []string{"A:1", "B:1", req.ClientID}}, nil
}

func (echoMaster) AddFile(ctx context.Context, req *AddFileRequest) (*Ack, error) {
	return &Ack{Status: "ok", Message: req.FilePath}, nil
}

type echoChunkServer struct {
	UnimplementedChunkServerServer
}

func (echoChunkServer) RetrieveChunk(ctx context.Context, req *RetrieveChunkRequest) (*RetrieveChunkResponse, error) {
	return &RetrieveChunkResponse{Status: "ok", Data: []byte("payload-for-" + req.ChunkID)}, nil
}

func serve(t *testing.T, register func(*grpc.Server)) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	gs := grpc.NewServer()
	register(gs)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	return lis.Addr().String()
}

func dial(t *testing.T, addr string) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMasterServiceRoundTrip(t *testing.T) {
	addr := serve(t, func(gs *grpc.Server) { RegisterMasterServer(gs, echoMaster{}) })
	client := NewMasterClient(dial(t, addr))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.GetChunkServers(ctx, &GetChunkServersRequest{ClientID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"A:1", "B:1", "c1"}, resp.Servers)

	ack, err := client.AddFile(ctx, &AddFileRequest{FilePath: "/f", ChunkIDs: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "/f", ack.Message)
}

func TestMasterServiceUnimplementedMethodErrors(t *testing.T) {
	addr := serve(t, func(gs *grpc.Server) { RegisterMasterServer(gs, echoMaster{}) })
	client := NewMasterClient(dial(t, addr))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := client.ListFiles(ctx, &ListFilesRequest{})
	assert.Error(t, err, "methods left on the Unimplemented base must surface an error")
}

func TestChunkServerServiceRoundTrip(t *testing.T) {
	addr := serve(t, func(gs *grpc.Server) { RegisterChunkServerServer(gs, echoChunkServer{}) })
	client := NewChunkServerClient(dial(t, addr))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.RetrieveChunk(ctx, &RetrieveChunkRequest{ChunkID: "c9"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []byte("payload-for-c9"), resp.Data)
}
