package master

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/harshvardha/distributed_file_system/logging"
	"github.com/harshvardha/distributed_file_system/rpc"
	"google.golang.org/grpc"
)

var serverLog = logging.Get("master.server")

// Server is the Master: the single authority for the namespace, chunk
// placement, and liveness.
type Server struct {
	rpc.UnimplementedMasterServer

	address           string
	metadata          *Metadata
	registry          *Registry
	graph             *LocationGraph
	replication       *ReplicationManager
	replicationFactor int

	stop chan struct{}
}

// NewServer constructs a Master bound to address, persisting its namespace
// to metadataPath (empty disables persistence).
func NewServer(address, metadataPath string, heartbeatIntervalSeconds, replicationFactor int) (*Server, error) {
	metadata, err := NewMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	graph := NewLocationGraph()
	registry := NewRegistry(graph, time.Duration(heartbeatIntervalSeconds)*time.Second)
	registry.OnChunkServerEvict(func(address string) {
		metadata.EvictServer(address, replicationFactor)
	})
	replication := NewReplicationManager(metadata, registry, replicationFactor)

	return &Server{
		address:           address,
		metadata:          metadata,
		registry:          registry,
		graph:             graph,
		replication:       replication,
		replicationFactor: replicationFactor,
		stop:              make(chan struct{}),
	}, nil
}

// RegisterChunkServer implements rpc.MasterServer.
func (s *Server) RegisterChunkServer(ctx context.Context, req *rpc.RegisterChunkServerRequest) (*rpc.Ack, error) {
	s.registry.RegisterChunkServer(req.Address, req.X, req.Y)
	serverLog.Infow("chunk server registered", "address", req.Address)
	return &rpc.Ack{Status: "ok"}, nil
}

// Heartbeat implements rpc.MasterServer.
func (s *Server) Heartbeat(ctx context.Context, req *rpc.HeartbeatRequest) (*rpc.Ack, error) {
	hasSpace := req.SpaceInfo != nil
	var total, used int64
	if hasSpace {
		total, used = req.SpaceInfo.Total, req.SpaceInfo.Used
	}
	if !s.registry.Heartbeat(req.Address, req.X, req.Y, total, used, hasSpace) {
		return &rpc.Ack{Status: "error", Message: "unknown chunk server"}, nil
	}
	return &rpc.Ack{Status: "ok"}, nil
}

// RegisterClient implements rpc.MasterServer.
func (s *Server) RegisterClient(ctx context.Context, req *rpc.RegisterClientRequest) (*rpc.Ack, error) {
	s.registry.RegisterClient(req.ClientID, req.X, req.Y)
	serverLog.Infow("client registered", "client_id", req.ClientID)
	return &rpc.Ack{Status: "ok"}, nil
}

// ClientHeartbeat implements rpc.MasterServer.
func (s *Server) ClientHeartbeat(ctx context.Context, req *rpc.ClientHeartbeatRequest) (*rpc.Ack, error) {
	if !s.registry.ClientHeartbeat(req.ClientID) {
		return &rpc.Ack{Status: "error", Message: "unknown client"}, nil
	}
	return &rpc.Ack{Status: "ok"}, nil
}

// GetChunkServers implements rpc.MasterServer: lists every active chunk
// server, ranked by proximity to the requesting client (or by available
// space alone when the client is unknown). The caller walks the list as
// primary candidates, so no truncation happens here.
func (s *Server) GetChunkServers(ctx context.Context, req *rpc.GetChunkServersRequest) (*rpc.GetChunkServersResponse, error) {
	origin := ""
	if req.ClientID != "" && s.graph.Has(req.ClientID) {
		origin = req.ClientID
	}
	servers := s.graph.NearestChunkServers(origin, 0, nil)
	return &rpc.GetChunkServersResponse{Status: "ok", Servers: servers}, nil
}

// GetReplicaLocations implements rpc.MasterServer: used by a chunk server
// acting as chain-store primary to find additional replica targets,
// excluding whatever it already holds.
func (s *Server) GetReplicaLocations(ctx context.Context, req *rpc.GetReplicaLocationsRequest) (*rpc.GetReplicaLocationsResponse, error) {
	exclude := make(map[string]bool, len(req.Excluding))
	for _, addr := range req.Excluding {
		exclude[addr] = true
	}
	origin := ""
	if len(req.Excluding) > 0 {
		origin = req.Excluding[0]
	}
	needed := s.replicationFactor - len(req.Excluding)
	if needed < 0 {
		needed = 0
	}
	locations := s.graph.NearestChunkServers(origin, needed, exclude)
	return &rpc.GetReplicaLocationsResponse{Status: "ok", Locations: locations}, nil
}

// AddFile implements rpc.MasterServer.
func (s *Server) AddFile(ctx context.Context, req *rpc.AddFileRequest) (*rpc.Ack, error) {
	if err := s.metadata.AddFile(req.FilePath, req.ChunkIDs, req.TotalSize); err != nil {
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}
	return &rpc.Ack{Status: "ok"}, nil
}

// UpdateFileMetadata implements rpc.MasterServer.
func (s *Server) UpdateFileMetadata(ctx context.Context, req *rpc.UpdateFileMetadataRequest) (*rpc.Ack, error) {
	if err := s.metadata.UpdateFileMetadata(req.FilePath, req.ChunkID, req.ChunkIndex, req.ChunkLocations, req.ChunkSize, req.PendingReplication); err != nil {
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}
	if req.PendingReplication {
		needed := s.replicationFactor - len(req.ChunkLocations)
		s.metadata.SetPendingReplication(req.FilePath, req.ChunkID, int32(needed))
	}
	return &rpc.Ack{Status: "ok"}, nil
}

// UpdateChunkLocations implements rpc.MasterServer.
func (s *Server) UpdateChunkLocations(ctx context.Context, req *rpc.UpdateChunkLocationsRequest) (*rpc.Ack, error) {
	if err := s.metadata.UpdateChunkLocations(req.FilePath, req.ChunkID, req.Locations); err != nil {
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}
	return &rpc.Ack{Status: "ok"}, nil
}

// UpdateChunkOffset implements rpc.MasterServer.
func (s *Server) UpdateChunkOffset(ctx context.Context, req *rpc.UpdateChunkOffsetRequest) (*rpc.Ack, error) {
	if err := s.metadata.UpdateChunkOffset(req.FilePath, req.ChunkID, req.Offset); err != nil {
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}
	return &rpc.Ack{Status: "ok"}, nil
}

// GetChunkLocations implements rpc.MasterServer.
func (s *Server) GetChunkLocations(ctx context.Context, req *rpc.GetChunkLocationsRequest) (*rpc.GetChunkLocationsResponse, error) {
	locations, err := s.metadata.GetChunkLocations(req.FilePath, req.ChunkID)
	if err != nil {
		return &rpc.GetChunkLocationsResponse{Status: "error", Message: err.Error()}, nil
	}
	return &rpc.GetChunkLocationsResponse{Status: "ok", Locations: locations}, nil
}

// GetFileMetadata implements rpc.MasterServer.
func (s *Server) GetFileMetadata(ctx context.Context, req *rpc.GetFileMetadataRequest) (*rpc.GetFileMetadataResponse, error) {
	file, exists := s.metadata.GetFile(req.FilePath)
	if !exists {
		return &rpc.GetFileMetadataResponse{Status: "error", Message: "file not found"}, nil
	}
	return &rpc.GetFileMetadataResponse{Status: "ok", Metadata: toFileMetadataMsg(file)}, nil
}

// ListFiles implements rpc.MasterServer.
func (s *Server) ListFiles(ctx context.Context, req *rpc.ListFilesRequest) (*rpc.ListFilesResponse, error) {
	return &rpc.ListFilesResponse{Status: "ok", Files: s.metadata.ListFiles()}, nil
}

// GetGraphData implements rpc.MasterServer: a diagnostic dump of the whole
// LocationGraph and per-client priority tables.
func (s *Server) GetGraphData(ctx context.Context, req *rpc.GetGraphDataRequest) (*rpc.GetGraphDataResponse, error) {
	snap := s.graph.Snapshot()

	nodes := make([]rpc.GraphNodeMsg, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		nodes = append(nodes, rpc.GraphNodeMsg{
			ID: n.ID, Type: n.Kind, X: n.X, Y: n.Y,
			SpaceInfo: &rpc.SpaceInfo{Total: n.Total, Used: n.Used, Available: n.SpaceAvailable},
		})
	}
	edges := make([]rpc.GraphEdgeMsg, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		edges = append(edges, rpc.GraphEdgeMsg{Source: e.Source, Target: e.Target, Distance: e.Distance})
	}
	priorities := make(map[string][]rpc.PriorityEntryMsg, len(snap.Priorities))
	activeClients := make([]string, 0, len(snap.Priorities))
	for client, entries := range snap.Priorities {
		activeClients = append(activeClients, client)
		views := make([]rpc.PriorityEntryMsg, 0, len(entries))
		for _, e := range entries {
			views = append(views, rpc.PriorityEntryMsg{ServerID: e.ServerID, Distance: e.Distance, SpaceAvailable: e.SpaceAvailable})
		}
		priorities[client] = views
	}

	return &rpc.GetGraphDataResponse{
		Status: "ok",
		GraphData: &rpc.GraphDataMsg{
			Nodes:         nodes,
			Edges:         edges,
			ActiveClients: activeClients,
			Priorities:    priorities,
		},
	}, nil
}

func toFileMetadataMsg(f *FileMetadata) *rpc.FileMetadataMsg {
	return &rpc.FileMetadataMsg{
		FilePath:           f.FilePath,
		TotalSize:          f.TotalSize,
		ChunkIDs:           f.ChunkIDs,
		ChunkLocations:     f.ChunkLocations,
		ChunkOffsets:       f.ChunkOffsets,
		LastChunkID:        f.LastChunkID,
		LastChunkOffset:    f.LastChunkOffset,
		PendingReplication: f.PendingReplication,
	}
}

// Start runs the Master's gRPC listener plus its background liveness and
// replication-repair loops. It blocks until the server stops serving.
func (s *Server) Start() error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("master failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer()
	rpc.RegisterMasterServer(grpcServer, s)

	go s.registry.RunLivenessLoop(s.stop)
	go s.replication.Run(s.stop)

	serverLog.Infow("master starting", "address", s.address)
	if err := grpcServer.Serve(listen); err != nil {
		return fmt.Errorf("master failed to serve: %w", err)
	}
	return nil
}

// Stop halts the background loops. The gRPC listener itself is stopped by
// the caller via GracefulStop on the *grpc.Server it created.
func (s *Server) Stop() {
	close(s.stop)
}
