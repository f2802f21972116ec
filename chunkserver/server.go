package chunkserver

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/harshvardha/distributed_file_system/logging"
	"github.com/harshvardha/distributed_file_system/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var serverLog = logging.Get("chunkserver.server")

// Server is a chunk server: stores chunk bytes, takes part in chain
// replication as either primary or replica, and drives the two-phase
// append protocol on its own chunks.
type Server struct {
	rpc.UnimplementedChunkServerServer

	id                string
	address           string
	masterAddress     string
	storage           *Storage
	x, y              float64
	heartbeatInterval time.Duration
	replicationFactor int
}

// NewServer constructs a chunk server bound to (x, y) in the Master's
// LocationGraph. dataDir is the shared data directory: it holds the
// server_info.json identity document, and this server's chunks live in a
// subdirectory named after its resolved server ID. An empty serverID gets
// a generated one; a serverID already present in server_info.json keeps
// its recorded port regardless of the port argument.
func NewServer(address, dataDir, masterAddress, serverID string, port int, spaceLimit int64, heartbeatIntervalSeconds, replicationFactor int, x, y float64) (*Server, error) {
	ident, err := LoadOrCreateIdentity(dataDir, serverID, port)
	if err != nil {
		return nil, err
	}

	storage, err := NewStorage(ident.DataDir, spaceLimit)
	if err != nil {
		return nil, err
	}

	return &Server{
		id:                ident.ServerID,
		address:           address,
		masterAddress:     masterAddress,
		storage:           storage,
		x:                 x,
		y:                 y,
		heartbeatInterval: time.Duration(heartbeatIntervalSeconds) * time.Second,
		replicationFactor: replicationFactor,
	}, nil
}

func (s *Server) dialMaster() (*grpc.ClientConn, rpc.MasterClient, error) {
	conn, err := grpc.NewClient(s.masterAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, rpc.NewMasterClient(conn), nil
}

func (s *Server) dialPeer(address string) (*grpc.ClientConn, rpc.ChunkServerClient, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, rpc.NewChunkServerClient(conn), nil
}

func (s *Server) registerWithMaster() {
	conn, client, err := s.dialMaster()
	if err != nil {
		serverLog.Errorw("failed to connect to master for registration", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = client.RegisterChunkServer(ctx, &rpc.RegisterChunkServerRequest{Address: s.address, X: s.x, Y: s.y})
	if err != nil {
		serverLog.Errorw("failed to register with master", "error", err)
	}
}

func (s *Server) heartbeatLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sendHeartbeat()
		}
	}
}

func (s *Server) sendHeartbeat() {
	total, used, _, err := s.storage.SpaceInfo()
	if err != nil {
		serverLog.Warnw("failed to compute space info for heartbeat", "error", err)
		return
	}

	conn, client, err := s.dialMaster()
	if err != nil {
		serverLog.Errorw("failed to connect to master for heartbeat", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = client.Heartbeat(ctx, &rpc.HeartbeatRequest{
		Address:   s.address,
		X:         s.x,
		Y:         s.y,
		SpaceInfo: &rpc.SpaceInfo{Total: total, Used: used, Available: total - used},
	})
	if err != nil {
		serverLog.Warnw("heartbeat failed", "error", err)
	}
}

// StoreChunk implements rpc.ChunkServerServer. A replica store (IsReplica ==
// true) writes straight to the final chunk path. A primary store stages the
// data to a per-transaction temp file, asks the Master for additional
// targets, fans the data out to them as IsReplica stores, atomically
// promotes its own staged copy, and reports the resulting replica set back
// to the Master. The rename is the primary's single commit point: a
// failure anywhere before it leaves no committed chunk behind.
func (s *Server) StoreChunk(ctx context.Context, req *rpc.StoreChunkRequest) (*rpc.StoreChunkResponse, error) {
	ok, available, err := s.storage.CheckSpace(int64(len(req.Data)))
	if err != nil {
		return &rpc.StoreChunkResponse{Status: "error", Message: err.Error()}, nil
	}
	if !ok {
		return &rpc.StoreChunkResponse{Status: "insufficient_space", AvailableSpace: available}, nil
	}

	if req.IsReplica {
		if err := s.storage.WriteChunk(req.ChunkID, req.Data); err != nil {
			return &rpc.StoreChunkResponse{Status: "error", Message: err.Error()}, nil
		}
		return &rpc.StoreChunkResponse{Status: "ok", ChunkID: req.ChunkID}, nil
	}

	txID := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := s.storage.StageChunk(req.ChunkID, txID, req.Data); err != nil {
		return &rpc.StoreChunkResponse{Status: "error", Message: err.Error()}, nil
	}

	locations := []string{s.address}
	replicas := s.fanOutReplicas(req.ChunkID, req.FilePath, req.Data, locations)
	locations = append(locations, replicas...)

	if err := s.storage.PromoteChunk(req.ChunkID, txID); err != nil {
		if discardErr := s.storage.DiscardStaged(req.ChunkID, txID); discardErr != nil {
			serverLog.Warnw("failed to discard staged chunk", "chunk_id", req.ChunkID, "error", discardErr)
		}
		return &rpc.StoreChunkResponse{Status: "error", Message: err.Error()}, nil
	}

	pending := len(locations) < s.replicationFactor
	s.reportLocations(req.FilePath, req.ChunkID, req.ChunkIndex, locations, int64(len(req.Data)), pending)

	return &rpc.StoreChunkResponse{
		Status:   "ok",
		ChunkID:  req.ChunkID,
		Replicas: int32(len(locations)),
	}, nil
}

// fanOutReplicas asks the Master for additional chunk servers, space-checks
// each candidate, and writes the chunk to those that pass; it returns the
// subset that succeeded.
func (s *Server) fanOutReplicas(chunkID, filePath string, data []byte, exclude []string) []string {
	conn, master, err := s.dialMaster()
	if err != nil {
		serverLog.Errorw("failed to contact master for replica locations", "error", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := master.GetReplicaLocations(ctx, &rpc.GetReplicaLocationsRequest{ChunkID: chunkID, Excluding: exclude})
	if err != nil {
		serverLog.Errorw("get replica locations failed", "error", err)
		return nil
	}

	placed := make([]string, 0, len(resp.Locations))
	for _, target := range resp.Locations {
		if !s.peerHasSpace(target, int64(len(data))) {
			serverLog.Warnw("replica candidate rejected on space check", "target", target)
			continue
		}
		if err := s.storeOnPeer(target, chunkID, filePath, data); err != nil {
			serverLog.Warnw("failed to replicate chunk to peer", "target", target, "error", err)
			continue
		}
		placed = append(placed, target)
	}
	return placed
}

// peerHasSpace asks a replica candidate whether it can take size more bytes.
func (s *Server) peerHasSpace(address string, size int64) bool {
	conn, client, err := s.dialPeer(address)
	if err != nil {
		return false
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.CheckSpace(ctx, &rpc.CheckSpaceRequest{Size: size})
	if err != nil {
		return false
	}
	return resp.Status == "ok"
}

func (s *Server) storeOnPeer(address, chunkID, filePath string, data []byte) error {
	conn, client, err := s.dialPeer(address)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.StoreChunk(ctx, &rpc.StoreChunkRequest{
		ChunkID:   chunkID,
		FilePath:  filePath,
		Data:      data,
		IsReplica: true,
	})
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("peer store returned status %s: %s", resp.Status, resp.Message)
	}
	return nil
}

func (s *Server) reportLocations(filePath, chunkID string, chunkIndex int32, locations []string, size int64, pending bool) {
	conn, master, err := s.dialMaster()
	if err != nil {
		serverLog.Errorw("failed to report chunk locations to master", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = master.UpdateFileMetadata(ctx, &rpc.UpdateFileMetadataRequest{
		FilePath:           filePath,
		ChunkID:            chunkID,
		ChunkIndex:         chunkIndex,
		ChunkLocations:     locations,
		ChunkSize:          size,
		PendingReplication: pending,
	})
	if err != nil {
		serverLog.Warnw("failed to update file metadata on master", "error", err)
	}
}

// RetrieveChunk implements rpc.ChunkServerServer.
func (s *Server) RetrieveChunk(ctx context.Context, req *rpc.RetrieveChunkRequest) (*rpc.RetrieveChunkResponse, error) {
	data, err := s.storage.ReadChunk(req.ChunkID)
	if err != nil {
		return &rpc.RetrieveChunkResponse{Status: "error", Message: err.Error()}, nil
	}
	return &rpc.RetrieveChunkResponse{Status: "ok", Data: data}, nil
}

// DeleteChunk implements rpc.ChunkServerServer.
func (s *Server) DeleteChunk(ctx context.Context, req *rpc.DeleteChunkRequest) (*rpc.Ack, error) {
	if err := s.storage.DeleteChunk(req.ChunkID); err != nil {
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}
	return &rpc.Ack{Status: "ok"}, nil
}

// CheckSpace implements rpc.ChunkServerServer.
func (s *Server) CheckSpace(ctx context.Context, req *rpc.CheckSpaceRequest) (*rpc.CheckSpaceResponse, error) {
	ok, available, err := s.storage.CheckSpace(req.Size)
	if err != nil {
		return &rpc.CheckSpaceResponse{Status: "error", Message: err.Error()}, nil
	}
	if !ok {
		return &rpc.CheckSpaceResponse{Status: "insufficient_space", AvailableSpace: available}, nil
	}
	return &rpc.CheckSpaceResponse{Status: "ok", AvailableSpace: available}, nil
}

// PrepareAppend implements rpc.ChunkServerServer: phase one of the
// two-phase append protocol.
func (s *Server) PrepareAppend(ctx context.Context, req *rpc.PrepareAppendRequest) (*rpc.Ack, error) {
	txLog := logging.Transaction("chunkserver.append", req.ChunkID, req.TxID)

	ok, available, err := s.storage.CheckSpace(int64(len(req.Data)))
	if err != nil {
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}
	if !ok {
		txLog.Warnw("insufficient space for prepare", "available", available)
		return &rpc.Ack{Status: "insufficient_space"}, nil
	}

	if err := s.storage.PrepareAppend(req.ChunkID, req.TxID, req.Data, req.Offset); err != nil {
		txLog.Warnw("prepare failed", "error", err)
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}

	txLog.Infow("prepared")
	return &rpc.Ack{Status: "ok"}, nil
}

// CommitAppend implements rpc.ChunkServerServer: phase two, the atomic
// commit point.
func (s *Server) CommitAppend(ctx context.Context, req *rpc.CommitAppendRequest) (*rpc.Ack, error) {
	txLog := logging.Transaction("chunkserver.append", req.ChunkID, req.TxID)

	if _, err := s.storage.CommitAppend(req.ChunkID, req.TxID); err != nil {
		txLog.Errorw("commit failed", "error", err)
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}

	txLog.Infow("committed")
	return &rpc.Ack{Status: "ok"}, nil
}

// RollbackAppend implements rpc.ChunkServerServer.
func (s *Server) RollbackAppend(ctx context.Context, req *rpc.RollbackAppendRequest) (*rpc.Ack, error) {
	txLog := logging.Transaction("chunkserver.append", req.ChunkID, req.TxID)
	if err := s.storage.RollbackAppend(req.ChunkID, req.TxID); err != nil {
		txLog.Errorw("rollback failed", "error", err)
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}
	txLog.Infow("rolled back")
	return &rpc.Ack{Status: "ok"}, nil
}

// AppendChunk implements rpc.ChunkServerServer: a legacy one-phase append,
// kept for compatibility. The client package never calls it; every client
// append goes through the two-phase protocol.
func (s *Server) AppendChunk(ctx context.Context, req *rpc.AppendChunkRequest) (*rpc.Ack, error) {
	ok, available, err := s.storage.CheckSpace(int64(len(req.Data)))
	if err != nil {
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}
	if !ok {
		return &rpc.Ack{Status: "insufficient_space", Message: fmt.Sprintf("available=%d", available)}, nil
	}
	if _, err := s.storage.AppendChunkDirect(req.ChunkID, req.Data); err != nil {
		return &rpc.Ack{Status: "error", Message: err.Error()}, nil
	}
	return &rpc.Ack{Status: "ok"}, nil
}

// Start runs the chunk server's gRPC listener, registers with the Master,
// and starts the heartbeat loop. It blocks until the server stops serving.
func (s *Server) Start() error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("chunk server %s failed to listen: %w", s.address, err)
	}

	grpcServer := grpc.NewServer()
	rpc.RegisterChunkServerServer(grpcServer, s)

	s.registerWithMaster()

	stop := make(chan struct{})
	go s.heartbeatLoop(stop)

	serverLog.Infow("chunk server starting", "id", s.id, "address", s.address, "master", s.masterAddress)
	if err := grpcServer.Serve(listen); err != nil {
		return fmt.Errorf("chunk server %s failed to serve: %w", s.address, err)
	}
	return nil
}
