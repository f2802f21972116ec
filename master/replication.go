package master

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/harshvardha/distributed_file_system/logging"
	"github.com/harshvardha/distributed_file_system/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var replicationLog = logging.Get("master.replication")

// ReplicationManager periodically repairs under-replicated chunks.
type ReplicationManager struct {
	metadata          *Metadata
	registry          *Registry
	replicationFactor int
	interval          time.Duration
}

// NewReplicationManager constructs a manager over the given metadata store
// and registry.
func NewReplicationManager(metadata *Metadata, registry *Registry, replicationFactor int) *ReplicationManager {
	return &ReplicationManager{
		metadata:          metadata,
		registry:          registry,
		replicationFactor: replicationFactor,
		interval:          10 * time.Second,
	}
}

// Run drives the repair loop until stop is closed.
func (r *ReplicationManager) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.repairOnce()
		}
	}
}

func (r *ReplicationManager) repairOnce() {
	for _, file := range r.metadata.PendingFiles() {
		for chunkID, needed := range file.PendingReplication {
			current := file.ChunkLocations[chunkID]
			if needed <= 0 || len(current) >= r.replicationFactor {
				// Replication was satisfied out of band; drop the marker.
				r.metadata.SetPendingReplication(file.FilePath, chunkID, 0)
				continue
			}
			if err := r.repairChunk(file.FilePath, chunkID, current, int(needed)); err != nil {
				replicationLog.Warnw("replication repair failed", "chunk_id", chunkID, "error", err)
			}
		}
	}
}

func (r *ReplicationManager) repairChunk(filePath, chunkID string, current []string, needed int) error {
	if len(current) == 0 {
		return nil // nothing holds this chunk; nothing to copy from
	}

	source := current[randIndex(len(current))]

	exclude := make(map[string]bool, len(current))
	for _, addr := range current {
		exclude[addr] = true
	}
	targets := r.registry.graph.NearestChunkServers(source, needed, exclude)
	if len(targets) == 0 {
		return nil
	}

	data, err := fetchChunk(source, chunkID)
	if err != nil {
		return err
	}

	placed := append([]string(nil), current...)
	for _, target := range targets {
		if err := storeReplica(target, chunkID, filePath, data); err != nil {
			replicationLog.Warnw("failed to place replica", "chunk_id", chunkID, "target", target, "error", err)
			continue
		}
		placed = append(placed, target)
	}

	if len(placed) == len(current) {
		return nil
	}

	if err := r.metadata.UpdateChunkLocations(filePath, chunkID, placed); err != nil {
		return err
	}
	r.metadata.SetPendingReplication(filePath, chunkID, int32(r.replicationFactor-len(placed)))
	replicationLog.Infow("repaired chunk replication", "chunk_id", chunkID, "replicas", len(placed))
	return nil
}

func randIndex(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func dialChunkServer(address string) (*grpc.ClientConn, rpc.ChunkServerClient, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, rpc.NewChunkServerClient(conn), nil
}

func fetchChunk(address, chunkID string) ([]byte, error) {
	conn, client, err := dialChunkServer(address)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.RetrieveChunk(ctx, &rpc.RetrieveChunkRequest{ChunkID: chunkID})
	if err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, errStatus(resp.Status, resp.Message)
	}
	return resp.Data, nil
}

func storeReplica(address, chunkID, filePath string, data []byte) error {
	conn, client, err := dialChunkServer(address)
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
		return errStatus(resp.Status, resp.Message)
	}
	return nil
}
