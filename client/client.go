package client

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/harshvardha/distributed_file_system/common"
	"github.com/harshvardha/distributed_file_system/logging"
	"github.com/harshvardha/distributed_file_system/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var clientLog = logging.Get("client")

// Client is a DFS client: splits files into chunks on upload, resolves
// replica locations through the Master on every download, and drives the
// two-phase append protocol when appending to an existing chunk.
type Client struct {
	masterAddress string
	clientID      string
	x, y          float64
	chunkSize     int64

	stop chan struct{}
}

// NewClient creates and registers a new DFS client with the Master.
func NewClient(masterAddress, clientID string, x, y float64, chunkSize int64) (*Client, error) {
	if clientID == "" {
		clientID = "client_" + strconv.FormatInt(time.Now().Unix(), 10)
	}
	if chunkSize <= 0 {
		chunkSize = common.DefaultChunkSize
	}

	c := &Client{
		masterAddress: masterAddress,
		clientID:      clientID,
		x:             x,
		y:             y,
		chunkSize:     chunkSize,
		stop:          make(chan struct{}),
	}

	if err := c.registerWithMaster(); err != nil {
		return nil, err
	}

	go c.heartbeatLoop()
	return c, nil
}

// Close stops the client's background heartbeat loop.
func (c *Client) Close() {
	close(c.stop)
}

func (c *Client) dialMaster() (*grpc.ClientConn, rpc.MasterClient, error) {
	conn, err := grpc.NewClient(c.masterAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, rpc.NewMasterClient(conn), nil
}

func (c *Client) dialChunkServer(address string) (*grpc.ClientConn, rpc.ChunkServerClient, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, rpc.NewChunkServerClient(conn), nil
}

func (c *Client) registerWithMaster() error {
	conn, master, err := c.dialMaster()
	if err != nil {
		return fmt.Errorf("failed to connect to master: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ack, err := master.RegisterClient(ctx, &rpc.RegisterClientRequest{ClientID: c.clientID, X: c.x, Y: c.y})
	if err != nil {
		return fmt.Errorf("failed to register with master: %w", err)
	}
	if ack.Status != "ok" {
		return fmt.Errorf("master refused registration: %s", ack.Message)
	}
	return nil
}

func (c *Client) heartbeatLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sendHeartbeat()
		}
	}
}

func (c *Client) sendHeartbeat() {
	conn, master, err := c.dialMaster()
	if err != nil {
		clientLog.Warnw("failed to connect to master for heartbeat", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := master.ClientHeartbeat(ctx, &rpc.ClientHeartbeatRequest{ClientID: c.clientID}); err != nil {
		clientLog.Warnw("client heartbeat failed", "error", err)
	}
}

func (c *Client) availableChunkServers() ([]string, error) {
	conn, master, err := c.dialMaster()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to master: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := master.GetChunkServers(ctx, &rpc.GetChunkServersRequest{ClientID: c.clientID})
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk servers: %w", err)
	}
	if len(resp.Servers) == 0 {
		return nil, fmt.Errorf("no chunk servers available")
	}
	return resp.Servers, nil
}

// storeChunkWithFallback tries each server in turn until one accepts the
// chunk, skipping any that report insufficient_space.
func (c *Client) storeChunkWithFallback(chunkID, filePath string, chunkIndex int32, data []byte, servers []string) (string, error) {
	var lastErr error
	for _, server := range servers {
		conn, cs, err := c.dialChunkServer(server)
		if err != nil {
			lastErr = err
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		resp, err := cs.StoreChunk(ctx, &rpc.StoreChunkRequest{
			ChunkID:    chunkID,
			FilePath:   filePath,
			ChunkIndex: chunkIndex,
			Data:       data,
		})
		cancel()
		conn.Close()

		if err != nil {
			lastErr = err
			continue
		}
		if resp.Status == "ok" {
			return server, nil
		}
		lastErr = fmt.Errorf("%s: %s", resp.Status, resp.Message)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no servers accepted chunk")
	}
	return "", lastErr
}

// UploadFile reads localPath and stores it under gfsPath.
func (c *Client) UploadFile(localPath, gfsPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return c.uploadBytes(data, gfsPath)
}

func (c *Client) uploadBytes(data []byte, gfsPath string) error {
	totalSize := int64(len(data))
	numChunks := common.NumChunks(totalSize, c.chunkSize)

	chunkIDs := make([]string, numChunks)
	for i := range chunkIDs {
		chunkIDs[i] = common.NewChunkID()
	}

	conn, master, err := c.dialMaster()
	if err != nil {
		return fmt.Errorf("failed to connect to master: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ack, err := master.AddFile(ctx, &rpc.AddFileRequest{FilePath: gfsPath, ChunkIDs: chunkIDs, TotalSize: 0})
	cancel()
	conn.Close()
	if err != nil {
		return fmt.Errorf("failed to add file: %w", err)
	}
	if ack.Status != "ok" {
		return fmt.Errorf("master refused AddFile: %s", ack.Message)
	}

	for i := 0; i < numChunks; i++ {
		start := int64(i) * c.chunkSize
		end := min(start+c.chunkSize, totalSize)
		chunkData := data[start:end]

		servers, err := c.availableChunkServers()
		if err != nil {
			return err
		}

		if _, err := c.storeChunkWithFallback(chunkIDs[i], gfsPath, int32(i), chunkData, servers); err != nil {
			return fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
		clientLog.Infow("stored chunk", "file_path", gfsPath, "chunk_index", i, "chunk_id", chunkIDs[i])
	}

	return nil
}

// DownloadFile fetches gfsPath's metadata and every chunk, writing the
// reassembled bytes to localPath.
func (c *Client) DownloadFile(gfsPath, localPath string) error {
	meta, err := c.fetchMetadata(gfsPath)
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("file not found: %s", gfsPath)
	}

	buf := make([]byte, 0, meta.TotalSize)
	for _, chunkID := range meta.ChunkIDs {
		locations, err := c.chunkLocations(gfsPath, chunkID)
		if err != nil {
			return err
		}
		data, err := c.retrieveChunk(chunkID, locations)
		if err != nil {
			return fmt.Errorf("failed to download chunk %s: %w", chunkID, err)
		}
		buf = append(buf, data...)
	}

	if err := os.WriteFile(localPath, buf, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (c *Client) retrieveChunk(chunkID string, locations []string) ([]byte, error) {
	var lastErr error
	for _, addr := range locations {
		conn, cs, err := c.dialChunkServer(addr)
		if err != nil {
			lastErr = err
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		resp, err := cs.RetrieveChunk(ctx, &rpc.RetrieveChunkRequest{ChunkID: chunkID})
		cancel()
		conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Status == "ok" {
			return resp.Data, nil
		}
		lastErr = fmt.Errorf("%s: %s", resp.Status, resp.Message)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no locations available")
	}
	return nil, lastErr
}

func (c *Client) fetchMetadata(gfsPath string) (*rpc.FileMetadataMsg, error) {
	conn, master, err := c.dialMaster()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to master: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := master.GetFileMetadata(ctx, &rpc.GetFileMetadataRequest{FilePath: gfsPath})
	if err != nil {
		return nil, fmt.Errorf("failed to get file metadata: %w", err)
	}
	if resp.Status != "ok" {
		return nil, nil
	}
	return resp.Metadata, nil
}

func (c *Client) chunkLocations(gfsPath, chunkID string) ([]string, error) {
	conn, master, err := c.dialMaster()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to master: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := master.GetChunkLocations(ctx, &rpc.GetChunkLocationsRequest{FilePath: gfsPath, ChunkID: chunkID})
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk locations: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("no locations found for chunk %s: %s", chunkID, resp.Message)
	}
	return resp.Locations, nil
}

// ListFiles lists every file path known to the Master.
func (c *Client) ListFiles() ([]string, error) {
	conn, master, err := c.dialMaster()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to master: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := master.ListFiles(ctx, &rpc.ListFilesRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return resp.Files, nil
}

// AppendToFile appends data to gfsPath, creating the file if it does not
// already exist, and splitting into a new chunk if the current last chunk
// would overflow.
func (c *Client) AppendToFile(gfsPath string, data []byte) error {
	meta, err := c.fetchMetadata(gfsPath)
	if err != nil {
		return err
	}
	if meta == nil {
		return c.uploadBytes(data, gfsPath)
	}

	if meta.LastChunkOffset+int64(len(data)) > c.chunkSize {
		return c.appendNewChunk(gfsPath, meta, data)
	}
	return c.appendToChunk(gfsPath, meta.LastChunkID, data, meta.LastChunkOffset)
}

func (c *Client) appendNewChunk(gfsPath string, meta *rpc.FileMetadataMsg, data []byte) error {
	chunkID := common.NewChunkID()
	chunkIndex := int32(len(meta.ChunkIDs))

	servers, err := c.availableChunkServers()
	if err != nil {
		return err
	}
	if _, err := c.storeChunkWithFallback(chunkID, gfsPath, chunkIndex, data, servers); err != nil {
		return fmt.Errorf("failed to store new chunk for append: %w", err)
	}
	return nil
}

// appendToChunk drives the two-phase append protocol across every replica
// of an existing chunk.
func (c *Client) appendToChunk(filePath, chunkID string, data []byte, offset int64) error {
	locations, err := c.chunkLocations(filePath, chunkID)
	if err != nil {
		return err
	}
	if len(locations) == 0 {
		return fmt.Errorf("no locations found for chunk %s", chunkID)
	}

	txID := strconv.FormatInt(time.Now().UnixMilli(), 10)
	txLog := logging.Transaction("client.append", chunkID, txID)
	txLog.Infow("starting transaction", "locations", locations)

	prepared := make([]string, 0, len(locations))
	for _, addr := range locations {
		if err := c.prepareAppend(addr, chunkID, data, offset, txID); err != nil {
			txLog.Warnw("prepare failed", "server", addr, "error", err)
			break
		}
		prepared = append(prepared, addr)
	}

	if len(prepared) != len(locations) {
		txLog.Warnw("not all replicas prepared, rolling back", "prepared", len(prepared), "total", len(locations))
		for _, addr := range prepared {
			c.rollbackAppend(addr, chunkID, txID)
		}
		return fmt.Errorf("two-phase append failed: only %d/%d replicas prepared", len(prepared), len(locations))
	}

	committed := make([]string, 0, len(locations))
	for _, addr := range prepared {
		if err := c.commitAppend(addr, chunkID, txID); err != nil {
			txLog.Errorw("commit failed", "server", addr, "error", err)
			break
		}
		committed = append(committed, addr)
	}

	if len(committed) != len(locations) {
		return fmt.Errorf("two-phase append failed during commit: only %d/%d replicas committed", len(committed), len(locations))
	}

	txLog.Infow("transaction committed")

	newOffset := offset + int64(len(data))
	conn, master, err := c.dialMaster()
	if err != nil {
		return fmt.Errorf("failed to connect to master: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := master.UpdateChunkOffset(ctx, &rpc.UpdateChunkOffsetRequest{FilePath: filePath, ChunkID: chunkID, Offset: newOffset}); err != nil {
		return fmt.Errorf("failed to update chunk offset: %w", err)
	}
	return nil
}

func (c *Client) prepareAppend(address, chunkID string, data []byte, offset int64, txID string) error {
	conn, cs, err := c.dialChunkServer(address)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := cs.PrepareAppend(ctx, &rpc.PrepareAppendRequest{ChunkID: chunkID, Data: data, Offset: offset, TxID: txID})
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("%s: %s", resp.Status, resp.Message)
	}
	return nil
}

func (c *Client) commitAppend(address, chunkID, txID string) error {
	conn, cs, err := c.dialChunkServer(address)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := cs.CommitAppend(ctx, &rpc.CommitAppendRequest{ChunkID: chunkID, TxID: txID})
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("%s: %s", resp.Status, resp.Message)
	}
	return nil
}

func (c *Client) rollbackAppend(address, chunkID, txID string) {
	conn, cs, err := c.dialChunkServer(address)
	if err != nil {
		clientLog.Warnw("failed to connect for rollback", "server", address, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := cs.RollbackAppend(ctx, &rpc.RollbackAppendRequest{ChunkID: chunkID, TxID: txID}); err != nil {
		clientLog.Warnw("rollback failed", "server", address, "error", err)
	}
}
