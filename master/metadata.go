package master

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harshvardha/distributed_file_system/logging"
)

var metadataLog = logging.Get("master.metadata")

// FileMetadata is the Master's record for one file. The Master's copy is
// authoritative; chunk servers and clients only ever hold a
// lazily-refreshed view of it.
type FileMetadata struct {
	FilePath        string              `json:"file_path"`
	TotalSize       int64               `json:"total_size"`
	ChunkIDs        []string            `json:"chunk_ids"`
	ChunkLocations  map[string][]string `json:"chunk_locations"`
	ChunkOffsets    map[string]int64    `json:"chunk_offsets"`
	LastChunkID     string              `json:"last_chunk_id"`
	LastChunkOffset int64               `json:"last_chunk_offset"`
	// PendingReplication counts, per chunk ID, how many additional replicas
	// the background repair loop still needs to place.
	PendingReplication map[string]int32 `json:"pending_replication"`
}

// Metadata is the Master's namespace store: one FileMetadata per file path,
// persisted to a single JSON document so a restarted Master can rebuild its
// authoritative view without replaying chunk server reports.
type Metadata struct {
	mu       sync.RWMutex
	files    map[string]*FileMetadata
	savePath string
}

// NewMetadata creates an empty metadata store. If savePath is non-empty, an
// existing document there is loaded and every subsequent mutation persists
// back to it.
func NewMetadata(savePath string) (*Metadata, error) {
	m := &Metadata{
		files:    make(map[string]*FileMetadata),
		savePath: savePath,
	}
	if savePath == "" {
		return m, nil
	}
	data, err := os.ReadFile(savePath)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m.files); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file: %w", err)
	}
	return m, nil
}

// save persists the current namespace to disk. Caller must hold mu.
func (m *Metadata) save() {
	if m.savePath == "" {
		return
	}
	data, err := json.MarshalIndent(m.files, "", "  ")
	if err != nil {
		metadataLog.Errorw("failed to marshal metadata", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(m.savePath), 0755); err != nil {
		metadataLog.Errorw("failed to create metadata directory", "error", err)
		return
	}
	if err := os.WriteFile(m.savePath, data, 0644); err != nil {
		metadataLog.Errorw("failed to write metadata file", "error", err)
	}
}

// AddFile creates a new file record with its initial chunk list. Returns an
// error if the file already exists.
func (m *Metadata) AddFile(filePath string, chunkIDs []string, totalSize int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[filePath]; exists {
		return fmt.Errorf("file already exists: %s", filePath)
	}

	last := ""
	if len(chunkIDs) > 0 {
		last = chunkIDs[len(chunkIDs)-1]
	}

	m.files[filePath] = &FileMetadata{
		FilePath:           filePath,
		TotalSize:          totalSize,
		ChunkIDs:           append([]string(nil), chunkIDs...),
		ChunkLocations:     make(map[string][]string),
		ChunkOffsets:       make(map[string]int64),
		LastChunkID:        last,
		PendingReplication: make(map[string]int32),
	}
	m.save()
	return nil
}

// UpdateFileMetadata appends or updates one chunk's placement record within
// a file, advancing LastChunkID/LastChunkOffset and incrementing TotalSize.
func (m *Metadata) UpdateFileMetadata(filePath, chunkID string, chunkIndex int32, locations []string, chunkSize int64, pendingReplication bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, exists := m.files[filePath]
	if !exists {
		return fmt.Errorf("file not found: %s", filePath)
	}

	isNew := true
	for _, id := range file.ChunkIDs {
		if id == chunkID {
			isNew = false
			break
		}
	}
	if isNew {
		file.ChunkIDs = append(file.ChunkIDs, chunkID)
	}

	file.ChunkLocations[chunkID] = append([]string(nil), locations...)
	file.ChunkOffsets[chunkID] = chunkSize
	file.LastChunkID = chunkID
	file.LastChunkOffset = chunkSize
	file.TotalSize += chunkSize

	if pendingReplication {
		// The needed-replica count is filled in by SetPendingReplication once
		// the caller knows the replication factor.
		file.PendingReplication[chunkID] = 0
	} else {
		delete(file.PendingReplication, chunkID)
	}

	m.save()
	return nil
}

// SetPendingReplication records how many more replicas a chunk still needs.
// A count of zero clears the pending entry.
func (m *Metadata) SetPendingReplication(filePath, chunkID string, needed int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, exists := m.files[filePath]
	if !exists {
		return
	}
	if needed <= 0 {
		delete(file.PendingReplication, chunkID)
	} else {
		file.PendingReplication[chunkID] = needed
	}
	m.save()
}

// UpdateChunkLocations overwrites the replica set recorded for a chunk,
// used after the background repair loop places new replicas.
func (m *Metadata) UpdateChunkLocations(filePath, chunkID string, locations []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, exists := m.files[filePath]
	if !exists {
		return fmt.Errorf("file not found: %s", filePath)
	}
	file.ChunkLocations[chunkID] = append([]string(nil), locations...)
	m.save()
	return nil
}

// UpdateChunkOffset records a chunk's new fill offset after a successful
// append.
func (m *Metadata) UpdateChunkOffset(filePath, chunkID string, offset int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, exists := m.files[filePath]
	if !exists {
		return fmt.Errorf("file not found: %s", filePath)
	}
	prev, had := file.ChunkOffsets[chunkID]
	file.ChunkOffsets[chunkID] = offset
	if chunkID == file.LastChunkID {
		file.LastChunkOffset = offset
	}
	if had {
		file.TotalSize += offset - prev
	} else {
		file.TotalSize += offset
	}
	m.save()
	return nil
}

// EvictServer removes address from every chunk's recorded location set and
// marks any chunk that dropped below replicationFactor as pending repair.
// Invoked by the Master when the liveness sweep evicts a chunk server, so
// that location records never reference a server that is no longer
// registered.
func (m *Metadata) EvictServer(address string, replicationFactor int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := false
	for _, file := range m.files {
		for chunkID, locs := range file.ChunkLocations {
			remaining := make([]string, 0, len(locs))
			for _, addr := range locs {
				if addr != address {
					remaining = append(remaining, addr)
				}
			}
			if len(remaining) == len(locs) {
				continue
			}
			file.ChunkLocations[chunkID] = remaining
			if needed := replicationFactor - len(remaining); needed > 0 {
				file.PendingReplication[chunkID] = int32(needed)
			}
			changed = true
			metadataLog.Infow("chunk lost a replica", "file_path", file.FilePath, "chunk_id", chunkID, "replicas", len(remaining))
		}
	}
	if changed {
		m.save()
	}
}

// GetChunkLocations returns the current replica set for one chunk.
func (m *Metadata) GetChunkLocations(filePath, chunkID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	file, exists := m.files[filePath]
	if !exists {
		return nil, fmt.Errorf("file not found: %s", filePath)
	}
	locs, ok := file.ChunkLocations[chunkID]
	if !ok {
		return nil, fmt.Errorf("chunk not found: %s", chunkID)
	}
	return append([]string(nil), locs...), nil
}

// GetFile returns a defensive copy of one file's metadata.
func (m *Metadata) GetFile(filePath string) (*FileMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	file, exists := m.files[filePath]
	if !exists {
		return nil, false
	}
	return copyFileMetadata(file), true
}

// ListFiles returns every known file path.
func (m *Metadata) ListFiles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}
	return paths
}

// PendingFiles returns a copy of every file that currently has at least one
// under-replicated chunk, used by the background repair loop.
func (m *Metadata) PendingFiles() []*FileMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*FileMetadata, 0)
	for _, file := range m.files {
		if len(file.PendingReplication) > 0 {
			out = append(out, copyFileMetadata(file))
		}
	}
	return out
}

func copyFileMetadata(f *FileMetadata) *FileMetadata {
	cp := &FileMetadata{
		FilePath:           f.FilePath,
		TotalSize:          f.TotalSize,
		ChunkIDs:           append([]string(nil), f.ChunkIDs...),
		ChunkLocations:     make(map[string][]string, len(f.ChunkLocations)),
		ChunkOffsets:       make(map[string]int64, len(f.ChunkOffsets)),
		LastChunkID:        f.LastChunkID,
		LastChunkOffset:    f.LastChunkOffset,
		PendingReplication: make(map[string]int32, len(f.PendingReplication)),
	}
	for k, v := range f.ChunkLocations {
		cp.ChunkLocations[k] = append([]string(nil), v...)
	}
	for k, v := range f.ChunkOffsets {
		cp.ChunkOffsets[k] = v
	}
	for k, v := range f.PendingReplication {
		cp.PendingReplication[k] = v
	}
	return cp
}
