package chunkserver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages chunk storage on disk under one data directory, with
// space accounting derived from the actual bytes on disk rather than a
// separately-tracked counter.
type Storage struct {
	mu         sync.RWMutex
	dataDir    string
	spaceLimit int64
}

// NewStorage creates a new storage manager rooted at dataDir, creating it
// if necessary.
func NewStorage(dataDir string, spaceLimit int64) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Storage{dataDir: dataDir, spaceLimit: spaceLimit}, nil
}

func (s *Storage) chunkPath(chunkID string) string {
	return filepath.Join(s.dataDir, chunkID)
}

func (s *Storage) tempPath(chunkID, txID string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%s.%s.temp", chunkID, txID))
}

// usedBytes sums the size of every committed chunk file under the data
// directory. Temp files (still mid-transaction) are not counted as used.
func (s *Storage) usedBytes() (int64, error) {
	var total int64
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if entry.IsDir() || isTempName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func isTempName(name string) bool {
	return filepath.Ext(name) == ".temp"
}

// SpaceInfo returns (total, used, available) for this chunk server.
func (s *Storage) SpaceInfo() (total, used, available int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	used, err = s.usedBytes()
	if err != nil {
		return 0, 0, 0, err
	}
	available = s.spaceLimit - used
	if available < 0 {
		available = 0
	}
	return s.spaceLimit, used, available, nil
}

// CheckSpace reports whether size bytes can still be accepted.
func (s *Storage) CheckSpace(size int64) (bool, int64, error) {
	_, _, available, err := s.SpaceInfo()
	if err != nil {
		return false, 0, err
	}
	return size <= available, available, nil
}

// WriteChunk writes a brand-new chunk's full contents to disk.
func (s *Storage) WriteChunk(chunkID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.chunkPath(chunkID), data, 0644); err != nil {
		return fmt.Errorf("failed to write chunk to disk: %w", err)
	}
	return nil
}

// StageChunk writes a new chunk's contents to a per-transaction temp file
// without touching the final chunk path. A chain-store primary stages its
// own copy first, fans out to replicas, and only then promotes the staged
// file, so a crash mid-fan-out never leaves a half-written committed chunk.
func (s *Storage) StageChunk(chunkID, txID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.tempPath(chunkID, txID), data, 0644); err != nil {
		return fmt.Errorf("failed to stage chunk: %w", err)
	}
	return nil
}

// PromoteChunk atomically renames a staged chunk over its final path.
func (s *Storage) PromoteChunk(chunkID, txID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Rename(s.tempPath(chunkID, txID), s.chunkPath(chunkID)); err != nil {
		return fmt.Errorf("failed to promote staged chunk: %w", err)
	}
	return nil
}

// DiscardStaged removes a staged chunk that will not be promoted.
func (s *Storage) DiscardStaged(chunkID, txID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.tempPath(chunkID, txID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to discard staged chunk: %w", err)
	}
	return nil
}

// ReadChunk reads a chunk's full contents.
func (s *Storage) ReadChunk(chunkID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(s.chunkPath(chunkID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("chunk not found: %s", chunkID)
		}
		return nil, fmt.Errorf("failed to read chunk: %w", err)
	}
	return data, nil
}

// HasChunk reports whether a chunk file exists.
func (s *Storage) HasChunk(chunkID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := os.Stat(s.chunkPath(chunkID))
	return err == nil
}

// ListChunks returns every committed chunk ID on disk.
func (s *Storage) ListChunks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || isTempName(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	return out
}

// DeleteChunk removes a chunk file from disk.
func (s *Storage) DeleteChunk(chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.chunkPath(chunkID)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete chunk: %w", err)
	}
	return nil
}

// PrepareAppend stages appended bytes into a per-transaction temp file
// holding the chunk's would-be new contents (existing bytes plus the
// append), without touching the committed chunk file.
// It never applies past the chunk's recorded length: the caller
// supplies the offset the append starts at so concurrent prepares against a
// stale view are rejected instead of silently racing.
func (s *Storage) PrepareAppend(chunkID, txID string, appendData []byte, offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := os.ReadFile(s.chunkPath(chunkID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read existing chunk: %w", err)
	}
	if int64(len(existing)) != offset {
		return fmt.Errorf("stale append offset: chunk is at %d, append expects %d", len(existing), offset)
	}

	staged := append(append([]byte(nil), existing...), appendData...)
	if err := os.WriteFile(s.tempPath(chunkID, txID), staged, 0644); err != nil {
		return fmt.Errorf("failed to stage append: %w", err)
	}
	return nil
}

// CommitAppend atomically renames a prepared temp file over the committed
// chunk file — the single commit point of the two-phase append protocol.
func (s *Storage) CommitAppend(chunkID, txID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.tempPath(chunkID, txID)
	info, err := os.Stat(tmp)
	if err != nil {
		return 0, fmt.Errorf("no staged append for transaction %s: %w", txID, err)
	}
	if err := os.Rename(tmp, s.chunkPath(chunkID)); err != nil {
		return 0, fmt.Errorf("failed to commit append: %w", err)
	}
	return info.Size(), nil
}

// RollbackAppend discards a staged append without touching the committed
// chunk file.
func (s *Storage) RollbackAppend(chunkID, txID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.tempPath(chunkID, txID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to roll back append: %w", err)
	}
	return nil
}

// AppendChunkDirect performs a one-phase append: read-modify-write without
// a prepare/commit split. Kept for compatibility with direct single-server
// writes; the client uses the two-phase protocol for every chunk, whatever
// its replica count.
func (s *Storage) AppendChunkDirect(chunkID string, data []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := os.ReadFile(s.chunkPath(chunkID))
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to read existing chunk: %w", err)
	}
	combined := append(existing, data...)
	if err := os.WriteFile(s.chunkPath(chunkID), combined, 0644); err != nil {
		return 0, fmt.Errorf("failed to append chunk: %w", err)
	}
	return int64(len(combined)), nil
}

// ChunkSize returns the on-disk size of a committed chunk.
func (s *Storage) ChunkSize(chunkID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, err := os.Stat(s.chunkPath(chunkID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fs.ErrNotExist
		}
		return 0, err
	}
	return info.Size(), nil
}
