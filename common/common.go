// Package common holds the small set of types and constants shared by the
// Master, Chunk Server, and Client: chunk sizing math and the Chunk record
// itself.
package common

import (
	"github.com/google/uuid"
)

const (
	// DefaultChunkSize is the fallback chunk size (1 MiB) used when no
	// configuration overrides it.
	DefaultChunkSize int64 = 1 << 20

	// DefaultReplicationFactor is the fallback number of copies per chunk.
	DefaultReplicationFactor = 3

	// DefaultMasterAddress is used by cmd/client and cmd/chunkserver when no
	// -master flag is given.
	DefaultMasterAddress = "localhost:8000"
)

// Chunk is an immutable-by-identity unit of storage. ChunkID is
// an opaque handle generated at creation time, not a recomputed content
// hash: appends mutate the bytes on disk in place, so a content hash would
// go stale the moment the first append lands.
type Chunk struct {
	ChunkID    string
	FilePath   string
	ChunkIndex int
	Size       int64
	Locations  []string
}

// NewChunkID generates a fresh opaque chunk handle.
func NewChunkID() string {
	return uuid.NewString()
}

// NumChunks returns how many fixed-size chunks a file of the given size
// splits into (at least one, even for an empty file).
func NumChunks(fileSize, chunkSize int64) int {
	if chunkSize <= 0 {
		return 0
	}
	n := fileSize / chunkSize
	if fileSize%chunkSize != 0 || n == 0 {
		n++
	}
	return int(n)
}

// LastChunkOffset returns the byte offset within the final chunk that a
// file of the given total size fills up to/(d)).
func LastChunkOffset(fileSize, chunkSize int64) int64 {
	if chunkSize <= 0 {
		return fileSize
	}
	if fileSize == 0 {
		return 0
	}
	off := fileSize % chunkSize
	if off == 0 {
		return chunkSize
	}
	return off
}
