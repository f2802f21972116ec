package chunkserver

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net"
	"os"
	"path/filepath"
	"time"
)

// identityRecord is one server's entry in the shared server_info.json
// document, keyed by server ID.
type identityRecord struct {
	Port      int       `json:"port"`
	DataDir   string    `json:"data_dir"`
	LastStart time.Time `json:"last_start"`
}

// Identity is a chunk server's resolved identity: a stable server ID, the
// port recorded the first time that ID ran, and the directory its chunks
// live under. Persisting this beside the data keeps the Master's existing
// chunk-location records valid across restarts: a server restarted with
// the same ID rebinds the same port instead of re-registering as a brand
// new node.
type Identity struct {
	ServerID  string
	Port      int
	DataDir   string
	LastStart time.Time
}

const identityFileName = "server_info.json"

// LoadOrCreateIdentity resolves serverID against the server_info.json
// document in dataDir. A known server keeps its stored port and the port
// argument is ignored. A new server records the given port, or a free
// ephemeral one when port is zero; an empty serverID gets a random one.
func LoadOrCreateIdentity(dataDir, serverID string, port int) (*Identity, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, identityFileName)
	records := make(map[string]identityRecord)
	data, err := os.ReadFile(path)
	if err == nil {
		if jsonErr := json.Unmarshal(data, &records); jsonErr != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, jsonErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if rec, ok := records[serverID]; serverID != "" && ok {
		rec.LastStart = time.Now()
		records[serverID] = rec
		if err := saveIdentityRecords(path, records); err != nil {
			return nil, err
		}
		return &Identity{ServerID: serverID, Port: rec.Port, DataDir: rec.DataDir, LastStart: rec.LastStart}, nil
	}

	if serverID == "" {
		serverID = fmt.Sprintf("cs-%08x", rand.Uint32())
	}
	if port <= 0 {
		port, err = findFreePort()
		if err != nil {
			return nil, fmt.Errorf("failed to pick a free port: %w", err)
		}
	}

	rec := identityRecord{
		Port:      port,
		DataDir:   filepath.Join(dataDir, serverID),
		LastStart: time.Now(),
	}
	records[serverID] = rec
	if err := saveIdentityRecords(path, records); err != nil {
		return nil, err
	}
	return &Identity{ServerID: serverID, Port: rec.Port, DataDir: rec.DataDir, LastStart: rec.LastStart}, nil
}

func saveIdentityRecords(path string, records map[string]identityRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identity records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// findFreePort asks the kernel for an unused TCP port.
func findFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
