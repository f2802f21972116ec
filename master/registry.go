package master

import (
	"sync"
	"time"

	"github.com/harshvardha/distributed_file_system/logging"
)

var registryLog = logging.Get("master.registry")

// chunkServerEntry is the Master's bookkeeping record for one registered
// chunk server.
type chunkServerEntry struct {
	Address       string
	X, Y          float64
	SpaceTotal    int64
	SpaceUsed     int64
	LastHeartbeat time.Time
}

// clientEntry is the Master's bookkeeping record for one registered client.
type clientEntry struct {
	ClientID      string
	X, Y          float64
	LastHeartbeat time.Time
}

// Registry tracks live chunk servers and clients. Lock-order discipline:
// the chunk-server lock is always acquired before the client lock when
// both are needed.
type Registry struct {
	csMu sync.RWMutex
	cs   map[string]*chunkServerEntry

	clMu sync.RWMutex
	cl   map[string]*clientEntry

	graph *LocationGraph

	heartbeatInterval time.Duration
	clientTimeout     time.Duration

	// onChunkServerEvict, when set, is invoked (outside the registry locks)
	// for every chunk server removed by the liveness sweep, so the Master
	// can strip the dead server from its chunk-location records and queue
	// repair for anything that dropped below the replication factor.
	onChunkServerEvict func(address string)
}

// NewRegistry creates an empty registry backed by the given LocationGraph.
func NewRegistry(graph *LocationGraph, heartbeatInterval time.Duration) *Registry {
	return &Registry{
		cs:                make(map[string]*chunkServerEntry),
		cl:                make(map[string]*clientEntry),
		graph:             graph,
		heartbeatInterval: heartbeatInterval,
		clientTimeout:     60 * time.Second,
	}
}

// OnChunkServerEvict registers the handler called for every chunk server
// the liveness sweep removes.
func (r *Registry) OnChunkServerEvict(fn func(address string)) {
	r.onChunkServerEvict = fn
}

// RegisterChunkServer adds or refreshes a chunk server's position.
func (r *Registry) RegisterChunkServer(address string, x, y float64) {
	r.csMu.Lock()
	r.cs[address] = &chunkServerEntry{Address: address, X: x, Y: y, LastHeartbeat: time.Now()}
	r.csMu.Unlock()
	r.graph.AddChunkServer(address, x, y)
}

// Heartbeat refreshes liveness and, when present, the declared space triple
// for a chunk server.
func (r *Registry) Heartbeat(address string, x, y float64, total, used int64, hasSpace bool) bool {
	r.csMu.Lock()
	entry, ok := r.cs[address]
	if !ok {
		r.csMu.Unlock()
		return false
	}
	entry.X, entry.Y = x, y
	entry.LastHeartbeat = time.Now()
	if hasSpace {
		entry.SpaceTotal, entry.SpaceUsed = total, used
	}
	r.csMu.Unlock()

	r.graph.AddChunkServer(address, x, y)
	if hasSpace {
		r.graph.UpdateSpace(address, total, used)
	}
	return true
}

// RegisterClient adds or refreshes a client's position.
func (r *Registry) RegisterClient(clientID string, x, y float64) {
	r.clMu.Lock()
	r.cl[clientID] = &clientEntry{ClientID: clientID, X: x, Y: y, LastHeartbeat: time.Now()}
	r.clMu.Unlock()
	r.graph.AddClient(clientID, x, y)
}

// ClientHeartbeat refreshes a client's liveness timestamp.
func (r *Registry) ClientHeartbeat(clientID string) bool {
	r.clMu.Lock()
	defer r.clMu.Unlock()
	entry, ok := r.cl[clientID]
	if !ok {
		return false
	}
	entry.LastHeartbeat = time.Now()
	return true
}

// ChunkServers returns every currently registered chunk server address.
func (r *Registry) ChunkServers() []string {
	r.csMu.RLock()
	defer r.csMu.RUnlock()
	out := make([]string, 0, len(r.cs))
	for addr := range r.cs {
		out = append(out, addr)
	}
	return out
}

// HasChunkServer reports whether address is currently registered.
func (r *Registry) HasChunkServer(address string) bool {
	r.csMu.RLock()
	defer r.csMu.RUnlock()
	_, ok := r.cs[address]
	return ok
}

// RunLivenessLoop evicts chunk servers and clients whose heartbeats have
// lapsed. Chunk servers are evicted after 2x the configured heartbeat
// interval; clients use a fixed 60s timeout.
func (r *Registry) RunLivenessLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(r.heartbeatInterval)
	defer ticker.Stop()

	csTimeout := 2 * r.heartbeatInterval

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := time.Now()

			var evicted []string
			r.csMu.Lock()
			for addr, entry := range r.cs {
				if now.Sub(entry.LastHeartbeat) > csTimeout {
					delete(r.cs, addr)
					r.graph.RemoveNode(addr)
					evicted = append(evicted, addr)
					registryLog.Infow("evicted chunk server", "address", addr)
				}
			}
			r.csMu.Unlock()

			if r.onChunkServerEvict != nil {
				for _, addr := range evicted {
					r.onChunkServerEvict(addr)
				}
			}

			r.clMu.Lock()
			for id, entry := range r.cl {
				if now.Sub(entry.LastHeartbeat) > r.clientTimeout {
					delete(r.cl, id)
					r.graph.RemoveNode(id)
					registryLog.Infow("evicted client", "client_id", id)
				}
			}
			r.clMu.Unlock()
		}
	}
}
