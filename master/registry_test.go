package master

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeatUnknownServerFails(t *testing.T) {
	r := NewRegistry(NewLocationGraph(), time.Second)
	ok := r.Heartbeat("ghost:1", 0, 0, 0, 0, false)
	assert.False(t, ok)
}

func TestHeartbeatRefreshesSpaceInfo(t *testing.T) {
	g := NewLocationGraph()
	r := NewRegistry(g, time.Second)
	r.RegisterChunkServer("A:1", 0, 0)

	ok := r.Heartbeat("A:1", 0, 0, 100, 40, true)
	require.True(t, ok)

	near := g.NearestChunkServers("", 1, nil)
	require.Len(t, near, 1)
	assert.Equal(t, "A:1", near[0])
}

func TestClientHeartbeatUnknownClientFails(t *testing.T) {
	r := NewRegistry(NewLocationGraph(), time.Second)
	assert.False(t, r.ClientHeartbeat("ghost-client"))
}

func TestLivenessLoopEvictsStaleChunkServer(t *testing.T) {
	g := NewLocationGraph()
	r := NewRegistry(g, 10*time.Millisecond)
	r.RegisterChunkServer("A:1", 0, 0)

	stop := make(chan struct{})
	go r.RunLivenessLoop(stop)
	defer close(stop)

	assert.Eventually(t, func() bool {
		return !g.Has("A:1")
	}, time.Second, 5*time.Millisecond, "stale chunk server must be evicted and removed from the graph")
}

func TestLivenessLoopInvokesEvictionHandler(t *testing.T) {
	g := NewLocationGraph()
	r := NewRegistry(g, 10*time.Millisecond)

	evicted := make(chan string, 1)
	r.OnChunkServerEvict(func(addr string) { evicted <- addr })
	r.RegisterChunkServer("A:1", 0, 0)

	stop := make(chan struct{})
	go r.RunLivenessLoop(stop)
	defer close(stop)

	select {
	case addr := <-evicted:
		assert.Equal(t, "A:1", addr)
	case <-time.After(time.Second):
		t.Fatal("eviction handler was never invoked")
	}
}

func TestRegisterChunkServerAddsToGraph(t *testing.T) {
	g := NewLocationGraph()
	r := NewRegistry(g, time.Second)
	r.RegisterChunkServer("A:1", 3, 4)
	assert.True(t, g.Has("A:1"))
	assert.Contains(t, r.ChunkServers(), "A:1")
}
