package master

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestChunkServersOrdersByDistanceThenSpace(t *testing.T) {
	g := NewLocationGraph()
	g.AddClient("c1", 0, 0)
	g.AddChunkServer("A", 1, 0)
	g.AddChunkServer("B", 100, 99)
	g.AddChunkServer("D", 100, 100)
	g.UpdateSpace("A", 100, 50)
	g.UpdateSpace("B", 100, 10) // more available than D, but both are far from c1
	g.UpdateSpace("D", 100, 20)

	near := g.NearestChunkServers("c1", 3, nil)
	require.Len(t, near, 3)
	assert.Equal(t, "A", near[0], "A is closest to c1")
}

func TestNearestChunkServersTieBreaksBySpace(t *testing.T) {
	g := NewLocationGraph()
	g.AddClient("c2", 100, 100)
	g.AddChunkServer("A", 1, 0)
	g.AddChunkServer("B", 100, 99)
	g.AddChunkServer("D", 100, 100)
	g.AddChunkServer("E", 100, 101)
	g.UpdateSpace("B", 100, 10) // available = 90, distance 1 from c2
	g.UpdateSpace("D", 100, 0)  // available = 100, but D is at distance 0 so it always wins first
	g.UpdateSpace("E", 100, 50) // available = 50, distance 1 from c2: ties with B

	near := g.NearestChunkServers("c2", 3, nil)
	require.Len(t, near, 3)
	assert.Equal(t, "D", near[0], "D sits exactly on c2")
	assert.Equal(t, "B", near[1], "B ties E on distance and wins on available space")
	assert.Equal(t, "E", near[2])
}

func TestNearestChunkServersExcludesGivenSet(t *testing.T) {
	g := NewLocationGraph()
	g.AddChunkServer("A", 0, 0)
	g.AddChunkServer("B", 1, 0)
	g.UpdateSpace("A", 10, 0)
	g.UpdateSpace("B", 10, 0)

	near := g.NearestChunkServers("", 2, map[string]bool{"A": true})
	assert.Equal(t, []string{"B"}, near)
}

func TestNearestChunkServersSkipsFullServers(t *testing.T) {
	g := NewLocationGraph()
	g.AddChunkServer("full", 0, 0)
	g.AddChunkServer("hasSpace", 1, 0)
	g.UpdateSpace("full", 10, 10)
	g.UpdateSpace("hasSpace", 10, 0)

	near := g.NearestChunkServers("", 2, nil)
	assert.Equal(t, []string{"hasSpace"}, near)
}

func TestNearestChunkServersKeepsServersWithUnknownSpace(t *testing.T) {
	g := NewLocationGraph()
	g.AddChunkServer("fresh", 0, 0) // registered, no heartbeat with space yet

	near := g.NearestChunkServers("", 1, nil)
	assert.Equal(t, []string{"fresh"}, near, "a server that has not declared space yet is still a candidate")
}

func TestNearestChunkServersUnlimitedWhenNIsZero(t *testing.T) {
	g := NewLocationGraph()
	for _, id := range []string{"A", "B", "C", "D"} {
		g.AddChunkServer(id, 0, 0)
		g.UpdateSpace(id, 10, 0)
	}

	near := g.NearestChunkServers("", 0, nil)
	assert.Len(t, near, 4)
}

func TestRemoveNodeDropsFromEveryDistanceRow(t *testing.T) {
	g := NewLocationGraph()
	g.AddChunkServer("A", 0, 0)
	g.AddChunkServer("B", 1, 0)
	g.RemoveNode("A")

	assert.False(t, g.Has("A"))
	snap := g.Snapshot()
	for _, e := range snap.Edges {
		assert.NotEqual(t, "A", e.Source)
		assert.NotEqual(t, "A", e.Target)
	}
}

func TestSnapshotPriorityTablePerClient(t *testing.T) {
	g := NewLocationGraph()
	g.AddClient("c1", 0, 0)
	g.AddChunkServer("A", 1, 0)
	g.UpdateSpace("A", 10, 0)

	snap := g.Snapshot()
	require.Contains(t, snap.Priorities, "c1")
	require.Len(t, snap.Priorities["c1"], 1)
	assert.Equal(t, "A", snap.Priorities["c1"][0].ServerID)
}
