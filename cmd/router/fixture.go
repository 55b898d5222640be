package main

import (
	"github.com/nextzen/thor/pkg/datastructure"
	"go.uber.org/zap"
)

// buildDemoGraph constructs a small in-memory graph so the server has
// something to route over without a real tile store wired in. It is a
// four-node loop, each node with one forward edge (to the next node
// around the loop) and one backward edge (to the previous node), paired
// as proper opposing edges - the smallest shape that exercises both the
// forward-A*-eligible oneway leg and the bidirectional-eligible leg.
func buildDemoGraph(log *zap.Logger) *datastructure.MemGraphReader {
	reader := datastructure.NewMemGraphReader(log, 64)

	const tileId datastructure.Index = 0
	const level uint8 = 0
	const n = 4

	gid := func(i int) datastructure.GraphId {
		return datastructure.NewGraphId(tileId, level, datastructure.Index(i))
	}
	next := func(i int) int { return (i + 1) % n }
	prev := func(i int) int { return (i - 1 + n) % n }

	nodes := []*datastructure.NodeInfo{
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.000, 0.000), 0, 2, 1.0),
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.000, 0.001), 2, 2, 1.0),
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.001, 0.001), 4, 2, 1.0),
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.001, 0.000), 6, 2, 1.0),
	}

	// Node i's outgoing range is [2i, 2i+2): local index 0 is the
	// forward edge (i -> next(i)), local index 1 is the backward edge
	// (i -> prev(i)). The opposing of a forward edge out of i is the
	// backward edge out of next(i) (local index 1 there); the opposing
	// of a backward edge out of i is the forward edge out of prev(i)
	// (local index 0 there).
	edges := make([]*datastructure.DirectedEdge, 2*n)
	for i := 0; i < n; i++ {
		edges[2*i] = datastructure.NewDirectedEdge(
			gid(2*i), gid(next(i)), 111.0, datastructure.UseRoad,
			datastructure.EdgeFlags{}, 1,
		)
		edges[2*i+1] = datastructure.NewDirectedEdge(
			gid(2*i+1), gid(prev(i)), 111.0, datastructure.UseRoad,
			datastructure.EdgeFlags{}, 0,
		)
	}

	density := make([]float64, len(edges))
	for i := range density {
		density[i] = 1.0
	}

	tile := datastructure.NewGraphTile(tileId, level, edges, nodes, density)
	reader.AddTile(tile, tileId, level)
	return reader
}
