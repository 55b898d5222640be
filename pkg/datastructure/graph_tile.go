package datastructure

import "sort"

// GraphTile is tile-addressable storage for one (tileId, level) pair: it
// owns a contiguous slice of directed edges and a contiguous slice of
// nodes, both indexed by the Index component of a GraphId.
type GraphTile struct {
	tileId Index
	level  uint8

	edges []*DirectedEdge
	nodes []*NodeInfo

	// edgeDensityFallback is the per-tile density estimate used only
	// when no node context is available.
	edgeDensityFallback []float64
}

func NewGraphTile(tileId Index, level uint8, edges []*DirectedEdge, nodes []*NodeInfo, edgeDensityFallback []float64) *GraphTile {
	return &GraphTile{
		tileId:              tileId,
		level:               level,
		edges:               edges,
		nodes:               nodes,
		edgeDensityFallback: edgeDensityFallback,
	}
}

// AllEdges returns every directed edge owned by the tile, used by
// process wiring to build a spatial index over the whole graph.
func (t *GraphTile) AllEdges() []*DirectedEdge {
	return t.edges
}

func (t *GraphTile) DirectedEdge(id GraphId) *DirectedEdge {
	if id.TileId() != t.tileId || id.Level() != t.level || int(id.Index()) >= len(t.edges) {
		return nil
	}
	return t.edges[id.Index()]
}

func (t *GraphTile) Node(id GraphId) *NodeInfo {
	if id.TileId() != t.tileId || id.Level() != t.level || int(id.Index()) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id.Index()]
}

// EdgesOf returns a node's outgoing edges: the contiguous range of
// EdgeCount edges starting at its EdgeIndex.
func (t *GraphTile) EdgesOf(node *NodeInfo) []*DirectedEdge {
	start := int(node.EdgeIndex())
	end := start + int(node.EdgeCount())
	if start < 0 || end > len(t.edges) || start > end {
		return nil
	}
	return t.edges[start:end]
}

// OpposingEdgeId resolves the opposing edge of e, given the NodeInfo of
// e's end node (which the caller fetched via GraphReader, since the end
// node may live in a different tile): the opposing edge is the
// e.OpposingLocalIdx()-th outgoing edge of the end node.
func OpposingEdgeId(e *DirectedEdge, endNode *NodeInfo) GraphId {
	return NewGraphId(e.EndNode().TileId(), e.EndNode().Level(), endNode.EdgeIndex()+Index(e.OpposingLocalIdx()))
}

// EdgeDensity is the tile-level density fallback for an edge, used only
// when no predecessor node context exists.
func (t *GraphTile) EdgeDensity(id GraphId) float64 {
	if int(id.Index()) >= len(t.edgeDensityFallback) {
		return 0
	}
	return t.edgeDensityFallback[id.Index()]
}

// BeginNode resolves the node that owns edge id, i.e. the node whose
// contiguous edge range (EdgesOf) contains it. Node edge ranges are laid
// out in increasing order during tile construction, so this is a binary
// search over range start offsets rather than a linear scan.
func (t *GraphTile) BeginNode(id GraphId) *NodeInfo {
	if id.TileId() != t.tileId || id.Level() != t.level {
		return nil
	}
	target := int(id.Index())
	i := sort.Search(len(t.nodes), func(i int) bool {
		return int(t.nodes[i].EdgeIndex())+int(t.nodes[i].EdgeCount()) > target
	})
	if i >= len(t.nodes) {
		return nil
	}
	n := t.nodes[i]
	if target < int(n.EdgeIndex()) || target >= int(n.EdgeIndex())+int(n.EdgeCount()) {
		return nil
	}
	return n
}
