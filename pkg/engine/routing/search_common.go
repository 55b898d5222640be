package routing

import (
	"math"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/geo"
	"github.com/nextzen/thor/pkg/util"
)

// vertexInfo is the best known cost to reach a node plus the
// (predecessor-node, predecessor-edge) pair needed to walk the parent
// chain back to the origin once the target settles.
type vertexInfo struct {
	cost      float64
	predEdge  datastructure.GraphId
	predNode  datastructure.GraphId
	hasParent bool
}

// outgoingEdges returns the edges leaving node, owned by the tile that
// contains it.
func outgoingEdges(reader datastructure.GraphReader, nodeId datastructure.GraphId) ([]*datastructure.DirectedEdge, error) {
	tile, err := reader.GetGraphTile(nodeId)
	if err != nil {
		return nil, err
	}
	node, err := reader.Node(nodeId)
	if err != nil {
		return nil, err
	}
	return tile.EdgesOf(node), nil
}

// predecessorEdge pairs a node reachable backward from some node N with
// the edge that carries forward travel from it into N.
type predecessorEdge struct {
	fromNode datastructure.GraphId
	edge     *datastructure.DirectedEdge // fromNode -> N, in forward travel direction
}

// incomingEdges returns, for every edge outgoing from node, the node on
// its far end and the opposing edge that travels from that node back
// into this one. The graph only indexes edges by their begin node, so
// the edge incoming to node from X is the opposing edge of the outgoing
// edge node->X - standard for a graph built with a paired opposing edge
// per direction. A backward search walks these to discover predecessors
// without needing a reverse adjacency index.
func incomingEdges(reader datastructure.GraphReader, nodeId datastructure.GraphId) ([]predecessorEdge, error) {
	out, err := outgoingEdges(reader, nodeId)
	if err != nil {
		return nil, err
	}
	in := make([]predecessorEdge, 0, len(out))
	for _, e := range out {
		opp, err := reader.GetOpposingEdge(e)
		if err != nil {
			continue
		}
		in = append(in, predecessorEdge{fromNode: e.EndNode(), edge: opp})
	}
	return in, nil
}

// heuristicSecs is the A* lower-bound estimate from a to b: great-
// circle distance at an optimistic free-flow speed. A geometric bound,
// not a landmark one - this graph carries no landmark table.
func heuristicSecs(a, b datastructure.Coordinate, optimisticSpeedMPS float64) float64 {
	if optimisticSpeedMPS <= 0 {
		return 0
	}
	kmDist := geo.CalculateHaversineDistance(a.GetLat(), a.GetLon(), b.GetLat(), b.GetLon())
	return kmDist * 1000.0 / optimisticSpeedMPS
}

const optimisticFreeFlowMPS = 40.0 // ~144 km/h, an upper bound across modes for the A* heuristic

// originLabels seeds the search frontier from a location's candidate
// edges. Each candidate edge contributes the remaining cost from the
// snap point to the edge's end node, so the search starts from every
// plausible snap rather than a single node.
func originLabels(edges []datastructure.PathEdge, reader datastructure.GraphReader, model costfunction.Model) (map[datastructure.GraphId]vertexInfo, error) {
	labels := make(map[datastructure.GraphId]vertexInfo)
	for _, pe := range edges {
		edge, err := reader.Edge(pe.Id)
		if err != nil {
			continue
		}
		density := reader.GetEdgeDensity(pe.Id)
		remainingFrac := 1.0 - pe.Dist
		if remainingFrac < 0 {
			remainingFrac = 0
		}
		cost := model.EdgeCost(edge, density).Scale(remainingFrac)
		endNode := edge.EndNode()
		existing, ok := labels[endNode]
		if !ok || cost.Cost < existing.cost {
			// predNode is deliberately left invalid: an origin label's
			// predecessor is the candidate edge itself, not a prior node,
			// so the parent-chain walk in reconstructForward/
			// stitchBidirectional must stop here rather than follow the
			// zero-value GraphId, which can collide with a real node id
			// (tile 0, index 0) and reconstruct the wrong path.
			labels[endNode] = vertexInfo{cost: cost.Cost, predEdge: pe.Id, predNode: datastructure.InvalidGraphId, hasParent: true}
		}
	}
	return labels, nil
}

// destinationEdgeIds collects the candidate edge ids a search is allowed
// to terminate on.
func destinationEdgeIds(loc *datastructure.PathLocation) map[datastructure.GraphId]datastructure.PathEdge {
	out := make(map[datastructure.GraphId]datastructure.PathEdge, len(loc.Edges))
	for _, pe := range loc.Edges {
		out[pe.Id] = pe
	}
	return out
}

// reconstructForward walks a forward parent chain (node -> predecessor
// edge/node) from target back to an origin candidate edge, emitting
// PathInfo in travel order. finalCost is the total elapsed seconds of the
// whole path (as settled by the search), used to scale each edge's share
// of elapsed time proportionally to its length so CumulativeElapsed stays
// non-decreasing and lands exactly on finalCost at the last edge.
func reconstructForward(
	info map[datastructure.GraphId]vertexInfo,
	targetNode datastructure.GraphId,
	finalEdge datastructure.GraphId,
	finalCost float64,
	reader datastructure.GraphReader,
	mode datastructure.TravelMode,
) []datastructure.PathInfo {
	var edgeIds []datastructure.GraphId
	edgeIds = append(edgeIds, finalEdge)
	cur := targetNode
	for {
		lbl, ok := info[cur]
		if !ok || !lbl.hasParent {
			break
		}
		edgeIds = append(edgeIds, lbl.predEdge)
		if lbl.predNode.IsValid() {
			cur = lbl.predNode
		} else {
			break
		}
	}
	edgeIds = util.ReverseG(edgeIds)

	lengths := make([]float64, 0, len(edgeIds))
	var totalLen float64
	for _, id := range edgeIds {
		edge, err := reader.Edge(id)
		if err != nil || edge == nil {
			lengths = append(lengths, 0)
			continue
		}
		lengths = append(lengths, edge.Length())
		totalLen += edge.Length()
	}

	out := make([]datastructure.PathInfo, 0, len(edgeIds))
	var runningLen float64
	for i, id := range edgeIds {
		if i > 0 && edgeIds[i-1].Equal(id) {
			continue
		}
		runningLen += lengths[i]
		elapsed := finalCost
		if totalLen > 0 {
			elapsed = finalCost * (runningLen / totalLen)
		}
		out = append(out, datastructure.NewPathInfo(mode, math.Round(elapsed), id, 0))
	}
	return out
}
