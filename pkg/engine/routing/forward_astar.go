package routing

import (
	"math"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
)

// ForwardAStar is a single-direction A* search: a min-heap keyed on
// cost-so-far plus heuristic, one settled-cost map, and a parent chain
// walked back once the target settles. The lower bound is plain
// haversine distance at free-flow speed; this graph carries no landmark
// table.
//
// The orchestrator picks this engine for the trivial case where origin
// and destination share a common candidate edge - the bidirectional
// engine cannot safely handle that without extra bookkeeping.
type ForwardAStar struct {
	settled map[datastructure.GraphId]vertexInfo
}

func NewForwardAStar() *ForwardAStar {
	return &ForwardAStar{settled: make(map[datastructure.GraphId]vertexInfo)}
}

func (fa *ForwardAStar) Clear() {
	fa.settled = make(map[datastructure.GraphId]vertexInfo)
}

func (fa *ForwardAStar) GetBestPath(
	origin, destination *datastructure.PathLocation,
	reader datastructure.GraphReader,
	modeCosting [4]costfunction.Model,
	mode datastructure.TravelMode,
) ([]datastructure.PathInfo, error) {
	model := modeCosting[mode]

	destEdges := destinationEdgeIds(destination)
	if len(destEdges) == 0 {
		return nil, nil
	}

	// Trivial case: origin and destination share a candidate edge. No
	// traversal is needed - this is exactly the case the orchestrator
	// selects this engine for. A destination behind the origin on that
	// edge yields a single zero-cost entry.
	if path := sameEdgeShortCircuit(origin, destEdges, reader, model, mode); path != nil {
		return path, nil
	}

	labels, err := originLabels(origin.Edges, reader, model)
	if err != nil {
		return nil, err
	}
	var destAnchor datastructure.Coordinate
	if destNode, err := firstDestinationNode(reader, destination); err == nil {
		destAnchor = destNode.LatLng()
	}

	pq := newMinHeap[datastructure.GraphId]()
	for node, lbl := range labels {
		pq.Insert(lbl.cost, node)
	}
	fa.settled = labels

	for !pq.IsEmpty() {
		top := pq.ExtractMin()
		u := top.item
		uInfo := fa.settled[u]

		outs, err := outgoingEdges(reader, u)
		if err != nil {
			continue
		}
		for _, edge := range outs {
			if pe, isDest := destEdges[edge.Id()]; isDest {
				density := reader.GetEdgeDensity(edge.Id())
				arriveCost := uInfo.cost + model.EdgeCost(edge, density).Scale(pe.Dist).Cost
				return reconstructForward(fa.settled, u, edge.Id(), arriveCost, reader, mode), nil
			}

			density := reader.GetEdgeDensity(edge.Id())
			predLabel := datastructure.NewEdgeLabel(uInfo.predEdge, edge, mode)
			endNode, err := reader.Node(edge.EndNode())
			if err != nil {
				continue
			}
			step := model.EdgeCost(edge, density).Cost + model.TransitionCost(edge, endNode, predLabel).Cost
			newCost := uInfo.cost + step

			v := edge.EndNode()
			vInfo, seen := fa.settled[v]
			if seen && vInfo.cost <= newCost {
				continue
			}
			fa.settled[v] = vertexInfo{cost: newCost, predEdge: edge.Id(), predNode: u, hasParent: true}
			h := heuristicSecs(endNode.LatLng(), destAnchor, optimisticFreeFlowMPS)
			pq.Insert(newCost+h, v)
		}
	}
	return nil, nil
}

// sameEdgeShortCircuit handles the case the loop below structurally
// cannot: origin and destination snapped to the same directed edge. The
// loop only ever inspects edges outgoing from a node reached so far, so
// it would never reconsider an origin's own edge as a destination.
func sameEdgeShortCircuit(
	origin *datastructure.PathLocation,
	destEdges map[datastructure.GraphId]datastructure.PathEdge,
	reader datastructure.GraphReader,
	model costfunction.Model,
	mode datastructure.TravelMode,
) []datastructure.PathInfo {
	for _, oe := range origin.Edges {
		de, ok := destEdges[oe.Id]
		if !ok {
			continue
		}
		frac := de.Dist - oe.Dist
		if frac < 0 {
			frac = 0
		}
		edge, err := reader.Edge(oe.Id)
		if err != nil {
			continue
		}
		density := reader.GetEdgeDensity(oe.Id)
		cost := model.EdgeCost(edge, density).Scale(frac).Cost
		return []datastructure.PathInfo{datastructure.NewPathInfo(mode, math.Round(cost), oe.Id, 0)}
	}
	return nil
}

func firstDestinationNode(reader datastructure.GraphReader, loc *datastructure.PathLocation) (*datastructure.NodeInfo, error) {
	if len(loc.Edges) == 0 {
		return nil, datastructure.ErrEdgeNotFound
	}
	edge, err := reader.Edge(loc.Edges[0].Id)
	if err != nil {
		return nil, err
	}
	return reader.Node(edge.EndNode())
}
