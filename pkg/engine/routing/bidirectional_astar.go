package routing

import (
	"math"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/util"
)

// BidirectionalAStar alternates a forward search from the origin with a
// backward search from the destination, recording a meeting node each
// time a node popped from one side's queue is already labeled by the
// other, and
// stopping once neither frontier's cheapest entry is below the best
// meeting cost. The graph carries no overlay levels, so this is the
// plain bidirectional Dijkstra/A* case.
//
// The orchestrator never hands this engine an origin/destination pair
// that shares a candidate edge - that case routes to ForwardAStar, since
// a naive bidirectional search can settle the shared edge on both sides
// simultaneously and double-count it.
type BidirectionalAStar struct {
	fwd map[datastructure.GraphId]vertexInfo
	bwd map[datastructure.GraphId]vertexInfo
}

func NewBidirectionalAStar() *BidirectionalAStar {
	return &BidirectionalAStar{
		fwd: make(map[datastructure.GraphId]vertexInfo),
		bwd: make(map[datastructure.GraphId]vertexInfo),
	}
}

func (ba *BidirectionalAStar) Clear() {
	ba.fwd = make(map[datastructure.GraphId]vertexInfo)
	ba.bwd = make(map[datastructure.GraphId]vertexInfo)
}

func (ba *BidirectionalAStar) GetBestPath(
	origin, destination *datastructure.PathLocation,
	reader datastructure.GraphReader,
	modeCosting [4]costfunction.Model,
	mode datastructure.TravelMode,
) ([]datastructure.PathInfo, error) {
	model := modeCosting[mode]

	fwdLabels, err := originLabels(origin.Edges, reader, model)
	if err != nil {
		return nil, err
	}
	bwdLabels, err := originLabels(destination.Edges, reader, model)
	if err != nil {
		return nil, err
	}
	ba.fwd, ba.bwd = fwdLabels, bwdLabels

	fwdPQ := newMinHeap[datastructure.GraphId]()
	for node, lbl := range fwdLabels {
		fwdPQ.Insert(lbl.cost, node)
	}
	bwdPQ := newMinHeap[datastructure.GraphId]()
	for node, lbl := range bwdLabels {
		bwdPQ.Insert(lbl.cost, node)
	}

	bestMeet := datastructure.InvalidGraphId
	bestCost := -1.0

	for !fwdPQ.IsEmpty() || !bwdPQ.IsEmpty() {
		if !fwdPQ.IsEmpty() {
			if meet, cost := ba.stepForward(fwdPQ, reader, model, mode); meet.IsValid() && (bestCost < 0 || cost < bestCost) {
				bestMeet, bestCost = meet, cost
			}
		}
		if !bwdPQ.IsEmpty() {
			if meet, cost := ba.stepBackward(bwdPQ, reader, model, mode); meet.IsValid() && (bestCost < 0 || cost < bestCost) {
				bestMeet, bestCost = meet, cost
			}
		}
		if bestMeet.IsValid() {
			// Both frontiers have advanced past the cheapest known
			// meeting point - safe to stop.
			fMin, fOk := peekMin(fwdPQ)
			bMin, bOk := peekMin(bwdPQ)
			if (!fOk || fMin >= bestCost) && (!bOk || bMin >= bestCost) {
				break
			}
		}
	}

	if !bestMeet.IsValid() {
		return nil, nil
	}
	return stitchBidirectional(ba.fwd, ba.bwd, bestMeet, bestCost, reader, mode), nil
}

func peekMin(pq *minHeap[datastructure.GraphId]) (float64, bool) {
	if pq.IsEmpty() {
		return 0, false
	}
	return pq.nodes[0].key, true
}

func (ba *BidirectionalAStar) stepForward(
	pq *minHeap[datastructure.GraphId],
	reader datastructure.GraphReader,
	model costfunction.Model,
	mode datastructure.TravelMode,
) (datastructure.GraphId, float64) {
	top := pq.ExtractMin()
	u := top.item
	uInfo := ba.fwd[u]

	outs, err := outgoingEdges(reader, u)
	if err != nil {
		return datastructure.InvalidGraphId, 0
	}
	for _, edge := range outs {
		density := reader.GetEdgeDensity(edge.Id())
		predLabel := datastructure.NewEdgeLabel(uInfo.predEdge, edge, mode)
		endNode, err := reader.Node(edge.EndNode())
		if err != nil {
			continue
		}
		step := model.EdgeCost(edge, density).Cost + model.TransitionCost(edge, endNode, predLabel).Cost
		newCost := uInfo.cost + step

		v := edge.EndNode()
		vInfo, seen := ba.fwd[v]
		if seen && vInfo.cost <= newCost {
			continue
		}
		ba.fwd[v] = vertexInfo{cost: newCost, predEdge: edge.Id(), predNode: u, hasParent: true}
		pq.Insert(newCost, v)
	}

	if bInfo, ok := ba.bwd[u]; ok {
		return u, uInfo.cost + bInfo.cost
	}
	return datastructure.InvalidGraphId, 0
}

func (ba *BidirectionalAStar) stepBackward(
	pq *minHeap[datastructure.GraphId],
	reader datastructure.GraphReader,
	model costfunction.Model,
	mode datastructure.TravelMode,
) (datastructure.GraphId, float64) {
	top := pq.ExtractMin()
	u := top.item
	uInfo := ba.bwd[u]

	preds, err := incomingEdges(reader, u)
	if err != nil {
		return datastructure.InvalidGraphId, 0
	}
	for _, pred := range preds {
		density := reader.GetEdgeDensity(pred.edge.Id())
		predLabel := datastructure.NewEdgeLabel(uInfo.predEdge, pred.edge, mode)
		uNode, err := reader.Node(u)
		if err != nil {
			continue
		}
		step := model.EdgeCost(pred.edge, density).Cost + model.TransitionCost(pred.edge, uNode, predLabel).Cost
		newCost := uInfo.cost + step

		x := pred.fromNode
		xInfo, seen := ba.bwd[x]
		if seen && xInfo.cost <= newCost {
			continue
		}
		ba.bwd[x] = vertexInfo{cost: newCost, predEdge: pred.edge.Id(), predNode: u, hasParent: true}
		pq.Insert(newCost, x)
	}

	if fInfo, ok := ba.fwd[u]; ok {
		return u, uInfo.cost + fInfo.cost
	}
	return datastructure.InvalidGraphId, 0
}

// stitchBidirectional walks the forward parent chain from the meeting
// node back to an origin edge, the backward parent chain from the
// meeting node forward to a destination edge, and concatenates them.
func stitchBidirectional(
	fwd, bwd map[datastructure.GraphId]vertexInfo,
	meet datastructure.GraphId,
	totalCost float64,
	reader datastructure.GraphReader,
	mode datastructure.TravelMode,
) []datastructure.PathInfo {
	var fwdEdges []datastructure.GraphId
	cur := meet
	for {
		lbl, ok := fwd[cur]
		if !ok || !lbl.hasParent {
			break
		}
		fwdEdges = append(fwdEdges, lbl.predEdge)
		if !lbl.predNode.IsValid() {
			break
		}
		cur = lbl.predNode
	}
	fwdEdges = util.ReverseG(fwdEdges)

	var bwdEdges []datastructure.GraphId
	cur = meet
	for {
		lbl, ok := bwd[cur]
		if !ok || !lbl.hasParent {
			break
		}
		bwdEdges = append(bwdEdges, lbl.predEdge)
		if !lbl.predNode.IsValid() {
			break
		}
		cur = lbl.predNode
	}

	all := append(fwdEdges, bwdEdges...)
	if len(all) == 0 {
		return nil
	}

	lengths := make([]float64, len(all))
	var totalLen float64
	for i, id := range all {
		if edge, err := reader.Edge(id); err == nil && edge != nil {
			lengths[i] = edge.Length()
			totalLen += edge.Length()
		}
	}

	out := make([]datastructure.PathInfo, 0, len(all))
	var running float64
	for i, id := range all {
		if i > 0 && all[i-1].Equal(id) {
			continue
		}
		running += lengths[i]
		elapsed := totalCost
		if totalLen > 0 {
			elapsed = totalCost * (running / totalLen)
		}
		out = append(out, datastructure.NewPathInfo(mode, math.Round(elapsed), id, 0))
	}
	return out
}
