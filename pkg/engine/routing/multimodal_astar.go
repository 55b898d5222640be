package routing

import (
	"math"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/util"
)

// modeNode is the search-state key for MultiModalAstar: a physical node
// plus the travel mode currently in effect there, since a rider can
// transfer mode at the same node at a cost.
type modeNode struct {
	node datastructure.GraphId
	mode datastructure.TravelMode
}

// mmVertexInfo extends vertexInfo with the predecessor's mode, needed
// because a transfer step keeps the node fixed and changes only the
// mode - without recording predMode separately, walking the parent
// chain back through a transfer would loop on the same (node, mode) key.
type mmVertexInfo struct {
	vertexInfo
	predMode datastructure.TravelMode
}

// MultiModalAstar is selected when costing is multimodal or transit.
// It runs the same label-setting search as ForwardAStar but over the
// product graph of (node, mode) pairs, allowing a transfer to any other
// mode at a node for a fixed penalty. Transit schedule adherence is not
// modeled; a transfer is always assumed possible.
type MultiModalAstar struct {
	settled map[modeNode]mmVertexInfo
}

// transferPenaltySecs is the fixed cost charged when switching travel
// mode at a node.
const transferPenaltySecs = 180.0

func NewMultiModalAstar() *MultiModalAstar {
	return &MultiModalAstar{settled: make(map[modeNode]mmVertexInfo)}
}

func (ma *MultiModalAstar) Clear() {
	ma.settled = make(map[modeNode]mmVertexInfo)
}

func (ma *MultiModalAstar) GetBestPath(
	origin, destination *datastructure.PathLocation,
	reader datastructure.GraphReader,
	modeCosting [4]costfunction.Model,
	mode datastructure.TravelMode,
) ([]datastructure.PathInfo, error) {
	startLabels, err := originLabels(origin.Edges, reader, modeCosting[mode])
	if err != nil {
		return nil, err
	}
	destEdges := destinationEdgeIds(destination)
	if len(destEdges) == 0 {
		return nil, nil
	}

	pq := newMinHeap[modeNode]()
	ma.settled = make(map[modeNode]mmVertexInfo)
	for node, lbl := range startLabels {
		mn := modeNode{node: node, mode: mode}
		ma.settled[mn] = mmVertexInfo{vertexInfo: lbl, predMode: mode}
		pq.Insert(lbl.cost, mn)
	}

	for !pq.IsEmpty() {
		top := pq.ExtractMin()
		u := top.item
		uInfo := ma.settled[u]
		model := modeCosting[u.mode]

		outs, err := outgoingEdges(reader, u.node)
		if err != nil {
			continue
		}
		for _, edge := range outs {
			if pe, isDest := destEdges[edge.Id()]; isDest {
				density := reader.GetEdgeDensity(edge.Id())
				arriveCost := uInfo.cost + model.EdgeCost(edge, density).Scale(pe.Dist).Cost
				return reconstructMultiModal(ma.settled, u, edge.Id(), arriveCost, reader), nil
			}

			density := reader.GetEdgeDensity(edge.Id())
			predLabel := datastructure.NewEdgeLabel(uInfo.predEdge, edge, u.mode)
			endNode, err := reader.Node(edge.EndNode())
			if err != nil {
				continue
			}
			step := model.EdgeCost(edge, density).Cost + model.TransitionCost(edge, endNode, predLabel).Cost
			relaxModeNode(ma.settled, pq, modeNode{node: edge.EndNode(), mode: u.mode}, uInfo.cost+step, edge.Id(), u.node, u.mode)
		}

		// Mode transfer at the same node, same cumulative cost plus the
		// transfer penalty.
		for m := datastructure.TravelMode(0); m < 4; m++ {
			if m == u.mode {
				continue
			}
			relaxModeNode(ma.settled, pq, modeNode{node: u.node, mode: m}, uInfo.cost+transferPenaltySecs, uInfo.predEdge, u.node, u.mode)
		}
	}
	return nil, nil
}

func relaxModeNode(settled map[modeNode]mmVertexInfo, pq *minHeap[modeNode], v modeNode, newCost float64, predEdge, predNode datastructure.GraphId, predMode datastructure.TravelMode) {
	existing, seen := settled[v]
	if seen && existing.cost <= newCost {
		return
	}
	settled[v] = mmVertexInfo{
		vertexInfo: vertexInfo{cost: newCost, predEdge: predEdge, predNode: predNode, hasParent: true},
		predMode:   predMode,
	}
	pq.Insert(newCost, v)
}

func reconstructMultiModal(
	settled map[modeNode]mmVertexInfo,
	targetNode modeNode,
	finalEdge datastructure.GraphId,
	finalCost float64,
	reader datastructure.GraphReader,
) []datastructure.PathInfo {
	type step struct {
		edgeId datastructure.GraphId
		mode   datastructure.TravelMode
	}
	var chain []step
	chain = append(chain, step{edgeId: finalEdge, mode: targetNode.mode})
	cur := targetNode
	for {
		lbl, ok := settled[cur]
		if !ok || !lbl.hasParent {
			break
		}
		chain = append(chain, step{edgeId: lbl.predEdge, mode: cur.mode})
		if !lbl.predNode.IsValid() {
			break
		}
		cur = modeNode{node: lbl.predNode, mode: lbl.predMode}
	}
	chain = util.ReverseG(chain)

	lengths := make([]float64, len(chain))
	var totalLen float64
	for i, s := range chain {
		if edge, err := reader.Edge(s.edgeId); err == nil && edge != nil {
			lengths[i] = edge.Length()
			totalLen += edge.Length()
		}
	}

	out := make([]datastructure.PathInfo, 0, len(chain))
	var running float64
	for i, s := range chain {
		if i > 0 && chain[i-1].edgeId.Equal(s.edgeId) {
			continue
		}
		running += lengths[i]
		elapsed := finalCost
		if totalLen > 0 {
			elapsed = finalCost * (running / totalLen)
		}
		out = append(out, datastructure.NewPathInfo(s.mode, math.Round(elapsed), s.edgeId, 0))
	}
	return out
}
