package thor

import (
	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/geo"
)

// selectBeginEdge picks the first candidate on loc whose snap is not at
// the edge's end node - an inbound-at-node candidate can't be the start
// of a forward walk.
func selectBeginEdge(loc *datastructure.PathLocation) (datastructure.PathEdge, bool) {
	for _, e := range loc.Edges {
		if !e.EndNode {
			return e, true
		}
	}
	return datastructure.PathEdge{}, false
}

// selectEndEdge picks the first candidate on loc not flagged begin_node.
func selectEndEdge(loc *datastructure.PathLocation) (datastructure.PathEdge, bool) {
	for _, e := range loc.Edges {
		if !e.BeginNode {
			return e, true
		}
	}
	return datastructure.PathEdge{}, false
}

// WalkShape reconstructs the edge sequence underlying a known polyline
// by matching node coordinates to polyline vertices. It returns
// (pathInfos, true, nil) on success, (nil, false, nil) on a shape
// mismatch the caller may recover from, or (nil, false, err) on a fatal
// precondition violation.
func WalkShape(
	reader datastructure.GraphReader,
	modeCosting [4]costfunction.Model,
	mode datastructure.TravelMode,
	locations []*datastructure.PathLocation,
	shape []datastructure.Coordinate,
) ([]datastructure.PathInfo, bool, error) {
	if len(locations) < 2 || len(shape) == 0 {
		return nil, false, ErrPrecondition(nil)
	}
	model := modeCosting[mode]

	beginPE, ok := selectBeginEdge(locations[0])
	if !ok {
		return nil, false, ErrPrecondition(nil)
	}
	endPE, ok := selectEndEdge(locations[len(locations)-1])
	if !ok {
		return nil, false, ErrPrecondition(nil)
	}
	beginEdge, err := reader.Edge(beginPE.Id)
	if err != nil {
		return nil, false, ErrPrecondition(err)
	}
	endEdge, err := reader.Edge(endPE.Id)
	if err != nil {
		return nil, false, ErrPrecondition(err)
	}

	beginDensity := reader.GetEdgeDensity(beginPE.Id)
	if beginNode, err := reader.BeginNode(beginPE.Id); err == nil {
		beginDensity = beginNode.Density()
	}

	// Begin and end snapped onto the same edge: one partial traversal.
	if beginPE.Id.Equal(endPE.Id) {
		secs := edgeElapsedSecs(model, beginEdge, beginDensity, beginPE.Dist, endPE.Dist)
		return []datastructure.PathInfo{
			datastructure.NewPathInfo(mode, roundElapsed(secs), beginPE.Id, 0),
		}, true, nil
	}

	oppEnd, err := reader.GetOpposingEdge(endEdge)
	if err != nil {
		return nil, false, ErrPrecondition(err)
	}
	endEdgeStartNode := oppEnd.EndNode()

	beginEndNode, err := reader.Node(beginEdge.EndNode())
	if err != nil {
		return nil, false, ErrPrecondition(err)
	}

	// Scan the shape forward from its first point for the begin edge's
	// end-node coordinate, bounded by the edge's remaining length plus
	// the tolerance slack.
	windowM := beginEdge.Length()*(1-beginPE.Dist) + geo.ShapeWalkSlackMeters
	window2 := windowM * windowM
	anchor := geo.NewDistanceApproximator(shape[0])

	matchIdx := -1
	for i := range shape {
		if anchor.DistanceSquaredMeters(shape[i]) >= window2 {
			break
		}
		if geo.ApproximatelyEqual(shape[i], beginEndNode.LatLng()) {
			matchIdx = i
			break
		}
	}
	if matchIdx < 0 {
		return nil, false, nil
	}

	beginElapsed := edgeElapsedSecs(model, beginEdge, beginDensity, beginPE.Dist, 1)
	out := []datastructure.PathInfo{datastructure.NewPathInfo(mode, roundElapsed(beginElapsed), beginPE.Id, 0)}
	beginLabel := datastructure.NewEdgeLabel(beginPE.Id, beginEdge, mode)

	mid, ok := expandFromNode(reader, model, mode, shape, beginEdge.EndNode(), endEdgeStartNode, matchIdx, beginLabel, beginElapsed, out)
	if !ok {
		return nil, false, nil
	}

	// Final transition into the end edge, then the end edge's own
	// partial cost.
	endStartNodeInfo, err := reader.Node(endEdgeStartNode)
	if err != nil {
		return nil, false, ErrPrecondition(err)
	}
	lastLabel := beginLabel
	if len(mid) > 0 {
		lastLabel = labelFromLastEmitted(reader, mode, mid)
	}
	transCost := transitionElapsedSecs(model, endEdge, endStartNodeInfo, lastLabel)
	endDensity := endStartNodeInfo.Density()
	endCost := edgeElapsedSecs(model, endEdge, endDensity, 0, endPE.Dist)

	finalElapsed := lastElapsed(mid, beginElapsed) + transCost + endCost
	mid = append(mid, datastructure.NewPathInfo(mode, roundElapsed(finalElapsed), endPE.Id, 0))
	return mid, true, nil
}

func lastElapsed(infos []datastructure.PathInfo, fallback float64) float64 {
	if len(infos) == 0 {
		return fallback
	}
	return infos[len(infos)-1].CumulativeElapsed
}

func labelFromLastEmitted(reader datastructure.GraphReader, mode datastructure.TravelMode, infos []datastructure.PathInfo) datastructure.EdgeLabel {
	last := infos[len(infos)-1]
	edge, err := reader.Edge(last.EdgeId)
	if err != nil {
		return datastructure.NewEdgeLabel(last.EdgeId, nil, mode)
	}
	return datastructure.NewEdgeLabel(last.EdgeId, edge, mode)
}

// walkFrame is one stack frame of the explicit-stack depth-first
// walker. Long shapes would blow the goroutine stack if this recursed,
// so the frame carries the would-be call's parameters plus enough
// bookkeeping to undo its contribution to the shared output/loop-guard
// state on backtrack.
type walkFrame struct {
	node           datastructure.GraphId
	edges          []*datastructure.DirectedEdge
	nextIdx        int
	shapeIndex     int
	prevLabel      datastructure.EdgeLabel
	elapsed        float64
	fromTransition bool
	outMark        int
	emittedMark    int
}

// expandFromNode depth-first expands outgoing edges from startNode until
// it reaches stopNode, matching each candidate edge's end node against
// the shape. out and the emitted-edge loop guard are threaded through
// the stack rather than the call frame; a failed branch truncates both
// back to the mark recorded when its frame was pushed.
func expandFromNode(
	reader datastructure.GraphReader,
	model costfunction.Model,
	mode datastructure.TravelMode,
	shape []datastructure.Coordinate,
	startNode, stopNode datastructure.GraphId,
	startShapeIndex int,
	startLabel datastructure.EdgeLabel,
	startElapsed float64,
	seed []datastructure.PathInfo,
) ([]datastructure.PathInfo, bool) {
	out := append([]datastructure.PathInfo(nil), seed...)
	emitted := make([]datastructure.GraphId, 0, 8)

	outgoing := func(n datastructure.GraphId) []*datastructure.DirectedEdge {
		node, err := reader.Node(n)
		if err != nil {
			return nil
		}
		tile, err := reader.GetGraphTile(n)
		if err != nil {
			return nil
		}
		return tile.EdgesOf(node)
	}

	stack := []*walkFrame{{
		node: startNode, edges: outgoing(startNode), shapeIndex: startShapeIndex,
		prevLabel: startLabel, elapsed: startElapsed, fromTransition: false,
		outMark: len(out), emittedMark: 0,
	}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.node.Equal(stopNode) {
			return out, true
		}

		advanced := false
		for top.nextIdx < len(top.edges) {
			e := top.edges[top.nextIdx]
			top.nextIdx++

			if e.IsShortcut() || e.Use() == datastructure.UseTransitConnection {
				continue
			}
			if isLoopGuarded(emitted, e.Id()) {
				continue
			}

			if e.IsTransition() {
				if top.fromTransition {
					continue
				}
				stack = append(stack, &walkFrame{
					node: e.EndNode(), edges: outgoing(e.EndNode()), shapeIndex: top.shapeIndex,
					prevLabel: top.prevLabel, elapsed: top.elapsed, fromTransition: true,
					outMark: len(out), emittedMark: len(emitted),
				})
				advanced = true
				break
			}

			endNode, err := reader.Node(e.EndNode())
			if err != nil {
				continue
			}
			lengthM := e.Length() + geo.ShapeWalkSlackMeters
			length2 := lengthM * lengthM
			approx := geo.NewDistanceApproximator(endNode.LatLng())

			matchJ := -1
			for j := top.shapeIndex + 1; j < len(shape); j++ {
				if approx.DistanceSquaredMeters(shape[j]) >= length2 {
					break
				}
				if geo.ApproximatelyEqual(shape[j], endNode.LatLng()) {
					matchJ = j
					break
				}
			}
			if matchJ < 0 {
				continue
			}

			curNode, err := reader.Node(top.node)
			if err != nil {
				continue
			}
			density := curNode.Density()
			transCost := transitionElapsedSecs(model, e, curNode, top.prevLabel)
			costSecs := edgeElapsedSecs(model, e, density, 0, 1)
			newElapsed := top.elapsed + transCost + costSecs

			out = append(out, datastructure.NewPathInfo(mode, roundElapsed(newElapsed), e.Id(), 0))
			emitted = append(emitted, e.Id())

			stack = append(stack, &walkFrame{
				node: e.EndNode(), edges: outgoing(e.EndNode()), shapeIndex: matchJ,
				prevLabel: datastructure.NewEdgeLabel(e.Id(), e, mode), elapsed: newElapsed, fromTransition: false,
				outMark: len(out) - 1, emittedMark: len(emitted) - 1,
			})
			advanced = true
			break
		}

		if advanced {
			continue
		}

		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return nil, false
		}
		out = out[:top.outMark]
		emitted = emitted[:top.emittedMark]
	}
	return nil, false
}

// isLoopGuarded reports whether id equals the last or second-to-last
// emitted edge, preventing back-and-forth on an edge shorter than the
// coordinate tolerance.
func isLoopGuarded(emitted []datastructure.GraphId, id datastructure.GraphId) bool {
	n := len(emitted)
	if n >= 1 && emitted[n-1].Equal(id) {
		return true
	}
	if n >= 2 && emitted[n-2].Equal(id) {
		return true
	}
	return false
}
