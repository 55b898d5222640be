package thor

import (
	"math"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
)

// Single-edge traversal-cost accumulation shared by the leg
// orchestrator, the shape walker, and the map-match assembler. A free-
// function set rather than an object: the only state that matters
// (predecessor label, running elapsed seconds) is owned by each
// caller's own loop.

// edgeElapsedSecs returns the elapsed seconds for traversing the
// fraction [source,target] of edge, given the density to feed the cost
// model. Interior, fully-traversed edges pass source=0, target=1.
func edgeElapsedSecs(model costfunction.Model, edge *datastructure.DirectedEdge, density, source, target float64) float64 {
	return model.EdgeCost(edge, density).Secs * (target - source)
}

// transitionElapsedSecs returns the additive transition cost between a
// predecessor edge and the current edge, evaluated at the shared node.
func transitionElapsedSecs(model costfunction.Model, edge *datastructure.DirectedEdge, sharedNode *datastructure.NodeInfo, predecessor datastructure.EdgeLabel) float64 {
	return model.TransitionCost(edge, sharedNode, predecessor).Secs
}

// startNodeDensity resolves the density fed to the edge cost: the start
// node's density when a node context is available, otherwise the tile's
// edge-density estimate (only the very first edge of a path lacks a
// predecessor node).
func startNodeDensity(reader datastructure.GraphReader, startNode *datastructure.NodeInfo, edgeId datastructure.GraphId) float64 {
	if startNode != nil {
		return startNode.Density()
	}
	return reader.GetEdgeDensity(edgeId)
}

// roundElapsed rounds to the nearest integer second for the output
// record; internal accumulators stay in floating seconds.
func roundElapsed(secs float64) float64 {
	return math.Round(secs)
}
