package thor

import (
	"fmt"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/mapmatcher"
)

// AssembleMapMatch turns a matcher's pre-solved match results into a
// timed edge sequence. Any failure while resolving edges during
// construction, whether a returned error or (as a last-resort boundary)
// a panic from a nil/corrupt collaborator, coalesces into a single
// fatal {400,442} RouteError; partial output is never returned on
// failure.
func AssembleMapMatch(
	mm mapmatcher.Matcher,
	results []mapmatcher.MatchResult,
	begin, end int,
	modeCosting [4]costfunction.Model,
	mode datastructure.TravelMode,
) (out []datastructure.PathInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = ErrNoPath(fmt.Errorf("map-match assembly panic: %v", r))
		}
	}()

	segments := mapmatcher.ConstructRoute(mm, results, begin, end)
	reader := mm.GraphReader()
	model := modeCosting[mode]

	var priorEdgeId, priorEndNode datastructure.GraphId
	var priorLabel datastructure.EdgeLabel
	var elapsed float64
	havePrior := false

	for _, seg := range segments {
		if havePrior && priorEdgeId.Equal(seg.EdgeId) {
			continue
		}
		edge, err := reader.Edge(seg.EdgeId)
		if err != nil {
			return nil, ErrNoPath(err)
		}

		var costSecs, transCost float64
		if havePrior {
			sharedNode, err := reader.Node(priorEndNode)
			if err != nil {
				return nil, ErrNoPath(err)
			}
			transCost = transitionElapsedSecs(model, edge, sharedNode, priorLabel)
			costSecs = edgeElapsedSecs(model, edge, sharedNode.Density(), seg.Source, seg.Target)
		} else {
			density := reader.GetEdgeDensity(seg.EdgeId)
			costSecs = edgeElapsedSecs(model, edge, density, seg.Source, seg.Target)
		}
		elapsed += transCost + costSecs

		out = append(out, datastructure.NewPathInfo(mode, roundElapsed(elapsed), seg.EdgeId, 0))

		priorEdgeId = seg.EdgeId
		priorEndNode = edge.EndNode()
		priorLabel = datastructure.NewEdgeLabel(seg.EdgeId, edge, mode)
		havePrior = true
	}
	return out, nil
}
