package thor

import (
	"testing"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/stretchr/testify/require"
)

func TestEdgeElapsedSecs_FullAndPartialTraversal(t *testing.T) {
	fx := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true) // 10 m/s
	edge, err := fx.reader.Edge(fx.eAB)
	require.NoError(t, err)

	require.InDelta(t, 10.0, edgeElapsedSecs(model, edge, 1.0, 0, 1), 1e-9)
	require.InDelta(t, 5.0, edgeElapsedSecs(model, edge, 1.0, 0, 0.5), 1e-9)
	require.InDelta(t, 0.0, edgeElapsedSecs(model, edge, 1.0, 0.3, 0.3), 1e-9)
}

func TestTransitionElapsedSecs_SameEdgeReentryIsFree(t *testing.T) {
	fx := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true)
	eAB, err := fx.reader.Edge(fx.eAB)
	require.NoError(t, err)
	eBA, err := fx.reader.Edge(fx.eBA)
	require.NoError(t, err)
	nodeB, err := fx.reader.Node(fx.nodeB)
	require.NoError(t, err)

	predLabel := datastructure.NewEdgeLabel(eAB.Id(), eAB, datastructure.ModeDrive)
	require.InDelta(t, 0.0, transitionElapsedSecs(model, eAB, nodeB, predLabel), 1e-9, "transitioning onto the predecessor edge itself is free")

	otherPred := datastructure.NewEdgeLabel(eBA.Id(), eBA, datastructure.ModeDrive)
	require.InDelta(t, 1.0, transitionElapsedSecs(model, eAB, nodeB, otherPred), 1e-9, "any other predecessor edge costs the base 1s")
}

func TestTransitionElapsedSecs_DenseNodePenalty(t *testing.T) {
	model := costfunction.NewDefaultModel(36.0, true)
	denseNode := datastructure.NewNodeInfo(datastructure.NewCoordinate(0, 0), 0, 1, 5.0)
	edge := datastructure.NewDirectedEdge(datastructure.NewGraphId(0, 0, 0), datastructure.NewGraphId(0, 0, 1), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0)
	otherEdge := datastructure.NewDirectedEdge(datastructure.NewGraphId(0, 0, 2), datastructure.NewGraphId(0, 0, 3), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0)
	predLabel := datastructure.NewEdgeLabel(otherEdge.Id(), otherEdge, datastructure.ModeDrive)

	require.InDelta(t, 2.0, transitionElapsedSecs(model, edge, denseNode, predLabel), 1e-9)
}

func TestStartNodeDensity_FallsBackToTileDensityWithoutNode(t *testing.T) {
	fx := buildLinearGraph()
	nodeB, err := fx.reader.Node(fx.nodeB)
	require.NoError(t, err)

	require.Equal(t, nodeB.Density(), startNodeDensity(fx.reader, nodeB, fx.eAB))
	require.Equal(t, fx.reader.GetEdgeDensity(fx.eAB), startNodeDensity(fx.reader, nil, fx.eAB))
}

func TestRoundElapsed_RoundsToNearestSecond(t *testing.T) {
	require.Equal(t, 5.0, roundElapsed(4.5))
	require.Equal(t, 4.0, roundElapsed(4.49))
	require.Equal(t, 0.0, roundElapsed(0.0))
}
