package routing

import (
	"testing"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildLinearGraph is a 4-node A-B-C-D graph, one directed edge per hop
// plus its opposite, mirroring the fixture used in pkg/thor's tests.
func buildLinearGraph() (*datastructure.MemGraphReader, map[string]datastructure.GraphId) {
	reader := datastructure.NewMemGraphReader(zap.NewNop(), 16)
	const tileId datastructure.Index = 0
	const level uint8 = 0
	gid := func(i int) datastructure.GraphId { return datastructure.NewGraphId(tileId, level, datastructure.Index(i)) }

	nodes := []*datastructure.NodeInfo{
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0000), 0, 1, 1.0), // A
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0009), 1, 2, 1.0), // B
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0018), 3, 2, 1.0), // C
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0027), 5, 1, 1.0), // D
	}
	edges := []*datastructure.DirectedEdge{
		datastructure.NewDirectedEdge(gid(0), gid(1), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 0: A->B
		datastructure.NewDirectedEdge(gid(1), gid(0), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 1: B->A
		datastructure.NewDirectedEdge(gid(2), gid(2), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 2: B->C
		datastructure.NewDirectedEdge(gid(3), gid(1), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 1), // 3: C->B
		datastructure.NewDirectedEdge(gid(4), gid(3), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 4: C->D
		datastructure.NewDirectedEdge(gid(5), gid(2), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 1), // 5: D->C
	}
	density := make([]float64, len(edges))
	for i := range density {
		density[i] = 1.0
	}
	tile := datastructure.NewGraphTile(tileId, level, edges, nodes, density)
	reader.AddTile(tile, tileId, level)

	ids := map[string]datastructure.GraphId{
		"eAB": gid(0), "eBA": gid(1), "eBC": gid(2), "eCB": gid(3), "eCD": gid(4), "eDC": gid(5),
	}
	return reader, ids
}

func modeCostingOf(m costfunction.Model) [4]costfunction.Model {
	return [4]costfunction.Model{m, m, m, m}
}

// The forward engine is selected specifically for the trivial case the
// bidirectional engine cannot safely handle: origin and destination
// snapped onto the same directed edge.
func TestForwardAStar_SameEdgeShortCircuit(t *testing.T) {
	reader, ids := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true) // 10 m/s
	fa := NewForwardAStar()

	origin := datastructure.NewPathLocation([]datastructure.PathEdge{datastructure.NewPathEdge(ids["eBC"], 0.2, false, false)}, datastructure.Break)
	destination := datastructure.NewPathLocation([]datastructure.PathEdge{datastructure.NewPathEdge(ids["eBC"], 0.7, false, false)}, datastructure.Break)

	path, err := fa.GetBestPath(origin, destination, reader, modeCostingOf(model), datastructure.ModeDrive)
	require.NoError(t, err)
	require.Len(t, path, 1)
	require.True(t, path[0].EdgeId.Equal(ids["eBC"]))
	require.InDelta(t, 5.0, path[0].CumulativeElapsed, 0.5)
}

func TestForwardAStar_SameEdgeBackwardsYieldsZeroCost(t *testing.T) {
	reader, ids := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true)
	fa := NewForwardAStar()

	// Destination lies behind the origin on the shared edge: the
	// fraction clamps to zero rather than going negative.
	origin := datastructure.NewPathLocation([]datastructure.PathEdge{datastructure.NewPathEdge(ids["eBC"], 0.7, false, false)}, datastructure.Break)
	destination := datastructure.NewPathLocation([]datastructure.PathEdge{datastructure.NewPathEdge(ids["eBC"], 0.2, false, false)}, datastructure.Break)

	path, err := fa.GetBestPath(origin, destination, reader, modeCostingOf(model), datastructure.ModeDrive)
	require.NoError(t, err)
	require.Len(t, path, 1)
	require.InDelta(t, 0.0, path[0].CumulativeElapsed, 1e-9)
}

func TestForwardAStar_MultiEdgeTraversal(t *testing.T) {
	reader, ids := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true)
	fa := NewForwardAStar()

	origin := datastructure.NewPathLocation([]datastructure.PathEdge{datastructure.NewPathEdge(ids["eAB"], 0.0, true, false)}, datastructure.Break)
	destination := datastructure.NewPathLocation([]datastructure.PathEdge{datastructure.NewPathEdge(ids["eCD"], 1.0, false, true)}, datastructure.Break)

	path, err := fa.GetBestPath(origin, destination, reader, modeCostingOf(model), datastructure.ModeDrive)
	require.NoError(t, err)
	require.Len(t, path, 3)
	require.True(t, path[0].EdgeId.Equal(ids["eAB"]))
	require.True(t, path[1].EdgeId.Equal(ids["eBC"]))
	require.True(t, path[2].EdgeId.Equal(ids["eCD"]))
	for i := 1; i < len(path); i++ {
		require.GreaterOrEqual(t, path[i].CumulativeElapsed, path[i-1].CumulativeElapsed)
	}
}

func TestForwardAStar_NoDestinationCandidatesYieldsNilWithoutError(t *testing.T) {
	reader, ids := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true)
	fa := NewForwardAStar()

	origin := datastructure.NewPathLocation([]datastructure.PathEdge{datastructure.NewPathEdge(ids["eAB"], 0.0, true, false)}, datastructure.Break)
	destination := datastructure.NewPathLocation(nil, datastructure.Break)

	path, err := fa.GetBestPath(origin, destination, reader, modeCostingOf(model), datastructure.ModeDrive)
	require.NoError(t, err)
	require.Nil(t, path)
}
