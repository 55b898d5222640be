package thor

import (
	"testing"
	"time"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/engine/routing"
	"github.com/nextzen/thor/pkg/guidance"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOrchestratorWithReader(reader datastructure.GraphReader, model costfunction.Model) *LegOrchestrator {
	return NewLegOrchestrator(
		reader,
		modeCostingOf(model),
		routing.NewForwardAStar(),
		routing.NewBidirectionalAStar(),
		routing.NewMultiModalAstar(),
		guidance.NewDefaultTripPathBuilder(),
		zap.NewNop(),
		0,
	)
}

func breakLoc(edges ...datastructure.PathEdge) *datastructure.PathLocation {
	return datastructure.NewPathLocation(edges, datastructure.Break)
}

func throughLoc(edges ...datastructure.PathEdge) *datastructure.PathLocation {
	return datastructure.NewPathLocation(edges, datastructure.Through)
}

// Two breaks whose candidates share one edge: one trip, one partial
// traversal.
func TestRoute_TwoBreaksSameEdgeTrivial(t *testing.T) {
	fx := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true) // 10 m/s
	o := newOrchestratorWithReader(fx.reader, model)

	origin := breakLoc(datastructure.NewPathEdge(fx.eBC, 0.2, false, false))
	destination := breakLoc(datastructure.NewPathEdge(fx.eBC, 0.7, false, false))

	result, err := o.Route(&Request{
		Locations: []*datastructure.PathLocation{origin, destination},
		Costing:   "auto",
		Raw:       "raw-request",
	})
	require.NoError(t, err)
	require.Equal(t, "raw-request", result.RawRequest)
	require.Len(t, result.Trips, 1)
	require.Len(t, result.Trips[0].Edges, 1)

	edge := result.Trips[0].Edges[0]
	require.True(t, edge.EdgeId.Equal(fx.eBC))
	// 100m at 10 m/s = 10s full edge; half (0.5 fraction) = 5s.
	require.InDelta(t, 5.0, edge.CumulativeElapsed, 1.0)
}

// A through waypoint snapped mid-edge restricts the next leg's origin
// candidates to that edge.
func TestRoute_ThroughWaypointMidEdgeRestrictsOrigin(t *testing.T) {
	fx := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true)
	o := newOrchestratorWithReader(fx.reader, model)

	origin := breakLoc(datastructure.NewPathEdge(fx.eAB, 0.0, true, false))
	through := throughLoc(datastructure.NewPathEdge(fx.eBC, 0.5, false, false))
	destination := breakLoc(datastructure.NewPathEdge(fx.eCD, 1.0, false, true))

	result, err := o.Route(&Request{
		Locations: []*datastructure.PathLocation{origin, through, destination},
		Costing:   "auto",
	})
	require.NoError(t, err)
	require.Len(t, result.Trips, 1)

	// through's candidates must have been restricted to exactly the
	// through_edge once it became leg 2's origin.
	require.Len(t, through.Edges, 1)
	require.True(t, through.Edges[0].Id.Equal(fx.eBC))

	edges := result.Trips[0].Edges
	require.NotEmpty(t, edges)
	for i := 1; i < len(edges); i++ {
		require.False(t, edges[i-1].EdgeId.Equal(edges[i].EdgeId), "adjacent edges must not repeat (join dedupe)")
		require.GreaterOrEqual(t, edges[i].CumulativeElapsed, edges[i-1].CumulativeElapsed)
	}
}

// A through waypoint snapped exactly at a node leaves the next leg's
// origin candidates untouched.
func TestRoute_ThroughWaypointAtNodeLeavesCandidatesAlone(t *testing.T) {
	fx := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true)
	o := newOrchestratorWithReader(fx.reader, model)

	origin := breakLoc(datastructure.NewPathEdge(fx.eAB, 0.0, true, false))
	through := throughLoc(datastructure.NewPathEdge(fx.eAB, 1.0, false, true))
	destination := breakLoc(datastructure.NewPathEdge(fx.eCD, 1.0, false, true))

	result, err := o.Route(&Request{
		Locations: []*datastructure.PathLocation{origin, through, destination},
		Costing:   "auto",
	})
	require.NoError(t, err)
	require.Len(t, result.Trips, 1)

	require.Len(t, through.Edges, 1, "at-node through waypoint keeps its single candidate untouched")
	require.True(t, through.Edges[0].Id.Equal(fx.eAB))
}

// The relaxation retry ladder runs to exhaustion and fails with
// ErrNoPath on a genuinely disconnected graph, mutating the cost
// model's relaxation state along the way.
func TestRoute_RetryLadderExhaustsToNoPath(t *testing.T) {
	fx := buildDisconnectedGraph()
	model := costfunction.NewDefaultModel(36.0, true)
	o := newOrchestratorWithReader(fx.reader, model)

	origin := breakLoc(datastructure.NewPathEdge(fx.eXY, 0.0, true, false))
	destination := breakLoc(datastructure.NewPathEdge(fx.eZW, 1.0, false, true))

	_, err := o.Route(&Request{
		Locations: []*datastructure.PathLocation{origin, destination},
		Costing:   "auto",
	})
	require.Error(t, err)
	routeErr, ok := err.(*RouteError)
	require.True(t, ok)
	require.Equal(t, 400, routeErr.HTTPStatus)
	require.Equal(t, 442, routeErr.InternalCode)

	relaxed, factor, expansion := model.Relaxed()
	require.True(t, relaxed)
	require.Equal(t, 8.0, factor) // bidirectional engine chosen (no shared edge)
	require.Equal(t, 2.0, expansion)
	require.False(t, model.HighwayTransitionsDisabled(), "highway-transition disable is forward-A*-only")
}

// AllowMultiPass=false must fail immediately, without any relaxation.
func TestRoute_NoMultiPassFailsWithoutRelaxation(t *testing.T) {
	fx := buildDisconnectedGraph()
	model := costfunction.NewDefaultModel(36.0, false)
	o := newOrchestratorWithReader(fx.reader, model)

	origin := breakLoc(datastructure.NewPathEdge(fx.eXY, 0.0, true, false))
	destination := breakLoc(datastructure.NewPathEdge(fx.eZW, 1.0, false, true))

	_, err := o.Route(&Request{
		Locations: []*datastructure.PathLocation{origin, destination},
		Costing:   "auto",
	})
	require.Error(t, err)
	relaxed, _, _ := model.Relaxed()
	require.False(t, relaxed)
}

// Arrive-by propagates a computed departure time back onto the origin
// location when it is a BREAK.
func TestRoute_ArriveByPropagatesDateTime(t *testing.T) {
	fx := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true)
	o := newOrchestratorWithReader(fx.reader, model)

	arrival := "2026-08-03T12:00:00Z"
	origin := breakLoc(datastructure.NewPathEdge(fx.eAB, 0.0, true, false))
	destination := breakLoc(datastructure.NewPathEdge(fx.eCD, 1.0, false, true))
	destination.DateTime = &arrival

	result, err := o.Route(&Request{
		Locations:    []*datastructure.PathLocation{origin, destination},
		Costing:      "auto",
		DateTimeType: ArriveBy,
	})
	require.NoError(t, err)
	require.Len(t, result.Trips, 1)

	require.NotNil(t, origin.DateTime)
	departed, err := time.Parse(time.RFC3339, *origin.DateTime)
	require.NoError(t, err)
	arrivedAt, _ := time.Parse(time.RFC3339, arrival)
	require.True(t, departed.Before(arrivedAt) || departed.Equal(arrivedAt))
}

func TestRoute_RequiresAtLeastTwoLocations(t *testing.T) {
	fx := buildLinearGraph()
	model := costfunction.NewDefaultModel(36.0, true)
	o := newOrchestratorWithReader(fx.reader, model)

	_, err := o.Route(&Request{
		Locations: []*datastructure.PathLocation{breakLoc(datastructure.NewPathEdge(fx.eAB, 0, true, false))},
		Costing:   "auto",
	})
	require.Error(t, err)
}
