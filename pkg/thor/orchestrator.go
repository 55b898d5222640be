package thor

import (
	"time"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/engine/routing"
	"github.com/nextzen/thor/pkg/guidance"
	"go.uber.org/zap"
)

// DateTimeType selects how the request's timestamps anchor the schedule.
type DateTimeType int

const (
	DepartAt DateTimeType = iota
	DepartAtReverse
	ArriveBy
)

// Request bundles the correlated locations and routing parameters the
// orchestrator needs; parsing the raw request into this shape is the
// request layer's job.
type Request struct {
	Locations    []*datastructure.PathLocation
	Costing      string
	DateTimeType DateTimeType
	Raw          string
}

// Result is the orchestrator's output: the raw request echoed first,
// then one trip per emitted TripPath, in travel order.
type Result struct {
	RawRequest string
	Trips      []*guidance.TripPath
}

// LegOrchestrator is the entry point of the routing core. It iterates a
// correlated-location sequence, selects a pathfinding engine per leg,
// retries with relaxation on failure, stitches consecutive legs, and
// emits one trip per break boundary.
type LegOrchestrator struct {
	reader      datastructure.GraphReader
	modeCosting [4]costfunction.Model

	forward       routing.PathAlgorithm
	bidirectional routing.PathAlgorithm
	multimodal    routing.PathAlgorithm

	tripBuilder guidance.TripPathBuilder
	log         *zap.Logger

	// longRequestSecs is a log-only threshold, not a cancellation
	// signal. Zero disables it.
	longRequestSecs float64
}

func NewLegOrchestrator(
	reader datastructure.GraphReader,
	modeCosting [4]costfunction.Model,
	forward, bidirectional, multimodal routing.PathAlgorithm,
	tripBuilder guidance.TripPathBuilder,
	log *zap.Logger,
	longRequestSecs float64,
) *LegOrchestrator {
	return &LegOrchestrator{
		reader:          reader,
		modeCosting:     modeCosting,
		forward:         forward,
		bidirectional:   bidirectional,
		multimodal:      multimodal,
		tripBuilder:     tripBuilder,
		log:             log,
		longRequestSecs: longRequestSecs,
	}
}

// throughState is the orchestrator's bookkeeping for a THROUGH location
// that sits between two legs of the same trip: the last edge produced
// by the leg that touches it, and whether that snap landed on a node
// boundary.
type throughState struct {
	valid  bool
	edge   *datastructure.DirectedEdge
	edgeId datastructure.GraphId
	atNode bool
}

// CostingMode maps a costing identifier to the TravelMode indexing the
// mode-costing array.
func CostingMode(costing string) datastructure.TravelMode {
	switch costing {
	case "multimodal", "transit":
		return datastructure.ModeTransit
	case "bicycle":
		return datastructure.ModeBicycle
	case "pedestrian":
		return datastructure.ModePedestrian
	default:
		return datastructure.ModeDrive
	}
}

// sharesCandidateEdge reports whether origin and destination have any
// candidate edge id in common - the trivial/oneway case the
// bidirectional engine cannot safely handle.
func sharesCandidateEdge(a, b *datastructure.PathLocation) bool {
	for _, ea := range a.Edges {
		for _, eb := range b.Edges {
			if ea.Id.Equal(eb.Id) {
				return true
			}
		}
	}
	return false
}

// selectEngine picks the algorithm for one leg.
func (o *LegOrchestrator) selectEngine(costing string, origin, destination *datastructure.PathLocation) routing.PathAlgorithm {
	if costing == "multimodal" || costing == "transit" {
		return o.multimodal
	}
	if sharesCandidateEdge(origin, destination) {
		return o.forward
	}
	return o.bidirectional
}

// computeLeg runs the selected engine with the relaxation retry ladder.
// Relaxation mutates the cost model in place and is not undone: later
// legs within the same request inherit the loosened limits.
func (o *LegOrchestrator) computeLeg(origin, destination *datastructure.PathLocation, costing string) ([]datastructure.PathInfo, error) {
	mode := CostingMode(costing)
	model := o.modeCosting[mode]
	engine := o.selectEngine(costing, origin, destination)
	isForward := engine == o.forward

	path, err := engine.GetBestPath(origin, destination, o.reader, o.modeCosting, mode)
	if err != nil {
		return nil, err
	}
	if len(path) > 0 {
		return path, nil
	}

	if !model.AllowMultiPass() {
		return nil, ErrNoPath(nil)
	}

	engine.Clear()
	if isForward {
		model.RelaxHierarchyLimits(16.0, 4.0)
	} else {
		model.RelaxHierarchyLimits(8.0, 2.0)
	}
	path, err = engine.GetBestPath(origin, destination, o.reader, o.modeCosting, mode)
	if err != nil {
		return nil, err
	}
	if len(path) > 0 {
		return path, nil
	}

	if isForward {
		engine.Clear()
		model.DisableHighwayTransitions()
		path, err = engine.GetBestPath(origin, destination, o.reader, o.modeCosting, mode)
		if err != nil {
			return nil, err
		}
		if len(path) > 0 {
			return path, nil
		}
	}

	return nil, ErrNoPath(nil)
}

// updateOrigin rewrites loc's candidate edges in place after a through
// waypoint, so the next leg keeps continuity with the edge the previous
// leg ended on.
func (o *LegOrchestrator) updateOrigin(loc *datastructure.PathLocation, ts throughState) {
	if !ts.valid {
		return
	}
	if ts.atNode {
		// Snap was at a node: no restriction. TODO strip only the
		// opposing inbound edge unless all outbound edges enter
		// not-through regions.
		return
	}
	if ts.edge.NotThrough() {
		// Leave candidates untouched so the router can escape a
		// not-through region via the through edge's opposing edge.
		return
	}

	atEndpoint := false
	for _, pe := range loc.Edges {
		if pe.Id.Equal(ts.edgeId) && (pe.BeginNode || pe.EndNode) {
			atEndpoint = true
			break
		}
	}

	if atEndpoint {
		oppId := datastructure.InvalidGraphId
		if opp, err := o.reader.GetOpposingEdge(ts.edge); err == nil {
			oppId = opp.Id()
		}
		kept := loc.Edges[:0:0]
		for _, pe := range loc.Edges {
			if pe.Id.Equal(ts.edgeId) || pe.Id.Equal(oppId) {
				continue
			}
			kept = append(kept, pe)
		}
		loc.Edges = kept
		return
	}

	for _, pe := range loc.Edges {
		if pe.Id.Equal(ts.edgeId) {
			loc.Edges = []datastructure.PathEdge{pe}
			return
		}
	}
}

// mergeLegForward extends a running edge list with a new leg's path in
// travel order, dropping the duplicated edge at the join and biasing the
// new leg's times by the running total.
func mergeLegForward(pathEdges, tempPath []datastructure.PathInfo) []datastructure.PathInfo {
	if len(pathEdges) == 0 {
		return append([]datastructure.PathInfo(nil), tempPath...)
	}
	if len(tempPath) == 0 {
		return pathEdges
	}
	t := pathEdges[len(pathEdges)-1].CumulativeElapsed
	if tempPath[0].EdgeId.Equal(pathEdges[len(pathEdges)-1].EdgeId) {
		pathEdges = pathEdges[:len(pathEdges)-1]
	}
	for _, e := range tempPath {
		e.CumulativeElapsed += t
		pathEdges = append(pathEdges, e)
	}
	return pathEdges
}

// mergeLegBackward is mergeLegForward's mirror for arrive-by iteration:
// legs are discovered in decreasing geographic order, so the newly
// computed leg is geographically earlier than what has already been
// collected and must be prepended, with the already-collected portion's
// times biased forward by the new leg's total elapsed.
func mergeLegBackward(pathEdges, tempPath []datastructure.PathInfo) []datastructure.PathInfo {
	if len(pathEdges) == 0 {
		return append([]datastructure.PathInfo(nil), tempPath...)
	}
	if len(tempPath) == 0 {
		return pathEdges
	}
	t := tempPath[len(tempPath)-1].CumulativeElapsed
	if pathEdges[0].EdgeId.Equal(tempPath[len(tempPath)-1].EdgeId) {
		pathEdges = pathEdges[1:]
	}
	biased := make([]datastructure.PathInfo, len(pathEdges))
	for i, e := range pathEdges {
		e.CumulativeElapsed += t
		biased[i] = e
	}
	return append(append([]datastructure.PathInfo(nil), tempPath...), biased...)
}

func parseDateTime(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatDateTime(t time.Time) *string {
	s := t.Format(time.RFC3339)
	return &s
}

// Route computes every leg and emits one trip per break segment. There
// is no partial success: any failed leg fails the whole request.
func (o *LegOrchestrator) Route(req *Request) (*Result, error) {
	locs := req.Locations
	if len(locs) < 2 {
		return nil, ErrPrecondition(nil)
	}

	start := time.Now()
	var result *Result
	var err error
	if req.DateTimeType == ArriveBy {
		result, err = o.routeArriveBy(req)
	} else {
		result, err = o.routeDepartAt(req)
	}

	if o.longRequestSecs > 0 {
		if elapsed := time.Since(start).Seconds(); elapsed > o.longRequestSecs {
			o.log.Warn("long route request",
				zap.Float64("elapsed_secs", elapsed),
				zap.Int("locations", len(locs)),
				zap.String("costing", req.Costing),
			)
		}
	}
	return result, err
}

func (o *LegOrchestrator) routeDepartAt(req *Request) (*Result, error) {
	locs := req.Locations
	n := len(locs)
	result := &Result{RawRequest: req.Raw}

	clock, haveClock := parseDateTime(locs[0].DateTime)

	var pathEdges []datastructure.PathInfo
	var throughLocations []*datastructure.PathLocation
	segStart := locs[0]
	through := throughState{}
	tripCounter := uint32(0)

	for lk := 0; lk < n-1; lk++ {
		origin := locs[lk]
		destination := locs[lk+1]

		o.updateOrigin(origin, through)
		through = throughState{}

		legPath, err := o.computeLeg(origin, destination, req.Costing)
		if err != nil {
			return nil, err
		}

		if haveClock {
			elapsed := 0.0
			if len(legPath) > 0 {
				elapsed = legPath[len(legPath)-1].CumulativeElapsed
			}
			arrival := clock.Add(time.Duration(elapsed) * time.Second)
			if destination.IsBreak() {
				destination.DateTime = formatDateTime(arrival)
			}
			clock = arrival
		}

		pathEdges = mergeLegForward(pathEdges, legPath)

		if destination.StopType == datastructure.Through {
			through = throughStateFromLeg(o.reader, legPath, destination, false)
			throughLocations = append(throughLocations, destination)
		}

		isTerminal := lk == n-2
		if destination.IsBreak() || isTerminal {
			for i := range pathEdges {
				pathEdges[i].TripId = tripCounter
			}
			trip, err := o.tripBuilder.Build(o.reader, o.modeCosting, pathEdges, segStart, destination, throughLocations)
			if err != nil {
				return nil, err
			}
			result.Trips = append(result.Trips, trip)
			tripCounter++

			pathEdges = nil
			throughLocations = nil
			through = throughState{}
			segStart = destination
		}

		if !isTerminal {
			o.selectEngine(req.Costing, origin, destination).Clear()
		}
	}

	return result, nil
}

func (o *LegOrchestrator) routeArriveBy(req *Request) (*Result, error) {
	locs := req.Locations
	n := len(locs)
	result := &Result{RawRequest: req.Raw}

	clock, haveClock := parseDateTime(locs[n-1].DateTime)

	var pathEdges []datastructure.PathInfo
	var throughLocations []*datastructure.PathLocation
	segEnd := locs[n-1]
	through := throughState{}
	tripCounter := uint32(0)

	for lk := n - 2; lk >= 0; lk-- {
		origin := locs[lk]
		destination := locs[lk+1]

		o.updateOrigin(destination, through)
		through = throughState{}

		legPath, err := o.computeLeg(origin, destination, req.Costing)
		if err != nil {
			return nil, err
		}

		if haveClock {
			elapsed := 0.0
			if len(legPath) > 0 {
				elapsed = legPath[len(legPath)-1].CumulativeElapsed
			}
			departure := clock.Add(-time.Duration(elapsed) * time.Second)
			if origin.IsBreak() {
				origin.DateTime = formatDateTime(departure)
			}
			clock = departure
		}

		pathEdges = mergeLegBackward(pathEdges, legPath)

		if origin.StopType == datastructure.Through {
			through = throughStateFromLeg(o.reader, legPath, origin, true)
			throughLocations = append([]*datastructure.PathLocation{origin}, throughLocations...)
		}

		isTerminal := lk == 0
		if origin.IsBreak() || isTerminal {
			for i := range pathEdges {
				pathEdges[i].TripId = tripCounter
			}
			trip, err := o.tripBuilder.Build(o.reader, o.modeCosting, pathEdges, origin, segEnd, throughLocations)
			if err != nil {
				return nil, err
			}
			result.Trips = append([]*guidance.TripPath{trip}, result.Trips...)
			tripCounter++

			pathEdges = nil
			throughLocations = nil
			through = throughState{}
			segEnd = origin
		}

		if !isTerminal {
			o.selectEngine(req.Costing, origin, destination).Clear()
		}
	}

	return result, nil
}

// throughStateFromLeg derives the through-state recorded at loc from a
// just-computed leg's edge list: the last edge produced when loc is the
// leg's destination (forward iteration), or the first edge produced
// when loc is the leg's origin (reverse/arrive-by iteration), plus
// whether that edge's matching candidate on loc snapped at a node
// boundary.
func throughStateFromLeg(reader datastructure.GraphReader, legPath []datastructure.PathInfo, loc *datastructure.PathLocation, fromOriginEnd bool) throughState {
	if len(legPath) == 0 {
		return throughState{}
	}
	var edgeId datastructure.GraphId
	if fromOriginEnd {
		edgeId = legPath[0].EdgeId
	} else {
		edgeId = legPath[len(legPath)-1].EdgeId
	}
	edge, err := reader.Edge(edgeId)
	if err != nil {
		return throughState{}
	}
	atNode := false
	if pe, ok := loc.FindEdge(edgeId); ok {
		atNode = pe.BeginNode || pe.EndNode
	}
	return throughState{valid: true, edge: edge, edgeId: edgeId, atNode: atNode}
}
