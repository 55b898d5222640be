package datastructure

// TravelMode indexes into a parallel array of cost models, one per mode.
type TravelMode uint8

const (
	ModeDrive TravelMode = iota
	ModeBicycle
	ModePedestrian
	ModeTransit
)

// PathInfo is one output entry per edge of an assembled route.
//
// Invariants: CumulativeElapsed is non-decreasing along a []PathInfo;
// adjacent entries never share an EdgeId.
type PathInfo struct {
	Mode              TravelMode
	CumulativeElapsed float64 // seconds, rounded to the nearest integer at emission
	EdgeId            GraphId
	TripId            uint32
}

func NewPathInfo(mode TravelMode, cumulativeElapsed float64, edgeId GraphId, tripId uint32) PathInfo {
	return PathInfo{
		Mode:              mode,
		CumulativeElapsed: cumulativeElapsed,
		EdgeId:            edgeId,
		TripId:            tripId,
	}
}

// EdgeLabel is a lightweight predecessor descriptor passed to
// transition-cost computation. It carries no search state - it exists
// purely to let a cost model compute the cost of transitioning onto the
// current edge from its predecessor.
type EdgeLabel struct {
	PredecessorEdgeId GraphId
	Edge              *DirectedEdge
	Restrictions      uint32
	OppLocalIdx       uint32
	Mode              TravelMode
}

func NewEdgeLabel(predecessorEdgeId GraphId, edge *DirectedEdge, mode TravelMode) EdgeLabel {
	restrictions := uint32(0)
	oppLocalIdx := uint32(0)
	if edge != nil {
		restrictions = edge.Restrictions()
		oppLocalIdx = edge.OpposingLocalIdx()
	}
	return EdgeLabel{
		PredecessorEdgeId: predecessorEdgeId,
		Edge:              edge,
		Restrictions:      restrictions,
		OppLocalIdx:       oppLocalIdx,
		Mode:              mode,
	}
}

// EdgeSegment is map-matcher output at a trace point: the edge it snapped
// to, plus the fractional position range it covers on that edge.
type EdgeSegment struct {
	EdgeId GraphId
	Source float64
	Target float64
}

func NewEdgeSegment(edgeId GraphId, source, target float64) EdgeSegment {
	return EdgeSegment{EdgeId: edgeId, Source: source, Target: target}
}
