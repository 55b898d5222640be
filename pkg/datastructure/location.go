package datastructure

// StopType marks whether a correlated location terminates a trip segment
// (BREAK) or is merely passed through (THROUGH).
type StopType uint8

const (
	Break StopType = iota
	Through
)

// PathEdge is a candidate edge for snapping a user location to the graph.
type PathEdge struct {
	Id        GraphId
	Dist      float64 // fractional position along the edge, in [0,1]
	BeginNode bool    // snap lies at the edge's begin-node
	EndNode   bool    // snap lies at the edge's end-node
}

func NewPathEdge(id GraphId, dist float64, beginNode, endNode bool) PathEdge {
	return PathEdge{Id: id, Dist: dist, BeginNode: beginNode, EndNode: endNode}
}

// PathLocation is a user-supplied location correlated to the graph.
type PathLocation struct {
	Edges    []PathEdge
	StopType StopType
	// DateTime holds the departure/arrival timestamp associated with this
	// location, if any has been computed or supplied. Stored as a plain
	// string (already-formatted local time) to match the upstream
	// request/response wire contract; the orchestrator parses it only
	// at break boundaries to anchor the schedule.
	DateTime *string
}

func NewPathLocation(edges []PathEdge, stopType StopType) *PathLocation {
	return &PathLocation{Edges: edges, StopType: stopType}
}

func (l *PathLocation) IsBreak() bool {
	return l.StopType == Break
}

// FindEdge reports whether id is among the location's candidate edges
// and returns the matching PathEdge.
func (l *PathLocation) FindEdge(id GraphId) (PathEdge, bool) {
	for _, e := range l.Edges {
		if e.Id.Equal(id) {
			return e, true
		}
	}
	return PathEdge{}, false
}
