package datastructure

// Use categorizes what a directed edge represents. The only category
// the core cares about by name is transit-connection edges, which the
// shape walker skips.
type Use uint8

const (
	UseRoad Use = iota
	UseRamp
	UseTurnChannel
	UseTransitConnection
	UseFootway
)

// EdgeFlags holds the boolean attributes the leg orchestrator and
// shape walker inspect. A plain struct; a DirectedEdge is small and not
// accessed by the million, so bit-packing buys nothing here.
type EdgeFlags struct {
	Shortcut       bool
	UpTransition   bool
	DownTransition bool
	NotThrough     bool
	Restrictions   uint32
}

// DirectedEdge is a one-way road segment.
type DirectedEdge struct {
	id           GraphId
	lengthMeters float64
	endNode      GraphId
	use          Use
	flags        EdgeFlags
	oppLocalIdx  uint32
}

func NewDirectedEdge(id, endNode GraphId, lengthMeters float64, use Use, flags EdgeFlags, oppLocalIdx uint32) *DirectedEdge {
	return &DirectedEdge{
		id:           id,
		lengthMeters: lengthMeters,
		endNode:      endNode,
		use:          use,
		flags:        flags,
		oppLocalIdx:  oppLocalIdx,
	}
}

func (e *DirectedEdge) Id() GraphId {
	return e.id
}

func (e *DirectedEdge) Length() float64 {
	return e.lengthMeters
}

func (e *DirectedEdge) EndNode() GraphId {
	return e.endNode
}

func (e *DirectedEdge) Use() Use {
	return e.use
}

func (e *DirectedEdge) IsShortcut() bool {
	return e.flags.Shortcut
}

func (e *DirectedEdge) IsTransUp() bool {
	return e.flags.UpTransition
}

func (e *DirectedEdge) IsTransDown() bool {
	return e.flags.DownTransition
}

func (e *DirectedEdge) IsTransition() bool {
	return e.flags.UpTransition || e.flags.DownTransition
}

func (e *DirectedEdge) NotThrough() bool {
	return e.flags.NotThrough
}

func (e *DirectedEdge) Restrictions() uint32 {
	return e.flags.Restrictions
}

func (e *DirectedEdge) OpposingLocalIdx() uint32 {
	return e.oppLocalIdx
}

// NodeInfo is a graph node. Outgoing edges of a node are the contiguous
// range [EdgeIndex, EdgeIndex+EdgeCount) within its tile's edge slice.
type NodeInfo struct {
	latLng    Coordinate
	edgeIndex Index
	edgeCount uint32
	density   float64
}

func NewNodeInfo(latLng Coordinate, edgeIndex Index, edgeCount uint32, density float64) *NodeInfo {
	return &NodeInfo{latLng: latLng, edgeIndex: edgeIndex, edgeCount: edgeCount, density: density}
}

func (n *NodeInfo) LatLng() Coordinate {
	return n.latLng
}

func (n *NodeInfo) EdgeIndex() Index {
	return n.edgeIndex
}

func (n *NodeInfo) EdgeCount() uint32 {
	return n.edgeCount
}

func (n *NodeInfo) Density() float64 {
	return n.density
}
