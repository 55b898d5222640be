package datastructure

import "fmt"

// Index is the common integer handle used across the graph primitives.
type Index uint32

const InvalidIndex Index = ^Index(0)

// GraphId is an opaque handle for an entity (node or edge) inside a
// tiled road network graph: (tile, hierarchy level, index within tile).
type GraphId struct {
	tileId Index
	level  uint8
	index  Index
}

func NewGraphId(tileId Index, level uint8, index Index) GraphId {
	return GraphId{tileId: tileId, level: level, index: index}
}

// InvalidGraphId is the zero-value-distinct sentinel for "no id".
var InvalidGraphId = GraphId{tileId: InvalidIndex, level: 0, index: InvalidIndex}

func (g GraphId) TileId() Index {
	return g.tileId
}

func (g GraphId) Level() uint8 {
	return g.level
}

func (g GraphId) Index() Index {
	return g.index
}

func (g GraphId) IsValid() bool {
	return g.tileId != InvalidIndex && g.index != InvalidIndex
}

func (g GraphId) String() string {
	return fmt.Sprintf("%d/%d/%d", g.tileId, g.level, g.index)
}

// Equal is structural equality on (tile, level, index).
func (g GraphId) Equal(other GraphId) bool {
	return g.tileId == other.tileId && g.level == other.level && g.index == other.index
}
