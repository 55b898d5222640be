package datastructure

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// GraphReader resolves a GraphId to its owning tile. It is the core's
// sole I/O boundary into the road network: read-only, owned exclusively
// by one worker/request, may cache or fetch internally.
type GraphReader interface {
	GetGraphTile(id GraphId) (*GraphTile, error)
	// GetEdgeDensity is the tile-level fallback density estimate for an
	// edge, used only when no node context is available.
	GetEdgeDensity(id GraphId) float64
	// GetOpposingEdge resolves the opposing edge of e, fetching the end
	// node's tile if it differs from e's own tile.
	GetOpposingEdge(e *DirectedEdge) (*DirectedEdge, error)
	// Node fetches the NodeInfo for id, resolving its tile first.
	Node(id GraphId) (*NodeInfo, error)
	// Edge fetches the DirectedEdge for id, resolving its tile first.
	Edge(id GraphId) (*DirectedEdge, error)
	// BeginNode resolves the node that owns edge id.
	BeginNode(id GraphId) (*NodeInfo, error)
}

// MemGraphReader is a reference, in-memory GraphReader backed by an
// LRU tile cache. Suitable for tests and small fixtures; a production
// reader would instead memory-map tiles from disk.
type MemGraphReader struct {
	tiles map[tileKey]*GraphTile
	cache *lru.Cache[tileKey, *GraphTile]
	log   *zap.Logger
}

type tileKey struct {
	tileId Index
	level  uint8
}

func NewMemGraphReader(log *zap.Logger, cacheSize int) *MemGraphReader {
	cache, _ := lru.New[tileKey, *GraphTile](cacheSize)
	return &MemGraphReader{
		tiles: make(map[tileKey]*GraphTile),
		cache: cache,
		log:   log,
	}
}

// AddTile registers a tile as if it had been loaded from disk.
func (r *MemGraphReader) AddTile(tile *GraphTile, tileId Index, level uint8) {
	r.tiles[tileKey{tileId, level}] = tile
}

// AllEdges returns every directed edge across every registered tile,
// used by process wiring to build a spatial index over the whole graph
// at startup.
func (r *MemGraphReader) AllEdges() []*DirectedEdge {
	var out []*DirectedEdge
	for _, t := range r.tiles {
		out = append(out, t.AllEdges()...)
	}
	return out
}

func (r *MemGraphReader) GetGraphTile(id GraphId) (*GraphTile, error) {
	key := tileKey{id.TileId(), id.Level()}
	if t, ok := r.cache.Get(key); ok {
		return t, nil
	}
	t, ok := r.tiles[key]
	if !ok {
		return nil, ErrTileNotFound
	}
	r.cache.Add(key, t)
	return t, nil
}

func (r *MemGraphReader) GetEdgeDensity(id GraphId) float64 {
	t, err := r.GetGraphTile(id)
	if err != nil {
		return 0
	}
	return t.EdgeDensity(id)
}

func (r *MemGraphReader) Node(id GraphId) (*NodeInfo, error) {
	t, err := r.GetGraphTile(id)
	if err != nil {
		return nil, err
	}
	n := t.Node(id)
	if n == nil {
		return nil, ErrNodeNotFound
	}
	return n, nil
}

func (r *MemGraphReader) Edge(id GraphId) (*DirectedEdge, error) {
	t, err := r.GetGraphTile(id)
	if err != nil {
		return nil, err
	}
	e := t.DirectedEdge(id)
	if e == nil {
		return nil, ErrEdgeNotFound
	}
	return e, nil
}

func (r *MemGraphReader) BeginNode(id GraphId) (*NodeInfo, error) {
	t, err := r.GetGraphTile(id)
	if err != nil {
		return nil, err
	}
	n := t.BeginNode(id)
	if n == nil {
		return nil, ErrNodeNotFound
	}
	return n, nil
}

func (r *MemGraphReader) GetOpposingEdge(e *DirectedEdge) (*DirectedEdge, error) {
	endNode, err := r.Node(e.EndNode())
	if err != nil {
		return nil, err
	}
	oppId := OpposingEdgeId(e, endNode)
	return r.Edge(oppId)
}
