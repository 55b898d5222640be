// Package spatialindex provides nearest-edge lookup for raw trace
// points, used by the reference map-matcher to build per-point candidate
// sets (from which it keeps the nearest) and by the request layer to
// correlate locations to edges.
package spatialindex

import (
	"math"

	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// EdgeBox indexes one directed edge by the bounding box of its two
// endpoints.
type EdgeBox struct {
	EdgeId datastructure.GraphId
}

type Rtree struct {
	tr  *rtree.RTreeG[EdgeBox]
	log *zap.Logger
}

func NewRtree(log *zap.Logger) *Rtree {
	var tr rtree.RTreeG[EdgeBox]
	return &Rtree{tr: &tr, log: log}
}

// Build indexes every edge in reader, expanding each edge's begin/end
// coordinates by paddingKM in every direction so radius search can use a
// simple bounding-box query before any precise distance computation.
func (rt *Rtree) Build(reader *datastructure.MemGraphReader, edges []*datastructure.DirectedEdge, coordsOf func(datastructure.GraphId) (datastructure.Coordinate, datastructure.Coordinate), paddingKM float64) {
	rt.log.Info("building r-tree spatial index", zap.Int("edges", len(edges)))
	for _, e := range edges {
		begin, end := coordsOf(e.Id())
		minLat := math.Min(begin.GetLat(), end.GetLat())
		minLon := math.Min(begin.GetLon(), end.GetLon())
		maxLat := math.Max(begin.GetLat(), end.GetLat())
		maxLon := math.Max(begin.GetLon(), end.GetLon())

		lowLat, lowLon := geo.GetDestinationPoint(minLat, minLon, 225, paddingKM)
		highLat, highLon := geo.GetDestinationPoint(maxLat, maxLon, 45, paddingKM)

		rt.tr.Insert([2]float64{lowLon, lowLat}, [2]float64{highLon, highLat}, EdgeBox{EdgeId: e.Id()})
	}
	rt.log.Info("r-tree spatial index built")
}

// SearchWithinRadius returns candidate edges whose bounding box
// intersects the query point's radius-km box, capped at 20 results.
func (rt *Rtree) SearchWithinRadius(lat, lon, radiusKM float64) []EdgeBox {
	lowLat, lowLon := geo.GetDestinationPoint(lat, lon, 225, radiusKM)
	highLat, highLon := geo.GetDestinationPoint(lat, lon, 45, radiusKM)

	results := make([]EdgeBox, 0, 10)
	rt.tr.Search([2]float64{lowLon, lowLat}, [2]float64{highLon, highLat}, func(min, max [2]float64, data EdgeBox) bool {
		results = append(results, data)
		return len(results) < 20
	})
	return results
}
