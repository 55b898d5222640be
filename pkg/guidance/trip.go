// Package guidance assembles the trip artifact the leg orchestrator
// (pkg/thor) delegates to once it has a timed edge sequence for a
// break-to-break segment: the TripPathBuilder boundary plus a reference
// implementation that encodes the segment's shape. Turn-by-turn
// narrative synthesis happens downstream.
package guidance

import (
	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/twpayne/go-polyline"
)

// TripPath is the output artifact for one break-to-break segment: the
// timed edge sequence plus enough of the correlated input to let a
// narrative layer (not part of this module) render directions.
type TripPath struct {
	Edges            []datastructure.PathInfo
	Origin           *datastructure.PathLocation
	Destination      *datastructure.PathLocation
	ThroughLocations []*datastructure.PathLocation
	Shape            string
	ElapsedSeconds   float64
}

// TripPathBuilder is the collaborator the leg orchestrator calls on
// each trip emission boundary.
type TripPathBuilder interface {
	Build(
		reader datastructure.GraphReader,
		modeCosting [4]costfunction.Model,
		pathEdges []datastructure.PathInfo,
		legOrigin, legDestination *datastructure.PathLocation,
		throughLocations []*datastructure.PathLocation,
	) (*TripPath, error)
}

// DefaultTripPathBuilder is a reference builder: it walks the kept
// edges' begin/end node coordinates into a coordinate list and encodes
// it as a polyline. Maneuver generation belongs to the narrative layer,
// not here.
type DefaultTripPathBuilder struct{}

func NewDefaultTripPathBuilder() *DefaultTripPathBuilder {
	return &DefaultTripPathBuilder{}
}

func (b *DefaultTripPathBuilder) Build(
	reader datastructure.GraphReader,
	modeCosting [4]costfunction.Model,
	pathEdges []datastructure.PathInfo,
	legOrigin, legDestination *datastructure.PathLocation,
	throughLocations []*datastructure.PathLocation,
) (*TripPath, error) {
	coords := make([][]float64, 0, len(pathEdges)+1)
	for i, pi := range pathEdges {
		edge, err := reader.Edge(pi.EdgeId)
		if err != nil {
			continue
		}
		if i == 0 {
			if beginNode, err := reader.BeginNode(pi.EdgeId); err == nil {
				ll := beginNode.LatLng()
				coords = append(coords, []float64{ll.GetLat(), ll.GetLon()})
			}
		}
		endNode, err := reader.Node(edge.EndNode())
		if err != nil {
			continue
		}
		ll := endNode.LatLng()
		coords = append(coords, []float64{ll.GetLat(), ll.GetLon()})
	}

	var elapsed float64
	if len(pathEdges) > 0 {
		elapsed = pathEdges[len(pathEdges)-1].CumulativeElapsed
	}

	return &TripPath{
		Edges:            pathEdges,
		Origin:           legOrigin,
		Destination:      legDestination,
		ThroughLocations: throughLocations,
		Shape:            string(polyline.EncodeCoords(coords)),
		ElapsedSeconds:   elapsed,
	}, nil
}
