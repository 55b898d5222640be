package geo

import (
	"github.com/golang/geo/s2"
	"github.com/nextzen/thor/pkg/datastructure"
)

const earthRadiusMeters = 6371000.0

// DistanceApproximator anchors on one point and answers squared-distance
// queries against many others without repeating any trigonometry per
// query - the s2.Point for the anchor is a unit vector, so "distance" to
// another point is just a chord length in that vector space, and only
// needs squaring and a constant rescale. The shape walker re-anchors on
// each candidate end-node and scans many shape points against it.
type DistanceApproximator struct {
	anchor s2.Point
}

func NewDistanceApproximator(c datastructure.Coordinate) DistanceApproximator {
	return DistanceApproximator{anchor: s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))}
}

// DistanceSquaredMeters returns the squared chord distance to c, in
// meters^2. Valid as a monotonic proxy for true distance at the tolerance
// scales the shape walker operates at (edge lengths, not planet-scale).
func (a DistanceApproximator) DistanceSquaredMeters(c datastructure.Coordinate) float64 {
	p := s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
	dx := a.anchor.X - p.X
	dy := a.anchor.Y - p.Y
	dz := a.anchor.Z - p.Z
	chordSq := dx*dx + dy*dy + dz*dz
	return chordSq * earthRadiusMeters * earthRadiusMeters
}

// approxEqualTolMeters is the lat/lng approximate-equality tolerance
// applied when comparing shape vertices to node coordinates. Must stay
// in sync with the precision of the upstream shape generator.
const approxEqualTolMeters = 1.0

// ApproximatelyEqual reports whether a and b are within the shape-walking
// tolerance of each other.
func ApproximatelyEqual(a, b datastructure.Coordinate) bool {
	appr := NewDistanceApproximator(a)
	return appr.DistanceSquaredMeters(b) <= approxEqualTolMeters*approxEqualTolMeters
}

// ShapeWalkSlackMeters is the slack added to an edge's length when
// bounding how far along the shape to scan for its end-node coordinate,
// absorbing the equality tolerance and minor shape variance.
const ShapeWalkSlackMeters = 50.0
