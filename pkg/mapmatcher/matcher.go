package mapmatcher

import (
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/geo"
	"github.com/nextzen/thor/pkg/spatialindex"
	"go.uber.org/zap"
)

// Matcher is the collaborator the map-match assembler depends on: it
// exposes the graph reader it matched against and the already-computed
// match sequence for the trace it was given.
type Matcher interface {
	Mapmatching(trace []datastructure.Coordinate) ([]MatchResult, error)
	GraphReader() datastructure.GraphReader
}

// GreedyMHTMatcher is a reference Matcher: for each trace point it
// queries the spatial index for nearby edges, projects the point onto
// each candidate, and keeps the closest one.
type GreedyMHTMatcher struct {
	reader         datastructure.GraphReader
	rt             *spatialindex.Rtree
	searchRadiusKM float64
	log            *zap.Logger
}

func NewGreedyMHTMatcher(reader datastructure.GraphReader, rt *spatialindex.Rtree, searchRadiusKM float64, log *zap.Logger) *GreedyMHTMatcher {
	return &GreedyMHTMatcher{reader: reader, rt: rt, searchRadiusKM: searchRadiusKM, log: log}
}

func (m *GreedyMHTMatcher) GraphReader() datastructure.GraphReader {
	return m.reader
}

func (m *GreedyMHTMatcher) Mapmatching(trace []datastructure.Coordinate) ([]MatchResult, error) {
	results := make([]MatchResult, len(trace))

	for i, pt := range trace {
		boxes := m.rt.SearchWithinRadius(pt.GetLat(), pt.GetLon(), m.searchRadiusKM)
		if len(boxes) == 0 {
			results[i] = MatchResult{Point: pt, Found: false}
			m.log.Debug("no candidate edge within search radius", zap.Int("trace_index", i))
			continue
		}

		best, bestD2 := Candidate{}, -1.0
		for _, box := range boxes {
			edge, err := m.reader.Edge(box.EdgeId)
			if err != nil {
				continue
			}
			beginNode, err := m.reader.BeginNode(box.EdgeId)
			if err != nil {
				continue
			}
			endNode, err := m.reader.Node(edge.EndNode())
			if err != nil {
				continue
			}
			cand, d2 := projectOntoEdge(pt, beginNode.LatLng(), endNode.LatLng(), box.EdgeId)
			if bestD2 < 0 || d2 < bestD2 {
				best, bestD2 = cand, d2
			}
		}

		if bestD2 < 0 {
			results[i] = MatchResult{Point: pt, Found: false}
			continue
		}
		results[i] = MatchResult{Point: pt, Matched: best, Found: true}
	}
	return results, nil
}

// projectOntoEdge returns the candidate snap (fractional position) and
// squared distance from pt to the nearest point on the segment
// [begin,end], using the point-anchored approximator (pkg/geo) to avoid
// repeating trigonometry per candidate edge.
func projectOntoEdge(pt, begin, end datastructure.Coordinate, edgeId datastructure.GraphId) (Candidate, float64) {
	dLat := end.GetLat() - begin.GetLat()
	dLon := end.GetLon() - begin.GetLon()
	segLenSq := dLat*dLat + dLon*dLon

	var frac float64
	if segLenSq > 0 {
		frac = ((pt.GetLat()-begin.GetLat())*dLat + (pt.GetLon()-begin.GetLon())*dLon) / segLenSq
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
	}

	snap := datastructure.NewCoordinate(begin.GetLat()+frac*dLat, begin.GetLon()+frac*dLon)
	d2 := geo.NewDistanceApproximator(pt).DistanceSquaredMeters(snap)
	return Candidate{EdgeId: edgeId, Dist: frac}, d2
}

// ConstructRoute turns a slice of an already-computed match sequence
// into the ordered EdgeSegment list the map-match assembler consumes,
// collapsing consecutive points matched to the same edge into a single
// segment spanning their observed fractional range.
func ConstructRoute(mm Matcher, results []MatchResult, begin, end int) []datastructure.EdgeSegment {
	if begin < 0 {
		begin = 0
	}
	if end >= len(results) {
		end = len(results) - 1
	}
	if begin > end {
		return nil
	}

	var out []datastructure.EdgeSegment
	for i := begin; i <= end; i++ {
		r := results[i]
		if !r.Found {
			continue
		}
		if len(out) > 0 && out[len(out)-1].EdgeId.Equal(r.Matched.EdgeId) {
			last := &out[len(out)-1]
			if r.Matched.Dist < last.Source {
				last.Source = r.Matched.Dist
			}
			if r.Matched.Dist > last.Target {
				last.Target = r.Matched.Dist
			}
			continue
		}
		out = append(out, datastructure.NewEdgeSegment(r.Matched.EdgeId, r.Matched.Dist, r.Matched.Dist))
	}
	return out
}
