// Package mapmatcher correlates a raw GPS trace to graph edges,
// serving as the matcher collaborator the map-match assembler delegates
// to. It is a greedy, nearest-candidate matcher: rather than
// maintaining a posterior over hypothesis paths, it keeps only the
// nearest candidate per point, trading match robustness on noisy traces
// for a much smaller implementation.
package mapmatcher

import "github.com/nextzen/thor/pkg/datastructure"

// Candidate is a snap of one trace point onto one edge.
type Candidate struct {
	EdgeId datastructure.GraphId
	Dist   float64 // fractional position along the edge, [0,1]
}

// MatchResult is one trace point's outcome: the original point and the
// edge it was matched to, if any (Found is false when no candidate edge
// fell within search radius of the point).
type MatchResult struct {
	Point   datastructure.Coordinate
	Matched Candidate
	Found   bool
}
