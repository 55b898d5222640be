// Package usecases is the http request layer: DTO validation, location
// correlation against the spatial index, and translation into
// pkg/thor's Request/Result types.
package usecases

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/guidance"
	"github.com/nextzen/thor/pkg/mapmatcher"
	"github.com/nextzen/thor/pkg/spatialindex"
	"github.com/nextzen/thor/pkg/thor"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"
)

var validate = validator.New()

// LocationDTO is the wire shape of one correlated-location input.
type LocationDTO struct {
	Lat      float64 `json:"lat" validate:"min=-90,max=90"`
	Lon      float64 `json:"lon" validate:"min=-180,max=180"`
	StopType string  `json:"type,omitempty" validate:"omitempty,oneof=break through"`
	DateTime *string `json:"date_time,omitempty"`
}

// RouteRequestDTO is the wire shape of a /route request body.
type RouteRequestDTO struct {
	Locations    []LocationDTO `json:"locations" validate:"required,min=2,dive"`
	Costing      string        `json:"costing" validate:"required"`
	DateTimeType int           `json:"date_time_type" validate:"min=0,max=2"`
}

// TraceRouteRequestDTO is the wire shape of a /trace-route request
// body: a polyline believed to be the geometry of a prior route
// (edge_walk) or a noisy GPS trace (map_snap).
type TraceRouteRequestDTO struct {
	EncodedPolyline string `json:"encoded_polyline" validate:"required"`
	Costing         string `json:"costing" validate:"required"`
	ShapeMatch      string `json:"shape_match,omitempty" validate:"omitempty,oneof=edge_walk map_snap"`
}

// ErrNoCandidateEdge is returned when a location has no graph edge
// within the configured search radius.
var ErrNoCandidateEdge = errors.New("no candidate edge found near location")

// ErrEmptyTrace is returned when a trace decodes to fewer than two
// points.
var ErrEmptyTrace = errors.New("trace must contain at least two points")

// RoutingService wires the http boundary to the routing core: it
// validates requests, correlates raw lat/lng points to candidate edges
// via the spatial index, and delegates to the leg orchestrator (route)
// or the shape walker / map-match assembler (trace-route).
type RoutingService struct {
	orchestrator   *thor.LegOrchestrator
	reader         datastructure.GraphReader
	index          *spatialindex.Rtree
	matcher        mapmatcher.Matcher
	modeCosting    [4]costfunction.Model
	tripBuilder    guidance.TripPathBuilder
	searchRadiusKM float64
	log            *zap.Logger
}

func NewRoutingService(
	orchestrator *thor.LegOrchestrator,
	reader datastructure.GraphReader,
	index *spatialindex.Rtree,
	matcher mapmatcher.Matcher,
	modeCosting [4]costfunction.Model,
	tripBuilder guidance.TripPathBuilder,
	searchRadiusKM float64,
	log *zap.Logger,
) *RoutingService {
	return &RoutingService{
		orchestrator:   orchestrator,
		reader:         reader,
		index:          index,
		matcher:        matcher,
		modeCosting:    modeCosting,
		tripBuilder:    tripBuilder,
		searchRadiusKM: searchRadiusKM,
		log:            log,
	}
}

// Route validates req, correlates its locations to graph edges, and
// runs the leg orchestrator. The long-request log hook lives on the
// orchestrator itself - it covers pathfinding time only, not this
// layer's correlation overhead.
func (s *RoutingService) Route(req RouteRequestDTO) (*thor.Result, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	locations := make([]*datastructure.PathLocation, 0, len(req.Locations))
	for _, l := range req.Locations {
		edges, err := s.correlate(l.Lat, l.Lon)
		if err != nil {
			return nil, err
		}
		stopType := datastructure.Break
		if l.StopType == "through" {
			stopType = datastructure.Through
		}
		loc := datastructure.NewPathLocation(edges, stopType)
		loc.DateTime = l.DateTime
		locations = append(locations, loc)
	}

	return s.orchestrator.Route(&thor.Request{
		Locations:    locations,
		Costing:      req.Costing,
		DateTimeType: thor.DateTimeType(req.DateTimeType),
	})
}

// TraceRoute reconstructs the route underlying a trace. For edge_walk
// the shape is assumed exact and the shape walker re-derives the edge
// sequence directly; a walk mismatch falls back to map matching rather
// than failing the request. For map_snap (the default) the trace is
// map-matched and the match results assembled into a timed sequence.
func (s *RoutingService) TraceRoute(req TraceRouteRequestDTO) (*thor.Result, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	raw, _, err := polyline.DecodeCoords([]byte(req.EncodedPolyline))
	if err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, ErrEmptyTrace
	}
	shape := make([]datastructure.Coordinate, len(raw))
	for i, c := range raw {
		shape[i] = datastructure.NewCoordinate(c[0], c[1])
	}

	mode := thor.CostingMode(req.Costing)

	beginEdges, err := s.correlate(shape[0].GetLat(), shape[0].GetLon())
	if err != nil {
		return nil, err
	}
	endEdges, err := s.correlate(shape[len(shape)-1].GetLat(), shape[len(shape)-1].GetLon())
	if err != nil {
		return nil, err
	}
	begin := datastructure.NewPathLocation(beginEdges, datastructure.Break)
	end := datastructure.NewPathLocation(endEdges, datastructure.Break)

	var pathEdges []datastructure.PathInfo
	if req.ShapeMatch == "edge_walk" {
		walked, ok, err := thor.WalkShape(s.reader, s.modeCosting, mode, []*datastructure.PathLocation{begin, end}, shape)
		if err != nil {
			return nil, err
		}
		if ok {
			pathEdges = walked
		} else {
			s.log.Debug("edge walk failed to match shape, falling back to map matching")
		}
	}

	if pathEdges == nil {
		results, err := s.matcher.Mapmatching(shape)
		if err != nil {
			return nil, err
		}
		pathEdges, err = thor.AssembleMapMatch(s.matcher, results, 0, len(results)-1, s.modeCosting, mode)
		if err != nil {
			return nil, err
		}
	}

	trip, err := s.tripBuilder.Build(s.reader, s.modeCosting, pathEdges, begin, end, nil)
	if err != nil {
		return nil, err
	}
	return &thor.Result{Trips: []*guidance.TripPath{trip}}, nil
}

// correlate finds every candidate edge within the search radius of
// (lat, lon) and projects the point onto each to derive its fractional
// position, mirroring pkg/mapmatcher's projectOntoEdge but kept
// independent since correlation here runs once per discrete location
// rather than once per trace point.
func (s *RoutingService) correlate(lat, lon float64) ([]datastructure.PathEdge, error) {
	boxes := s.index.SearchWithinRadius(lat, lon, s.searchRadiusKM)
	if len(boxes) == 0 {
		return nil, ErrNoCandidateEdge
	}
	pt := datastructure.NewCoordinate(lat, lon)

	out := make([]datastructure.PathEdge, 0, len(boxes))
	for _, box := range boxes {
		edge, err := s.reader.Edge(box.EdgeId)
		if err != nil {
			continue
		}
		beginNode, err := s.reader.BeginNode(box.EdgeId)
		if err != nil {
			continue
		}
		endNode, err := s.reader.Node(edge.EndNode())
		if err != nil {
			continue
		}
		dist := fractionAlong(pt, beginNode.LatLng(), endNode.LatLng())
		out = append(out, datastructure.NewPathEdge(box.EdgeId, dist, dist <= 0, dist >= 1))
	}
	if len(out) == 0 {
		return nil, ErrNoCandidateEdge
	}
	return out, nil
}

func fractionAlong(pt, begin, end datastructure.Coordinate) float64 {
	dLat := end.GetLat() - begin.GetLat()
	dLon := end.GetLon() - begin.GetLon()
	segLenSq := dLat*dLat + dLon*dLon
	if segLenSq == 0 {
		return 0
	}
	frac := ((pt.GetLat()-begin.GetLat())*dLat + (pt.GetLon()-begin.GetLon())*dLon) / segLenSq
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return frac
}
