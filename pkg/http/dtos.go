package http

import "github.com/nextzen/thor/pkg/thor"

type pathInfoDTO struct {
	Mode              uint8   `json:"mode"`
	CumulativeElapsed float64 `json:"cumulative_elapsed_seconds"`
	EdgeId            string  `json:"edge_id"`
	TripId            uint32  `json:"trip_id"`
}

type tripDTO struct {
	Shape          string        `json:"shape"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
	Edges          []pathInfoDTO `json:"edges"`
}

type routeResponseDTO struct {
	RawRequest string    `json:"raw_request"`
	Trips      []tripDTO `json:"trips"`
}

type errorResponseDTO struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// toResponse serializes a thor.Result into the wire shape: the raw
// request string first, then one trip per emitted TripPath, in travel
// order.
func toResponse(result *thor.Result) routeResponseDTO {
	resp := routeResponseDTO{RawRequest: result.RawRequest}
	for _, trip := range result.Trips {
		edges := make([]pathInfoDTO, len(trip.Edges))
		for i, e := range trip.Edges {
			edges[i] = pathInfoDTO{
				Mode:              uint8(e.Mode),
				CumulativeElapsed: e.CumulativeElapsed,
				EdgeId:            e.EdgeId.String(),
				TripId:            e.TripId,
			}
		}
		resp.Trips = append(resp.Trips, tripDTO{
			Shape:          trip.Shape,
			ElapsedSeconds: trip.ElapsedSeconds,
			Edges:          edges,
		})
	}
	return resp
}
