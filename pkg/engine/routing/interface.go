// Package routing implements the low-level shortest-path engines the
// orchestrator in pkg/thor selects between. The orchestrator treats these
// as external collaborators behind the PathAlgorithm interface - it never
// knows which concrete engine answered a leg.
package routing

import (
	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
)

// PathAlgorithm is the engine collaborator the leg orchestrator drives.
// GetBestPath may return an empty slice with a nil error to mean "no
// path" - the orchestrator treats that as a signal to relax and retry,
// not as a failure in itself.
type PathAlgorithm interface {
	GetBestPath(
		origin, destination *datastructure.PathLocation,
		reader datastructure.GraphReader,
		modeCosting [4]costfunction.Model,
		mode datastructure.TravelMode,
	) ([]datastructure.PathInfo, error)

	// Clear resets all search state accumulated by the previous
	// GetBestPath call. The orchestrator calls this between retry passes
	// and between legs.
	Clear()
}
