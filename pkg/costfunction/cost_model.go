package costfunction

import "github.com/nextzen/thor/pkg/datastructure"

// Cost pairs elapsed seconds with the abstract weight the engines
// optimize on, so accumulators can report real travel time separately
// from search cost.
type Cost struct {
	Secs float64
	Cost float64
}

func (c Cost) Scale(frac float64) Cost {
	return Cost{Secs: c.Secs * frac, Cost: c.Cost * frac}
}

// Model is the per-travel-mode cost model. One instance is held per
// TravelMode in the orchestrator's mode-costing array; relaxation
// mutates it in place and that mutation persists across legs within a
// request.
type Model interface {
	EdgeCost(edge *datastructure.DirectedEdge, density float64) Cost
	TransitionCost(edge *datastructure.DirectedEdge, node *datastructure.NodeInfo, predecessor datastructure.EdgeLabel) Cost
	AllowMultiPass() bool
	RelaxHierarchyLimits(relaxFactor, expansionWithinFactor float64)
	DisableHighwayTransitions()
}

// DefaultModel is a reference, time-based Model: edge cost is
// length/speed with a density-derived congestion penalty, transition
// cost is a small fixed table keyed on node density under the current
// hierarchy-relaxation state.
type DefaultModel struct {
	defaultSpeedKPH float64
	allowMultiPass  bool

	relaxed               bool
	relaxFactor           float64
	expansionWithinFactor float64
	highwayTransitionsOff bool
}

func NewDefaultModel(defaultSpeedKPH float64, allowMultiPass bool) *DefaultModel {
	return &DefaultModel{
		defaultSpeedKPH: defaultSpeedKPH,
		allowMultiPass:  allowMultiPass,
	}
}

// speedMPS converts the edge's effective speed (density-derated) to
// meters/sec. Node density acts as a congestion proxy.
func (m *DefaultModel) speedMPS(density float64) float64 {
	speedKPH := m.defaultSpeedKPH
	if density > 0 {
		// Each density unit above 1 derates speed by 5%, floored at
		// 20% of free-flow.
		derate := 1.0 - 0.05*(density-1)
		if derate < 0.2 {
			derate = 0.2
		}
		if derate > 1 {
			derate = 1
		}
		speedKPH *= derate
	}
	return speedKPH * 1000.0 / 3600.0
}

func (m *DefaultModel) EdgeCost(edge *datastructure.DirectedEdge, density float64) Cost {
	if edge == nil {
		return Cost{}
	}
	speed := m.speedMPS(density)
	if speed <= 0 {
		return Cost{Secs: 0, Cost: 0}
	}
	secs := edge.Length() / speed
	return Cost{Secs: secs, Cost: secs}
}

func (m *DefaultModel) TransitionCost(edge *datastructure.DirectedEdge, node *datastructure.NodeInfo, predecessor datastructure.EdgeLabel) Cost {
	if predecessor.Edge == nil || edge == nil {
		return Cost{}
	}
	// Re-entering the edge we just came from costs nothing extra here;
	// the engines already discourage u-turns through their own expansion
	// rules, and an infinite weight would poison the float accumulator.
	if predecessor.PredecessorEdgeId.Equal(edge.Id()) {
		return Cost{Secs: 0, Cost: 0}
	}
	if node != nil && node.Density() > 3 && !m.highwayTransitionsOff {
		return Cost{Secs: 2, Cost: 2}
	}
	return Cost{Secs: 1, Cost: 1}
}

func (m *DefaultModel) AllowMultiPass() bool {
	return m.allowMultiPass
}

func (m *DefaultModel) RelaxHierarchyLimits(relaxFactor, expansionWithinFactor float64) {
	m.relaxed = true
	m.relaxFactor = relaxFactor
	m.expansionWithinFactor = expansionWithinFactor
}

func (m *DefaultModel) DisableHighwayTransitions() {
	m.highwayTransitionsOff = true
}

// Relaxed reports whether RelaxHierarchyLimits has been called, and the
// factors it was last called with. It is not part of the Model
// interface, and the path algorithms in pkg/engine/routing do not read
// it: their search limits do not change with relaxation.
func (m *DefaultModel) Relaxed() (bool, float64, float64) {
	return m.relaxed, m.relaxFactor, m.expansionWithinFactor
}

func (m *DefaultModel) HighwayTransitionsDisabled() bool {
	return m.highwayTransitionsOff
}
