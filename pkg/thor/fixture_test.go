package thor

import (
	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"go.uber.org/zap"
)

// linearFixture is a 4-node, one-way-pair-per-segment graph (A-B-C-D) used
// across the orchestrator, shape-walker, and accumulator tests. Every
// segment is 100m with a matching real-world lat/lng delta so the shape
// walker's squared-distance window checks behave sensibly against actual
// node coordinates.
type linearFixture struct {
	reader                       *datastructure.MemGraphReader
	nodeA, nodeB, nodeC, nodeD   datastructure.GraphId
	eAB, eBA, eBC, eCB, eCD, eDC datastructure.GraphId
}

func buildLinearGraph() *linearFixture {
	reader := datastructure.NewMemGraphReader(zap.NewNop(), 16)
	const tileId datastructure.Index = 0
	const level uint8 = 0
	gid := func(i int) datastructure.GraphId { return datastructure.NewGraphId(tileId, level, datastructure.Index(i)) }

	nodes := []*datastructure.NodeInfo{
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0000), 0, 1, 1.0), // A
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0009), 1, 2, 1.0), // B
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0018), 3, 2, 1.0), // C
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0027), 5, 1, 1.0), // D
	}

	// Node indices line up 1:1 with the nodes slice above (A=0,B=1,C=2,D=3);
	// edge ids occupy their own, separately-indexed 0..5 space within the
	// same tile.
	edges := []*datastructure.DirectedEdge{
		datastructure.NewDirectedEdge(gid(0), gid(1), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 0: A->B, opp local0 at B
		datastructure.NewDirectedEdge(gid(1), gid(0), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 1: B->A, opp local0 at A
		datastructure.NewDirectedEdge(gid(2), gid(2), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 2: B->C, opp local0 at C
		datastructure.NewDirectedEdge(gid(3), gid(1), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 1), // 3: C->B, opp local1 at B
		datastructure.NewDirectedEdge(gid(4), gid(3), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 4: C->D, opp local0 at D
		datastructure.NewDirectedEdge(gid(5), gid(2), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 1), // 5: D->C, opp local1 at C
	}

	density := make([]float64, len(edges))
	for i := range density {
		density[i] = 1.0
	}

	tile := datastructure.NewGraphTile(tileId, level, edges, nodes, density)
	reader.AddTile(tile, tileId, level)

	return &linearFixture{
		reader: reader,
		nodeA:  gid(0), nodeB: gid(1), nodeC: gid(2), nodeD: gid(3),
		eAB: gid(0), eBA: gid(1), eBC: gid(2), eCB: gid(3), eCD: gid(4), eDC: gid(5),
	}
}

func modeCostingOf(m costfunction.Model) [4]costfunction.Model {
	return [4]costfunction.Model{m, m, m, m}
}

// disconnectedFixture is two isolated two-node components with no edge
// joining them, used to exercise the relaxation retry ladder's terminal
// no-path outcome.
type disconnectedFixture struct {
	reader   *datastructure.MemGraphReader
	eXY, eZW datastructure.GraphId
}

func buildDisconnectedGraph() *disconnectedFixture {
	reader := datastructure.NewMemGraphReader(zap.NewNop(), 16)
	const tileId datastructure.Index = 0
	const level uint8 = 0
	gid := func(i int) datastructure.GraphId { return datastructure.NewGraphId(tileId, level, datastructure.Index(i)) }

	nodes := []*datastructure.NodeInfo{
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0000), 0, 1, 1.0), // X=0
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0009), 1, 1, 1.0), // Y=1
		datastructure.NewNodeInfo(datastructure.NewCoordinate(1.0000, 0.0000), 2, 1, 1.0), // Z=2
		datastructure.NewNodeInfo(datastructure.NewCoordinate(1.0000, 0.0009), 3, 1, 1.0), // W=3
	}
	edges := []*datastructure.DirectedEdge{
		datastructure.NewDirectedEdge(gid(0), gid(1), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 0: X->Y
		datastructure.NewDirectedEdge(gid(1), gid(0), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 1: Y->X
		datastructure.NewDirectedEdge(gid(2), gid(3), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 2: Z->W
		datastructure.NewDirectedEdge(gid(3), gid(2), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0), // 3: W->Z
	}
	density := make([]float64, len(edges))
	for i := range density {
		density[i] = 1.0
	}
	tile := datastructure.NewGraphTile(tileId, level, edges, nodes, density)
	reader.AddTile(tile, tileId, level)

	return &disconnectedFixture{reader: reader, eXY: gid(0), eZW: gid(2)}
}

// transitionFixture is the linear A-B-C-D graph with the B-C hop split
// across a hierarchy transition: B carries a zero-length transition
// edge onto its co-located twin B2, and the real B-C edge leaves from
// B2. The shape walker must cross the transition without consuming a
// shape point or emitting the transition edge itself.
type transitionFixture struct {
	reader                 *datastructure.MemGraphReader
	nodeA, nodeB, nodeB2   datastructure.GraphId
	nodeC, nodeD           datastructure.GraphId
	eAB, eTrans, eB2C, eCD datastructure.GraphId
}

func buildTransitionGraph() *transitionFixture {
	reader := datastructure.NewMemGraphReader(zap.NewNop(), 16)
	const tileId datastructure.Index = 0
	const level uint8 = 0
	gid := func(i int) datastructure.GraphId { return datastructure.NewGraphId(tileId, level, datastructure.Index(i)) }

	nodes := []*datastructure.NodeInfo{
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0000), 0, 1, 1.0), // A=0
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0009), 1, 2, 1.0), // B=1
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0009), 3, 1, 1.0), // B2=2, co-located with B
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0018), 4, 1, 1.0), // C=3
		datastructure.NewNodeInfo(datastructure.NewCoordinate(0.0000, 0.0027), 5, 1, 1.0), // D=4
	}
	edges := []*datastructure.DirectedEdge{
		datastructure.NewDirectedEdge(gid(0), gid(1), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0),                     // 0: A->B
		datastructure.NewDirectedEdge(gid(1), gid(0), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0),                     // 1: B->A
		datastructure.NewDirectedEdge(gid(2), gid(2), 0.0, datastructure.UseRoad, datastructure.EdgeFlags{UpTransition: true}, 0),     // 2: B->B2 transition
		datastructure.NewDirectedEdge(gid(3), gid(3), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0),                     // 3: B2->C
		datastructure.NewDirectedEdge(gid(4), gid(4), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0),                     // 4: C->D, opposing is D's local 0
		datastructure.NewDirectedEdge(gid(5), gid(3), 100.0, datastructure.UseRoad, datastructure.EdgeFlags{}, 0),                     // 5: D->C
	}
	density := make([]float64, len(edges))
	for i := range density {
		density[i] = 1.0
	}
	tile := datastructure.NewGraphTile(tileId, level, edges, nodes, density)
	reader.AddTile(tile, tileId, level)

	return &transitionFixture{
		reader: reader,
		nodeA:  gid(0), nodeB: gid(1), nodeB2: gid(2), nodeC: gid(3), nodeD: gid(4),
		eAB: gid(0), eTrans: gid(2), eB2C: gid(3), eCD: gid(4),
	}
}
