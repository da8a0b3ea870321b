package traversal

import "github.com/ali01/graphd/internal/core/value"

// neighborEdge is one (neighbor vertex id, connecting edge, weight) triple
// produced by expanding a single vertex's frontier.
type neighborEdge struct {
	NeighborID value.Value
	Edge       *value.Edge
	Weight     float64
}

// neighborsWithEdges fetches node_id's incident edges, applies the
// edge-type filter and self-loop dedup, and resolves the neighbor id on
// the requested side of each edge per dir. weight is applied per matched
// edge; pass a nil weight func when the caller doesn't need one (the
// bidirectional BFS and multi-source algorithms ignore edge weight
// entirely).
//
// Every shortest-path algorithm file in the source
// (bidirectional_bfs.rs, dijkstra.rs, a_star.rs) defines an identical
// copy of this method; this port collapses the four copies into one
// shared helper since nothing about the logic actually varies by
// algorithm, only the weight function supplied by the caller.
func neighborsWithEdges(
	reader GraphReader,
	space string,
	nodeID value.Value,
	dir Direction,
	edgeTypes []string,
	weight func(*value.Edge) float64,
) ([]neighborEdge, error) {
	edges, err := reader.GetNodeEdges(space, nodeID, dir)
	if err != nil {
		return nil, err
	}
	edges = filterByType(edges, edgeTypes)

	dedup := NewSelfLoopDedup()
	out := make([]neighborEdge, 0, len(edges))
	for _, e := range edges {
		if !dedup.ShouldInclude(e) {
			continue
		}
		var neighborID value.Value
		switch dir {
		case DirIn:
			if !e.Dst.Equal(nodeID) {
				continue
			}
			neighborID = e.Src
		case DirOut:
			if !e.Src.Equal(nodeID) {
				continue
			}
			neighborID = e.Dst
		default: // DirBoth
			switch {
			case e.Src.Equal(nodeID):
				neighborID = e.Dst
			case e.Dst.Equal(nodeID):
				neighborID = e.Src
			default:
				continue
			}
		}
		w := 0.0
		if weight != nil {
			w = weight(e)
		}
		out = append(out, neighborEdge{NeighborID: neighborID, Edge: e, Weight: w})
	}
	return out, nil
}
