// Package traversal implements the graph traversal and shortest-path
// engine: bidirectional BFS, Dijkstra, A*, multi-source shortest path, and
// k-hop subgraph extraction. Grounded file-for-file on
// original_source/.../query/executor/data_processing/graph_traversal/
// algorithms/{types,traits,bidirectional_bfs,dijkstra,a_star,
// multi_shortest_path,subgraph_executor}.rs.
package traversal

import (
	"math"

	"github.com/ali01/graphd/internal/core/value"
)

// Direction selects which edges a neighbor expansion follows relative to
// the pivot vertex, matching the source's EdgeDirection.
type Direction int

const (
	DirOut Direction = iota
	DirIn
	DirBoth
)

func (d Direction) String() string {
	switch d {
	case DirOut:
		return "OUT"
	case DirIn:
		return "IN"
	case DirBoth:
		return "BOTH"
	default:
		return "UNKNOWN"
	}
}

// GraphReader is the narrow read-only slice of the storage client contract
// every traversal algorithm needs: fetch a vertex by id, and fetch the
// edges incident on a vertex in a given direction. The full storage client
// contract (vertex/edge CRUD, scan, transactional writes) lives in
// internal/storage; traversal only ever reads, so it depends on this
// subset rather than the whole contract, avoiding a needless build-order
// dependency on the larger package.
type GraphReader interface {
	GetVertex(space string, vid value.Value) (*value.Vertex, error)
	GetNodeEdges(space string, vid value.Value, dir Direction) ([]*value.Edge, error)
}

// SelfLoopDedup tracks which (edge_type, ranking) self-loops have already
// been emitted during one frontier expansion, so a vertex with a self-loop
// edge is not offered as its own neighbor more than once. Non-self-loop
// edges always pass through.
type SelfLoopDedup struct {
	seen map[selfLoopKey]struct{}
}

type selfLoopKey struct {
	edgeType string
	ranking  int64
}

func NewSelfLoopDedup() *SelfLoopDedup {
	return &SelfLoopDedup{seen: make(map[selfLoopKey]struct{})}
}

// ShouldInclude reports whether edge should be included in this frontier
// expansion: true on first sight of a given self-loop key, or always true
// for a non-self-loop edge.
func (d *SelfLoopDedup) ShouldInclude(edge *value.Edge) bool {
	if !edge.IsSelfLoop() {
		return true
	}
	key := selfLoopKey{edgeType: edge.EdgeType, ranking: edge.Ranking}
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Stats accumulates per-run algorithm telemetry, matching AlgorithmStats.
type Stats struct {
	NodesVisited    int
	EdgesTraversed  int
	ExecutionTimeMS int64
}

func (s *Stats) IncrementNodesVisited()       { s.NodesVisited++ }
func (s *Stats) IncrementEdgesTraversed(n int) { s.EdgesTraversed += n }

// WeightConfig selects how an algorithm derives a numeric edge weight,
// matching EdgeWeightConfig.
type WeightConfig struct {
	kind     weightKind
	property string
}

type weightKind int

const (
	weightUnweighted weightKind = iota
	weightRanking
	weightProperty
)

func UnweightedConfig() WeightConfig           { return WeightConfig{kind: weightUnweighted} }
func RankingWeightConfig() WeightConfig        { return WeightConfig{kind: weightRanking} }
func PropertyWeightConfig(name string) WeightConfig {
	return WeightConfig{kind: weightProperty, property: name}
}

func (w WeightConfig) IsWeighted() bool { return w.kind != weightUnweighted }

// Weight derives the numeric weight of edge under this configuration.
// Absent or non-numeric properties default to 1, matching the source's
// unwrap_or(1.0).
func (w WeightConfig) Weight(edge *value.Edge) float64 {
	switch w.kind {
	case weightRanking:
		return float64(edge.Ranking)
	case weightProperty:
		if v, ok := edge.Properties[w.property]; ok {
			if f, ok := v.AsNumeric(); ok {
				return f
			}
		}
		return 1.0
	default:
		return 1.0
	}
}

// Heuristic computes an admissible estimate of remaining cost for A*,
// matching HeuristicFunction. The zero value is the Zero heuristic
// (reduces A* to Dijkstra).
type Heuristic struct {
	kind        heuristicKind
	latProp     string
	lonProp     string
	scaleFactor float64
}

type heuristicKind int

const (
	heuristicZero heuristicKind = iota
	heuristicPropertyDistance
	heuristicScaleFactor
)

func ZeroHeuristic() Heuristic { return Heuristic{kind: heuristicZero} }

func PropertyDistanceHeuristic(latProp, lonProp string) Heuristic {
	return Heuristic{kind: heuristicPropertyDistance, latProp: latProp, lonProp: lonProp}
}

func ScaleFactorHeuristic(factor float64) Heuristic {
	return Heuristic{kind: heuristicScaleFactor, scaleFactor: factor}
}

func (h Heuristic) IsZero() bool { return h.kind == heuristicZero }

// Evaluate computes the heuristic value between current and target given
// their property maps (either may be nil, treated as empty).
func (h Heuristic) Evaluate(currentProps, targetProps map[string]value.Value) float64 {
	switch h.kind {
	case heuristicZero:
		return 0.0
	case heuristicPropertyDistance:
		cLat, cLon := coords(currentProps, h.latProp, h.lonProp)
		tLat, tLon := coords(targetProps, h.latProp, h.lonProp)
		dLat := cLat - tLat
		dLon := cLon - tLon
		return math.Sqrt(dLat*dLat + dLon*dLon)
	case heuristicScaleFactor:
		return h.scaleFactor
	default:
		return 0.0
	}
}

func coords(props map[string]value.Value, latProp, lonProp string) (float64, float64) {
	get := func(name string) float64 {
		if props == nil {
			return 0
		}
		v, ok := props[name]
		if !ok {
			return 0
		}
		f, _ := v.AsNumeric()
		return f
	}
	return get(latProp), get(lonProp)
}

// Context bundles the common knobs every traversal algorithm accepts,
// matching AlgorithmContext.
type Context struct {
	MaxDepth       *int
	Limit          int
	SingleShortest bool
	NoLoop         bool
}

func NewContext() Context {
	return Context{Limit: intMax, NoLoop: true}
}

const intMax = int(^uint(0) >> 1)

// filterByType returns edges whose EdgeType is in types, or all edges if
// types is nil (no filter).
func filterByType(edges []*value.Edge, types []string) []*value.Edge {
	if types == nil {
		return edges
	}
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	out := edges[:0:0]
	for _, e := range edges {
		if _, ok := allowed[e.EdgeType]; ok {
			out = append(out, e)
		}
	}
	return out
}
