package planner

import (
	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/ast"
	"github.com/ali01/graphd/internal/traversal"
)

// The admin nodes above are grounded directly on retrieved source files.
// The pack's node-file curation (see original_source/_INDEX.md) stopped
// at the DDL nodes; GetVertices..Subgraph are inferred from SPEC_FULL
// 4.3/4.7 and wired against the payload shapes internal/storage and
// internal/traversal already expose, following the same builder-struct
// idiom as the admin payloads above.

// GetVerticesInfo scans vertices of one tag, optionally narrowed to an
// explicit id list and/or a pushed-down filter (SPEC_FULL 4.3/4.4's
// filter-pushdown optimization target).
type GetVerticesInfo struct {
	SpaceName string
	TagName   string
	VIDs      []value.Value // looked up as given; GetVerticesExecutor does not scan by TagName, so nil fetches no vertices
	Filter    ast.Expression
}

func (GetVerticesInfo) planPayload() {}

// GetEdgesInfo scans edges of one edge type, optionally narrowed to
// explicit endpoints and/or a pushed-down filter.
type GetEdgesInfo struct {
	SpaceName string
	EdgeName  string
	Keys      []value.EdgeKey // nil means "all edges of this type"
	Filter    ast.Expression
}

func (GetEdgesInfo) planPayload() {}

// TraverseInfo expands from a set of seed vertices across the named edge
// types, matching Cypher/nGQL GO/MATCH-pattern traversal.
type TraverseInfo struct {
	SpaceName string
	StartVIDs []value.Value
	EdgeTypes []string
	Direction traversal.Direction
	MinHops   int
	MaxHops   int
	Filter    ast.Expression
}

func (TraverseInfo) planPayload() {}

// ProjectColumn is one output column of a Project node: an expression
// plus the alias it's bound to.
type ProjectColumn struct {
	Expr  ast.Expression
	Alias string
}

// ProjectInfo evaluates a list of expressions over each input row,
// producing the RETURN/YIELD clause's output columns.
type ProjectInfo struct {
	Columns []ProjectColumn
}

func (ProjectInfo) planPayload() {}

// FilterInfo retains input rows for which Condition evaluates truthy,
// the WHERE clause's plan-node form.
type FilterInfo struct {
	Condition ast.Expression
}

func (FilterInfo) planPayload() {}

// AggregateInfo groups input rows by GroupBy and evaluates Aggregates
// per group.
type AggregateInfo struct {
	GroupBy    []ast.Expression
	Aggregates []*ast.Aggregate
}

func (AggregateInfo) planPayload() {}

// SortKey is one ORDER BY term.
type SortKey struct {
	Expr       ast.Expression
	Descending bool
}

// SortInfo orders input rows by a sequence of keys.
type SortInfo struct {
	Keys []SortKey
}

func (SortInfo) planPayload() {}

// LimitInfo bounds the number of rows flowing out, with an optional
// offset for SKIP/LIMIT pagination.
type LimitInfo struct {
	Offset int64
	Count  int64
}

func (LimitInfo) planPayload() {}

// JoinKind distinguishes inner/left/right outer joins for a Join node.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeftOuter
	JoinRightOuter
)

// JoinInfo equi-joins two input streams on matching column names,
// produced when a pipe statement correlates a MATCH result with a
// second pattern via a shared variable.
type JoinInfo struct {
	Kind JoinKind
	On   []string
}

func (JoinInfo) planPayload() {}

// SetOpInfo marks a Union/Intersect/Subtract node. The three Kinds share
// this payload; the operation itself is the Kind, not a field, since
// nothing else about the node varies.
type SetOpInfo struct {
	All bool // UNION ALL vs UNION (dedup)
}

func (SetOpInfo) planPayload() {}

// UnwindInfo expands a list-typed expression into one row per element,
// binding each to Variable — the execution-time counterpart of
// internal/query/validator's UnwindValidator.
type UnwindInfo struct {
	Expression ast.Expression
	Variable   string
}

func (UnwindInfo) planPayload() {}

// PathAlgorithm selects which internal/traversal implementation a
// ShortestPath node runs.
type PathAlgorithm int

const (
	AlgoBidirectionalBFS PathAlgorithm = iota
	AlgoDijkstra
	AlgoAStar
)

// ShortestPathInfo carries a shortest-path request, matching SPEC_FULL
// 4.7's BiBFS/Dijkstra/A* algorithm selection and internal/traversal's
// WeightConfig/Heuristic knobs.
type ShortestPathInfo struct {
	SpaceName string
	From, To  value.Value
	EdgeTypes []string
	Direction traversal.Direction
	MaxHops   int
	Algorithm PathAlgorithm
	Weight    traversal.WeightConfig
	Heuristic traversal.Heuristic
}

func (ShortestPathInfo) planPayload() {}

// AllPathsInfo carries a FIND ALL PATHS request, matching
// internal/traversal's MultiSourcePath.
type AllPathsInfo struct {
	SpaceName      string
	From, To       []value.Value
	MaxHops        int
	Direction      traversal.Direction
	SingleShortest bool
	Limit          int
}

func (AllPathsInfo) planPayload() {}

// SubgraphInfo carries a GET SUBGRAPH request, matching
// internal/traversal's Subgraph/SubgraphConfig.
type SubgraphInfo struct {
	SpaceName string
	StartVIDs []value.Value
	Steps     int
	Direction traversal.Direction
	EdgeTypes []string
	Limit     int
}

func (SubgraphInfo) planPayload() {}

// --- constructors, one per query-operation Kind. Unlike the admin
// nodes, these carry a meaningful output variable, column list, and
// cost estimate supplied by the planner/optimizer at build time rather
// than a fixed 1.0, so they take those three directly instead of going
// through newAdminNode. ---

func NewGetVertices(outputVar string, cols []string, cost float64, info GetVerticesInfo) *Node {
	return &Node{Kind: KindGetVertices, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewGetEdges(outputVar string, cols []string, cost float64, info GetEdgesInfo) *Node {
	return &Node{Kind: KindGetEdges, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewTraverse(outputVar string, cols []string, cost float64, info TraverseInfo) *Node {
	return &Node{Kind: KindTraverse, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewProject(outputVar string, cols []string, cost float64, info ProjectInfo) *Node {
	return &Node{Kind: KindProject, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewFilter(outputVar string, cols []string, cost float64, info FilterInfo) *Node {
	return &Node{Kind: KindFilter, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewAggregate(outputVar string, cols []string, cost float64, info AggregateInfo) *Node {
	return &Node{Kind: KindAggregate, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewSort(outputVar string, cols []string, cost float64, info SortInfo) *Node {
	return &Node{Kind: KindSort, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewLimit(outputVar string, cols []string, cost float64, info LimitInfo) *Node {
	return &Node{Kind: KindLimit, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewJoin(outputVar string, cols []string, cost float64, info JoinInfo) *Node {
	return &Node{Kind: KindJoin, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewUnion(outputVar string, cols []string, cost float64, info SetOpInfo) *Node {
	return &Node{Kind: KindUnion, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewIntersect(outputVar string, cols []string, cost float64, info SetOpInfo) *Node {
	return &Node{Kind: KindIntersect, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewSubtract(outputVar string, cols []string, cost float64, info SetOpInfo) *Node {
	return &Node{Kind: KindSubtract, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewUnwind(outputVar string, cols []string, cost float64, info UnwindInfo) *Node {
	return &Node{Kind: KindUnwind, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewShortestPath(outputVar string, cols []string, cost float64, info ShortestPathInfo) *Node {
	return &Node{Kind: KindShortestPath, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewAllPaths(outputVar string, cols []string, cost float64, info AllPathsInfo) *Node {
	return &Node{Kind: KindAllPaths, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}

func NewSubgraph(outputVar string, cols []string, cost float64, info SubgraphInfo) *Node {
	return &Node{Kind: KindSubgraph, OutputVar: outputVar, ColNames: cols, Cost: cost, Payload: info}
}
