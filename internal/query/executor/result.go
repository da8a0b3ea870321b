package executor

import "github.com/ali01/graphd/internal/core/value"

// ResultKind tags which field of ExecutionResult is populated, matching
// SPEC_FULL 4.5's ExecutionResult variants (Success, Rows, Paths,
// Vertices, Edges, Error).
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultRows
	ResultPaths
	ResultVertices
	ResultEdges
	ResultError
)

// ExecutionResult is the value every executor's Execute returns: a tagged
// union over a bare success marker, a column/row table, a path set, or a
// vertex/edge set. Errors propagate through Execute's error return, not
// through ExecutionResult.Err. Err is set only by ErrorResult below, and
// no executor in this package reads it.
type ExecutionResult struct {
	Kind     ResultKind
	Columns  []string
	Rows     [][]value.Value
	Paths    []*value.Path
	Vertices []*value.Vertex
	Edges    []*value.Edge
	Err      error
}

func Success() ExecutionResult { return ExecutionResult{Kind: ResultSuccess} }

func RowsResult(columns []string, rows [][]value.Value) ExecutionResult {
	return ExecutionResult{Kind: ResultRows, Columns: columns, Rows: rows}
}

func PathsResult(paths []*value.Path) ExecutionResult {
	return ExecutionResult{Kind: ResultPaths, Paths: paths}
}

func VerticesResult(vertices []*value.Vertex) ExecutionResult {
	return ExecutionResult{Kind: ResultVertices, Vertices: vertices}
}

func EdgesResult(edges []*value.Edge) ExecutionResult {
	return ExecutionResult{Kind: ResultEdges, Edges: edges}
}

func ErrorResult(err error) ExecutionResult {
	return ExecutionResult{Kind: ResultError, Err: err}
}

// RowCount reports how many rows a Rows/Vertices/Edges/Paths result
// carries, 0 for Success/Error — the uniform "how big was this" query
// Limit/Sort/memory accounting need regardless of which variant flowed
// through.
func (r ExecutionResult) RowCount() int {
	switch r.Kind {
	case ResultRows:
		return len(r.Rows)
	case ResultPaths:
		return len(r.Paths)
	case ResultVertices:
		return len(r.Vertices)
	case ResultEdges:
		return len(r.Edges)
	default:
		return 0
	}
}
