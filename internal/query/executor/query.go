// Non-admin executors implement the data-flow plan nodes: scans against
// storage.StorageClient, row-level transforms driven by Eval, and the
// set/grouping/ordering operators every query plan bottoms out in.
package executor

import (
	"context"
	"fmt"
	"sort"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/ast"
	"github.com/ali01/graphd/internal/query/planner"
)

// childOf reads a single upstream result, the shape every non-scan
// executor needs before it can do its own row-level work.
func childOf(ctx context.Context, child Executor) (ExecutionResult, error) {
	if child == nil {
		return ExecutionResult{}, errkit.NewQueryError(errkit.QueryExecutionError, "plan node has no child")
	}
	return child.Execute(ctx)
}

// rowsOf normalizes any non-error ExecutionResult variant into a
// columns/rows table, so row-oriented operators (Filter, Project, Sort,
// Limit, Aggregate, Unwind) don't need a type switch of their own — a
// Vertices/Edges/Paths result becomes a single-column table over the
// corresponding value.Value wrapper.
func rowsOf(r ExecutionResult) ([]string, [][]value.Value) {
	switch r.Kind {
	case ResultRows:
		return r.Columns, r.Rows
	case ResultVertices:
		rows := make([][]value.Value, len(r.Vertices))
		for i, v := range r.Vertices {
			rows[i] = []value.Value{value.VertexValue(v)}
		}
		return []string{"v"}, rows
	case ResultEdges:
		rows := make([][]value.Value, len(r.Edges))
		for i, e := range r.Edges {
			rows[i] = []value.Value{value.EdgeValue(e)}
		}
		return []string{"e"}, rows
	case ResultPaths:
		rows := make([][]value.Value, len(r.Paths))
		for i, p := range r.Paths {
			rows[i] = []value.Value{value.PathValue(p)}
		}
		return []string{"p"}, rows
	default:
		return nil, nil
	}
}

func bindRow(cols []string, row []value.Value) Bindings {
	b := make(Bindings, len(cols))
	for i, c := range cols {
		if i < len(row) {
			b[c] = row[i]
		}
	}
	return b
}

// --- GetVertices / GetEdges -------------------------------------------------

// GetVerticesExecutor fetches a fixed vertex-id set directly from storage,
// the plan's leaf for `MATCH (n) WHERE id(n) IN [...]`-shaped lookups.
type GetVerticesExecutor struct {
	lifecycle
	info planner.GetVerticesInfo
	ctx  *Context
}

func NewGetVerticesExecutor(info planner.GetVerticesInfo, ctx *Context) *GetVerticesExecutor {
	return &GetVerticesExecutor{info: info, ctx: ctx}
}

func (e *GetVerticesExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	verts, err := e.ctx.Storage.GetVertices(ctx, e.info.SpaceName, e.info.VIDs)
	if err != nil {
		return ExecutionResult{}, err
	}
	if e.info.Filter != nil {
		filtered := verts[:0]
		for _, v := range verts {
			ok, err := matchesFilter(e.info.Filter, Bindings{"n": value.VertexValue(v)})
			if err != nil {
				return ExecutionResult{}, err
			}
			if ok {
				filtered = append(filtered, v)
			}
		}
		verts = filtered
	}
	e.recordRows(len(verts), 0)
	return VerticesResult(verts), nil
}

// GetEdgesExecutor fetches a fixed edge-key set directly from storage.
type GetEdgesExecutor struct {
	lifecycle
	info planner.GetEdgesInfo
	ctx  *Context
}

func NewGetEdgesExecutor(info planner.GetEdgesInfo, ctx *Context) *GetEdgesExecutor {
	return &GetEdgesExecutor{info: info, ctx: ctx}
}

func (e *GetEdgesExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	edges, err := e.ctx.Storage.GetEdges(ctx, e.info.SpaceName, e.info.Keys)
	if err != nil {
		return ExecutionResult{}, err
	}
	if e.info.Filter != nil {
		filtered := edges[:0]
		for _, ed := range edges {
			ok, err := matchesFilter(e.info.Filter, Bindings{"e": value.EdgeValue(ed)})
			if err != nil {
				return ExecutionResult{}, err
			}
			if ok {
				filtered = append(filtered, ed)
			}
		}
		edges = filtered
	}
	e.recordRows(len(edges), 0)
	return EdgesResult(edges), nil
}

func matchesFilter(expr ast.Expression, b Bindings) (bool, error) {
	v, err := Eval(expr, b)
	if err != nil {
		return false, err
	}
	bv, ok := v.AsBool()
	return ok && bv, nil
}

// --- Filter ------------------------------------------------------------

// FilterExecutor drops rows whose condition evaluates to false or null,
// the executor counterpart of optimizer's predicate pushdown decisions.
type FilterExecutor struct {
	lifecycle
	info  planner.FilterInfo
	child Executor
}

func NewFilterExecutor(info planner.FilterInfo, child Executor) *FilterExecutor {
	return &FilterExecutor{info: info, child: child}
}

func (e *FilterExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	res, err := childOf(ctx, e.child)
	if err != nil {
		return ExecutionResult{}, err
	}
	cols, rows := rowsOf(res)
	var kept [][]value.Value
	for _, row := range rows {
		ok, err := matchesFilter(e.info.Condition, bindRow(cols, row))
		if err != nil {
			return ExecutionResult{}, err
		}
		if ok {
			kept = append(kept, row)
		}
	}
	e.recordRows(len(kept), 0)
	return RowsResult(cols, kept), nil
}

// --- Project -------------------------------------------------------------

// ProjectExecutor evaluates one expression per output column, renaming
// columns per alias and optionally dropping everything not projected.
type ProjectExecutor struct {
	lifecycle
	info  planner.ProjectInfo
	child Executor
}

func NewProjectExecutor(info planner.ProjectInfo, child Executor) *ProjectExecutor {
	return &ProjectExecutor{info: info, child: child}
}

func (e *ProjectExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	res, err := childOf(ctx, e.child)
	if err != nil {
		return ExecutionResult{}, err
	}
	cols, rows := rowsOf(res)
	outCols := make([]string, len(e.info.Columns))
	for i, c := range e.info.Columns {
		outCols[i] = c.Alias
	}
	outRows := make([][]value.Value, len(rows))
	for ri, row := range rows {
		b := bindRow(cols, row)
		out := make([]value.Value, len(e.info.Columns))
		for ci, c := range e.info.Columns {
			v, err := Eval(c.Expr, b)
			if err != nil {
				return ExecutionResult{}, err
			}
			out[ci] = v
		}
		outRows[ri] = out
	}
	e.recordRows(len(outRows), 0)
	return RowsResult(outCols, outRows), nil
}

// --- Limit ---------------------------------------------------------------

// LimitExecutor applies offset/count over the child's row stream.
type LimitExecutor struct {
	lifecycle
	info  planner.LimitInfo
	child Executor
}

func NewLimitExecutor(info planner.LimitInfo, child Executor) *LimitExecutor {
	return &LimitExecutor{info: info, child: child}
}

func (e *LimitExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	res, err := childOf(ctx, e.child)
	if err != nil {
		return ExecutionResult{}, err
	}
	cols, rows := rowsOf(res)
	start := int(e.info.Offset)
	if start > len(rows) {
		start = len(rows)
	}
	end := len(rows)
	if e.info.Count >= 0 && start+int(e.info.Count) < end {
		end = start + int(e.info.Count)
	}
	out := rows[start:end]
	e.recordRows(len(out), 0)
	return RowsResult(cols, out), nil
}

// --- Sort ------------------------------------------------------------------

// SortExecutor orders the child's rows by one or more evaluated keys,
// each independently ascending or descending.
type SortExecutor struct {
	lifecycle
	info  planner.SortInfo
	child Executor
}

func NewSortExecutor(info planner.SortInfo, child Executor) *SortExecutor {
	return &SortExecutor{info: info, child: child}
}

func (e *SortExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	res, err := childOf(ctx, e.child)
	if err != nil {
		return ExecutionResult{}, err
	}
	cols, rows := rowsOf(res)
	keys := make([][]value.Value, len(rows))
	for i, row := range rows {
		b := bindRow(cols, row)
		k := make([]value.Value, len(e.info.Keys))
		for j, sk := range e.info.Keys {
			v, err := Eval(sk.Expr, b)
			if err != nil {
				return ExecutionResult{}, err
			}
			k[j] = v
		}
		keys[i] = k
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		ka, kb := keys[idx[a]], keys[idx[b]]
		for j, sk := range e.info.Keys {
			cmp, err := ka[j].Compare(kb[j])
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if sk.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	if sortErr != nil {
		return ExecutionResult{}, sortErr
	}
	out := make([][]value.Value, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	e.recordRows(len(out), 0)
	return RowsResult(cols, out), nil
}

// --- Aggregate ---------------------------------------------------------

// AggregateExecutor groups rows by the evaluated GroupBy key and folds
// each group through one accumulator per requested aggregate.
type AggregateExecutor struct {
	lifecycle
	info  planner.AggregateInfo
	child Executor
}

func NewAggregateExecutor(info planner.AggregateInfo, child Executor) *AggregateExecutor {
	return &AggregateExecutor{info: info, child: child}
}

type aggAccumulator struct {
	count int64
	sum   float64
	min   *value.Value
	max   *value.Value
	items []value.Value
	seen  map[string]struct{}
}

func newAccumulator() *aggAccumulator {
	return &aggAccumulator{seen: make(map[string]struct{})}
}

func (a *aggAccumulator) add(kind ast.AggregateKind, v value.Value, distinct bool) {
	key := v.String()
	if distinct {
		if _, ok := a.seen[key]; ok {
			return
		}
		a.seen[key] = struct{}{}
	}
	switch kind {
	case ast.AggCount:
		if !v.IsNull() {
			a.count++
		}
	case ast.AggSum, ast.AggAvg:
		if !v.IsNull() {
			if f, ok := asFloat(v); ok {
				a.sum += f
				a.count++
			}
		}
	case ast.AggMin:
		if !v.IsNull() && (a.min == nil || less(v, *a.min)) {
			cp := v
			a.min = &cp
		}
	case ast.AggMax:
		if !v.IsNull() && (a.max == nil || less(*a.max, v)) {
			cp := v
			a.max = &cp
		}
	case ast.AggCollect:
		if !v.IsNull() {
			a.items = append(a.items, v)
		}
	}
}

func less(a, b value.Value) bool {
	cmp, err := a.Compare(b)
	return err == nil && cmp < 0
}

func asFloat(v value.Value) (float64, bool) {
	return v.AsNumeric()
}

func (a *aggAccumulator) result(kind ast.AggregateKind) value.Value {
	switch kind {
	case ast.AggCount:
		return value.Int(a.count)
	case ast.AggSum:
		return value.Float(a.sum)
	case ast.AggAvg:
		if a.count == 0 {
			return value.Null()
		}
		return value.Float(a.sum / float64(a.count))
	case ast.AggMin:
		if a.min == nil {
			return value.Null()
		}
		return *a.min
	case ast.AggMax:
		if a.max == nil {
			return value.Null()
		}
		return *a.max
	case ast.AggCollect:
		return value.List(a.items)
	default:
		return value.Null()
	}
}

func (e *AggregateExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	res, err := childOf(ctx, e.child)
	if err != nil {
		return ExecutionResult{}, err
	}
	cols, rows := rowsOf(res)

	type group struct {
		key   []value.Value
		accs  []*aggAccumulator
	}
	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, row := range rows {
		b := bindRow(cols, row)
		key := make([]value.Value, len(e.info.GroupBy))
		for i, expr := range e.info.GroupBy {
			v, err := Eval(expr, b)
			if err != nil {
				return ExecutionResult{}, err
			}
			key[i] = v
		}
		gkey := groupKey(key)
		g, ok := groups[gkey]
		if !ok {
			g = &group{key: key, accs: make([]*aggAccumulator, len(e.info.Aggregates))}
			for i := range g.accs {
				g.accs[i] = newAccumulator()
			}
			groups[gkey] = g
			order = append(order, gkey)
		}
		for i, agg := range e.info.Aggregates {
			v, err := Eval(agg.Arg, b)
			if err != nil {
				return ExecutionResult{}, err
			}
			g.accs[i].add(agg.Kind, v, agg.Distinct)
		}
	}

	outCols := make([]string, 0, len(e.info.GroupBy)+len(e.info.Aggregates))
	for i := range e.info.GroupBy {
		outCols = append(outCols, fmt.Sprintf("group_%d", i))
	}
	for i, agg := range e.info.Aggregates {
		outCols = append(outCols, fmt.Sprintf("%s_%d", agg.Kind.String(), i))
	}

	outRows := make([][]value.Value, 0, len(order))
	for _, gkey := range order {
		g := groups[gkey]
		row := make([]value.Value, 0, len(g.key)+len(g.accs))
		row = append(row, g.key...)
		for i, agg := range e.info.Aggregates {
			row = append(row, g.accs[i].result(agg.Kind))
		}
		outRows = append(outRows, row)
	}
	e.recordRows(len(outRows), 0)
	return RowsResult(outCols, outRows), nil
}

func groupKey(key []value.Value) string {
	s := ""
	for _, v := range key {
		s += v.String() + "\x00"
	}
	return s
}

// --- Unwind ----------------------------------------------------------------

// UnwindExecutor expands one list-valued expression per row into one
// output row per element, binding each element to Variable.
type UnwindExecutor struct {
	lifecycle
	info  planner.UnwindInfo
	child Executor
}

func NewUnwindExecutor(info planner.UnwindInfo, child Executor) *UnwindExecutor {
	return &UnwindExecutor{info: info, child: child}
}

func (e *UnwindExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	res, err := childOf(ctx, e.child)
	if err != nil {
		return ExecutionResult{}, err
	}
	cols, rows := rowsOf(res)
	outCols := append(append([]string{}, cols...), e.info.Variable)
	var outRows [][]value.Value
	for _, row := range rows {
		b := bindRow(cols, row)
		v, err := Eval(e.info.Expression, b)
		if err != nil {
			return ExecutionResult{}, err
		}
		items, _ := v.AsList()
		for _, item := range items {
			outRows = append(outRows, append(append([]value.Value{}, row...), item))
		}
	}
	e.recordRows(len(outRows), 0)
	return RowsResult(outCols, outRows), nil
}

// --- Set operations (Union/Intersect/Subtract) -----------------------------

// SetOpExecutor combines two children's row sets by identical row value,
// the shared implementation for Union/Intersect/Subtract plan nodes —
// which operator applies is carried by the node's Kind, not SetOpInfo.
type SetOpExecutor struct {
	lifecycle
	kind  planner.Kind
	info  planner.SetOpInfo
	left  Executor
	right Executor
}

func NewSetOpExecutor(kind planner.Kind, info planner.SetOpInfo, left, right Executor) *SetOpExecutor {
	return &SetOpExecutor{kind: kind, info: info, left: left, right: right}
}

func (e *SetOpExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	lres, err := childOf(ctx, e.left)
	if err != nil {
		return ExecutionResult{}, err
	}
	rres, err := childOf(ctx, e.right)
	if err != nil {
		return ExecutionResult{}, err
	}
	cols, lrows := rowsOf(lres)
	_, rrows := rowsOf(rres)

	rightKeys := make(map[string]int)
	for _, row := range rrows {
		rightKeys[groupKey(row)]++
	}

	var out [][]value.Value
	seen := make(map[string]struct{})
	switch e.kind {
	case planner.KindUnion:
		for _, row := range lrows {
			k := groupKey(row)
			if !e.info.All {
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
			}
			out = append(out, row)
		}
		for _, row := range rrows {
			k := groupKey(row)
			if !e.info.All {
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
			}
			out = append(out, row)
		}
	case planner.KindIntersect:
		for _, row := range lrows {
			k := groupKey(row)
			if rightKeys[k] > 0 {
				if !e.info.All {
					if _, ok := seen[k]; ok {
						continue
					}
					seen[k] = struct{}{}
				}
				out = append(out, row)
			}
		}
	case planner.KindSubtract:
		for _, row := range lrows {
			k := groupKey(row)
			if rightKeys[k] == 0 {
				if !e.info.All {
					if _, ok := seen[k]; ok {
						continue
					}
					seen[k] = struct{}{}
				}
				out = append(out, row)
			}
		}
	default:
		return ExecutionResult{}, errkit.NewQueryError(errkit.QueryExecutionError, fmt.Sprintf("%s is not a set operation", e.kind))
	}
	e.recordRows(len(out), 0)
	return RowsResult(cols, out), nil
}
