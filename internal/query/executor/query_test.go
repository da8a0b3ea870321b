package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/ast"
	"github.com/ali01/graphd/internal/query/planner"
)

// fakeExecutor returns a fixed ExecutionResult, standing in for a plan
// node's upstream output in tests that only care about one operator's
// own row transformation.
type fakeExecutor struct {
	lifecycle
	result ExecutionResult
}

func rowsExec(cols []string, rows [][]value.Value) *fakeExecutor {
	return &fakeExecutor{result: RowsResult(cols, rows)}
}

func (f *fakeExecutor) Execute(context.Context) (ExecutionResult, error) {
	return f.result, nil
}

func TestFilterExecutor(t *testing.T) {
	rows := [][]value.Value{{value.Int(1)}, {value.Int(2)}, {value.Int(3)}}
	child := rowsExec([]string{"n"}, rows)
	cond := ast.NewBinary(noSpan, ast.OpGreater, ast.NewVariable(noSpan, "n"), lit(value.Int(1)))
	f := NewFilterExecutor(planner.FilterInfo{Condition: cond}, child)

	res, err := f.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestProjectExecutor(t *testing.T) {
	rows := [][]value.Value{{value.Int(1), value.Int(2)}}
	child := rowsExec([]string{"a", "b"}, rows)
	info := planner.ProjectInfo{Columns: []planner.ProjectColumn{
		{Expr: ast.NewBinary(noSpan, ast.OpAdd, ast.NewVariable(noSpan, "a"), ast.NewVariable(noSpan, "b")), Alias: "sum"},
	}}
	p := NewProjectExecutor(info, child)

	res, err := p.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"sum"}, res.Columns)
	n, _ := res.Rows[0][0].AsInt()
	assert.Equal(t, int64(3), n)
}

func TestLimitExecutor(t *testing.T) {
	rows := [][]value.Value{{value.Int(1)}, {value.Int(2)}, {value.Int(3)}, {value.Int(4)}}
	child := rowsExec([]string{"n"}, rows)
	l := NewLimitExecutor(planner.LimitInfo{Offset: 1, Count: 2}, child)

	res, err := l.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	n, _ := res.Rows[0][0].AsInt()
	assert.Equal(t, int64(2), n)
}

func TestSortExecutor(t *testing.T) {
	rows := [][]value.Value{{value.Int(3)}, {value.Int(1)}, {value.Int(2)}}
	child := rowsExec([]string{"n"}, rows)
	s := NewSortExecutor(planner.SortInfo{Keys: []planner.SortKey{
		{Expr: ast.NewVariable(noSpan, "n"), Descending: false},
	}}, child)

	res, err := s.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	var got []int64
	for _, r := range res.Rows {
		n, _ := r[0].AsInt()
		got = append(got, n)
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestAggregateExecutorCountAndSum(t *testing.T) {
	rows := [][]value.Value{{value.Int(1)}, {value.Int(2)}, {value.Int(3)}}
	child := rowsExec([]string{"n"}, rows)
	info := planner.AggregateInfo{
		Aggregates: []*ast.Aggregate{
			ast.NewAggregate(noSpan, ast.AggCount, ast.NewVariable(noSpan, "n"), false),
			ast.NewAggregate(noSpan, ast.AggSum, ast.NewVariable(noSpan, "n"), false),
		},
	}
	a := NewAggregateExecutor(info, child)

	res, err := a.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	count, _ := res.Rows[0][0].AsInt()
	assert.Equal(t, int64(3), count)
	sum, _ := res.Rows[0][1].AsFloat()
	assert.Equal(t, 6.0, sum)
}

func TestUnwindExecutor(t *testing.T) {
	list := value.List([]value.Value{value.Int(1), value.Int(2)})
	rows := [][]value.Value{{list}}
	child := rowsExec([]string{"l"}, rows)
	u := NewUnwindExecutor(planner.UnwindInfo{
		Expression: ast.NewVariable(noSpan, "l"),
		Variable:   "x",
	}, child)

	res, err := u.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, []string{"l", "x"}, res.Columns)
}

func TestSetOpExecutorIntersect(t *testing.T) {
	left := rowsExec([]string{"n"}, [][]value.Value{{value.Int(1)}, {value.Int(2)}})
	right := rowsExec([]string{"n"}, [][]value.Value{{value.Int(2)}, {value.Int(3)}})
	op := NewSetOpExecutor(planner.KindIntersect, planner.SetOpInfo{}, left, right)

	res, err := op.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	n, _ := res.Rows[0][0].AsInt()
	assert.Equal(t, int64(2), n)
}

func TestSetOpExecutorUnionDedup(t *testing.T) {
	left := rowsExec([]string{"n"}, [][]value.Value{{value.Int(1)}})
	right := rowsExec([]string{"n"}, [][]value.Value{{value.Int(1)}, {value.Int(2)}})
	op := NewSetOpExecutor(planner.KindUnion, planner.SetOpInfo{All: false}, left, right)

	res, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestJoinExecutorInner(t *testing.T) {
	left := rowsExec([]string{"id", "a"}, [][]value.Value{{value.Int(1), value.String("x")}, {value.Int(2), value.String("y")}})
	right := rowsExec([]string{"id", "b"}, [][]value.Value{{value.Int(1), value.String("z")}})
	j := NewJoinExecutor(planner.JoinInfo{Kind: planner.JoinInner, On: []string{"id"}}, left, right)

	res, err := j.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"id", "a", "id", "b"}, res.Columns)
}

func TestJoinExecutorLeftOuter(t *testing.T) {
	left := rowsExec([]string{"id"}, [][]value.Value{{value.Int(1)}, {value.Int(2)}})
	right := rowsExec([]string{"id"}, [][]value.Value{{value.Int(1)}})
	j := NewJoinExecutor(planner.JoinInfo{Kind: planner.JoinLeftOuter, On: []string{"id"}}, left, right)

	res, err := j.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}
