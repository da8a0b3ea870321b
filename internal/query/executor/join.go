package executor

import (
	"context"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/planner"
)

// JoinExecutor equi-joins its two children on the column names in
// JoinInfo.On, the plan node a pipe statement lowers to when it
// correlates a MATCH result with a preceding result set.
type JoinExecutor struct {
	lifecycle
	info  planner.JoinInfo
	left  Executor
	right Executor
}

func NewJoinExecutor(info planner.JoinInfo, left, right Executor) *JoinExecutor {
	return &JoinExecutor{info: info, left: left, right: right}
}

func (e *JoinExecutor) Execute(ctx context.Context) (ExecutionResult, error) {
	lres, err := childOf(ctx, e.left)
	if err != nil {
		return ExecutionResult{}, err
	}
	rres, err := childOf(ctx, e.right)
	if err != nil {
		return ExecutionResult{}, err
	}
	lcols, lrows := rowsOf(lres)
	rcols, rrows := rowsOf(rres)

	lidx, err := columnIndexes(lcols, e.info.On)
	if err != nil {
		return ExecutionResult{}, err
	}
	ridx, err := columnIndexes(rcols, e.info.On)
	if err != nil {
		return ExecutionResult{}, err
	}

	outCols := append(append([]string{}, lcols...), rcols...)
	rightNulls := make([]value.Value, len(rcols))
	for i := range rightNulls {
		rightNulls[i] = value.Null()
	}
	leftNulls := make([]value.Value, len(lcols))
	for i := range leftNulls {
		leftNulls[i] = value.Null()
	}

	rightByKey := make(map[string][][]value.Value)
	for _, rrow := range rrows {
		k := joinKey(rrow, ridx)
		rightByKey[k] = append(rightByKey[k], rrow)
	}
	rightMatched := make(map[string]bool, len(rrows))

	var out [][]value.Value
	for _, lrow := range lrows {
		k := joinKey(lrow, lidx)
		matches := rightByKey[k]
		if len(matches) == 0 {
			if e.info.Kind != planner.JoinLeftOuter {
				continue
			}
			out = append(out, append(append([]value.Value{}, lrow...), rightNulls...))
			continue
		}
		for _, rrow := range matches {
			rightMatched[k] = true
			out = append(out, append(append([]value.Value{}, lrow...), rrow...))
		}
	}
	if e.info.Kind == planner.JoinRightOuter {
		for k, matches := range rightByKey {
			if rightMatched[k] {
				continue
			}
			for _, rrow := range matches {
				out = append(out, append(append([]value.Value{}, leftNulls...), rrow...))
			}
		}
	}

	e.recordRows(len(out), 0)
	return RowsResult(outCols, out), nil
}

func columnIndexes(cols []string, on []string) ([]int, error) {
	idx := make([]int, len(on))
	for i, name := range on {
		found := -1
		for ci, c := range cols {
			if c == name {
				found = ci
				break
			}
		}
		if found < 0 {
			return nil, errkit.NewQueryError(errkit.QueryExecutionError, "join column "+name+" not found")
		}
		idx[i] = found
	}
	return idx, nil
}

func joinKey(row []value.Value, idx []int) string {
	s := ""
	for _, i := range idx {
		s += row[i].String() + "\x00"
	}
	return s
}
