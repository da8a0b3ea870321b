package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/ast"
)

func TestEstimateEqualityUsesStatsWhenAvailable(t *testing.T) {
	stats := NewMemoryStatistics()
	stats.Set("person", "city", PropertyStats{DistinctValues: 20})
	e := NewEstimator(stats)
	assert.InDelta(t, 0.05, e.EstimateEquality("person", "city"), 1e-9)
}

func TestEstimateEqualityFallsBackToDefault(t *testing.T) {
	e := NewEstimator(nil)
	assert.Equal(t, selEquality, e.EstimateEquality("person", "unknown_prop"))
}

func TestEstimateRangeWithBoundsClampsToUpperBound(t *testing.T) {
	e := NewEstimator(nil)
	assert.Equal(t, 0.8, e.EstimateRangeWithBounds(0, 10, 100))
}

func TestEstimateRangeWithBoundsClampsToLowerBound(t *testing.T) {
	e := NewEstimator(nil)
	assert.Equal(t, 0.001, e.EstimateRangeWithBounds(0, 1_000_000, 1))
}

func TestEstimateLikeSelectivityByWildcardPosition(t *testing.T) {
	e := NewEstimator(nil)
	assert.Equal(t, 0.05, e.EstimateLike("exact"))
	assert.InDelta(t, 0.1, e.EstimateLike("prefix%"), 1e-9)
	assert.InDelta(t, 0.2, e.EstimateLike("%suffix"), 1e-9)
	assert.InDelta(t, 0.5, e.EstimateLike("%middle%"), 1e-9)
}

func TestEstimateInCapsAt09(t *testing.T) {
	e := NewEstimator(nil)
	assert.Equal(t, 0.9, e.EstimateIn(20))
}

func TestEstimateNotSelectivityInverts(t *testing.T) {
	e := NewEstimator(nil)
	assert.InDelta(t, 0.9, e.EstimateNot(0.1), 1e-9)
}

func TestEstimateFromExpressionEquality(t *testing.T) {
	stats := NewMemoryStatistics()
	stats.Set("person", "email", PropertyStats{DistinctValues: 1000})
	e := NewEstimator(stats)

	expr := ast.NewBinary(ast.Span{}, ast.OpEqual,
		ast.NewProperty(ast.Span{}, ast.NewVariable(ast.Span{}, "n"), "email"),
		ast.NewLiteral(ast.Span{}, value.String("a@example.com")))

	assert.InDelta(t, 0.001, e.EstimateFromExpression(expr, "person"), 1e-9)
}

func TestEstimateFromExpressionAndCombinesChildren(t *testing.T) {
	e := NewEstimator(nil)
	left := ast.NewLiteral(ast.Span{}, value.Bool(true))
	right := ast.NewLiteral(ast.Span{}, value.Bool(true))
	expr := ast.NewBinary(ast.Span{}, ast.OpAnd, left, right)
	got := e.EstimateFromExpression(expr, "person")
	assert.InDelta(t, (0.1*0.1)/selAndCorr, got, 1e-9)
}

func TestEstimateFromExpressionIsNull(t *testing.T) {
	e := NewEstimator(nil)
	expr := ast.NewUnary(ast.Span{}, ast.OpIsNull, ast.NewVariable(ast.Span{}, "n"))
	assert.Equal(t, selIsNull, e.EstimateFromExpression(expr, "person"))
}
