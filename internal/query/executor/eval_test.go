package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/ast"
)

var noSpan = ast.NewSpan(ast.Pos{}, ast.Pos{})

func lit(v value.Value) *ast.Literal { return ast.NewLiteral(noSpan, v) }

func TestEvalLiteralAndVariable(t *testing.T) {
	v, err := Eval(lit(value.Int(42)), nil)
	require.NoError(t, err)
	n, ok := v.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, err = Eval(ast.NewVariable(noSpan, "missing"), Bindings{})
	assert.Error(t, err)

	v, err = Eval(ast.NewVariable(noSpan, "x"), Bindings{"x": value.Int(7)})
	require.NoError(t, err)
	n, _ = v.AsInt()
	assert.Equal(t, int64(7), n)
}

func TestEvalArithmetic(t *testing.T) {
	expr := ast.NewBinary(noSpan, ast.OpAdd, lit(value.Int(2)), lit(value.Int(3)))
	v, err := Eval(expr, nil)
	require.NoError(t, err)
	n, _ := v.AsInt()
	assert.Equal(t, int64(5), n)

	divByZero := ast.NewBinary(noSpan, ast.OpDivide, lit(value.Int(1)), lit(value.Int(0)))
	_, err = Eval(divByZero, nil)
	assert.Error(t, err)

	mixed := ast.NewBinary(noSpan, ast.OpMultiply, lit(value.Int(2)), lit(value.Float(1.5)))
	v, err = Eval(mixed, nil)
	require.NoError(t, err)
	f, ok := v.AsFloat()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)
}

func TestEvalComparisonAndLogic(t *testing.T) {
	expr := ast.NewBinary(noSpan, ast.OpAnd,
		ast.NewBinary(noSpan, ast.OpLess, lit(value.Int(1)), lit(value.Int(2))),
		ast.NewBinary(noSpan, ast.OpGreaterEqual, lit(value.Int(5)), lit(value.Int(5))),
	)
	v, err := Eval(expr, nil)
	require.NoError(t, err)
	b, _ := v.AsBool()
	assert.True(t, b)

	shortCircuit := ast.NewBinary(noSpan, ast.OpAnd, lit(value.Bool(false)), ast.NewVariable(noSpan, "undefined"))
	v, err = Eval(shortCircuit, Bindings{})
	require.NoError(t, err)
	b, _ = v.AsBool()
	assert.False(t, b)
}

func TestEvalStringOperators(t *testing.T) {
	expr := ast.NewBinary(noSpan, ast.OpStartsWith, lit(value.String("hello world")), lit(value.String("hello")))
	v, err := Eval(expr, nil)
	require.NoError(t, err)
	b, _ := v.AsBool()
	assert.True(t, b)
}

func TestEvalIn(t *testing.T) {
	list := ast.NewList(noSpan, []ast.Expression{lit(value.Int(1)), lit(value.Int(2)), lit(value.Int(3))})
	expr := ast.NewBinary(noSpan, ast.OpIn, lit(value.Int(2)), list)
	v, err := Eval(expr, nil)
	require.NoError(t, err)
	b, _ := v.AsBool()
	assert.True(t, b)
}

func TestEvalPropertyAccess(t *testing.T) {
	vtx := value.NewVertex(value.String("v1"), 1)
	vtx.Properties["name"] = value.String("alice")
	expr := ast.NewProperty(noSpan, ast.NewVariable(noSpan, "n"), "name")
	v, err := Eval(expr, Bindings{"n": value.VertexValue(vtx)})
	require.NoError(t, err)
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "alice", s)

	missing := ast.NewProperty(noSpan, ast.NewVariable(noSpan, "n"), "age")
	v, err = Eval(missing, Bindings{"n": value.VertexValue(vtx)})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestEvalFunctionBuiltins(t *testing.T) {
	v, err := Eval(ast.NewFunction(noSpan, "toInteger", []ast.Expression{lit(value.Float(3.9))}), nil)
	require.NoError(t, err)
	n, _ := v.AsInt()
	assert.Equal(t, int64(3), n)

	v, err = Eval(ast.NewFunction(noSpan, "coalesce", []ast.Expression{lit(value.Null()), lit(value.Int(9))}), nil)
	require.NoError(t, err)
	n, _ = v.AsInt()
	assert.Equal(t, int64(9), n)

	_, err = Eval(ast.NewFunction(noSpan, "nosuchfunction", nil), nil)
	assert.Error(t, err)
}

func TestEvalCase(t *testing.T) {
	caseExpr := ast.NewCase(noSpan, nil, []ast.CaseCondition{
		{When: ast.NewBinary(noSpan, ast.OpEqual, lit(value.Int(1)), lit(value.Int(2))), Then: lit(value.String("no"))},
		{When: ast.NewBinary(noSpan, ast.OpEqual, lit(value.Int(1)), lit(value.Int(1))), Then: lit(value.String("yes"))},
	}, lit(value.String("default")))
	v, err := Eval(caseExpr, nil)
	require.NoError(t, err)
	s, _ := v.AsString()
	assert.Equal(t, "yes", s)
}
