package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/ast"
)

func TestVariableCheckerValidateName(t *testing.T) {
	c := NewVariableChecker()
	assert.NoError(t, c.ValidateName("var"))
	assert.NoError(t, c.ValidateName("var1"))
	assert.NoError(t, c.ValidateName("var_name"))
	assert.NoError(t, c.ValidateName("_var"))

	assert.Error(t, c.ValidateName(""))
	assert.Error(t, c.ValidateName("1var"))
	assert.Error(t, c.ValidateName("var-name"))
	assert.Error(t, c.ValidateName("var name"))
}

func TestVariableCheckerContainsVariable(t *testing.T) {
	c := NewVariableChecker()
	varExpr := ast.NewVariable(ast.Span{}, "test_var")
	assert.True(t, c.ContainsVariable(varExpr, "test_var"))
	assert.False(t, c.ContainsVariable(varExpr, "other_var"))

	litExpr := ast.NewLiteral(ast.Span{}, value.Int(42))
	assert.False(t, c.ContainsVariable(litExpr, "test_var"))
}

func TestVariableCheckerIsArithmeticExpression(t *testing.T) {
	c := NewVariableChecker()
	add := ast.NewBinary(ast.Span{}, ast.OpAdd,
		ast.NewVariable(ast.Span{}, "var"), ast.NewLiteral(ast.Span{}, value.Int(1)))
	assert.True(t, c.IsArithmeticExpression(add, "var"))

	eq := ast.NewBinary(ast.Span{}, ast.OpEqual,
		ast.NewVariable(ast.Span{}, "var"), ast.NewLiteral(ast.Span{}, value.Int(1)))
	assert.False(t, c.IsArithmeticExpression(eq, "var"))
}

func TestVariableCheckerExtractVariables(t *testing.T) {
	c := NewVariableChecker()
	expr := ast.NewBinary(ast.Span{}, ast.OpAdd,
		ast.NewVariable(ast.Span{}, "var1"), ast.NewVariable(ast.Span{}, "var2"))
	vars := c.ExtractVariables(expr)
	assert.Len(t, vars, 2)
	assert.Contains(t, vars, "var1")
	assert.Contains(t, vars, "var2")
}

func TestVariableCheckerValidateScope(t *testing.T) {
	c := NewVariableChecker()
	expr := ast.NewVariable(ast.Span{}, "n")
	aliases := map[string]AliasType{"n": AliasNode}
	assert.NoError(t, c.ValidateScope(expr, aliases))
	assert.Error(t, c.ValidateScope(expr, map[string]AliasType{}))
}
