package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/ast"
)

func listExpr(items ...value.Value) ast.Expression {
	exprs := make([]ast.Expression, len(items))
	for i, v := range items {
		exprs[i] = ast.NewLiteral(ast.Span{}, v)
	}
	return ast.NewList(ast.Span{}, exprs)
}

func TestUnwindValidatorRejectsNonListExpression(t *testing.T) {
	v := NewUnwindValidator()
	v.UnwindExpression = ast.NewVariable(ast.Span{}, "scalar")
	v.AliasesAvailable["scalar"] = TypeInt
	v.SetVariableName("x")

	_, err := v.validateImpl()
	require.Error(t, err)
	assert.Equal(t, ErrType, err.(*Error).Kind)
}

func TestUnwindValidatorAcceptsListExpression(t *testing.T) {
	v := NewUnwindValidator()
	v.UnwindExpression = listExpr(value.Int(1), value.Int(2))
	v.SetVariableName("x")

	result, err := v.validateImpl()
	require.NoError(t, err)
	assert.Equal(t, "x", result.VariableName)
	assert.Equal(t, TypeInt, result.ElementType)
}

func TestUnwindValidatorRejectsShadowedVariable(t *testing.T) {
	v := NewUnwindValidator()
	v.UnwindExpression = listExpr(value.Int(1))
	v.AliasesAvailable["n"] = TypeVertex
	v.SetVariableName("n")

	_, err := v.validateImpl()
	require.Error(t, err)
}

func TestUnwindValidatorRejectsSingleUnderscorePrefix(t *testing.T) {
	v := NewUnwindValidator()
	v.UnwindExpression = listExpr(value.Int(1))
	v.SetVariableName("_reserved")

	_, err := v.validateImpl()
	require.Error(t, err)
}

func TestUnwindValidatorRejectsUndefinedReferencedVariable(t *testing.T) {
	v := NewUnwindValidator()
	v.UnwindExpression = ast.NewVariable(ast.Span{}, "undefined")
	v.SetVariableName("x")

	_, err := v.validateImpl()
	require.Error(t, err)
}

func TestUnwindValidatorValidateProducesOutputColumn(t *testing.T) {
	v := NewUnwindValidator()
	v.UnwindExpression = listExpr(value.String("a"))
	v.SetVariableName("x")

	result, err := v.Validate(NewContext())
	require.NoError(t, err)
	require.True(t, result.OK)
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, "x", result.Outputs[0].Name)
	assert.Equal(t, TypeString, result.Outputs[0].Type)
}
