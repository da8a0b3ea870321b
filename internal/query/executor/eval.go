// Evaluator implements runtime evaluation of internal/query/ast.Expression
// trees over a single row's variable bindings — the piece Filter/Project/
// Sort/Aggregate all share. Grounded on ast.BinaryOp/UnaryOp's semantics
// (internal/query/ast/expr.go) and internal/query/optimizer/selectivity.go's
// already-established reading of those operator sets, generalized from
// "estimate a selectivity for" to "actually compute."
package executor

import (
	"fmt"
	"strings"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/ast"
)

// Bindings maps a row's in-scope variable names to their current values,
// the runtime counterpart of the validator's alias_map.
type Bindings map[string]value.Value

// Eval evaluates expr against bindings, returning a typed runtime error
// (errkit.QueryExpressionError) rather than panicking on a type mismatch
// or unresolved name, per SPEC_FULL 4.5's "errors propagate as typed
// values, not through panics."
func Eval(expr ast.Expression, bindings Bindings) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Value, nil
	case *ast.Variable:
		v, ok := bindings[e.Name]
		if !ok {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, fmt.Sprintf("unbound variable %q", e.Name))
		}
		return v, nil
	case *ast.Unary:
		return evalUnary(e, bindings)
	case *ast.Binary:
		return evalBinary(e, bindings)
	case *ast.Property:
		return evalProperty(e, bindings)
	case *ast.Subscript:
		return evalSubscript(e, bindings)
	case *ast.List:
		items := make([]value.Value, len(e.Items))
		for i, item := range e.Items {
			v, err := Eval(item, bindings)
			if err != nil {
				return value.Null(), err
			}
			items[i] = v
		}
		return value.List(items), nil
	case *ast.Map:
		m := make(map[string]value.Value, len(e.Pairs))
		for _, p := range e.Pairs {
			v, err := Eval(p.Value, bindings)
			if err != nil {
				return value.Null(), err
			}
			m[p.Key] = v
		}
		return value.Map(m), nil
	case *ast.Case:
		return evalCase(e, bindings)
	case *ast.Function:
		return evalFunction(e, bindings)
	case *ast.Aggregate:
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "aggregate expression outside of an Aggregate plan node")
	default:
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, fmt.Sprintf("unsupported expression node %T", expr))
	}
}

func evalProperty(e *ast.Property, bindings Bindings) (value.Value, error) {
	obj, err := Eval(e.Object, bindings)
	if err != nil {
		return value.Null(), err
	}
	if v, ok := obj.AsVertex(); ok {
		p, ok := v.Properties[e.Field]
		if !ok {
			return value.Null(), nil
		}
		return p, nil
	}
	if edge, ok := obj.AsEdge(); ok {
		p, ok := edge.Properties[e.Field]
		if !ok {
			return value.Null(), nil
		}
		return p, nil
	}
	if m, ok := obj.AsMap(); ok {
		p, ok := m[e.Field]
		if !ok {
			return value.Null(), nil
		}
		return p, nil
	}
	return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, fmt.Sprintf("cannot access field %q of a %s", e.Field, obj.Kind()))
}

func evalSubscript(e *ast.Subscript, bindings Bindings) (value.Value, error) {
	coll, err := Eval(e.Collection, bindings)
	if err != nil {
		return value.Null(), err
	}
	idx, err := Eval(e.Index, bindings)
	if err != nil {
		return value.Null(), err
	}
	items, ok := coll.AsList()
	if !ok {
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "subscript target is not a list")
	}
	n, ok := idx.AsInt()
	if !ok {
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "subscript index is not an integer")
	}
	if n < 0 || int(n) >= len(items) {
		return value.Null(), nil
	}
	return items[n], nil
}

func evalUnary(e *ast.Unary, bindings Bindings) (value.Value, error) {
	operand, err := Eval(e.Operand, bindings)
	if err != nil {
		return value.Null(), err
	}
	switch e.Op {
	case ast.OpIsNull:
		return value.Bool(operand.IsNull()), nil
	case ast.OpIsNotNull:
		return value.Bool(!operand.IsNull()), nil
	case ast.OpNot:
		b, ok := operand.AsBool()
		if !ok {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "NOT applied to a non-boolean")
		}
		return value.Bool(!b), nil
	case ast.OpNeg:
		if f, ok := operand.AsFloat(); ok {
			return value.Float(-f), nil
		}
		if n, ok := operand.AsInt(); ok {
			return value.Int(-n), nil
		}
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "unary - applied to a non-numeric")
	case ast.OpPos:
		return operand, nil
	default:
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "unsupported unary operator")
	}
}

func evalBinary(e *ast.Binary, bindings Bindings) (value.Value, error) {
	// AND/OR short-circuit on the left operand before the right side is
	// even evaluated, matching every SQL/Cypher-family engine's behavior.
	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		left, err := Eval(e.Left, bindings)
		if err != nil {
			return value.Null(), err
		}
		lb, ok := left.AsBool()
		if !ok {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "AND/OR operand is not a boolean")
		}
		if e.Op == ast.OpAnd && !lb {
			return value.Bool(false), nil
		}
		if e.Op == ast.OpOr && lb {
			return value.Bool(true), nil
		}
		right, err := Eval(e.Right, bindings)
		if err != nil {
			return value.Null(), err
		}
		rb, ok := right.AsBool()
		if !ok {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "AND/OR operand is not a boolean")
		}
		return value.Bool(rb), nil
	}

	left, err := Eval(e.Left, bindings)
	if err != nil {
		return value.Null(), err
	}
	right, err := Eval(e.Right, bindings)
	if err != nil {
		return value.Null(), err
	}

	if e.Op.IsArithmetic() {
		return evalArithmetic(e.Op, left, right)
	}

	switch e.Op {
	case ast.OpEqual:
		return value.Bool(left.Equal(right)), nil
	case ast.OpNotEqual:
		return value.Bool(!left.Equal(right)), nil
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		cmp, err := left.Compare(right)
		if err != nil {
			return value.Null(), errkit.WrapQueryError(errkit.QueryExpressionError, "comparison between incompatible types", err)
		}
		return value.Bool(compareMatches(e.Op, cmp)), nil
	case ast.OpXor:
		lb, lok := left.AsBool()
		rb, rok := right.AsBool()
		if !lok || !rok {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "XOR operand is not a boolean")
		}
		return value.Bool(lb != rb), nil
	case ast.OpIn:
		items, ok := right.AsList()
		if !ok {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "IN's right side is not a list")
		}
		for _, item := range items {
			if left.Equal(item) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case ast.OpContains, ast.OpStartsWith, ast.OpEndsWith:
		ls, lok := left.AsString()
		rs, rok := right.AsString()
		if !lok || !rok {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "string operator applied to a non-string")
		}
		switch e.Op {
		case ast.OpContains:
			return value.Bool(strings.Contains(ls, rs)), nil
		case ast.OpStartsWith:
			return value.Bool(strings.HasPrefix(ls, rs)), nil
		default:
			return value.Bool(strings.HasSuffix(ls, rs)), nil
		}
	default:
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "unsupported binary operator")
	}
}

func compareMatches(op ast.BinaryOp, cmp int) bool {
	switch op {
	case ast.OpLess:
		return cmp < 0
	case ast.OpLessEqual:
		return cmp <= 0
	case ast.OpGreater:
		return cmp > 0
	default: // OpGreaterEqual
		return cmp >= 0
	}
}

func evalArithmetic(op ast.BinaryOp, left, right value.Value) (value.Value, error) {
	li, liok := left.AsInt()
	ri, riok := right.AsInt()
	if liok && riok {
		switch op {
		case ast.OpAdd:
			return value.Int(li + ri), nil
		case ast.OpSubtract:
			return value.Int(li - ri), nil
		case ast.OpMultiply:
			return value.Int(li * ri), nil
		case ast.OpDivide:
			if ri == 0 {
				return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "division by zero")
			}
			return value.Int(li / ri), nil
		case ast.OpModulo:
			if ri == 0 {
				return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "modulo by zero")
			}
			return value.Int(li % ri), nil
		}
	}
	lf, lok := left.AsNumeric()
	rf, rok := right.AsNumeric()
	if !lok || !rok {
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "arithmetic operator applied to a non-numeric")
	}
	switch op {
	case ast.OpAdd:
		return value.Float(lf + rf), nil
	case ast.OpSubtract:
		return value.Float(lf - rf), nil
	case ast.OpMultiply:
		return value.Float(lf * rf), nil
	case ast.OpDivide:
		if rf == 0 {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "division by zero")
		}
		return value.Float(lf / rf), nil
	default: // OpModulo on floats
		if rf == 0 {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "modulo by zero")
		}
		return value.Float(fmod(lf, rf)), nil
	}
}

func fmod(a, b float64) float64 {
	return a - b*float64(int64(a/b))
}

func evalCase(e *ast.Case, bindings Bindings) (value.Value, error) {
	var testVal value.Value
	var hasTest bool
	if e.Test != nil {
		v, err := Eval(e.Test, bindings)
		if err != nil {
			return value.Null(), err
		}
		testVal, hasTest = v, true
	}
	for _, cond := range e.Conditions {
		condVal, err := Eval(cond.When, bindings)
		if err != nil {
			return value.Null(), err
		}
		var matched bool
		if hasTest {
			matched = testVal.Equal(condVal)
		} else {
			matched, _ = condVal.AsBool()
		}
		if matched {
			return Eval(cond.Then, bindings)
		}
	}
	if e.Default != nil {
		return Eval(e.Default, bindings)
	}
	return value.Null(), nil
}

// evalFunction implements the small set of scalar builtins the planner's
// Project/Filter nodes rely on; an unrecognized name is a runtime error
// rather than a silent null, so a typo surfaces at execution instead of
// producing a quietly wrong result column.
func evalFunction(e *ast.Function, bindings Bindings) (value.Value, error) {
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := Eval(a, bindings)
		if err != nil {
			return value.Null(), err
		}
		args[i] = v
	}
	switch strings.ToLower(e.Name) {
	case "tointeger":
		if len(args) != 1 {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "toInteger takes one argument")
		}
		if n, ok := args[0].AsInt(); ok {
			return value.Int(n), nil
		}
		if f, ok := args[0].AsFloat(); ok {
			return value.Int(int64(f)), nil
		}
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "toInteger argument is not numeric")
	case "tofloat":
		if len(args) != 1 {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "toFloat takes one argument")
		}
		f, ok := args[0].AsNumeric()
		if !ok {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "toFloat argument is not numeric")
		}
		return value.Float(f), nil
	case "tostring":
		if len(args) != 1 {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "toString takes one argument")
		}
		return value.String(args[0].String()), nil
	case "coalesce":
		for _, a := range args {
			if !a.IsNull() {
				return a, nil
			}
		}
		return value.Null(), nil
	case "size":
		if len(args) != 1 {
			return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "size takes one argument")
		}
		if items, ok := args[0].AsList(); ok {
			return value.Int(int64(len(items))), nil
		}
		if s, ok := args[0].AsString(); ok {
			return value.Int(int64(len(s))), nil
		}
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, "size argument is not a list or string")
	default:
		return value.Null(), errkit.NewQueryError(errkit.QueryExpressionError, fmt.Sprintf("unknown function %q", e.Name))
	}
}
