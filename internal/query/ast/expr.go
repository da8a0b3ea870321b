// Package ast defines the expression and statement trees produced by the
// parser and consumed by the validator, planner, and optimizer. Grounded on
// original_source/.../core/types/expression (the Expression enum used
// throughout the validator files) and original_source/.../query/parser,
// generalized into idiomatic Go: a closed set of concrete struct types
// implementing a single Expression interface, rather than virtual
// dispatch.
package ast

import "github.com/ali01/graphd/internal/core/value"

// Pos is a source position, surviving from the lexer through validation for
// error reporting — see SPEC_FULL's "per-token spans" requirement.
type Pos struct {
	Line, Col int
}

// Span is the [start, end) source range an AST node was parsed from.
type Span struct {
	Start, End Pos
}

// NewSpan matches core/types/span.rs's Span::new.
func NewSpan(start, end Pos) Span { return Span{start, end} }

// SpanOf matches Span::from_position: a zero-width span at a single
// point, used for single-token spans.
func SpanOf(p Pos) Span { return Span{p, p} }

// Merge matches Span::merge: the wider of the two end positions, keeping
// this span's start — used when combining a left and right operand's
// spans into their parent expression's span.
func (s Span) Merge(other Span) Span {
	end := s.End
	if (Pos{}) != other.End && posLess(end, other.End) {
		end = other.End
	}
	return Span{s.Start, end}
}

func posLess(a, b Pos) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Col < b.Col
}

// IsEmpty matches Span::is_empty: true when start and end coincide.
func (s Span) IsEmpty() bool { return s.Start == s.End }

// BinaryOp enumerates the binary operators the grammar accepts. Grounded on
// the operator names referenced throughout validator/helpers/variable_checker.rs
// and strategies/variable_validator.rs (Add/Subtract/Multiply/Divide/Modulo/
// Equal), extended with the comparison and logical operators a property-graph
// query language needs (WHERE clauses, pattern predicates).
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
	OpXor
	OpIn
	OpContains
	OpStartsWith
	OpEndsWith
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulo:
		return "%"
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpXor:
		return "XOR"
	case OpIn:
		return "IN"
	case OpContains:
		return "CONTAINS"
	case OpStartsWith:
		return "STARTS WITH"
	case OpEndsWith:
		return "ENDS WITH"
	default:
		return "?"
	}
}

// IsArithmetic reports whether op combines two numeric operands, matching
// strategies/variable_validator.rs's is_arithmetic_expression_internal.
func (op BinaryOp) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo:
		return true
	default:
		return false
	}
}

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpPos
	OpNot
	OpIsNull
	OpIsNotNull
)

func (op UnaryOp) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpPos:
		return "+"
	case OpNot:
		return "NOT"
	case OpIsNull:
		return "IS NULL"
	case OpIsNotNull:
		return "IS NOT NULL"
	default:
		return "?"
	}
}

func (op UnaryOp) IsArithmetic() bool { return op == OpNeg || op == OpPos }

// Expression is the closed sum type every parsed query expression belongs
// to. Concrete types below implement it; the interface carries only span
// information, matching the parser's "spans survive through validation"
// requirement.
type Expression interface {
	Span() Span
	exprNode()
}

type base struct{ span Span }

func (b base) Span() Span { return b.span }
func (base) exprNode()    {}

// Literal is a constant value embedded in the query text.
type Literal struct {
	base
	Value value.Value
}

func NewLiteral(span Span, v value.Value) *Literal { return &Literal{base{span}, v} }

// Variable references a symbol bound earlier in the statement (a pattern
// alias, a pipe column, an UNWIND binding).
type Variable struct {
	base
	Name string
}

func NewVariable(span Span, name string) *Variable { return &Variable{base{span}, name} }

// Binary is a two-operand expression.
type Binary struct {
	base
	Op          BinaryOp
	Left, Right Expression
}

func NewBinary(span Span, op BinaryOp, left, right Expression) *Binary {
	return &Binary{base{span}, op, left, right}
}

// Unary is a one-operand expression.
type Unary struct {
	base
	Op      UnaryOp
	Operand Expression
}

func NewUnary(span Span, op UnaryOp, operand Expression) *Unary {
	return &Unary{base{span}, op, operand}
}

// Function is a named scalar function call, e.g. id(n) or toInteger(x).
type Function struct {
	base
	Name string
	Args []Expression
}

func NewFunction(span Span, name string, args []Expression) *Function {
	return &Function{base{span}, name, args}
}

// AggregateKind enumerates supported aggregate functions.
type AggregateKind int

const (
	AggCount AggregateKind = iota
	AggSum
	AggAvg
	AggMin
	AggMax
	AggCollect
)

func (k AggregateKind) String() string {
	switch k {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggCollect:
		return "COLLECT"
	default:
		return "?"
	}
}

// Aggregate wraps a single argument expression under an aggregate function,
// e.g. count(n), collect(n.name).
type Aggregate struct {
	base
	Kind     AggregateKind
	Arg      Expression
	Distinct bool
}

func NewAggregate(span Span, kind AggregateKind, arg Expression, distinct bool) *Aggregate {
	return &Aggregate{base{span}, kind, arg, distinct}
}

// Property accesses a field on a vertex, edge, or map-typed expression:
// n.name.
type Property struct {
	base
	Object Expression
	Field  string
}

func NewProperty(span Span, object Expression, field string) *Property {
	return &Property{base{span}, object, field}
}

// Subscript indexes a list/map-typed expression: xs[0], m["key"].
type Subscript struct {
	base
	Collection Expression
	Index      Expression
}

func NewSubscript(span Span, collection, index Expression) *Subscript {
	return &Subscript{base{span}, collection, index}
}

// List is a list literal: [1, 2, 3].
type List struct {
	base
	Items []Expression
}

func NewList(span Span, items []Expression) *List { return &List{base{span}, items} }

// MapPair is one key/value entry of a Map literal.
type MapPair struct {
	Key   string
	Value Expression
}

// Map is a map literal: {name: "Alice", age: 30}.
type Map struct {
	base
	Pairs []MapPair
}

func NewMap(span Span, pairs []MapPair) *Map { return &Map{base{span}, pairs} }

// CaseCondition is one WHEN/THEN arm of a Case expression.
type CaseCondition struct {
	When Expression
	Then Expression
}

// Case is a CASE [test] WHEN ... THEN ... [ELSE ...] END expression.
type Case struct {
	base
	Test       Expression // nil for a searched CASE
	Conditions []CaseCondition
	Default    Expression // nil if no ELSE clause
}

func NewCase(span Span, test Expression, conditions []CaseCondition, def Expression) *Case {
	return &Case{base{span}, test, conditions, def}
}

// Walk calls visit on expr and recursively on every child expression,
// matching the traversal shape of variable_checker.rs's
// collect_variables_internal/contains_variable_internal — one place to add
// a new Expression variant's recursion instead of duplicating it per
// caller.
func Walk(expr Expression, visit func(Expression)) {
	if expr == nil {
		return
	}
	visit(expr)
	switch e := expr.(type) {
	case *Binary:
		Walk(e.Left, visit)
		Walk(e.Right, visit)
	case *Unary:
		Walk(e.Operand, visit)
	case *Function:
		for _, a := range e.Args {
			Walk(a, visit)
		}
	case *Aggregate:
		Walk(e.Arg, visit)
	case *Property:
		Walk(e.Object, visit)
	case *Subscript:
		Walk(e.Collection, visit)
		Walk(e.Index, visit)
	case *List:
		for _, item := range e.Items {
			Walk(item, visit)
		}
	case *Map:
		for _, p := range e.Pairs {
			Walk(p.Value, visit)
		}
	case *Case:
		if e.Test != nil {
			Walk(e.Test, visit)
		}
		for _, c := range e.Conditions {
			Walk(c.When, visit)
			Walk(c.Then, visit)
		}
		if e.Default != nil {
			Walk(e.Default, visit)
		}
	}
}
