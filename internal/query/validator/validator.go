// Package validator implements the statement validators that sit between
// the parser and the planner. Grounded on
// original_source/.../query/validator/{sequential_validator.rs,
// pipe_validator.rs,unwind_validator.rs,validation_info.rs} and the
// StatementValidator trait referenced throughout those files: a common
// contract (inputs/outputs/expression-properties/user-defined-vars/errors)
// implemented by one concrete validator per statement kind, dispatched by
// statement type rather than through a shared base class.
package validator

import (
	"fmt"

	"github.com/ali01/graphd/internal/query/ast"
)

// ValueType mirrors the source's ValueType enum used throughout the
// validator files for column and expression typing.
type ValueType int

const (
	TypeUnknown ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeList
	TypeSet
	TypeMap
	TypeVertex
	TypeEdge
	TypePath
	TypeNull
)

func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "BOOL"
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "STRING"
	case TypeList:
		return "LIST"
	case TypeSet:
		return "SET"
	case TypeMap:
		return "MAP"
	case TypeVertex:
		return "VERTEX"
	case TypeEdge:
		return "EDGE"
	case TypePath:
		return "PATH"
	case TypeNull:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// ErrorKind mirrors the source's ValidationErrorType.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota
	ErrSemantic
	ErrType
	ErrVariableNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "SyntaxError"
	case ErrSemantic:
		return "SemanticError"
	case ErrType:
		return "TypeError"
	case ErrVariableNotFound:
		return "VariableNotFound"
	default:
		return "Error"
	}
}

// Error is a single validation failure, matching the source's
// ValidationError { message, error_type }.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    ast.Span
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ColumnDef is one declared input/output column, matching the source's
// ColumnDef { name, type_ }.
type ColumnDef struct {
	Name string
	Type ValueType
}

// ExpressionProps tracks whether a statement's expressions reference
// aggregates or subqueries, mirroring the source's
// ExpressionProps default-constructed struct (fields accumulate as richer
// expression analysis lands; the zero value is always valid).
type ExpressionProps struct {
	HasAggregate bool
	HasSubquery  bool
}

// StatementType enumerates which concrete validator produced a
// ValidationResult, matching the source's StatementType enum used by
// statement_type().
type StatementType int

const (
	StatementSequential StatementType = iota
	StatementPipe
	StatementUnwind
	StatementMatch
	StatementGo
	StatementMutation
	StatementAdmin
)

// ValidationResult is the pass/fail outcome of one validator's Validate
// call, matching the source's ValidationResult::{success,failure}.
type ValidationResult struct {
	OK      bool
	Inputs  []ColumnDef
	Outputs []ColumnDef
	Errors  []*Error
}

func Success(inputs, outputs []ColumnDef) ValidationResult {
	return ValidationResult{OK: true, Inputs: inputs, Outputs: outputs}
}

func Failure(errs ...*Error) ValidationResult {
	return ValidationResult{OK: false, Errors: errs}
}

// StatementValidator is the common contract every concrete validator
// implements, matching the source's StatementValidator trait.
type StatementValidator interface {
	Validate(ctx *Context) (ValidationResult, error)
	StatementType() StatementType
	Inputs() []ColumnDef
	Outputs() []ColumnDef
	ExpressionProps() ExpressionProps
	UserDefinedVars() []string
}

// Context is the AstContext every validator reads from and writes its
// column signatures into for the next pipeline stage, matching the
// source's AstContext used by pipe/sequential/unwind validators'
// set_inputs/set_outputs calls.
type Context struct {
	inputs  []ColumnDef
	outputs []ColumnDef

	// Info accumulates the validator-to-planner handoff data described in
	// SPEC_FULL 4.2 / validation_info.rs, shared across every validator
	// that runs within one statement.
	Info *Info
}

func NewContext() *Context {
	return &Context{Info: NewInfo()}
}

func (c *Context) SetInputs(cols []ColumnDef)  { c.inputs = cols }
func (c *Context) SetOutputs(cols []ColumnDef) { c.outputs = cols }
func (c *Context) Inputs() []ColumnDef         { return c.inputs }
func (c *Context) Outputs() []ColumnDef        { return c.outputs }
