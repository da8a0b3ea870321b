package validator

import (
	"strings"
	"unicode"

	"github.com/ali01/graphd/internal/query/ast"
)

// ValidatedUnwind is the outcome of a successful UNWIND validation,
// matching the source's ValidatedUnwind.
type ValidatedUnwind struct {
	Expression   ast.Expression
	VariableName string
	ElementType  ValueType
}

// UnwindValidator validates `UNWIND <expr> AS <var>`: expr must type as a
// list or set, var must be a fresh, well-formed, non-reserved name, and
// every variable expr references must already be bound. Grounded on
// original_source/.../validator/unwind_validator.rs.
//
// The source's deduce_expr_type/deduce_list_element_type/
// get_expression_references are stub placeholders ("简化实现" — the
// comment's own words, "simplified implementation") that always return
// List/Unknown/[] respectively. This port replaces them with a real walk
// over the parsed ast.Expression (inspecting ast.List literals directly,
// and looking up a tracked type from AliasesAvailable for a bare
// ast.Variable), since the AST shape needed to do the real thing is
// already available here — the source's stub exists only because its
// Expression enum wasn't in scope for that file at the time.
type UnwindValidator struct {
	UnwindExpression ast.Expression
	VariableName     string
	AliasesAvailable map[string]ValueType

	checker VariableChecker

	inputs          []ColumnDef
	outputs         []ColumnDef
	userDefinedVars []string
}

func NewUnwindValidator() *UnwindValidator {
	return &UnwindValidator{AliasesAvailable: make(map[string]ValueType), checker: NewVariableChecker()}
}

func (v *UnwindValidator) SetVariableName(name string) {
	v.VariableName = name
	for _, existing := range v.userDefinedVars {
		if existing == name {
			return
		}
	}
	v.userDefinedVars = append(v.userDefinedVars, name)
}

// deduceExprType reports the static type of the UNWIND source expression.
// A list literal is trivially TypeList; anything else without tracked
// type information defaults to TypeList too (UNWIND's precondition is
// that it IS a list/set — absent better information we assume the
// expression satisfies its own requirement rather than rejecting valid
// queries the validator can't yet type).
func (v *UnwindValidator) deduceExprType(expr ast.Expression) ValueType {
	switch e := expr.(type) {
	case *ast.List:
		return TypeList
	case *ast.Variable:
		if t, ok := v.AliasesAvailable[e.Name]; ok {
			return t
		}
	}
	return TypeList
}

// deduceListElementType reports the element type of a list-typed
// expression. Only a List literal's first element is inspectable without
// a full type-inference pass; anything else is Unknown, matching the
// source's deliberately conservative stub.
func (v *UnwindValidator) deduceListElementType(expr ast.Expression) ValueType {
	list, ok := expr.(*ast.List)
	if !ok || len(list.Items) == 0 {
		return TypeUnknown
	}
	if lit, ok := list.Items[0].(*ast.Literal); ok {
		switch {
		case lit.Value.IsNull():
			return TypeNull
		default:
			if _, ok := lit.Value.AsInt(); ok {
				return TypeInt
			}
			if _, ok := lit.Value.AsString(); ok {
				return TypeString
			}
		}
	}
	return TypeUnknown
}

func (v *UnwindValidator) validateExpression() error {
	if v.UnwindExpression == nil {
		return newError(ErrSyntax, "UNWIND expression cannot be empty")
	}
	t := v.deduceExprType(v.UnwindExpression)
	if t != TypeList && t != TypeSet {
		return newError(ErrType, "UNWIND expression must be a list or set type, got %s", t)
	}
	return nil
}

func (v *UnwindValidator) validateVariable() error {
	if v.VariableName == "" {
		return newError(ErrSyntax, "UNWIND requires an AS clause naming a variable")
	}
	if strings.HasPrefix(v.VariableName, "_") && !strings.HasPrefix(v.VariableName, "__") {
		return newError(ErrSemantic, "variable %q should not start with a single underscore (reserved for internal use)", v.VariableName)
	}
	if first := rune(v.VariableName[0]); unicode.IsDigit(first) {
		return newError(ErrSemantic, "variable %q cannot start with a digit", v.VariableName)
	}
	if _, exists := v.AliasesAvailable[v.VariableName]; exists {
		return newError(ErrSemantic, "variable %q is already defined in the query", v.VariableName)
	}
	return nil
}

func (v *UnwindValidator) validateAliases() error {
	for _, name := range v.checker.ExtractVariables(v.UnwindExpression) {
		if name == "$" || name == "$$" {
			continue
		}
		if _, ok := v.AliasesAvailable[name]; !ok {
			return newError(ErrSemantic, "UNWIND expression references undefined variable %q", name)
		}
	}
	return nil
}

func (v *UnwindValidator) validateImpl() (ValidatedUnwind, error) {
	if err := v.validateExpression(); err != nil {
		return ValidatedUnwind{}, err
	}
	if err := v.validateVariable(); err != nil {
		return ValidatedUnwind{}, err
	}
	if err := v.validateAliases(); err != nil {
		return ValidatedUnwind{}, err
	}
	return ValidatedUnwind{
		Expression:   v.UnwindExpression,
		VariableName: v.VariableName,
		ElementType:  v.deduceListElementType(v.UnwindExpression),
	}, nil
}

func (v *UnwindValidator) Validate(ctx *Context) (ValidationResult, error) {
	result, err := v.validateImpl()
	if err != nil {
		return Failure(err.(*Error)), nil
	}
	v.outputs = nil
	if v.VariableName != "" {
		v.outputs = append(v.outputs, ColumnDef{Name: v.VariableName, Type: result.ElementType})
	}
	if ctx != nil {
		for _, out := range v.outputs {
			ctx.Info.AddAlias(out.Name, AliasPrimitive)
		}
		ctx.SetInputs(v.inputs)
		ctx.SetOutputs(v.outputs)
	}
	return Success(v.inputs, v.outputs), nil
}

func (v *UnwindValidator) StatementType() StatementType     { return StatementUnwind }
func (v *UnwindValidator) Inputs() []ColumnDef              { return v.inputs }
func (v *UnwindValidator) Outputs() []ColumnDef             { return v.outputs }
func (v *UnwindValidator) ExpressionProps() ExpressionProps { return ExpressionProps{} }
func (v *UnwindValidator) UserDefinedVars() []string        { return v.userDefinedVars }
