package validator

import (
	"unicode"

	"github.com/ali01/graphd/internal/query/ast"
)

// VariableChecker validates variable naming and scope. Grounded on
// original_source/.../validator/helpers/variable_checker.rs and
// strategies/variable_validator.rs — the pack retrieved two near-identical
// copies of this logic (one under helpers/, one under strategies/, same
// method names and bodies); this port keeps the single useful copy rather
// than reproducing the duplication.
type VariableChecker struct{}

func NewVariableChecker() VariableChecker { return VariableChecker{} }

// ValidateName checks a variable's lexical form: non-empty, starts with a
// letter or underscore, contains only alphanumerics and underscores, and
// is at most 255 bytes — matching validate_variable_name_format.
func (VariableChecker) ValidateName(name string) error {
	if name == "" {
		return newError(ErrSyntax, "variable name cannot be empty")
	}
	first := rune(name[0])
	if !unicode.IsLetter(first) && first != '_' {
		return newError(ErrSyntax, "variable name must start with a letter or underscore: %q", name)
	}
	for _, c := range name {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return newError(ErrSyntax, "variable name may only contain letters, digits, and underscores: %q", name)
		}
	}
	if len(name) > 255 {
		return newError(ErrSyntax, "variable name too long: %q", name)
	}
	return nil
}

// ValidateScope extracts every variable referenced in expr and checks each
// is both well-formed and present in availableAliases, matching
// validate_variable_scope/validate_variable_usage.
func (c VariableChecker) ValidateScope(expr ast.Expression, availableAliases map[string]AliasType) error {
	for _, name := range c.ExtractVariables(expr) {
		if err := c.ValidateName(name); err != nil {
			return err
		}
		if _, ok := availableAliases[name]; !ok {
			return newError(ErrVariableNotFound, "variable %q is undefined", name)
		}
	}
	return nil
}

// ValidateScopeSimple validates a flat list of variable names without an
// alias-availability check, matching validate_variable_scope_simple.
// Nothing in this package calls it; UnwindValidator checks its target
// variable's name in validateVariable.
func (c VariableChecker) ValidateScopeSimple(names []string) error {
	for _, name := range names {
		if err := c.ValidateName(name); err != nil {
			return err
		}
	}
	return nil
}

// ExtractVariables returns every distinct Variable name referenced within
// expr, in first-occurrence order, matching
// extract_variables/collect_variables_internal's recursive walk.
func (VariableChecker) ExtractVariables(expr ast.Expression) []string {
	seen := make(map[string]struct{})
	var out []string
	ast.Walk(expr, func(e ast.Expression) {
		if v, ok := e.(*ast.Variable); ok {
			if _, dup := seen[v.Name]; !dup {
				seen[v.Name] = struct{}{}
				out = append(out, v.Name)
			}
		}
	})
	return out
}

// ContainsVariable reports whether expr references var anywhere in its
// tree, matching contains_variable/contains_variable_internal.
func (VariableChecker) ContainsVariable(expr ast.Expression, name string) bool {
	found := false
	ast.Walk(expr, func(e ast.Expression) {
		if v, ok := e.(*ast.Variable); ok && v.Name == name {
			found = true
		}
	})
	return found
}

// IsArithmeticExpression reports whether expr is a Binary/Unary node whose
// operator is arithmetic and which references var, matching
// is_arithmetic_expression_internal. Only the outermost node is checked
// against the operator kind, matching the source (it does not recurse
// through nested arithmetic).
func (c VariableChecker) IsArithmeticExpression(expr ast.Expression, name string) bool {
	switch e := expr.(type) {
	case *ast.Binary:
		return e.Op.IsArithmetic() && (c.ContainsVariable(e.Left, name) || c.ContainsVariable(e.Right, name))
	case *ast.Unary:
		return e.Op.IsArithmetic() && c.ContainsVariable(e.Operand, name)
	default:
		return false
	}
}
