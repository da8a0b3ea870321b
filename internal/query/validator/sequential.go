package validator

import "strings"

// SequentialStatement is one `;`-separated statement within a sequential
// query, matching the source's SequentialStatement. The raw text is kept
// (rather than a parsed Stmt) because statement-order validation here only
// needs to classify DDL/DML by leading keyword, matching the source's
// is_ddl_statement/is_dml_statement string-prefix checks.
type SequentialStatement struct {
	Text string
}

// SequentialValidator validates a `;`-joined sequence of statements:
// statement count, DDL-before-DML ordering, and `$`/`@`-prefixed variable
// names. Grounded on
// original_source/.../validator/sequential_validator.rs.
type SequentialValidator struct {
	Statements    []SequentialStatement
	MaxStatements int
	Variables     map[string]ValueType

	inputs          []ColumnDef
	outputs         []ColumnDef
	userDefinedVars []string
}

func NewSequentialValidator() *SequentialValidator {
	return &SequentialValidator{MaxStatements: 100, Variables: make(map[string]ValueType)}
}

func (v *SequentialValidator) AddStatement(stmt SequentialStatement) {
	v.Statements = append(v.Statements, stmt)
}

func (v *SequentialValidator) SetVariable(name string, t ValueType) {
	v.Variables[name] = t
	for _, existing := range v.userDefinedVars {
		if existing == name {
			return
		}
	}
	v.userDefinedVars = append(v.userDefinedVars, name)
}

func isDDLStatement(upper string) bool {
	return strings.HasPrefix(upper, "CREATE") || strings.HasPrefix(upper, "ALTER") || strings.HasPrefix(upper, "DROP")
}

func isDMLStatement(upper string) bool {
	return strings.HasPrefix(upper, "INSERT") || strings.HasPrefix(upper, "UPDATE") ||
		strings.HasPrefix(upper, "DELETE") || strings.HasPrefix(upper, "UPSERT")
}

// IsQueryStatement reports whether stmt is a read statement that returns a
// result set, matching is_query_statement.
func IsQueryStatement(stmt string) bool {
	upper := strings.ToUpper(stmt)
	for _, prefix := range []string{"MATCH", "GO", "FETCH", "LOOKUP", "FIND PATH", "GET SUBGRAPH"} {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// IsMutationStatement reports whether stmt modifies data, matching
// is_mutation_statement.
func IsMutationStatement(stmt string) bool {
	upper := strings.ToUpper(stmt)
	return isDMLStatement(upper)
}

func (v *SequentialValidator) validateStatementCount() error {
	if len(v.Statements) == 0 {
		return newError(ErrSemantic, "sequential statement must have at least one statement")
	}
	if len(v.Statements) > v.MaxStatements {
		return newError(ErrSemantic, "too many statements in sequential query (max: %d)", v.MaxStatements)
	}
	return nil
}

func (v *SequentialValidator) validateStatementOrder() error {
	var hasDDL, hasDML bool
	for i, stmt := range v.Statements {
		upper := strings.ToUpper(stmt.Text)
		if isDDLStatement(upper) {
			if hasDML {
				return newError(ErrSemantic, "DDL statement cannot follow DML statement at position %d", i+1)
			}
			if hasDDL {
				return newError(ErrSemantic, "multiple DDL statements are not allowed, found at position %d", i+1)
			}
			hasDDL = true
		}
		if isDMLStatement(upper) {
			hasDML = true
		}
	}
	return nil
}

func (v *SequentialValidator) validateVariables() error {
	for name := range v.Variables {
		if name == "" {
			return newError(ErrSemantic, "variable name cannot be empty")
		}
		if !strings.HasPrefix(name, "$") && !strings.HasPrefix(name, "@") {
			return newError(ErrSemantic, "invalid variable name %q: must start with '$' or '@'", name)
		}
	}
	return nil
}

func (v *SequentialValidator) validateImpl() error {
	if err := v.validateStatementCount(); err != nil {
		return err
	}
	if err := v.validateStatementOrder(); err != nil {
		return err
	}
	return v.validateVariables()
}

func (v *SequentialValidator) Validate(ctx *Context) (ValidationResult, error) {
	if err := v.validateImpl(); err != nil {
		return Failure(err.(*Error)), nil
	}
	v.outputs = nil
	if ctx != nil {
		ctx.SetInputs(v.inputs)
		ctx.SetOutputs(v.outputs)
	}
	return Success(v.inputs, v.outputs), nil
}

func (v *SequentialValidator) StatementType() StatementType    { return StatementSequential }
func (v *SequentialValidator) Inputs() []ColumnDef              { return v.inputs }
func (v *SequentialValidator) Outputs() []ColumnDef             { return v.outputs }
func (v *SequentialValidator) ExpressionProps() ExpressionProps { return ExpressionProps{} }
func (v *SequentialValidator) UserDefinedVars() []string        { return v.userDefinedVars }
