package validator

// ColumnInfo is one column on either side of a pipe (`|`) operator,
// matching the source's ColumnInfo { name, type_, alias }.
type ColumnInfo struct {
	Name  string
	Type  ValueType
	Alias string
}

// PipeValidator validates that the right side of a `L | R` statement can
// consume L's outputs: every right-referenced column must be present on
// the left with a compatible type. Grounded on
// original_source/.../validator/pipe_validator.rs; this is also the
// validator the S7 test case in SPEC_FULL 5 exercises directly (left
// [name:String, age:Int], right [age:String] -> TypeError).
type PipeValidator struct {
	LeftOutputCols []ColumnInfo
	RightInputCols []ColumnInfo

	inputs  []ColumnDef
	outputs []ColumnDef
}

func NewPipeValidator() *PipeValidator { return &PipeValidator{} }

func (v *PipeValidator) SetLeftOutput(cols []ColumnInfo) {
	v.LeftOutputCols = cols
	v.inputs = make([]ColumnDef, len(cols))
	for i, c := range cols {
		v.inputs[i] = ColumnDef{Name: c.Name, Type: c.Type}
	}
}

func (v *PipeValidator) SetRightInput(cols []ColumnInfo) { v.RightInputCols = cols }

func (v *PipeValidator) validateLeftOutput() error {
	for _, c := range v.LeftOutputCols {
		if c.Name == "" {
			return newError(ErrSemantic, "pipe left side has empty column name")
		}
	}
	return nil
}

func (v *PipeValidator) validateRightInput() error {
	for _, c := range v.RightInputCols {
		if c.Name == "" {
			return newError(ErrSemantic, "pipe right side has empty column reference")
		}
	}
	return nil
}

func (v *PipeValidator) validateCompatibility() error {
	if len(v.LeftOutputCols) == 0 && len(v.RightInputCols) > 0 {
		return newError(ErrSemantic, "pipe left side has no output columns but right side requires input")
	}
	for _, right := range v.RightInputCols {
		found := false
		for _, left := range v.LeftOutputCols {
			if right.Name != left.Name {
				continue
			}
			if right.Type != left.Type && left.Type != TypeUnknown {
				return newError(ErrType, "column type mismatch for %q: left output is %s, right input requires %s",
					right.Name, left.Type, right.Type)
			}
			found = true
			break
		}
		if !found {
			return newError(ErrSemantic, "column %q referenced in pipe right side not found in left output", right.Name)
		}
	}
	return nil
}

func (v *PipeValidator) validatePipeConnection() error {
	if len(v.LeftOutputCols) == 0 && len(v.RightInputCols) == 0 {
		return nil
	}
	if len(v.RightInputCols) > 0 && len(v.LeftOutputCols) == 0 {
		return newError(ErrSemantic, "pipe requires input from previous query but previous query has no output")
	}
	return nil
}

func (v *PipeValidator) validateImpl() error {
	if err := v.validateLeftOutput(); err != nil {
		return err
	}
	if err := v.validateRightInput(); err != nil {
		return err
	}
	if err := v.validateCompatibility(); err != nil {
		return err
	}
	return v.validatePipeConnection()
}

// ValidatePipeCompatibility is the static convenience entry point matching
// the source's validate_pipe_compatibility.
func ValidatePipeCompatibility(left, right []ColumnInfo) error {
	v := NewPipeValidator()
	v.SetLeftOutput(left)
	v.SetRightInput(right)
	return v.validateImpl()
}

func (v *PipeValidator) Validate(ctx *Context) (ValidationResult, error) {
	if err := v.validateImpl(); err != nil {
		return Failure(err.(*Error)), nil
	}
	if len(v.RightInputCols) == 0 {
		v.outputs = v.inputs
	} else {
		v.outputs = make([]ColumnDef, len(v.RightInputCols))
		for i, c := range v.RightInputCols {
			v.outputs[i] = ColumnDef{Name: c.Name, Type: c.Type}
		}
	}
	if ctx != nil {
		ctx.SetInputs(v.inputs)
		ctx.SetOutputs(v.outputs)
	}
	return Success(v.inputs, v.outputs), nil
}

func (v *PipeValidator) StatementType() StatementType    { return StatementPipe }
func (v *PipeValidator) Inputs() []ColumnDef             { return v.inputs }
func (v *PipeValidator) Outputs() []ColumnDef            { return v.outputs }
func (v *PipeValidator) ExpressionProps() ExpressionProps { return ExpressionProps{} }
func (v *PipeValidator) UserDefinedVars() []string        { return nil }
