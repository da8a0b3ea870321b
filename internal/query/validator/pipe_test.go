package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipeValidatorEmptyColumnsIsAllowed(t *testing.T) {
	v := NewPipeValidator()
	err := v.validateImpl()
	assert.NoError(t, err)
}

func TestPipeValidatorCompatibleColumnsSucceeds(t *testing.T) {
	v := NewPipeValidator()
	v.SetLeftOutput([]ColumnInfo{{Name: "name", Type: TypeString}, {Name: "age", Type: TypeInt}})
	v.SetRightInput([]ColumnInfo{{Name: "name", Type: TypeString}})
	assert.NoError(t, v.validateImpl())
}

// S7 from SPEC_FULL 5: left [name:String, age:Int], right [age:String] ->
// TypeError("Column type mismatch for 'age'...").
func TestPipeValidatorIncompatibleTypeMismatchFails(t *testing.T) {
	v := NewPipeValidator()
	v.SetLeftOutput([]ColumnInfo{{Name: "name", Type: TypeString}, {Name: "age", Type: TypeInt}})
	v.SetRightInput([]ColumnInfo{{Name: "age", Type: TypeString}})
	err := v.validateImpl()
	if assert.Error(t, err) {
		ve, ok := err.(*Error)
		if assert.True(t, ok) {
			assert.Equal(t, ErrType, ve.Kind)
		}
	}
}

func TestPipeValidatorMissingColumnFails(t *testing.T) {
	v := NewPipeValidator()
	v.SetLeftOutput([]ColumnInfo{{Name: "name", Type: TypeString}})
	v.SetRightInput([]ColumnInfo{{Name: "age", Type: TypeInt}})
	assert.Error(t, v.validateImpl())
}

func TestPipeValidatorUnknownLeftTypeMatchesAnyRightType(t *testing.T) {
	v := NewPipeValidator()
	v.SetLeftOutput([]ColumnInfo{{Name: "age", Type: TypeUnknown}})
	v.SetRightInput([]ColumnInfo{{Name: "age", Type: TypeInt}})
	assert.NoError(t, v.validateImpl())
}

func TestValidatePipeCompatibilityStaticHelper(t *testing.T) {
	left := []ColumnInfo{{Name: "name", Type: TypeString}}
	right := []ColumnInfo{{Name: "name", Type: TypeString}}
	assert.NoError(t, ValidatePipeCompatibility(left, right))
}

func TestPipeValidatorOutputsFollowRightWhenPresent(t *testing.T) {
	v := NewPipeValidator()
	v.SetLeftOutput([]ColumnInfo{{Name: "name", Type: TypeString}})
	v.SetRightInput([]ColumnInfo{{Name: "name", Type: TypeString}})
	result, err := v.Validate(NewContext())
	assert.NoError(t, err)
	if assert.True(t, result.OK) {
		assert.Equal(t, []ColumnDef{{Name: "name", Type: TypeString}}, result.Outputs)
	}
}

func TestPipeValidatorOutputsFollowLeftWhenRightEmpty(t *testing.T) {
	v := NewPipeValidator()
	v.SetLeftOutput([]ColumnInfo{{Name: "name", Type: TypeString}})
	result, err := v.Validate(NewContext())
	assert.NoError(t, err)
	if assert.True(t, result.OK) {
		assert.Equal(t, v.inputs, result.Outputs)
	}
}
