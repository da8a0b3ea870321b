package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialValidatorNew(t *testing.T) {
	v := NewSequentialValidator()
	assert.Empty(t, v.Statements)
	assert.Empty(t, v.Variables)
	assert.Equal(t, 100, v.MaxStatements)
}

func TestSequentialValidatorEmptyStatementsFails(t *testing.T) {
	v := NewSequentialValidator()
	result, err := v.Validate(nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestSequentialValidatorSingleStatementSucceeds(t *testing.T) {
	v := NewSequentialValidator()
	v.AddStatement(SequentialStatement{Text: "MATCH (n) RETURN n"})
	result, err := v.Validate(nil)
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestSequentialValidatorDDLBeforeDMLSucceeds(t *testing.T) {
	v := NewSequentialValidator()
	v.AddStatement(SequentialStatement{Text: `CREATE TAG person(name string)`})
	v.AddStatement(SequentialStatement{Text: `INSERT VERTEX person(name) VALUES "1":("Alice")`})
	result, err := v.Validate(nil)
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestSequentialValidatorDDLAfterDMLFails(t *testing.T) {
	v := NewSequentialValidator()
	v.AddStatement(SequentialStatement{Text: `INSERT VERTEX person(name) VALUES "1":("Alice")`})
	v.AddStatement(SequentialStatement{Text: `CREATE TAG person(name string)`})
	result, err := v.Validate(nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestSequentialValidatorMultipleDDLFails(t *testing.T) {
	v := NewSequentialValidator()
	v.AddStatement(SequentialStatement{Text: `CREATE TAG person(name string)`})
	v.AddStatement(SequentialStatement{Text: `CREATE TAG company(name string)`})
	result, err := v.Validate(nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestSequentialValidatorInvalidVariableNameFails(t *testing.T) {
	v := NewSequentialValidator()
	v.AddStatement(SequentialStatement{Text: "RETURN 1"})
	v.SetVariable("invalid_var", TypeInt)
	result, err := v.Validate(nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestSequentialValidatorValidVariableNameSucceeds(t *testing.T) {
	v := NewSequentialValidator()
	v.AddStatement(SequentialStatement{Text: "RETURN 1"})
	v.SetVariable("$var", TypeInt)
	result, err := v.Validate(nil)
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestSequentialValidatorMaxStatementsLimit(t *testing.T) {
	v := NewSequentialValidator()
	v.MaxStatements = 2
	v.AddStatement(SequentialStatement{Text: "RETURN 1"})
	v.AddStatement(SequentialStatement{Text: "RETURN 2"})
	v.AddStatement(SequentialStatement{Text: "RETURN 3"})
	result, err := v.Validate(nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestIsQueryStatement(t *testing.T) {
	assert.True(t, IsQueryStatement("MATCH (n) RETURN n"))
	assert.True(t, IsQueryStatement(`GO FROM "1" OVER edge`))
	assert.True(t, IsQueryStatement(`FETCH PROP ON person "1"`))
	assert.False(t, IsQueryStatement(`INSERT VERTEX person(name) VALUES "1":("Alice")`))
}

func TestIsMutationStatement(t *testing.T) {
	assert.True(t, IsMutationStatement(`INSERT VERTEX person(name) VALUES "1":("Alice")`))
	assert.True(t, IsMutationStatement(`UPDATE VERTEX "1" SET name="Bob"`))
	assert.True(t, IsMutationStatement(`DELETE VERTEX "1"`))
	assert.False(t, IsMutationStatement("MATCH (n) RETURN n"))
}
