package cord

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCord_AppendAndString(t *testing.T) {
	c := New()
	c.AppendString("hello ").AppendString("world")
	assert.Equal(t, "hello world", c.String())
	assert.Equal(t, 11, c.Len())
	assert.False(t, c.IsEmpty())
}

func TestCord_Empty(t *testing.T) {
	c := New()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "", c.String())
}

func TestCord_SpansMultipleBlocks(t *testing.T) {
	c := WithBlockSize(8)
	input := strings.Repeat("ab", 100) // 200 bytes, forces many block rollovers
	c.AppendString(input)
	require.Equal(t, len(input), c.Len())
	assert.Equal(t, input, c.String())
}

func TestCord_MinimumBlockSize(t *testing.T) {
	c := WithBlockSize(1)
	c.AppendString("x")
	assert.Equal(t, 1, c.Len())
}

func TestCord_Clear(t *testing.T) {
	c := New()
	c.AppendString("data")
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, "", c.String())
}

func TestCord_TypedWriters(t *testing.T) {
	c := New()
	c.WriteInt(-42).WriteByte(' ').WriteUint(7).WriteByte(' ').WriteBool(true).WriteByte(' ').WriteFloat(3.5)
	assert.Equal(t, "-42 7 true 3.5", c.String())
}

func TestCord_ApplyTo(t *testing.T) {
	c := WithBlockSize(4)
	c.AppendString("abcdefgh")
	var blocks []string
	c.ApplyTo(func(b []byte) bool {
		blocks = append(blocks, string(b))
		return true
	})
	assert.Equal(t, []string{"abcd", "efgh"}, blocks)
}

func TestCord_ApplyToStopsEarly(t *testing.T) {
	c := WithBlockSize(2)
	c.AppendString("aabbcc")
	count := 0
	c.ApplyTo(func(b []byte) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestCord_Flatten(t *testing.T) {
	c := WithBlockSize(3)
	c.AppendBytes([]byte("abcdef"))
	assert.Equal(t, []byte("abcdef"), c.Flatten())
}
