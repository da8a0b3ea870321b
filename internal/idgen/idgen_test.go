package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionIDGenerator_Monotonic(t *testing.T) {
	g := NewSessionIDGenerator()
	prev := g.Next()
	for i := 0; i < 100; i++ {
		next := g.Next()
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
}

func TestSessionIDGenerator_AlwaysPositive(t *testing.T) {
	g := NewSessionIDGenerator()
	for i := 0; i < 1000; i++ {
		assert.Greater(t, g.Next(), int64(0))
	}
}

func TestQueryIDGenerator_StartsAtOneAndIncrements(t *testing.T) {
	g := NewQueryIDGenerator()
	assert.Equal(t, int64(1), g.Next())
	assert.Equal(t, int64(2), g.Next())
	assert.Equal(t, int64(3), g.Next())
}

func TestGlobalQueryIDGenerator_SameInstance(t *testing.T) {
	a := GlobalQueryIDGenerator()
	b := GlobalQueryIDGenerator()
	assert.Same(t, a, b)
}

func TestNewTransactionID_Unique(t *testing.T) {
	a := NewTransactionID()
	b := NewTransactionID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
