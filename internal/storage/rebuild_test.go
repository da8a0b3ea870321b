package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/value"
)

func TestIndexRebuildSourceProjectsVertexFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.AddVertex(ctx, "default", value.String("alice"), []string{"person"}, map[string]value.Value{
		"email": value.String("alice@example.com"),
		"age":   value.Int(30),
	}))
	require.NoError(t, s.AddVertex(ctx, "default", value.String("bob"), []string{"person"}, map[string]value.Value{
		"email": value.String("bob@example.com"),
	}))

	src := NewIndexRebuildSource(s, ctx)
	vids, values := src.AllVertices("default", "person", []string{"email"})
	require.Len(t, vids, 2)
	require.Len(t, values, 2)
	for _, row := range values {
		require.Len(t, row, 1)
	}
}

func TestIndexRebuildSourceMissingFieldProjectsNull(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.AddVertex(ctx, "default", value.String("bob"), []string{"person"}, map[string]value.Value{
		"email": value.String("bob@example.com"),
	}))

	src := NewIndexRebuildSource(s, ctx)
	_, values := src.AllVertices("default", "person", []string{"age"})
	require.Len(t, values, 1)
	assert.True(t, values[0][0].IsNull())
}

func TestIndexRebuildSourceProjectsEdgeFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	edge := value.NewEdge(value.String("alice"), value.String("bob"), "knows", 0)
	edge.Properties["since"] = value.Int(2020)
	require.NoError(t, s.AddEdge(ctx, "default", edge))

	src := NewIndexRebuildSource(s, ctx)
	keys, values := src.AllEdges("default", "knows", []string{"since"})
	require.Len(t, keys, 1)
	require.Len(t, values, 1)
	n, ok := values[0][0].AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(2020), n)
	assert.Equal(t, "alice", keys[0].Src)
}

func TestNewIndexRebuildSourceDefaultsContext(t *testing.T) {
	s := NewMemoryStorage()
	src := NewIndexRebuildSource(s, nil)
	assert.NotNil(t, src.Ctx)
}
