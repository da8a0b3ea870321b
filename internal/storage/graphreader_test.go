package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/traversal"
)

func TestGraphReaderAdapterDirections(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	require.NoError(t, mem.AddVertex(ctx, "default", value.String("a"), nil, nil))
	require.NoError(t, mem.AddVertex(ctx, "default", value.String("b"), nil, nil))
	require.NoError(t, mem.AddEdge(ctx, "default", value.NewEdge(value.String("a"), value.String("b"), "knows", 0)))

	reader := NewGraphReaderAdapter(ctx, mem)

	out, err := reader.GetNodeEdges("default", value.String("a"), traversal.DirOut)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	in, err := reader.GetNodeEdges("default", value.String("a"), traversal.DirIn)
	require.NoError(t, err)
	assert.Empty(t, in)

	both, err := reader.GetNodeEdges("default", value.String("b"), traversal.DirBoth)
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestGraphReaderAdapterDedupsSelfLoopAcrossDirections(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	require.NoError(t, mem.AddVertex(ctx, "default", value.String("x"), nil, nil))
	require.NoError(t, mem.AddEdge(ctx, "default", value.NewEdge(value.String("x"), value.String("x"), "self", 0)))

	reader := NewGraphReaderAdapter(ctx, mem)
	edges, err := reader.GetNodeEdges("default", value.String("x"), traversal.DirBoth)
	require.NoError(t, err)
	assert.Len(t, edges, 1, "self-loop must not be double-counted when merging src and dst scans")
}

func TestGraphReaderAdapterSatisfiesGraphReader(t *testing.T) {
	var _ traversal.GraphReader = (*GraphReaderAdapter)(nil)
}
