package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/value"
)

func TestMemoryStorageVertexRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	err := s.AddVertex(ctx, "default", value.String("alice"), []string{"person"}, map[string]value.Value{
		"age": value.Int(30),
	})
	require.NoError(t, err)

	v, err := s.GetVertex(ctx, "default", value.String("alice"))
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, v.HasTag("person"))
	age, ok := v.Properties["age"].AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(30), age)
}

func TestMemoryStorageGetVertexMissingReturnsNil(t *testing.T) {
	s := NewMemoryStorage()
	v, err := s.GetVertex(context.Background(), "default", value.String("nobody"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryStorageAddVerticesBatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	err := s.AddVertices(ctx, "default", []VertexBatchItem{
		{VID: value.String("a")},
		{VID: value.String("b")},
	})
	require.NoError(t, err)

	all, err := s.ScanVertices(ctx, "default", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStorageUpdateVertexInsertable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	result, err := s.UpdateVertex(ctx, "default", value.String("new"), "person", UpdateSpec{
		Updates:    map[string]value.Value{"name": value.String("new")},
		Insertable: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Inserted)

	_, err = s.UpdateVertex(ctx, "default", value.String("missing"), "person", UpdateSpec{
		Insertable: false,
	})
	var storageErr *errkit.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, errkit.StorageNodeNotFound, storageErr.Kind)
}

func TestMemoryStorageUpdateVertexCondition(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.AddVertex(ctx, "default", value.String("a"), nil, map[string]value.Value{
		"status": value.String("open"),
	}))

	result, err := s.UpdateVertex(ctx, "default", value.String("a"), "", UpdateSpec{
		Updates: map[string]value.Value{"status": value.String("closed")},
		Condition: func(current map[string]value.Value) bool {
			s, _ := current["status"].AsString()
			return s == "pending"
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Inserted)

	v, err := s.GetVertex(ctx, "default", value.String("a"))
	require.NoError(t, err)
	status, _ := v.Properties["status"].AsString()
	assert.Equal(t, "open", status, "condition mismatch must skip the update")
}

func TestMemoryStorageDeleteTags(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.AddVertex(ctx, "default", value.String("a"), []string{"person", "admin"}, nil))

	require.NoError(t, s.DeleteTags(ctx, "default", value.String("a"), []string{"admin"}))

	v, err := s.GetVertex(ctx, "default", value.String("a"))
	require.NoError(t, err)
	assert.True(t, v.HasTag("person"))
	assert.False(t, v.HasTag("admin"))
}

func TestMemoryStorageEdgeCRUDAndScans(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	e := value.NewEdge(value.String("a"), value.String("b"), "knows", 0)
	require.NoError(t, s.AddEdge(ctx, "default", e))

	got, err := s.GetEdge(ctx, "default", e.Identity())
	require.NoError(t, err)
	require.NotNil(t, got)

	bySrc, err := s.ScanEdgesBySrc(ctx, "default", value.String("a"), 0)
	require.NoError(t, err)
	assert.Len(t, bySrc, 1)

	byDst, err := s.ScanEdgesByDst(ctx, "default", value.String("b"), 0)
	require.NoError(t, err)
	assert.Len(t, byDst, 1)

	byType, err := s.ScanEdgesByType(ctx, "default", "knows", 0)
	require.NoError(t, err)
	assert.Len(t, byType, 1)

	require.NoError(t, s.DeleteEdge(ctx, "default", e.Identity()))
	got, err = s.GetEdge(ctx, "default", e.Identity())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStorageScanRespectsLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	for _, vid := range []string{"a", "b", "c"} {
		require.NoError(t, s.AddVertex(ctx, "default", value.String(vid), nil, nil))
	}

	limited, err := s.ScanVertices(ctx, "default", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemoryStorageWithTransactionAppliesEveryWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	err := s.WithTransaction(ctx, func(tx StorageClient) error {
		require.NoError(t, tx.AddVertex(ctx, "default", value.String("a"), nil, nil))
		require.NoError(t, tx.AddVertex(ctx, "default", value.String("b"), nil, nil))
		return nil
	})
	require.NoError(t, err)

	all, err := s.ScanVertices(ctx, "default", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
