package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/value"
)

func newTestIndexManager(t *testing.T) *Manager {
	t.Helper()
	return New(nil)
}

func TestCreateIndexAndLookup(t *testing.T) {
	m := newTestIndexManager(t)
	require.NoError(t, m.CreateIndex(Def{Name: "person_by_email", Space: "default", SchemaName: "person", Fields: []string{"email"}}))

	require.NoError(t, m.InsertVertex("person_by_email", value.String("alice"), []value.Value{value.String("alice@example.com")}))

	got, err := m.LookupVertexByIndex("person_by_email", []value.Value{value.String("alice@example.com")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].String())
}

func TestCreateIndexDuplicateRejected(t *testing.T) {
	m := newTestIndexManager(t)
	require.NoError(t, m.CreateIndex(Def{Name: "idx", Space: "default", SchemaName: "person"}))
	err := m.CreateIndex(Def{Name: "idx", Space: "default", SchemaName: "person"})
	require.Error(t, err)
	assert.True(t, errkit.NewManagerError(errkit.ManagerAlreadyExists, "").Is(err))
}

func TestUniqueIndexRejectsDuplicateKey(t *testing.T) {
	m := newTestIndexManager(t)
	require.NoError(t, m.CreateIndex(Def{Name: "idx", Space: "default", SchemaName: "person", Unique: true}))
	require.NoError(t, m.InsertVertex("idx", value.String("a"), []value.Value{value.String("x")}))

	err := m.InsertVertex("idx", value.String("b"), []value.Value{value.String("x")})
	require.Error(t, err)
}

func TestUpdateVertexMovesEntry(t *testing.T) {
	m := newTestIndexManager(t)
	require.NoError(t, m.CreateIndex(Def{Name: "idx", Space: "default", SchemaName: "person"}))
	require.NoError(t, m.InsertVertex("idx", value.String("a"), []value.Value{value.String("old")}))

	require.NoError(t, m.UpdateVertex("idx", value.String("a"), []value.Value{value.String("new")}))

	oldHits, err := m.LookupVertexByIndex("idx", []value.Value{value.String("old")})
	require.NoError(t, err)
	assert.Empty(t, oldHits)

	newHits, err := m.LookupVertexByIndex("idx", []value.Value{value.String("new")})
	require.NoError(t, err)
	assert.Len(t, newHits, 1)
}

func TestDeleteVertexRemovesEntry(t *testing.T) {
	m := newTestIndexManager(t)
	require.NoError(t, m.CreateIndex(Def{Name: "idx", Space: "default", SchemaName: "person"}))
	require.NoError(t, m.InsertVertex("idx", value.String("a"), []value.Value{value.String("x")}))
	require.NoError(t, m.DeleteVertex("idx", value.String("a")))

	got, err := m.LookupVertexByIndex("idx", []value.Value{value.String("x")})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRangeLookupVertex(t *testing.T) {
	m := newTestIndexManager(t)
	require.NoError(t, m.CreateIndex(Def{Name: "idx", Space: "default", SchemaName: "person", Fields: []string{"age"}}))
	for i, vid := range []string{"a", "b", "c"} {
		require.NoError(t, m.InsertVertex("idx", value.String(vid), []value.Value{value.Int(int64(20 + i*10))}))
	}

	hits, err := m.RangeLookupVertex("idx", value.Int(20), value.Int(30))
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestEdgeIndexCRUD(t *testing.T) {
	m := newTestIndexManager(t)
	require.NoError(t, m.CreateIndex(Def{Name: "edge_idx", Space: "default", SchemaName: "knows", Kind: KindEdge}))

	key := value.EdgeKey{Src: "a", EdgeType: "knows", Ranking: 0, Dst: "b"}
	require.NoError(t, m.InsertEdge("edge_idx", key, []value.Value{value.String("2020")}))

	hits, err := m.LookupEdgeByIndex("edge_idx", []value.Value{value.String("2020")})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, key, hits[0])

	require.NoError(t, m.DeleteEdge("edge_idx", key))
	hits, err = m.LookupEdgeByIndex("edge_idx", []value.Value{value.String("2020")})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

type fakeRebuildSource struct {
	vertices map[string][]value.Value
	fields   map[string][][]value.Value
}

func (f *fakeRebuildSource) AllVertices(space, tag string, fields []string) ([]value.Value, [][]value.Value) {
	return f.vertices[tag], f.fields[tag]
}

func (f *fakeRebuildSource) AllEdges(space, edgeType string, fields []string) ([]value.EdgeKey, [][]value.Value) {
	return nil, nil
}

func TestRebuildIndexRepopulatesFromSource(t *testing.T) {
	m := newTestIndexManager(t)
	require.NoError(t, m.CreateIndex(Def{Name: "idx", Space: "default", SchemaName: "person", Fields: []string{"email"}}))

	src := &fakeRebuildSource{
		vertices: map[string][]value.Value{"person": {value.String("a"), value.String("b")}},
		fields:   map[string][][]value.Value{"person": {{value.String("a@x.com")}, {value.String("b@x.com")}}},
	}
	require.NoError(t, m.RebuildIndex(src, "idx"))

	stats, err := m.GetIndexStats("idx")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)

	consistent, err := m.CheckIndexConsistency(src, "idx")
	require.NoError(t, err)
	assert.True(t, consistent)
}

func TestAnalyzeIndexFlagsLowSelectivity(t *testing.T) {
	m := newTestIndexManager(t)
	require.NoError(t, m.CreateIndex(Def{Name: "idx", Space: "default", SchemaName: "person"}))
	for i := 0; i < 20; i++ {
		require.NoError(t, m.InsertVertex("idx", value.String(string(rune('a'+i))), []value.Value{value.String("same")}))
	}
	// force a query so the "never queried" suggestion doesn't also fire
	_, err := m.LookupVertexByIndex("idx", []value.Value{value.String("same")})
	require.NoError(t, err)

	opt, err := m.AnalyzeIndex("idx")
	require.NoError(t, err)
	assert.Equal(t, "high", opt.Priority)
	assert.NotEmpty(t, opt.Suggestions)
}
