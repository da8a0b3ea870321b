package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/value"
)

func TestSimpleFulltextEngineSearchRanksByTermFrequency(t *testing.T) {
	e := NewSimpleFulltextEngine()
	require.NoError(t, e.CreateIndex(FulltextConfig{Name: "person", SchemaName: "person"}))

	doc1 := NewDocument("1", "person")
	doc1.AddField("bio", value.String("graph database systems and graph traversal"))
	require.NoError(t, e.IndexDocument(*doc1))

	doc2 := NewDocument("2", "person")
	doc2.AddField("bio", value.String("graph theory basics"))
	require.NoError(t, e.IndexDocument(*doc2))

	results, err := e.Search(Query{IndexName: "person", QueryString: "graph", Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].ID, "doc1 mentions 'graph' twice and should rank first")
}

func TestSimpleFulltextEngineDeleteDocumentRemovesFromResults(t *testing.T) {
	e := NewSimpleFulltextEngine()
	require.NoError(t, e.CreateIndex(FulltextConfig{Name: "person", SchemaName: "person"}))
	doc := NewDocument("1", "person")
	doc.AddField("bio", value.String("hello world"))
	require.NoError(t, e.IndexDocument(*doc))

	require.NoError(t, e.DeleteDocument("1"))

	results, err := e.Search(Query{IndexName: "person", QueryString: "hello", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSimpleFulltextEngineSearchUnknownIndexErrors(t *testing.T) {
	e := NewSimpleFulltextEngine()
	_, err := e.Search(Query{IndexName: "missing", QueryString: "x"})
	require.Error(t, err)
}

func TestSimpleFulltextEnginePaginates(t *testing.T) {
	e := NewSimpleFulltextEngine()
	require.NoError(t, e.CreateIndex(FulltextConfig{Name: "person", SchemaName: "person"}))
	for i := 0; i < 5; i++ {
		doc := NewDocument(string(rune('a'+i)), "person")
		doc.AddField("bio", value.String("match"))
		require.NoError(t, e.IndexDocument(*doc))
	}

	page1, err := e.Search(Query{IndexName: "person", QueryString: "match", Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page2, err := e.Search(Query{IndexName: "person", QueryString: "match", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page2, 2)
}

func TestDropIndexClearsPostings(t *testing.T) {
	e := NewSimpleFulltextEngine()
	require.NoError(t, e.CreateIndex(FulltextConfig{Name: "person", SchemaName: "person"}))
	doc := NewDocument("1", "person")
	doc.AddField("bio", value.String("hello"))
	require.NoError(t, e.IndexDocument(*doc))

	require.NoError(t, e.DropIndex("person"))
	assert.False(t, e.IndexExists("person"))

	require.NoError(t, e.CreateIndex(FulltextConfig{Name: "person", SchemaName: "person"}))
	results, err := e.Search(Query{IndexName: "person", QueryString: "hello"})
	require.NoError(t, err)
	assert.Empty(t, results, "recreated index must not see postings from the dropped one")
}
