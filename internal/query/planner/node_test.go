package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/value"
)

func TestPlanAddAssignsSequentialIDs(t *testing.T) {
	p := NewPlan()
	a := p.Add(NewShowSpaces())
	b := p.Add(NewDropSpace("s1"))
	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(2), b)
	assert.Equal(t, 2, p.Len())
}

func TestPlanGetAndRoot(t *testing.T) {
	p := NewPlan()
	id := p.Add(NewShowTags("s1"))
	p.RootID = id

	root, ok := p.Root()
	require.True(t, ok)
	assert.Equal(t, KindShowTags, root.Kind)

	_, ok = p.Get(999)
	assert.False(t, ok)
}

func TestPlanWalkVisitsEveryNodeOnce(t *testing.T) {
	p := NewPlan()
	leaf := p.Add(NewGetVertices("n", []string{"id"}, 1.0, GetVerticesInfo{SpaceName: "s", TagName: "person"}))
	filter := p.Add(NewFilter("n", []string{"id"}, 1.5, FilterInfo{}))
	project := p.Add(NewProject("n", []string{"id", "name"}, 2.0, ProjectInfo{}))

	if n, ok := p.Get(filter); ok {
		n.Children = []int64{leaf}
	}
	if n, ok := p.Get(project); ok {
		n.Children = []int64{filter}
	}
	p.RootID = project

	var visited []Kind
	p.Walk(func(n *Node) { visited = append(visited, n.Kind) })
	assert.Equal(t, []Kind{KindProject, KindFilter, KindGetVertices}, visited)
}

func TestWalkDoesNotRevisitSharedAncestor(t *testing.T) {
	p := NewPlan()
	shared := p.Add(NewGetVertices("n", nil, 1.0, GetVerticesInfo{SpaceName: "s", TagName: "person"}))
	left := p.Add(NewFilter("n", nil, 1.0, FilterInfo{}))
	right := p.Add(NewSort("n", nil, 1.0, SortInfo{}))
	join := p.Add(NewJoin("n", nil, 2.0, JoinInfo{On: []string{"n"}}))

	for _, id := range []int64{left, right} {
		n, _ := p.Get(id)
		n.Children = []int64{shared}
	}
	jn, _ := p.Get(join)
	jn.Children = []int64{left, right}
	p.RootID = join

	count := 0
	p.Walk(func(n *Node) { count++ })
	assert.Equal(t, 4, count)
}

func TestAdminNodesCarryFixedCostAndNoOutput(t *testing.T) {
	n := NewCreateTag(NewTagManageInfo("s1", "person"))
	assert.Equal(t, KindCreateTag, n.Kind)
	assert.Equal(t, 1.0, n.Cost)
	assert.Empty(t, n.OutputVar)
	assert.Empty(t, n.ColNames)
	assert.True(t, n.Kind.IsAdmin())
}

func TestQueryNodeIsNotAdminKind(t *testing.T) {
	n := NewShortestPath("p", []string{"p"}, 10.0, ShortestPathInfo{
		SpaceName: "s1",
		From:      value.Int(1),
		To:        value.Int(2),
	})
	assert.False(t, n.Kind.IsAdmin())
	assert.Equal(t, "p", n.OutputVar)
}

func TestBuilderMethodsAreImmutable(t *testing.T) {
	base := NewTagManageInfo("s1", "person")
	withProps := base.WithProperties(nil).WithComment("a tag")
	assert.Empty(t, base.Comment)
	assert.Equal(t, "a tag", withProps.Comment)
}

func TestKindStringCoversEveryVariant(t *testing.T) {
	for k := KindCreateSpace; k <= KindSubgraph; k++ {
		assert.NotEqual(t, "Unknown", k.String(), "Kind %d missing from String()", k)
	}
}
