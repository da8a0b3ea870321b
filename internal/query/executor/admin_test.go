package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/types"
	"github.com/ali01/graphd/internal/index"
	"github.com/ali01/graphd/internal/metadata"
	"github.com/ali01/graphd/internal/query/planner"
	"github.com/ali01/graphd/internal/schema"
)

func newAdminTestContext(t *testing.T) *Context {
	t.Helper()
	return &Context{
		Ctx:      context.Background(),
		Schema:   schema.New(schema.NewMemoryKV(), nil),
		Metadata: metadata.New(),
		Index:    index.New(nil),
	}
}

func runAdmin(t *testing.T, ctx *Context, node *planner.Node) ExecutionResult {
	t.Helper()
	ex := NewAdminExecutor(node, ctx)
	require.NoError(t, ex.Open())
	res, err := ex.Execute(context.Background())
	require.NoError(t, err)
	return res
}

func TestAdminExecutorCreateAndDescSpace(t *testing.T) {
	ctx := newAdminTestContext(t)
	createNode := &planner.Node{Kind: planner.KindCreateSpace, Payload: planner.SpaceManageInfo{SpaceName: "demo", VIDType: types.VIDTypeString}}
	runAdmin(t, ctx, createNode)

	descNode := &planner.Node{Kind: planner.KindDescSpace, Payload: planner.NamedRef{Name: "demo"}}
	res := runAdmin(t, ctx, descNode)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "demo", res.Rows[0][0].String())
}

func TestAdminExecutorCreateSpaceIdempotent(t *testing.T) {
	ctx := newAdminTestContext(t)
	node := &planner.Node{Kind: planner.KindCreateSpace, Payload: planner.SpaceManageInfo{SpaceName: "demo", VIDType: types.VIDTypeString}}
	runAdmin(t, ctx, node)
	// Second create must not error: IF NOT EXISTS semantics.
	runAdmin(t, ctx, node)
}

func TestAdminExecutorTagLifecycle(t *testing.T) {
	ctx := newAdminTestContext(t)
	runAdmin(t, ctx, &planner.Node{Kind: planner.KindCreateSpace, Payload: planner.SpaceManageInfo{SpaceName: "demo", VIDType: types.VIDTypeString}})

	createTag := &planner.Node{Kind: planner.KindCreateTag, Payload: planner.TagManageInfo{
		SpaceName: "demo",
		TagName:   "person",
		Properties: []types.PropertyDef{
			{Name: "name", DataType: types.DataTypeString},
		},
	}}
	runAdmin(t, ctx, createTag)

	alterTag := &planner.Node{Kind: planner.KindAlterTag, Payload: planner.TagAlterInfo{
		SpaceName: "demo",
		TagName:   "person",
		Additions: []types.PropertyDef{{Name: "age", DataType: types.DataTypeInt}},
	}}
	runAdmin(t, ctx, alterTag)

	descTag := &planner.Node{Kind: planner.KindDescTag, Payload: planner.NamedRef{SpaceName: "demo", Name: "person"}}
	res := runAdmin(t, ctx, descTag)
	assert.Len(t, res.Rows, 2)
}

func TestAdminExecutorUserLifecycle(t *testing.T) {
	ctx := newAdminTestContext(t)
	createUser := &planner.Node{Kind: planner.KindCreateUser, Payload: planner.UserCreateInfo{
		Username: "alice", Password: "s3cret", Role: "user",
	}}
	runAdmin(t, ctx, createUser)

	newRole := "admin"
	alterUser := &planner.Node{Kind: planner.KindAlterUser, Payload: planner.UserAlterInfo{
		Username: "alice", NewRole: &newRole,
	}}
	runAdmin(t, ctx, alterUser)

	rec, err := ctx.Metadata.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, rec.Role)
}

func TestAdminExecutorIndexLifecycle(t *testing.T) {
	ctx := newAdminTestContext(t)
	createIdx := &planner.Node{Kind: planner.KindCreateTagIndex, Payload: planner.IndexManageInfo{
		SpaceName: "demo", IndexName: "person_name_idx", TargetName: "person", Properties: []string{"name"},
	}}
	runAdmin(t, ctx, createIdx)

	showNode := &planner.Node{Kind: planner.KindShowTagIndexes, Payload: planner.NamedRef{SpaceName: "demo"}}
	res := runAdmin(t, ctx, showNode)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "person_name_idx", res.Rows[0][0].String())

	dropNode := &planner.Node{Kind: planner.KindDropTagIndex, Payload: planner.NamedRef{Name: "person_name_idx"}}
	runAdmin(t, ctx, dropNode)
	assert.False(t, ctx.Index.HasIndex("person_name_idx"))
}
