// Admin executors implement every DDL plan-node Kind by delegating to the
// schema, metadata and index managers through their existing contracts,
// matching SPEC_FULL 4.5's "delegate to schema/metadata/index managers
// through their contracts... idempotent under IF NOT EXISTS/IF EXISTS...
// records a SchemaChange on success" — the SchemaChange recording itself
// already happens inside schema.Manager's mutating methods, so this layer
// only needs to translate a plan node's payload into the right manager
// call and shape the result.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ali01/graphd/internal/auth"
	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/types"
	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/index"
	"github.com/ali01/graphd/internal/query/planner"
	"github.com/ali01/graphd/internal/storage"
)

// AdminExecutor runs exactly one admin (DDL) plan node. Every admin node
// is a leaf (admin_node.rs never gives one children), so unlike the
// query executors this never wraps a child.
type AdminExecutor struct {
	lifecycle
	node *planner.Node
	ctx  *Context
}

func NewAdminExecutor(node *planner.Node, ctx *Context) *AdminExecutor {
	return &AdminExecutor{node: node, ctx: ctx}
}

func (e *AdminExecutor) Execute(_ context.Context) (ExecutionResult, error) {
	if !e.IsOpen() {
		return ExecutionResult{}, errkit.NewQueryError(errkit.QueryExecutionError, "executor not open")
	}
	res, err := e.dispatch()
	if err != nil {
		return ExecutionResult{}, errkit.WrapQueryError(errkit.QueryExecutionError, fmt.Sprintf("admin node %s failed", e.node.Kind), err)
	}
	e.recordRows(res.RowCount(), 0)
	return res, nil
}

func ifNotExistsOK(err error) bool {
	return errors.Is(err, errkit.NewManagerError(errkit.ManagerAlreadyExists, ""))
}

func notFoundOK(err error) bool {
	return errors.Is(err, errkit.NewManagerError(errkit.ManagerNotFound, ""))
}

func (e *AdminExecutor) dispatch() (ExecutionResult, error) {
	switch e.node.Kind {
	case planner.KindCreateSpace:
		info := e.node.Payload.(planner.SpaceManageInfo)
		_, err := e.ctx.Metadata.CreateSpace(info.SpaceName, info.VIDType, info.Comment)
		if err != nil && !ifNotExistsOK(err) {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindDropSpace:
		ref := e.node.Payload.(planner.NamedRef)
		if err := e.ctx.Metadata.DropSpace(ref.Name); err != nil && !notFoundOK(err) {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindDescSpace:
		ref := e.node.Payload.(planner.NamedRef)
		sp, err := e.ctx.Metadata.GetSpace(ref.Name)
		if err != nil {
			return ExecutionResult{}, err
		}
		return RowsResult(
			[]string{"name", "vid_type", "version", "comment"},
			[][]value.Value{{value.String(sp.Name), value.Int(int64(sp.VIDType)), value.Int(int64(sp.Version)), value.String(sp.Comment)}},
		), nil

	case planner.KindShowSpaces:
		spaces := e.ctx.Metadata.ListSpaces()
		rows := make([][]value.Value, len(spaces))
		for i, sp := range spaces {
			rows[i] = []value.Value{value.String(sp.Name)}
		}
		return RowsResult([]string{"name"}, rows), nil

	case planner.KindCreateTag:
		info := e.node.Payload.(planner.TagManageInfo)
		spaceID, err := e.ctx.spaceID(info.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		_, err = e.ctx.Schema.CreateTag(spaceID, info.TagName, info.Properties)
		if err != nil && !ifNotExistsOK(err) {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindAlterTag:
		info := e.node.Payload.(planner.TagAlterInfo)
		spaceID, err := e.ctx.spaceID(info.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		for _, p := range info.Additions {
			if err := e.ctx.Schema.AddTagField(spaceID, info.TagName, p); err != nil {
				return ExecutionResult{}, err
			}
		}
		for _, name := range info.Deletions {
			if err := e.ctx.Schema.RemoveTagField(spaceID, info.TagName, name); err != nil {
				return ExecutionResult{}, err
			}
		}
		return Success(), nil

	case planner.KindDropTag:
		ref := e.node.Payload.(planner.NamedRef)
		spaceID, err := e.ctx.spaceID(ref.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		if err := e.ctx.Schema.DropTag(spaceID, ref.Name, true); err != nil {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindDescTag:
		ref := e.node.Payload.(planner.NamedRef)
		spaceID, err := e.ctx.spaceID(ref.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		tag, err := e.ctx.Schema.GetTag(spaceID, ref.Name)
		if err != nil {
			return ExecutionResult{}, err
		}
		rows := make([][]value.Value, len(tag.Properties))
		for i, p := range tag.Properties {
			rows[i] = []value.Value{value.String(p.Name), value.String(p.DataType.String()), value.Bool(p.Nullable)}
		}
		return RowsResult([]string{"field", "type", "nullable"}, rows), nil

	case planner.KindShowTags:
		ref := e.node.Payload.(planner.NamedRef)
		spaceID, err := e.ctx.spaceID(ref.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		tags := e.ctx.Schema.ListTags(spaceID)
		rows := make([][]value.Value, len(tags))
		for i, t := range tags {
			rows[i] = []value.Value{value.String(t.Name)}
		}
		return RowsResult([]string{"name"}, rows), nil

	case planner.KindCreateEdge:
		info := e.node.Payload.(planner.EdgeManageInfo)
		spaceID, err := e.ctx.spaceID(info.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		_, err = e.ctx.Schema.CreateEdgeType(spaceID, info.EdgeName, info.Properties)
		if err != nil && !ifNotExistsOK(err) {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindAlterEdge:
		info := e.node.Payload.(planner.EdgeAlterInfo)
		spaceID, err := e.ctx.spaceID(info.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		for _, p := range info.Additions {
			if err := e.ctx.Schema.AddEdgeTypeField(spaceID, info.EdgeName, p); err != nil {
				return ExecutionResult{}, err
			}
		}
		for _, name := range info.Deletions {
			if err := e.ctx.Schema.RemoveEdgeTypeField(spaceID, info.EdgeName, name); err != nil {
				return ExecutionResult{}, err
			}
		}
		return Success(), nil

	case planner.KindDropEdge:
		ref := e.node.Payload.(planner.NamedRef)
		spaceID, err := e.ctx.spaceID(ref.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		if err := e.ctx.Schema.DropEdgeType(spaceID, ref.Name, true); err != nil {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindDescEdge:
		ref := e.node.Payload.(planner.NamedRef)
		spaceID, err := e.ctx.spaceID(ref.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		edges := e.ctx.Schema.ListEdgeTypes(spaceID)
		for _, et := range edges {
			if et.Name != ref.Name {
				continue
			}
			rows := make([][]value.Value, len(et.Properties))
			for i, p := range et.Properties {
				rows[i] = []value.Value{value.String(p.Name), value.String(p.DataType.String()), value.Bool(p.Nullable)}
			}
			return RowsResult([]string{"field", "type", "nullable"}, rows), nil
		}
		return ExecutionResult{}, errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("edge type %q not found", ref.Name))

	case planner.KindShowEdges:
		ref := e.node.Payload.(planner.NamedRef)
		spaceID, err := e.ctx.spaceID(ref.SpaceName)
		if err != nil {
			return ExecutionResult{}, err
		}
		edges := e.ctx.Schema.ListEdgeTypes(spaceID)
		rows := make([][]value.Value, len(edges))
		for i, et := range edges {
			rows[i] = []value.Value{value.String(et.Name)}
		}
		return RowsResult([]string{"name"}, rows), nil

	case planner.KindCreateTagIndex, planner.KindCreateEdgeIndex:
		info := e.node.Payload.(planner.IndexManageInfo)
		kind := index.KindTag
		if e.node.Kind == planner.KindCreateEdgeIndex {
			kind = index.KindEdge
		}
		err := e.ctx.Index.CreateIndex(index.Def{
			Name:       info.IndexName,
			Space:      info.SpaceName,
			SchemaName: info.TargetName,
			Fields:     info.Properties,
			Kind:       kind,
		})
		if err != nil && !ifNotExistsOK(err) {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindDropTagIndex, planner.KindDropEdgeIndex:
		ref := e.node.Payload.(planner.NamedRef)
		if err := e.ctx.Index.DropIndex(ref.Name); err != nil && !notFoundOK(err) {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindDescTagIndex, planner.KindDescEdgeIndex:
		ref := e.node.Payload.(planner.NamedRef)
		def, ok := e.ctx.Index.GetIndex(ref.Name)
		if !ok {
			return ExecutionResult{}, errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("index %q not found", ref.Name))
		}
		rows := make([][]value.Value, len(def.Fields))
		for i, f := range def.Fields {
			rows[i] = []value.Value{value.String(f)}
		}
		return RowsResult([]string{"field"}, rows), nil

	case planner.KindShowTagIndexes, planner.KindShowEdgeIndexes:
		ref := e.node.Payload.(planner.NamedRef)
		wantKind := index.KindTag
		if e.node.Kind == planner.KindShowEdgeIndexes {
			wantKind = index.KindEdge
		}
		defs := e.ctx.Index.ListIndexesBySpace(ref.SpaceName)
		var rows [][]value.Value
		for _, d := range defs {
			if d.Kind != wantKind {
				continue
			}
			rows = append(rows, []value.Value{value.String(d.Name)})
		}
		return RowsResult([]string{"name"}, rows), nil

	case planner.KindRebuildTagIndex, planner.KindRebuildEdgeIndex:
		ref := e.node.Payload.(planner.NamedRef)
		src := e.rebuildSource()
		if err := e.ctx.Index.RebuildIndex(src, ref.Name); err != nil {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindCreateUser:
		info := e.node.Payload.(planner.UserCreateInfo)
		hash, err := auth.HashPassword(info.Password)
		if err != nil {
			return ExecutionResult{}, err
		}
		_, err = e.ctx.Metadata.CreateUser(info.Username, hash, info.Role == "admin")
		if err != nil && !ifNotExistsOK(err) {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindAlterUser:
		info := e.node.Payload.(planner.UserAlterInfo)
		var role *types.RoleType
		if info.NewRole != nil {
			r := roleFromString(*info.NewRole)
			role = &r
		}
		if err := e.ctx.Metadata.AlterUser(info.Username, role, info.IsLocked); err != nil {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindDropUser:
		ref := e.node.Payload.(planner.NamedRef)
		if err := e.ctx.Metadata.DropUser(ref.Name); err != nil && !notFoundOK(err) {
			return ExecutionResult{}, err
		}
		return Success(), nil

	case planner.KindChangePassword:
		info := e.node.Payload.(planner.PasswordInfo)
		if info.Username == nil {
			return ExecutionResult{}, errkit.NewQueryError(errkit.QueryExecutionError, "change password requires a username")
		}
		rec, err := e.ctx.Metadata.GetUser(*info.Username)
		if err != nil {
			return ExecutionResult{}, err
		}
		if !auth.VerifyPassword(info.OldPassword, rec.PasswordHash) {
			return ExecutionResult{}, errkit.NewQueryError(errkit.QueryExecutionError, "old password does not match")
		}
		newHash, err := auth.HashPassword(info.NewPassword)
		if err != nil {
			return ExecutionResult{}, err
		}
		if err := e.ctx.Metadata.UpdatePasswordHash(*info.Username, newHash); err != nil {
			return ExecutionResult{}, err
		}
		return Success(), nil

	default:
		return ExecutionResult{}, errkit.NewQueryError(errkit.QueryExecutionError, fmt.Sprintf("%s is not an admin plan node", e.node.Kind))
	}
}

func roleFromString(s string) types.RoleType {
	switch s {
	case "guest":
		return types.RoleGuest
	case "admin":
		return types.RoleAdmin
	case "god":
		return types.RoleGod
	default:
		return types.RoleUser
	}
}

// rebuildSource wraps the execution context's storage client as an
// index.RebuildSource for RebuildTagIndex/RebuildEdgeIndex.
func (e *AdminExecutor) rebuildSource() index.RebuildSource {
	return storage.NewIndexRebuildSource(e.ctx.Storage, e.ctx.Ctx)
}
