package planner

import "github.com/ali01/graphd/internal/core/types"

// SpaceManageInfo carries CREATE SPACE's parameters. Grounded on
// admin_node.rs's SpaceManageInfo/with_vid_type/with_comment builders.
type SpaceManageInfo struct {
	SpaceName string
	VIDType   types.VIDType
	Comment   string
}

func (SpaceManageInfo) planPayload() {}

func NewSpaceManageInfo(spaceName string) SpaceManageInfo {
	return SpaceManageInfo{SpaceName: spaceName}
}

func (i SpaceManageInfo) WithVIDType(t types.VIDType) SpaceManageInfo {
	i.VIDType = t
	return i
}

func (i SpaceManageInfo) WithComment(c string) SpaceManageInfo {
	i.Comment = c
	return i
}

// TagManageInfo carries CREATE TAG's parameters. Grounded on
// admin_node.rs's TagManageInfo.
type TagManageInfo struct {
	SpaceName  string
	TagName    string
	Properties []types.PropertyDef
	Comment    string
}

func (TagManageInfo) planPayload() {}

func NewTagManageInfo(spaceName, tagName string) TagManageInfo {
	return TagManageInfo{SpaceName: spaceName, TagName: tagName}
}

func (i TagManageInfo) WithProperties(props []types.PropertyDef) TagManageInfo {
	i.Properties = props
	return i
}

func (i TagManageInfo) WithComment(c string) TagManageInfo {
	i.Comment = c
	return i
}

// TagAlterInfo carries ALTER TAG's added/dropped properties. Grounded on
// admin_node.rs's TagAlterInfo.
type TagAlterInfo struct {
	SpaceName string
	TagName   string
	Additions []types.PropertyDef
	Deletions []string
}

func (TagAlterInfo) planPayload() {}

func NewTagAlterInfo(spaceName, tagName string) TagAlterInfo {
	return TagAlterInfo{SpaceName: spaceName, TagName: tagName}
}

func (i TagAlterInfo) WithAdditions(props []types.PropertyDef) TagAlterInfo {
	i.Additions = props
	return i
}

func (i TagAlterInfo) WithDeletions(names []string) TagAlterInfo {
	i.Deletions = names
	return i
}

// EdgeManageInfo carries CREATE EDGE's parameters. Grounded on
// edge_nodes.rs's EdgeManageInfo.
type EdgeManageInfo struct {
	SpaceName  string
	EdgeName   string
	Properties []types.PropertyDef
}

func (EdgeManageInfo) planPayload() {}

func NewEdgeManageInfo(spaceName, edgeName string) EdgeManageInfo {
	return EdgeManageInfo{SpaceName: spaceName, EdgeName: edgeName}
}

func (i EdgeManageInfo) WithProperties(props []types.PropertyDef) EdgeManageInfo {
	i.Properties = props
	return i
}

// EdgeAlterInfo carries ALTER EDGE's added/dropped properties. Grounded
// on edge_nodes.rs's EdgeAlterInfo.
type EdgeAlterInfo struct {
	SpaceName string
	EdgeName  string
	Additions []types.PropertyDef
	Deletions []string
}

func (EdgeAlterInfo) planPayload() {}

func NewEdgeAlterInfo(spaceName, edgeName string) EdgeAlterInfo {
	return EdgeAlterInfo{SpaceName: spaceName, EdgeName: edgeName}
}

func (i EdgeAlterInfo) WithAdditions(props []types.PropertyDef) EdgeAlterInfo {
	i.Additions = props
	return i
}

func (i EdgeAlterInfo) WithDeletions(names []string) EdgeAlterInfo {
	i.Deletions = names
	return i
}

// IndexManageInfo carries CREATE TAG/EDGE INDEX's parameters. Grounded
// on admin_node.rs's IndexManageInfo (target_type distinguishes "tag"
// from "edge").
type IndexManageInfo struct {
	SpaceName  string
	IndexName  string
	TargetType string
	TargetName string
	Properties []string
}

func (IndexManageInfo) planPayload() {}

func NewIndexManageInfo(spaceName, indexName, targetType string) IndexManageInfo {
	return IndexManageInfo{SpaceName: spaceName, IndexName: indexName, TargetType: targetType}
}

func (i IndexManageInfo) WithTargetName(name string) IndexManageInfo {
	i.TargetName = name
	return i
}

func (i IndexManageInfo) WithProperties(props []string) IndexManageInfo {
	i.Properties = props
	return i
}

// NamedRef identifies a space/tag/edge/index solely by name, for the
// Desc/Drop/Show/Rebuild nodes that admin_node.rs gives a bare
// space_name()/tag_name()/edge_name() accessor rather than a builder
// struct.
type NamedRef struct {
	SpaceName string
	Name      string
}

func (NamedRef) planPayload() {}

// UserCreateInfo carries CREATE USER's parameters. Grounded on
// user_nodes.rs's CreateUserNode (username/password/role, role defaults
// to "user").
type UserCreateInfo struct {
	Username string
	Password string
	Role     string
}

func (UserCreateInfo) planPayload() {}

func NewUserCreateInfo(username, password string) UserCreateInfo {
	return UserCreateInfo{Username: username, Password: password, Role: "user"}
}

func (i UserCreateInfo) WithRole(role string) UserCreateInfo {
	i.Role = role
	return i
}

// UserAlterInfo carries ALTER USER's optional role/lock changes.
// Grounded on user_nodes.rs's AlterUserNode (new_role/is_locked as
// Option<T>, represented here as pointers since zero values are valid
// roles/states).
type UserAlterInfo struct {
	Username string
	NewRole  *string
	IsLocked *bool
}

func (UserAlterInfo) planPayload() {}

func NewUserAlterInfo(username string) UserAlterInfo {
	return UserAlterInfo{Username: username}
}

func (i UserAlterInfo) WithRole(role string) UserAlterInfo {
	i.NewRole = &role
	return i
}

func (i UserAlterInfo) WithLocked(locked bool) UserAlterInfo {
	i.IsLocked = &locked
	return i
}

// PasswordInfo carries CHANGE PASSWORD's parameters. Grounded on
// user_nodes.rs's ChangePasswordNode / core::types::metadata::PasswordInfo
// (username optional — absent means "the current session's user").
type PasswordInfo struct {
	Username    *string
	OldPassword string
	NewPassword string
}

func (PasswordInfo) planPayload() {}

// --- constructors, one per admin Kind, mirroring each *Node::new in
// admin_node.rs/edge_nodes.rs/tag_nodes.rs/user_nodes.rs. Every admin
// node shares cost 1.0, no output variable, and no columns (see
// Kind.IsAdmin), so newAdminNode folds all forty trait impls down to one
// helper plus one constructor per distinct payload shape. ---

func NewCreateSpace(info SpaceManageInfo) *Node { return newAdminNode(0, KindCreateSpace, info) }
func NewDropSpace(spaceName string) *Node {
	return newAdminNode(0, KindDropSpace, NamedRef{Name: spaceName})
}
func NewDescSpace(spaceName string) *Node {
	return newAdminNode(0, KindDescSpace, NamedRef{Name: spaceName})
}
func NewShowSpaces() *Node { return newAdminNode(0, KindShowSpaces, NamedRef{}) }

func NewCreateTag(info TagManageInfo) *Node { return newAdminNode(0, KindCreateTag, info) }
func NewAlterTag(info TagAlterInfo) *Node   { return newAdminNode(0, KindAlterTag, info) }
func NewDropTag(spaceName, tagName string) *Node {
	return newAdminNode(0, KindDropTag, NamedRef{SpaceName: spaceName, Name: tagName})
}
func NewDescTag(spaceName, tagName string) *Node {
	return newAdminNode(0, KindDescTag, NamedRef{SpaceName: spaceName, Name: tagName})
}
func NewShowTags(spaceName string) *Node {
	return newAdminNode(0, KindShowTags, NamedRef{SpaceName: spaceName})
}

func NewCreateEdge(info EdgeManageInfo) *Node { return newAdminNode(0, KindCreateEdge, info) }
func NewAlterEdge(info EdgeAlterInfo) *Node   { return newAdminNode(0, KindAlterEdge, info) }
func NewDropEdge(spaceName, edgeName string) *Node {
	return newAdminNode(0, KindDropEdge, NamedRef{SpaceName: spaceName, Name: edgeName})
}
func NewDescEdge(spaceName, edgeName string) *Node {
	return newAdminNode(0, KindDescEdge, NamedRef{SpaceName: spaceName, Name: edgeName})
}
func NewShowEdges(spaceName string) *Node {
	return newAdminNode(0, KindShowEdges, NamedRef{SpaceName: spaceName})
}

func NewCreateTagIndex(info IndexManageInfo) *Node {
	return newAdminNode(0, KindCreateTagIndex, info)
}
func NewDropTagIndex(spaceName, indexName string) *Node {
	return newAdminNode(0, KindDropTagIndex, NamedRef{SpaceName: spaceName, Name: indexName})
}
func NewDescTagIndex(spaceName, indexName string) *Node {
	return newAdminNode(0, KindDescTagIndex, NamedRef{SpaceName: spaceName, Name: indexName})
}
func NewShowTagIndexes(spaceName string) *Node {
	return newAdminNode(0, KindShowTagIndexes, NamedRef{SpaceName: spaceName})
}
func NewRebuildTagIndex(spaceName, indexName string) *Node {
	return newAdminNode(0, KindRebuildTagIndex, NamedRef{SpaceName: spaceName, Name: indexName})
}

func NewCreateEdgeIndex(info IndexManageInfo) *Node {
	return newAdminNode(0, KindCreateEdgeIndex, info)
}
func NewDropEdgeIndex(spaceName, indexName string) *Node {
	return newAdminNode(0, KindDropEdgeIndex, NamedRef{SpaceName: spaceName, Name: indexName})
}
func NewDescEdgeIndex(spaceName, indexName string) *Node {
	return newAdminNode(0, KindDescEdgeIndex, NamedRef{SpaceName: spaceName, Name: indexName})
}
func NewShowEdgeIndexes(spaceName string) *Node {
	return newAdminNode(0, KindShowEdgeIndexes, NamedRef{SpaceName: spaceName})
}
func NewRebuildEdgeIndex(spaceName, indexName string) *Node {
	return newAdminNode(0, KindRebuildEdgeIndex, NamedRef{SpaceName: spaceName, Name: indexName})
}

func NewCreateUser(info UserCreateInfo) *Node { return newAdminNode(0, KindCreateUser, info) }
func NewAlterUser(info UserAlterInfo) *Node   { return newAdminNode(0, KindAlterUser, info) }
func NewDropUser(username string) *Node {
	return newAdminNode(0, KindDropUser, NamedRef{Name: username})
}
func NewChangePassword(info PasswordInfo) *Node { return newAdminNode(0, KindChangePassword, info) }
