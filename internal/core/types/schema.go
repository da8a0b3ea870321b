// Package types holds the catalog-level data model: spaces, tags, edge
// types, schema versions, indexes and transactions. These are the typed
// entities the schema and metadata managers own and persist; value.Vertex
// and value.Edge are the in-flight data the storage client and executors
// move around.
package types

import "time"

// DataType enumerates the property value types a PropertyDef can declare.
// Kept distinct from value.Kind: DataType is a schema-level declaration,
// value.Kind is the runtime tag on an actual Value.
type DataType int

const (
	DataTypeBool DataType = iota
	DataTypeInt
	DataTypeFloat
	DataTypeString
	DataTypeDate
	DataTypeTime
	DataTypeDateTime
	DataTypeDuration
	DataTypeGeography
	DataTypeList
	DataTypeSet
	DataTypeMap
	DataTypeBlob
)

func (d DataType) String() string {
	switch d {
	case DataTypeBool:
		return "bool"
	case DataTypeInt:
		return "int"
	case DataTypeFloat:
		return "float"
	case DataTypeString:
		return "string"
	case DataTypeDate:
		return "date"
	case DataTypeTime:
		return "time"
	case DataTypeDateTime:
		return "datetime"
	case DataTypeDuration:
		return "duration"
	case DataTypeGeography:
		return "geography"
	case DataTypeList:
		return "list"
	case DataTypeSet:
		return "set"
	case DataTypeMap:
		return "map"
	case DataTypeBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// PropertyDef is one field in a tag or edge-type schema.
type PropertyDef struct {
	Name     string
	DataType DataType
	Nullable bool
	Default  *string // encoded default value, if any
	Comment  string
}

// Tag is a named vertex label with a property schema.
type Tag struct {
	ID         uint32
	SpaceID    uint64
	Name       string
	Properties []PropertyDef
}

// FindProperty returns the property definition with the given name, if
// present.
func (t *Tag) FindProperty(name string) (*PropertyDef, bool) {
	for i := range t.Properties {
		if t.Properties[i].Name == name {
			return &t.Properties[i], true
		}
	}
	return nil, false
}

// EdgeType is a named edge relation with a property schema.
type EdgeType struct {
	ID         uint32
	SpaceID    uint64
	Name       string
	Properties []PropertyDef
}

func (e *EdgeType) FindProperty(name string) (*PropertyDef, bool) {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i], true
		}
	}
	return nil, false
}

// VIDType declares whether a space's vertex identifiers are strings or
// fixed-width integers.
type VIDType int

const (
	VIDTypeInt64 VIDType = iota
	VIDTypeString
)

// Space is an isolated graph catalog: a named collection of tags and edge
// types plus the data under them. Space IDs are monotonically allocated
// and never reused after a drop.
type Space struct {
	SpaceID   uint64
	Name      string
	VIDType   VIDType
	Tags      []Tag
	EdgeTypes []EdgeType
	Version   int32
	Comment   string
}

// SchemaVersion is an immutable snapshot of a space's tags and edge types
// at a point in time.
type SchemaVersion struct {
	Version    int32
	SpaceID    uint64
	Tags       []Tag
	EdgeTypes  []EdgeType
	CreatedAt  time.Time
	Comment    string
}

// ChangeKind enumerates the kinds of mutation a SchemaChange records.
type ChangeKind int

const (
	ChangeCreateTag ChangeKind = iota
	ChangeAlterTag
	ChangeDropTag
	ChangeCreateEdgeType
	ChangeAlterEdgeType
	ChangeDropEdgeType
	ChangeCreateVersion
	ChangeRollback
)

// SchemaChange is an append-only audit record of one schema mutation,
// timestamped to millisecond precision so that mutations within a space
// are totally ordered.
type SchemaChange struct {
	SpaceID     uint64
	Kind        ChangeKind
	Description string
	TimestampMS int64
}

// SchemaHistory tracks every SchemaVersion ever created for a space plus a
// pointer to the currently active one. Rollback retargets CurrentVersion
// without deleting forward history.
type SchemaHistory struct {
	SpaceID        uint64
	Versions       []SchemaVersion
	CurrentVersion int32
	Changes        []SchemaChange
}

// FindVersion returns the snapshot for version v, if recorded.
func (h *SchemaHistory) FindVersion(v int32) (*SchemaVersion, bool) {
	for i := range h.Versions {
		if h.Versions[i].Version == v {
			return &h.Versions[i], true
		}
	}
	return nil, false
}
