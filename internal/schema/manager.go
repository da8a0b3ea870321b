package schema

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/types"
)

// Manager is the schema manager. Its collections are each guarded by their
// own reader-writer lock, matching the source's per-collection RwLock
// discipline (spec section 5): a mutating operation acquires the minimum
// set of locks it needs, commits in memory, releases, then persists. No
// lock is ever held across the KVStore I/O call.
type Manager struct {
	log *logrus.Entry
	kv  KVStore

	tagsMu sync.RWMutex
	tags   map[uint64]map[uint32]types.Tag // space -> tag id -> Tag

	edgeTypesMu sync.RWMutex
	edgeTypes   map[uint64]map[uint32]types.EdgeType // space -> edge type id -> EdgeType

	nameCacheMu    sync.RWMutex
	tagNameToID    map[uint64]map[string]uint32 // space -> tag name -> id
	edgeNameToID   map[uint64]map[string]uint32 // space -> edge type name -> id
	nextTagID      map[uint64]uint32
	nextEdgeTypeID map[uint64]uint32

	versionsMu  sync.RWMutex
	histories   map[uint64]*types.SchemaHistory
	nextVersion map[uint64]int32

	changesMu sync.Mutex
	changes   map[uint64][]types.SchemaChange
}

const (
	tableTags           = "tags"
	tableEdgeTypes      = "edge_types"
	tableSchemaVersions = "schema_versions"
	tableSchemaChanges  = "schema_changes"
	tableCurrentVersion = "current_versions"
)

// New creates a schema manager backed by kv. Pass a nil logger to get a
// discard logger (keeps the manager usable in tests without wiring a sink).
func New(kv KVStore, log *logrus.Entry) *Manager {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(discardWriter{})
		log = logrus.NewEntry(discard)
	}
	return &Manager{
		log:            log,
		kv:             kv,
		tags:           make(map[uint64]map[uint32]types.Tag),
		edgeTypes:      make(map[uint64]map[uint32]types.EdgeType),
		tagNameToID:    make(map[uint64]map[string]uint32),
		edgeNameToID:   make(map[uint64]map[string]uint32),
		nextTagID:      make(map[uint64]uint32),
		nextEdgeTypeID: make(map[uint64]uint32),
		histories:      make(map[uint64]*types.SchemaHistory),
		nextVersion:    make(map[uint64]int32),
		changes:        make(map[uint64][]types.SchemaChange),
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func nowMS() int64 { return time.Now().UnixMilli() }

// CreateTag validates the tag name is unique within the space, assigns it
// an id, applies it to the in-memory collections under lock, records a
// SchemaChange, and persists before returning.
func (m *Manager) CreateTag(spaceID uint64, name string, props []types.PropertyDef) (*types.Tag, error) {
	if name == "" {
		return nil, errkit.NewManagerError(errkit.ManagerInvalidInput, "tag name must not be empty")
	}
	if len(props) == 0 {
		return nil, errkit.NewManagerError(errkit.ManagerInvalidInput, "tag must declare at least one property")
	}
	if dup := findDuplicateProperty(props); dup != "" {
		return nil, errkit.NewManagerError(errkit.ManagerInvalidInput, fmt.Sprintf("duplicate property name %q", dup))
	}

	m.nameCacheMu.Lock()
	names, ok := m.tagNameToID[spaceID]
	if !ok {
		names = make(map[string]uint32)
		m.tagNameToID[spaceID] = names
	}
	if _, exists := names[name]; exists {
		m.nameCacheMu.Unlock()
		return nil, errkit.NewManagerError(errkit.ManagerAlreadyExists, fmt.Sprintf("tag %q already exists", name))
	}
	id := m.nextTagID[spaceID] + 1
	m.nextTagID[spaceID] = id
	names[name] = id
	m.nameCacheMu.Unlock()

	tag := types.Tag{ID: id, SpaceID: spaceID, Name: name, Properties: append([]types.PropertyDef(nil), props...)}

	m.tagsMu.Lock()
	t, ok := m.tags[spaceID]
	if !ok {
		t = make(map[uint32]types.Tag)
		m.tags[spaceID] = t
	}
	t[id] = tag
	m.tagsMu.Unlock()

	m.recordChange(spaceID, types.ChangeCreateTag, fmt.Sprintf("create tag %s", name))
	if err := m.persist(spaceID); err != nil {
		return nil, err
	}
	m.log.WithField("tag", name).WithField("space", spaceID).Info("created tag")
	return &tag, nil
}

// DropTag removes a tag and its name-cache entry from a space. Idempotent
// under ifExists: a missing tag is not an error when ifExists is true.
func (m *Manager) DropTag(spaceID uint64, name string, ifExists bool) error {
	m.nameCacheMu.Lock()
	names := m.tagNameToID[spaceID]
	id, ok := names[name]
	if !ok {
		m.nameCacheMu.Unlock()
		if ifExists {
			return nil
		}
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("tag %q not found", name))
	}
	delete(names, name)
	m.nameCacheMu.Unlock()

	m.tagsMu.Lock()
	if t, ok := m.tags[spaceID]; ok {
		delete(t, id)
	}
	m.tagsMu.Unlock()

	m.recordChange(spaceID, types.ChangeDropTag, fmt.Sprintf("drop tag %s", name))
	return m.persist(spaceID)
}

// ListTags returns every tag currently defined in a space, in an
// unspecified but stable order within one call.
func (m *Manager) ListTags(spaceID uint64) []types.Tag {
	m.tagsMu.RLock()
	defer m.tagsMu.RUnlock()
	out := make([]types.Tag, 0, len(m.tags[spaceID]))
	for _, t := range m.tags[spaceID] {
		out = append(out, t)
	}
	return out
}

// GetTag looks up a tag by name. A cache hit in the name map followed by a
// miss in the tags map is a bug (the two are kept in sync under the same
// mutation path) and is reported as an internal error rather than silently
// treated as not-found.
func (m *Manager) GetTag(spaceID uint64, name string) (*types.Tag, error) {
	m.nameCacheMu.RLock()
	id, ok := m.tagNameToID[spaceID][name]
	m.nameCacheMu.RUnlock()
	if !ok {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("tag %q not found", name))
	}
	m.tagsMu.RLock()
	defer m.tagsMu.RUnlock()
	t, ok := m.tags[spaceID][id]
	if !ok {
		return nil, errkit.NewManagerError(errkit.ManagerOther, fmt.Sprintf("name cache inconsistent for tag %q", name))
	}
	return &t, nil
}

// AddTagField appends a new property to an existing tag.
func (m *Manager) AddTagField(spaceID uint64, tagName string, field types.PropertyDef) error {
	m.nameCacheMu.RLock()
	id, ok := m.tagNameToID[spaceID][tagName]
	m.nameCacheMu.RUnlock()
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("tag %q not found", tagName))
	}

	m.tagsMu.Lock()
	tag, ok := m.tags[spaceID][id]
	if !ok {
		m.tagsMu.Unlock()
		return errkit.NewManagerError(errkit.ManagerOther, "name cache inconsistent")
	}
	for _, p := range tag.Properties {
		if p.Name == field.Name {
			m.tagsMu.Unlock()
			return errkit.NewManagerError(errkit.ManagerInvalidInput, fmt.Sprintf("field %q already exists on tag %q", field.Name, tagName))
		}
	}
	tag.Properties = append(append([]types.PropertyDef(nil), tag.Properties...), field)
	m.tags[spaceID][id] = tag
	m.tagsMu.Unlock()

	m.recordChange(spaceID, types.ChangeAlterTag, fmt.Sprintf("add field %s to tag %s", field.Name, tagName))
	return m.persist(spaceID)
}

// RemoveTagField drops a property from a tag's schema, the deletion half
// of AddTagField's ALTER TAG ADD.
func (m *Manager) RemoveTagField(spaceID uint64, tagName, fieldName string) error {
	m.nameCacheMu.RLock()
	id, ok := m.tagNameToID[spaceID][tagName]
	m.nameCacheMu.RUnlock()
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("tag %q not found", tagName))
	}

	m.tagsMu.Lock()
	tag, ok := m.tags[spaceID][id]
	if !ok {
		m.tagsMu.Unlock()
		return errkit.NewManagerError(errkit.ManagerOther, "name cache inconsistent")
	}
	kept := make([]types.PropertyDef, 0, len(tag.Properties))
	found := false
	for _, p := range tag.Properties {
		if p.Name == fieldName {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		m.tagsMu.Unlock()
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("field %q not found on tag %q", fieldName, tagName))
	}
	tag.Properties = kept
	m.tags[spaceID][id] = tag
	m.tagsMu.Unlock()

	m.recordChange(spaceID, types.ChangeAlterTag, fmt.Sprintf("drop field %s from tag %s", fieldName, tagName))
	return m.persist(spaceID)
}

// AddEdgeTypeField mirrors AddTagField for edge types.
func (m *Manager) AddEdgeTypeField(spaceID uint64, edgeName string, field types.PropertyDef) error {
	m.nameCacheMu.RLock()
	id, ok := m.edgeNameToID[spaceID][edgeName]
	m.nameCacheMu.RUnlock()
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("edge type %q not found", edgeName))
	}

	m.edgeTypesMu.Lock()
	et, ok := m.edgeTypes[spaceID][id]
	if !ok {
		m.edgeTypesMu.Unlock()
		return errkit.NewManagerError(errkit.ManagerOther, "name cache inconsistent")
	}
	for _, p := range et.Properties {
		if p.Name == field.Name {
			m.edgeTypesMu.Unlock()
			return errkit.NewManagerError(errkit.ManagerInvalidInput, fmt.Sprintf("field %q already exists on edge type %q", field.Name, edgeName))
		}
	}
	et.Properties = append(append([]types.PropertyDef(nil), et.Properties...), field)
	m.edgeTypes[spaceID][id] = et
	m.edgeTypesMu.Unlock()

	m.recordChange(spaceID, types.ChangeAlterEdgeType, fmt.Sprintf("add field %s to edge type %s", field.Name, edgeName))
	return m.persist(spaceID)
}

// RemoveEdgeTypeField mirrors RemoveTagField for edge types.
func (m *Manager) RemoveEdgeTypeField(spaceID uint64, edgeName, fieldName string) error {
	m.nameCacheMu.RLock()
	id, ok := m.edgeNameToID[spaceID][edgeName]
	m.nameCacheMu.RUnlock()
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("edge type %q not found", edgeName))
	}

	m.edgeTypesMu.Lock()
	et, ok := m.edgeTypes[spaceID][id]
	if !ok {
		m.edgeTypesMu.Unlock()
		return errkit.NewManagerError(errkit.ManagerOther, "name cache inconsistent")
	}
	kept := make([]types.PropertyDef, 0, len(et.Properties))
	found := false
	for _, p := range et.Properties {
		if p.Name == fieldName {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		m.edgeTypesMu.Unlock()
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("field %q not found on edge type %q", fieldName, edgeName))
	}
	et.Properties = kept
	m.edgeTypes[spaceID][id] = et
	m.edgeTypesMu.Unlock()

	m.recordChange(spaceID, types.ChangeAlterEdgeType, fmt.Sprintf("drop field %s from edge type %s", fieldName, edgeName))
	return m.persist(spaceID)
}

// CreateEdgeType mirrors CreateTag for edge types.
func (m *Manager) CreateEdgeType(spaceID uint64, name string, props []types.PropertyDef) (*types.EdgeType, error) {
	if name == "" {
		return nil, errkit.NewManagerError(errkit.ManagerInvalidInput, "edge type name must not be empty")
	}
	if len(props) == 0 {
		return nil, errkit.NewManagerError(errkit.ManagerInvalidInput, "edge type must declare at least one property")
	}
	if dup := findDuplicateProperty(props); dup != "" {
		return nil, errkit.NewManagerError(errkit.ManagerInvalidInput, fmt.Sprintf("duplicate property name %q", dup))
	}

	m.nameCacheMu.Lock()
	names, ok := m.edgeNameToID[spaceID]
	if !ok {
		names = make(map[string]uint32)
		m.edgeNameToID[spaceID] = names
	}
	if _, exists := names[name]; exists {
		m.nameCacheMu.Unlock()
		return nil, errkit.NewManagerError(errkit.ManagerAlreadyExists, fmt.Sprintf("edge type %q already exists", name))
	}
	id := m.nextEdgeTypeID[spaceID] + 1
	m.nextEdgeTypeID[spaceID] = id
	names[name] = id
	m.nameCacheMu.Unlock()

	et := types.EdgeType{ID: id, SpaceID: spaceID, Name: name, Properties: append([]types.PropertyDef(nil), props...)}

	m.edgeTypesMu.Lock()
	e, ok := m.edgeTypes[spaceID]
	if !ok {
		e = make(map[uint32]types.EdgeType)
		m.edgeTypes[spaceID] = e
	}
	e[id] = et
	m.edgeTypesMu.Unlock()

	m.recordChange(spaceID, types.ChangeCreateEdgeType, fmt.Sprintf("create edge type %s", name))
	if err := m.persist(spaceID); err != nil {
		return nil, err
	}
	return &et, nil
}

// DropEdgeType mirrors DropTag for edge types.
func (m *Manager) DropEdgeType(spaceID uint64, name string, ifExists bool) error {
	m.nameCacheMu.Lock()
	names := m.edgeNameToID[spaceID]
	id, ok := names[name]
	if !ok {
		m.nameCacheMu.Unlock()
		if ifExists {
			return nil
		}
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("edge type %q not found", name))
	}
	delete(names, name)
	m.nameCacheMu.Unlock()

	m.edgeTypesMu.Lock()
	if e, ok := m.edgeTypes[spaceID]; ok {
		delete(e, id)
	}
	m.edgeTypesMu.Unlock()

	m.recordChange(spaceID, types.ChangeDropEdgeType, fmt.Sprintf("drop edge type %s", name))
	return m.persist(spaceID)
}

// ListEdgeTypes returns every edge type currently defined in a space.
func (m *Manager) ListEdgeTypes(spaceID uint64) []types.EdgeType {
	m.edgeTypesMu.RLock()
	defer m.edgeTypesMu.RUnlock()
	out := make([]types.EdgeType, 0, len(m.edgeTypes[spaceID]))
	for _, e := range m.edgeTypes[spaceID] {
		out = append(out, e)
	}
	return out
}

func (m *Manager) recordChange(spaceID uint64, kind types.ChangeKind, description string) {
	m.changesMu.Lock()
	defer m.changesMu.Unlock()
	m.changes[spaceID] = append(m.changes[spaceID], types.SchemaChange{
		SpaceID:     spaceID,
		Kind:        kind,
		Description: description,
		TimestampMS: nowMS(),
	})
}

func (m *Manager) GetSchemaChanges(spaceID uint64) []types.SchemaChange {
	m.changesMu.Lock()
	defer m.changesMu.Unlock()
	out := make([]types.SchemaChange, len(m.changes[spaceID]))
	copy(out, m.changes[spaceID])
	return out
}

func findDuplicateProperty(props []types.PropertyDef) string {
	seen := make(map[string]struct{}, len(props))
	for _, p := range props {
		if _, ok := seen[p.Name]; ok {
			return p.Name
		}
		seen[p.Name] = struct{}{}
	}
	return ""
}
