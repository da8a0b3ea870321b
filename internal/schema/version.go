package schema

import (
	"fmt"
	"time"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/types"
)

// persist serializes a space's current tags, edge types and history to the
// KV store. Called after every mutating operation has already committed in
// memory; a failure here leaves memory ahead of disk, matching the source's
// validate -> apply-in-memory -> append-change -> persist-before-success
// sequence (the in-memory state is authoritative for the running process,
// persistence is for recovery across restarts).
func (m *Manager) persist(spaceID uint64) error {
	m.tagsMu.RLock()
	tags := make([]types.Tag, 0, len(m.tags[spaceID]))
	for _, t := range m.tags[spaceID] {
		tags = append(tags, t)
	}
	m.tagsMu.RUnlock()

	m.edgeTypesMu.RLock()
	edgeTypes := make([]types.EdgeType, 0, len(m.edgeTypes[spaceID]))
	for _, e := range m.edgeTypes[spaceID] {
		edgeTypes = append(edgeTypes, e)
	}
	m.edgeTypesMu.RUnlock()

	tagsBlob, err := encodeJSON(tags)
	if err != nil {
		return err
	}
	if err := m.kv.Put(tableTags, spaceKey(spaceID), tagsBlob); err != nil {
		return errkit.WrapStorageError(errkit.StorageIOError, "failed to persist tags", err)
	}

	edgesBlob, err := encodeJSON(edgeTypes)
	if err != nil {
		return err
	}
	if err := m.kv.Put(tableEdgeTypes, spaceKey(spaceID), edgesBlob); err != nil {
		return errkit.WrapStorageError(errkit.StorageIOError, "failed to persist edge types", err)
	}

	m.changesMu.Lock()
	changesBlob, err := encodeJSON(m.changes[spaceID])
	m.changesMu.Unlock()
	if err != nil {
		return err
	}
	if err := m.kv.Put(tableSchemaChanges, spaceKey(spaceID), changesBlob); err != nil {
		return errkit.WrapStorageError(errkit.StorageIOError, "failed to persist schema changes", err)
	}

	return nil
}

func spaceKey(spaceID uint64) string { return fmt.Sprintf("%d", spaceID) }

// CreateSchemaVersion snapshots the space's current tags and edge types as
// a new immutable SchemaVersion, appends it to the history, retargets
// CurrentVersion to it, records a SchemaChange, and persists before
// returning — mirroring schema_manager_impl.rs's create_schema_version.
func (m *Manager) CreateSchemaVersion(spaceID uint64, comment string) (*types.SchemaVersion, error) {
	m.tagsMu.RLock()
	tags := make([]types.Tag, 0, len(m.tags[spaceID]))
	for _, t := range m.tags[spaceID] {
		tags = append(tags, t)
	}
	m.tagsMu.RUnlock()

	m.edgeTypesMu.RLock()
	edgeTypes := make([]types.EdgeType, 0, len(m.edgeTypes[spaceID]))
	for _, e := range m.edgeTypes[spaceID] {
		edgeTypes = append(edgeTypes, e)
	}
	m.edgeTypesMu.RUnlock()

	m.versionsMu.Lock()
	hist, ok := m.histories[spaceID]
	if !ok {
		hist = &types.SchemaHistory{SpaceID: spaceID}
		m.histories[spaceID] = hist
	}
	next := m.nextVersion[spaceID] + 1
	m.nextVersion[spaceID] = next

	sv := types.SchemaVersion{
		Version:   next,
		SpaceID:   spaceID,
		Tags:      tags,
		EdgeTypes: edgeTypes,
		CreatedAt: time.UnixMilli(nowMS()),
		Comment:   comment,
	}
	hist.Versions = append(hist.Versions, sv)
	hist.CurrentVersion = next
	m.versionsMu.Unlock()

	m.recordChange(spaceID, types.ChangeCreateVersion, fmt.Sprintf("create schema version %d", next))

	m.versionsMu.RLock()
	blob, err := encodeJSON(hist)
	m.versionsMu.RUnlock()
	if err != nil {
		return nil, err
	}
	if err := m.kv.Put(tableSchemaVersions, spaceKey(spaceID), blob); err != nil {
		return nil, errkit.WrapStorageError(errkit.StorageIOError, "failed to persist schema version", err)
	}
	return &sv, nil
}

// GetSchemaHistory returns the full version history for a space.
func (m *Manager) GetSchemaHistory(spaceID uint64) (*types.SchemaHistory, error) {
	m.versionsMu.RLock()
	defer m.versionsMu.RUnlock()
	hist, ok := m.histories[spaceID]
	if !ok {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("no schema history for space %d", spaceID))
	}
	cp := *hist
	cp.Versions = append([]types.SchemaVersion(nil), hist.Versions...)
	return &cp, nil
}

// RollbackSchema retargets a space's CurrentVersion to an earlier recorded
// version without deleting any forward history — matching
// schema_manager_impl.rs's rollback_schema, which treats history as
// append-only and rollback as a pointer move, not a truncation. The
// in-memory tags/edge-types maps are replaced with that version's snapshot.
func (m *Manager) RollbackSchema(spaceID uint64, targetVersion int32) error {
	m.versionsMu.Lock()
	hist, ok := m.histories[spaceID]
	if !ok {
		m.versionsMu.Unlock()
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("no schema history for space %d", spaceID))
	}
	target, found := hist.FindVersion(targetVersion)
	if !found {
		m.versionsMu.Unlock()
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("schema version %d not found", targetVersion))
	}
	snapshot := *target
	hist.CurrentVersion = targetVersion
	m.versionsMu.Unlock()

	m.tagsMu.Lock()
	tagMap := make(map[uint32]types.Tag, len(snapshot.Tags))
	for _, t := range snapshot.Tags {
		tagMap[t.ID] = t
	}
	m.tags[spaceID] = tagMap
	m.tagsMu.Unlock()

	m.edgeTypesMu.Lock()
	edgeMap := make(map[uint32]types.EdgeType, len(snapshot.EdgeTypes))
	for _, e := range snapshot.EdgeTypes {
		edgeMap[e.ID] = e
	}
	m.edgeTypes[spaceID] = edgeMap
	m.edgeTypesMu.Unlock()

	m.nameCacheMu.Lock()
	tagNames := make(map[string]uint32, len(snapshot.Tags))
	for _, t := range snapshot.Tags {
		tagNames[t.Name] = t.ID
	}
	m.tagNameToID[spaceID] = tagNames
	edgeNames := make(map[string]uint32, len(snapshot.EdgeTypes))
	for _, e := range snapshot.EdgeTypes {
		edgeNames[e.Name] = e.ID
	}
	m.edgeNameToID[spaceID] = edgeNames
	m.nameCacheMu.Unlock()

	m.recordChange(spaceID, types.ChangeRollback, fmt.Sprintf("rollback to schema version %d", targetVersion))
	return m.persist(spaceID)
}

// ValidateSchemaCompatibility checks whether newProps is compatible with
// oldProps for an in-place alter: for every property name present in both,
// the data type must be unchanged, and the property must not become more
// nullable-restrictive (nullable -> non-nullable is a breaking change;
// non-nullable -> nullable is always safe). Properties added or removed
// between the two sets are not considered here — only the overlap.
func ValidateSchemaCompatibility(oldProps, newProps []types.PropertyDef) error {
	oldByName := make(map[string]types.PropertyDef, len(oldProps))
	for _, p := range oldProps {
		oldByName[p.Name] = p
	}
	for _, newP := range newProps {
		oldP, existed := oldByName[newP.Name]
		if !existed {
			continue
		}
		if oldP.DataType != newP.DataType {
			return errkit.NewManagerError(errkit.ManagerSchemaError,
				fmt.Sprintf("field %q: data type changed from %s to %s", newP.Name, oldP.DataType, newP.DataType))
		}
		if oldP.Nullable && !newP.Nullable {
			return errkit.NewManagerError(errkit.ManagerSchemaError,
				fmt.Sprintf("field %q: cannot become non-nullable", newP.Name))
		}
	}
	return nil
}
