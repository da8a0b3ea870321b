package index

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/value"
)

// vidKey disambiguates VIDs that render to the same text under different
// kinds, matching internal/storage's vidMapKey convention (kept as a
// private duplicate here rather than an import to keep this package
// independent of the storage layer it indexes).
func vidKey(vid value.Value) string {
	if _, ok := vid.AsInt(); ok {
		return "i:" + vid.String()
	}
	return "s:" + vid.String()
}

type vertexEntry struct {
	Values []value.Value
	VID    value.Value
}

type edgeEntry struct {
	Values []value.Value
	Key    value.EdgeKey
}

// Manager is the secondary index manager. Each per-index entry table is
// guarded by the manager's single lock; the source's per-index RwLocks
// collapse to one here since, unlike schema.Manager's independently-sized
// tag/edge-type/version collections, every index operation here touches
// the same two maps (vertexIndexes/edgeIndexes) regardless of which index
// it targets.
type Manager struct {
	log *logrus.Entry

	mu    sync.RWMutex
	defs  map[string]*Def
	stats map[string]*Stats

	// vertexIndexes[name][fieldKey] holds every vertex entry whose indexed
	// fields encode to fieldKey; non-unique indexes can map one key to many
	// vertices.
	vertexIndexes map[string]map[string][]vertexEntry
	// vertexByVID[name][vidKey] is the reverse lookup update/delete need to
	// find an entry's current field values without a full scan.
	vertexByVID map[string]map[string]vertexEntry

	edgeIndexes map[string]map[string][]edgeEntry
	edgeByKey   map[string]map[value.EdgeKey]edgeEntry
}

func New(log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		log:           log,
		defs:          make(map[string]*Def),
		stats:         make(map[string]*Stats),
		vertexIndexes: make(map[string]map[string][]vertexEntry),
		vertexByVID:   make(map[string]map[string]vertexEntry),
		edgeIndexes:   make(map[string]map[string][]edgeEntry),
		edgeByKey:     make(map[string]map[value.EdgeKey]edgeEntry),
	}
}

// ---- catalog ----

func (m *Manager) GetIndex(name string) (*Def, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.defs[name]
	if !ok {
		return nil, false
	}
	cp := *d
	return &cp, true
}

func (m *Manager) ListIndexes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.defs))
	for name := range m.defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) HasIndex(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.defs[name]
	return ok
}

func (m *Manager) ListIndexesBySpace(space string) []Def {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Def, 0)
	for _, d := range m.defs {
		if d.Space == space {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Manager) CreateIndex(def Def) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.defs[def.Name]; exists {
		return errkit.NewManagerError(errkit.ManagerAlreadyExists, "index already exists: "+def.Name)
	}
	def.Status = StatusActive
	m.defs[def.Name] = &def
	m.stats[def.Name] = &Stats{IndexName: def.Name, LastUpdated: time.Now()}
	switch def.Kind {
	case KindEdge:
		m.edgeIndexes[def.Name] = make(map[string][]edgeEntry)
		m.edgeByKey[def.Name] = make(map[value.EdgeKey]edgeEntry)
	default:
		m.vertexIndexes[def.Name] = make(map[string][]vertexEntry)
		m.vertexByVID[def.Name] = make(map[string]vertexEntry)
	}
	return nil
}

func (m *Manager) DropIndex(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.defs[name]; !exists {
		return errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	delete(m.defs, name)
	delete(m.stats, name)
	delete(m.vertexIndexes, name)
	delete(m.vertexByVID, name)
	delete(m.edgeIndexes, name)
	delete(m.edgeByKey, name)
	return nil
}

// ---- lookups ----

func (m *Manager) touchStats(name string, elapsed time.Duration) {
	st, ok := m.stats[name]
	if !ok {
		return
	}
	st.QueryCount++
	st.TotalQueryMillis += float64(elapsed.Microseconds()) / 1000.0
}

func (m *Manager) LookupVertexByIndex(name string, values []value.Value) ([]value.Value, error) {
	start := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.defs[name]; !ok {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	entries := m.vertexIndexes[name][fieldKey(values)]
	out := make([]value.Value, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.VID)
	}
	m.touchStats(name, time.Since(start))
	return out, nil
}

func (m *Manager) LookupEdgeByIndex(name string, values []value.Value) ([]value.EdgeKey, error) {
	start := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.defs[name]; !ok {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	entries := m.edgeIndexes[name][fieldKey(values)]
	out := make([]value.EdgeKey, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	m.touchStats(name, time.Since(start))
	return out, nil
}

// RangeLookupVertex scans every entry of a single-field index comparing
// its first field against [start, end]; only single-field indexes support
// range lookup, matching the source (composite indexes are never queried
// by range there).
func (m *Manager) RangeLookupVertex(name string, start, end value.Value) ([]value.Value, error) {
	t0 := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.defs[name]; !ok {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	var out []value.Value
	for _, entries := range m.vertexIndexes[name] {
		for _, e := range entries {
			if len(e.Values) == 0 {
				continue
			}
			lo, err := e.Values[0].Compare(start)
			if err != nil {
				continue
			}
			hi, err := e.Values[0].Compare(end)
			if err != nil {
				continue
			}
			if lo >= 0 && hi <= 0 {
				out = append(out, e.VID)
			}
		}
	}
	m.touchStats(name, time.Since(t0))
	return out, nil
}

func (m *Manager) RangeLookupEdge(name string, start, end value.Value) ([]value.EdgeKey, error) {
	t0 := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.defs[name]; !ok {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	var out []value.EdgeKey
	for _, entries := range m.edgeIndexes[name] {
		for _, e := range entries {
			if len(e.Values) == 0 {
				continue
			}
			lo, err := e.Values[0].Compare(start)
			if err != nil {
				continue
			}
			hi, err := e.Values[0].Compare(end)
			if err != nil {
				continue
			}
			if lo >= 0 && hi <= 0 {
				out = append(out, e.Key)
			}
		}
	}
	m.touchStats(name, time.Since(t0))
	return out, nil
}

// ---- writes ----

func (m *Manager) InsertVertex(name string, vid value.Value, values []value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertVertexLocked(name, vid, values)
}

func (m *Manager) insertVertexLocked(name string, vid value.Value, values []value.Value) error {
	def, ok := m.defs[name]
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	key := fieldKey(values)
	entry := vertexEntry{Values: values, VID: vid}
	if def.Unique {
		if existing := m.vertexIndexes[name][key]; len(existing) > 0 {
			return errkit.NewManagerError(errkit.ManagerAlreadyExists, "unique index violation: "+name)
		}
	}
	m.vertexIndexes[name][key] = append(m.vertexIndexes[name][key], entry)
	m.vertexByVID[name][vidKey(vid)] = entry
	m.touchWrite(name)
	return nil
}

func (m *Manager) DeleteVertex(name string, vid value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteVertexLocked(name, vid)
}

func (m *Manager) deleteVertexLocked(name string, vid value.Value) error {
	if _, ok := m.defs[name]; !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	entry, ok := m.vertexByVID[name][vidKey(vid)]
	if !ok {
		return nil
	}
	key := fieldKey(entry.Values)
	entries := m.vertexIndexes[name][key]
	for i, e := range entries {
		if vidKey(e.VID) == vidKey(vid) {
			m.vertexIndexes[name][key] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	delete(m.vertexByVID[name], vidKey(vid))
	m.touchWrite(name)
	return nil
}

func (m *Manager) UpdateVertex(name string, vid value.Value, newValues []value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteVertexLocked(name, vid); err != nil {
		return err
	}
	return m.insertVertexLocked(name, vid, newValues)
}

func (m *Manager) InsertEdge(name string, key value.EdgeKey, values []value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertEdgeLocked(name, key, values)
}

func (m *Manager) insertEdgeLocked(name string, key value.EdgeKey, values []value.Value) error {
	def, ok := m.defs[name]
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	fk := fieldKey(values)
	entry := edgeEntry{Values: values, Key: key}
	if def.Unique {
		if existing := m.edgeIndexes[name][fk]; len(existing) > 0 {
			return errkit.NewManagerError(errkit.ManagerAlreadyExists, "unique index violation: "+name)
		}
	}
	m.edgeIndexes[name][fk] = append(m.edgeIndexes[name][fk], entry)
	m.edgeByKey[name][key] = entry
	m.touchWrite(name)
	return nil
}

func (m *Manager) DeleteEdge(name string, key value.EdgeKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteEdgeLocked(name, key)
}

func (m *Manager) deleteEdgeLocked(name string, key value.EdgeKey) error {
	if _, ok := m.defs[name]; !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	entry, ok := m.edgeByKey[name][key]
	if !ok {
		return nil
	}
	fk := fieldKey(entry.Values)
	entries := m.edgeIndexes[name][fk]
	for i, e := range entries {
		if e.Key == key {
			m.edgeIndexes[name][fk] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	delete(m.edgeByKey[name], key)
	m.touchWrite(name)
	return nil
}

func (m *Manager) UpdateEdge(name string, key value.EdgeKey, newValues []value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteEdgeLocked(name, key); err != nil {
		return err
	}
	return m.insertEdgeLocked(name, key, newValues)
}

func (m *Manager) touchWrite(name string) {
	if st, ok := m.stats[name]; ok {
		st.LastUpdated = time.Now()
	}
}

// ---- batch ----

// VertexEntryInput pairs a VID with the field values to index for it,
// avoiding a string-only map key that would collide int and string VIDs
// sharing a text form (see vidKey).
type VertexEntryInput struct {
	VID    value.Value
	Values []value.Value
}

func (m *Manager) BatchInsertVertices(name string, items []VertexEntryInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		if err := m.insertVertexLocked(name, item.VID, item.Values); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) BatchDeleteVertices(name string, vids []value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, vid := range vids {
		if err := m.deleteVertexLocked(name, vid); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) BatchInsertEdges(name string, keys []value.EdgeKey, values [][]value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, key := range keys {
		if err := m.insertEdgeLocked(name, key, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) BatchDeleteEdges(name string, keys []value.EdgeKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		if err := m.deleteEdgeLocked(name, key); err != nil {
			return err
		}
	}
	return nil
}

// ---- maintenance ----

// RebuildSource supplies the live rows a RebuildIndex pass re-derives
// entries from, decoupling this package from the storage client it would
// otherwise need to import. fields gives the indexed property names, in
// index-column order, so a single tag or edge type can back more than one
// index over different (or differently ordered) fields.
type RebuildSource interface {
	AllVertices(space, tag string, fields []string) ([]value.Value, [][]value.Value)
	AllEdges(space, edgeType string, fields []string) ([]value.EdgeKey, [][]value.Value)
}

func (m *Manager) RebuildIndex(src RebuildSource, name string) error {
	m.mu.Lock()
	def, ok := m.defs[name]
	if !ok {
		m.mu.Unlock()
		return errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	space, schemaName, kind := def.Space, def.SchemaName, def.Kind
	def.Status = StatusCreating
	if kind == KindEdge {
		m.edgeIndexes[name] = make(map[string][]edgeEntry)
		m.edgeByKey[name] = make(map[value.EdgeKey]edgeEntry)
	} else {
		m.vertexIndexes[name] = make(map[string][]vertexEntry)
		m.vertexByVID[name] = make(map[string]vertexEntry)
	}
	m.mu.Unlock()

	if kind == KindEdge {
		keys, values := src.AllEdges(space, schemaName, def.Fields)
		m.mu.Lock()
		for i, k := range keys {
			if err := m.insertEdgeLocked(name, k, values[i]); err != nil {
				m.defs[name].Status = StatusFailed
				m.mu.Unlock()
				return err
			}
		}
		m.defs[name].Status = StatusActive
		m.mu.Unlock()
		return nil
	}

	vids, values := src.AllVertices(space, schemaName, def.Fields)
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, vid := range vids {
		if err := m.insertVertexLocked(name, vid, values[i]); err != nil {
			m.defs[name].Status = StatusFailed
			return err
		}
	}
	m.defs[name].Status = StatusActive
	return nil
}

func (m *Manager) RebuildAllIndexes(src RebuildSource, space string) error {
	for _, d := range m.ListIndexesBySpace(space) {
		if err := m.RebuildIndex(src, d.Name); err != nil {
			return err
		}
	}
	return nil
}

// CheckIndexConsistency compares the index's current entry count against
// what a RebuildSource would produce, matching the source's boolean
// consistency check (it never diffs individual entries, only counts).
func (m *Manager) CheckIndexConsistency(src RebuildSource, name string) (bool, error) {
	m.mu.RLock()
	def, ok := m.defs[name]
	if !ok {
		m.mu.RUnlock()
		return false, errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	space, schemaName, kind := def.Space, def.SchemaName, def.Kind
	var current int
	if kind == KindEdge {
		current = len(m.edgeByKey[name])
	} else {
		current = len(m.vertexByVID[name])
	}
	m.mu.RUnlock()

	var expected int
	if kind == KindEdge {
		keys, _ := src.AllEdges(space, schemaName, def.Fields)
		expected = len(keys)
	} else {
		vids, _ := src.AllVertices(space, schemaName, def.Fields)
		expected = len(vids)
	}
	return current == expected, nil
}

func (m *Manager) RepairIndex(src RebuildSource, name string) error {
	consistent, err := m.CheckIndexConsistency(src, name)
	if err != nil {
		return err
	}
	if consistent {
		return nil
	}
	return m.RebuildIndex(src, name)
}

func (m *Manager) CleanupIndex(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.defs[name]; !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	m.vertexIndexes[name] = make(map[string][]vertexEntry)
	m.vertexByVID[name] = make(map[string]vertexEntry)
	m.edgeIndexes[name] = make(map[string][]edgeEntry)
	m.edgeByKey[name] = make(map[value.EdgeKey]edgeEntry)
	return nil
}

func (m *Manager) GetIndexStats(name string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.stats[name]
	if !ok {
		return Stats{}, errkit.NewManagerError(errkit.ManagerNotFound, "index not found: "+name)
	}
	out := *st
	if def, ok := m.defs[name]; ok {
		if def.Kind == KindEdge {
			out.TotalEntries = len(m.edgeByKey[name])
			out.UniqueEntries = len(m.edgeIndexes[name])
		} else {
			out.TotalEntries = len(m.vertexByVID[name])
			out.UniqueEntries = len(m.vertexIndexes[name])
		}
	}
	return out, nil
}

func (m *Manager) GetAllIndexStats(space string) []Stats {
	out := make([]Stats, 0)
	for _, d := range m.ListIndexesBySpace(space) {
		if st, err := m.GetIndexStats(d.Name); err == nil {
			out = append(out, st)
		}
	}
	return out
}

// AnalyzeIndex produces cheap heuristic suggestions from the entry-vs-key
// fan-out ratio: a unique/near-unique key distribution is healthy, while a
// few keys holding most entries suggests the index isn't selective enough
// to be worth the write overhead.
func (m *Manager) AnalyzeIndex(name string) (Optimization, error) {
	st, err := m.GetIndexStats(name)
	if err != nil {
		return Optimization{}, err
	}
	opt := Optimization{IndexName: name, Priority: "low"}
	if st.TotalEntries == 0 {
		opt.Suggestions = append(opt.Suggestions, "index has no entries; consider dropping it")
		opt.Priority = "medium"
		return opt, nil
	}
	fanout := float64(st.TotalEntries) / float64(maxInt(st.UniqueEntries, 1))
	if fanout > 10 {
		opt.Suggestions = append(opt.Suggestions,
			fmt.Sprintf("low selectivity: average of %.1f entries per distinct key", fanout))
		opt.Priority = "high"
	}
	if st.QueryCount == 0 {
		opt.Suggestions = append(opt.Suggestions, "index has never been queried; consider dropping it")
		if opt.Priority == "low" {
			opt.Priority = "medium"
		}
	}
	return opt, nil
}

func (m *Manager) AnalyzeAllIndexes(space string) []Optimization {
	out := make([]Optimization, 0)
	for _, d := range m.ListIndexesBySpace(space) {
		if opt, err := m.AnalyzeIndex(d.Name); err == nil && len(opt.Suggestions) > 0 {
			out = append(out, opt)
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
