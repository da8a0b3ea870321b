package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/value"
)

// MemoryStorage is an in-process, mutex-guarded reference implementation
// of StorageClient: the storage-client analogue of schema.MemoryKV, used
// for unit tests of the executor and traversal layers and as the
// single-process deployment's store when no Postgres is configured.
type MemoryStorage struct {
	mu       sync.RWMutex
	vertices map[string]map[string]*value.Vertex // space -> vidMapKey(vid) -> vertex
	edges    map[string]map[value.EdgeKey]*value.Edge
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		vertices: make(map[string]map[string]*value.Vertex),
		edges:    make(map[string]map[value.EdgeKey]*value.Edge),
	}
}

// vidMapKey disambiguates VIDs that render to the same text under
// different kinds (int 42 vs string "42" must not collide as one vertex),
// mirroring the vid_kind column postgres.go keys its primary key on.
func vidMapKey(vid value.Value) string {
	if _, ok := vid.AsInt(); ok {
		return "i:" + vid.String()
	}
	return "s:" + vid.String()
}

func cloneVertex(v *value.Vertex) *value.Vertex {
	out := value.NewVertex(v.VID, v.ID)
	for t := range v.Tags {
		out.AddTag(t)
	}
	for k, p := range v.Properties {
		out.Properties[k] = p
	}
	return out
}

func cloneEdge(e *value.Edge) *value.Edge {
	out := value.NewEdge(e.Src, e.Dst, e.EdgeType, e.Ranking)
	for k, v := range e.Properties {
		out.Properties[k] = v
	}
	return out
}

func (s *MemoryStorage) AddVertex(_ context.Context, space string, vid value.Value, tags []string, props map[string]value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := value.NewVertex(vid, 0)
	for _, t := range tags {
		v.AddTag(t)
	}
	for k, p := range props {
		v.Properties[k] = p
	}
	s.putVertexLocked(space, v)
	return nil
}

func (s *MemoryStorage) putVertexLocked(space string, v *value.Vertex) {
	tbl, ok := s.vertices[space]
	if !ok {
		tbl = make(map[string]*value.Vertex)
		s.vertices[space] = tbl
	}
	tbl[vidMapKey(v.VID)] = v
}

func (s *MemoryStorage) AddVertices(ctx context.Context, space string, items []VertexBatchItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		v := value.NewVertex(item.VID, 0)
		for _, t := range item.Tags {
			v.AddTag(t)
		}
		for k, p := range item.Properties {
			v.Properties[k] = p
		}
		s.putVertexLocked(space, v)
	}
	return nil
}

func (s *MemoryStorage) GetVertex(_ context.Context, space string, vid value.Value) (*value.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tbl, ok := s.vertices[space]
	if !ok {
		return nil, nil
	}
	v, ok := tbl[vidMapKey(vid)]
	if !ok {
		return nil, nil
	}
	return cloneVertex(v), nil
}

func (s *MemoryStorage) GetVertices(ctx context.Context, space string, vids []value.Value) ([]*value.Vertex, error) {
	out := make([]*value.Vertex, 0, len(vids))
	for _, vid := range vids {
		v, err := s.GetVertex(ctx, space, vid)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemoryStorage) DeleteVertex(_ context.Context, space string, vid value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tbl, ok := s.vertices[space]; ok {
		delete(tbl, vidMapKey(vid))
	}
	return nil
}

func (s *MemoryStorage) DeleteVertices(ctx context.Context, space string, vids []value.Value) error {
	for _, vid := range vids {
		if err := s.DeleteVertex(ctx, space, vid); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStorage) DeleteTags(_ context.Context, space string, vid value.Value, tagIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tbl, ok := s.vertices[space]
	if !ok {
		return nil
	}
	v, ok := tbl[vidMapKey(vid)]
	if !ok {
		return errkit.NewStorageError(errkit.StorageNodeNotFound, "vertex not found")
	}
	for _, tag := range tagIDs {
		delete(v.Tags, tag)
	}
	return nil
}

func (s *MemoryStorage) UpdateVertex(_ context.Context, space string, vid value.Value, tagID string, spec UpdateSpec) (*UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tbl, ok := s.vertices[space]
	if !ok {
		tbl = make(map[string]*value.Vertex)
		s.vertices[space] = tbl
	}
	v, exists := tbl[vidMapKey(vid)]
	if !exists {
		if !spec.Insertable {
			return nil, errkit.NewStorageError(errkit.StorageNodeNotFound, "vertex not found")
		}
		v = value.NewVertex(vid, 0)
		if tagID != "" {
			v.AddTag(tagID)
		}
		tbl[vidMapKey(vid)] = v
		for k, p := range spec.Updates {
			v.Properties[k] = p
		}
		return &UpdateResult{Inserted: true, Props: projectProps(v.Properties, spec.ReturnProps)}, nil
	}
	if spec.Condition != nil && !spec.Condition(v.Properties) {
		return &UpdateResult{Inserted: false, Props: projectProps(v.Properties, spec.ReturnProps)}, nil
	}
	for k, p := range spec.Updates {
		v.Properties[k] = p
	}
	return &UpdateResult{Inserted: false, Props: projectProps(v.Properties, spec.ReturnProps)}, nil
}

func projectProps(props map[string]value.Value, wanted []string) map[string]value.Value {
	if wanted == nil {
		out := make(map[string]value.Value, len(props))
		for k, v := range props {
			out[k] = v
		}
		return out
	}
	out := make(map[string]value.Value, len(wanted))
	for _, name := range wanted {
		if v, ok := props[name]; ok {
			out[name] = v
		}
	}
	return out
}

func (s *MemoryStorage) AddEdge(_ context.Context, space string, edge *value.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putEdgeLocked(space, edge)
	return nil
}

func (s *MemoryStorage) putEdgeLocked(space string, edge *value.Edge) {
	tbl, ok := s.edges[space]
	if !ok {
		tbl = make(map[value.EdgeKey]*value.Edge)
		s.edges[space] = tbl
	}
	tbl[edge.Identity()] = cloneEdge(edge)
}

func (s *MemoryStorage) AddEdges(_ context.Context, space string, edges []EdgeBatchItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range edges {
		e := value.NewEdge(item.Src, item.Dst, item.EdgeType, item.Ranking)
		for k, p := range item.Properties {
			e.Properties[k] = p
		}
		s.putEdgeLocked(space, e)
	}
	return nil
}

func (s *MemoryStorage) GetEdge(_ context.Context, space string, key value.EdgeKey) (*value.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tbl, ok := s.edges[space]
	if !ok {
		return nil, nil
	}
	e, ok := tbl[key]
	if !ok {
		return nil, nil
	}
	return cloneEdge(e), nil
}

func (s *MemoryStorage) GetEdges(ctx context.Context, space string, keys []value.EdgeKey) ([]*value.Edge, error) {
	out := make([]*value.Edge, 0, len(keys))
	for _, k := range keys {
		e, err := s.GetEdge(ctx, space, k)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStorage) DeleteEdge(_ context.Context, space string, key value.EdgeKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tbl, ok := s.edges[space]; ok {
		delete(tbl, key)
	}
	return nil
}

func (s *MemoryStorage) DeleteEdges(ctx context.Context, space string, keys []value.EdgeKey) error {
	for _, k := range keys {
		if err := s.DeleteEdge(ctx, space, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStorage) UpdateEdge(_ context.Context, space string, key value.EdgeKey, spec UpdateSpec) (*UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tbl, ok := s.edges[space]
	if !ok {
		tbl = make(map[value.EdgeKey]*value.Edge)
		s.edges[space] = tbl
	}
	e, exists := tbl[key]
	if !exists {
		if !spec.Insertable {
			return nil, errkit.NewStorageError(errkit.StorageEdgeNotFound, "edge not found")
		}
		e = value.NewEdge(value.String(key.Src), value.String(key.Dst), key.EdgeType, key.Ranking)
		tbl[key] = e
		for k, p := range spec.Updates {
			e.Properties[k] = p
		}
		return &UpdateResult{Inserted: true, Props: projectProps(e.Properties, spec.ReturnProps)}, nil
	}
	if spec.Condition != nil && !spec.Condition(e.Properties) {
		return &UpdateResult{Inserted: false, Props: projectProps(e.Properties, spec.ReturnProps)}, nil
	}
	for k, p := range spec.Updates {
		e.Properties[k] = p
	}
	return &UpdateResult{Inserted: false, Props: projectProps(e.Properties, spec.ReturnProps)}, nil
}

func (s *MemoryStorage) ScanVertices(_ context.Context, space string, limit int) ([]*value.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tbl := s.vertices[space]
	keys := make([]string, 0, len(tbl))
	for k := range tbl {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*value.Vertex, 0, len(keys))
	for _, k := range keys {
		out = append(out, cloneVertex(tbl[k]))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStorage) ScanVerticesByTag(_ context.Context, space, tagID string, limit int) ([]*value.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tbl := s.vertices[space]
	keys := make([]string, 0, len(tbl))
	for k := range tbl {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*value.Vertex, 0)
	for _, k := range keys {
		v := tbl[k]
		if !v.HasTag(tagID) {
			continue
		}
		out = append(out, cloneVertex(v))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStorage) ScanEdges(_ context.Context, space string, limit int) ([]*value.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanEdgesFilteredLocked(s.edges[space], limit, nil), nil
}

func (s *MemoryStorage) ScanEdgesByType(_ context.Context, space, edgeType string, limit int) ([]*value.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanEdgesFilteredLocked(s.edges[space], limit, func(e *value.Edge) bool {
		return e.EdgeType == edgeType
	}), nil
}

func (s *MemoryStorage) ScanEdgesBySrc(_ context.Context, space string, src value.Value, limit int) ([]*value.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanEdgesFilteredLocked(s.edges[space], limit, func(e *value.Edge) bool {
		return e.Src.Equal(src)
	}), nil
}

func (s *MemoryStorage) ScanEdgesByDst(_ context.Context, space string, dst value.Value, limit int) ([]*value.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanEdgesFilteredLocked(s.edges[space], limit, func(e *value.Edge) bool {
		return e.Dst.Equal(dst)
	}), nil
}

func scanEdgesFilteredLocked(tbl map[value.EdgeKey]*value.Edge, limit int, pred func(*value.Edge) bool) []*value.Edge {
	keys := make([]value.EdgeKey, 0, len(tbl))
	for k := range tbl {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return edgeKeyLess(keys[i], keys[j])
	})
	out := make([]*value.Edge, 0)
	for _, k := range keys {
		e := tbl[k]
		if pred != nil && !pred(e) {
			continue
		}
		out = append(out, cloneEdge(e))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func edgeKeyLess(a, b value.EdgeKey) bool {
	if a.Src != b.Src {
		return a.Src < b.Src
	}
	if a.EdgeType != b.EdgeType {
		return a.EdgeType < b.EdgeType
	}
	if a.Ranking != b.Ranking {
		return a.Ranking < b.Ranking
	}
	return a.Dst < b.Dst
}

// WithTransaction runs fn against the same MemoryStorage instance: every
// in-memory write is already atomic under s.mu, so there is no separate
// transactional view to construct. Each single call and each batch call
// is atomic, but the calls fn makes are not rolled back together: writes
// fn made before returning an error stay applied, and that error is
// returned unchanged.
func (s *MemoryStorage) WithTransaction(ctx context.Context, fn func(tx StorageClient) error) error {
	return fn(s)
}
