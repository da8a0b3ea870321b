package storage

import (
	"context"
	"math"

	"github.com/ali01/graphd/internal/core/value"
)

// IndexRebuildSource adapts a StorageClient into internal/index.Manager's
// RebuildSource: it scans every vertex of a tag or every edge of an edge
// type and projects the requested fields out of each row's property map,
// in the caller-supplied order, so a rebuild or consistency check can run
// against live storage instead of the fakeRebuildSource tests use.
//
// A property absent from a row (the schema allows it, the row never set
// it) projects as value.Null() rather than failing the scan; index
// entries keyed on a missing field are expected to collect under that
// null key rather than aborting the whole rebuild.
type IndexRebuildSource struct {
	Client StorageClient
	Ctx    context.Context
}

// NewIndexRebuildSource wraps client for use as an index.RebuildSource.
// A nil ctx defaults to context.Background.
func NewIndexRebuildSource(client StorageClient, ctx context.Context) *IndexRebuildSource {
	if ctx == nil {
		ctx = context.Background()
	}
	return &IndexRebuildSource{Client: client, Ctx: ctx}
}

// scanLimit bounds a single rebuild scan. RebuildIndex has no pagination
// hook to drive further pages with, so this picks a ceiling generous
// enough for a single-process deployment's in-memory or Postgres store.
const scanLimit = math.MaxInt32

func projectFields(props map[string]value.Value, fields []string) []value.Value {
	out := make([]value.Value, len(fields))
	for i, f := range fields {
		v, ok := props[f]
		if !ok {
			v = value.Null()
		}
		out[i] = v
	}
	return out
}

func (s *IndexRebuildSource) AllVertices(space, tag string, fields []string) ([]value.Value, [][]value.Value) {
	vertices, err := s.Client.ScanVerticesByTag(s.Ctx, space, tag, scanLimit)
	if err != nil {
		return nil, nil
	}
	vids := make([]value.Value, len(vertices))
	values := make([][]value.Value, len(vertices))
	for i, v := range vertices {
		vids[i] = v.VID
		values[i] = projectFields(v.Properties, fields)
	}
	return vids, values
}

func (s *IndexRebuildSource) AllEdges(space, edgeType string, fields []string) ([]value.EdgeKey, [][]value.Value) {
	edges, err := s.Client.ScanEdgesByType(s.Ctx, space, edgeType, scanLimit)
	if err != nil {
		return nil, nil
	}
	keys := make([]value.EdgeKey, len(edges))
	values := make([][]value.Value, len(edges))
	for i, e := range edges {
		keys[i] = value.EdgeKey{Src: e.Src.String(), EdgeType: e.EdgeType, Ranking: e.Ranking, Dst: e.Dst.String()}
		values[i] = projectFields(e.Properties, fields)
	}
	return keys, values
}
