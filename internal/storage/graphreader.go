package storage

import (
	"context"

	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/traversal"
)

// GraphReaderAdapter exposes a StorageClient through traversal.GraphReader,
// the narrow read-only contract the traversal algorithms depend on. It
// binds a fixed context.Context for the lifetime of one traversal call
// since GraphReader's methods (matching the source's synchronous trait
// methods) don't thread one through themselves.
type GraphReaderAdapter struct {
	client StorageClient
	ctx    context.Context
}

func NewGraphReaderAdapter(ctx context.Context, client StorageClient) *GraphReaderAdapter {
	return &GraphReaderAdapter{client: client, ctx: ctx}
}

func (a *GraphReaderAdapter) GetVertex(space string, vid value.Value) (*value.Vertex, error) {
	return a.client.GetVertex(a.ctx, space, vid)
}

// GetNodeEdges fetches the edges incident on vid in the requested
// direction. DirBoth unions the src-indexed and dst-indexed scans,
// deduplicating by edge identity since a self-loop would otherwise be
// matched by both scans.
func (a *GraphReaderAdapter) GetNodeEdges(space string, vid value.Value, dir traversal.Direction) ([]*value.Edge, error) {
	switch dir {
	case traversal.DirOut:
		return a.client.ScanEdgesBySrc(a.ctx, space, vid, 0)
	case traversal.DirIn:
		return a.client.ScanEdgesByDst(a.ctx, space, vid, 0)
	default:
		out, err := a.client.ScanEdgesBySrc(a.ctx, space, vid, 0)
		if err != nil {
			return nil, err
		}
		in, err := a.client.ScanEdgesByDst(a.ctx, space, vid, 0)
		if err != nil {
			return nil, err
		}
		seen := make(map[value.EdgeKey]struct{}, len(out)+len(in))
		merged := make([]*value.Edge, 0, len(out)+len(in))
		for _, e := range out {
			seen[e.Identity()] = struct{}{}
			merged = append(merged, e)
		}
		for _, e := range in {
			if _, ok := seen[e.Identity()]; ok {
				continue
			}
			merged = append(merged, e)
		}
		return merged, nil
	}
}
