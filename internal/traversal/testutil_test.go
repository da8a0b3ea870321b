package traversal

import "github.com/ali01/graphd/internal/core/value"

// fakeReader is an in-memory GraphReader used across this package's tests.
// GetNodeEdges returns every edge incident on vid regardless of dir,
// mirroring a real storage client that lets the caller (neighborsWithEdges)
// resolve the direction-correct neighbor.
type fakeReader struct {
	vertices map[string]*value.Vertex
	allEdges []*value.Edge
}

func newFakeReader() *fakeReader {
	return &fakeReader{vertices: make(map[string]*value.Vertex)}
}

func (f *fakeReader) addVertex(vid string) *value.Vertex {
	v := value.NewVertex(value.String(vid), 0)
	f.vertices[v.VID.String()] = v
	return v
}

func (f *fakeReader) addVertexWithProps(vid string, props map[string]value.Value) *value.Vertex {
	v := f.addVertex(vid)
	v.Properties = props
	return v
}

func (f *fakeReader) addEdge(src, dst, edgeType string, ranking int64) *value.Edge {
	e := value.NewEdge(value.String(src), value.String(dst), edgeType, ranking)
	f.allEdges = append(f.allEdges, e)
	return e
}

func (f *fakeReader) addWeightedEdge(src, dst, edgeType string, ranking int64, weight float64) *value.Edge {
	e := f.addEdge(src, dst, edgeType, ranking)
	e.Properties["weight"] = value.Float(weight)
	return e
}

func (f *fakeReader) GetVertex(space string, vid value.Value) (*value.Vertex, error) {
	return f.vertices[vid.String()], nil
}

func (f *fakeReader) GetNodeEdges(space string, vid value.Value, dir Direction) ([]*value.Edge, error) {
	var out []*value.Edge
	for _, e := range f.allEdges {
		if e.Src.Equal(vid) || e.Dst.Equal(vid) {
			out = append(out, e)
		}
	}
	return out, nil
}
