package traversal

import (
	"testing"

	"github.com/ali01/graphd/internal/core/value"
)

func buildWeightedDiamond(r *fakeReader) {
	r.addVertex("a")
	r.addVertex("b")
	r.addVertex("c")
	r.addVertex("d")
	r.addWeightedEdge("a", "b", "road", 0, 1)
	r.addWeightedEdge("b", "d", "road", 0, 1)
	r.addWeightedEdge("a", "c", "road", 0, 1)
	r.addWeightedEdge("c", "d", "road", 0, 10)
}

func TestDijkstraPicksCheapestPath(t *testing.T) {
	r := newFakeReader()
	buildWeightedDiamond(r)

	d := NewDijkstra(r, "default").
		WithDirection(DirOut).
		WithWeightConfig(PropertyWeightConfig("weight"))

	paths, err := d.FindPaths(
		[]value.Value{value.String("a")},
		[]value.Value{value.String("d")},
		nil, nil, true, 10,
	)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(paths))
	}
	if len(paths[0].Steps) != 2 {
		t.Fatalf("expected the 2-hop a-b-d route, got %d hops", len(paths[0].Steps))
	}
	if paths[0].Steps[1].Dst.VID.String() != "d" || paths[0].Steps[0].Dst.VID.String() != "b" {
		t.Fatalf("expected route through b, got %s", paths[0])
	}
}

func TestDijkstraUnweightedCountsHops(t *testing.T) {
	r := newFakeReader()
	r.addVertex("a")
	r.addVertex("b")
	r.addVertex("c")
	r.addEdge("a", "b", "knows", 0)
	r.addEdge("b", "c", "knows", 0)

	d := NewDijkstra(r, "default").WithDirection(DirOut)
	paths, err := d.FindPaths(
		[]value.Value{value.String("a")},
		[]value.Value{value.String("c")},
		nil, nil, true, 10,
	)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 1 || len(paths[0].Steps) != 2 {
		t.Fatalf("expected single 2-hop path, got %v", paths)
	}
}

func TestDijkstraNoPathWithinMaxDepth(t *testing.T) {
	r := newFakeReader()
	r.addVertex("a")
	r.addVertex("b")
	r.addVertex("c")
	r.addEdge("a", "b", "knows", 0)
	r.addEdge("b", "c", "knows", 0)

	d := NewDijkstra(r, "default").WithDirection(DirOut)
	maxDepth := 1
	paths, err := d.FindPaths(
		[]value.Value{value.String("a")},
		[]value.Value{value.String("c")},
		nil, &maxDepth, false, 10,
	)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no path within max depth 1, got %v", paths)
	}
}
