package traversal

import (
	"testing"

	"github.com/ali01/graphd/internal/core/value"
)

func TestBidirectionalBFSFindsPath(t *testing.T) {
	r := newFakeReader()
	r.addVertex("a")
	r.addVertex("b")
	r.addVertex("c")
	r.addVertex("d")
	r.addEdge("a", "b", "knows", 0)
	r.addEdge("b", "c", "knows", 0)
	r.addEdge("c", "d", "knows", 0)

	bfs := NewBidirectionalBFS(r, "default").WithDirection(DirOut)
	paths, err := bfs.FindPaths(
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
	if got := len(paths[0].Steps); got != 3 {
		t.Fatalf("expected 3-hop path, got %d hops", got)
	}
	if !paths[0].Src.VID.Equal(value.String("a")) {
		t.Fatalf("expected path to start at a, got %s", paths[0].Src.VID)
	}
}

func TestBidirectionalBFSNoPath(t *testing.T) {
	r := newFakeReader()
	r.addVertex("a")
	r.addVertex("b")

	bfs := NewBidirectionalBFS(r, "default").WithDirection(DirOut)
	paths, err := bfs.FindPaths(
		[]value.Value{value.String("a")},
		[]value.Value{value.String("b")},
		nil, nil, false, 10,
	)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no path, got %d", len(paths))
	}
}

func TestBidirectionalBFSSameSourceAndTargetYieldsTrivialPath(t *testing.T) {
	r := newFakeReader()
	r.addVertex("a")
	r.addVertex("b")
	r.addEdge("a", "b", "knows", 0)

	bfs := NewBidirectionalBFS(r, "default").WithDirection(DirBoth)
	paths, err := bfs.FindPaths(
		[]value.Value{value.String("a")},
		[]value.Value{value.String("a")},
		nil, nil, true, 10,
	)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 1 || len(paths[0].Steps) != 0 {
		t.Fatalf("expected a single zero-hop path, got %v", paths)
	}
}
