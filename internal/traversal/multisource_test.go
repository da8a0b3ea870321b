package traversal

import (
	"testing"

	"github.com/ali01/graphd/internal/core/value"
)

func TestTerminationMapCreation(t *testing.T) {
	startVids := []value.Value{value.String("a"), value.String("b")}
	endVids := []value.Value{value.String("c"), value.String("d")}

	m := newTerminationMap(startVids, endVids)

	if len(m) != 2 {
		t.Fatalf("expected 2 src entries, got %d", len(m))
	}
	if _, ok := m[value.String("a").String()]; !ok {
		t.Fatalf("expected entry for a")
	}
	if _, ok := m[value.String("b").String()]; !ok {
		t.Fatalf("expected entry for b")
	}
	if got := len(m[value.String("a").String()].pairs); got != 2 {
		t.Fatalf("expected 2 pairs for a, got %d", got)
	}
}

func TestMarkPathFound(t *testing.T) {
	startVids := []value.Value{value.String("a")}
	endVids := []value.Value{value.String("b")}

	m := newTerminationMap(startVids, endVids)

	if !m.markFound(value.String("a"), value.String("b")) {
		t.Fatalf("expected markFound to succeed")
	}

	pairs := m[value.String("a").String()].pairs
	if pairs[0].found {
		t.Fatalf("expected pair to be marked resolved")
	}
}

func TestCleanupTerminationMap(t *testing.T) {
	startVids := []value.Value{value.String("a")}
	endVids := []value.Value{value.String("b"), value.String("c")}

	m := newTerminationMap(startVids, endVids)
	m.markFound(value.String("a"), value.String("b"))
	m.cleanup()

	if len(m) != 1 {
		t.Fatalf("expected 1 remaining src entry, got %d", len(m))
	}
	pairs := m[value.String("a").String()].pairs
	if len(pairs) != 1 {
		t.Fatalf("expected 1 remaining pair, got %d", len(pairs))
	}
	if !pairs[0].dst.Equal(value.String("c")) {
		t.Fatalf("expected remaining pair to be c, got %s", pairs[0].dst)
	}
}

func TestCreatePaths(t *testing.T) {
	path := value.NewPath(value.NewVertex(value.String("a"), 0))
	edge := value.NewEdge(value.String("a"), value.String("b"), "edge", 0)

	newPaths := createPaths([]*value.Path{path}, edge, value.String("b"))

	if len(newPaths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(newPaths))
	}
	if len(newPaths[0].Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(newPaths[0].Steps))
	}
	if len(path.Steps) != 0 {
		t.Fatalf("createPaths must not mutate its input path")
	}
}

func TestMultiSourcePathHasNoDuplicateEdges(t *testing.T) {
	path := &value.Path{
		Src: value.NewVertex(value.String("a"), 0),
		Steps: []value.Step{
			{Edge: value.NewEdge(value.String("a"), value.String("b"), "e", 0), Dst: value.NewVertex(value.String("b"), 0)},
			{Edge: value.NewEdge(value.String("b"), value.String("c"), "e", 0), Dst: value.NewVertex(value.String("c"), 0)},
		},
	}
	if path.HasDuplicateEdges() {
		t.Fatalf("expected no duplicate edges")
	}
}

func TestMultiSourcePathExecuteFindsMeetingPoint(t *testing.T) {
	r := newFakeReader()
	r.addVertex("a")
	r.addVertex("b")
	r.addVertex("c")
	r.addVertex("d")
	r.addEdge("a", "b", "knows", 0)
	r.addEdge("b", "c", "knows", 0)
	r.addEdge("c", "d", "knows", 0)

	m := NewMultiSourcePath(
		r, "default",
		[]value.Value{value.String("a")},
		[]value.Value{value.String("d")},
		DirBoth, nil, 10,
	).WithLimits(true, 10)

	paths, err := m.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("expected at least one path from a to d")
	}
	for _, p := range paths {
		if p.HasDuplicateEdges() {
			t.Fatalf("result path reuses an edge: %s", p)
		}
	}
}
