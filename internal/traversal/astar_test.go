package traversal

import (
	"testing"

	"github.com/ali01/graphd/internal/core/value"
)

func TestAStarWithPropertyDistanceHeuristic(t *testing.T) {
	r := newFakeReader()
	r.addVertexWithProps("a", map[string]value.Value{"lat": value.Float(0), "lon": value.Float(0)})
	r.addVertexWithProps("b", map[string]value.Value{"lat": value.Float(1), "lon": value.Float(0)})
	r.addVertexWithProps("c", map[string]value.Value{"lat": value.Float(0), "lon": value.Float(1)})
	r.addVertexWithProps("d", map[string]value.Value{"lat": value.Float(1), "lon": value.Float(1)})
	r.addWeightedEdge("a", "b", "road", 0, 1)
	r.addWeightedEdge("b", "d", "road", 0, 1)
	r.addWeightedEdge("a", "c", "road", 0, 1)
	r.addWeightedEdge("c", "d", "road", 0, 5)

	a := NewAStar(r, "default").
		WithDirection(DirOut).
		WithWeightConfig(PropertyWeightConfig("weight")).
		WithHeuristic(PropertyDistanceHeuristic("lat", "lon"))

	paths, err := a.FindPaths(
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
	if len(paths[0].Steps) != 2 || paths[0].Steps[0].Dst.VID.String() != "b" {
		t.Fatalf("expected cheapest route a-b-d, got %s", paths[0])
	}
}

func TestAStarZeroHeuristicMatchesDijkstra(t *testing.T) {
	r := newFakeReader()
	buildWeightedDiamond(r)

	a := NewAStar(r, "default").
		WithDirection(DirOut).
		WithWeightConfig(PropertyWeightConfig("weight"))

	paths, err := a.FindPaths(
		[]value.Value{value.String("a")},
		[]value.Value{value.String("d")},
		nil, nil, true, 10,
	)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 1 || len(paths[0].Steps) != 2 {
		t.Fatalf("expected cheapest 2-hop path, got %v", paths)
	}
}
