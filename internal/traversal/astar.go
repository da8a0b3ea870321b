package traversal

import (
	"container/heap"

	"github.com/ali01/graphd/internal/core/value"
)

type astarNode struct {
	gCost    float64
	hCost    float64
	fCost    float64
	vertexID value.Value
}

type astarHeap []astarNode

func (h astarHeap) Len() int           { return len(h) }
func (h astarHeap) Less(i, j int) bool  { return h[i].fCost < h[j].fCost }
func (h astarHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *astarHeap) Push(x interface{}) { *h = append(*h, x.(astarNode)) }
func (h *astarHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// AStar is Dijkstra extended with an admissible heuristic. Grounded on
// a_star.rs.
type AStar struct {
	reader       GraphReader
	space        string
	direction    Direction
	weightConfig WeightConfig
	heuristic    Heuristic
	stats        Stats
}

func NewAStar(reader GraphReader, space string) *AStar {
	return &AStar{
		reader:       reader,
		space:        space,
		direction:    DirBoth,
		weightConfig: UnweightedConfig(),
		heuristic:    ZeroHeuristic(),
	}
}

func (a *AStar) WithDirection(dir Direction) *AStar {
	a.direction = dir
	return a
}

func (a *AStar) WithWeightConfig(cfg WeightConfig) *AStar {
	a.weightConfig = cfg
	return a
}

func (a *AStar) WithHeuristic(h Heuristic) *AStar {
	a.heuristic = h
	return a
}

func (a *AStar) Stats() Stats { return a.stats }

func (a *AStar) vertexProps(vid value.Value) (map[string]value.Value, error) {
	v, err := a.reader.GetVertex(a.space, vid)
	if err != nil || v == nil {
		return nil, err
	}
	return v.Properties, nil
}

// calculateHeuristic evaluates the heuristic against the nearest of
// end_ids, preserving admissibility for multi-target searches (the
// minimum of per-target estimates never overestimates the true
// remaining cost to the closest target).
func (a *AStar) calculateHeuristic(currentID value.Value, endIDs []value.Value) (float64, error) {
	if a.heuristic.IsZero() {
		return 0, nil
	}
	currentProps, err := a.vertexProps(currentID)
	if err != nil {
		return 0, err
	}

	minH := 0.0
	first := true
	for _, endID := range endIDs {
		endProps, err := a.vertexProps(endID)
		if err != nil {
			continue
		}
		h := a.heuristic.Evaluate(currentProps, endProps)
		if first || h < minH {
			minH = h
			first = false
		}
	}
	return minH, nil
}

func (a *AStar) reconstructPath(
	endID value.Value,
	previous map[string]predecessor,
	startIDs []value.Value,
) (*value.Path, error) {
	d := &Dijkstra{reader: a.reader, space: a.space}
	return d.reconstructPath(endID, previous, startIDs)
}

// FindPaths implements the ShortestPathAlgorithm contract.
func (a *AStar) FindPaths(
	startIDs, endIDs []value.Value,
	edgeTypes []string,
	maxDepth *int,
	singleShortest bool,
	limit int,
) ([]*value.Path, error) {
	gCost := make(map[string]float64)
	previous := make(map[string]predecessor)
	closed := make(map[string]struct{})

	pq := &astarHeap{}
	heap.Init(pq)
	for _, id := range startIDs {
		h, err := a.calculateHeuristic(id, endIDs)
		if err != nil {
			return nil, err
		}
		gCost[id.String()] = 0
		heap.Push(pq, astarNode{gCost: 0, hCost: h, fCost: h, vertexID: id})
	}

	var resultPaths []*value.Path

	for pq.Len() > 0 {
		if singleShortest && len(resultPaths) > 0 {
			break
		}
		if len(resultPaths) >= limit {
			break
		}

		current := heap.Pop(pq).(astarNode)
		key := current.vertexID.String()
		if _, ok := closed[key]; ok {
			continue
		}
		closed[key] = struct{}{}
		a.stats.IncrementNodesVisited()

		if containsValue(endIDs, current.vertexID) {
			path, err := a.reconstructPath(current.vertexID, previous, startIDs)
			if err != nil {
				return nil, err
			}
			if path != nil && !path.HasDuplicateEdges() {
				resultPaths = append(resultPaths, path)
			}
			continue
		}

		if maxDepth != nil && int(current.gCost) >= *maxDepth {
			continue
		}

		neighbors, err := neighborsWithEdges(a.reader, a.space, current.vertexID, a.direction, edgeTypes, a.weightConfig.Weight)
		if err != nil {
			continue
		}
		a.stats.IncrementEdgesTraversed(len(neighbors))

		for _, n := range neighbors {
			nKey := n.NeighborID.String()
			if _, ok := closed[nKey]; ok {
				continue
			}
			tentativeG := current.gCost + n.Weight
			existingG, ok := gCost[nKey]
			if !ok || tentativeG < existingG {
				gCost[nKey] = tentativeG
				previous[nKey] = predecessor{prevID: current.vertexID, edge: n.Edge}

				h, err := a.calculateHeuristic(n.NeighborID, endIDs)
				if err != nil {
					continue
				}
				heap.Push(pq, astarNode{gCost: tentativeG, hCost: h, fCost: tentativeG + h, vertexID: n.NeighborID})
			}
		}
	}

	if singleShortest && len(resultPaths) > 0 {
		resultPaths = resultPaths[:1]
	}
	if len(resultPaths) > limit {
		resultPaths = resultPaths[:limit]
	}

	return resultPaths, nil
}
