package traversal

import (
	"container/heap"

	"github.com/ali01/graphd/internal/core/value"
)

// distanceItem is one entry in Dijkstra's open set, ordered by cumulative
// distance (min-heap via container/heap, matching the source's
// BinaryHeap<Reverse<DistanceNode>>).
type distanceItem struct {
	distance float64
	vertexID value.Value
}

type distanceHeap []distanceItem

func (h distanceHeap) Len() int            { return len(h) }
func (h distanceHeap) Less(i, j int) bool  { return h[i].distance < h[j].distance }
func (h distanceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *distanceHeap) Push(x interface{}) { *h = append(*h, x.(distanceItem)) }
func (h *distanceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type predecessor struct {
	prevID value.Value
	edge   *value.Edge
}

// Dijkstra is the binary-heap-optimized weighted shortest-path algorithm.
// Grounded on dijkstra.rs.
type Dijkstra struct {
	reader       GraphReader
	space        string
	direction    Direction
	weightConfig WeightConfig
	stats        Stats
}

func NewDijkstra(reader GraphReader, space string) *Dijkstra {
	return &Dijkstra{reader: reader, space: space, direction: DirBoth, weightConfig: UnweightedConfig()}
}

func (d *Dijkstra) WithDirection(dir Direction) *Dijkstra {
	d.direction = dir
	return d
}

func (d *Dijkstra) WithWeightConfig(cfg WeightConfig) *Dijkstra {
	d.weightConfig = cfg
	return d
}

func (d *Dijkstra) Stats() Stats { return d.stats }

func containsValue(list []value.Value, v value.Value) bool {
	for _, x := range list {
		if x.Equal(v) {
			return true
		}
	}
	return false
}

func (d *Dijkstra) reconstructPath(
	endID value.Value,
	previous map[string]predecessor,
	startIDs []value.Value,
) (*value.Path, error) {
	type hop struct {
		dstID value.Value
		edge  *value.Edge
	}
	var hops []hop
	current := endID

	for {
		pred, ok := previous[current.String()]
		if !ok {
			return nil, nil
		}
		hops = append(hops, hop{dstID: current, edge: pred.edge})
		current = pred.prevID

		if containsValue(startIDs, current) {
			startVertex, err := d.reader.GetVertex(d.space, current)
			if err != nil || startVertex == nil {
				return nil, err
			}
			path := value.NewPath(startVertex)
			for i := len(hops) - 1; i >= 0; i-- {
				h := hops[i]
				dstVertex, err := d.reader.GetVertex(d.space, h.dstID)
				if err != nil || dstVertex == nil {
					return nil, err
				}
				path.Steps = append(path.Steps, value.Step{Edge: h.edge, Dst: dstVertex})
			}
			return path, nil
		}
	}
}

// FindPaths implements the ShortestPathAlgorithm contract.
func (d *Dijkstra) FindPaths(
	startIDs, endIDs []value.Value,
	edgeTypes []string,
	maxDepth *int,
	singleShortest bool,
	limit int,
) ([]*value.Path, error) {
	distance := make(map[string]float64)
	previous := make(map[string]predecessor)
	visited := make(map[string]struct{})

	pq := &distanceHeap{}
	heap.Init(pq)
	for _, id := range startIDs {
		distance[id.String()] = 0
		heap.Push(pq, distanceItem{distance: 0, vertexID: id})
	}

	var resultPaths []*value.Path

	for pq.Len() > 0 {
		if singleShortest && len(resultPaths) > 0 {
			break
		}
		if len(resultPaths) >= limit {
			break
		}

		current := heap.Pop(pq).(distanceItem)
		key := current.vertexID.String()
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}
		d.stats.IncrementNodesVisited()

		if containsValue(endIDs, current.vertexID) {
			path, err := d.reconstructPath(current.vertexID, previous, startIDs)
			if err != nil {
				return nil, err
			}
			if path != nil && !path.HasDuplicateEdges() {
				resultPaths = append(resultPaths, path)
			}
			continue
		}

		if maxDepth != nil && int(current.distance) >= *maxDepth {
			continue
		}

		neighbors, err := neighborsWithEdges(d.reader, d.space, current.vertexID, d.direction, edgeTypes, d.weightConfig.Weight)
		if err != nil {
			continue
		}
		d.stats.IncrementEdgesTraversed(len(neighbors))

		for _, n := range neighbors {
			nKey := n.NeighborID.String()
			if _, ok := visited[nKey]; ok {
				continue
			}
			newDistance := current.distance + n.Weight
			existing, ok := distance[nKey]
			if !ok || newDistance < existing {
				distance[nKey] = newDistance
				previous[nKey] = predecessor{prevID: current.vertexID, edge: n.Edge}
				heap.Push(pq, distanceItem{distance: newDistance, vertexID: n.NeighborID})
			}
		}
	}

	if singleShortest && len(resultPaths) > 0 {
		bestIdx := 0
		bestWeight := resultPaths[0].TotalWeight(d.weightConfig.Weight)
		for i := 1; i < len(resultPaths); i++ {
			w := resultPaths[i].TotalWeight(d.weightConfig.Weight)
			if w < bestWeight {
				bestWeight = w
				bestIdx = i
			}
		}
		resultPaths = resultPaths[bestIdx : bestIdx+1]
	}
	if len(resultPaths) > limit {
		resultPaths = resultPaths[:limit]
	}

	return resultPaths, nil
}
