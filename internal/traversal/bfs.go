package traversal

import (
	"sort"

	"github.com/ali01/graphd/internal/core/value"
)

// BidirectionalBFS runs two BFS frontiers alternately from the start and
// end sets, combining NPath prefixes at a meeting vertex into candidate
// paths. Grounded on bidirectional_bfs.rs.
type BidirectionalBFS struct {
	reader    GraphReader
	space     string
	direction Direction
	stats     Stats
}

func NewBidirectionalBFS(reader GraphReader, space string) *BidirectionalBFS {
	return &BidirectionalBFS{reader: reader, space: space, direction: DirBoth}
}

func (b *BidirectionalBFS) WithDirection(dir Direction) *BidirectionalBFS {
	b.direction = dir
	return b
}

func (b *BidirectionalBFS) Stats() Stats { return b.stats }

type bfsFrontierEntry struct {
	id    value.Value
	npath *value.NPath
}

// FindPaths implements the ShortestPathAlgorithm contract: find_paths.
func (b *BidirectionalBFS) FindPaths(
	startIDs, endIDs []value.Value,
	edgeTypes []string,
	maxDepth *int,
	singleShortest bool,
	limit int,
) ([]*value.Path, error) {
	var leftQueue, rightQueue []bfsFrontierEntry
	visitedLeft := make(map[string]*value.NPath)
	visitedRight := make(map[string]*value.NPath)
	var resultPaths []*value.Path

	for _, id := range startIDs {
		v, err := b.reader.GetVertex(b.space, id)
		if err != nil || v == nil {
			continue
		}
		root := value.NewNPathRoot(v)
		leftQueue = append(leftQueue, bfsFrontierEntry{id: id, npath: root})
		visitedLeft[id.String()] = root
	}
	for _, id := range endIDs {
		v, err := b.reader.GetVertex(b.space, id)
		if err != nil || v == nil {
			continue
		}
		root := value.NewNPathRoot(v)
		rightQueue = append(rightQueue, bfsFrontierEntry{id: id, npath: root})
		visitedRight[id.String()] = root
	}

	for len(leftQueue) > 0 && len(rightQueue) > 0 {
		if singleShortest && len(resultPaths) > 0 {
			break
		}
		if len(resultPaths) >= limit {
			break
		}

		leftQueue = b.expandSide(leftQueue, visitedLeft, visitedRight, edgeTypes, maxDepth, singleShortest, &resultPaths, false)

		if singleShortest && len(resultPaths) > 0 {
			break
		}

		rightQueue = b.expandSide(rightQueue, visitedRight, visitedLeft, edgeTypes, maxDepth, singleShortest, &resultPaths, true)

		if len(leftQueue) == 0 && len(rightQueue) == 0 {
			break
		}
	}

	if singleShortest && len(resultPaths) > 0 {
		sort.Slice(resultPaths, func(i, j int) bool {
			return len(resultPaths[i].Steps) < len(resultPaths[j].Steps)
		})
		resultPaths = resultPaths[:1]
	}
	if len(resultPaths) > limit {
		resultPaths = resultPaths[:limit]
	}
	return resultPaths, nil
}

// expandSide drains one side's entire current-step queue, producing the
// next step's queue. reversedSide is true when expanding the right
// (end-rooted) frontier, so the meeting-vertex check looks up the
// opposite visited map with the roles of left/right swapped relative to
// combine_npaths's left/right convention, and neighbor expansion follows
// edges against b.direction (In for Out, Out for In; Both stays Both).
func (b *BidirectionalBFS) expandSide(
	queue []bfsFrontierEntry,
	visitedThis, visitedOther map[string]*value.NPath,
	edgeTypes []string,
	maxDepth *int,
	singleShortest bool,
	resultPaths *[]*value.Path,
	reversedSide bool,
) []bfsFrontierEntry {
	var next []bfsFrontierEntry

	dir := b.direction
	if reversedSide {
		switch dir {
		case DirOut:
			dir = DirIn
		case DirIn:
			dir = DirOut
		}
	}

	for _, entry := range queue {
		b.stats.IncrementNodesVisited()

		if otherNpath, ok := visitedOther[entry.id.String()]; ok {
			var combined *value.Path
			if reversedSide {
				combined = value.CombineNPaths(otherNpath, entry.npath)
			} else {
				combined = value.CombineNPaths(entry.npath, otherNpath)
			}
			if combined != nil && !combined.HasDuplicateEdges() {
				*resultPaths = append(*resultPaths, combined)
				if singleShortest {
					return next
				}
			}
			continue
		}

		if maxDepth != nil && entry.npath.Depth() >= *maxDepth {
			continue
		}

		neighbors, err := neighborsWithEdges(b.reader, b.space, entry.id, dir, edgeTypes, nil)
		if err != nil {
			continue
		}
		b.stats.IncrementEdgesTraversed(len(neighbors))

		for _, n := range neighbors {
			key := n.NeighborID.String()
			if _, ok := visitedThis[key]; ok {
				continue
			}
			nv, err := b.reader.GetVertex(b.space, n.NeighborID)
			if err != nil || nv == nil {
				continue
			}
			newNpath := entry.npath.Extend(n.Edge, nv)
			next = append(next, bfsFrontierEntry{id: n.NeighborID, npath: newNpath})
			visitedThis[key] = newNpath
		}
	}

	return next
}
