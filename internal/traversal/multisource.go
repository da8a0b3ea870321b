package traversal

import "github.com/ali01/graphd/internal/core/value"

// TerminationMap tracks, per (src, dst) pair requested by a multi-source
// shortest-path query, whether that pair is still being searched for
// (found == true) or has already been resolved (found == false).
//
// The retrieved original_source pack's types.rs does not define
// TerminationMap / Interims / the termination-map helper functions even
// though multi_shortest_path.rs imports them from that module — the
// retrieval filtered them out along with whatever else lived in the
// unseen portion of the original types.rs. This port reconstructs their
// contract from the call sites in multi_shortest_path.rs and its test
// module (test_termination_map_creation, test_mark_path_found,
// test_cleanup_termination_map), which pin down the exact semantics:
// found starts true, mark_path_found flips one pair to false and reports
// whether it did, cleanup drops false pairs (and empty src entries).
type TerminationMap map[string]*terminationEntry

type terminationEntry struct {
	src   value.Value
	pairs []*terminationPair
}

type terminationPair struct {
	dst   value.Value
	found bool
}

// newTerminationMap seeds every (src, dst) combination from startIDs x
// endIDs as still-pending, matching create_termination_map.
func newTerminationMap(startIDs, endIDs []value.Value) TerminationMap {
	m := make(TerminationMap, len(startIDs))
	for _, src := range startIDs {
		entry := &terminationEntry{src: src}
		for _, dst := range endIDs {
			entry.pairs = append(entry.pairs, &terminationPair{dst: dst, found: true})
		}
		m[src.String()] = entry
	}
	return m
}

// markFound flips one (src, dst) pair to resolved, returning whether a
// still-pending pair was found and flipped.
func (m TerminationMap) markFound(src, dst value.Value) bool {
	entry, ok := m[src.String()]
	if !ok {
		return false
	}
	for _, p := range entry.pairs {
		if p.dst.Equal(dst) {
			if !p.found {
				return false
			}
			p.found = false
			return true
		}
	}
	return false
}

// cleanup drops resolved pairs, and any src entry left with no pending
// pairs, matching cleanup_termination_map.
func (m TerminationMap) cleanup() {
	for k, entry := range m {
		kept := entry.pairs[:0]
		for _, p := range entry.pairs {
			if p.found {
				kept = append(kept, p)
			}
		}
		entry.pairs = kept
		if len(entry.pairs) == 0 {
			delete(m, k)
		}
	}
}

// isComplete reports whether every requested pair has been resolved,
// matching is_termination_complete.
func (m TerminationMap) isComplete() bool { return len(m) == 0 }

// isValidPair reports whether (src, dst) is still a pending pair,
// matching is_valid_pair.
func (m TerminationMap) isValidPair(src, dst value.Value) bool {
	entry, ok := m[src.String()]
	if !ok {
		return false
	}
	for _, p := range entry.pairs {
		if p.dst.Equal(dst) && p.found {
			return true
		}
	}
	return false
}

// Interims is a two-level index of in-progress path fragments: the
// vertex currently reached (the bucket key) maps to the original
// frontier source it was reached from, which maps to every path
// fragment discovered so far between that source and that vertex.
// Matches the source's Interims = HashMap<Value, HashMap<Value,
// Vec<Path>>>, keyed here by Value.String() since Value itself is not a
// valid Go map key (it embeds a slice/map field).
type Interims map[string]*interimBucket

type interimBucket struct {
	dst   value.Value
	bySrc map[string]*srcPaths
}

type srcPaths struct {
	src   value.Value
	paths []*value.Path
}

func newInterims() Interims { return make(Interims) }

func (m Interims) getOrCreate(dst value.Value) *interimBucket {
	k := dst.String()
	b, ok := m[k]
	if !ok {
		b = &interimBucket{dst: dst, bySrc: make(map[string]*srcPaths)}
		m[k] = b
	}
	return b
}

func (m Interims) get(dst value.Value) (*interimBucket, bool) {
	b, ok := m[dst.String()]
	return b, ok
}

func (b *interimBucket) addPaths(src value.Value, paths []*value.Path) {
	k := src.String()
	e, ok := b.bySrc[k]
	if !ok {
		e = &srcPaths{src: src}
		b.bySrc[k] = e
	}
	e.paths = append(e.paths, paths...)
}

func (b *interimBucket) has(src value.Value) bool {
	_, ok := b.bySrc[src.String()]
	return ok
}

// MultiPathRequest bundles one (src, dst) pair search request, the
// convenience shape the executor layer passes through to
// NewMultiSourcePath, matching MultiPathRequest.
type MultiPathRequest struct {
	Src value.Value
	Dst value.Value
}

// MultiSourcePath runs several (src, dst) shortest-path searches at once
// by expanding bidirectional frontiers step-synchronously across all
// pairs, splicing at meeting vertices. Grounded on
// multi_shortest_path.rs.
type MultiSourcePath struct {
	reader    GraphReader
	space     string
	startVids []value.Value
	endVids   []value.Value

	terminationMap TerminationMap
	direction      Direction
	edgeTypes      []string
	maxSteps       int
	singleShortest bool
	limit          int
	step           int

	historyLeft, historyRight Interims
	leftPaths, rightPaths     Interims
	preRightPaths             Interims

	resultPaths []*value.Path
	stats       Stats
	foundCount  int
}

func NewMultiSourcePath(
	reader GraphReader,
	space string,
	startVids, endVids []value.Value,
	direction Direction,
	edgeTypes []string,
	maxSteps int,
) *MultiSourcePath {
	return &MultiSourcePath{
		reader:         reader,
		space:          space,
		startVids:      startVids,
		endVids:        endVids,
		terminationMap: newTerminationMap(startVids, endVids),
		direction:      direction,
		edgeTypes:      edgeTypes,
		maxSteps:       maxSteps,
		limit:          intMax,
		step:           1,
		historyLeft:    newInterims(),
		historyRight:   newInterims(),
		leftPaths:      newInterims(),
		rightPaths:     newInterims(),
		preRightPaths:  newInterims(),
	}
}

func (m *MultiSourcePath) WithLimits(singleShortest bool, limit int) *MultiSourcePath {
	m.singleShortest = singleShortest
	m.limit = limit
	return m
}

func (m *MultiSourcePath) Stats() Stats { return m.stats }

func (m *MultiSourcePath) init() {
	for _, src := range m.startVids {
		path := value.NewPath(value.NewVertex(src, 0))
		m.historyLeft.getOrCreate(src).addPaths(src, []*value.Path{path})
	}
	for _, dst := range m.endVids {
		path := value.NewPath(value.NewVertex(dst, 0))
		m.historyRight.getOrCreate(dst).addPaths(dst, []*value.Path{path})
		m.preRightPaths.getOrCreate(dst).addPaths(dst, []*value.Path{path})
	}
}

func clonePath(p *value.Path) *value.Path {
	return &value.Path{Src: p.Src, Steps: append([]value.Step(nil), p.Steps...)}
}

// createPaths extends every path in paths by one hop across edge into
// neighborID. Unlike the source's create_paths (which always appends
// edge.dst as the next vertex), this takes the already-direction-resolved
// neighborID explicitly: the source's version silently assumes forward
// traversal and produces the wrong vertex under EdgeDirection::In, a bug
// this port does not reproduce.
func createPaths(paths []*value.Path, edge *value.Edge, neighborID value.Value) []*value.Path {
	out := make([]*value.Path, 0, len(paths))
	for _, p := range paths {
		np := clonePath(p)
		np.Steps = append(np.Steps, value.Step{Edge: edge, Dst: value.NewVertex(neighborID, 0)})
		out = append(out, np)
	}
	return out
}

// buildPath expands one side's frontier by one step. reverse selects the
// end-rooted (right) side; false selects the start-rooted (left) side.
func (m *MultiSourcePath) buildPath(reverse bool) error {
	historyPaths := m.historyLeft
	if reverse {
		historyPaths = m.historyRight
	}

	var expandVids []value.Value
	if m.step == 1 {
		if reverse {
			expandVids = m.endVids
		} else {
			expandVids = m.startVids
		}
	} else {
		for _, b := range historyPaths {
			expandVids = append(expandVids, b.dst)
		}
	}

	type vidNeighbors struct {
		vid       value.Value
		neighbors []neighborEdge
	}
	var allNeighbors []vidNeighbors
	for _, vid := range expandVids {
		neighbors, err := neighborsWithEdges(m.reader, m.space, vid, m.direction, m.edgeTypes, nil)
		if err != nil {
			return err
		}
		m.stats.IncrementEdgesTraversed(len(neighbors))
		allNeighbors = append(allNeighbors, vidNeighbors{vid: vid, neighbors: neighbors})
	}

	currentPaths := m.leftPaths
	if reverse {
		currentPaths = m.rightPaths
	}

	for _, vn := range allNeighbors {
		for _, n := range vn.neighbors {
			if n.NeighborID.Equal(vn.vid) {
				continue // skip self-loop
			}

			if m.step == 1 {
				path := &value.Path{
					Src:   value.NewVertex(vn.vid, 0),
					Steps: []value.Step{{Edge: n.Edge, Dst: value.NewVertex(n.NeighborID, 0)}},
				}
				currentPaths.getOrCreate(n.NeighborID).addPaths(vn.vid, []*value.Path{path})
				continue
			}

			prePaths, ok := historyPaths.get(vn.vid)
			if !ok {
				continue
			}
			for _, srcEntry := range prePaths.bySrc {
				// cycle detection: skip if neighborID has already been
				// reached from this same original source.
				if histDst, ok2 := historyPaths.get(n.NeighborID); ok2 && histDst.has(srcEntry.src) {
					continue
				}
				newPaths := createPaths(srcEntry.paths, n.Edge, n.NeighborID)
				currentPaths.getOrCreate(n.NeighborID).addPaths(srcEntry.src, newPaths)
			}
		}
	}

	return nil
}

func (m *MultiSourcePath) buildResultPaths(leftPaths, rightPaths []*value.Path) {
	for _, lp := range leftPaths {
		for _, rp := range rightPaths {
			full := clonePath(lp)
			reversedRight := rp.Reverse()
			full.Steps = append(full.Steps, reversedRight.Steps...)

			if full.HasDuplicateEdges() {
				continue
			}

			m.resultPaths = append(m.resultPaths, full)
			m.foundCount++

			if m.foundCount >= m.limit {
				return
			}
			if m.singleShortest {
				return
			}
		}
	}
}

// conjunctPath checks for frontier meetings on the odd-step or even-step
// side, builds result paths for every still-pending (src, dst) pair that
// meets, and reports whether the search should terminate.
func (m *MultiSourcePath) conjunctPath(oddStep bool) bool {
	rightPaths := m.rightPaths
	if oddStep {
		rightPaths = m.preRightPaths
	}

	type pair struct {
		leftSrc, rightSrc     value.Value
		leftPaths, rightPaths []*value.Path
	}
	var pairs []pair

	for _, leftBucket := range m.leftPaths {
		rightBucket, ok := rightPaths.get(leftBucket.dst)
		if !ok {
			continue
		}
		for _, l := range leftBucket.bySrc {
			for _, r := range rightBucket.bySrc {
				if m.terminationMap.isValidPair(l.src, r.src) {
					pairs = append(pairs, pair{leftSrc: l.src, rightSrc: r.src, leftPaths: l.paths, rightPaths: r.paths})
				}
			}
		}
	}

	for _, p := range pairs {
		m.buildResultPaths(p.leftPaths, p.rightPaths)
		if m.singleShortest {
			m.terminationMap.markFound(p.leftSrc, p.rightSrc)
		}
	}

	if m.singleShortest {
		m.terminationMap.cleanup()
	}

	if m.terminationMap.isComplete() {
		return true
	}
	if m.foundCount >= m.limit {
		return true
	}
	if m.step*2 > m.maxSteps {
		return true
	}
	return false
}

func (m *MultiSourcePath) updateHistory() {
	for _, b := range m.leftPaths {
		dst := m.historyLeft.getOrCreate(b.dst)
		for _, e := range b.bySrc {
			dst.addPaths(e.src, e.paths)
		}
	}
	for _, b := range m.rightPaths {
		dst := m.historyRight.getOrCreate(b.dst)
		for _, e := range b.bySrc {
			dst.addPaths(e.src, e.paths)
		}
	}

	m.preRightPaths = m.rightPaths
	m.leftPaths = newInterims()
	m.rightPaths = newInterims()
}

// Execute runs the full multi-source search, returning every path found
// across all requested (src, dst) pairs.
func (m *MultiSourcePath) Execute() ([]*value.Path, error) {
	m.init()

	for {
		if err := m.buildPath(false); err != nil {
			return nil, err
		}
		if err := m.buildPath(true); err != nil {
			return nil, err
		}

		if m.conjunctPath(true) {
			break
		}
		if m.conjunctPath(false) {
			break
		}

		m.updateHistory()
		m.step++

		if m.step*2 > m.maxSteps {
			break
		}
	}

	return m.resultPaths, nil
}
