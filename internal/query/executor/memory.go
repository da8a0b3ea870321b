// Package executor implements the query execution runtime: plan-node
// evaluation and the memory accounting that bounds how much a single query
// may allocate. Grounded on
// original_source/.../query/executor/memory_manager.rs for the memory
// tracker and on the admin/data-processing executor sources for plan-node
// semantics (see admin.go and query.go).
package executor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// MemoryConfig mirrors the source's MemoryConfig defaults.
type MemoryConfig struct {
	MaxQueryMemory uint64
	CheckInterval  uint64
	SpillEnabled   bool
	SpillThreshold uint8 // percent, 0-100
}

// DefaultMemoryConfig matches MemoryConfig::default: 100MB budget, checked
// every 1000 rows, spilling enabled past 80% usage.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		MaxQueryMemory: 100 * 1024 * 1024,
		CheckInterval:  1000,
		SpillEnabled:   true,
		SpillThreshold: 80,
	}
}

// MemoryTracker bounds a single query's memory footprint. allocate performs
// an optimistic fetch-add followed by a limit check, rolling back on
// overflow — matching the source's AtomicUsize fetch_add/fetch_sub pair
// rather than a single compare-and-swap, to keep the common (under-limit)
// path lock-free and branch-predictable.
type MemoryTracker struct {
	currentUsage atomic.Uint64
	limit        uint64
	config       MemoryConfig
}

func NewMemoryTracker(limit uint64, config MemoryConfig) *MemoryTracker {
	return &MemoryTracker{limit: limit, config: config}
}

// Allocate charges size bytes against the tracker, returning an error and
// leaving usage unchanged if doing so would exceed the limit.
func (t *MemoryTracker) Allocate(size uint64) error {
	current := t.currentUsage.Add(size)
	if current > t.limit {
		t.currentUsage.Add(^(size - 1)) // atomic subtract: fetch_sub(size)
		return fmt.Errorf("memory limit exceeded: current=%d, limit=%d", current, t.limit)
	}
	return nil
}

func (t *MemoryTracker) Deallocate(size uint64) {
	t.currentUsage.Add(^(size - 1))
}

func (t *MemoryTracker) CurrentUsage() uint64 {
	return t.currentUsage.Load()
}

// ShouldSpill reports whether usage has crossed the configured spill
// threshold.
func (t *MemoryTracker) ShouldSpill() bool {
	threshold := (t.limit * uint64(t.config.SpillThreshold)) / 100
	return t.CurrentUsage() >= threshold
}

func (t *MemoryTracker) Reset() {
	t.currentUsage.Store(0)
}

// UsageRatio returns current usage as a 0-100 percentage of the limit.
func (t *MemoryTracker) UsageRatio() uint8 {
	if t.limit == 0 {
		return 0
	}
	return uint8((float64(t.CurrentUsage()) / float64(t.limit)) * 100.0)
}

// Stats is an aggregate allocation/deallocation count, matching the
// source's MemoryStats.
type Stats struct {
	CurrentUsage      uint64
	PeakUsage         uint64
	AllocationCount   uint64
	DeallocationCount uint64
}

// MemoryManager owns a query's MemoryTracker plus lifetime allocation
// statistics, kept separate from the tracker itself the way the source
// splits hot-path atomic bookkeeping (MemoryTracker) from cold-path
// mutex-guarded stats (MemoryManager.stats).
type MemoryManager struct {
	tracker *MemoryTracker

	statsMu sync.Mutex
	stats   Stats
}

func NewMemoryManager(config MemoryConfig) *MemoryManager {
	return &MemoryManager{
		tracker: NewMemoryTracker(config.MaxQueryMemory, config),
	}
}

func (m *MemoryManager) Tracker() *MemoryTracker { return m.tracker }

func (m *MemoryManager) GetStats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

func (m *MemoryManager) RecordAllocation(size uint64) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	m.stats.AllocationCount++
	m.stats.CurrentUsage += size
	if m.stats.CurrentUsage > m.stats.PeakUsage {
		m.stats.PeakUsage = m.stats.CurrentUsage
	}
}

func (m *MemoryManager) RecordDeallocation(size uint64) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	m.stats.DeallocationCount++
	if size > m.stats.CurrentUsage {
		m.stats.CurrentUsage = 0
	} else {
		m.stats.CurrentUsage -= size
	}
}

// TrackedSlice is a memory-tracked growable slice, standing in for the
// source's TrackedVec<T>. Go has no destructors, so where TrackedVec
// releases its charge on Drop, TrackedSlice requires an explicit Release
// call from the owner when it is done with the slice. No plan node in this
// package uses TrackedSlice; only memory_test.go constructs one.
type TrackedSlice[T any] struct {
	inner       []T
	tracker     *MemoryTracker
	elementSize uint64
}

func NewTrackedSlice[T any](tracker *MemoryTracker) *TrackedSlice[T] {
	var zero T
	return &TrackedSlice[T]{tracker: tracker, elementSize: sizeOf(zero)}
}

func NewTrackedSliceWithCapacity[T any](capacity int, tracker *MemoryTracker) (*TrackedSlice[T], error) {
	var zero T
	elementSize := sizeOf(zero)
	if err := tracker.Allocate(uint64(capacity) * elementSize); err != nil {
		return nil, err
	}
	return &TrackedSlice[T]{
		inner:       make([]T, 0, capacity),
		tracker:     tracker,
		elementSize: elementSize,
	}, nil
}

func (v *TrackedSlice[T]) Push(value T) error {
	if err := v.tracker.Allocate(v.elementSize); err != nil {
		return err
	}
	v.inner = append(v.inner, value)
	return nil
}

func (v *TrackedSlice[T]) Len() int      { return len(v.inner) }
func (v *TrackedSlice[T]) IsEmpty() bool { return len(v.inner) == 0 }
func (v *TrackedSlice[T]) AsSlice() []T  { return v.inner }

// Clear empties the slice and releases its tracked charge.
func (v *TrackedSlice[T]) Clear() {
	size := uint64(len(v.inner)) * v.elementSize
	v.inner = v.inner[:0]
	v.tracker.Deallocate(size)
}

// Release deallocates the slice's current tracked charge without clearing
// its contents — call when discarding the slice entirely (the Go analogue
// of the source's Drop impl).
func (v *TrackedSlice[T]) Release() {
	size := uint64(len(v.inner)) * v.elementSize
	v.tracker.Deallocate(size)
}

// sizeOf approximates Rust's size_of::<T>() for the fixed-width types the
// executor actually tracks (rows of Values, vertex/edge ids). It is a
// deliberately narrow approximation, not a general unsafe.Sizeof stand-in.
func sizeOf[T any](zero T) uint64 {
	switch any(zero).(type) {
	case int8, uint8, bool:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	case int64, uint64, float64, int, uint:
		return 8
	default:
		return 16
	}
}
