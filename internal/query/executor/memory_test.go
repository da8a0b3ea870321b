package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTrackerBasic(t *testing.T) {
	tracker := NewMemoryTracker(1024, DefaultMemoryConfig())
	assert.Equal(t, uint64(0), tracker.CurrentUsage())

	require.NoError(t, tracker.Allocate(512))
	assert.Equal(t, uint64(512), tracker.CurrentUsage())

	err := tracker.Allocate(1024)
	assert.Error(t, err)
	assert.Equal(t, uint64(512), tracker.CurrentUsage(), "failed allocation must roll back")

	tracker.Deallocate(512)
	assert.Equal(t, uint64(0), tracker.CurrentUsage())

	tracker.Reset()
	assert.Equal(t, uint64(0), tracker.CurrentUsage())
}

func TestMemoryTrackerSpillDetection(t *testing.T) {
	config := DefaultMemoryConfig()
	config.SpillThreshold = 80
	tracker := NewMemoryTracker(1000, config)

	require.NoError(t, tracker.Allocate(700))
	assert.False(t, tracker.ShouldSpill())

	require.NoError(t, tracker.Allocate(150))
	assert.True(t, tracker.ShouldSpill())
}

func TestMemoryTrackerUsageRatio(t *testing.T) {
	tracker := NewMemoryTracker(1024, DefaultMemoryConfig())
	require.NoError(t, tracker.Allocate(100))
	// 100/1024 truncates to 9, not 10.
	assert.Equal(t, uint8(9), tracker.UsageRatio())
}

func TestTrackedSlice(t *testing.T) {
	tracker := NewMemoryTracker(1024*1024, DefaultMemoryConfig())
	v := NewTrackedSlice[int64](tracker)
	defer v.Release()

	assert.True(t, v.IsEmpty())
	require.NoError(t, v.Push(1))
	require.NoError(t, v.Push(2))
	require.NoError(t, v.Push(3))

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, []int64{1, 2, 3}, v.AsSlice())
	assert.True(t, tracker.CurrentUsage() > 0)

	v.Clear()
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, uint64(0), tracker.CurrentUsage())
}

func TestTrackedSliceCapacity(t *testing.T) {
	tracker := NewMemoryTracker(1024, DefaultMemoryConfig())

	v, err := NewTrackedSliceWithCapacity[int64](10, tracker)
	require.NoError(t, err)
	defer v.Release()
	assert.True(t, tracker.CurrentUsage() > 0)

	_, err = NewTrackedSliceWithCapacity[int64](1000, tracker)
	assert.Error(t, err, "capacity request exceeding the limit must fail")
}

func TestMemoryManagerRecordAllocationDeallocation(t *testing.T) {
	m := NewMemoryManager(DefaultMemoryConfig())

	m.RecordAllocation(100)
	m.RecordAllocation(50)
	stats := m.GetStats()
	assert.Equal(t, uint64(150), stats.CurrentUsage)
	assert.Equal(t, uint64(150), stats.PeakUsage)
	assert.Equal(t, uint64(2), stats.AllocationCount)

	m.RecordDeallocation(50)
	stats = m.GetStats()
	assert.Equal(t, uint64(100), stats.CurrentUsage)
	assert.Equal(t, uint64(150), stats.PeakUsage, "peak must not decrease")
	assert.Equal(t, uint64(1), stats.DeallocationCount)
}
