package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGetQuery(t *testing.T) {
	m := New(nil)
	id := m.RegisterQuery(1, "alice", "social", "MATCH (n) RETURN n")

	info, ok := m.GetQuery(id)
	require.True(t, ok)
	assert.Equal(t, StatusRunning, info.Status)
	assert.Equal(t, "alice", info.UserName)
}

func TestFinishQuery(t *testing.T) {
	m := New(nil)
	id := m.RegisterQuery(1, "alice", "social", "MATCH (n) RETURN n")

	require.NoError(t, m.FinishQuery(id))
	info, _ := m.GetQuery(id)
	assert.Equal(t, StatusFinished, info.Status)
	require.NotNil(t, info.DurationMS)
}

func TestFailAndKillQuery(t *testing.T) {
	m := New(nil)
	id1 := m.RegisterQuery(1, "alice", "social", "q1")
	id2 := m.RegisterQuery(1, "alice", "social", "q2")

	require.NoError(t, m.FailQuery(id1))
	require.NoError(t, m.KillQuery(id2))

	info1, _ := m.GetQuery(id1)
	info2, _ := m.GetQuery(id2)
	assert.Equal(t, StatusFailed, info1.Status)
	assert.Equal(t, StatusKilled, info2.Status)
}

func TestTransitionUnknownQuery(t *testing.T) {
	m := New(nil)
	assert.Error(t, m.FinishQuery(99999))
}

func TestGetRunningQueries(t *testing.T) {
	m := New(nil)
	id1 := m.RegisterQuery(1, "alice", "social", "q1")
	m.RegisterQuery(1, "alice", "social", "q2")
	require.NoError(t, m.FinishQuery(id1))

	running := m.GetRunningQueries()
	assert.Len(t, running, 1)
}

func TestGetStats(t *testing.T) {
	m := New(nil)
	id1 := m.RegisterQuery(1, "alice", "social", "q1")
	id2 := m.RegisterQuery(1, "alice", "social", "q2")
	id3 := m.RegisterQuery(1, "alice", "social", "q3")

	require.NoError(t, m.FinishQuery(id1))
	require.NoError(t, m.FailQuery(id2))

	stats := m.GetStats()
	assert.Equal(t, uint64(3), stats.TotalQueries)
	assert.Equal(t, uint64(1), stats.RunningQueries)
	assert.Equal(t, uint64(1), stats.FinishedQueries)
	assert.Equal(t, uint64(1), stats.FailedQueries)
	_ = id3
}

func TestCleanupFinishedQueries_KeepsMostRecent(t *testing.T) {
	m := New(nil)
	var ids []int64
	for i := 0; i < 5; i++ {
		id := m.RegisterQuery(1, "alice", "social", "q")
		require.NoError(t, m.FinishQuery(id))
		ids = append(ids, id)
	}
	runningID := m.RegisterQuery(1, "alice", "social", "still running")

	m.CleanupFinishedQueries(2)

	all := m.GetAllQueries()
	assert.Len(t, all, 3) // 2 kept finished + 1 running

	_, ok := m.GetQuery(runningID)
	assert.True(t, ok, "running query must never be cleaned up")

	// the two most recently started finished queries (last two ids) survive
	_, ok4 := m.GetQuery(ids[3])
	_, ok5 := m.GetQuery(ids[4])
	assert.True(t, ok4)
	assert.True(t, ok5)

	_, ok0 := m.GetQuery(ids[0])
	assert.False(t, ok0)
}

func TestGlobalQueryManager_Singleton(t *testing.T) {
	m1 := InitGlobalQueryManager()
	m2 := InitGlobalQueryManager()
	assert.Same(t, m1, m2)
	assert.Same(t, m1, GlobalQueryManager())
}
