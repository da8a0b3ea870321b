package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/types"
)

func newTestManager() *Manager {
	return New("127.0.0.1:9669", DefaultMaxConnections, DefaultIdleTimeout, nil)
}

func TestSessionManagerCreation(t *testing.T) {
	m := newTestManager()
	assert.Empty(t, m.ListLocalSessions())
	assert.False(t, m.IsCleanupTaskRunning())
}

func TestCreateAndFindSession(t *testing.T) {
	m := newTestManager()
	cs, err := m.CreateSession("testuser")
	require.NoError(t, err)
	assert.Equal(t, "testuser", cs.User())
	assert.False(t, m.IsOutOfConnections())

	found, ok := m.FindSession(cs.ID())
	require.True(t, ok)
	assert.Equal(t, "testuser", found.User())

	_, ok = m.FindSession(999999)
	assert.False(t, ok)
}

func TestRemoveSession(t *testing.T) {
	m := newTestManager()
	cs, err := m.CreateSession("testuser")
	require.NoError(t, err)

	_, ok := m.FindSession(cs.ID())
	require.True(t, ok)

	m.RemoveSession(cs.ID())
	_, ok = m.FindSession(cs.ID())
	assert.False(t, ok)
}

func TestMaxConnections(t *testing.T) {
	m := New("127.0.0.1:9669", 5, DefaultIdleTimeout, nil)
	assert.False(t, m.IsOutOfConnections())

	for i := 0; i < 5; i++ {
		_, err := m.CreateSession("user")
		require.NoError(t, err)
	}
	assert.True(t, m.IsOutOfConnections())

	_, err := m.CreateSession("user6")
	assert.Error(t, err)
}

func TestKillSession(t *testing.T) {
	m := newTestManager()
	cs, err := m.CreateSession("testuser")
	require.NoError(t, err)

	require.NoError(t, m.KillSession(cs.ID(), "testuser", false))
	_, ok := m.FindSession(cs.ID())
	assert.False(t, ok)

	cs2, err := m.CreateSession("user2")
	require.NoError(t, err)

	err = m.KillSession(cs2.ID(), "otheruser", false)
	assert.Error(t, err)

	err = m.KillSession(cs2.ID(), "admin", true)
	assert.NoError(t, err)
}

func TestListSessions(t *testing.T) {
	m := newTestManager()
	for i := 0; i < 3; i++ {
		_, err := m.CreateSession("user")
		require.NoError(t, err)
	}
	assert.Len(t, m.ListSessions(), 3)
}

func TestClientSessionSpaceManagement(t *testing.T) {
	cs := NewClientSession(Session{SessionID: 123, UserName: "testuser"})
	assert.Nil(t, cs.Space())
	assert.Empty(t, cs.SpaceName())

	cs.SetSpace(SpaceBinding{Name: "test_space", ID: 456})
	assert.Equal(t, uint64(456), cs.Space().ID)
	assert.Equal(t, "test_space", cs.Space().Name)

	cs.UpdateSpaceName("new_space")
	assert.Equal(t, "new_space", cs.SpaceName())
}

func TestClientSessionRoleManagement(t *testing.T) {
	cs := NewClientSession(Session{SessionID: 123, UserName: "testuser"})
	_, ok := cs.RoleWithSpace(1)
	assert.False(t, ok)
	assert.False(t, cs.IsAdmin())
	assert.False(t, cs.IsGod())

	cs.SetRole(1, types.RoleAdmin)
	role, ok := cs.RoleWithSpace(1)
	require.True(t, ok)
	assert.Equal(t, types.RoleAdmin, role)
	assert.True(t, cs.IsAdmin())
	assert.False(t, cs.IsGod())

	cs.SetRole(2, types.RoleGod)
	assert.True(t, cs.IsGod())
	assert.True(t, cs.IsAdmin())
}

func TestClientSessionIdleTime(t *testing.T) {
	cs := NewClientSession(Session{SessionID: 123, UserName: "testuser"})
	assert.Equal(t, int64(0), cs.IdleSeconds())

	time.Sleep(10 * time.Millisecond)
	cs.Charge()
	assert.Equal(t, int64(0), cs.IdleSeconds())
}

func TestClientSessionQueryManagement(t *testing.T) {
	cs := NewClientSession(Session{SessionID: 123, UserName: "testuser"})
	assert.Equal(t, 0, cs.ActiveQueriesCount())
	assert.False(t, cs.FindQuery(1))

	cs.AddQuery(1, "SELECT * FROM user")
	assert.Equal(t, 1, cs.ActiveQueriesCount())
	assert.True(t, cs.FindQuery(1))

	cs.DeleteQuery(1)
	assert.Equal(t, 0, cs.ActiveQueriesCount())

	cs.AddQuery(2, "MATCH (n) RETURN n")
	require.NoError(t, cs.KillQuery(2))
	assert.False(t, cs.FindQuery(2))

	err := cs.KillQuery(999)
	assert.Error(t, err)
}

func TestClientSessionTransactionManagement(t *testing.T) {
	cs := NewClientSession(Session{SessionID: 123, UserName: "testuser"})
	_, ok := cs.CurrentTransaction()
	assert.False(t, ok)
	assert.False(t, cs.HasActiveTransaction())
	assert.True(t, cs.IsAutoCommit())

	cs.BindTransaction(1001)
	txn, ok := cs.CurrentTransaction()
	require.True(t, ok)
	assert.Equal(t, int64(1001), txn)
	assert.True(t, cs.HasActiveTransaction())

	cs.UnbindTransaction()
	_, ok = cs.CurrentTransaction()
	assert.False(t, ok)

	cs.SetAutoCommit(false)
	assert.False(t, cs.IsAutoCommit())
}

func TestClientSessionSavepointManagement(t *testing.T) {
	cs := NewClientSession(Session{SessionID: 123, UserName: "testuser"})
	assert.Equal(t, 0, cs.SavepointCount())

	cs.PushSavepoint(1)
	cs.PushSavepoint(2)
	assert.Equal(t, 2, cs.SavepointCount())
	assert.Equal(t, []int64{1, 2}, cs.SavepointStack())

	cs.ClearSavepoints()
	assert.Equal(t, 0, cs.SavepointCount())
}
