package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/types"
)

func TestCreateSpace_AllocatesID(t *testing.T) {
	m := New()
	sp1, err := m.CreateSpace("social", types.VIDTypeString, "")
	require.NoError(t, err)
	sp2, err := m.CreateSpace("finance", types.VIDTypeInt64, "")
	require.NoError(t, err)
	assert.NotEqual(t, sp1.SpaceID, sp2.SpaceID)
}

func TestCreateSpace_DuplicateNameRejected(t *testing.T) {
	m := New()
	_, err := m.CreateSpace("social", types.VIDTypeString, "")
	require.NoError(t, err)
	_, err = m.CreateSpace("social", types.VIDTypeString, "")
	assert.Error(t, err)
}

func TestDropSpace(t *testing.T) {
	m := New()
	_, err := m.CreateSpace("social", types.VIDTypeString, "")
	require.NoError(t, err)
	require.NoError(t, m.DropSpace("social"))

	_, err = m.GetSpace("social")
	assert.Error(t, err)
}

func TestGetSpaceByID(t *testing.T) {
	m := New()
	sp, err := m.CreateSpace("social", types.VIDTypeString, "")
	require.NoError(t, err)

	got, err := m.GetSpaceByID(sp.SpaceID)
	require.NoError(t, err)
	assert.Equal(t, "social", got.Name)
}

func TestClusterInfo_RoundTrip(t *testing.T) {
	m := New()
	m.SetClusterInfo(types.ClusterInfo{ClusterID: "c1", Version: "1.0.0"})
	assert.Equal(t, "c1", m.ClusterInfo().ClusterID)
}

func TestUserLifecycle(t *testing.T) {
	m := New()
	_, err := m.CreateUser("alice", "hashed-pw", true)
	require.NoError(t, err)

	rec, err := m.GetUser("alice")
	require.NoError(t, err)
	assert.True(t, rec.IsAdmin)

	require.NoError(t, m.UpdatePasswordHash("alice", "new-hash"))
	rec, err = m.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", rec.PasswordHash)

	require.NoError(t, m.DropUser("alice"))
	_, err = m.GetUser("alice")
	assert.Error(t, err)
}

func TestCreateUser_DuplicateRejected(t *testing.T) {
	m := New()
	_, err := m.CreateUser("alice", "hash", false)
	require.NoError(t, err)
	_, err = m.CreateUser("alice", "hash2", false)
	assert.Error(t, err)
}
