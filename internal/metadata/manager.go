// Package metadata implements the catalog-level metadata manager: spaces,
// cluster info and user accounts, sitting alongside internal/schema's
// tag/edge-type versioning. Grounded on
// original_source/.../core/types/space.rs's SpaceInfo (space id
// allocation, default vid type) and
// original_source/.../core/types/metadata.rs's UserInfo/ClusterInfo
// shapes. Spaces, cluster info and users are held in in-memory maps only;
// nothing is persisted, and all of it is lost when the process exits.
package metadata

import (
	"fmt"
	"sync"
	"time"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/types"
	"github.com/ali01/graphd/internal/idgen"
)

// Manager owns the space catalog, cluster metadata and user accounts. Space
// mutations are guarded by a single RWMutex: spaces are created rarely
// compared to the tag/edge-type churn within them, so the finer per-
// collection locking schema.Manager uses is not warranted here.
type Manager struct {
	spacesMu sync.RWMutex
	spaces   map[uint64]*types.Space
	nameToID map[string]uint64
	spaceGen *idgen.SpaceIDGenerator

	clusterMu sync.RWMutex
	cluster   types.ClusterInfo

	usersMu sync.RWMutex
	users   map[string]*types.UserRecord
}

func New() *Manager {
	return &Manager{
		spaces:   make(map[uint64]*types.Space),
		nameToID: make(map[string]uint64),
		spaceGen: idgen.NewSpaceIDGenerator(),
		users:    make(map[string]*types.UserRecord),
	}
}

// CreateSpace allocates a new space id and registers an empty space (no
// tags/edge types) with the caller's vid type and comment at version 1.
func (m *Manager) CreateSpace(name string, vidType types.VIDType, comment string) (*types.Space, error) {
	if name == "" {
		return nil, errkit.NewManagerError(errkit.ManagerInvalidInput, "space name must not be empty")
	}

	m.spacesMu.Lock()
	defer m.spacesMu.Unlock()
	if _, exists := m.nameToID[name]; exists {
		return nil, errkit.NewManagerError(errkit.ManagerAlreadyExists, fmt.Sprintf("space %q already exists", name))
	}

	sp := &types.Space{
		SpaceID: m.spaceGen.Next(),
		Name:    name,
		VIDType: vidType,
		Version: 1,
		Comment: comment,
	}
	m.spaces[sp.SpaceID] = sp
	m.nameToID[name] = sp.SpaceID
	return sp, nil
}

// DropSpace removes a space and its name mapping. It does not cascade into
// the schema manager or storage client, so the space's tags, edge types and
// stored data are left in place; the admin executor's DropSpace
// (internal/query/executor/admin.go) calls only this method.
func (m *Manager) DropSpace(name string) error {
	m.spacesMu.Lock()
	defer m.spacesMu.Unlock()
	id, ok := m.nameToID[name]
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("space %q not found", name))
	}
	delete(m.nameToID, name)
	delete(m.spaces, id)
	return nil
}

func (m *Manager) GetSpace(name string) (*types.Space, error) {
	m.spacesMu.RLock()
	defer m.spacesMu.RUnlock()
	id, ok := m.nameToID[name]
	if !ok {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("space %q not found", name))
	}
	sp := *m.spaces[id]
	return &sp, nil
}

func (m *Manager) GetSpaceByID(spaceID uint64) (*types.Space, error) {
	m.spacesMu.RLock()
	defer m.spacesMu.RUnlock()
	sp, ok := m.spaces[spaceID]
	if !ok {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("space id %d not found", spaceID))
	}
	cp := *sp
	return &cp, nil
}

func (m *Manager) ListSpaces() []types.Space {
	m.spacesMu.RLock()
	defer m.spacesMu.RUnlock()
	out := make([]types.Space, 0, len(m.spaces))
	for _, sp := range m.spaces {
		out = append(out, *sp)
	}
	return out
}

// SetClusterInfo installs cluster-wide metadata, typically done once at
// bootstrap by cmd/graphd.
func (m *Manager) SetClusterInfo(info types.ClusterInfo) {
	m.clusterMu.Lock()
	defer m.clusterMu.Unlock()
	m.cluster = info
}

func (m *Manager) ClusterInfo() types.ClusterInfo {
	m.clusterMu.RLock()
	defer m.clusterMu.RUnlock()
	return m.cluster
}

// CreateUser registers a user account. passwordHash is the already-hashed
// credential; hashing itself is internal/auth's responsibility, kept
// orthogonal to the catalog the way UserInfo::new's bcrypt call is a
// convenience wrapper rather than the type's defining responsibility.
func (m *Manager) CreateUser(username, passwordHash string, isAdmin bool) (*types.UserRecord, error) {
	if username == "" {
		return nil, errkit.NewManagerError(errkit.ManagerInvalidInput, "username must not be empty")
	}
	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	if _, exists := m.users[username]; exists {
		return nil, errkit.NewManagerError(errkit.ManagerAlreadyExists, fmt.Sprintf("user %q already exists", username))
	}
	rec := &types.UserRecord{
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	}
	m.users[username] = rec
	return rec, nil
}

func (m *Manager) GetUser(username string) (*types.UserRecord, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()
	rec, ok := m.users[username]
	if !ok {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("user %q not found", username))
	}
	cp := *rec
	return &cp, nil
}

// AlterUser applies a partial update to a user record: role and/or locked
// status. Either pointer may be nil to leave that field unchanged.
func (m *Manager) AlterUser(username string, role *types.RoleType, locked *bool) error {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	rec, ok := m.users[username]
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("user %q not found", username))
	}
	if role != nil {
		rec.Role = *role
	}
	if locked != nil {
		rec.Locked = *locked
	}
	return nil
}

func (m *Manager) DropUser(username string) error {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	if _, ok := m.users[username]; !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("user %q not found", username))
	}
	delete(m.users, username)
	return nil
}

// UpdatePasswordHash replaces a user's stored password hash, used by
// internal/auth after verifying the caller's old password.
func (m *Manager) UpdatePasswordHash(username, newHash string) error {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	rec, ok := m.users[username]
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, fmt.Sprintf("user %q not found", username))
	}
	rec.PasswordHash = newHash
	return nil
}

func (m *Manager) ListUsers() []types.UserRecord {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()
	out := make([]types.UserRecord, 0, len(m.users))
	for _, rec := range m.users {
		out = append(out, *rec)
	}
	return out
}
