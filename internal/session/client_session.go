// Package session implements the session manager: per-connection
// ClientSession state (current space, roles, running queries, transaction
// binding) and the GraphSessionManager that creates, finds, lists and
// reclaims sessions. Grounded on
// original_source/.../api/server/session/{network_session,session_manager}.rs.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/types"
)

// TransactionOptions mirrors the source's per-session transaction defaults.
type TransactionOptions struct {
	Isolation types.IsolationLevel
	ReadOnly  bool
}

// SpaceBinding is the space a session has switched into, matching the
// source's network_session::SpaceInfo.
type SpaceBinding struct {
	Name string
	ID   uint64
}

// Session is the plain-data identity of a connection: id, user, current
// space name and the host address the session was accepted on. ClientSession
// wraps it with mutable, lock-protected runtime state.
type Session struct {
	SessionID int64
	UserName  string
	SpaceName string
	GraphAddr string
	Timezone  *int32
}

// ClientSession tracks one connection's mutable runtime state: current
// space binding, per-space roles, the set of in-flight query contexts, and
// transaction binding. One RWMutex per logically-independent piece of
// state, matching the source's field-level parking_lot::RwLock use rather
// than one coarse lock for the whole struct.
type ClientSession struct {
	identityMu sync.RWMutex
	identity   Session

	spaceMu sync.RWMutex
	space   *SpaceBinding

	rolesMu sync.RWMutex
	roles   map[uint64]types.RoleType

	idleMu        sync.RWMutex
	idleStartTime time.Time

	contextsMu sync.RWMutex
	contexts   map[uint32]string // query ep id -> query text/description

	txnMu              sync.RWMutex
	currentTransaction *int64
	savepointStack     []int64
	transactionOptions TransactionOptions
	autoCommit         bool
}

// NewClientSession wraps a Session in its runtime state, with auto-commit
// enabled by default (matching the source's `auto_commit: true` default).
func NewClientSession(identity Session) *ClientSession {
	return &ClientSession{
		identity:      identity,
		roles:         make(map[uint64]types.RoleType),
		idleStartTime: time.Now(),
		contexts:      make(map[uint32]string),
		autoCommit:    true,
	}
}

func (c *ClientSession) ID() int64 {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.identity.SessionID
}

func (c *ClientSession) User() string {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.identity.UserName
}

func (c *ClientSession) SpaceName() string {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.identity.SpaceName
}

func (c *ClientSession) UpdateSpaceName(name string) {
	c.identityMu.Lock()
	defer c.identityMu.Unlock()
	c.identity.SpaceName = name
}

func (c *ClientSession) GraphAddr() string {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.identity.GraphAddr
}

func (c *ClientSession) UpdateGraphAddr(addr string) {
	c.identityMu.Lock()
	defer c.identityMu.Unlock()
	c.identity.GraphAddr = addr
}

func (c *ClientSession) Timezone() *int32 {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.identity.Timezone
}

func (c *ClientSession) SetTimezone(tz int32) {
	c.identityMu.Lock()
	defer c.identityMu.Unlock()
	c.identity.Timezone = &tz
}

func (c *ClientSession) Identity() Session {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.identity
}

func (c *ClientSession) Space() *SpaceBinding {
	c.spaceMu.RLock()
	defer c.spaceMu.RUnlock()
	if c.space == nil {
		return nil
	}
	cp := *c.space
	return &cp
}

func (c *ClientSession) SetSpace(space SpaceBinding) {
	c.spaceMu.Lock()
	defer c.spaceMu.Unlock()
	c.space = &space
}

func (c *ClientSession) Roles() map[uint64]types.RoleType {
	c.rolesMu.RLock()
	defer c.rolesMu.RUnlock()
	out := make(map[uint64]types.RoleType, len(c.roles))
	for k, v := range c.roles {
		out[k] = v
	}
	return out
}

func (c *ClientSession) RoleWithSpace(spaceID uint64) (types.RoleType, bool) {
	c.rolesMu.RLock()
	defer c.rolesMu.RUnlock()
	r, ok := c.roles[spaceID]
	return r, ok
}

func (c *ClientSession) SetRole(spaceID uint64, role types.RoleType) {
	c.rolesMu.Lock()
	defer c.rolesMu.Unlock()
	c.roles[spaceID] = role
}

// IsGod reports whether this session holds RoleGod in any space.
func (c *ClientSession) IsGod() bool {
	c.rolesMu.RLock()
	defer c.rolesMu.RUnlock()
	for _, r := range c.roles {
		if r == types.RoleGod {
			return true
		}
	}
	return false
}

// IsAdmin reports whether this session holds RoleAdmin or RoleGod in any
// space — God implies Admin, matching the source's is_admin.
func (c *ClientSession) IsAdmin() bool {
	c.rolesMu.RLock()
	defer c.rolesMu.RUnlock()
	for _, r := range c.roles {
		if r == types.RoleAdmin || r == types.RoleGod {
			return true
		}
	}
	return false
}

func (c *ClientSession) IdleSeconds() int64 {
	c.idleMu.RLock()
	defer c.idleMu.RUnlock()
	return int64(time.Since(c.idleStartTime).Seconds())
}

// Charge resets the idle clock; called on every request this session makes.
func (c *ClientSession) Charge() {
	c.idleMu.Lock()
	defer c.idleMu.Unlock()
	c.idleStartTime = time.Now()
}

func (c *ClientSession) AddQuery(epID uint32, queryText string) {
	c.contextsMu.Lock()
	defer c.contextsMu.Unlock()
	c.contexts[epID] = queryText
}

func (c *ClientSession) DeleteQuery(epID uint32) {
	c.contextsMu.Lock()
	defer c.contextsMu.Unlock()
	delete(c.contexts, epID)
}

func (c *ClientSession) FindQuery(epID uint32) bool {
	c.contextsMu.RLock()
	defer c.contextsMu.RUnlock()
	_, ok := c.contexts[epID]
	return ok
}

func (c *ClientSession) ActiveQueriesCount() int {
	c.contextsMu.RLock()
	defer c.contextsMu.RUnlock()
	return len(c.contexts)
}

// MarkAllQueriesKilled drops every tracked query context; the executor side
// observes this indirectly via a shared cooperative-cancellation flag owned
// by the query manager (see internal/query), not via this map directly.
func (c *ClientSession) MarkAllQueriesKilled() {
	c.contextsMu.Lock()
	defer c.contextsMu.Unlock()
	c.contexts = make(map[uint32]string)
}

// KillQuery removes one tracked query, failing if it is not present.
func (c *ClientSession) KillQuery(epID uint32) error {
	c.contextsMu.Lock()
	defer c.contextsMu.Unlock()
	if _, ok := c.contexts[epID]; !ok {
		return errkit.NewQueryError(errkit.QueryExecutionError, fmt.Sprintf("query %d not found", epID))
	}
	delete(c.contexts, epID)
	return nil
}

func (c *ClientSession) CurrentTransaction() (int64, bool) {
	c.txnMu.RLock()
	defer c.txnMu.RUnlock()
	if c.currentTransaction == nil {
		return 0, false
	}
	return *c.currentTransaction, true
}

func (c *ClientSession) BindTransaction(txnID int64) {
	c.txnMu.Lock()
	defer c.txnMu.Unlock()
	c.currentTransaction = &txnID
}

// UnbindTransaction clears the bound transaction and its savepoint stack.
func (c *ClientSession) UnbindTransaction() {
	c.txnMu.Lock()
	defer c.txnMu.Unlock()
	c.currentTransaction = nil
	c.savepointStack = nil
}

func (c *ClientSession) HasActiveTransaction() bool {
	c.txnMu.RLock()
	defer c.txnMu.RUnlock()
	return c.currentTransaction != nil
}

func (c *ClientSession) IsAutoCommit() bool {
	c.txnMu.RLock()
	defer c.txnMu.RUnlock()
	return c.autoCommit
}

func (c *ClientSession) SetAutoCommit(v bool) {
	c.txnMu.Lock()
	defer c.txnMu.Unlock()
	c.autoCommit = v
}

func (c *ClientSession) TransactionOptions() TransactionOptions {
	c.txnMu.RLock()
	defer c.txnMu.RUnlock()
	return c.transactionOptions
}

func (c *ClientSession) SetTransactionOptions(opts TransactionOptions) {
	c.txnMu.Lock()
	defer c.txnMu.Unlock()
	c.transactionOptions = opts
}

func (c *ClientSession) PushSavepoint(id int64) {
	c.txnMu.Lock()
	defer c.txnMu.Unlock()
	c.savepointStack = append(c.savepointStack, id)
}

func (c *ClientSession) SavepointStack() []int64 {
	c.txnMu.RLock()
	defer c.txnMu.RUnlock()
	return append([]int64(nil), c.savepointStack...)
}

func (c *ClientSession) ClearSavepoints() {
	c.txnMu.Lock()
	defer c.txnMu.Unlock()
	c.savepointStack = nil
}

func (c *ClientSession) SavepointCount() int {
	c.txnMu.RLock()
	defer c.txnMu.RUnlock()
	return len(c.savepointStack)
}
