package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/idgen"
)

const (
	// DefaultMaxConnections mirrors DEFAULT_MAX_ALLOWED_CONNECTIONS.
	DefaultMaxConnections = 100
	// DefaultIdleTimeout mirrors DEFAULT_SESSION_IDLE_TIMEOUT (10 minutes).
	DefaultIdleTimeout  = 10 * time.Minute
	reclamationInterval = 30 * time.Second
)

// Info is the read-only projection of a session used for SHOW SESSIONS,
// matching the source's SessionInfo.
type Info struct {
	SessionID      int64
	UserName       string
	SpaceName      string
	GraphAddr      string
	CreateTime     time.Time
	LastAccessTime time.Time
	ActiveQueries  int
	Timezone       *int32
}

// Manager is the process-wide session registry. Sessions and their
// last-activity timestamps live in sync.Map — no concurrent-map
// third-party dependency appears anywhere in the example pack, so this is
// a justified stdlib choice (see DESIGN.md) standing in for the source's
// DashMap; creation timestamps live behind a plain RWMutex-guarded map,
// matching the source's tokio::sync::RwLock<HashMap> for the
// read-mostly/write-rarely create-time table.
type Manager struct {
	log *logrus.Entry

	sessions      sync.Map // int64 -> *ClientSession
	activeSession sync.Map // int64 -> time.Time (last activity)

	createTimesMu sync.RWMutex
	createTimes   map[int64]time.Time

	hostAddr       string
	maxConnections int
	idleTimeout    time.Duration

	idGen *idgen.SessionIDGenerator

	cleanupRunning atomic.Bool
	stopCleanup    chan struct{}
}

// New creates a session manager. Background reclamation is not started
// automatically — call StartCleanupTask explicitly, matching the source's
// comment that GraphSessionManager::new never starts it implicitly.
func New(hostAddr string, maxConnections int, idleTimeout time.Duration, log *logrus.Entry) *Manager {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(discardWriter{})
		log = logrus.NewEntry(discard)
	}
	return &Manager{
		log:            log,
		createTimes:    make(map[int64]time.Time),
		hostAddr:       hostAddr,
		maxConnections: maxConnections,
		idleTimeout:    idleTimeout,
		idGen:          idgen.NewSessionIDGenerator(),
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// StartCleanupTask launches the background reclamation loop if it is not
// already running. The loop exits when ctx is canceled or StopCleanupTask
// is called.
func (m *Manager) StartCleanupTask(ctx context.Context) {
	if m.cleanupRunning.Swap(true) {
		m.log.Info("session cleanup task is already running")
		return
	}
	m.stopCleanup = make(chan struct{})
	m.log.Info("starting session cleanup task")
	go m.backgroundReclamationLoop(ctx)
}

func (m *Manager) StopCleanupTask() {
	m.log.Info("stopping session cleanup task")
	if m.cleanupRunning.Swap(false) {
		close(m.stopCleanup)
	}
}

func (m *Manager) IsCleanupTaskRunning() bool {
	return m.cleanupRunning.Load()
}

func (m *Manager) backgroundReclamationLoop(ctx context.Context) {
	ticker := time.NewTicker(reclamationInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Info("session cleanup task stopping: context canceled")
			return
		case <-m.stopCleanup:
			m.log.Info("session cleanup task stopped")
			return
		case <-ticker.C:
			if !m.cleanupRunning.Load() {
				return
			}
			m.reclaimExpiredSessions()
		}
	}
}

func (m *Manager) reclaimExpiredSessions() {
	var expired []int64
	m.activeSession.Range(func(key, value any) bool {
		sessionID := key.(int64)
		lastActivity := value.(time.Time)
		if time.Since(lastActivity) > m.idleTimeout {
			expired = append(expired, sessionID)
		}
		return true
	})
	if len(expired) > 0 {
		m.log.WithField("count", len(expired)).Info("reclaiming expired sessions")
	}
	for _, id := range expired {
		m.RemoveSession(id)
	}
}

// IsOutOfConnections reports whether the active-session count has reached
// the configured maximum.
func (m *Manager) IsOutOfConnections() bool {
	count := 0
	m.activeSession.Range(func(_, _ any) bool { count++; return true })
	return count >= m.maxConnections
}

// CreateSession allocates a new session id and registers a fresh
// ClientSession for the given user.
func (m *Manager) CreateSession(userName string) (*ClientSession, error) {
	m.log.WithField("user", userName).Info("creating new session")
	if m.IsOutOfConnections() {
		m.log.WithField("user", userName).Warn("failed to create session: maximum connections exceeded")
		return nil, errkit.NewSessionError(errkit.SessionMaxConnectionsExceeded, "exceeded maximum allowed connections")
	}

	sessionID := m.idGen.Next()
	cs := NewClientSession(Session{
		SessionID: sessionID,
		UserName:  userName,
		GraphAddr: m.hostAddr,
	})

	createTime := time.Now()
	m.sessions.Store(sessionID, cs)
	m.activeSession.Store(sessionID, time.Now())

	m.createTimesMu.Lock()
	m.createTimes[sessionID] = createTime
	m.createTimesMu.Unlock()

	m.log.WithField("session_id", sessionID).WithField("user", userName).Info("session created")
	return cs, nil
}

// FindSession looks up a session by id.
func (m *Manager) FindSession(sessionID int64) (*ClientSession, bool) {
	v, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*ClientSession), true
}

// RemoveSession deletes a session from the registry.
func (m *Manager) RemoveSession(sessionID int64) {
	m.log.WithField("session_id", sessionID).Info("removing session")
	m.sessions.Delete(sessionID)
	m.activeSession.Delete(sessionID)

	m.createTimesMu.Lock()
	delete(m.createTimes, sessionID)
	m.createTimesMu.Unlock()
}

// ListLocalSessions returns every session's identity snapshot.
func (m *Manager) ListLocalSessions() []Session {
	var out []Session
	m.sessions.Range(func(_, value any) bool {
		out = append(out, value.(*ClientSession).Identity())
		return true
	})
	return out
}

// ListSessions returns SHOW SESSIONS-style info for every registered
// session.
func (m *Manager) ListSessions() []Info {
	m.createTimesMu.RLock()
	defer m.createTimesMu.RUnlock()

	var out []Info
	m.sessions.Range(func(key, value any) bool {
		sessionID := key.(int64)
		cs := value.(*ClientSession)
		createTime, ok := m.createTimes[sessionID]
		if !ok {
			return true
		}
		out = append(out, Info{
			SessionID:      sessionID,
			UserName:       cs.User(),
			SpaceName:      cs.SpaceName(),
			GraphAddr:      cs.GraphAddr(),
			CreateTime:     createTime,
			LastAccessTime: time.Now().Add(-time.Duration(cs.IdleSeconds()) * time.Second),
			ActiveQueries:  cs.ActiveQueriesCount(),
			Timezone:       cs.Timezone(),
		})
		return true
	})
	return out
}

// GetSessionInfo returns SHOW SESSIONS-style info for one session.
func (m *Manager) GetSessionInfo(sessionID int64) (*Info, bool) {
	cs, ok := m.FindSession(sessionID)
	if !ok {
		return nil, false
	}
	m.createTimesMu.RLock()
	createTime, ok := m.createTimes[sessionID]
	m.createTimesMu.RUnlock()
	if !ok {
		return nil, false
	}
	return &Info{
		SessionID:      sessionID,
		UserName:       cs.User(),
		SpaceName:      cs.SpaceName(),
		GraphAddr:      cs.GraphAddr(),
		CreateTime:     createTime,
		LastAccessTime: time.Now().Add(-time.Duration(cs.IdleSeconds()) * time.Second),
		ActiveQueries:  cs.ActiveQueriesCount(),
		Timezone:       cs.Timezone(),
	}, true
}

// KillSession terminates a session: only the owning user or an admin may
// kill it. All of the session's in-flight queries are marked killed before
// the session itself is removed.
func (m *Manager) KillSession(sessionID int64, currentUser string, isAdmin bool) error {
	m.log.WithField("session_id", sessionID).WithField("user", currentUser).Info("attempting to kill session")

	target, ok := m.FindSession(sessionID)
	if !ok {
		return errkit.NewSessionError(errkit.SessionNotFound, fmt.Sprintf("session %d not found", sessionID))
	}

	targetUser := target.User()
	if !isAdmin && targetUser != currentUser {
		m.log.WithField("session_id", sessionID).WithField("user", currentUser).Warn("permission denied killing session")
		return errkit.NewSessionError(errkit.SessionPermissionDenied, "insufficient permission to kill this session")
	}

	target.MarkAllQueriesKilled()
	m.RemoveSession(sessionID)

	m.log.WithField("session_id", sessionID).WithField("user", currentUser).Info("session killed")
	return nil
}

// KillMultipleSessions kills each session id, collecting one result per id
// in the same order (a failure on one id does not stop the others).
func (m *Manager) KillMultipleSessions(sessionIDs []int64, currentUser string, isAdmin bool) []error {
	results := make([]error, len(sessionIDs))
	for i, id := range sessionIDs {
		results[i] = m.KillSession(id, currentUser, isAdmin)
	}
	return results
}
