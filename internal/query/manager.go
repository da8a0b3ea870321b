// Package query implements the query manager: a process-wide registry of
// running/finished queries used for SHOW QUERIES, KILL QUERY, and
// execution-time statistics. The parser/validator/planner/optimizer/
// executor pipeline lives in its own subpackages
// (internal/query/{parser,validator,planner,optimizer,executor}); this
// package is the bookkeeping layer query_manager.rs implements, not the
// pipeline itself. Grounded on original_source/.../query/query_manager.rs.
package query

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ali01/graphd/internal/core/errkit"
)

// Status mirrors the source's QueryStatus.
type Status int

const (
	StatusRunning Status = iota
	StatusFinished
	StatusFailed
	StatusKilled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusFinished:
		return "Finished"
	case StatusFailed:
		return "Failed"
	case StatusKilled:
		return "Killed"
	default:
		return "Unknown"
	}
}

// Info is one query's tracked state, matching the source's QueryInfo.
type Info struct {
	QueryID       int64
	SessionID     int64
	UserName      string
	SpaceName     string
	QueryText     string
	Status        Status
	StartTime     time.Time
	DurationMS    *int64
	ExecutionPlan *string

	// seq disambiguates registration order when StartTime collides at
	// millisecond resolution; query ids are monotonic, so this is just
	// the query id kept unexported to avoid suggesting it's part of the
	// public contract.
	seq int64
}

func (q *Info) finishWith(status Status) {
	q.Status = status
	d := time.Since(q.StartTime).Milliseconds()
	q.DurationMS = &d
}

// Stats is an aggregate snapshot, matching the source's QueryStats.
type Stats struct {
	TotalQueries    uint64
	RunningQueries  uint64
	FinishedQueries uint64
	FailedQueries   uint64
	KilledQueries   uint64
	AvgDurationMS   int64
}

// Manager is the process-wide running-query registry. A single mutex
// guards the whole map, matching the source's parking_lot::Mutex<HashMap>
// — queries are registered/updated far less often than, say, schema
// lookups, so the finer per-collection locking schema.Manager uses isn't
// warranted here either.
type Manager struct {
	log *logrus.Entry

	mu          sync.Mutex
	queries     map[int64]*Info
	nextQueryID int64
}

func New(log *logrus.Entry) *Manager {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(discardWriter{})
		log = logrus.NewEntry(discard)
	}
	return &Manager{
		log:         log,
		queries:     make(map[int64]*Info),
		nextQueryID: 1,
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (m *Manager) generateQueryID() int64 {
	id := m.nextQueryID
	m.nextQueryID++
	return id
}

// RegisterQuery records a new running query and returns its id.
func (m *Manager) RegisterQuery(sessionID int64, userName, spaceName, queryText string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	queryID := m.generateQueryID()
	m.queries[queryID] = &Info{
		QueryID:   queryID,
		SessionID: sessionID,
		UserName:  userName,
		SpaceName: spaceName,
		QueryText: queryText,
		Status:    StatusRunning,
		StartTime: time.Now(),
		seq:       queryID,
	}
	m.log.WithField("query_id", queryID).WithField("session_id", sessionID).Info("query registered")
	return queryID
}

func (m *Manager) transition(queryID int64, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queries[queryID]
	if !ok {
		return errkit.NewManagerError(errkit.ManagerNotFound, "query not found")
	}
	q.finishWith(status)
	return nil
}

func (m *Manager) FinishQuery(queryID int64) error { return m.transition(queryID, StatusFinished) }
func (m *Manager) FailQuery(queryID int64) error   { return m.transition(queryID, StatusFailed) }
func (m *Manager) KillQuery(queryID int64) error   { return m.transition(queryID, StatusKilled) }

// GetQuery returns a copy of one query's tracked state.
func (m *Manager) GetQuery(queryID int64) (Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queries[queryID]
	if !ok {
		return Info{}, false
	}
	return *q, true
}

func (m *Manager) GetAllQueries() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, 0, len(m.queries))
	for _, q := range m.queries {
		out = append(out, *q)
	}
	return out
}

func (m *Manager) GetRunningQueries() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Info
	for _, q := range m.queries {
		if q.Status == StatusRunning {
			out = append(out, *q)
		}
	}
	return out
}

// GetStats computes the current aggregate snapshot.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats Stats
	stats.TotalQueries = uint64(len(m.queries))
	var totalDuration int64
	for _, q := range m.queries {
		switch q.Status {
		case StatusRunning:
			stats.RunningQueries++
		case StatusFinished:
			stats.FinishedQueries++
		case StatusFailed:
			stats.FailedQueries++
		case StatusKilled:
			stats.KilledQueries++
		}
		if q.DurationMS != nil {
			totalDuration += *q.DurationMS
		}
	}
	if stats.TotalQueries > 0 {
		stats.AvgDurationMS = totalDuration / int64(stats.TotalQueries)
	}
	return stats
}

// CleanupFinishedQueries retains only the keepCount most recently started
// non-running queries, discarding older ones — matching the source's
// cleanup_finished_queries: sort ascending by start time, drop everything
// but the tail.
func (m *Manager) CleanupFinishedQueries(keepCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var finishedIDs []int64
	for id, q := range m.queries {
		if q.Status != StatusRunning {
			finishedIDs = append(finishedIDs, id)
		}
	}
	sort.Slice(finishedIDs, func(i, j int) bool {
		qi, qj := m.queries[finishedIDs[i]], m.queries[finishedIDs[j]]
		if qi.StartTime.Equal(qj.StartTime) {
			return qi.seq < qj.seq
		}
		return qi.StartTime.Before(qj.StartTime)
	})

	toRemove := len(finishedIDs) - keepCount
	if toRemove <= 0 {
		return
	}
	for _, id := range finishedIDs[:toRemove] {
		delete(m.queries, id)
	}
}

var (
	globalManager     *Manager
	globalManagerOnce sync.Once
)

// InitGlobalQueryManager creates and installs the process-wide query
// manager, matching the source's init_global_query_manager.
func InitGlobalQueryManager() *Manager {
	globalManagerOnce.Do(func() {
		globalManager = New(nil)
	})
	return globalManager
}

// GlobalQueryManager returns the process-wide query manager, or nil if it
// has not been initialized yet, matching get_global_query_manager's
// Option-returning signature.
func GlobalQueryManager() *Manager {
	return globalManager
}
