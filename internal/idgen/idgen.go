// Package idgen centralizes the engine's process-lifetime id generators:
// session ids (bit-packed timestamp + counter), query ids (monotonic
// counter behind a package-level singleton), and uuid-backed ids for
// transactions and indexes. Grounded on
// session_manager.rs's generate_session_id and query_manager.rs's
// next_query_id counter, generalizing internal/models/vault.go's use of
// google/uuid for entity identifiers.
package idgen

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// goldenRatio64 is the same wrapping-multiply constant the source uses to
// hash-derive a positive fallback id when the packed timestamp/counter
// value is non-positive.
const goldenRatio64 = 0x9E3779B97F4A7C15

// SessionIDGenerator packs a millisecond timestamp with a rolling counter
// into a session id, matching the source's bit layout exactly:
// (timestamp_ms & 0xFFFFFFFFFFFF0000) | (counter & 0xFFFF), falling back to
// a hash of the timestamp if that value is <= 0. This is what gives
// session ids their testable monotonicity property (spec testable
// property #2) within one process epoch.
type SessionIDGenerator struct {
	counter uint64
}

func NewSessionIDGenerator() *SessionIDGenerator {
	return &SessionIDGenerator{}
}

// Next returns the next session id. Safe for concurrent use.
func (g *SessionIDGenerator) Next() int64 {
	timestampMillis := uint64(time.Now().UnixMilli())
	counter := atomic.AddUint64(&g.counter, 1) & 0xFFFF

	sessionID := int64((timestampMillis & 0xFFFFFFFFFFFF0000) | counter)
	if sessionID <= 0 {
		return int64((timestampMillis * goldenRatio64) & 0x7FFFFFFFFFFFFFFF)
	}
	return sessionID
}

// QueryIDGenerator hands out monotonically increasing query ids starting at
// 1, matching query_manager.rs's next_query_id counter.
type QueryIDGenerator struct {
	mu     sync.Mutex
	nextID int64
}

func NewQueryIDGenerator() *QueryIDGenerator {
	return &QueryIDGenerator{nextID: 1}
}

func (g *QueryIDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	return id
}

var (
	globalQueryIDGen     *QueryIDGenerator
	globalQueryIDGenOnce sync.Once
)

// GlobalQueryIDGenerator returns the process-wide query id generator,
// initialized lazily exactly once. Mirrors the source's
// OnceLock<Arc<QueryManager>> global accessor (spec section 9's "global
// mutable state" note): a single explicitly-initialized singleton, never
// implicit module state; only this package's tests call it.
func GlobalQueryIDGenerator() *QueryIDGenerator {
	globalQueryIDGenOnce.Do(func() {
		globalQueryIDGen = NewQueryIDGenerator()
	})
	return globalQueryIDGen
}

// NewTransactionID returns a fresh random transaction identifier.
func NewTransactionID() string {
	return uuid.NewString()
}

// NewIndexID returns a fresh random index identifier.
func NewIndexID() string {
	return uuid.NewString()
}

// NewSpaceIDGenerator backs the "space-id counter" global state the spec's
// design notes call out, as an explicit process-lifetime counter rather
// than implicit module state.
type SpaceIDGenerator struct {
	next uint64
}

func NewSpaceIDGenerator() *SpaceIDGenerator {
	return &SpaceIDGenerator{next: 1}
}

func (g *SpaceIDGenerator) Next() uint64 {
	return atomic.AddUint64(&g.next, 1) - 1
}
