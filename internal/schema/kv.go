// Package schema implements the schema manager: versioned tags and edge
// types, per-space name caches, schema-version history with rollback, and
// persistence to a named-table KV contract. Grounded on
// original_source/.../schema_manager_impl.rs for mutation/versioning
// semantics and on internal/repository/postgres/* for the
// sqlx/lib/pq-backed persistence style.
package schema

import (
	"encoding/json"
	"sync"

	"github.com/ali01/graphd/internal/core/errkit"
)

// KVStore is the named-table read/write contract the on-disk KV engine
// exposes; it is explicitly out of scope for design (spec section 1), so
// this package only depends on the narrow contract it needs: get/put/scan
// by table and key. MemoryKV is an in-memory reference implementation and
// the only KVStore implementation in this module; nothing under
// internal/storage implements it.
type KVStore interface {
	Get(table, key string) ([]byte, bool, error)
	Put(table, key string, value []byte) error
	Delete(table, key string) error
	ScanPrefix(table, prefix string) (map[string][]byte, error)
}

// MemoryKV is an in-memory KVStore, sufficient for unit tests and for the
// single-process reference deployment.
type MemoryKV struct {
	mu     sync.RWMutex
	tables map[string]map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{tables: make(map[string]map[string][]byte)}
}

func (m *MemoryKV) Get(table, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[table]
	if !ok {
		return nil, false, nil
	}
	v, ok := t[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Put(table, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		t = make(map[string][]byte)
		m.tables[table] = t
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	t[key] = stored
	return nil
}

func (m *MemoryKV) Delete(table, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[table]; ok {
		delete(t, key)
	}
	return nil
}

func (m *MemoryKV) ScanPrefix(table, prefix string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte)
	t, ok := m.tables[table]
	if !ok {
		return out, nil
	}
	for k, v := range t {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			cp := make([]byte, len(v))
			copy(cp, v)
			out[k] = cp
		}
	}
	return out, nil
}

// encodeJSON and decodeJSON are the (implementation-defined but stable)
// binary encoding the spec's persisted-state layout calls for; JSON is used
// here for legibility, matching the teacher's use of Postgres JSONB columns
// (internal/models/json_metadata.go) for the same kind of semi-structured
// catalog data.
func encodeJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errkit.WrapStorageError(errkit.StorageSerializeError, "failed to encode catalog value", err)
	}
	return b, nil
}

func decodeJSON(data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		return errkit.WrapStorageError(errkit.StorageDeserializeError, "failed to decode catalog value", err)
	}
	return nil
}
