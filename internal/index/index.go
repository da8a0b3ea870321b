// Package index implements the secondary index manager: per-tag/edge-type
// field indexes over vertex and edge properties, plus a pluggable fulltext
// engine. Grounded structurally on internal/schema.Manager's
// per-collection-RwLock discipline, and semantically on
// original_source/.../query/context/managers/index_manager.rs (the
// IndexManager trait's read/write/maintenance operation set) and
// original_source/.../index/fulltext.rs (FulltextIndexEngine,
// SimpleFulltextEngine's tokenize-and-invert scoring).
package index

import (
	"time"

	"github.com/ali01/graphd/internal/core/value"
)

// Status mirrors the source's IndexStatus: an index moves from Creating to
// Active once its initial build completes, or to Failed if that build
// errors out; Dropped is terminal.
type Status int

const (
	StatusCreating Status = iota
	StatusActive
	StatusDropped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCreating:
		return "CREATING"
	case StatusActive:
		return "ACTIVE"
	case StatusDropped:
		return "DROPPED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Kind mirrors the source's IndexType.
type Kind int

const (
	KindTag Kind = iota
	KindEdge
	KindFulltext
)

func (k Kind) String() string {
	switch k {
	case KindTag:
		return "TAG"
	case KindEdge:
		return "EDGE"
	case KindFulltext:
		return "FULLTEXT"
	default:
		return "UNKNOWN"
	}
}

// Def describes one secondary index: the schema object (tag or edge type)
// and the ordered list of property fields it covers, mirroring the
// source's Index struct (fields minus the parts this module doesn't need,
// like the numeric space_id — callers key everything by space name).
type Def struct {
	Name       string
	Space      string
	SchemaName string // tag name or edge type name
	Fields     []string
	Kind       Kind
	Unique     bool
	Comment    string
	Status     Status
}

// Stats mirrors the source's IndexStats.
type Stats struct {
	IndexName        string
	TotalEntries     int
	UniqueEntries    int
	LastUpdated      time.Time
	QueryCount       uint64
	TotalQueryMillis float64
}

func (s Stats) AvgQueryMillis() float64 {
	if s.QueryCount == 0 {
		return 0
	}
	return s.TotalQueryMillis / float64(s.QueryCount)
}

// Optimization mirrors the source's IndexOptimization: analyze_index's
// free-form suggestions plus a priority label.
type Optimization struct {
	IndexName   string
	Suggestions []string
	Priority    string // "low", "medium", "high"
}

// fieldKey builds the composite entry key for a multi-field index from an
// ordered list of property values, using Value.String() as the per-field
// encoding — sufficient for equality-keyed lookups; range lookups instead
// compare the first field via Value.Compare so only single-field indexes
// support range_lookup, matching the source (range queries are never
// issued against composite indexes).
func fieldKey(values []value.Value) string {
	key := ""
	for i, v := range values {
		if i > 0 {
			key += "\x1f"
		}
		key += v.String()
	}
	return key
}
