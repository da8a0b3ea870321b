// Package storage implements the concurrency-safe storage client contract:
// vertex/edge CRUD, scans, transactional-per-call and atomic-batch
// semantics, and the retryable-error taxonomy the executor layer depends
// on. Grounded on internal/repository/postgres/{node_repository,
// edge_repository,transaction,helpers,errors}.go's sqlx/lib/pq pattern,
// generalized from two entity-specific repositories into one
// space-partitioned graph store, with internal/core/errkit/storage.go
// supplying the error taxonomy in place of the teacher's per-file
// NotFoundError/DuplicateKeyError/ValidationError trio.
package storage

import (
	"context"

	"github.com/ali01/graphd/internal/core/value"
)

// VertexBatchItem is one vertex in an AddVertices batch call.
type VertexBatchItem struct {
	VID        value.Value
	Tags       []string
	Properties map[string]value.Value
}

// EdgeBatchItem is one edge in an AddEdges batch call.
type EdgeBatchItem struct {
	Src        value.Value
	Dst        value.Value
	EdgeType   string
	Ranking    int64
	Properties map[string]value.Value
}

// UpdateSpec parameterizes update_vertex/update_edge per the storage
// client contract: a set of property updates, whether the row may be
// created if absent, which properties to echo back, and an optional
// equality condition gating the update.
type UpdateSpec struct {
	Updates     map[string]value.Value
	Insertable  bool
	ReturnProps []string
	// Condition, when non-nil, is checked against the row's current
	// properties before applying Updates; the update is skipped (and
	// UpdateResult.Inserted is false) if the condition does not hold. A nil
	// Condition always passes.
	Condition func(current map[string]value.Value) bool
}

// UpdateResult reports what update_vertex/update_edge actually did.
type UpdateResult struct {
	Inserted bool
	Props    map[string]value.Value
}

// StorageClient is the full vertex/edge/scan surface the query executor
// depends on (spec section 6, "Storage client contract"). All mutations
// are transactional at the granularity of a single call; batch calls are
// atomic all-or-nothing. Scans are not required to be snapshot-consistent
// unless issued through WithTransaction.
type StorageClient interface {
	AddVertex(ctx context.Context, space string, vid value.Value, tags []string, props map[string]value.Value) error
	AddVertices(ctx context.Context, space string, items []VertexBatchItem) error
	GetVertex(ctx context.Context, space string, vid value.Value) (*value.Vertex, error)
	GetVertices(ctx context.Context, space string, vids []value.Value) ([]*value.Vertex, error)
	DeleteVertex(ctx context.Context, space string, vid value.Value) error
	DeleteVertices(ctx context.Context, space string, vids []value.Value) error
	DeleteTags(ctx context.Context, space string, vid value.Value, tagIDs []string) error
	UpdateVertex(ctx context.Context, space string, vid value.Value, tagID string, spec UpdateSpec) (*UpdateResult, error)

	AddEdge(ctx context.Context, space string, edge *value.Edge) error
	AddEdges(ctx context.Context, space string, edges []EdgeBatchItem) error
	GetEdge(ctx context.Context, space string, key value.EdgeKey) (*value.Edge, error)
	GetEdges(ctx context.Context, space string, keys []value.EdgeKey) ([]*value.Edge, error)
	DeleteEdge(ctx context.Context, space string, key value.EdgeKey) error
	DeleteEdges(ctx context.Context, space string, keys []value.EdgeKey) error
	UpdateEdge(ctx context.Context, space string, key value.EdgeKey, spec UpdateSpec) (*UpdateResult, error)

	ScanVertices(ctx context.Context, space string, limit int) ([]*value.Vertex, error)
	ScanVerticesByTag(ctx context.Context, space, tagID string, limit int) ([]*value.Vertex, error)
	ScanEdges(ctx context.Context, space string, limit int) ([]*value.Edge, error)
	ScanEdgesByType(ctx context.Context, space, edgeType string, limit int) ([]*value.Edge, error)
	ScanEdgesBySrc(ctx context.Context, space string, src value.Value, limit int) ([]*value.Edge, error)
	ScanEdgesByDst(ctx context.Context, space string, dst value.Value, limit int) ([]*value.Edge, error)

	// WithTransaction runs fn against a client bound to a single
	// transaction; every call fn makes through tx commits or rolls back
	// together. Mirrors repository.TransactionManager.WithTransaction,
	// generalized to hand back a StorageClient rather than a raw Executor.
	WithTransaction(ctx context.Context, fn func(tx StorageClient) error) error
}
