package executor

import (
	"context"
	"time"

	"github.com/ali01/graphd/internal/index"
	"github.com/ali01/graphd/internal/metadata"
	"github.com/ali01/graphd/internal/schema"
	"github.com/ali01/graphd/internal/storage"
)

// ExecStats is the per-executor observable every plan node's Stats()
// exposes, matching SPEC_FULL 4.5's "stats() and is_open() observable."
type ExecStats struct {
	RowsProduced int64
	Elapsed      time.Duration
}

// Executor is the common lifecycle every plan-node executor implements:
// open → execute → close, with running state observable independent of
// the result it eventually produces.
type Executor interface {
	Open() error
	Execute(ctx context.Context) (ExecutionResult, error)
	Close() error
	Stats() ExecStats
	IsOpen() bool
}

// lifecycle is embedded by every concrete executor to provide the
// open/close bookkeeping and stats tracking uniformly, the way every
// admin plan node in admin_node.rs shares the same id()/cost()/col_names()
// boilerplate collapsed here into one helper instead of N repeats.
type lifecycle struct {
	opened bool
	stats  ExecStats
}

func (l *lifecycle) Open() error {
	l.opened = true
	return nil
}

func (l *lifecycle) Close() error {
	l.opened = false
	return nil
}

func (l *lifecycle) IsOpen() bool { return l.opened }

func (l *lifecycle) Stats() ExecStats { return l.stats }

func (l *lifecycle) recordRows(n int, elapsed time.Duration) {
	l.stats.RowsProduced += int64(n)
	l.stats.Elapsed += elapsed
}

// Context bundles the catalog/storage/traversal dependencies every
// concrete executor needs, so Build can wire a plan tree without each
// executor type importing half the module's packages directly.
type Context struct {
	Ctx      context.Context
	Space    string
	Schema   *schema.Manager
	Metadata *metadata.Manager
	Index    *index.Manager
	Storage  storage.StorageClient
	Tracker  *MemoryTracker
}

// spaceID resolves the execution context's current space name to the
// numeric id internal/schema's tag/edge-type operations key on.
func (c *Context) spaceID(name string) (uint64, error) {
	sp, err := c.Metadata.GetSpace(name)
	if err != nil {
		return 0, err
	}
	return sp.SpaceID, nil
}
