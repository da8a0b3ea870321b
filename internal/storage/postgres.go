package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/db"
	"github.com/ali01/graphd/internal/idgen"
)

// PostgresSchema is the DDL for the two tables the postgres-backed
// StorageClient depends on. It is applied once at bootstrap the same way
// (*db.DB).InitializeSchema applies the teacher's vault schema; this
// module's schema is graph-shaped rather than vault-shaped, so it is kept
// separate instead of appended to db's embedded schema.sql.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS graph_vertices (
	space      TEXT NOT NULL,
	vid_kind   SMALLINT NOT NULL,
	vid        TEXT NOT NULL,
	tags       TEXT[] NOT NULL DEFAULT '{}',
	properties JSONB NOT NULL DEFAULT '{}',
	-- vid_kind is part of the key: an int VID and a string VID with the
	-- same text representation (e.g. int 42 and string "42") are distinct
	-- vertices within a space, not a collision.
	PRIMARY KEY (space, vid_kind, vid)
);
CREATE INDEX IF NOT EXISTS graph_vertices_tags_gin ON graph_vertices USING GIN (tags);

CREATE TABLE IF NOT EXISTS graph_edges (
	space      TEXT NOT NULL,
	src_kind   SMALLINT NOT NULL,
	src        TEXT NOT NULL,
	edge_type  TEXT NOT NULL,
	ranking    BIGINT NOT NULL,
	dst_kind   SMALLINT NOT NULL,
	dst        TEXT NOT NULL,
	properties JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (space, src_kind, src, edge_type, ranking, dst_kind, dst)
);
CREATE INDEX IF NOT EXISTS graph_edges_by_type ON graph_edges (space, edge_type);
CREATE INDEX IF NOT EXISTS graph_edges_by_dst ON graph_edges (space, dst);
`

// sqlExecutor is the slice of *sqlx.DB / *sqlx.Tx this package needs,
// generalizing repository.Executor (internal/repository/executor.go) down
// to the three operations the storage client actually issues.
type sqlExecutor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PostgresStorage implements StorageClient against the graph_vertices /
// graph_edges tables, grounded file-for-file on
// internal/repository/postgres/node_repository.go and edge_repository.go:
// Executor-parameterized access, pq.Array for the TEXT[] tags column, pq.CopyIn for
// batch inserts, and errkit.FromPostgresError in place of
// postgres/helpers.go's handlePostgresError.
type PostgresStorage struct {
	// sqlxDB is set only on the top-level client returned by
	// NewPostgresStorage; a client handed to a WithTransaction callback has
	// this nil and must not itself open a nested transaction, matching
	// node_repository.go's "already in transaction" branch in CreateBatch.
	sqlxDB *sqlx.DB
	exec   sqlExecutor
}

func NewPostgresStorage(sqlxDB *sqlx.DB) *PostgresStorage {
	return &PostgresStorage{sqlxDB: sqlxDB, exec: sqlxDB}
}

// EnsureSchema creates the storage client's tables if they do not already
// exist. Safe to call repeatedly.
func EnsureSchema(ctx context.Context, sqlxDB *sqlx.DB) error {
	_, err := sqlxDB.ExecContext(ctx, PostgresSchema)
	if err != nil {
		return fmt.Errorf("storage: failed to apply schema: %w", err)
	}
	return nil
}

func (p *PostgresStorage) WithTransaction(ctx context.Context, fn func(tx StorageClient) error) error {
	if p.sqlxDB == nil {
		// Already inside a transaction (this instance was itself handed to
		// an outer WithTransaction callback); nesting reuses the same
		// connection rather than opening a second transaction.
		return fn(p)
	}
	txID := idgen.NewTransactionID()
	err := db.WithTransaction(p.sqlxDB, ctx, func(tx *sqlx.Tx) error {
		return fn(&PostgresStorage{exec: tx})
	})
	if err != nil {
		return fmt.Errorf("storage: transaction %s failed: %w", txID, err)
	}
	return nil
}

func (p *PostgresStorage) AddVertex(ctx context.Context, space string, vid value.Value, tags []string, props map[string]value.Value) error {
	kind, text, err := encodeVID(vid)
	if err != nil {
		return err
	}
	propBytes, err := encodeProperties(props)
	if err != nil {
		return errkit.WrapStorageError(errkit.StorageInvalidInput, "encode vertex properties", err)
	}

	_, err = p.exec.ExecContext(ctx,
		`INSERT INTO graph_vertices (space, vid_kind, vid, tags, properties) VALUES ($1, $2, $3, $4, $5)`,
		space, kind, text, pq.Array(tags), propBytes,
	)
	if err != nil {
		return errkit.FromPostgresError(err, "vertex")
	}
	return nil
}

func (p *PostgresStorage) AddVertices(ctx context.Context, space string, items []VertexBatchItem) error {
	if len(items) == 0 {
		return nil
	}
	if tx, ok := p.exec.(*sqlx.Tx); ok {
		return addVerticesWithCopy(ctx, tx, space, items)
	}
	sqlxDB, ok := p.exec.(*sqlx.DB)
	if !ok {
		return p.addVerticesIndividually(ctx, space, items)
	}
	return db.WithTransaction(sqlxDB, ctx, func(tx *sqlx.Tx) error {
		return addVerticesWithCopy(ctx, tx, space, items)
	})
}

// addVerticesWithCopy bulk-loads a vertex batch through postgres COPY,
// mirroring node_repository.go's createBatchWithCopy.
func addVerticesWithCopy(ctx context.Context, tx *sqlx.Tx, space string, items []VertexBatchItem) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("graph_vertices", "space", "vid_kind", "vid", "tags", "properties"))
	if err != nil {
		return errkit.FromPostgresError(err, "vertex batch")
	}
	defer stmt.Close()

	for _, item := range items {
		kind, text, err := encodeVID(item.VID)
		if err != nil {
			return err
		}
		propBytes, err := encodeProperties(item.Properties)
		if err != nil {
			return errkit.WrapStorageError(errkit.StorageInvalidInput, "encode vertex properties", err)
		}
		if _, err := stmt.ExecContext(ctx, space, kind, text, pq.Array(item.Tags), propBytes); err != nil {
			return errkit.FromPostgresError(err, "vertex batch")
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return errkit.FromPostgresError(err, "vertex batch")
	}
	return nil
}

func (p *PostgresStorage) addVerticesIndividually(ctx context.Context, space string, items []VertexBatchItem) error {
	for _, item := range items {
		if err := p.AddVertex(ctx, space, item.VID, item.Tags, item.Properties); err != nil {
			return err
		}
	}
	return nil
}

type vertexRow struct {
	VIDKind    int            `db:"vid_kind"`
	VID        string         `db:"vid"`
	Tags       pq.StringArray `db:"tags"`
	Properties []byte         `db:"properties"`
}

func (r *vertexRow) toVertex() (*value.Vertex, error) {
	vid, err := decodeVID(r.VIDKind, r.VID)
	if err != nil {
		return nil, err
	}
	props, err := decodeProperties(r.Properties)
	if err != nil {
		return nil, err
	}
	v := value.NewVertex(vid, 0)
	for _, t := range r.Tags {
		v.AddTag(t)
	}
	for k, val := range props {
		v.Properties[k] = val
	}
	return v, nil
}

func (p *PostgresStorage) GetVertex(ctx context.Context, space string, vid value.Value) (*value.Vertex, error) {
	kind, text, err := encodeVID(vid)
	if err != nil {
		return nil, err
	}
	var row vertexRow
	err = p.exec.GetContext(ctx, &row,
		`SELECT vid_kind, vid, tags, properties FROM graph_vertices WHERE space = $1 AND vid_kind = $2 AND vid = $3`,
		space, kind, text,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errkit.FromPostgresError(err, "vertex")
	}
	v, err := row.toVertex()
	if err != nil {
		return nil, err
	}
	v.VID = vid
	return v, nil
}

// GetVertices fetches each VID individually rather than a single ANY($n)
// query: vid is only unique per (space, vid_kind, vid), and a mixed-kind
// batch can't express that pairing as a flat IN-list without losing the
// kind/text association.
func (p *PostgresStorage) GetVertices(ctx context.Context, space string, vids []value.Value) ([]*value.Vertex, error) {
	out := make([]*value.Vertex, 0, len(vids))
	for _, vid := range vids {
		v, err := p.GetVertex(ctx, space, vid)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

func (p *PostgresStorage) DeleteVertex(ctx context.Context, space string, vid value.Value) error {
	kind, text, err := encodeVID(vid)
	if err != nil {
		return err
	}
	_, err = p.exec.ExecContext(ctx,
		`DELETE FROM graph_vertices WHERE space = $1 AND vid_kind = $2 AND vid = $3`,
		space, kind, text,
	)
	if err != nil {
		return errkit.FromPostgresError(err, "vertex")
	}
	return nil
}

func (p *PostgresStorage) DeleteVertices(ctx context.Context, space string, vids []value.Value) error {
	for _, vid := range vids {
		if err := p.DeleteVertex(ctx, space, vid); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresStorage) DeleteTags(ctx context.Context, space string, vid value.Value, tagIDs []string) error {
	kind, text, err := encodeVID(vid)
	if err != nil {
		return err
	}
	drop := make(map[string]struct{}, len(tagIDs))
	for _, t := range tagIDs {
		drop[t] = struct{}{}
	}
	var row vertexRow
	err = p.exec.GetContext(ctx, &row,
		`SELECT vid_kind, vid, tags, properties FROM graph_vertices WHERE space = $1 AND vid_kind = $2 AND vid = $3`,
		space, kind, text,
	)
	if err == sql.ErrNoRows {
		return errkit.NewStorageError(errkit.StorageNodeNotFound, "vertex not found")
	}
	if err != nil {
		return errkit.FromPostgresError(err, "vertex")
	}
	kept := make([]string, 0, len(row.Tags))
	for _, t := range row.Tags {
		if _, ok := drop[t]; !ok {
			kept = append(kept, t)
		}
	}
	_, err = p.exec.ExecContext(ctx,
		`UPDATE graph_vertices SET tags = $4 WHERE space = $1 AND vid_kind = $2 AND vid = $3`,
		space, kind, text, pq.Array(kept),
	)
	if err != nil {
		return errkit.FromPostgresError(err, "vertex")
	}
	return nil
}

func (p *PostgresStorage) UpdateVertex(ctx context.Context, space string, vid value.Value, tagID string, spec UpdateSpec) (*UpdateResult, error) {
	kind, text, err := encodeVID(vid)
	if err != nil {
		return nil, err
	}

	var row vertexRow
	err = p.exec.GetContext(ctx, &row,
		`SELECT vid_kind, vid, tags, properties FROM graph_vertices WHERE space = $1 AND vid_kind = $2 AND vid = $3`,
		space, kind, text,
	)
	switch {
	case err == sql.ErrNoRows:
		if !spec.Insertable {
			return nil, errkit.NewStorageError(errkit.StorageNodeNotFound, "vertex not found")
		}
		var tags []string
		if tagID != "" {
			tags = []string{tagID}
		}
		propBytes, encErr := encodeProperties(spec.Updates)
		if encErr != nil {
			return nil, errkit.WrapStorageError(errkit.StorageInvalidInput, "encode vertex properties", encErr)
		}
		_, err = p.exec.ExecContext(ctx,
			`INSERT INTO graph_vertices (space, vid_kind, vid, tags, properties) VALUES ($1, $2, $3, $4, $5)`,
			space, kind, text, pq.Array(tags), propBytes,
		)
		if err != nil {
			return nil, errkit.FromPostgresError(err, "vertex")
		}
		return &UpdateResult{Inserted: true, Props: projectProps(spec.Updates, spec.ReturnProps)}, nil
	case err != nil:
		return nil, errkit.FromPostgresError(err, "vertex")
	}

	currentProps, err := decodeProperties(row.Properties)
	if err != nil {
		return nil, err
	}
	if spec.Condition != nil && !spec.Condition(currentProps) {
		return &UpdateResult{Inserted: false, Props: projectProps(currentProps, spec.ReturnProps)}, nil
	}
	for k, v := range spec.Updates {
		currentProps[k] = v
	}
	propBytes, err := encodeProperties(currentProps)
	if err != nil {
		return nil, errkit.WrapStorageError(errkit.StorageInvalidInput, "encode vertex properties", err)
	}
	_, err = p.exec.ExecContext(ctx,
		`UPDATE graph_vertices SET properties = $4 WHERE space = $1 AND vid_kind = $2 AND vid = $3`,
		space, kind, text, propBytes,
	)
	if err != nil {
		return nil, errkit.FromPostgresError(err, "vertex")
	}
	return &UpdateResult{Inserted: false, Props: projectProps(currentProps, spec.ReturnProps)}, nil
}

func (p *PostgresStorage) AddEdge(ctx context.Context, space string, edge *value.Edge) error {
	return p.insertEdge(ctx, space, edge.Src, edge.Dst, edge.EdgeType, edge.Ranking, edge.Properties)
}

func (p *PostgresStorage) insertEdge(ctx context.Context, space string, src, dst value.Value, edgeType string, ranking int64, props map[string]value.Value) error {
	srcKind, srcText, err := encodeVID(src)
	if err != nil {
		return err
	}
	dstKind, dstText, err := encodeVID(dst)
	if err != nil {
		return err
	}
	propBytes, err := encodeProperties(props)
	if err != nil {
		return errkit.WrapStorageError(errkit.StorageInvalidInput, "encode edge properties", err)
	}
	_, err = p.exec.ExecContext(ctx,
		`INSERT INTO graph_edges (space, src_kind, src, edge_type, ranking, dst_kind, dst, properties)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		space, srcKind, srcText, edgeType, ranking, dstKind, dstText, propBytes,
	)
	if err != nil {
		return errkit.FromPostgresError(err, "edge")
	}
	return nil
}

func (p *PostgresStorage) AddEdges(ctx context.Context, space string, edges []EdgeBatchItem) error {
	if len(edges) == 0 {
		return nil
	}
	if tx, ok := p.exec.(*sqlx.Tx); ok {
		return addEdgesWithCopy(ctx, tx, space, edges)
	}
	sqlxDB, ok := p.exec.(*sqlx.DB)
	if !ok {
		for _, e := range edges {
			if err := p.insertEdge(ctx, space, e.Src, e.Dst, e.EdgeType, e.Ranking, e.Properties); err != nil {
				return err
			}
		}
		return nil
	}
	return db.WithTransaction(sqlxDB, ctx, func(tx *sqlx.Tx) error {
		return addEdgesWithCopy(ctx, tx, space, edges)
	})
}

func addEdgesWithCopy(ctx context.Context, tx *sqlx.Tx, space string, edges []EdgeBatchItem) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("graph_edges",
		"space", "src_kind", "src", "edge_type", "ranking", "dst_kind", "dst", "properties"))
	if err != nil {
		return errkit.FromPostgresError(err, "edge batch")
	}
	defer stmt.Close()

	for _, e := range edges {
		srcKind, srcText, err := encodeVID(e.Src)
		if err != nil {
			return err
		}
		dstKind, dstText, err := encodeVID(e.Dst)
		if err != nil {
			return err
		}
		propBytes, err := encodeProperties(e.Properties)
		if err != nil {
			return errkit.WrapStorageError(errkit.StorageInvalidInput, "encode edge properties", err)
		}
		if _, err := stmt.ExecContext(ctx, space, srcKind, srcText, e.EdgeType, e.Ranking, dstKind, dstText, propBytes); err != nil {
			return errkit.FromPostgresError(err, "edge batch")
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return errkit.FromPostgresError(err, "edge batch")
	}
	return nil
}

type edgeRow struct {
	SrcKind    int    `db:"src_kind"`
	Src        string `db:"src"`
	EdgeType   string `db:"edge_type"`
	Ranking    int64  `db:"ranking"`
	DstKind    int    `db:"dst_kind"`
	Dst        string `db:"dst"`
	Properties []byte `db:"properties"`
}

func (r *edgeRow) toEdge() (*value.Edge, error) {
	src, err := decodeVID(r.SrcKind, r.Src)
	if err != nil {
		return nil, err
	}
	dst, err := decodeVID(r.DstKind, r.Dst)
	if err != nil {
		return nil, err
	}
	props, err := decodeProperties(r.Properties)
	if err != nil {
		return nil, err
	}
	e := value.NewEdge(src, dst, r.EdgeType, r.Ranking)
	for k, v := range props {
		e.Properties[k] = v
	}
	return e, nil
}

func (p *PostgresStorage) GetEdge(ctx context.Context, space string, key value.EdgeKey) (*value.Edge, error) {
	var row edgeRow
	err := p.exec.GetContext(ctx, &row,
		`SELECT src_kind, src, edge_type, ranking, dst_kind, dst, properties FROM graph_edges
		 WHERE space = $1 AND src = $2 AND edge_type = $3 AND ranking = $4 AND dst = $5`,
		space, key.Src, key.EdgeType, key.Ranking, key.Dst,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errkit.FromPostgresError(err, "edge")
	}
	return row.toEdge()
}

func (p *PostgresStorage) GetEdges(ctx context.Context, space string, keys []value.EdgeKey) ([]*value.Edge, error) {
	out := make([]*value.Edge, 0, len(keys))
	for _, k := range keys {
		e, err := p.GetEdge(ctx, space, k)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *PostgresStorage) DeleteEdge(ctx context.Context, space string, key value.EdgeKey) error {
	_, err := p.exec.ExecContext(ctx,
		`DELETE FROM graph_edges WHERE space = $1 AND src = $2 AND edge_type = $3 AND ranking = $4 AND dst = $5`,
		space, key.Src, key.EdgeType, key.Ranking, key.Dst,
	)
	if err != nil {
		return errkit.FromPostgresError(err, "edge")
	}
	return nil
}

func (p *PostgresStorage) DeleteEdges(ctx context.Context, space string, keys []value.EdgeKey) error {
	for _, k := range keys {
		if err := p.DeleteEdge(ctx, space, k); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresStorage) UpdateEdge(ctx context.Context, space string, key value.EdgeKey, spec UpdateSpec) (*UpdateResult, error) {
	var row edgeRow
	err := p.exec.GetContext(ctx, &row,
		`SELECT src_kind, src, edge_type, ranking, dst_kind, dst, properties FROM graph_edges
		 WHERE space = $1 AND src = $2 AND edge_type = $3 AND ranking = $4 AND dst = $5`,
		space, key.Src, key.EdgeType, key.Ranking, key.Dst,
	)
	switch {
	case err == sql.ErrNoRows:
		if !spec.Insertable {
			return nil, errkit.NewStorageError(errkit.StorageEdgeNotFound, "edge not found")
		}
		propBytes, encErr := encodeProperties(spec.Updates)
		if encErr != nil {
			return nil, errkit.WrapStorageError(errkit.StorageInvalidInput, "encode edge properties", encErr)
		}
		_, err = p.exec.ExecContext(ctx,
			`INSERT INTO graph_edges (space, src_kind, src, edge_type, ranking, dst_kind, dst, properties)
			 VALUES ($1, 0, $2, $3, $4, 0, $5, $6)`,
			space, key.Src, key.EdgeType, key.Ranking, key.Dst, propBytes,
		)
		if err != nil {
			return nil, errkit.FromPostgresError(err, "edge")
		}
		return &UpdateResult{Inserted: true, Props: projectProps(spec.Updates, spec.ReturnProps)}, nil
	case err != nil:
		return nil, errkit.FromPostgresError(err, "edge")
	}

	currentProps, err := decodeProperties(row.Properties)
	if err != nil {
		return nil, err
	}
	if spec.Condition != nil && !spec.Condition(currentProps) {
		return &UpdateResult{Inserted: false, Props: projectProps(currentProps, spec.ReturnProps)}, nil
	}
	for k, v := range spec.Updates {
		currentProps[k] = v
	}
	propBytes, err := encodeProperties(currentProps)
	if err != nil {
		return nil, errkit.WrapStorageError(errkit.StorageInvalidInput, "encode edge properties", err)
	}
	_, err = p.exec.ExecContext(ctx,
		`UPDATE graph_edges SET properties = $6
		 WHERE space = $1 AND src = $2 AND edge_type = $3 AND ranking = $4 AND dst = $5`,
		space, key.Src, key.EdgeType, key.Ranking, key.Dst, propBytes,
	)
	if err != nil {
		return nil, errkit.FromPostgresError(err, "edge")
	}
	return &UpdateResult{Inserted: false, Props: projectProps(currentProps, spec.ReturnProps)}, nil
}

func (p *PostgresStorage) ScanVertices(ctx context.Context, space string, limit int) ([]*value.Vertex, error) {
	query := `SELECT vid_kind, vid, tags, properties FROM graph_vertices WHERE space = $1 ORDER BY vid`
	args := []interface{}{space}
	query, args = appendLimit(query, args, limit)

	var rows []vertexRow
	if err := p.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errkit.FromPostgresError(err, "vertex")
	}
	return vertexRowsToVertices(rows)
}

func (p *PostgresStorage) ScanVerticesByTag(ctx context.Context, space, tagID string, limit int) ([]*value.Vertex, error) {
	query := `SELECT vid_kind, vid, tags, properties FROM graph_vertices WHERE space = $1 AND tags @> $2 ORDER BY vid`
	args := []interface{}{space, pq.Array([]string{tagID})}
	query, args = appendLimit(query, args, limit)

	var rows []vertexRow
	if err := p.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errkit.FromPostgresError(err, "vertex")
	}
	return vertexRowsToVertices(rows)
}

func vertexRowsToVertices(rows []vertexRow) ([]*value.Vertex, error) {
	out := make([]*value.Vertex, 0, len(rows))
	for _, row := range rows {
		v, err := row.toVertex()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *PostgresStorage) ScanEdges(ctx context.Context, space string, limit int) ([]*value.Edge, error) {
	return p.scanEdgesWhere(ctx, `space = $1`, []interface{}{space}, limit)
}

func (p *PostgresStorage) ScanEdgesByType(ctx context.Context, space, edgeType string, limit int) ([]*value.Edge, error) {
	return p.scanEdgesWhere(ctx, `space = $1 AND edge_type = $2`, []interface{}{space, edgeType}, limit)
}

func (p *PostgresStorage) ScanEdgesBySrc(ctx context.Context, space string, src value.Value, limit int) ([]*value.Edge, error) {
	_, text, err := encodeVID(src)
	if err != nil {
		return nil, err
	}
	return p.scanEdgesWhere(ctx, `space = $1 AND src = $2`, []interface{}{space, text}, limit)
}

func (p *PostgresStorage) ScanEdgesByDst(ctx context.Context, space string, dst value.Value, limit int) ([]*value.Edge, error) {
	_, text, err := encodeVID(dst)
	if err != nil {
		return nil, err
	}
	return p.scanEdgesWhere(ctx, `space = $1 AND dst = $2`, []interface{}{space, text}, limit)
}

func (p *PostgresStorage) scanEdgesWhere(ctx context.Context, where string, args []interface{}, limit int) ([]*value.Edge, error) {
	query := fmt.Sprintf(
		`SELECT src_kind, src, edge_type, ranking, dst_kind, dst, properties FROM graph_edges WHERE %s ORDER BY src, edge_type, ranking, dst`,
		where,
	)
	query, args = appendLimit(query, args, limit)

	var rows []edgeRow
	if err := p.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errkit.FromPostgresError(err, "edge")
	}
	out := make([]*value.Edge, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEdge()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// appendLimit appends a LIMIT clause (and its placeholder) when limit > 0;
// limit <= 0 means unlimited, matching the storage-client contract's
// optional limit? scan parameters.
func appendLimit(query string, args []interface{}, limit int) (string, []interface{}) {
	if limit <= 0 {
		return query, args
	}
	args = append(args, limit)
	return fmt.Sprintf("%s LIMIT $%d", query, len(args)), args
}
