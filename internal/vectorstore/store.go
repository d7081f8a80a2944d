// Package vectorstore implements the vector store on top of sqlite-vec:
// structural metadata lives in a regular "chunks" table, embeddings live in
// a sqlite-vec vec0 virtual table keyed by chunk_id, and search applies the
// filter as a pre-filter: matching chunks are restricted in the same query
// before results are ordered by distance and limited.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/errs"
)

func init() {
	sqlite_vec.Auto()
}

// Store is the sqlite-vec backed VectorStore.
type Store struct {
	db  *sql.DB
	dim int
}

// Open opens (creating if needed) the sqlite database at path and ensures its
// schema exists for the given embedding dimension.
func Open(path string, dim int) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errs.Wrap(errs.StoreError, "failed to open store", err)
	}
	db.SetMaxOpenConns(1) // vec0 virtual tables are not safe for concurrent writers

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.StoreError, "failed to enable foreign keys", err)
	}

	if err := createSchema(db, dim); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.StoreError, "failed to create schema", err)
	}

	return &Store{db: db, dim: dim}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertChunks replaces any existing rows for each chunk's id, idempotent by
// chunk id.
func (s *Store) UpsertChunks(ctx context.Context, chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, c := range chunks {
		if len(c.Embedding) != s.dim {
			return errs.New(errs.StoreError, fmt.Sprintf("chunk %s embedding dim %d does not match store dim %d", c.ID, len(c.Embedding), s.dim))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.StoreError, "failed to begin upsert transaction", err)
	}
	defer tx.Rollback()

	if err := upsertChunkRows(tx, chunks); err != nil {
		return err
	}
	if err := upsertVectorRows(tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.StoreError, "failed to commit upsert", err)
	}
	return nil
}

func upsertChunkRows(tx *sql.Tx, chunks []chunk.Chunk) error {
	deleteStmt, err := tx.Prepare("DELETE FROM chunks WHERE chunk_id = ?")
	if err != nil {
		return errs.Wrap(errs.StoreError, "failed to prepare chunk delete", err)
	}
	defer deleteStmt.Close()

	insertStmt, err := tx.Prepare(`
		INSERT INTO chunks (
			chunk_id, file_path, start_line, end_line, content, content_hash, file_hash,
			language, symbol_name, symbol_type, variant, is_exported, is_async, is_static,
			is_abstract, decorators, complexity, has_documentation, parent_scope, imports
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errs.Wrap(errs.StoreError, "failed to prepare chunk insert", err)
	}
	defer insertStmt.Close()

	for _, c := range chunks {
		if _, err := deleteStmt.Exec(c.ID); err != nil {
			return errs.Wrap(errs.StoreError, "failed to delete existing chunk row", err)
		}
		if _, err := insertStmt.Exec(
			c.ID, c.File, c.StartLine, c.EndLine, c.Content, c.ContentHash, c.FileHash,
			string(c.Language), c.SymbolName, string(c.SymbolType), c.Variant,
			boolToInt(c.IsExported), boolToInt(c.IsAsync), boolToInt(c.IsStatic), boolToInt(c.IsAbstract),
			joinList(c.Decorators), c.Complexity, boolToInt(c.HasDocumentation), c.ParentScope, joinList(c.Imports),
		); err != nil {
			return errs.Wrap(errs.StoreError, "failed to insert chunk row", err)
		}
	}
	return nil
}

func upsertVectorRows(tx *sql.Tx, chunks []chunk.Chunk) error {
	deleteStmt, err := tx.Prepare("DELETE FROM chunks_vec WHERE chunk_id = ?")
	if err != nil {
		return errs.Wrap(errs.StoreError, "failed to prepare vector delete", err)
	}
	defer deleteStmt.Close()

	insertStmt, err := tx.Prepare("INSERT INTO chunks_vec (chunk_id, embedding) VALUES (?, ?)")
	if err != nil {
		return errs.Wrap(errs.StoreError, "failed to prepare vector insert", err)
	}
	defer insertStmt.Close()

	for _, c := range chunks {
		if _, err := deleteStmt.Exec(c.ID); err != nil {
			return errs.Wrap(errs.StoreError, "failed to delete existing vector row", err)
		}
		embBytes, err := sqlite_vec.SerializeFloat32(c.Embedding)
		if err != nil {
			return errs.Wrap(errs.StoreError, "failed to serialize embedding", err)
		}
		if _, err := insertStmt.Exec(c.ID, embBytes); err != nil {
			return errs.Wrap(errs.StoreError, "failed to insert vector row", err)
		}
	}
	return nil
}

// DeleteByFile removes all chunks (structural rows and vectors) for file.
func (s *Store) DeleteByFile(ctx context.Context, file string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.StoreError, "failed to begin delete transaction", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT chunk_id FROM chunks WHERE file_path = ?", file)
	if err != nil {
		return errs.Wrap(errs.StoreError, "failed to query chunk ids for file", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return errs.Wrap(errs.StoreError, "failed to scan chunk id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	if _, err := tx.Exec("DELETE FROM chunks WHERE file_path = ?", file); err != nil {
		return errs.Wrap(errs.StoreError, "failed to delete chunk rows", err)
	}
	for _, id := range ids {
		if _, err := tx.Exec("DELETE FROM chunks_vec WHERE chunk_id = ?", id); err != nil {
			return errs.Wrap(errs.StoreError, "failed to delete vector row", err)
		}
	}

	return tx.Commit()
}

// SearchResult is one hit from Search: the stored chunk plus its cosine
// distance to the query.
type SearchResult struct {
	Chunk    chunk.Chunk
	Distance float64 // cosine distance, lower is better
}

// Search returns the top-k nearest neighbors of queryVector, restricted to
// chunks matching filter. The filter is applied as a pre-filter: a single
// query computes vec_distance_cosine for every stored vector, joins the
// chunks table, applies the filter in its WHERE clause, and only then orders
// by distance and takes k, so all k hits come from matching chunks. vec0's
// own KNN query planner is not used.
func (s *Store) Search(ctx context.Context, queryVector []float32, k int, filter *Filter) ([]SearchResult, error) {
	if len(queryVector) != s.dim {
		return nil, errs.New(errs.ModelMismatch, fmt.Sprintf("query embedding dim %d does not match store dim %d", len(queryVector), s.dim))
	}

	queryBytes, err := sqlite_vec.SerializeFloat32(queryVector)
	if err != nil {
		return nil, errs.Wrap(errs.StoreError, "failed to serialize query embedding", err)
	}

	// squirrel cannot express vec0's ORDER-BY-distance idiom through its
	// normal select builder, so the KNN half is a literal query and the
	// structural filter clause is built separately with squirrel and spliced
	// into its WHERE.
	var filterSQL string
	var filterArgs []any
	if filter != nil {
		sqlizer, err := toSQL(*filter)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidInput, "invalid filter", err)
		}
		clause, args, err := sqlizer.ToSql()
		if err != nil {
			return nil, errs.Wrap(errs.InvalidInput, "invalid filter", err)
		}
		filterSQL = clause
		filterArgs = args
	}

	query := `
		SELECT v.chunk_id, v.distance
		FROM (
			SELECT chunk_id, vec_distance_cosine(embedding, ?) AS distance
			FROM chunks_vec
		) v
		JOIN chunks c ON c.chunk_id = v.chunk_id
	`
	args := []any{queryBytes}
	if filterSQL != "" {
		query += " WHERE " + filterSQL
		args = append(args, filterArgs...)
	}
	query += " ORDER BY v.distance LIMIT ?"
	args = append(args, k)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.StoreError, "failed to query vector index", err)
	}
	defer rows.Close()

	var hits []struct {
		id       string
		distance float64
	}
	for rows.Next() {
		var id string
		var dist float64
		if err := rows.Scan(&id, &dist); err != nil {
			return nil, errs.Wrap(errs.StoreError, "failed to scan vector result", err)
		}
		hits = append(hits, struct {
			id       string
			distance float64
		}{id, dist})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.StoreError, "error iterating vector results", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		c, ok, err := s.loadChunk(ctx, h.id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		results = append(results, SearchResult{Chunk: c, Distance: h.distance})
	}
	return results, nil
}

// IterateChunks streams every chunk matching filter to visit, used by the
// duplicate detector to collect candidates without loading them all at once.
func (s *Store) IterateChunks(ctx context.Context, filter *Filter, visit func(chunk.Chunk) error) error {
	builder := sq.Select(chunkColumns...).From("chunks")
	if filter != nil {
		sqlizer, err := toSQL(*filter)
		if err != nil {
			return errs.Wrap(errs.InvalidInput, "invalid filter", err)
		}
		builder = builder.Where(sqlizer)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return errs.Wrap(errs.InvalidInput, "invalid filter", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return errs.Wrap(errs.StoreError, "failed to iterate chunks", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanChunkRow(rows)
		if err != nil {
			return errs.Wrap(errs.StoreError, "failed to scan chunk row", err)
		}
		emb, err := s.loadEmbedding(ctx, c.ID)
		if err != nil {
			return err
		}
		c.Embedding = emb
		if err := visit(c); err != nil {
			return err
		}
	}
	return rows.Err()
}

var chunkColumns = []string{
	"chunk_id", "file_path", "start_line", "end_line", "content", "content_hash", "file_hash",
	"language", "symbol_name", "symbol_type", "variant", "is_exported", "is_async", "is_static",
	"is_abstract", "decorators", "complexity", "has_documentation", "parent_scope", "imports",
}

func (s *Store) loadChunk(ctx context.Context, id string) (chunk.Chunk, bool, error) {
	query, args, err := sq.Select(chunkColumns...).From("chunks").Where(sq.Eq{"chunk_id": id}).ToSql()
	if err != nil {
		return chunk.Chunk{}, false, errs.Wrap(errs.StoreError, "failed to build chunk lookup", err)
	}
	row := s.db.QueryRowContext(ctx, query, args...)
	c, err := scanChunkRow(row)
	if err == sql.ErrNoRows {
		return chunk.Chunk{}, false, nil
	}
	if err != nil {
		return chunk.Chunk{}, false, errs.Wrap(errs.StoreError, "failed to scan chunk row", err)
	}
	emb, err := s.loadEmbedding(ctx, id)
	if err != nil {
		return chunk.Chunk{}, false, err
	}
	c.Embedding = emb
	return c, true, nil
}

func (s *Store) loadEmbedding(ctx context.Context, id string) ([]float32, error) {
	row := s.db.QueryRowContext(ctx, "SELECT embedding FROM chunks_vec WHERE chunk_id = ?", id)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errs.Wrap(errs.StoreError, "failed to load embedding", err)
	}
	return deserializeEmbedding(raw)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChunkRow(row scanner) (chunk.Chunk, error) {
	var c chunk.Chunk
	var language, symbolType string
	var isExported, isAsync, isStatic, isAbstract, hasDocumentation int
	var decorators, imports string

	err := row.Scan(
		&c.ID, &c.File, &c.StartLine, &c.EndLine, &c.Content, &c.ContentHash, &c.FileHash,
		&language, &c.SymbolName, &symbolType, &c.Variant, &isExported, &isAsync, &isStatic,
		&isAbstract, &decorators, &c.Complexity, &hasDocumentation, &c.ParentScope, &imports,
	)
	if err != nil {
		return chunk.Chunk{}, err
	}

	c.Language = chunk.Language(language)
	c.SymbolType = chunk.SymbolType(symbolType)
	c.IsExported = isExported != 0
	c.IsAsync = isAsync != 0
	c.IsStatic = isStatic != 0
	c.IsAbstract = isAbstract != 0
	c.HasDocumentation = hasDocumentation != 0
	c.Decorators = splitList(decorators)
	c.Imports = splitList(imports)

	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// deserializeEmbedding reverses sqlite_vec.SerializeFloat32's little-endian
// IEEE 754 encoding, the format vec0 stores float[n] columns in.
func deserializeEmbedding(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, errs.New(errs.IndexCorrupted, fmt.Sprintf("embedding blob length %d not divisible by 4", len(raw)))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}
