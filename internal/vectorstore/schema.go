package vectorstore

import (
	"database/sql"
	"fmt"
)

const schemaVersion = "1"

// createChunksTable mirrors chunk.Chunk's structural fields. Decorators and
// imports are stored delimiter-joined so filter.go can apply
// in_set/equals predicates with LIKE without a join table — chunk counts per
// file are small enough that this stays cheap.
const createChunksTable = `
CREATE TABLE IF NOT EXISTS chunks (
	chunk_id           TEXT PRIMARY KEY,
	file_path          TEXT NOT NULL,
	start_line         INTEGER NOT NULL,
	end_line           INTEGER NOT NULL,
	content            TEXT NOT NULL,
	content_hash       TEXT NOT NULL,
	file_hash          TEXT NOT NULL,
	language           TEXT NOT NULL,
	symbol_name        TEXT NOT NULL DEFAULT '',
	symbol_type        TEXT NOT NULL,
	variant            TEXT NOT NULL DEFAULT '',
	is_exported        INTEGER NOT NULL DEFAULT 0,
	is_async           INTEGER NOT NULL DEFAULT 0,
	is_static          INTEGER NOT NULL DEFAULT 0,
	is_abstract        INTEGER NOT NULL DEFAULT 0,
	decorators         TEXT NOT NULL DEFAULT '',
	complexity         INTEGER NOT NULL DEFAULT 0,
	has_documentation  INTEGER NOT NULL DEFAULT 0,
	parent_scope       TEXT NOT NULL DEFAULT '',
	imports            TEXT NOT NULL DEFAULT ''
)
`

const createCacheMetadataTable = `
CREATE TABLE IF NOT EXISTS store_metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)
`

func chunkIndexes() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_chunks_file_path ON chunks(file_path)",
		"CREATE INDEX IF NOT EXISTS idx_chunks_symbol_type ON chunks(symbol_type)",
		"CREATE INDEX IF NOT EXISTS idx_chunks_language ON chunks(language)",
		"CREATE INDEX IF NOT EXISTS idx_chunks_symbol_name ON chunks(symbol_name)",
	}
}

// createSchema creates the chunks and store_metadata tables and the chunk
// indexes in one transaction, then the sqlite-vec virtual table (vec0
// virtual tables must be created outside that transaction), then records the
// schema version in store_metadata.
func createSchema(db *sql.DB, dim int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := tx.Exec(createChunksTable); err != nil {
		return fmt.Errorf("create chunks table: %w", err)
	}
	if _, err := tx.Exec(createCacheMetadataTable); err != nil {
		return fmt.Errorf("create store_metadata table: %w", err)
	}
	for _, idx := range chunkIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}

	if err := createVectorTable(db, dim); err != nil {
		return err
	}

	if _, err := db.Exec(
		"INSERT OR IGNORE INTO store_metadata (key, value) VALUES ('schema_version', ?)",
		schemaVersion,
	); err != nil {
		return fmt.Errorf("bootstrap store_metadata: %w", err)
	}

	return nil
}

func createVectorTable(db *sql.DB, dim int) error {
	createSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunks_vec USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d]
		)
	`, dim)
	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("create vector table: %w", err)
	}
	return nil
}
