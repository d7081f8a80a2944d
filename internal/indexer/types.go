package indexer

import (
	"context"

	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

// Store is the subset of vectorstore.Store the indexer depends on, narrowed
// to an interface so tests can substitute a fake.
type Store interface {
	UpsertChunks(ctx context.Context, chunks []chunk.Chunk) error
	DeleteByFile(ctx context.Context, file string) error
	IterateChunks(ctx context.Context, filter *vectorstore.Filter, visit func(chunk.Chunk) error) error
}

// FullSummary is IndexFull's result.
type FullSummary struct {
	Files      int   `json:"files"`
	Chunks     int   `json:"chunks"`
	Errors     int   `json:"errors"`
	DurationMs int64 `json:"duration_ms"`
}

// IncrementalSummary is IndexIncremental's result.
type IncrementalSummary struct {
	Files      int    `json:"files"`
	Chunks     int    `json:"chunks"`
	Skipped    int    `json:"skipped"`
	Removed    int    `json:"removed"`
	Errors     int    `json:"errors"`
	DurationMs int64  `json:"duration_ms"`
	Mode       string `json:"mode"`
}

// VerifySummary is VerifyIndex's result.
type VerifySummary struct {
	Indexed int `json:"indexed"`
	Changed int `json:"changed"`
	Missing int `json:"missing"`
	Removed int `json:"removed"`

	ChangedPaths []string `json:"changed_paths,omitempty"`
	MissingPaths []string `json:"missing_paths,omitempty"`
}

// Stats is stats()'s result: the IndexMetadata snapshot plus the breakdowns
// teacher's ProcessingStats exposes, generalized to the richer Chunk model.
type Stats struct {
	EmbedModelID  string `json:"embed_model_id"`
	EmbedProvider string `json:"embed_provider"`
	EmbedDim      int    `json:"embed_dim"`
	SchemaVersion string `json:"schema_version"`
	Files         int    `json:"files"`
	TotalChunks   int    `json:"total_chunks"`

	ChunksByLanguage   map[string]int `json:"chunks_by_language"`
	ChunksBySymbolType map[string]int `json:"chunks_by_symbol_type"`

	LockHeld     bool   `json:"lock_held"`
	LockHolder   string `json:"lock_holder,omitempty"`
}

const maxReportedPaths = 50

func capPaths(paths []string) []string {
	if len(paths) <= maxReportedPaths {
		return paths
	}
	return paths[:maxReportedPaths]
}
