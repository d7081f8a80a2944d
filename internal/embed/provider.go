// Package embed defines the embedding provider interface contract and the
// providers that implement it: a deterministic mock for tests and a local
// HTTP-backed provider for a pluggable external embedding service.
package embed

import "context"

// Provider is the embedding contract. The provider used at indexing time is
// authoritative for the index's lifetime; query-time providers must match
// ModelID/Dim or the query fails with errs.ModelMismatch.
type Provider interface {
	// Embed maps texts to fixed-dimension vectors. Deterministic for a fixed
	// model version.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// ModelID identifies the model version producing these embeddings.
	ModelID() string
	// Dim returns the embedding dimensionality.
	Dim() int
	// ProviderName identifies the backend, e.g. "local" or "mock".
	ProviderName() string
}

// Reranker is an optional capability; its absence means rerank is a no-op.
// A Provider that also implements Reranker is used by the search pipeline's
// rerank stage.
type Reranker interface {
	// Rerank scores each candidate's relevance to query, same order as input.
	Rerank(ctx context.Context, query string, candidates []string) ([]float32, error)
}
