package config

import "fmt"

// Validate checks a Config for internally-consistent values, the way the
// teacher validates before unmarshalled config reaches the rest of the system.
func Validate(cfg *Config) error {
	if cfg.Embedding.Provider != "local" && cfg.Embedding.Provider != "mock" {
		return fmt.Errorf("embedding.provider must be 'local' or 'mock', got %q", cfg.Embedding.Provider)
	}
	if cfg.Chunking.MaxFileBytes <= 0 {
		return fmt.Errorf("chunking.max_file_bytes must be positive, got %d", cfg.Chunking.MaxFileBytes)
	}
	if cfg.Indexing.EmbedBatchSize <= 0 {
		return fmt.Errorf("indexing.embed_batch_size must be positive, got %d", cfg.Indexing.EmbedBatchSize)
	}
	if cfg.Indexing.EmbedConcurrency <= 0 {
		return fmt.Errorf("indexing.embed_concurrency must be positive, got %d", cfg.Indexing.EmbedConcurrency)
	}
	if cfg.Indexing.ParseWorkerCount < 0 {
		return fmt.Errorf("indexing.parse_worker_count must be >= 0, got %d", cfg.Indexing.ParseWorkerCount)
	}
	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %s", cfg.Watch.Interval)
	}
	return nil
}
