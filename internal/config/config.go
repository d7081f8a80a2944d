// Package config loads and validates per-repository configuration.
package config

import "time"

// Config is the complete configuration for one repository's index, loaded from
// .codelens/config.yml with environment variable overrides.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Chunking  ChunkingConfig  `yaml:"chunking" mapstructure:"chunking"`
	Indexing  IndexingConfig  `yaml:"indexing" mapstructure:"indexing"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
}

// EmbeddingConfig configures the embedding provider used at indexing time.
type EmbeddingConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // "local" or "mock"
	Model    string `yaml:"model" mapstructure:"model"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for code files
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // extra exclude glob patterns
	Whitelist []string `yaml:"whitelist" mapstructure:"whitelist"` // overrides exclude matches
}

// ChunkingConfig bounds the chunker's behavior.
type ChunkingConfig struct {
	MaxFileBytes int `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
}

// IndexingConfig tunes the indexer's concurrency and batching.
type IndexingConfig struct {
	EmbedBatchSize        int `yaml:"embed_batch_size" mapstructure:"embed_batch_size"`
	EmbedConcurrency      int `yaml:"embed_concurrency" mapstructure:"embed_concurrency"`
	ParseWorkerCount      int `yaml:"parse_worker_count" mapstructure:"parse_worker_count"`
}

// WatchConfig tunes IndexWatcher's coalescing behavior.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider: "local",
			Model:    "BAAI/bge-small-en-v1.5",
			Endpoint: "http://127.0.0.1:8121/embed",
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
				"**/*.py", "**/*.rs", "**/*.rb", "**/*.java",
				"**/*.c", "**/*.h", "**/*.php",
			},
			Exclude:   []string{},
			Whitelist: []string{},
		},
		Chunking: ChunkingConfig{
			MaxFileBytes: 1 << 20, // 1 MiB
		},
		Indexing: IndexingConfig{
			EmbedBatchSize:   64,
			EmbedConcurrency: 4,
			ParseWorkerCount: 0, // 0 means runtime.NumCPU()
		},
		Watch: WatchConfig{
			Interval: 60 * time.Second,
		},
	}
}
