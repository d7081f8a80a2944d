package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// IndexDirName is the reserved directory name under a repository root where
// the index, its metadata, and the config file live.
const IndexDirName = ".codelens"

// Loader loads configuration for a given repository root.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader for the given repository root.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
//  1. Environment variables (CODELENS_*)
//  2. Config file (.codelens/config.yml or .codelens/config.yaml)
//  3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, IndexDirName)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CODELENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnv(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("embedding.provider")
	v.BindEnv("embedding.model")
	v.BindEnv("embedding.endpoint")
	v.BindEnv("indexing.embed_batch_size")
	v.BindEnv("indexing.embed_concurrency")
	v.BindEnv("indexing.parse_worker_count")
	v.BindEnv("chunking.max_file_bytes")
	v.BindEnv("watch.interval")
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.endpoint", d.Embedding.Endpoint)

	v.SetDefault("paths.include", d.Paths.Include)
	v.SetDefault("paths.exclude", d.Paths.Exclude)
	v.SetDefault("paths.whitelist", d.Paths.Whitelist)

	v.SetDefault("chunking.max_file_bytes", d.Chunking.MaxFileBytes)

	v.SetDefault("indexing.embed_batch_size", d.Indexing.EmbedBatchSize)
	v.SetDefault("indexing.embed_concurrency", d.Indexing.EmbedConcurrency)
	v.SetDefault("indexing.parse_worker_count", d.Indexing.ParseWorkerCount)

	v.SetDefault("watch.interval", d.Watch.Interval)
}

// LoadFromDir is a convenience function combining NewLoader and Load.
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
