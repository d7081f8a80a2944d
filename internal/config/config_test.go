package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Provider = "openai"
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsNonPositiveBatchSize(t *testing.T) {
	cfg := Default()
	cfg.Indexing.EmbedBatchSize = 0
	require.Error(t, Validate(cfg))
}

func TestLoadFromDirUsesDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Default().Embedding.Model, cfg.Embedding.Model)
}
