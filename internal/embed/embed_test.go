package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/config"
)

func TestMockProviderIsDeterministic(t *testing.T) {
	p := NewMockProvider(64)
	ctx := context.Background()

	first, err := p.Embed(ctx, []string{"func foo() {}"})
	require.NoError(t, err)
	second, err := p.Embed(ctx, []string{"func foo() {}"})
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, first[0], 64)
}

func TestMockProviderDistinctTextsDiffer(t *testing.T) {
	p := NewMockProvider(64)
	ctx := context.Background()

	vectors, err := p.Embed(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)
	require.NotEqual(t, vectors[0], vectors[1])
}

func TestMockProviderPropagatesConfiguredError(t *testing.T) {
	p := NewMockProvider(64)
	p.SetEmbedError(errors.New("boom"))

	_, err := p.Embed(context.Background(), []string{"x"})
	require.Error(t, err)
}

func TestEmbedBatchedPreservesOrder(t *testing.T) {
	p := NewMockProvider(32)
	texts := []string{"a", "b", "c", "d", "e"}

	results, err := EmbedBatched(context.Background(), p, texts, 2, 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 5)

	direct, err := p.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Equal(t, direct, results)
}

func TestEmbedBatchedEmptyInput(t *testing.T) {
	p := NewMockProvider(32)
	results, err := EmbedBatched(context.Background(), p, nil, 2, 3, nil)
	require.NoError(t, err)
	require.Nil(t, results)
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	_, err := NewProvider(config.EmbeddingConfig{Provider: "openai"})
	require.Error(t, err)
}

func TestNewProviderBuildsMock(t *testing.T) {
	p, err := NewProvider(config.EmbeddingConfig{Provider: "mock"})
	require.NoError(t, err)
	require.Equal(t, "mock", p.ProviderName())
}
