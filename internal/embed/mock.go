package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// MockProvider generates deterministic embeddings from a text's hash, for
// tests and for the "mock" config.Embedding.Provider.
type MockProvider struct {
	mu         sync.Mutex
	dim        int
	embedError error
}

// NewMockProvider builds a MockProvider with the given dimensionality.
func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 384
	}
	return &MockProvider{dim: dim}
}

// SetEmbedError configures the mock to fail on the next Embed calls.
func (p *MockProvider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedError = err
}

func (p *MockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.embedError != nil {
		return nil, p.embedError
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashToVector(text, p.dim)
	}
	return out, nil
}

func (p *MockProvider) ModelID() string      { return "mock-deterministic-v1" }
func (p *MockProvider) Dim() int             { return p.dim }
func (p *MockProvider) ProviderName() string { return "mock" }

func hashToVector(text string, dim int) []float32 {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, dim)
	for j := 0; j < dim; j++ {
		offset := (j * 4) % len(hash)
		val := binary.BigEndian.Uint32(hash[offset : offset+4])
		vec[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
	}
	return vec
}
