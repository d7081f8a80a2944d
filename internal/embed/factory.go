package embed

import (
	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/errs"
)

// defaultMockDim is BAAI/bge-small-en-v1.5's fixed output dimension, the
// default model in config.Default(); used for the mock provider too since it
// doesn't need to match any particular model.
const defaultMockDim = 384

// NewProvider builds a Provider from the resolved embedding config.
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalProvider(cfg.Endpoint, cfg.Model, defaultMockDim), nil
	case "mock":
		return NewMockProvider(defaultMockDim), nil
	default:
		return nil, errs.New(errs.InvalidInput, "unsupported embedding provider: "+cfg.Provider)
	}
}
