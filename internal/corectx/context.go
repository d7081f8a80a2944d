// Package corectx builds the one explicit context value each core operation
// needs for a single indexing/search run against one repository root,
// replacing scattered package-level singletons.
package corectx

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/embed"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

// vectorStoreFileName is the sqlite3 database file inside the index
// directory holding both the chunks table and the vec0 virtual table.
const vectorStoreFileName = "index.db"

// Context bundles everything one core operation needs: the repository root,
// its resolved configuration, a logger, the embedding provider, and the
// vector store handle.
type Context struct {
	Root     string
	IndexDir string
	Config   *config.Config
	Logger   *slog.Logger
	Provider embed.Provider
	Store    *vectorstore.Store
}

// Build resolves configuration, constructs the embedding provider, and opens
// the vector store for root. Callers must call Close when done.
func Build(root string) (*Context, error) {
	cfg, err := config.LoadFromDir(root)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	provider, err := embed.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	indexDir := filepath.Join(root, config.IndexDirName)
	if err := os.MkdirAll(indexDir, 0755); err != nil {
		return nil, err
	}

	store, err := vectorstore.Open(filepath.Join(indexDir, vectorStoreFileName), provider.Dim())
	if err != nil {
		return nil, err
	}

	return &Context{
		Root:     root,
		IndexDir: indexDir,
		Config:   cfg,
		Logger:   logger,
		Provider: provider,
		Store:    store,
	}, nil
}

// Close releases resources held by the context, currently just the store.
func (c *Context) Close() error {
	return c.Store.Close()
}
