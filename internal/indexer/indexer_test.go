package indexer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/embed"
	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/indexmeta"
	"github.com/codelens-dev/codelens/internal/lang"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

func testIndexer(t *testing.T, root string) (*Indexer, *vectorstore.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Include = []string{"**/*.rs"}
	provider := embed.NewMockProvider(32)
	store, err := vectorstore.Open(":memory:", provider.Dim())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ix := New(root, cfg, lang.Default(), provider, store, logger)
	return ix, store
}

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

const sampleRust = `pub fn add(a: i32, b: i32) -> i32 {
    a + b
}

pub struct Point {
    x: i32,
    y: i32,
}
`

func TestIndexFullProducesChunksAndMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.rs", sampleRust)

	ix, _ := testIndexer(t, root)
	summary, err := ix.IndexFull(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Files)
	require.Greater(t, summary.Chunks, 0)
	require.Equal(t, 0, summary.Errors)

	stats, err := ix.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, summary.Chunks, stats.TotalChunks)
	require.Equal(t, 1, stats.Files)
}

func TestIndexIncrementalSkipsUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.rs", sampleRust)

	ix, _ := testIndexer(t, root)
	_, err := ix.IndexFull(context.Background())
	require.NoError(t, err)

	summary, err := ix.IndexIncremental(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, summary.Files)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, "incremental", summary.Mode)
}

func TestIndexIncrementalPicksUpModifiedAndRemoved(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.rs", sampleRust)
	writeFile(t, root, "other.rs", "pub fn noop() {}\n")

	ix, _ := testIndexer(t, root)
	_, err := ix.IndexFull(context.Background())
	require.NoError(t, err)

	writeFile(t, root, "lib.rs", sampleRust+"\npub fn extra() {}\n")
	require.NoError(t, os.Remove(filepath.Join(root, "other.rs")))

	summary, err := ix.IndexIncremental(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Files)
	require.Equal(t, 1, summary.Removed)
}

func TestIndexIncrementalWithoutFullIndexFailsWithNoIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.rs", sampleRust)

	ix, _ := testIndexer(t, root)
	_, err := ix.IndexIncremental(context.Background())
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.NoIndex))
}

func TestVerifyIndexReportsChangedAndMissing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.rs", sampleRust)

	ix, _ := testIndexer(t, root)
	_, err := ix.IndexFull(context.Background())
	require.NoError(t, err)

	writeFile(t, root, "lib.rs", sampleRust+"\npub fn extra() {}\n")

	summary, err := ix.VerifyIndex(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Indexed)
	require.Equal(t, 1, summary.Changed)
	require.Equal(t, 0, summary.Missing)
}

func TestDeleteIndexClearsChunksAndMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.rs", sampleRust)

	ix, store := testIndexer(t, root)
	_, err := ix.IndexFull(context.Background())
	require.NoError(t, err)

	require.NoError(t, ix.DeleteIndex(context.Background()))

	_, ok, err := indexmeta.Load(ix.IndexDir())
	require.NoError(t, err)
	require.False(t, ok)

	var remaining int
	err = store.IterateChunks(context.Background(), nil, func(c chunk.Chunk) error {
		remaining++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 0, remaining)
}

func TestModelMismatchOnIncrementalIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.rs", sampleRust)

	ix, store := testIndexer(t, root)
	_, err := ix.IndexFull(context.Background())
	require.NoError(t, err)

	otherProvider := embed.NewMockProvider(32)
	cfg := config.Default()
	cfg.Paths.Include = []string{"**/*.rs"}
	ix2 := New(root, cfg, lang.Default(), fakeNamedProvider{otherProvider}, store, nil)

	_, err = ix2.IndexIncremental(context.Background())
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ModelMismatch))
}

type fakeNamedProvider struct {
	*embed.MockProvider
}

func (f fakeNamedProvider) ModelID() string { return "different-model" }
