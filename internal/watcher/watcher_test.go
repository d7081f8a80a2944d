package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/embed"
	"github.com/codelens-dev/codelens/internal/indexer"
	"github.com/codelens-dev/codelens/internal/lang"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

func testSetup(t *testing.T) (root string, ix *indexer.Indexer) {
	t.Helper()
	root = t.TempDir()
	cfg := config.Default()
	cfg.Paths.Include = []string{"**/*.rs"}
	provider := embed.NewMockProvider(16)
	store, err := vectorstore.Open(":memory:", provider.Dim())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	registry := lang.Default()
	ix = indexer.New(root, cfg, registry, provider, store, nil)
	return root, ix
}

func TestWatcherTriggersRunOnFileChange(t *testing.T) {
	root, ix := testSetup(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.rs"), []byte("pub fn a() {}\n"), 0644))

	_, err := ix.IndexFull(context.Background())
	require.NoError(t, err)

	results := make(chan *indexer.IncrementalSummary, 4)
	errs := make(chan error, 4)

	w, err := New(root, ix, lang.Default(), 100*time.Millisecond, func(s *indexer.IncrementalSummary) {
		results <- s
	}, func(e error) {
		errs <- e
	}, nil)
	require.NoError(t, err)

	w.Start(context.Background())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.rs"), []byte("pub fn b() {}\n"), 0644))

	select {
	case s := <-results:
		require.Equal(t, 1, s.Files)
	case e := <-errs:
		t.Fatalf("unexpected error: %v", e)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher-triggered index run")
	}
}

func TestWatcherStopSucceedsAfterRun(t *testing.T) {
	root, ix := testSetup(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.rs"), []byte("pub fn a() {}\n"), 0644))
	_, err := ix.IndexFull(context.Background())
	require.NoError(t, err)

	done := make(chan struct{}, 1)
	w, err := New(root, ix, lang.Default(), 50*time.Millisecond, func(*indexer.IncrementalSummary) {
		done <- struct{}{}
	}, nil, nil)
	require.NoError(t, err)

	w.Start(context.Background())
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.rs"), []byte("pub fn c() {}\n"), 0644))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for run before stop")
	}

	require.NoError(t, w.Stop())
}
