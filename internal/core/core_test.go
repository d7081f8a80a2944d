package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/duplicate"
	"github.com/codelens-dev/codelens/internal/indexer"
	"github.com/codelens-dev/codelens/internal/search"
)

const sampleSource = `pub fn add(a: i32, b: i32) -> i32 {
    a + b
}

pub fn subtract(a: i32, b: i32) -> i32 {
    a - b
}
`

func setupRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.rs"), []byte(sampleSource), 0644))

	configDir := filepath.Join(root, config.IndexDirName)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte("embedding:\n  provider: mock\n"), 0644))
	return root
}

func TestCoreIndexFullThenSearchThenDeleteIndex(t *testing.T) {
	root := setupRepo(t)
	ctx := context.Background()

	summary, err := IndexFull(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Files)
	require.Greater(t, summary.Chunks, 0)

	results, searchSummary, err := Search(ctx, root, search.Params{Query: "add two numbers"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, 1, searchSummary.Indexed)

	verify, err := VerifyIndex(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 0, verify.Changed)
	require.Equal(t, 0, verify.Missing)

	stats, err := Stats(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Files)

	require.NoError(t, DeleteIndex(ctx, root))

	_, err = Stats(ctx, root)
	require.Error(t, err)
}

func TestCoreIndexIncrementalSkipsUnchanged(t *testing.T) {
	root := setupRepo(t)
	ctx := context.Background()

	_, err := IndexFull(ctx, root)
	require.NoError(t, err)

	incSummary, err := IndexIncremental(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 0, incSummary.Files)
	require.Equal(t, 1, incSummary.Skipped)
}

func TestCoreDetectDuplicates(t *testing.T) {
	root := setupRepo(t)
	ctx := context.Background()

	_, err := IndexFull(ctx, root)
	require.NoError(t, err)

	result, err := DetectDuplicates(ctx, root, duplicate.Params{MinLines: 1})
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestCoreStartWatchStopsCleanly(t *testing.T) {
	root := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := IndexFull(ctx, root)
	require.NoError(t, err)

	handle, err := StartWatch(ctx, root, 50*time.Millisecond, func(*indexer.IncrementalSummary) {}, func(error) {})
	require.NoError(t, err)
	require.NoError(t, handle.Stop())
}
