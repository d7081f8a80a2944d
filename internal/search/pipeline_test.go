package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/embed"
	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/indexer"
	"github.com/codelens-dev/codelens/internal/lang"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

const sampleRust = `pub fn add(a: i32, b: i32) -> i32 {
    a + b
}

fn helper_internal() -> i32 {
    42
}

pub struct Point {
    x: i32,
    y: i32,
}
`

func testPipeline(t *testing.T) (root string, provider embed.Provider, store *vectorstore.Store, sp *Pipeline) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.rs"), []byte(sampleRust), 0644))

	cfg := config.Default()
	cfg.Paths.Include = []string{"**/*.rs"}
	provider = embed.NewMockProvider(16)
	var err error
	store, err = vectorstore.Open(":memory:", provider.Dim())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ix := indexer.New(root, cfg, lang.Default(), provider, store, nil)
	_, err = ix.IndexFull(context.Background())
	require.NoError(t, err)

	sp = New(root, provider, store, nil)
	return root, provider, store, sp
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	_, _, _, sp := testPipeline(t)
	_, _, err := sp.Search(context.Background(), Params{Query: "  "})
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.InvalidInput))
}

func TestSearchWithoutIndexFailsWithNoIndex(t *testing.T) {
	root := t.TempDir()
	provider := embed.NewMockProvider(16)
	store, err := vectorstore.Open(":memory:", provider.Dim())
	require.NoError(t, err)
	defer store.Close()

	sp := New(root, provider, store, nil)
	_, _, err = sp.Search(context.Background(), Params{Query: "add"})
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.NoIndex))
}

func TestSearchReturnsResults(t *testing.T) {
	_, _, _, sp := testPipeline(t)
	results, summary, err := sp.Search(context.Background(), Params{Query: "add two numbers", Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, len(results), summary.Matches)
	require.Equal(t, 1, summary.Indexed)
}

func TestSearchModelMismatch(t *testing.T) {
	root, _, store, _ := testPipeline(t)
	other := embed.NewMockProvider(16)
	sp := New(root, wrongModel{other}, store, nil)
	_, _, err := sp.Search(context.Background(), Params{Query: "add"})
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ModelMismatch))
}

func TestSearchInvalidPattern(t *testing.T) {
	root, provider, store, _ := testPipeline(t)
	sp := New(root, provider, store, nil)
	_, _, err := sp.Search(context.Background(), Params{Query: "add", Pattern: "("})
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.InvalidInput))
}

func TestSearchPatternScopesToMatchingLines(t *testing.T) {
	root, provider, store, _ := testPipeline(t)
	sp := New(root, provider, store, nil)
	results, _, err := sp.Search(context.Background(), Params{Query: "add", Pattern: `fn add`, Limit: 10, MaxPerFile: 10, MaxPerSymbol: 10})
	require.NoError(t, err)
	for _, r := range results {
		require.Equal(t, "add", r.SymbolName)
	}
}

func TestSearchMaxPerFileDedupCap(t *testing.T) {
	_, _, _, sp := testPipeline(t)
	results, _, err := sp.Search(context.Background(), Params{Query: "function", Limit: 10, MaxPerFile: 1})
	require.NoError(t, err)
	seen := make(map[string]int)
	for _, r := range results {
		seen[r.File]++
	}
	for _, count := range seen {
		require.LessOrEqual(t, count, 1)
	}
}

type wrongModel struct {
	*embed.MockProvider
}

func (w wrongModel) ModelID() string { return "not-the-indexed-model" }
