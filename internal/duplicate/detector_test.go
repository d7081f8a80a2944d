package duplicate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/lang"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

type fakeStore struct {
	chunks []chunk.Chunk
}

func (f *fakeStore) IterateChunks(ctx context.Context, filter *vectorstore.Filter, visit func(chunk.Chunk) error) error {
	for _, c := range f.chunks {
		if err := visit(c); err != nil {
			return err
		}
	}
	return nil
}

func vec(fill float32, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func baseChunk(id, file string, embedding []float32) chunk.Chunk {
	return chunk.Chunk{
		ID:         id,
		File:       file,
		StartLine:  1,
		EndLine:    15,
		Content:    "func doWork(x int) int {\n    total := 0\n    for i := 0; i < x; i++ {\n        total += i\n    }\n    return total\n}",
		Language:   chunk.LanguageRust,
		SymbolName: "doWork",
		SymbolType: chunk.SymbolFunction,
		IsExported: true,
		Complexity: 3,
		Embedding:  embedding,
	}
}

func TestDetectFindsExactDuplicateAcrossFiles(t *testing.T) {
	store := &fakeStore{chunks: []chunk.Chunk{
		baseChunk("a#1-15#doWork", "a.rs", vec(1.0, 8)),
		baseChunk("b#1-15#doWork", "b.rs", vec(1.0, 8)),
	}}
	d := New(store, lang.Default(), nil)

	result, err := d.Detect(context.Background(), Params{})
	require.NoError(t, err)
	require.Len(t, result.Duplicates, 1)
	group := result.Duplicates[0]
	require.Equal(t, LevelExact, group.Level)
	require.Len(t, group.Instances, 2)
	require.Equal(t, 2, group.FilesAffected)
}

func TestDetectRespectsMinLines(t *testing.T) {
	short := baseChunk("a#1-3#f", "a.rs", vec(1.0, 8))
	short.StartLine, short.EndLine = 1, 3
	other := baseChunk("b#1-3#f", "b.rs", vec(1.0, 8))
	other.StartLine, other.EndLine = 1, 3

	store := &fakeStore{chunks: []chunk.Chunk{short, other}}
	d := New(store, lang.Default(), nil)

	result, err := d.Detect(context.Background(), Params{MinLines: 10})
	require.NoError(t, err)
	require.Empty(t, result.Duplicates)
}

func TestDetectCrossFileOnlyRejectsSingleFileGroup(t *testing.T) {
	a := baseChunk("a#1-15#f1", "a.rs", vec(1.0, 8))
	b := baseChunk("a#20-35#f2", "a.rs", vec(1.0, 8))
	b.StartLine, b.EndLine = 20, 35

	store := &fakeStore{chunks: []chunk.Chunk{a, b}}
	d := New(store, lang.Default(), nil)

	result, err := d.Detect(context.Background(), Params{CrossFileOnly: true})
	require.NoError(t, err)
	require.Empty(t, result.Duplicates)
}

func TestDetectIgnoreTestsRejectsAllTestGroup(t *testing.T) {
	a := baseChunk("a#1-15#f", "a_test.rs", vec(1.0, 8))
	b := baseChunk("b#1-15#f", "b_test.rs", vec(1.0, 8))

	store := &fakeStore{chunks: []chunk.Chunk{a, b}}
	d := New(store, lang.Default(), nil)

	result, err := d.Detect(context.Background(), Params{IgnoreTests: true})
	require.NoError(t, err)
	require.Empty(t, result.Duplicates)
}

func TestDetectDissimilarChunksAreNotGrouped(t *testing.T) {
	a := baseChunk("a#1-15#f", "a.rs", vec(1.0, 8))
	b := baseChunk("b#1-15#g", "b.rs", vec(-1.0, 8))

	store := &fakeStore{chunks: []chunk.Chunk{a, b}}
	d := New(store, lang.Default(), nil)

	result, err := d.Detect(context.Background(), Params{})
	require.NoError(t, err)
	require.Empty(t, result.Duplicates)
}

func TestDetectEstimatedSavingsAndScore(t *testing.T) {
	a := baseChunk("a#1-15#f", "a.rs", vec(1.0, 8))
	b := baseChunk("b#1-15#f", "b.rs", vec(1.0, 8))

	store := &fakeStore{chunks: []chunk.Chunk{a, b}}
	d := New(store, lang.Default(), nil)

	rankByImpact := true
	result, err := d.Detect(context.Background(), Params{RankByImpact: &rankByImpact})
	require.NoError(t, err)
	require.Len(t, result.Duplicates, 1)
	g := result.Duplicates[0]
	require.Equal(t, 15, g.EstimatedSavings)
	require.Greater(t, g.Score, 0.0)
}

func TestNormalizeIdentifiersPreservesReservedWordsAndLiterals(t *testing.T) {
	content := `func add(total int) int {
    return total + 1
}`
	reserved := map[string]bool{"func": true, "return": true, "int": true}
	normalized := normalizeIdentifiers(content, reserved)
	require.Contains(t, normalized, "func")
	require.Contains(t, normalized, "return")
	require.NotContains(t, normalized, "total")
	require.NotContains(t, normalized, "add")
}

func TestNormalizeIdentifiersKeepsStringLiteralsIntact(t *testing.T) {
	content := `msg := "totalCount"`
	normalized := normalizeIdentifiers(content, map[string]bool{})
	require.Contains(t, normalized, `"totalCount"`)
}
