package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/chunk"
)

func testStore(t *testing.T, dim int) *Store {
	t.Helper()
	s, err := Open(":memory:", dim)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func vec(dim int, fill float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func sampleChunk(id, file string, embedding []float32) chunk.Chunk {
	return chunk.Chunk{
		ID:          id,
		File:        file,
		StartLine:   1,
		EndLine:     10,
		Content:     "func Foo() {}",
		ContentHash: "hash-" + id,
		FileHash:    "filehash-" + file,
		Language:    chunk.LanguageRust,
		SymbolName:  "Foo",
		SymbolType:  chunk.SymbolFunction,
		IsExported:  true,
		Decorators:  []string{"test"},
		Complexity:  1,
		Imports:     []string{"std::fmt"},
		Embedding:   embedding,
	}
}

func TestUpsertAndLoadChunk(t *testing.T) {
	s := testStore(t, 4)
	ctx := context.Background()

	c := sampleChunk("c1", "a.rs", vec(4, 0.5))
	require.NoError(t, s.UpsertChunks(ctx, []chunk.Chunk{c}))

	loaded, ok, err := s.loadChunk(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Foo", loaded.SymbolName)
	require.Equal(t, []string{"test"}, loaded.Decorators)
	require.Equal(t, []string{"std::fmt"}, loaded.Imports)
	require.Equal(t, vec(4, 0.5), loaded.Embedding)
}

func TestUpsertChunksIsIdempotent(t *testing.T) {
	s := testStore(t, 4)
	ctx := context.Background()

	c := sampleChunk("c1", "a.rs", vec(4, 0.1))
	require.NoError(t, s.UpsertChunks(ctx, []chunk.Chunk{c}))

	c.Content = "func Foo() { return 1 }"
	c.Embedding = vec(4, 0.9)
	require.NoError(t, s.UpsertChunks(ctx, []chunk.Chunk{c}))

	loaded, ok, err := s.loadChunk(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "func Foo() { return 1 }", loaded.Content)
	require.Equal(t, vec(4, 0.9), loaded.Embedding)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM chunks WHERE chunk_id = ?", "c1").Scan(&count))
	require.Equal(t, 1, count)
}

func TestUpsertChunksRejectsWrongDimension(t *testing.T) {
	s := testStore(t, 4)
	c := sampleChunk("c1", "a.rs", vec(3, 0.1))
	err := s.UpsertChunks(context.Background(), []chunk.Chunk{c})
	require.Error(t, err)
}

func TestDeleteByFileRemovesChunkAndVector(t *testing.T) {
	s := testStore(t, 4)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunks(ctx, []chunk.Chunk{
		sampleChunk("c1", "a.rs", vec(4, 0.1)),
		sampleChunk("c2", "b.rs", vec(4, 0.2)),
	}))

	require.NoError(t, s.DeleteByFile(ctx, "a.rs"))

	_, ok, err := s.loadChunk(ctx, "c1")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = s.loadChunk(ctx, "c2")
	require.NoError(t, err)
	require.True(t, ok)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM chunks_vec WHERE chunk_id = ?", "c1").Scan(&count))
	require.Equal(t, 0, count)
}

func TestSearchReturnsNearestByDistance(t *testing.T) {
	s := testStore(t, 4)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunks(ctx, []chunk.Chunk{
		sampleChunk("near", "a.rs", []float32{1, 0, 0, 0}),
		sampleChunk("far", "b.rs", []float32{0, 1, 0, 0}),
	}))

	results, err := s.Search(ctx, []float32{1, 0, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "near", results[0].Chunk.ID)
	require.Less(t, results[0].Distance, results[1].Distance)
}

func TestSearchAppliesStructuralFilter(t *testing.T) {
	s := testStore(t, 4)
	ctx := context.Background()

	a := sampleChunk("c1", "a.rs", []float32{1, 0, 0, 0})
	a.Language = chunk.LanguageRust
	b := sampleChunk("c2", "b.py", []float32{1, 0, 0, 0})
	b.Language = chunk.LanguagePython
	require.NoError(t, s.UpsertChunks(ctx, []chunk.Chunk{a, b}))

	f := Leaf("language", OpEquals, "python")
	results, err := s.Search(ctx, []float32{1, 0, 0, 0}, 10, &f)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "c2", results[0].Chunk.ID)
}

func TestSearchRejectsDimensionMismatch(t *testing.T) {
	s := testStore(t, 4)
	_, err := s.Search(context.Background(), []float32{1, 2, 3}, 5, nil)
	require.Error(t, err)
}

func TestIterateChunksVisitsAllMatching(t *testing.T) {
	s := testStore(t, 4)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunks(ctx, []chunk.Chunk{
		sampleChunk("c1", "a.rs", vec(4, 0.1)),
		sampleChunk("c2", "b.rs", vec(4, 0.2)),
	}))

	var seen []string
	err := s.IterateChunks(ctx, nil, func(c chunk.Chunk) error {
		seen = append(seen, c.ID)
		require.NotNil(t, c.Embedding)
		return nil
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c1", "c2"}, seen)
}

func TestIterateChunksWithFilter(t *testing.T) {
	s := testStore(t, 4)
	ctx := context.Background()

	a := sampleChunk("c1", "a.rs", vec(4, 0.1))
	a.IsExported = true
	b := sampleChunk("c2", "b.rs", vec(4, 0.2))
	b.IsExported = false
	require.NoError(t, s.UpsertChunks(ctx, []chunk.Chunk{a, b}))

	f := Leaf("is_exported", OpEquals, 1)
	var seen []string
	err := s.IterateChunks(ctx, &f, func(c chunk.Chunk) error {
		seen = append(seen, c.ID)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"c1"}, seen)
}
