package indexmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/errs"
)

func TestLoadMissingReportsNotOK(t *testing.T) {
	m, ok, err := Load(t.TempDir())
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, m)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	m := New("mock-deterministic-v1", "mock", 384)
	m.FileHashes["a.go"] = FileEntry{FileHash: "abc", ChunkIDs: []string{"a.go#1-3"}}

	require.NoError(t, m.Save(dir))

	loaded, ok, err := Load(dir)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "mock-deterministic-v1", loaded.EmbedModelID)
	require.Equal(t, 384, loaded.EmbedDim)
	require.Equal(t, FileEntry{FileHash: "abc", ChunkIDs: []string{"a.go#1-3"}}, loaded.FileHashes["a.go"])
}

func TestLoadCorruptFileIsIndexCorrupted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("not json"), 0644))

	_, _, err := Load(dir)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.IndexCorrupted))
}

func TestCheckModelRejectsMismatch(t *testing.T) {
	m := New("model-a", "mock", 384)

	require.NoError(t, m.CheckModel("model-a", 384))

	err := m.CheckModel("model-b", 384)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ModelMismatch))

	err = m.CheckModel("model-a", 768)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ModelMismatch))
}

func TestCheckSchemaRejectsMismatch(t *testing.T) {
	m := New("model-a", "mock", 384)
	require.NoError(t, m.CheckSchema())

	m.SchemaVersion = "0"
	err := m.CheckSchema()
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.SchemaMismatch))
}

func TestDeleteRemovesFileAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	m := New("model-a", "mock", 384)
	require.NoError(t, m.Save(dir))

	require.NoError(t, Delete(dir))
	_, ok, err := Load(dir)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, Delete(dir))
}
