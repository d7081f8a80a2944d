package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
}

func TestDiscoverAppliesBlacklistAndIncludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts")
	writeFile(t, root, "node_modules/dep/b.ts")
	writeFile(t, root, "src/notes.md")
	writeFile(t, root, ".git/HEAD")

	fd, err := New(root, []string{"**/*.ts"}, nil, nil)
	require.NoError(t, err)

	files, err := fd.Discover()
	require.NoError(t, err)
	require.Equal(t, []string{"src/a.ts"}, files)
}

func TestDiscoverExtraExcludeAndWhitelistOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "gen/a.ts")
	writeFile(t, root, "gen/keep.ts")

	fd, err := New(root, []string{"**/*.ts"}, []string{"gen/**"}, []string{"gen/keep.ts"})
	require.NoError(t, err)

	files, err := fd.Discover()
	require.NoError(t, err)
	require.Equal(t, []string{"gen/keep.ts"}, files)
}

func TestDiscoverFailsOnMissingRoot(t *testing.T) {
	fd, err := New(filepath.Join(t.TempDir(), "missing"), []string{"**/*.ts"}, nil, nil)
	require.NoError(t, err)

	_, err = fd.Discover()
	require.Error(t, err)
}
