package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `pub fn add(a: i32, b: i32) -> i32 {
    a + b
}

pub fn subtract(a: i32, b: i32) -> i32 {
    a - b
}
`

// setupRepo creates a temp repository with one source file and a config
// pinning the embedding provider to "mock" so commands never dial a real
// embedding server.
func setupRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.rs"), []byte(sampleSource), 0644))

	configDir := filepath.Join(root, ".codelens")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte("embedding:\n  provider: mock\n"), 0644))
	return root
}

// runCLI executes rootCmd with the given args, capturing cobra's own output
// (usage and error text); command results printed to os.Stdout are not
// captured.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmdHasAllSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"index", "search", "duplicates", "watch", "stats", "verify", "delete-index"} {
		assert.True(t, names[want], "expected subcommand %q to be registered", want)
	}
}

func TestIndexThenSearchThenDeleteIndexViaCLI(t *testing.T) {
	root := setupRepo(t)

	_, err := runCLI(t, "index", "--root", root, "--quiet")
	require.NoError(t, err)

	_, err = runCLI(t, "search", "add two numbers", "--root", root)
	require.NoError(t, err)

	_, err = runCLI(t, "stats", "--root", root)
	require.NoError(t, err)

	_, err = runCLI(t, "verify", "--root", root)
	require.NoError(t, err)

	_, err = runCLI(t, "delete-index", "--root", root)
	require.NoError(t, err)
}

func TestDuplicatesCommandRunsAgainstIndexedRepo(t *testing.T) {
	root := setupRepo(t)

	_, err := runCLI(t, "index", "--root", root, "--quiet")
	require.NoError(t, err)

	_, err = runCLI(t, "duplicates", "--root", root, "--min-lines", "1")
	require.NoError(t, err)
}

func TestSearchWithoutIndexReturnsError(t *testing.T) {
	root := setupRepo(t)

	_, err := runCLI(t, "search", "anything", "--root", root)
	assert.Error(t, err)
}
