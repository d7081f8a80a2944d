package chunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/lang"
)

func newTestChunker() *Chunker {
	return New(lang.Default(), 0, nil)
}

func TestChunkFileEmptyProducesNoChunks(t *testing.T) {
	c := newTestChunker()
	require.Empty(t, c.ChunkFile("empty.ts", nil))
}

func TestChunkFileOverCeilingIsSkipped(t *testing.T) {
	c := New(lang.Default(), 10, nil)
	chunks := c.ChunkFile("big.ts", []byte("export function f() { return 1; }"))
	require.Empty(t, chunks)
}

func TestChunkFileEmitsClassAndMethodChunks(t *testing.T) {
	c := newTestChunker()
	source := `export class Widget {
  render(): void {
    console.log("hi");
  }
}
`
	chunks := c.ChunkFile("src/widget.ts", []byte(source))
	require.Len(t, chunks, 2)

	var class, method *Chunk
	for i := range chunks {
		switch chunks[i].SymbolType {
		case SymbolClass:
			class = &chunks[i]
		case SymbolMethod:
			method = &chunks[i]
		}
	}
	require.NotNil(t, class)
	require.NotNil(t, method)
	require.Equal(t, "Widget", class.SymbolName)
	require.True(t, class.IsExported)
	require.Equal(t, "render", method.SymbolName)
	require.Equal(t, "Widget", method.ParentScope)
	require.Contains(t, class.Content, "render")
}

func TestChunkFileUnsupportedExtensionProducesNoChunks(t *testing.T) {
	c := newTestChunker()
	require.Empty(t, c.ChunkFile("README.md", []byte("# hello")))
}

func TestChunkFileIsDeterministic(t *testing.T) {
	c := newTestChunker()
	source := []byte(`def greet(name):
    return f"hello {name}"
`)
	first := c.ChunkFile("greet.py", source)
	second := c.ChunkFile("greet.py", source)
	require.Equal(t, first, second)
}
