// Package chunk implements the language-aware chunker: given a file's bytes
// it produces symbol-aligned Chunks enriched with structural metadata.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens-dev/codelens/internal/lang"
)

// MaxFileBytes is the default per-file byte ceiling above which Chunker skips
// a file with a logged warning rather than chunking it. Callers normally
// pass config.ChunkingConfig.MaxFileBytes instead.
const MaxFileBytes = 1 << 20

// Chunker extracts Chunks from source files via the language registry.
type Chunker struct {
	registry     *lang.Registry
	maxFileBytes int
	logger       *slog.Logger
}

// New builds a Chunker. logger defaults to slog.Default() when nil.
func New(registry *lang.Registry, maxFileBytes int, logger *slog.Logger) *Chunker {
	if logger == nil {
		logger = slog.Default()
	}
	if maxFileBytes <= 0 {
		maxFileBytes = MaxFileBytes
	}
	return &Chunker{registry: registry, maxFileBytes: maxFileBytes, logger: logger}
}

// ChunkFile parses file's content and returns its chunks. file is the
// repository-relative, forward-slash path stored on every Chunk.
func (c *Chunker) ChunkFile(file string, content []byte) []Chunk {
	if len(content) == 0 {
		return nil
	}
	if len(content) > c.maxFileBytes {
		c.logger.Warn("skipping file over byte ceiling", "file", file, "bytes", len(content), "ceiling", c.maxFileBytes)
		return nil
	}

	fileHash := hashBytes(content)

	support, ok := c.registry.Lookup(file)
	if !ok {
		return nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(support.Grammar())

	tree := parser.Parse(content, nil)
	if tree == nil {
		return []Chunk{c.wholeFileFallback(file, content, fileHash, support.ID())}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		c.logger.Warn("parse produced errors, falling back to whole-file chunk", "file", file)
		return []Chunk{c.wholeFileFallback(file, content, fileHash, support.ID())}
	}

	imports := support.ExtractImports(root, content)

	var chunks []Chunk
	walk(root, func(node *sitter.Node) bool {
		if !support.IsChunkBoundary(node) {
			return true
		}

		md := support.ExtractMetadata(node, content, imports)
		start := int(node.StartPosition().Row) + 1
		end := int(node.EndPosition().Row) + 1
		body := trimTrailingBlankLines(string(content[node.StartByte():node.EndByte()]))

		chunks = append(chunks, Chunk{
			ID:               BuildID(file, start, end, md.SymbolName),
			File:             file,
			StartLine:        start,
			EndLine:          end,
			Content:          body,
			ContentHash:      hashBytes([]byte(normalizeNewlines(body))),
			FileHash:         fileHash,
			Language:         Language(support.ID()),
			SymbolName:       md.SymbolName,
			SymbolType:       SymbolType(md.SymbolType),
			Variant:          string(md.Variant),
			IsExported:       md.IsExported,
			IsAsync:          md.IsAsync,
			IsStatic:         md.IsStatic,
			IsAbstract:       md.IsAbstract,
			Decorators:       md.Decorators,
			Complexity:       support.CalculateComplexity(node),
			HasDocumentation: md.HasDocumentation,
			ParentScope:      md.ParentScope,
			Imports:          md.Imports,
		})
		// Keep walking into boundary nodes: nested methods inside a class
		// emit their own chunks in addition to the class's.
		return true
	})

	return chunks
}

func (c *Chunker) wholeFileFallback(file string, content []byte, fileHash, language string) Chunk {
	body := trimTrailingBlankLines(string(content))
	lineCount := strings.Count(body, "\n") + 1
	return Chunk{
		ID:          BuildID(file, 1, lineCount, ""),
		File:        file,
		StartLine:   1,
		EndLine:     lineCount,
		Content:     body,
		ContentHash: hashBytes([]byte(normalizeNewlines(body))),
		FileHash:    fileHash,
		Language:    Language(language),
		SymbolType:  SymbolModule,
	}
}

func walk(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(uint(i)), visitor)
	}
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func trimTrailingBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
