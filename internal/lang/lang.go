// Package lang provides the language registry and LanguageSupport
// capability: mapping a file to the tree-sitter grammar and
// metadata-extraction rules for its language.
package lang

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Variant refines a symbol beyond its SymbolType, e.g. "interface",
// "dataclass", "classmethod".
type Variant string

// Metadata is the structural data LanguageSupport.ExtractMetadata returns for
// a chunk-boundary node, mirroring the language-derived subset of chunk.Chunk's
// fields. The Chunker fills in the remaining fields (id, hashes, embedding)
// itself.
type Metadata struct {
	SymbolName       string
	SymbolType       string
	Variant          Variant
	IsExported       bool
	IsAsync          bool
	IsStatic         bool
	IsAbstract       bool
	Decorators       []string
	HasDocumentation bool
	ParentScope      string
	Imports          []string
}

// LanguageSupport is the per-language capability consumed by the Chunker.
type LanguageSupport interface {
	// ID is the language identifier, e.g. "typescript".
	ID() string
	// Extensions lists the file extensions (with leading dot) this language owns.
	Extensions() []string
	// ReservedWords is the set of keywords DuplicateDetector must preserve
	// verbatim when it normalizes identifiers.
	ReservedWords() map[string]bool
	// Grammar returns the tree-sitter grammar for this language.
	Grammar() *sitter.Language

	// IsChunkBoundary reports whether node starts a standalone chunk.
	IsChunkBoundary(node *sitter.Node) bool
	// ExtractMetadata returns the structural metadata for a boundary node.
	// source is the full file content; imports is the file's denormalized
	// import list (computed once per file and passed to every node).
	ExtractMetadata(node *sitter.Node, source []byte, imports []string) Metadata
	// CalculateComplexity counts decision points within node's subtree, plus
	// one for the entry.
	CalculateComplexity(node *sitter.Node) int
	// ExtractImports scans the whole file AST and returns the imported
	// module identifiers, denormalized onto every chunk in the file.
	ExtractImports(root *sitter.Node, source []byte) []string
}

// Capabilities summarizes a LanguageSupport for API clients.
type Capabilities struct {
	Language    string   `json:"language"`
	SymbolTypes []string `json:"symbol_types"`
	Variants    []string `json:"variants"`
	Decorators  []string `json:"decorators,omitempty"`
}
